package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	hookEvent          = "PreToolUse"
	hookMatcher        = "Skill"
	defaultHookCommand = "skillguard hook"
)

var (
	hooksSettings string
	hooksCommand  string
	hooksDryRun   bool
)

func init() {
	rootCmd.AddCommand(hooksCmd)
	hooksCmd.AddCommand(hooksShowCmd)
	hooksCmd.AddCommand(hooksInstallCmd)
	hooksCmd.PersistentFlags().StringVar(&hooksCommand, "command", defaultHookCommand, "Hook command to register")
	hooksInstallCmd.Flags().StringVar(&hooksSettings, "settings", "", "Claude settings file (default ~/.claude/settings.json)")
	hooksInstallCmd.Flags().BoolVar(&hooksDryRun, "dry-run", false, "Print the merged settings instead of writing them")
}

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Manage the Claude Code hook registration",
}

var hooksShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings snippet that registers the hook",
	Args:  cobra.NoArgs,
	RunE:  runHooksShow,
}

var hooksInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the hook in Claude settings",
	Long: "Merges a PreToolUse hook for the Skill tool into the Claude settings file.\n" +
		"Other settings and hook groups are preserved; a previous skillguard\n" +
		"registration is replaced. The existing file is backed up first.",
	Args: cobra.NoArgs,
	RunE: runHooksInstall,
}

func runHooksShow(cmd *cobra.Command, args []string) error {
	snippet := map[string]any{
		"hooks": map[string]any{
			hookEvent: []any{skillguardHookGroup(hooksCommand)},
		},
	}
	return writeJSON(cmd.OutOrStdout(), snippet)
}

func runHooksInstall(cmd *cobra.Command, args []string) error {
	settingsPath := hooksSettings
	if settingsPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home directory: %w", err)
		}
		settingsPath = filepath.Join(homeDir, ".claude", "settings.json")
	}

	rawSettings, err := loadHooksSettings(settingsPath)
	if err != nil {
		return err
	}
	mergeSkillguardHook(rawSettings, hooksCommand)

	out := cmd.OutOrStdout()
	if hooksDryRun {
		fmt.Fprintln(out, "[dry-run] Would write to", settingsPath)
		return writeJSON(out, rawSettings)
	}

	if err := backupHooksSettings(out, settingsPath); err != nil {
		return err
	}
	if err := writeHooksSettings(settingsPath, rawSettings); err != nil {
		return err
	}
	fmt.Fprintf(out, "Installed %s hook for %s to %s\n", hookEvent, hookMatcher, settingsPath)
	return nil
}

func skillguardHookGroup(command string) map[string]any {
	return map[string]any{
		"matcher": hookMatcher,
		"hooks": []any{
			map[string]any{
				"type":    "command",
				"command": command,
			},
		},
	}
}

// mergeSkillguardHook replaces any skillguard hook in the PreToolUse event
// with a single group running command. Everything else is left untouched.
func mergeSkillguardHook(rawSettings map[string]any, command string) {
	hooksMap := make(map[string]any)
	if existing, ok := rawSettings["hooks"].(map[string]any); ok {
		for k, v := range existing {
			hooksMap[k] = v
		}
	}

	var groups []any
	if existing, ok := hooksMap[hookEvent].([]any); ok {
		for _, g := range existing {
			if kept, ok := withoutSkillguardHooks(g); ok {
				groups = append(groups, kept)
			}
		}
	}
	hooksMap[hookEvent] = append(groups, skillguardHookGroup(command))
	rawSettings["hooks"] = hooksMap
}

// withoutSkillguardHooks drops skillguard commands from a hook group. It
// returns false when nothing is left of the group.
func withoutSkillguardHooks(g any) (any, bool) {
	group, ok := g.(map[string]any)
	if !ok {
		return g, true
	}
	hooks, ok := group["hooks"].([]any)
	if !ok {
		return g, true
	}

	var kept []any
	for _, h := range hooks {
		if entry, ok := h.(map[string]any); ok {
			if command, _ := entry["command"].(string); isSkillguardHookCommand(command) {
				continue
			}
		}
		kept = append(kept, h)
	}
	if len(kept) == 0 {
		return nil, false
	}
	if len(kept) == len(hooks) {
		return group, true
	}

	out := make(map[string]any, len(group))
	for k, v := range group {
		out[k] = v
	}
	out["hooks"] = kept
	return out, true
}

func isSkillguardHookCommand(command string) bool {
	fields := strings.Fields(command)
	return len(fields) >= 2 && filepath.Base(fields[0]) == "skillguard" && fields[1] == "hook"
}

func loadHooksSettings(settingsPath string) (map[string]any, error) {
	rawSettings := make(map[string]any)
	data, err := os.ReadFile(settingsPath)
	if err == nil {
		if err := json.Unmarshal(data, &rawSettings); err != nil {
			return nil, fmt.Errorf("parse existing settings: %w", err)
		}
		if rawSettings == nil {
			rawSettings = make(map[string]any)
		}
		return rawSettings, nil
	}
	if os.IsNotExist(err) {
		return rawSettings, nil
	}
	return nil, fmt.Errorf("read settings: %w", err)
}

func backupHooksSettings(w io.Writer, settingsPath string) error {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil
	}
	backupPath := fmt.Sprintf("%s.backup.%s", settingsPath, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	fmt.Fprintf(w, "Backed up existing settings to %s\n", backupPath)
	return nil
}

func writeHooksSettings(settingsPath string, rawSettings map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(rawSettings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(settingsPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
