package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ppiankov/skillguard/internal/config"
	"github.com/ppiankov/skillguard/internal/model"
	"github.com/ppiankov/skillguard/internal/policy"
	"github.com/ppiankov/skillguard/internal/skillref"
)

var (
	checkPolicy  string
	checkFormat  string
	checkNoColor bool
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkPolicy, "policy", "", "Path to advisory policy YAML (optional)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "Disable colored output")
}

var checkCmd = &cobra.Command{
	Use:   "check <ref>...",
	Short: "Validate skill references without running as a hook",
	Long: "Runs each reference through the same checks as the hook and prints the\n" +
		"verdicts. Exit code 2 if any reference would be blocked.",
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

// checkResult is one line of check output.
type checkResult struct {
	Skill    string `json:"skill"`
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
	Message  string `json:"message,omitempty"`
	ExitCode int    `json:"exit_code"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := policy.LoadConfig(config.Override(settings.PolicyPath, checkPolicy))
	if err != nil {
		return err
	}
	v := skillref.NewValidator(cfg)

	results := make([]checkResult, 0, len(args))
	blocked := false
	for _, ref := range args {
		verdict := v.Validate(ref)
		if verdict.Blocked() {
			blocked = true
		}
		results = append(results, checkResult{
			Skill:    ref,
			Decision: string(verdict.Decision),
			Reason:   string(verdict.Reason),
			Message:  verdict.Message,
			ExitCode: verdict.ExitCode(),
		})
	}

	out := cmd.OutOrStdout()
	switch checkFormat {
	case "json":
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "text":
		writeCheckText(out, results, checkNoColor)
	default:
		return fmt.Errorf("unknown format %q (want text or json)", checkFormat)
	}

	if blocked {
		return &ExitError{Code: model.ExitBlock}
	}
	return nil
}

func writeCheckText(w io.Writer, results []checkResult, noColor bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", decisionLabel(r.Decision, noColor), r.Skill, r.Reason)
	}
	tw.Flush()

	for _, r := range results {
		if r.Message == "" {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", r.Skill)
		for _, line := range strings.Split(r.Message, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func decisionLabel(decision string, noColor bool) string {
	var c *color.Color
	switch model.Decision(decision) {
	case model.Allow:
		c = color.New(color.FgGreen)
	case model.AllowWithWarning:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgRed, color.Bold)
	}
	if noColor {
		c.DisableColor()
	}
	return c.Sprint(strings.ToUpper(decision))
}
