package cli

import (
	"github.com/spf13/cobra"

	"github.com/ppiankov/skillguard/internal/audit"
	"github.com/ppiankov/skillguard/internal/client"
	"github.com/ppiankov/skillguard/internal/config"
	"github.com/ppiankov/skillguard/internal/history"
	"github.com/ppiankov/skillguard/internal/hook"
	"github.com/ppiankov/skillguard/internal/model"
	"github.com/ppiankov/skillguard/internal/policy"
	"github.com/ppiankov/skillguard/internal/skillref"
)

var (
	hookPolicy    string
	hookAuditLog  string
	hookHistoryDB string
	hookRemote    string
)

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.Flags().StringVar(&hookPolicy, "policy", "", "Path to advisory policy YAML (env SKILLGUARD_POLICY)")
	hookCmd.Flags().StringVar(&hookAuditLog, "audit-log", "", "Append verdicts to this JSONL audit log (env SKILLGUARD_AUDIT_LOG)")
	hookCmd.Flags().StringVar(&hookHistoryDB, "history-db", "", "Record verdicts in this SQLite database (env SKILLGUARD_HISTORY_DB)")
	hookCmd.Flags().StringVar(&hookRemote, "remote", "", "Validate against a skillguard server at host:port (env SKILLGUARD_REMOTE)")
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Run as a Claude Code PreToolUse hook",
	Long: "Reads the hook payload from stdin and checks tool_input.skill.\n\n" +
		"Exit code 0 lets the Skill call proceed (a warning may be printed on stdout).\n" +
		"Exit code 2 blocks it; the reason is printed on stderr.\n" +
		"Input that is not a JSON object is ignored and the call proceeds.",
	Args: cobra.NoArgs,
	RunE: runHook,
	// The framed diagnostic must be the first thing on stderr.
	Annotations: map[string]string{deferLogAnnotation: "true"},
}

func runHook(cmd *cobra.Command, args []string) error {
	defer flushDeferredLog(cmd.ErrOrStderr())

	policyPath := config.Override(settings.PolicyPath, hookPolicy)
	cfg, hash, err := policy.LoadConfigWithHash(policyPath)
	if err != nil {
		logger.Warn("policy unusable, using built-in table", "path", policyPath, "error", err)
		cfg, hash = policy.DefaultConfig(), policy.HashBytes(nil)
	}

	var validator hook.Validator = skillref.NewValidator(cfg)
	if remote := config.Override(settings.Remote, hookRemote); remote != "" {
		c, err := client.New(remote)
		if err != nil {
			logger.Warn("remote disabled", "addr", remote, "error", err)
		} else {
			defer c.Close()
			validator = &client.Fallback{Remote: c, Local: validator, Log: logger}
		}
	}

	runner := &hook.Runner{Validator: validator, Log: logger}

	if path := config.Override(settings.AuditLog, hookAuditLog); path != "" {
		auditLog, err := audit.Open(path)
		if err != nil {
			logger.Warn("audit log disabled", "path", path, "error", err)
		} else {
			defer auditLog.Close()
			runner.Observers = append(runner.Observers, func(req hook.Request, v model.Verdict) error {
				return auditLog.RecordVerdict(req, v, hash)
			})
		}
	}

	if path := config.Override(settings.HistoryDB, hookHistoryDB); path != "" {
		store, err := history.Open(path)
		if err != nil {
			logger.Warn("history disabled", "path", path, "error", err)
		} else {
			defer store.Close()
			ctx := cmd.Context()
			runner.Observers = append(runner.Observers, func(req hook.Request, v model.Verdict) error {
				return store.Record(ctx, req.SessionID, req.Skill, v)
			})
		}
	}

	if code := runner.Run(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()); code != model.ExitProceed {
		return &ExitError{Code: code}
	}
	return nil
}
