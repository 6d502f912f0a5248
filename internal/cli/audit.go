package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ppiankov/skillguard/internal/audit"
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
	Long:  "Commands for verifying the hash-chained audit log.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify hash chain integrity of an audit log",
	Long:  "Walks the JSONL audit log and validates that every entry's prev_hash\nmatches the SHA-256 of the previous entry. Exits 0 if valid, 1 if tampered.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditVerify,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(args[0])
	if !result.Valid {
		fmt.Fprintf(cmd.ErrOrStderr(), "FAILED at line %d: %s\n", result.ErrorLine, result.Error)
		return &ExitError{Code: 1}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OK: %d entries verified\n", result.Lines)

	decisions := make([]string, 0, len(result.Decisions))
	for d := range result.Decisions {
		decisions = append(decisions, d)
	}
	sort.Strings(decisions)
	for _, d := range decisions {
		fmt.Fprintf(out, "  %-20s %d\n", d, result.Decisions[d])
	}
	return nil
}
