package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/skillguard/internal/config"
	"github.com/ppiankov/skillguard/internal/policy"
)

var policyPath string

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyShowCmd)
	policyShowCmd.Flags().StringVar(&policyPath, "policy", "", "Path to advisory policy YAML (env SKILLGUARD_POLICY)")
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Advisory policy operations",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective advisory policy",
	Long:  "Prints the restricted namespace and its known members as YAML, followed\nby the policy hash recorded in audit entries.",
	Args:  cobra.NoArgs,
	RunE:  runPolicyShow,
}

func runPolicyShow(cmd *cobra.Command, args []string) error {
	path := config.Override(settings.PolicyPath, policyPath)
	cfg, hash, err := policy.LoadConfigWithHash(path)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	out := cmd.OutOrStdout()
	source := path
	if source == "" {
		source = "built-in"
	}
	fmt.Fprintf(out, "# source: %s\n", source)
	fmt.Fprintf(out, "# hash: %s\n", hash)
	fmt.Fprint(out, string(data))
	return nil
}
