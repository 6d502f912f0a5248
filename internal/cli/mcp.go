package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/skillguard/internal/config"
	guardmcp "github.com/ppiankov/skillguard/internal/mcp"
)

var (
	mcpPolicy   string
	mcpAuditLog string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpPolicy, "policy", "", "Path to advisory policy YAML (env SKILLGUARD_POLICY)")
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", "", "Path to audit log JSONL file (env SKILLGUARD_AUDIT_LOG)")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs skillguard as an MCP (Model Context Protocol) server over stdio.\nExposes tools: skillguard_validate, skillguard_policy.",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := guardmcp.Config{
		PolicyPath:   config.Override(settings.PolicyPath, mcpPolicy),
		AuditLogPath: config.Override(settings.AuditLog, mcpAuditLog),
		Version:      version,
	}

	srv, err := guardmcp.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	startReloader(ctx, srv.Policy())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			logger.Info("shutting down MCP server")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("skillguard MCP server running on stdio")
	return srv.Run(ctx)
}
