package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/skillguard/internal/config"
	"github.com/ppiankov/skillguard/internal/policy"
	"github.com/ppiankov/skillguard/internal/server"
)

var (
	servePort     int
	servePolicy   string
	serveAuditLog string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 50051, "gRPC listen port")
	serveCmd.Flags().StringVar(&servePolicy, "policy", "", "Path to advisory policy YAML (env SKILLGUARD_POLICY)")
	serveCmd.Flags().StringVar(&serveAuditLog, "audit-log", "", "Path to audit log JSONL file (env SKILLGUARD_AUDIT_LOG)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start gRPC validation server",
	Long: "Runs skillguard as a shared validation server over gRPC.\n" +
		"Hooks started with --remote delegate to it and fall back to local\n" +
		"checks when it is unreachable. The policy file is hot-reloaded.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := server.Config{
		Port:         servePort,
		PolicyPath:   config.Override(settings.PolicyPath, servePolicy),
		AuditLogPath: config.Override(settings.AuditLog, serveAuditLog),
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
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
			logger.Info("shutting down validation server")
			cancel()
			srv.GracefulStop()
		case <-ctx.Done():
		}
	}()

	logger.Info("skillguard validation server listening", "port", servePort, "policy", cfg.PolicyPath)
	return srv.Serve()
}

// startReloader watches the holder's policy file until ctx is done. Without a
// policy file there is nothing to watch.
func startReloader(ctx context.Context, holder *policy.Holder) {
	if holder.Path() == "" {
		return
	}
	reloader, err := policy.NewReloader(holder, logger)
	if err != nil {
		logger.Warn("hot-reload disabled", "error", err)
		return
	}
	go reloader.Run(ctx)
}
