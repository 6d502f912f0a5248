package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/skillguard/internal/audit"
	"github.com/ppiankov/skillguard/internal/policy"
)

// Config holds MCP server configuration.
type Config struct {
	PolicyPath   string
	AuditLogPath string
	Version      string
}

// Server exposes skill reference validation as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	policy    *policy.Holder
	auditLog  *audit.Log
	log       *slog.Logger
}

// New creates an MCP server with the loaded policy and tools.
func New(cfg Config, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	holder, err := policy.NewHolder(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy config: %w", err)
	}

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		policy:   holder,
		auditLog: auditLog,
		log:      log,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "skillguard",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Policy returns the holder so callers can attach a reloader.
func (s *Server) Policy() *policy.Holder {
	return s.policy
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "skillguard_validate",
		Description: "Check a skill reference (namespace:skill-name) before invoking the Skill tool. Denied references return an error with the corrective message.",
	}, s.handleValidate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "skillguard_policy",
		Description: "Show the restricted namespace and its known member skills.",
	}, s.handlePolicy)
}
