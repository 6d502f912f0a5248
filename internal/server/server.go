package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ppiankov/skillguard/internal/audit"
	"github.com/ppiankov/skillguard/internal/hook"
	"github.com/ppiankov/skillguard/internal/policy"
	"github.com/ppiankov/skillguard/internal/skillref"
)

// Config holds gRPC server configuration.
type Config struct {
	Port         int
	PolicyPath   string
	AuditLogPath string
}

// Server implements the SkillGuard gRPC service so many hook processes can
// share one hot-reloaded policy.
type Server struct {
	cfg        Config
	policy     *policy.Holder
	auditLog   *audit.Log
	log        *slog.Logger
	grpcServer *grpc.Server
}

// New creates a gRPC server with the policy loaded.
func New(cfg Config, log *slog.Logger) (*Server, error) {
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

	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		cfg:        cfg,
		policy:     holder,
		auditLog:   auditLog,
		log:        log,
		grpcServer: grpc.NewServer(),
	}
	RegisterSkillGuardServer(s.grpcServer, s)
	return s, nil
}

// Policy returns the reloadable policy holder.
func (s *Server) Policy() *policy.Holder {
	return s.policy
}

// Serve listens on the configured port. Blocks until stopped.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.grpcServer.Serve(lis)
}

// ServeOn serves on an existing listener.
func (s *Server) ServeOn(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop drains in-flight calls and stops the server.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// Close releases the audit log.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// Validate implements the Validate RPC.
func (s *Server) Validate(ctx context.Context, ref *wrapperspb.StringValue) (*structpb.Struct, error) {
	cfg, hash := s.policy.Current()
	v := skillref.NewValidator(cfg).Validate(ref.GetValue())

	if s.auditLog != nil {
		req := hook.Request{ToolName: "grpc", Skill: ref.GetValue()}
		if err := s.auditLog.RecordVerdict(req, v, hash); err != nil {
			s.log.Warn("audit record failed", "error", err)
		}
	}
	s.log.Debug("validate", "skill", ref.GetValue(), "decision", string(v.Decision))

	return VerdictToStruct(v)
}
