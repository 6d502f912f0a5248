package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/skillguard/internal/hook"
	"github.com/ppiankov/skillguard/internal/skillref"
)

// ValidateInput defines parameters for the skillguard_validate tool.
type ValidateInput struct {
	Skill string `json:"skill" jsonschema:"skill reference in namespace:skill-name form"`
}

// ValidateOutput contains the verdict.
type ValidateOutput struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
	Message  string `json:"message,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// PolicyInput is empty; skillguard_policy takes no arguments.
type PolicyInput struct{}

// PolicyOutput describes the active advisory table.
type PolicyOutput struct {
	RestrictedNamespace string   `json:"restricted_namespace"`
	KnownMembers        []string `json:"known_members"`
	PolicyHash          string   `json:"policy_hash"`
}

func (s *Server) handleValidate(ctx context.Context, req *mcpsdk.CallToolRequest, input ValidateInput) (*mcpsdk.CallToolResult, ValidateOutput, error) {
	cfg, hash := s.policy.Current()
	v := skillref.NewValidator(cfg).Validate(input.Skill)

	if s.auditLog != nil {
		r := hook.Request{ToolName: "mcp", Skill: input.Skill}
		if err := s.auditLog.RecordVerdict(r, v, hash); err != nil {
			s.log.Warn("audit record failed", "error", err)
		}
	}

	out := ValidateOutput{
		Decision: string(v.Decision),
		Reason:   string(v.Reason),
		Message:  v.Message,
		ExitCode: v.ExitCode(),
	}
	if v.Blocked() {
		return &mcpsdk.CallToolResult{
			IsError: true,
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: v.Message}},
		}, out, nil
	}
	return nil, out, nil
}

func (s *Server) handlePolicy(ctx context.Context, req *mcpsdk.CallToolRequest, input PolicyInput) (*mcpsdk.CallToolResult, PolicyOutput, error) {
	cfg, hash := s.policy.Current()
	return nil, PolicyOutput{
		RestrictedNamespace: cfg.RestrictedNamespace(),
		KnownMembers:        cfg.KnownMembers(),
		PolicyHash:          hash,
	}, nil
}
