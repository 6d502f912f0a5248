// Package hook implements the host-tool contract: one JSON object on stdin,
// a framed diagnostic on stdout or stderr, and an exit status of 0 or 2.
package hook

import (
	"encoding/json"
	"io"
)

// Request is the part of the PreToolUse payload skillguard cares about.
// Only Skill influences the verdict; the rest is kept for the audit trail.
type Request struct {
	SessionID     string `json:"session_id,omitempty"`
	HookEventName string `json:"hook_event_name,omitempty"`
	ToolName      string `json:"tool_name,omitempty"`
	Cwd           string `json:"cwd,omitempty"`
	Skill         string `json:"skill"`
}

// Decode reads the whole of r and extracts tool_input.skill.
//
// It returns false when the input is not a single JSON object (empty,
// malformed, or a non-object value); callers treat that as "nothing to
// check". When the object parses but tool_input.skill is missing or is not a
// string, Skill is empty and the request is still returned with true.
func Decode(r io.Reader) (Request, bool) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Request{}, false
	}

	var envelope map[string]any
	if err := json.Unmarshal(data, &envelope); err != nil || envelope == nil {
		return Request{}, false
	}

	req := Request{
		SessionID:     stringField(envelope, "session_id"),
		HookEventName: stringField(envelope, "hook_event_name"),
		ToolName:      stringField(envelope, "tool_name"),
		Cwd:           stringField(envelope, "cwd"),
	}
	if toolInput, ok := envelope["tool_input"].(map[string]any); ok {
		req.Skill = stringField(toolInput, "skill")
	}
	return req, true
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
