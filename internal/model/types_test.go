package model

import "testing"

func TestExitCode(t *testing.T) {
	tests := []struct {
		verdict Verdict
		want    int
	}{
		{Allowed(), 0},
		{Warned(ReasonRestrictedGuess, "careful"), 0},
		{Denied(ReasonMissingDelimiter, "bad"), 2},
	}
	for _, tt := range tests {
		if got := tt.verdict.ExitCode(); got != tt.want {
			t.Errorf("%s: expected exit %d, got %d", tt.verdict.Decision, tt.want, got)
		}
	}
}

func TestAllowedHasNoMessage(t *testing.T) {
	v := Allowed()
	if v.Message != "" {
		t.Errorf("expected empty message, got %q", v.Message)
	}
	if v.Blocked() {
		t.Error("expected allow to not block")
	}
}

func TestParseDecision(t *testing.T) {
	for _, s := range []string{"allow", "allow_with_warning", "deny"} {
		d, ok := ParseDecision(s)
		if !ok || string(d) != s {
			t.Errorf("ParseDecision(%q) = %q, %v", s, d, ok)
		}
	}
	if _, ok := ParseDecision("require_approval"); ok {
		t.Error("expected unknown decision to be rejected")
	}
}
