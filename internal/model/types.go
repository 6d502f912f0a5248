package model

// Decision is the guard outcome for one skill invocation attempt.
type Decision string

const (
	Allow            Decision = "allow"
	AllowWithWarning Decision = "allow_with_warning"
	Deny             Decision = "deny"
)

// Exit statuses understood by the host tool.
const (
	ExitProceed = 0
	ExitBlock   = 2
)

// Reason is a stable machine-readable code explaining a Decision.
type Reason string

const (
	ReasonOK                 Reason = "ok"
	ReasonEmptyReference     Reason = "empty_reference"
	ReasonMissingDelimiter   Reason = "missing_delimiter"
	ReasonWrongPartCount     Reason = "wrong_part_count"
	ReasonEmptyPart          Reason = "empty_part"
	ReasonRestrictedGuess    Reason = "restricted_namespace_guess"
	ReasonMalformedHookInput Reason = "malformed_hook_input"
)

// Verdict is the result of validating a skill reference.
// Message is empty for a silent Allow.
type Verdict struct {
	Decision Decision `json:"decision"`
	Reason   Reason   `json:"reason"`
	Message  string   `json:"message,omitempty"`
}

// Allowed returns a silent Allow verdict.
func Allowed() Verdict {
	return Verdict{Decision: Allow, Reason: ReasonOK}
}

// Denied returns a blocking verdict carrying msg.
func Denied(reason Reason, msg string) Verdict {
	return Verdict{Decision: Deny, Reason: reason, Message: msg}
}

// Warned returns a non-blocking verdict carrying msg.
func Warned(reason Reason, msg string) Verdict {
	return Verdict{Decision: AllowWithWarning, Reason: reason, Message: msg}
}

// ExitCode maps the decision to the process exit status.
func (v Verdict) ExitCode() int {
	if v.Decision == Deny {
		return ExitBlock
	}
	return ExitProceed
}

// Blocked reports whether the invocation must not proceed.
func (v Verdict) Blocked() bool {
	return v.Decision == Deny
}

// ParseDecision converts a wire string back into a Decision.
// Unknown values return false.
func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case Allow, AllowWithWarning, Deny:
		return Decision(s), true
	default:
		return "", false
	}
}
