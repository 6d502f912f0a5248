package hook

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/skillguard/internal/model"
	"github.com/ppiankov/skillguard/internal/skillref"
)

func newTestRunner(observers ...Observer) *Runner {
	return &Runner{
		Validator: skillref.NewValidator(nil),
		Observers: observers,
	}
}

func runHook(t *testing.T, r *Runner, input string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := r.Run(strings.NewReader(input), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
		skill string
	}{
		{"valid", `{"tool_input":{"skill":"a:b"}}`, true, "a:b"},
		{"extra fields", `{"session_id":"s1","tool_name":"Skill","tool_input":{"skill":"a:b","args":"x"}}`, true, "a:b"},
		{"empty input", ``, false, ""},
		{"malformed", `{"tool_input":`, false, ""},
		{"array", `[1,2]`, false, ""},
		{"null", `null`, false, ""},
		{"string", `"a:b"`, false, ""},
		{"two objects", `{} {}`, false, ""},
		{"no tool_input", `{"tool_name":"Skill"}`, true, ""},
		{"tool_input not object", `{"tool_input":"a:b"}`, true, ""},
		{"no skill", `{"tool_input":{}}`, true, ""},
		{"skill number", `{"tool_input":{"skill":42}}`, true, ""},
		{"skill null", `{"tool_input":{"skill":null}}`, true, ""},
		{"skill list", `{"tool_input":{"skill":["a:b"]}}`, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, ok := Decode(strings.NewReader(tt.input))
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if req.Skill != tt.skill {
				t.Errorf("expected skill %q, got %q", tt.skill, req.Skill)
			}
		})
	}
}

func TestDecodeKeepsAuditFields(t *testing.T) {
	req, ok := Decode(strings.NewReader(`{"session_id":"abc","hook_event_name":"PreToolUse","tool_name":"Skill","cwd":"/repo","tool_input":{"skill":"a:b"}}`))
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if req.SessionID != "abc" || req.HookEventName != "PreToolUse" || req.ToolName != "Skill" || req.Cwd != "/repo" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestFrame(t *testing.T) {
	sep := strings.Repeat("═", 70)
	want := "\n" + sep + "\nhello\n" + sep + "\n\n"
	if got := Frame("hello"); got != want {
		t.Errorf("unexpected frame:\n%q\nwant:\n%q", got, want)
	}
}

func TestRunMalformedInputFailsOpen(t *testing.T) {
	for _, input := range []string{"", "not json", "[]", "null", "{"} {
		code, stdout, stderr := runHook(t, newTestRunner(), input)
		if code != 0 {
			t.Errorf("%q: expected exit 0, got %d", input, code)
		}
		if stdout != "" || stderr != "" {
			t.Errorf("%q: expected no output, got stdout=%q stderr=%q", input, stdout, stderr)
		}
	}
}

func TestRunMissingReferenceDenies(t *testing.T) {
	for _, input := range []string{
		`{}`,
		`{"tool_input":{}}`,
		`{"tool_input":{"skill":""}}`,
		`{"tool_input":{"skill":7}}`,
		`{"tool_input":"code-reviewer"}`,
	} {
		code, stdout, stderr := runHook(t, newTestRunner(), input)
		if code != 2 {
			t.Errorf("%s: expected exit 2, got %d", input, code)
		}
		if stdout != "" {
			t.Errorf("%s: expected empty stdout, got %q", input, stdout)
		}
		if !strings.Contains(stderr, "Skill reference must be a non-empty string") {
			t.Errorf("%s: unexpected stderr %q", input, stderr)
		}
	}
}

func TestRunValidReferenceIsSilent(t *testing.T) {
	for _, ref := range []string{"code-simplifier:code-simplifier", "pr-review-toolkit:code-reviewer", "a:b"} {
		code, stdout, stderr := runHook(t, newTestRunner(), `{"tool_input":{"skill":"`+ref+`"}}`)
		if code != 0 {
			t.Errorf("%s: expected exit 0, got %d", ref, code)
		}
		if stdout != "" || stderr != "" {
			t.Errorf("%s: expected no output, got stdout=%q stderr=%q", ref, stdout, stderr)
		}
	}
}

func TestRunRestrictedGuessWarnsOnStdout(t *testing.T) {
	code, stdout, stderr := runHook(t, newTestRunner(), `{"tool_input":{"skill":"pr-review-toolkit:made-up-name"}}`)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if stderr != "" {
		t.Errorf("expected empty stderr, got %q", stderr)
	}
	if !strings.HasPrefix(stdout, "\n"+strings.Repeat("═", 70)+"\n") {
		t.Errorf("expected framed output, got %q", stdout)
	}
	if !strings.Contains(stdout, "Using pr-review-toolkit for 'made-up-name'") {
		t.Errorf("expected warning text, got %q", stdout)
	}
	if !strings.HasSuffix(stdout, strings.Repeat("═", 70)+"\n\n") {
		t.Errorf("expected closing separator and blank line, got %q", stdout)
	}
}

func TestRunMissingDelimiterDenies(t *testing.T) {
	code, stdout, stderr := runHook(t, newTestRunner(), `{"tool_input":{"skill":"code-simplifier"}}`)
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout, got %q", stdout)
	}
	for _, want := range []string{"code-simplifier:code-simplifier", "pr-review-toolkit:code-reviewer"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected stderr to contain %q, got %q", want, stderr)
		}
	}
}

func TestRunEmptyPartsDeny(t *testing.T) {
	for _, ref := range []string{":skill-name", "namespace:"} {
		code, _, stderr := runHook(t, newTestRunner(), `{"tool_input":{"skill":"`+ref+`"}}`)
		if code != 2 {
			t.Errorf("%s: expected exit 2, got %d", ref, code)
		}
		if !strings.Contains(stderr, "must be non-empty") {
			t.Errorf("%s: unexpected stderr %q", ref, stderr)
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	inputs := []string{
		`{"tool_input":{"skill":"a:b:c"}}`,
		`{"tool_input":{"skill":"pr-review-toolkit:zzz"}}`,
		`garbage`,
	}
	for _, input := range inputs {
		code1, out1, err1 := runHook(t, newTestRunner(), input)
		code2, out2, err2 := runHook(t, newTestRunner(), input)
		if code1 != code2 || out1 != out2 || err1 != err2 {
			t.Errorf("%s: runs differ", input)
		}
	}
}

func TestRunNotifiesObservers(t *testing.T) {
	var seen []model.Verdict
	var skills []string
	obs := func(req Request, v model.Verdict) error {
		skills = append(skills, req.Skill)
		seen = append(seen, v)
		return nil
	}

	r := newTestRunner(obs)
	runHook(t, r, `{"tool_input":{"skill":"a:b"}}`)
	runHook(t, r, `oops`)

	if len(seen) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(seen))
	}
	if skills[0] != "a:b" || seen[0].Decision != model.Allow {
		t.Errorf("unexpected first observation %q %+v", skills[0], seen[0])
	}
	if seen[1].Reason != model.ReasonMalformedHookInput {
		t.Errorf("expected malformed input reason, got %s", seen[1].Reason)
	}
}

func TestRunObserverErrorDoesNotChangeVerdict(t *testing.T) {
	failing := func(Request, model.Verdict) error { return errors.New("disk full") }

	code, _, stderr := runHook(t, newTestRunner(failing), `{"tool_input":{"skill":"a"}}`)
	if code != 2 {
		t.Errorf("expected exit 2, got %d", code)
	}
	if strings.Contains(stderr, "disk full") {
		t.Errorf("observer error leaked into the diagnostic: %q", stderr)
	}

	code, _, _ = runHook(t, newTestRunner(failing), `{"tool_input":{"skill":"a:b"}}`)
	if code != 0 {
		t.Errorf("expected exit 0, got %d", code)
	}
}

func TestRunObserversFollowDiagnostic(t *testing.T) {
	var stderr bytes.Buffer
	obs := func(Request, model.Verdict) error {
		stderr.WriteString("observed\n")
		return nil
	}

	r := newTestRunner(obs)
	code := r.Run(strings.NewReader(`{"tool_input":{"skill":"code-simplifier"}}`), &bytes.Buffer{}, &stderr)
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.HasPrefix(stderr.String(), "\n"+strings.Repeat("═", 70)) {
		t.Errorf("expected the frame first, got %q", stderr.String())
	}
	if !strings.HasSuffix(stderr.String(), "observed\n") {
		t.Errorf("expected observer output after the frame, got %q", stderr.String())
	}
}
