package hook

import (
	"io"
	"log/slog"

	"github.com/ppiankov/skillguard/internal/model"
)

// Validator turns a skill reference into a verdict.
type Validator interface {
	Validate(ref string) model.Verdict
}

// Observer receives every decided request, e.g. to append to an audit log.
// Observers run after the diagnostic is written; their errors are logged and
// never change the verdict.
type Observer func(req Request, v model.Verdict) error

// Runner wires the decoder, a validator and the reporter together.
type Runner struct {
	Validator Validator
	Observers []Observer
	Log       *slog.Logger
}

// Run executes one hook invocation and returns the process exit status.
func (r *Runner) Run(stdin io.Reader, stdout, stderr io.Writer) int {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	req, ok := Decode(stdin)
	if !ok {
		log.Debug("hook input is not a JSON object, allowing")
		r.observe(log, req, model.Verdict{Decision: model.Allow, Reason: model.ReasonMalformedHookInput})
		return model.ExitProceed
	}

	v := r.Validator.Validate(req.Skill)
	log.Debug("skill reference checked",
		"skill", req.Skill,
		"decision", string(v.Decision),
		"reason", string(v.Reason))

	code := Report(stdout, stderr, v)
	r.observe(log, req, v)
	return code
}

func (r *Runner) observe(log *slog.Logger, req Request, v model.Verdict) {
	for _, o := range r.Observers {
		if err := o(req, v); err != nil {
			log.Warn("verdict observer failed", "error", err)
		}
	}
}
