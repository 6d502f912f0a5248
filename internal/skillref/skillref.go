// Package skillref validates "namespace:skill-name" skill references.
//
// Checks run from cheapest to most specific, and each one assumes the
// previous ones passed:
//
//  1. the reference is non-empty
//  2. it contains the ':' delimiter
//  3. splitting on ':' yields exactly two parts
//  4. neither part is empty
//  5. the advisory policy may downgrade the result to a warning
package skillref

import (
	"fmt"
	"strings"

	"github.com/ppiankov/skillguard/internal/model"
	"github.com/ppiankov/skillguard/internal/policy"
)

// Delimiter separates the namespace from the skill name.
const Delimiter = ":"

// Reference is a structurally valid skill reference.
type Reference struct {
	Namespace string `json:"namespace"`
	Skill     string `json:"skill"`
}

// String returns the reference in namespace:skill-name form.
func (r Reference) String() string {
	return r.Namespace + Delimiter + r.Skill
}

// Advisor is the secondary, non-blocking check applied to valid references.
type Advisor interface {
	Check(namespace, skill string) (model.Verdict, bool)
}

// Validator runs the structural checks and consults an Advisor.
type Validator struct {
	advisor Advisor
}

// NewValidator returns a Validator using advisor. A nil advisor uses the
// built-in policy table.
func NewValidator(advisor Advisor) *Validator {
	if advisor == nil {
		advisor = policy.DefaultConfig()
	}
	return &Validator{advisor: advisor}
}

// Validate classifies ref as allow, allow_with_warning or deny.
func (v *Validator) Validate(ref string) model.Verdict {
	r, verdict, ok := Parse(ref)
	if !ok {
		return verdict
	}
	if warning, warn := v.advisor.Check(r.Namespace, r.Skill); warn {
		return warning
	}
	return model.Allowed()
}

// Parse applies the structural checks. On failure it returns the deny
// verdict and false.
func Parse(ref string) (Reference, model.Verdict, bool) {
	if ref == "" {
		return Reference{}, model.Denied(model.ReasonEmptyReference,
			"Skill reference must be a non-empty string"), false
	}

	if !strings.Contains(ref, Delimiter) {
		return Reference{}, model.Denied(model.ReasonMissingDelimiter, missingDelimiterMessage(ref)), false
	}

	parts := strings.Split(ref, Delimiter)
	if len(parts) != 2 {
		return Reference{}, model.Denied(model.ReasonWrongPartCount, fmt.Sprintf(
			"❌ Invalid format: '%s'\n"+
				"   Found %d colon-separated parts (expected 2)\n"+
				"   Correct format: 'namespace:skill-name'",
			ref, len(parts))), false
	}

	namespace, skill := parts[0], parts[1]
	if namespace == "" || skill == "" {
		return Reference{}, model.Denied(model.ReasonEmptyPart, fmt.Sprintf(
			"❌ Invalid format: '%s'\n"+
				"   Both namespace and skill-name must be non-empty",
			ref)), false
	}

	return Reference{Namespace: namespace, Skill: skill}, model.Verdict{}, true
}

func missingDelimiterMessage(ref string) string {
	return fmt.Sprintf("❌ Invalid format: '%s'\n", ref) +
		"   Expected: 'namespace:skill-name'\n" +
		"   Example: 'code-simplifier:code-simplifier'\n" +
		"           'pr-review-toolkit:code-reviewer'\n" +
		"   \n" +
		"   💡 TIP: If you got an error listing available skills,\n" +
		"       copy the EXACT string from that list.\n" +
		"       DO NOT assume a namespace!"
}
