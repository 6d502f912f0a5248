package policy

import (
	"fmt"

	"github.com/ppiankov/skillguard/internal/model"
)

// Check applies the restricted-namespace heuristic to a structurally valid
// reference. It returns a warning verdict and true when the namespace is the
// restricted one and skill is not a known member. It never denies.
func (c *Config) Check(namespace, skill string) (model.Verdict, bool) {
	ns := c.RestrictedNamespace()
	if ns == "" || namespace != ns || c.IsKnownMember(skill) {
		return model.Verdict{}, false
	}
	return model.Warned(model.ReasonRestrictedGuess, warningMessage(ns, skill)), true
}

func warningMessage(namespace, skill string) string {
	return fmt.Sprintf("⚠️  Warning: Using %s for '%s'\n", namespace, skill) +
		"    This might be incorrect. If you got an error listing\n" +
		"    available skills, double-check the exact namespace.\n" +
		fmt.Sprintf("    Don't assume %s for unknown skills!\n", namespace) +
		"    Proceeding anyway..."
}
