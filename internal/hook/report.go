package hook

import (
	"io"
	"strings"

	"github.com/ppiankov/skillguard/internal/model"
)

// SeparatorWidth is the number of box-drawing characters in a frame line.
const SeparatorWidth = 70

var separator = strings.Repeat("═", SeparatorWidth)

// Frame wraps msg between two separator lines, preceded by a blank line and
// terminated by one.
func Frame(msg string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(separator)
	b.WriteString("\n")
	b.WriteString(msg)
	b.WriteString("\n")
	b.WriteString(separator)
	b.WriteString("\n\n")
	return b.String()
}

// Report renders v and returns the exit status for the host tool.
// Warnings go to stdout, denials to stderr; a silent allow prints nothing.
// The frame is written in one call so the host never sees a partial message.
func Report(stdout, stderr io.Writer, v model.Verdict) int {
	if v.Message == "" {
		return v.ExitCode()
	}

	w := stdout
	if v.Blocked() {
		w = stderr
	}
	_, _ = io.WriteString(w, Frame(v.Message))
	return v.ExitCode()
}
