package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/skillguard/internal/config"
	"github.com/ppiankov/skillguard/internal/logging"
)

// deferLogAnnotation marks commands whose log output is held back until
// they call flushDeferredLog.
const deferLogAnnotation = "skillguard/defer-log"

var (
	settings    config.Settings
	logger      = slog.Default()
	deferredLog bytes.Buffer
)

var rootCmd = &cobra.Command{
	Use:   "skillguard",
	Short: "Skill reference guard for Claude Code hooks",
	Long: "Validates Skill tool invocations before they run. A reference must be\n" +
		"namespace:skill-name; malformed references are blocked with a corrective\n" +
		"message and suspicious guesses in restricted namespaces produce a warning.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load()
		if err != nil {
			return err
		}
		settings = s

		w := cmd.ErrOrStderr()
		if cmd.Annotations[deferLogAnnotation] != "" {
			deferredLog.Reset()
			w = &deferredLog
		}

		l, err := logging.New(s.LogLevel, s.LogFormat, w)
		if err != nil {
			// The hook must keep working with a bad logging setup.
			l, _ = logging.New("warn", "text", w)
			l.Warn("invalid logging settings, using defaults", "error", err)
		}
		logger = l
		return nil
	},
}

// flushDeferredLog writes held-back log output to w.
func flushDeferredLog(w io.Writer) {
	_, _ = deferredLog.WriteTo(w)
}

// ExitError carries a process exit status out of a command without printing
// anything. The command has already written its own diagnostic.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
