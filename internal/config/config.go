// Package config reads skillguard settings from SKILLGUARD_* environment
// variables. Command-line flags override these values.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable.
const EnvPrefix = "SKILLGUARD"

// Settings are the ambient options shared by all commands.
type Settings struct {
	// PolicyPath points to an advisory policy YAML. Empty uses the built-in table.
	PolicyPath string `envconfig:"POLICY"`
	// AuditLog is a JSONL audit log path. Empty disables auditing.
	AuditLog string `envconfig:"AUDIT_LOG"`
	// HistoryDB is a SQLite database path. Empty disables history.
	HistoryDB string `envconfig:"HISTORY_DB"`
	// Remote is a skillguard serve address (host:port) to validate against.
	Remote    string `envconfig:"REMOTE"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads Settings from the environment.
func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

// Override returns flag when set, otherwise env.
func Override(env, flag string) string {
	if flag != "" {
		return flag
	}
	return env
}
