// Package history keeps a queryable record of verdicts in SQLite so that
// recurring namespace guesses show up in `skillguard stats`.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/skillguard/internal/model"
	"github.com/ppiankov/skillguard/internal/skillref"
)

// Schema is applied on every Open; statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS verdicts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	session_id TEXT NOT NULL DEFAULT '',
	skill TEXT NOT NULL,
	namespace TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	decision TEXT NOT NULL,
	reason TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_verdicts_reason ON verdicts(reason);
CREATE INDEX IF NOT EXISTS idx_verdicts_decision ON verdicts(decision);
`

// Store is a SQLite-backed verdict history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("history: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one verdict. Structurally valid references are also split
// into namespace and name.
func (s *Store) Record(ctx context.Context, sessionID, ref string, v model.Verdict) error {
	var namespace, name string
	if r, _, ok := skillref.Parse(ref); ok {
		namespace, name = r.Namespace, r.Skill
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verdicts (session_id, skill, namespace, name, decision, reason) VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, ref, namespace, name, string(v.Decision), string(v.Reason))
	if err != nil {
		return fmt.Errorf("history: insert verdict: %w", err)
	}
	return nil
}
