package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ppiankov/skillguard/internal/model"
)

// SkillCount is a reference and how often it was seen.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// Summary aggregates the stored verdicts.
type Summary struct {
	Total     int            `json:"total"`
	Decisions map[string]int `json:"decisions"`
	Reasons   map[string]int `json:"reasons"`
	// Guesses are restricted-namespace references that were not known
	// members, most frequent first.
	Guesses []SkillCount `json:"guesses"`
	// Denied are the most frequently blocked references.
	Denied []SkillCount `json:"denied"`
}

// Summarize aggregates all verdicts; top bounds the ranked lists.
func (s *Store) Summarize(ctx context.Context, top int) (Summary, error) {
	if top <= 0 {
		top = 10
	}

	sum := Summary{
		Decisions: make(map[string]int),
		Reasons:   make(map[string]int),
	}

	if err := s.countBy(ctx, "decision", sum.Decisions); err != nil {
		return Summary{}, err
	}
	if err := s.countBy(ctx, "reason", sum.Reasons); err != nil {
		return Summary{}, err
	}
	for _, n := range sum.Decisions {
		sum.Total += n
	}

	var err error
	sum.Guesses, err = s.ranked(ctx, "reason", string(model.ReasonRestrictedGuess), top)
	if err != nil {
		return Summary{}, err
	}
	sum.Denied, err = s.ranked(ctx, "decision", string(model.Deny), top)
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// countBy fills into with row counts grouped by column. column is always a
// constant from this file, never user input.
func (s *Store) countBy(ctx context.Context, column string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM verdicts GROUP BY %s`, column, column))
	if err != nil {
		return fmt.Errorf("history: count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("history: scan %s count: %w", column, err)
		}
		into[key] = n
	}
	return rows.Err()
}

func (s *Store) ranked(ctx context.Context, column, value string, top int) ([]SkillCount, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT skill, COUNT(*) AS n FROM verdicts WHERE %s = ? GROUP BY skill ORDER BY n DESC, skill ASC LIMIT ?`, column),
		value, top)
	if err != nil {
		return nil, fmt.Errorf("history: rank by %s: %w", column, err)
	}
	defer rows.Close()
	return scanCounts(rows)
}

func scanCounts(rows *sql.Rows) ([]SkillCount, error) {
	out := []SkillCount{}
	for rows.Next() {
		var c SkillCount
		if err := rows.Scan(&c.Skill, &c.Count); err != nil {
			return nil, fmt.Errorf("history: scan skill count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
