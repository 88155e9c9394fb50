package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pscue/pscue/internal/history"
)

// SaveHistory appends new CommandHistory entries (spec section 4.7's
// command_history table is append-only, unlike the delta-merged counters;
// a row is identified by its uuid so re-saving the same in-memory entry is
// a no-op rather than a duplicate).
func (s *Store) SaveHistory(entries []history.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.withRetry("store.SaveHistory", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, e := range entries {
			argsJSON, err := json.Marshal(e.Arguments)
			if err != nil {
				return fmt.Errorf("marshal arguments for %s: %w", e.ID, err)
			}
			if _, err := tx.Exec(`
				INSERT INTO command_history (uuid, command, command_line, arguments_json, timestamp, success, working_directory)
				VALUES (?, ?, ?, ?, ?, 1, ?)
				ON CONFLICT(uuid) DO NOTHING
			`, e.ID, e.Command, e.FullLine, string(argsJSON), e.Timestamp, e.WorkingDirectory); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// LoadHistory returns the most recent limit command_history rows, oldest
// first, suitable for seeding a fresh history.History on startup.
func (s *Store) LoadHistory(limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT uuid, command, command_line, arguments_json, timestamp, working_directory
		FROM command_history
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reversed []history.Entry
	for rows.Next() {
		var e history.Entry
		var argsJSON string
		var wd sql.NullString
		if err := rows.Scan(&e.ID, &e.Command, &e.FullLine, &argsJSON, &e.Timestamp, &wd); err != nil {
			return nil, fmt.Errorf("scan command_history row: %w", err)
		}
		e.WorkingDirectory = wd.String
		if err := json.Unmarshal([]byte(argsJSON), &e.Arguments); err != nil {
			return nil, fmt.Errorf("unmarshal arguments for %s: %w", e.ID, err)
		}
		reversed = append(reversed, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]history.Entry, len(reversed))
	for i, e := range reversed {
		out[len(reversed)-1-i] = e
	}
	return out, nil
}
