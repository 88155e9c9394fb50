package store

import (
	"fmt"

	"github.com/pscue/pscue/internal/sequence"
)

// SaveSequence applies command_sequences UPSERTs (bigram frequency only;
// spec section 4.7's schema has no timing columns for this table, unlike
// workflow_transitions).
func (s *Store) SaveSequence(deltas []sequence.BigramDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	return s.withRetry("store.SaveSequence", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, d := range deltas {
			if _, err := tx.Exec(`
				INSERT INTO command_sequences (prev_command, next_command, frequency, last_seen)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(prev_command, next_command) DO UPDATE SET
					frequency = frequency + excluded.frequency,
					last_seen = MAX(last_seen, excluded.last_seen)
			`, d.Prev, d.Next, d.FrequencyDelta, d.LastUsed); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// LoadSequence reconstructs the full persisted command_sequences table as
// BigramDelta rows for sequence.Predictor.SetBaselineFromLoad.
func (s *Store) LoadSequence() ([]sequence.BigramDelta, error) {
	rows, err := s.db.Query(`SELECT prev_command, next_command, frequency, last_seen FROM command_sequences`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sequence.BigramDelta
	for rows.Next() {
		var d sequence.BigramDelta
		if err := rows.Scan(&d.Prev, &d.Next, &d.FrequencyDelta, &d.LastUsed); err != nil {
			return nil, fmt.Errorf("scan command_sequences row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
