package store

import (
	"fmt"

	"github.com/pscue/pscue/internal/workflow"
)

// SaveWorkflow applies workflow_transitions UPSERTs with the same
// delta-merge semantics as SaveKnowledge.
func (s *Store) SaveWorkflow(deltas []workflow.TransitionDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	return s.withRetry("store.SaveWorkflow", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, d := range deltas {
			if _, err := tx.Exec(`
				INSERT INTO workflow_transitions (from_command, to_command, frequency, total_time_delta_ms, first_seen, last_used)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(from_command, to_command) DO UPDATE SET
					frequency = frequency + excluded.frequency,
					total_time_delta_ms = total_time_delta_ms + excluded.total_time_delta_ms,
					last_used = MAX(last_used, excluded.last_used),
					first_seen = MIN(first_seen, excluded.first_seen)
			`, d.From, d.To, d.FrequencyDelta, d.TotalTimeDeltaMsDelta, d.FirstSeen, d.LastUsed); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// LoadWorkflow reconstructs the full persisted workflow_transitions table
// as TransitionDelta rows for workflow.Learner.SetBaselineFromLoad.
func (s *Store) LoadWorkflow() ([]workflow.TransitionDelta, error) {
	rows, err := s.db.Query(`SELECT from_command, to_command, frequency, total_time_delta_ms, first_seen, last_used FROM workflow_transitions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []workflow.TransitionDelta
	for rows.Next() {
		var d workflow.TransitionDelta
		if err := rows.Scan(&d.From, &d.To, &d.FrequencyDelta, &d.TotalTimeDeltaMsDelta, &d.FirstSeen, &d.LastUsed); err != nil {
			return nil, fmt.Errorf("scan workflow_transitions row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
