package store

import (
	"fmt"
	"os"

	"github.com/pscue/pscue/internal/pscueerr"
)

var clearedTables = []string{
	"commands", "arguments", "flag_combinations", "argument_sequences",
	"parameters", "parameter_values", "command_history", "command_sequences",
	"workflow_transitions", "co_occurrences",
}

// Clear deletes all rows from every learned-data table. Callers must also
// reset their in-memory baselines to zero (spec section 4.7) — Store has no
// visibility into the knowledge/workflow/sequence baselines, so that step
// is the caller's responsibility (ModuleLifecycle orchestrates it).
func (s *Store) Clear() error {
	return s.withRetry("store.Clear", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()
		for _, table := range clearedTables {
			if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return tx.Commit()
	})
}

// ForceClear deletes the database file and its WAL/SHM journal side-files
// directly, without requiring a running Store — spec section 4.7's
// recovery path for a corrupted database that cannot even be opened.
func ForceClear(path string) error {
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		p := path + suffix
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return pscueerr.New(pscueerr.ClassFilesystemBenign, "store.ForceClear", fmt.Errorf("remove %s: %w", p, err))
		}
	}
	return nil
}
