package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pscue/pscue/internal/knowledge"
	"github.com/pscue/pscue/internal/pscueerr"
)

// flagsKeySeparator matches internal/knowledge's canonical flag-combination
// join separator so flags_key round-trips exactly through persistence.
const flagsKeySeparator = "\x00"

func flagsKeyJoin(flags []string) string { return strings.Join(flags, flagsKeySeparator) }

func splitFlagsKey(key string) []string { return strings.Split(key, flagsKeySeparator) }

// SaveKnowledge applies a batch of knowledge.CommandDelta rows with the
// spec section 4.7 UPSERT semantics: count = existing + delta,
// last_used = max(existing, new), first_seen = min(existing, new). All
// writes happen in one transaction so a crash mid-save can never leave the
// ten tables inconsistent with each other.
func (s *Store) SaveKnowledge(deltas []knowledge.CommandDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	return s.withRetry("store.SaveKnowledge", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, cd := range deltas {
			if err := upsertCommand(tx, cd); err != nil {
				return err
			}
			for _, a := range cd.Arguments {
				if err := upsertArgument(tx, cd.Command, a); err != nil {
					return err
				}
			}
			for _, f := range cd.FlagCombinations {
				if err := upsertFlagCombination(tx, cd.Command, f); err != nil {
					return err
				}
			}
			for _, sq := range cd.ArgumentSequences {
				if err := upsertArgumentSequence(tx, cd.Command, sq); err != nil {
					return err
				}
			}
			for _, pv := range cd.ParameterValues {
				if err := upsertParameterValue(tx, cd.Command, pv); err != nil {
					return err
				}
			}
			for _, co := range cd.CoOccurrences {
				if err := upsertCoOccurrence(tx, cd.Command, co); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	})
}

func upsertCommand(tx *sql.Tx, cd knowledge.CommandDelta) error {
	_, err := tx.Exec(`
		INSERT INTO commands (command, total_usage_count, first_seen, last_used)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(command) DO UPDATE SET
			total_usage_count = total_usage_count + excluded.total_usage_count,
			last_used = MAX(last_used, excluded.last_used),
			first_seen = MIN(first_seen, excluded.first_seen)
	`, cd.Command, cd.UsageCountDelta, cd.FirstSeen, cd.LastUsed)
	return err
}

func upsertArgument(tx *sql.Tx, command string, a knowledge.ArgumentDelta) error {
	_, err := tx.Exec(`
		INSERT INTO arguments (command, argument, usage_count, first_seen, last_used, is_flag)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(command, argument) DO UPDATE SET
			usage_count = usage_count + excluded.usage_count,
			last_used = MAX(last_used, excluded.last_used),
			first_seen = MIN(first_seen, excluded.first_seen)
	`, command, a.Argument, a.UsageCountDelta, a.FirstSeen, a.LastUsed, a.IsFlag)
	return err
}

func upsertFlagCombination(tx *sql.Tx, command string, f knowledge.FlagCombinationDelta) error {
	key := flagsKeyJoin(f.Flags)
	_, err := tx.Exec(`
		INSERT INTO flag_combinations (command, flags_key, flags, usage_count, first_seen, last_used)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(command, flags_key) DO UPDATE SET
			usage_count = usage_count + excluded.usage_count,
			last_used = MAX(last_used, excluded.last_used),
			first_seen = MIN(first_seen, excluded.first_seen)
	`, command, key, key, f.UsageCountDelta, f.FirstSeen, f.LastUsed)
	return err
}

func upsertArgumentSequence(tx *sql.Tx, command string, sq knowledge.ArgumentSequenceDelta) error {
	_, err := tx.Exec(`
		INSERT INTO argument_sequences (command, first_argument, second_argument, usage_count, first_seen, last_used)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(command, first_argument, second_argument) DO UPDATE SET
			usage_count = usage_count + excluded.usage_count,
			last_used = MAX(last_used, excluded.last_used),
			first_seen = MIN(first_seen, excluded.first_seen)
	`, command, sq.First, sq.Second, sq.UsageCountDelta, sq.FirstSeen, sq.LastUsed)
	return err
}

func upsertParameterValue(tx *sql.Tx, command string, pv knowledge.ParameterValueDelta) error {
	_, err := tx.Exec(`
		INSERT INTO parameter_values (command, parameter, value, usage_count, first_seen, last_used)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(command, parameter, value) DO UPDATE SET
			usage_count = usage_count + excluded.usage_count,
			last_used = MAX(last_used, excluded.last_used)
	`, command, pv.Parameter, pv.Value, pv.UsageCountDelta, pv.LastUsed, pv.LastUsed)
	return err
}

func upsertCoOccurrence(tx *sql.Tx, command string, co knowledge.CoOccurrenceDelta) error {
	_, err := tx.Exec(`
		INSERT INTO co_occurrences (command, arg_a, arg_b, usage_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(command, arg_a, arg_b) DO UPDATE SET
			usage_count = usage_count + excluded.usage_count
	`, command, co.ArgA, co.ArgB, co.UsageCountDelta)
	return err
}

// LoadKnowledge reconstructs one knowledge.CommandDelta per command row,
// suitable for knowledge.Graph.SetBaselineFromLoad. Each returned delta's
// *Delta field carries the full persisted count (not an incremental
// change) since this is the very first baseline the in-memory graph sees.
func (s *Store) LoadKnowledge() ([]knowledge.CommandDelta, error) {
	rows, err := s.db.Query(`SELECT command, total_usage_count, first_seen, last_used FROM commands`)
	if err != nil {
		return nil, pscueerr.New(pscueerr.ClassFatalStore, "store.LoadKnowledge", err)
	}
	defer rows.Close()

	byCommand := make(map[string]*knowledge.CommandDelta)
	var order []string
	for rows.Next() {
		var cd knowledge.CommandDelta
		if err := rows.Scan(&cd.Command, &cd.UsageCountDelta, &cd.FirstSeen, &cd.LastUsed); err != nil {
			return nil, fmt.Errorf("scan commands row: %w", err)
		}
		byCommand[cd.Command] = &cd
		order = append(order, cd.Command)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadArguments(s.db, byCommand); err != nil {
		return nil, err
	}
	if err := loadFlagCombinations(s.db, byCommand); err != nil {
		return nil, err
	}
	if err := loadArgumentSequences(s.db, byCommand); err != nil {
		return nil, err
	}
	if err := loadParameterValues(s.db, byCommand); err != nil {
		return nil, err
	}
	if err := loadCoOccurrences(s.db, byCommand); err != nil {
		return nil, err
	}

	out := make([]knowledge.CommandDelta, 0, len(order))
	for _, cmd := range order {
		out = append(out, *byCommand[cmd])
	}
	return out, nil
}

func loadArguments(db *sql.DB, byCommand map[string]*knowledge.CommandDelta) error {
	rows, err := db.Query(`SELECT command, argument, usage_count, first_seen, last_used, is_flag FROM arguments`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var command string
		var a knowledge.ArgumentDelta
		if err := rows.Scan(&command, &a.Argument, &a.UsageCountDelta, &a.FirstSeen, &a.LastUsed, &a.IsFlag); err != nil {
			return fmt.Errorf("scan arguments row: %w", err)
		}
		if cd, ok := byCommand[command]; ok {
			cd.Arguments = append(cd.Arguments, a)
		}
	}
	return rows.Err()
}

func loadFlagCombinations(db *sql.DB, byCommand map[string]*knowledge.CommandDelta) error {
	rows, err := db.Query(`SELECT command, flags, usage_count, first_seen, last_used FROM flag_combinations`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var command, flagsJoined string
		var f knowledge.FlagCombinationDelta
		if err := rows.Scan(&command, &flagsJoined, &f.UsageCountDelta, &f.FirstSeen, &f.LastUsed); err != nil {
			return fmt.Errorf("scan flag_combinations row: %w", err)
		}
		f.Flags = splitFlagsKey(flagsJoined)
		if cd, ok := byCommand[command]; ok {
			cd.FlagCombinations = append(cd.FlagCombinations, f)
		}
	}
	return rows.Err()
}

func loadArgumentSequences(db *sql.DB, byCommand map[string]*knowledge.CommandDelta) error {
	rows, err := db.Query(`SELECT command, first_argument, second_argument, usage_count, first_seen, last_used FROM argument_sequences`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var command string
		var sq knowledge.ArgumentSequenceDelta
		if err := rows.Scan(&command, &sq.First, &sq.Second, &sq.UsageCountDelta, &sq.FirstSeen, &sq.LastUsed); err != nil {
			return fmt.Errorf("scan argument_sequences row: %w", err)
		}
		if cd, ok := byCommand[command]; ok {
			cd.ArgumentSequences = append(cd.ArgumentSequences, sq)
		}
	}
	return rows.Err()
}

func loadParameterValues(db *sql.DB, byCommand map[string]*knowledge.CommandDelta) error {
	rows, err := db.Query(`SELECT command, parameter, value, usage_count, last_used FROM parameter_values`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var command string
		var pv knowledge.ParameterValueDelta
		if err := rows.Scan(&command, &pv.Parameter, &pv.Value, &pv.UsageCountDelta, &pv.LastUsed); err != nil {
			return fmt.Errorf("scan parameter_values row: %w", err)
		}
		if cd, ok := byCommand[command]; ok {
			cd.ParameterValues = append(cd.ParameterValues, pv)
		}
	}
	return rows.Err()
}

func loadCoOccurrences(db *sql.DB, byCommand map[string]*knowledge.CommandDelta) error {
	rows, err := db.Query(`SELECT command, arg_a, arg_b, usage_count FROM co_occurrences`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var command string
		var co knowledge.CoOccurrenceDelta
		if err := rows.Scan(&command, &co.ArgA, &co.ArgB, &co.UsageCountDelta); err != nil {
			return fmt.Errorf("scan co_occurrences row: %w", err)
		}
		if cd, ok := byCommand[command]; ok {
			cd.CoOccurrences = append(cd.CoOccurrences, co)
		}
	}
	return rows.Err()
}
