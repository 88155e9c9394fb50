// Package store implements Persistence (component C7): an embedded SQLite
// database holding the delta-merged, cross-session learned data described
// in spec section 4.7. It follows the teacher's internal/store.LocalStore
// shape almost verbatim for the connection-setup concern (single-conn pool,
// WAL journal mode, busy_timeout, synchronous=NORMAL) and generalizes its
// schema/save/load logic to PSCue's ten learned-data tables instead of the
// teacher's memory-shard tables.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pscue/pscue/internal/pscueerr"
)

// Store is Persistence. One *sql.DB connection is kept open for the
// process's lifetime; SetMaxOpenConns(1) matches the teacher's LocalStore,
// since SQLite under WAL still serializes writers and a single Go-level
// connection avoids spurious SQLITE_BUSY from this process's own goroutines
// racing each other.
type Store struct {
	db          *sql.DB
	log         *zap.Logger
	path        string
	busyTimeout time.Duration
}

// Open creates the directory (if needed), opens the database at path, sets
// the teacher's WAL/busy_timeout/synchronous pragmas, and creates the
// schema. Mirrors codenerd's NewLocalStore.
func Open(path string, busyTimeout time.Duration, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pscueerr.New(pscueerr.ClassFatalStore, "store.Open", fmt.Errorf("create data dir: %w", err))
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, pscueerr.New(pscueerr.ClassFatalStore, "store.Open", fmt.Errorf("open sqlite: %w", err))
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())); err != nil {
		log.Warn("failed to set busy_timeout pragma", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Warn("failed to set journal_mode=WAL pragma", zap.Error(err))
	}
	// synchronous=NORMAL is safe under WAL (WAL already gives crash
	// recovery) and is a substantial write speedup over the FULL default.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Warn("failed to set synchronous=NORMAL pragma", zap.Error(err))
	}

	s := &Store{db: db, log: log, path: path, busyTimeout: busyTimeout}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, pscueerr.New(pscueerr.ClassFatalStore, "store.Open", fmt.Errorf("initialize schema: %w", err))
	}
	return s, nil
}

func (s *Store) initialize() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path Store was opened with.
func (s *Store) Path() string {
	return s.path
}

// DB exposes the underlying handle for diagnostic tooling (cmd/pscuectl).
func (s *Store) DB() *sql.DB {
	return s.db
}

// withRetry runs op, retrying up to 3 total attempts with bounded backoff
// when the underlying error is a transient SQLite busy/locked condition
// (spec section 4.7's failure semantics). Any other error is returned
// immediately.
func (s *Store) withRetry(opName string, op func() error) error {
	const maxAttempts = 3
	var lastErr error
	backoff := 25 * time.Millisecond
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTransient(err) {
			return pscueerr.New(pscueerr.ClassFatalStore, opName, err)
		}
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return pscueerr.New(pscueerr.ClassTransientStore, opName, lastErr)
}

// isTransient recognizes SQLite's busy/locked error text. go-sqlite3
// returns a typed sqlite3.Error with an ExtendedCode, but matching on the
// message keeps this package decoupled from the driver's internal types
// and still catches the two conditions spec section 4.7 calls out
// ("busy, locked").
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, sub := range []string{"database is locked", "database table is locked", "SQLITE_BUSY", "SQLITE_LOCKED"} {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}
