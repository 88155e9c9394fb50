// Package history implements CommandHistory (component C3), a bounded ring
// buffer of recently executed commands, per spec section 4.3. It is
// single-writer / multi-reader safe: FeedbackIngestor is the only writer,
// predictors read consistent snapshots under a lock (spec section 5).
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is the immutable record spec section 3 defines as HistoryEntry.
// PSCue additionally stamps an ID (google/uuid, grounded in the teacher's
// use of the same library for session/shard identifiers) so a host layer
// can correlate a history entry with a persisted command_history row
// without relying on timestamp equality.
type Entry struct {
	ID                string
	Command           string
	FullLine          string
	Arguments         []string
	Timestamp         time.Time
	WorkingDirectory  string // empty means "not provided"
}

// History is a fixed-capacity ring buffer, newest-last internally.
type History struct {
	mu       sync.RWMutex
	capacity int
	buf      []Entry // logical order: oldest first
}

// New builds a History with the given capacity (spec default 100).
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = 100
	}
	return &History{capacity: capacity, buf: make([]Entry, 0, capacity)}
}

// Add appends entry, evicting the oldest if at capacity. O(1) amortized.
func (h *History) Add(e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buf) >= h.capacity {
		// evict exactly one oldest entry
		copy(h.buf, h.buf[1:])
		h.buf = h.buf[:len(h.buf)-1]
	}
	h.buf = append(h.buf, e)
}

// Recent returns the most recent n entries, newest first. A copy is
// returned so callers observe a consistent snapshot even if Add races with
// the read (spec section 4.3 "readers must observe a consistent
// snapshot").
func (h *History) Recent(n int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.recentLocked(n)
}

// All returns every retained entry, newest first.
func (h *History) All() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.recentLocked(len(h.buf))
}

// recentLocked is Recent's body, callable by other methods that already
// hold h.mu for reading. sync.RWMutex is not recursively read-lockable: a
// second RLock from the same goroutine can deadlock behind a writer that
// arrived between the two calls, so every exported reader takes exactly
// one RLock per call and delegates here.
func (h *History) recentLocked(n int) []Entry {
	if n <= 0 || len(h.buf) == 0 {
		return nil
	}
	if n > len(h.buf) {
		n = len(h.buf)
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = h.buf[len(h.buf)-1-i]
	}
	return out
}

// Len reports how many entries are currently retained.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.buf)
}

// Last returns the most recently added entry and true, or the zero Entry
// and false if history is empty. Used by FeedbackIngestor to compute
// workflow/n-gram transitions (spec section 4.8 step 9).
func (h *History) Last() (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.buf) == 0 {
		return Entry{}, false
	}
	return h.buf[len(h.buf)-1], true
}
