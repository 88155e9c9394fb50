package store

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// SaveFunc performs one full save cycle (spec section 4.7's auto-save).
// ModuleLifecycle supplies a closure that pulls deltas from the
// knowledge/workflow/sequence/history components and calls the matching
// Store.Save* methods, then advances each component's baseline.
type SaveFunc func() error

// AutoSaver runs SaveFunc on a ticker, grounded on the teacher's
// stop/done-channel worker shape (internal/store/reflection_worker.go).
// Unlike the teacher's reflection worker, which is optional and
// per-embedding-engine, AutoSaver is PSCue's only background goroutine and
// is always started by ModuleLifecycle.Init.
type AutoSaver struct {
	mu       sync.Mutex
	log      *zap.Logger
	interval time.Duration
	save     SaveFunc
	stop     chan struct{}
	done     chan struct{}
}

// NewAutoSaver builds an AutoSaver; Start must be called to begin the
// background timer. interval defaults to 5 minutes per spec section 4.7.
func NewAutoSaver(log *zap.Logger, interval time.Duration, save SaveFunc) *AutoSaver {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &AutoSaver{log: log, interval: interval, save: save}
}

// Start launches the background ticker goroutine. Calling Start twice
// without an intervening Stop is a no-op, matching the teacher's
// startReflectionWorker guard.
func (a *AutoSaver) Start() {
	a.mu.Lock()
	if a.stop != nil {
		a.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	a.stop, a.done = stop, done
	a.mu.Unlock()

	go a.run(stop, done)
}

// Stop halts the background timer and waits (bounded) for the in-flight
// cycle, if any, to finish. It does NOT perform a final save — callers
// must call SaveNow for the spec section 4.7 "synchronous flush on
// shutdown" requirement.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	stop, done := a.stop, a.done
	a.stop, a.done = nil, nil
	a.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	if done != nil {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}
}

// SaveNow runs one save cycle synchronously, for shutdown flushes and
// explicit "save now" diagnostic commands.
func (a *AutoSaver) SaveNow() error {
	return a.save()
}

func (a *AutoSaver) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := a.save(); err != nil {
				a.log.Warn("auto-save cycle failed", zap.Error(err))
			}
		}
	}
}
