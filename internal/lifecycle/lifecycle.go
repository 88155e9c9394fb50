// Package lifecycle implements ModuleLifecycle (component C12): the
// init/shutdown state machine that wires Persistence's load/save into
// KnowledgeGraph, WorkflowLearner, SequencePredictor, and CommandHistory,
// and owns the background auto-save timer (spec section 4.12).
package lifecycle

import (
	"sync"

	"go.uber.org/zap"

	"github.com/pscue/pscue/internal/config"
	"github.com/pscue/pscue/internal/history"
	"github.com/pscue/pscue/internal/ingest"
	"github.com/pscue/pscue/internal/knowledge"
	"github.com/pscue/pscue/internal/privacy"
	"github.com/pscue/pscue/internal/pscuelog"
	"github.com/pscue/pscue/internal/sequence"
	"github.com/pscue/pscue/internal/store"
	"github.com/pscue/pscue/internal/workflow"
)

// State is spec section 4.12's state machine.
type State int

const (
	Uninitialized State = iota
	Initializing
	Running
	Draining
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stats is SPEC_FULL.md section 12 supplement 4's bounded, privacy-safe
// per-process counters, grounded on the teacher's internal/logging/audit.go
// categorized-counter notion, scoped down to hold no command text or
// argument values.
type Stats struct {
	SuggestionsServed uint64
	CacheHits         uint64
	AutoSaveCycles    uint64
}

// Module is ModuleLifecycle: the top-level owner of every C1-C11 component
// instance and the single entry point a host shell's process calls
// Init/Shutdown on.
type Module struct {
	mu    sync.Mutex
	log   *zap.Logger
	state State

	cfg   *config.Config
	store *store.Store
	auto  *store.AutoSaver

	History  *history.History
	Graph    *knowledge.Graph
	Workflow *workflow.Learner
	Sequence *sequence.Predictor
	Privacy  *privacy.Filter
	Ingest   *ingest.Ingestor

	stats Stats
}

// New builds an uninitialized Module. Init must be called before any
// component is safe to use.
func New(cfg *config.Config) *Module {
	return &Module{cfg: cfg, state: Uninitialized, log: pscuelog.Noop()}
}

// Init runs spec section 4.12's on_init sequence. Calling Init more than
// once concurrently is a silent no-op on every call after the first
// (spec's "tolerate duplicate registration errors" requirement) — the
// second caller observes Running (or whatever terminal state the first
// call reached) and does nothing further.
func (m *Module) Init() error {
	m.mu.Lock()
	if m.state != Uninitialized {
		m.mu.Unlock()
		return nil
	}
	m.state = Initializing
	m.mu.Unlock()

	root, err := pscuelog.New(m.cfg.Debug)
	if err != nil {
		root = pscuelog.Noop()
	}
	m.log = pscuelog.For(root, pscuelog.CategoryLifecycle)

	s, err := store.Open(m.cfg.DBPath(), m.cfg.BusyTimeout, pscuelog.For(root, pscuelog.CategoryStore))
	if err != nil {
		m.log.Warn("persistence unavailable, continuing in-memory-only", zap.Error(err))
	}

	m.mu.Lock()
	m.store = s
	m.History = history.New(m.cfg.HistorySize)
	m.Graph = knowledge.New(pscuelog.For(root, pscuelog.CategoryKnowledge), m.cfg.MaxCommands, m.cfg.MaxArgsPerCmd, m.cfg.DecayDays)
	m.Workflow = workflow.New(pscuelog.For(root, pscuelog.CategoryWorkflow), m.cfg.WorkflowMaxTimeDelta, m.cfg.WorkflowMinConfidence, uint64(m.cfg.WorkflowMinFrequency))
	m.Sequence = sequence.New(pscuelog.For(root, pscuelog.CategorySequence), m.cfg.MLNgramOrder, uint64(m.cfg.MLNgramMinFreq))
	m.Privacy = privacy.New(m.cfg.IgnorePatterns)
	m.mu.Unlock()

	// Step 2: load persisted state and set baselines (spec section 4.7's
	// critical "any Initialize* method that loads from disk MUST also set
	// the baseline" invariant).
	if s != nil {
		if loaded, err := s.LoadKnowledge(); err == nil {
			m.Graph.SetBaselineFromLoad(loaded)
		} else {
			m.log.Warn("failed to load knowledge graph", zap.Error(err))
		}
		if loaded, err := s.LoadWorkflow(); err == nil {
			m.Workflow.SetBaselineFromLoad(loaded)
		} else {
			m.log.Warn("failed to load workflow transitions", zap.Error(err))
		}
		if loaded, err := s.LoadSequence(); err == nil {
			m.Sequence.SetBaselineFromLoad(loaded)
		} else {
			m.log.Warn("failed to load command sequences", zap.Error(err))
		}
		if loaded, err := s.LoadHistory(m.cfg.HistorySize); err == nil {
			for _, e := range loaded {
				m.History.Add(e)
			}
		} else {
			m.log.Warn("failed to load command history", zap.Error(err))
		}
	}

	m.mu.Lock()
	m.Ingest = ingest.New(pscuelog.For(root, pscuelog.CategoryIngest), m.Privacy, m.History, m.Graph, m.Workflow, m.Sequence)
	m.mu.Unlock()

	// Step 4: background auto-save timer.
	if s != nil && !m.cfg.DisableLearning {
		m.auto = store.NewAutoSaver(pscuelog.For(root, pscuelog.CategoryStore), m.cfg.AutoSaveInterval, m.saveCycle)
		m.auto.Start()
	}

	m.mu.Lock()
	m.state = Running
	m.mu.Unlock()
	return nil
}

// saveCycle is the AutoSaver.SaveFunc: take a consistent delta snapshot
// from every learned-data component, write it, then advance baselines only
// after a successful write (spec section 4.7's save-then-advance ordering,
// so a failed save can be retried in full on the next cycle).
func (m *Module) saveCycle() error {
	m.mu.Lock()
	s := m.store
	g, wf, seq, hist := m.Graph, m.Workflow, m.Sequence, m.History
	m.mu.Unlock()
	if s == nil {
		return nil
	}

	kDeltas := g.Deltas()
	wDeltas := wf.Deltas()
	sDeltas := seq.Deltas()
	hEntries := hist.All()

	if err := s.SaveKnowledge(kDeltas); err != nil {
		return err
	}
	g.AdvanceBaseline()

	if err := s.SaveWorkflow(wDeltas); err != nil {
		return err
	}
	wf.AdvanceBaseline()

	if err := s.SaveSequence(sDeltas); err != nil {
		return err
	}
	seq.AdvanceBaseline()

	if err := s.SaveHistory(hEntries); err != nil {
		return err
	}

	m.mu.Lock()
	m.stats.AutoSaveCycles++
	m.mu.Unlock()
	return nil
}

// Shutdown runs spec section 4.12's on_shutdown: stop the timer, run one
// final synchronous save, release the DB handle. Safe to call multiple
// times or on a Module that was never successfully initialized.
func (m *Module) Shutdown() error {
	m.mu.Lock()
	if m.state == Closed || m.state == Uninitialized {
		m.mu.Unlock()
		return nil
	}
	m.state = Draining
	auto := m.auto
	s := m.store
	m.mu.Unlock()

	if auto != nil {
		auto.Stop()
	}

	var err error
	if s != nil {
		err = m.saveCycle()
		closeErr := s.Close()
		if err == nil {
			err = closeErr
		}
	}

	m.mu.Lock()
	m.state = Closed
	m.mu.Unlock()
	return err
}

// State returns the module's current lifecycle state.
func (m *Module) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Log returns the lifecycle-category logger built during Init, for
// callers (the top-level facade) that construct further components after
// Init completes.
func (m *Module) Log() *zap.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log
}

// Config returns the Config the Module was built with.
func (m *Module) Config() *config.Config {
	return m.cfg
}

// Stats returns a snapshot of the bounded, privacy-safe counters
// SPEC_FULL.md section 12 supplement 4 names, for an out-of-core "get
// database stats" diagnostic command.
func (m *Module) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// RecordSuggestionServed increments the suggestions-served counter. Called
// by the predictor/blender layer after composing a non-empty suggestion.
func (m *Module) RecordSuggestionServed() {
	m.mu.Lock()
	m.stats.SuggestionsServed++
	m.mu.Unlock()
}

// SaveNow runs one synchronous save cycle outside the auto-save ticker,
// for an explicit "save now" diagnostic command. It is a no-op (returns
// nil) if persistence is unavailable or the module is not running.
func (m *Module) SaveNow() error {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	if state != Running && state != Draining {
		return nil
	}
	return m.saveCycle()
}
