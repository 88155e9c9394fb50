// Package pscue is the top-level facade wiring every learning and
// prediction component (C1-C12) into the handful of calls a host shell
// integration actually needs: record what happened, ask for a completion,
// ask for a directory jump, and shut down cleanly.
package pscue

import (
	"github.com/pscue/pscue/internal/blender"
	"github.com/pscue/pscue/internal/config"
	"github.com/pscue/pscue/internal/ingest"
	"github.com/pscue/pscue/internal/lifecycle"
	"github.com/pscue/pscue/internal/pcd"
	"github.com/pscue/pscue/internal/predictor"
)

// Engine is the single object a host shell integration holds for the
// lifetime of one shell process.
type Engine struct {
	module    *lifecycle.Module
	predictor *predictor.Predictor
	blender   *blender.Blender
	pcd       *pcd.Engine
}

// New assembles an Engine from cfg but does not yet open persistence or
// start learning; call Start before using any other method.
func New(cfg *config.Config) *Engine {
	return &Engine{module: lifecycle.New(cfg)}
}

// Start runs ModuleLifecycle's on_init sequence and builds the
// request-serving layer (GenericPredictor, PredictorBlender, PcdEngine) on
// top of the now-loaded C3-C6 components. Safe to call more than once;
// later calls are a no-op per ModuleLifecycle's own duplicate-init
// tolerance.
func (e *Engine) Start() error {
	if err := e.module.Init(); err != nil {
		return err
	}
	m := e.module
	e.predictor = predictor.New(m.Log(), m.Graph, m.Workflow, m.Sequence, m.History)
	e.blender = blender.New(m.Log(), e.predictor, m.Config().InlineBudget)
	e.pcd = pcd.New(m.Log(), m.Graph, m.Config().PCD, m.Config().DecayDays)
	return nil
}

// RegisterCompletionProvider wires a shell-side static completion source
// (spec section 4.10's CompletionProvider) into the blender, so known
// flags/subcommands always outrank learned candidates for the same word.
func (e *Engine) RegisterCompletionProvider(command string, provider blender.CompletionProvider) {
	if e.blender == nil {
		return
	}
	e.blender.Register(command, provider)
}

// RecordCommand feeds one executed command line into FeedbackIngestor.
// A Draining or Closed engine accepts the call and does nothing, matching
// spec section 4.12's "requests during drain/after close return empty /
// no-op" contract.
func (e *Engine) RecordCommand(ev ingest.Event) {
	if e.module.State() != lifecycle.Running {
		return
	}
	e.module.Ingest.Ingest(ev)
}

// Complete returns the composed inline suggestion for the given input, or
// ok=false if nothing qualifies. Returns ok=false immediately once the
// engine has left the Running state.
func (e *Engine) Complete(input string) (string, bool) {
	if e.module.State() != lifecycle.Running || e.blender == nil {
		return "", false
	}
	suggestion, ok := e.blender.GetSuggestion(input)
	if ok {
		e.module.RecordSuggestionServed()
	}
	return suggestion, ok
}

// BestDirectory returns PcdEngine's top existing-directory match for a cd
// query, or ok=false if nothing on disk matches.
func (e *Engine) BestDirectory(req pcd.Request) (string, bool) {
	if e.module.State() != lifecycle.Running || e.pcd == nil {
		return "", false
	}
	return e.pcd.BestMatch(req)
}

// RankDirectories returns PcdEngine's full ranked candidate list, for a
// Tab-completion surface that wants more than one option.
func (e *Engine) RankDirectories(req pcd.Request) []pcd.Candidate {
	if e.module.State() != lifecycle.Running || e.pcd == nil {
		return nil
	}
	return e.pcd.Rank(req)
}

// Stats returns ModuleLifecycle's bounded per-process counters.
func (e *Engine) Stats() lifecycle.Stats {
	return e.module.Stats()
}

// Stop runs ModuleLifecycle's on_shutdown sequence: stop the auto-save
// timer, flush one final synchronous save, release the database handle.
func (e *Engine) Stop() error {
	return e.module.Shutdown()
}
