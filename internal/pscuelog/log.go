// Package pscuelog provides categorized structured logging for PSCue,
// backed by go.uber.org/zap. It keeps the teacher's one-logger-per-subsystem
// shape (see codenerd's internal/logging) but drops the teacher's global
// mutable logger registry in favor of explicit construction: ModuleLifecycle
// builds one root logger and hands each component its own named child, which
// matches the single-writer / explicit-ownership model spec section 5
// requires for the knowledge graph and friends.
package pscuelog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names the PSCue subsystem a logger speaks for. These mirror the
// component table in spec section 2.
type Category string

const (
	CategoryLifecycle  Category = "lifecycle"
	CategoryIngest     Category = "ingest"
	CategoryKnowledge  Category = "knowledge"
	CategoryWorkflow   Category = "workflow"
	CategorySequence   Category = "sequence"
	CategoryStore      Category = "store"
	CategoryPredictor  Category = "predictor"
	CategoryBlender    Category = "blender"
	CategoryPCD        Category = "pcd"
	CategoryHistory    Category = "history"
	CategoryPrivacy    Category = "privacy"
	CategoryToken      Category = "token"
)

// New builds the root logger. debug selects zap's development encoder
// (human-readable, debug level); production mode uses the JSON encoder at
// info level, matching the teacher's debug_mode switch in
// internal/config/logging.go.
func New(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// For returns a named child logger for the given subsystem category. The
// "component" field lets a host aggregate or filter PSCue's logs by
// subsystem without needing per-category files the way the teacher's
// logger does.
func For(root *zap.Logger, cat Category) *zap.Logger {
	return root.With(zap.String("component", string(cat)))
}

// Noop returns a logger that discards everything, for tests and for callers
// that have not wired a real logger yet (ModuleLifecycle falls back to this
// before Init completes).
func Noop() *zap.Logger {
	return zap.NewNop()
}
