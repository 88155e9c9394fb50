package pscue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscue/pscue/internal/blender"
	"github.com/pscue/pscue/internal/config"
	"github.com/pscue/pscue/internal/ingest"
	"github.com/pscue/pscue/internal/pcd"
)

func testEngine(t *testing.T) *Engine {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.AutoSaveInterval = time.Hour
	e := New(cfg)
	require.NoError(t, e.Start())
	t.Cleanup(func() { e.Stop() })
	return e
}

func TestStartTwiceIsSafe(t *testing.T) {
	e := testEngine(t)
	require.NoError(t, e.Start())
}

func TestRecordCommandThenCompleteUsesLearnedData(t *testing.T) {
	e := testEngine(t)

	for i := 0; i < 5; i++ {
		e.RecordCommand(ingest.Event{CommandLine: "git status", Success: true})
	}

	out, ok := e.Complete("git s")
	assert.True(t, ok)
	assert.Contains(t, out, "status")
}

func TestRegisterCompletionProviderOutranksLearned(t *testing.T) {
	e := testEngine(t)
	e.RegisterCompletionProvider("git", blender.CompletionProviderFunc(func(command string, args []string) []string {
		return []string{"stash"}
	}))

	for i := 0; i < 5; i++ {
		e.RecordCommand(ingest.Event{CommandLine: "git status", Success: true})
	}

	out, ok := e.Complete("git s")
	assert.True(t, ok)
	assert.Equal(t, "git stash", out)
}

func TestBestDirectoryReturnsFalseWithNoKnowledge(t *testing.T) {
	e := testEngine(t)
	_, ok := e.BestDirectory(pcd.Request{Query: "nope-does-not-exist-anywhere", CurrentDirectory: t.TempDir()})
	assert.False(t, ok)
}

func TestStatsReflectsAutoSaveCycleOnStop(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.AutoSaveInterval = time.Hour
	e := New(cfg)
	require.NoError(t, e.Start())

	require.NoError(t, e.Stop())
	assert.Equal(t, uint64(1), e.Stats().AutoSaveCycles)
}

func TestCompleteAfterStopReturnsFalse(t *testing.T) {
	e := testEngine(t)
	require.NoError(t, e.Stop())
	_, ok := e.Complete("git s")
	assert.False(t, ok)
}
