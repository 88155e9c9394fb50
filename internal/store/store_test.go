package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pscue/pscue/internal/history"
	"github.com/pscue/pscue/internal/knowledge"
	"github.com/pscue/pscue/internal/pscuelog"
	"github.com/pscue/pscue/internal/sequence"
	"github.com/pscue/pscue/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "learned-data.db")
	s, err := Open(path, time.Second, pscuelog.Noop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchema(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"commands", "arguments", "flag_combinations",
		"argument_sequences", "parameters", "parameter_values", "command_history",
		"command_sequences", "workflow_transitions", "co_occurrences"} {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, 0, count)
	}
}

func TestSaveAndLoadKnowledgeRoundTrips(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	deltas := []knowledge.CommandDelta{
		{
			Command: "git", UsageCountDelta: 3, FirstSeen: now, LastUsed: now,
			Arguments: []knowledge.ArgumentDelta{
				{Argument: "commit", UsageCountDelta: 2, FirstSeen: now, LastUsed: now},
			},
			FlagCombinations: []knowledge.FlagCombinationDelta{
				{Flags: []string{"-a", "-m"}, UsageCountDelta: 1, FirstSeen: now, LastUsed: now},
			},
			ArgumentSequences: []knowledge.ArgumentSequenceDelta{
				{First: "add", Second: ".", UsageCountDelta: 1, FirstSeen: now, LastUsed: now},
			},
			ParameterValues: []knowledge.ParameterValueDelta{
				{Parameter: "-m", Value: "fix", UsageCountDelta: 1, LastUsed: now},
			},
			CoOccurrences: []knowledge.CoOccurrenceDelta{
				{ArgA: "-a", ArgB: "-m", UsageCountDelta: 1},
			},
		},
	}

	require.NoError(t, s.SaveKnowledge(deltas))

	loaded, err := s.LoadKnowledge()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "git", loaded[0].Command)
	assert.EqualValues(t, 3, loaded[0].UsageCountDelta)
	require.Len(t, loaded[0].Arguments, 1)
	assert.Equal(t, "commit", loaded[0].Arguments[0].Argument)
	require.Len(t, loaded[0].FlagCombinations, 1)
	assert.ElementsMatch(t, []string{"-a", "-m"}, loaded[0].FlagCombinations[0].Flags)
	require.Len(t, loaded[0].CoOccurrences, 1)
}

func TestSaveKnowledgeIsAdditiveAcrossCalls(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	first := []knowledge.CommandDelta{{Command: "ls", UsageCountDelta: 2, FirstSeen: now, LastUsed: now}}
	require.NoError(t, s.SaveKnowledge(first))

	second := []knowledge.CommandDelta{{Command: "ls", UsageCountDelta: 3, FirstSeen: now, LastUsed: now.Add(time.Minute)}}
	require.NoError(t, s.SaveKnowledge(second))

	loaded, err := s.LoadKnowledge()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.EqualValues(t, 5, loaded[0].UsageCountDelta)
}

func TestKnowledgeGraphStoreRoundTripPreventsDoubleCounting(t *testing.T) {
	s := openTestStore(t)
	g := knowledge.New(pscuelog.Noop(), 500, 100, 30)
	g.RecordUsage("git", []string{"commit"})

	require.NoError(t, s.SaveKnowledge(g.Deltas()))
	g.AdvanceBaseline()

	loaded, err := s.LoadKnowledge()
	require.NoError(t, err)

	g2 := knowledge.New(pscuelog.Noop(), 500, 100, 30)
	g2.SetBaselineFromLoad(loaded)
	assert.Empty(t, g2.Deltas())

	ck, ok := g2.Lookup("git")
	require.True(t, ok)
	assert.EqualValues(t, 1, ck.TotalUsageCount)
}

func TestSaveAndLoadWorkflow(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	deltas := []workflow.TransitionDelta{
		{From: "git add", To: "git commit", FrequencyDelta: 1, TotalTimeDeltaMsDelta: 10000, FirstSeen: now, LastUsed: now},
	}
	require.NoError(t, s.SaveWorkflow(deltas))

	loaded, err := s.LoadWorkflow()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "git add", loaded[0].From)
	assert.EqualValues(t, 10000, loaded[0].TotalTimeDeltaMsDelta)
}

func TestSaveAndLoadSequence(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	deltas := []sequence.BigramDelta{{Prev: "git add", Next: "git commit", FrequencyDelta: 2, LastUsed: now}}
	require.NoError(t, s.SaveSequence(deltas))

	loaded, err := s.LoadSequence()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.EqualValues(t, 2, loaded[0].FrequencyDelta)
}

func TestSaveAndLoadHistoryOrdersOldestFirst(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	entries := []history.Entry{
		{ID: "1", Command: "ls", FullLine: "ls -la", Arguments: []string{"-la"}, Timestamp: now, WorkingDirectory: "/tmp"},
		{ID: "2", Command: "pwd", FullLine: "pwd", Timestamp: now.Add(time.Second)},
	}
	require.NoError(t, s.SaveHistory(entries))

	loaded, err := s.LoadHistory(10)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "ls", loaded[0].Command)
	assert.Equal(t, "pwd", loaded[1].Command)
}

func TestSaveHistoryIsIdempotentByUUID(t *testing.T) {
	s := openTestStore(t)
	e := history.Entry{ID: "dup", Command: "ls", FullLine: "ls", Timestamp: time.Now()}
	require.NoError(t, s.SaveHistory([]history.Entry{e}))
	require.NoError(t, s.SaveHistory([]history.Entry{e}))

	loaded, err := s.LoadHistory(10)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestClearDeletesAllRows(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	require.NoError(t, s.SaveKnowledge([]knowledge.CommandDelta{{Command: "ls", UsageCountDelta: 1, FirstSeen: now, LastUsed: now}}))
	require.NoError(t, s.Clear())

	loaded, err := s.LoadKnowledge()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestForceClearRemovesFilesWithoutOpenStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "learned-data.db")
	s, err := Open(path, time.Second, pscuelog.Noop())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, ForceClear(path))
}

func TestAutoSaverRunsOnStartAndStop(t *testing.T) {
	calls := make(chan struct{}, 10)
	a := NewAutoSaver(pscuelog.Noop(), 10*time.Millisecond, func() error {
		select {
		case calls <- struct{}{}:
		default:
		}
		return nil
	})
	a.Start()
	defer a.Stop()

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("expected at least one auto-save cycle")
	}
}

func TestAutoSaverSaveNow(t *testing.T) {
	var called bool
	a := NewAutoSaver(pscuelog.Noop(), time.Hour, func() error {
		called = true
		return nil
	})
	require.NoError(t, a.SaveNow())
	assert.True(t, called)
}
