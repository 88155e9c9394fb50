package knowledge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltasAfterFirstRecordUsageEqualsFullCount(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("git", []string{"commit", "-m"})
	g.RecordUsage("git", []string{"commit", "-m"})

	deltas := g.Deltas()
	require.Len(t, deltas, 1)
	assert.Equal(t, "git", deltas[0].Command)
	assert.EqualValues(t, 2, deltas[0].UsageCountDelta)
}

func TestAdvanceBaselineZeroesSubsequentDeltas(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("git", []string{"commit"})
	g.AdvanceBaseline()

	deltas := g.Deltas()
	assert.Empty(t, deltas)
}

func TestAdvanceBaselineThenNewUsageIsIncremental(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("git", []string{"commit"})
	g.AdvanceBaseline()

	g.RecordUsage("git", []string{"commit"})
	deltas := g.Deltas()
	require.Len(t, deltas, 1)
	assert.EqualValues(t, 1, deltas[0].UsageCountDelta)
}

func TestSetBaselineFromLoadPreventsDoubleCounting(t *testing.T) {
	g := newTestGraph(t, nil)
	now := time.Now()

	loaded := []CommandDelta{
		{
			Command:         "git",
			UsageCountDelta: 5,
			FirstSeen:       now.Add(-time.Hour),
			LastUsed:        now,
			Arguments: []ArgumentDelta{
				{Argument: "commit", UsageCountDelta: 5, FirstSeen: now.Add(-time.Hour), LastUsed: now},
			},
		},
	}
	g.SetBaselineFromLoad(loaded)

	// Immediately after load, with no new activity, Deltas must be empty:
	// otherwise the next save would double-count everything already on disk.
	assert.Empty(t, g.Deltas())

	ck, ok := g.Lookup("git")
	require.True(t, ok)
	assert.EqualValues(t, 5, ck.TotalUsageCount)

	// New activity after load produces only the incremental delta.
	g.RecordUsage("git", []string{"commit"})
	deltas := g.Deltas()
	require.Len(t, deltas, 1)
	assert.EqualValues(t, 1, deltas[0].UsageCountDelta)
}

func TestDeltasOmitZeroDeltaCommands(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("git", []string{"commit"})
	g.RecordUsage("docker", []string{"ps"})
	g.AdvanceBaseline()

	g.RecordUsage("git", []string{"commit"})
	deltas := g.Deltas()
	require.Len(t, deltas, 1)
	assert.Equal(t, "git", deltas[0].Command)
}

func TestFlagsKeyCanonicalOrderIndependentOfInputOrder(t *testing.T) {
	assert.Equal(t, flagsKey([]string{"-a", "-b"}), flagsKey([]string{"-a", "-b"}))
}
