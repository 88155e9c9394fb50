package knowledge

import (
	"strings"
	"testing"
	"time"

	"github.com/pscue/pscue/internal/pscuelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T, clock func() time.Time) *Graph {
	t.Helper()
	opts := []Option{}
	if clock != nil {
		opts = append(opts, WithClock(clock))
	}
	return New(pscuelog.Noop(), 500, 100, 30, opts...)
}

func TestRecordUsageTracksArgumentsAndFlags(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("git", []string{"commit", "-m", "fix"})

	assert.Contains(t, g.GetTrackedCommands(), "git")
	sugg := g.GetSuggestions("git", nil, "")
	var names []string
	for _, s := range sugg {
		names = append(names, s.Argument)
	}
	assert.Contains(t, names, "commit")
	assert.Contains(t, names, "-m")
	assert.Contains(t, names, "fix")
}

func TestGetSuggestionsFiltersByWordToComplete(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("git", []string{"commit"})
	g.RecordUsage("git", []string{"checkout"})

	sugg := g.GetSuggestions("git", nil, "che")
	require.Len(t, sugg, 1)
	assert.Equal(t, "checkout", sugg[0].Argument)
}

func TestScenarioALearnThenPredict(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("git", []string{"add", "."})
	g.RecordUsage("git", []string{"commit", "-m", "fix"})
	g.RecordUsage("git", []string{"push"})

	ck, ok := g.Lookup("git")
	require.True(t, ok)
	assert.EqualValues(t, 1, ck.Arguments["add"].UsageCount)
	assert.EqualValues(t, 1, ck.Arguments["commit"].UsageCount)
	assert.EqualValues(t, 1, ck.Arguments["push"].UsageCount)
	assert.EqualValues(t, 1, ck.Arguments["-m"].UsageCount)
	assert.EqualValues(t, 1, ck.Arguments["."].UsageCount)
}

func TestArgumentSequenceTracking(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("docker", []string{"run", "-d", "nginx", "latest"})

	sugg := g.GetSequencesStartingWith("docker", "nginx", 1, 10)
	require.Len(t, sugg, 1)
	assert.Equal(t, "latest", sugg[0].Argument)
}

func TestMaxCommandsEvictsLowestValueNotNewest(t *testing.T) {
	g := newTestGraph(t, nil)
	g2 := New(pscuelog.Noop(), 2, 100, 30)
	g = g2

	g.RecordUsage("a", []string{"x"})
	g.RecordUsage("a", []string{"x"})
	g.RecordUsage("a", []string{"x"}) // a: usage 3
	g.RecordUsage("b", []string{"x"}) // b: usage 1

	g.RecordUsage("c", []string{"x"}) // new command forces eviction

	tracked := g.GetTrackedCommands()
	assert.Contains(t, tracked, "a")
	assert.Contains(t, tracked, "c")
	assert.NotContains(t, tracked, "b")
}

func TestMaxArgsPerCmdEvictsLowestScore(t *testing.T) {
	g := New(pscuelog.Noop(), 500, 2, 30)
	g.RecordUsage("cmd", []string{"frequent"})
	g.RecordUsage("cmd", []string{"frequent"})
	g.RecordUsage("cmd", []string{"frequent"})
	g.RecordUsage("cmd", []string{"rare"})
	g.RecordUsage("cmd", []string{"new"})

	ck, ok := g.Lookup("cmd")
	require.True(t, ok)
	assert.LessOrEqual(t, len(ck.Arguments), 2)
	assert.Contains(t, ck.Arguments, "frequent")
}

func TestSequenceCapEvictsLRU(t *testing.T) {
	g := newTestGraph(t, nil)
	for i := 0; i < maxSequencesPerCommand+5; i++ {
		g.RecordUsage("cmd", []string{itoa(i), "b"})
	}
	ck, ok := g.Lookup("cmd")
	require.True(t, ok)
	assert.LessOrEqual(t, len(ck.ArgumentSequences), maxSequencesPerCommand)
}

func TestEmptyCommandIgnored(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("", []string{"x"})
	assert.Empty(t, g.GetTrackedCommands())
}

func TestFlagCombinationTracked(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("ls", []string{"-l", "-a"})
	ck, ok := g.Lookup("ls")
	require.True(t, ok)
	require.Len(t, ck.FlagCombinations, 1)
	for _, fc := range ck.FlagCombinations {
		assert.Equal(t, []string{"-a", "-l"}, fc.Flags)
	}
}

func TestCoOccurrenceSymmetric(t *testing.T) {
	g := newTestGraph(t, nil)
	g.RecordUsage("tar", []string{"-x", "-f", "archive.tar"})

	ck, ok := g.Lookup("tar")
	require.True(t, ok)
	assert.NotEmpty(t, ck.CoOccurrences)
	for _, co := range ck.CoOccurrences {
		assert.NotEqual(t, strings.ToLower(co.ArgA), "")
		assert.LessOrEqual(t, strings.ToLower(co.ArgA), strings.ToLower(co.ArgB))
	}
}

func itoa(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var b []byte
	for i > 0 {
		b = append([]byte{digits[i%10]}, b...)
		i /= 10
	}
	return string(b)
}
