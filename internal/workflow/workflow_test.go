package workflow

import (
	"testing"
	"time"

	"github.com/pscue/pscue/internal/pscuelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLearner() *Learner {
	return New(pscuelog.Noop(), 15*time.Minute, 0.0, 1)
}

func TestCanonicalizeWithAndWithoutSubcommand(t *testing.T) {
	assert.Equal(t, "git commit", Canonicalize("git", []string{"commit", "-m", "fix"}))
	assert.Equal(t, "ls", Canonicalize("ls", []string{"-la"}))
	assert.Equal(t, "cargo test", Canonicalize("cargo", []string{"test"}))
}

func TestRecordTransitionDropsOverMaxTimeDelta(t *testing.T) {
	l := newTestLearner()
	l.RecordTransition("git add", "git commit", 20*time.Minute)
	preds := l.PredictNext("git add", time.Second)
	assert.Empty(t, preds)
}

func TestRecordTransitionDropsAccidentalDoubleEnter(t *testing.T) {
	l := newTestLearner()
	l.RecordTransition("ls", "ls", 500*time.Millisecond)
	preds := l.PredictNext("ls", time.Second)
	assert.Empty(t, preds)
}

func TestScenarioGWorkflowTransitions(t *testing.T) {
	l := newTestLearner()
	l.RecordTransition("git add", "git commit", 10*time.Second)
	l.RecordTransition("git commit", "git push", 5*time.Second)

	deltas := l.Deltas()
	require.Len(t, deltas, 2)
}

func TestPredictNextFiltersLowFrequency(t *testing.T) {
	l := New(pscuelog.Noop(), 15*time.Minute, 0.0, 5)
	l.RecordTransition("git add", "git commit", time.Second)
	preds := l.PredictNext("git add", time.Second)
	assert.Empty(t, preds, "frequency 1 is below min_frequency 5")
}

func TestPerFromCapEvictsLowestFrequency(t *testing.T) {
	l := newTestLearner()
	for i := 0; i < maxTransitionsPerFrom+3; i++ {
		to := "to" + string(rune('a'+i))
		l.RecordTransition("from", to, time.Second)
	}
	deltas := l.Deltas()
	var count int
	for _, d := range deltas {
		if d.From == "from" {
			count++
		}
	}
	assert.LessOrEqual(t, count, maxTransitionsPerFrom)
}

func TestAdvanceBaselineThenSetBaselineFromLoadPreventsDoubleCounting(t *testing.T) {
	l := newTestLearner()
	l.RecordTransition("git add", "git commit", time.Second)
	l.AdvanceBaseline()
	assert.Empty(t, l.Deltas())

	loaded := l.Deltas()
	l2 := newTestLearner()
	l2.SetBaselineFromLoad(loaded)
	assert.Empty(t, l2.Deltas())
}

func TestTimeSensitivityMultiplierBands(t *testing.T) {
	assert.Equal(t, 1.5, timeSensitivityMultiplier(1*time.Second, 1000))
	assert.Equal(t, 1.2, timeSensitivityMultiplier(3*time.Second, 1000))
	assert.Equal(t, 1.0, timeSensitivityMultiplier(10*time.Second, 1000))
	assert.Equal(t, 0.8, timeSensitivityMultiplier(60*time.Second, 1000))
	assert.Equal(t, 1.0, timeSensitivityMultiplier(time.Second, 0))
}
