package sequence

import (
	"testing"

	"github.com/pscue/pscue/internal/pscuelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndPredictBigram(t *testing.T) {
	p := New(pscuelog.Noop(), 2, 1)
	p.Record("git add", "git commit")
	p.Record("git add", "git commit")
	p.Record("git add", "git commit")

	preds := p.Predict([]string{"git add"})
	require.Len(t, preds, 1)
	assert.Equal(t, "git commit", preds[0].Command)
	assert.EqualValues(t, 3, preds[0].Frequency)
}

func TestPredictFiltersBelowMinFreq(t *testing.T) {
	p := New(pscuelog.Noop(), 2, 3)
	p.Record("git add", "git commit")
	assert.Empty(t, p.Predict([]string{"git add"}))
}

func TestTrigramFallsBackToBigramOnMiss(t *testing.T) {
	p := New(pscuelog.Noop(), 3, 1)
	p.Record("b", "c")
	p.Record("b", "c")

	preds := p.Predict([]string{"a", "b"})
	require.Len(t, preds, 1)
	assert.Equal(t, "c", preds[0].Command)
}

func TestTrigramPreferredWhenPresent(t *testing.T) {
	p := New(pscuelog.Noop(), 3, 1)
	p.RecordTrigram("a", "b", "trigram-result")
	p.Record("b", "bigram-result")

	preds := p.Predict([]string{"a", "b"})
	require.Len(t, preds, 1)
	assert.Equal(t, "trigram-result", preds[0].Command)
}

func TestEmptyHistoryYieldsNoPrediction(t *testing.T) {
	p := New(pscuelog.Noop(), 2, 1)
	assert.Empty(t, p.Predict(nil))
}

func TestAdvanceBaselineThenSetBaselineFromLoadPreventsDoubleCounting(t *testing.T) {
	p := New(pscuelog.Noop(), 2, 1)
	p.Record("a", "b")
	p.AdvanceBaseline()
	assert.Empty(t, p.Deltas())

	loaded := []BigramDelta{{Prev: "a", Next: "b", FrequencyDelta: 1}}
	p2 := New(pscuelog.Noop(), 2, 1)
	p2.SetBaselineFromLoad(loaded)
	assert.Empty(t, p2.Deltas())
}
