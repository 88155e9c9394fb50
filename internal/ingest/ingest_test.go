package ingest

import (
	"testing"
	"time"

	"github.com/pscue/pscue/internal/history"
	"github.com/pscue/pscue/internal/knowledge"
	"github.com/pscue/pscue/internal/privacy"
	"github.com/pscue/pscue/internal/pscuelog"
	"github.com/pscue/pscue/internal/sequence"
	"github.com/pscue/pscue/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIngestor() (*Ingestor, *history.History, *knowledge.Graph, *workflow.Learner, *sequence.Predictor) {
	hist := history.New(100)
	kg := knowledge.New(pscuelog.Noop(), 500, 100, 30)
	wf := workflow.New(pscuelog.Noop(), 15*time.Minute, 0.0, 1)
	seq := sequence.New(pscuelog.Noop(), 2, 1)
	pf := privacy.New(nil)
	in := New(pscuelog.Noop(), pf, hist, kg, wf, seq)
	return in, hist, kg, wf, seq
}

func TestIngestFailedCommandIsIgnored(t *testing.T) {
	in, hist, _, _, _ := newTestIngestor()
	in.Ingest(Event{CommandLine: "git commit -m fix", Success: false})
	assert.Equal(t, 0, hist.Len())
}

func TestIngestRejectsPrivacyFilteredLine(t *testing.T) {
	in, hist, _, _, _ := newTestIngestor()
	in.Ingest(Event{CommandLine: "curl -H 'Authorization: Bearer sk_live_abcdef'", Success: true})
	assert.Equal(t, 0, hist.Len())
}

func TestScenarioALearningSequence(t *testing.T) {
	in, hist, kg, wf, seq := newTestIngestor()

	in.Ingest(Event{CommandLine: "git add .", Success: true, PreviousWorkingDirectory: "/repo"})
	in.Ingest(Event{CommandLine: "git commit -m fix", Success: true, PreviousWorkingDirectory: "/repo"})
	in.Ingest(Event{CommandLine: "git push", Success: true, PreviousWorkingDirectory: "/repo"})

	require.Equal(t, 3, hist.Len())

	ck, ok := kg.Lookup("git")
	require.True(t, ok)
	assert.EqualValues(t, 3, ck.TotalUsageCount)

	deltas := wf.Deltas()
	assert.NotEmpty(t, deltas)

	assert.NotEmpty(t, seq.Deltas())
}

func TestIngestNavigationCommandRecordsAbsoluteDestination(t *testing.T) {
	in, _, kg, _, _ := newTestIngestor()
	in.Ingest(Event{
		CommandLine:              "cd project",
		Success:                  true,
		CurrentWorkingDirectory:  "/home/user/project",
		PreviousWorkingDirectory: "/home/user",
	})

	ck, ok := kg.Lookup("cd")
	require.True(t, ok)
	require.Len(t, ck.Arguments, 1)
	for arg := range ck.Arguments {
		assert.Contains(t, arg, "project")
	}
}

func TestIngestMalformedLineIsIgnored(t *testing.T) {
	in, hist, _, _, _ := newTestIngestor()
	in.Ingest(Event{CommandLine: `echo "unterminated`, Success: true})
	assert.Equal(t, 0, hist.Len())
}
