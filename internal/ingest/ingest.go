// Package ingest implements FeedbackIngestor (component C8): the single
// entry point the host shell calls after every command, orchestrating
// PrivacyFilter, TokenParser, CommandHistory, KnowledgeGraph,
// WorkflowLearner, and SequencePredictor per spec section 4.8's algorithm.
package ingest

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pscue/pscue/internal/history"
	"github.com/pscue/pscue/internal/knowledge"
	"github.com/pscue/pscue/internal/privacy"
	"github.com/pscue/pscue/internal/sequence"
	"github.com/pscue/pscue/internal/token"
	"github.com/pscue/pscue/internal/workflow"
)

// Event is the shell-supplied input to Ingest, spec section 4.8's
// FeedbackIngestor call signature.
type Event struct {
	CommandLine              string
	Success                  bool
	CurrentWorkingDirectory  string
	PreviousWorkingDirectory string
}

// Ingestor is FeedbackIngestor. It owns no state of its own beyond the
// last-event clock; all learned data lives in the components it wires
// together, matching spec section 4.8's framing of the ingestor as a pure
// orchestrator.
type Ingestor struct {
	mu            sync.Mutex
	log           *zap.Logger
	now           func() time.Time
	lastEventTime time.Time

	privacy  *privacy.Filter
	hist     *history.History
	kg       *knowledge.Graph
	wf       *workflow.Learner
	seq      *sequence.Predictor
}

// New wires the components FeedbackIngestor calls into one orchestrator.
func New(log *zap.Logger, pf *privacy.Filter, hist *history.History, kg *knowledge.Graph, wf *workflow.Learner, seq *sequence.Predictor) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{log: log, now: time.Now, privacy: pf, hist: hist, kg: kg, wf: wf, seq: seq}
}

// Ingest runs spec section 4.8's nine-step learning algorithm. It never
// returns an error to the caller: every failure class it can encounter
// (privacy rejection, parse failure) is a documented "return early, learn
// nothing" case, not a propagated error (spec section 7).
func (in *Ingestor) Ingest(ev Event) {
	// Step 1: non-success learning is out of scope for the core.
	if !ev.Success {
		return
	}
	// Step 2: privacy gate.
	if in.privacy != nil && in.privacy.Reject(ev.CommandLine) {
		return
	}
	// Step 3-4: parse tokens, extract command/arguments.
	tokens, err := token.Parse(ev.CommandLine)
	if err != nil || len(tokens) == 0 {
		return
	}
	command := tokens[0].Text
	arguments := make([]string, 0, len(tokens)-1)
	for _, t := range tokens[1:] {
		arguments = append(arguments, t.Text)
	}

	// Step 5: navigation commands record the absolute destination actually
	// landed at, not the text typed.
	recordedArguments := arguments
	if knowledge.IsNavigationCommand(command) {
		dest := ev.CurrentWorkingDirectory
		if dest == "" {
			// degraded mode: working_directory absent, use raw argument text
			recordedArguments = arguments
		} else {
			recordedArguments = []string{knowledge.NormalizePath(dest, ev.CurrentWorkingDirectory)}
		}
	}

	// Step 6: time delta since last event.
	now := in.now()
	in.mu.Lock()
	var timeDelta time.Duration
	if !in.lastEventTime.IsZero() {
		timeDelta = now.Sub(in.lastEventTime)
	}
	in.lastEventTime = now
	in.mu.Unlock()

	// Step 7: push to history with the pre-execution working directory.
	var prevEntry history.Entry
	var hadPrev bool
	if in.hist != nil {
		prevEntry, hadPrev = in.hist.Last()
		in.hist.Add(history.Entry{
			Command:          command,
			FullLine:         ev.CommandLine,
			Arguments:        arguments,
			Timestamp:        now,
			WorkingDirectory: ev.PreviousWorkingDirectory,
		})
	}

	// Step 8: update the knowledge graph.
	if in.kg != nil {
		in.kg.RecordUsage(command, recordedArguments)
	}

	// Step 9: if there was a previous entry, build canonical keys and
	// record the transition/sequence.
	if hadPrev && strings.TrimSpace(prevEntry.Command) != "" {
		prevCanonical := workflow.Canonicalize(prevEntry.Command, prevEntry.Arguments)
		currCanonical := workflow.Canonicalize(command, arguments)
		if in.wf != nil {
			in.wf.RecordTransition(prevCanonical, currCanonical, timeDelta)
		}
		if in.seq != nil {
			in.seq.Record(prevCanonical, currCanonical)
		}
	}
}
