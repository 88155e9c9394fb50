// Package predictor implements GenericPredictor (component C9): the
// ranking pipeline that turns KnowledgeGraph, WorkflowLearner,
// SequencePredictor, and CommandHistory into a single ordered suggestion
// list for one input line (spec section 4.9).
package predictor

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pscue/pscue/internal/history"
	"github.com/pscue/pscue/internal/knowledge"
	"github.com/pscue/pscue/internal/sequence"
	"github.com/pscue/pscue/internal/token"
	"github.com/pscue/pscue/internal/workflow"
)

// Kind mirrors spec section 4.9's Suggestion.kind: whether a candidate
// completes an argument or a whole next command.
type Kind int

const (
	KindArgument Kind = iota
	KindCommand
)

// Suggestion is GenericPredictor's output row.
type Suggestion struct {
	Text        string
	Score       float64
	Description string
	Kind        Kind
	Reason      string
}

// Request is GenericPredictor's input (spec section 4.9).
type Request struct {
	Command         string
	FullLine        string
	WordToComplete  string
	CurrentArgument []string
}

const (
	multiWordCandidateCount = 5
	multiWordMinFreq        = 3
	multiWordScoreFactor    = 0.95
	recencyWindow           = 3
	recencyArgBoost         = 1.2
	recencyFlagBoost        = 1.15
)

// dangerousPatterns is SPEC_FULL.md section 12.1's built-in destructive-flag
// list, grounded on other_examples' clai suggestion scorer
// (WeightDangerous / ReasonDangerous): a ranking penalty only, never a veto.
var dangerousPatterns = []string{"-rf", "--force", "--hard"}

const (
	dangerousPenalty = -0.3
	reasonDangerous  = "dangerous"
)

// Predictor is GenericPredictor.
type Predictor struct {
	log  *zap.Logger
	kg   *knowledge.Graph
	wf   *workflow.Learner
	seq  *sequence.Predictor
	hist *history.History
}

// New wires the learned-data components GenericPredictor ranks over.
func New(log *zap.Logger, kg *knowledge.Graph, wf *workflow.Learner, seq *sequence.Predictor, hist *history.History) *Predictor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Predictor{log: log, kg: kg, wf: wf, seq: seq, hist: hist}
}

// Predict runs spec section 4.9's four ranking steps and returns a
// deduplicated, ordered suggestion list. Every returned suggestion's Text
// starts (case-insensitively) with req.WordToComplete.
func (p *Predictor) Predict(req Request) []Suggestion {
	byText := make(map[string]Suggestion)
	upsert := func(s Suggestion) {
		if !hasPrefixFold(s.Text, req.WordToComplete) {
			return
		}
		existing, ok := byText[strings.ToLower(s.Text)]
		if !ok || s.Score > existing.Score {
			byText[strings.ToLower(s.Text)] = s
		}
	}

	// Step 1: single-token candidates.
	var top []knowledge.Suggestion
	if p.kg != nil {
		top = p.kg.GetSuggestions(req.Command, req.CurrentArgument, req.WordToComplete)
		for _, sug := range top {
			upsert(Suggestion{
				Text:        sug.Argument,
				Score:       applyDangerousPenalty(sug.Argument, sug.Score),
				Description: sug.Description,
				Kind:        KindArgument,
				Reason:      dangerousReasonOr(sug.Argument, sug.Reason),
			})
		}
	}

	// Step 2: multi-word expansion from the top 5 single-word candidates.
	if p.kg != nil {
		n := multiWordCandidateCount
		if n > len(top) {
			n = len(top)
		}
		for _, sug := range top[:n] {
			next := p.kg.GetSequencesStartingWith(req.Command, sug.Argument, multiWordMinFreq, 0)
			for _, nx := range next {
				text := sug.Argument + " " + nx.Argument
				score := sug.Score * multiWordScoreFactor
				upsert(Suggestion{
					Text:        text,
					Score:       applyDangerousPenalty(text, score),
					Kind:        KindArgument,
					Reason:      dangerousReasonOr(text, "sequence"),
				})
			}
		}
	}

	// Step 3: whole next-command suggestions when the line is a bare command.
	if len(req.CurrentArgument) == 0 {
		if p.wf != nil {
			for _, pred := range p.wf.PredictNext(req.Command, 0) {
				upsert(Suggestion{
					Text:   pred.Command,
					Score:  applyDangerousPenalty(pred.Command, pred.Confidence),
					Kind:   KindCommand,
					Reason: dangerousReasonOr(pred.Command, "workflow"),
				})
			}
		}
		if p.seq != nil {
			for _, cand := range p.seq.Predict([]string{req.Command}) {
				score := normalizedFrequencyScore(cand.Frequency)
				upsert(Suggestion{
					Text:   cand.Command,
					Score:  applyDangerousPenalty(cand.Command, score),
					Kind:   KindCommand,
					Reason: dangerousReasonOr(cand.Command, "ngram"),
				})
			}
		}
	}

	// Step 4: recency/context boosts from the last 3 history entries.
	if p.hist != nil {
		boostArgs, boostFlags := recentArgumentsAndFlags(p.hist, recencyWindow)
		for key, s := range byText {
			if boostArgs[strings.ToLower(s.Text)] {
				s.Score *= recencyArgBoost
				s.Reason = "recency-boost"
				byText[key] = s
			} else if boostFlags[strings.ToLower(s.Text)] {
				s.Score *= recencyFlagBoost
				s.Reason = "recency-boost"
				byText[key] = s
			}
		}
	}

	out := make([]Suggestion, 0, len(byText))
	for _, s := range byText {
		out = append(out, s)
	}
	sortSuggestions(out)
	return out
}

// hasPrefixFold reports whether s starts with prefix, case-insensitively.
// An empty prefix matches everything (spec section 4.9: word_to_complete
// may be empty when the line ends in whitespace).
func hasPrefixFold(s, prefix string) bool {
	if prefix == "" {
		return true
	}
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

// applyDangerousPenalty adds SPEC_FULL.md section 12.1's additive penalty
// when text matches a destructive flag pattern. It only ever lowers score,
// never removes the candidate (spec section 1: no validation, only
// plausibility).
func applyDangerousPenalty(text string, score float64) float64 {
	if isDangerous(text) {
		return score + dangerousPenalty
	}
	return score
}

func dangerousReasonOr(text, reason string) string {
	if isDangerous(text) {
		return reasonDangerous
	}
	return reason
}

func isDangerous(text string) bool {
	for _, field := range strings.Fields(text) {
		for _, pat := range dangerousPatterns {
			if strings.EqualFold(field, pat) {
				return true
			}
		}
	}
	return false
}

// normalizedFrequencyScore gives SequencePredictor candidates a score on
// roughly the same 0..1 scale KnowledgeGraph/WorkflowLearner use, since
// sequence.Candidate carries a raw frequency, not a pre-blended score.
func normalizedFrequencyScore(freq uint64) float64 {
	score := float64(freq) / (float64(freq) + 10)
	return score
}

// recentArgumentsAndFlags collects the arguments and flags (lower-cased)
// seen in the last window history entries, for spec section 4.9 step 4's
// recency boost.
func recentArgumentsAndFlags(h *history.History, window int) (args, flags map[string]bool) {
	args = make(map[string]bool)
	flags = make(map[string]bool)
	for _, e := range h.Recent(window) {
		for _, a := range e.Arguments {
			if a == "" {
				continue
			}
			if strings.HasPrefix(a, "-") {
				flags[strings.ToLower(a)] = true
			} else {
				args[strings.ToLower(a)] = true
			}
		}
	}
	return args, flags
}

// sortSuggestions applies spec section 4.9's output ordering: score desc,
// then frequency desc, then alphabetical. Suggestion carries no raw
// frequency field — each candidate's frequency is already folded into
// Score upstream (knowledge.Suggestion.Score, normalizedFrequencyScore,
// workflow.Prediction.Confidence), so two candidates tying on Score have
// already tied on the frequency that produced it, leaving alphabetical as
// the only tie-break this layer needs to apply directly.
func sortSuggestions(s []Suggestion) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].Text < s[j].Text
	})
}

// WordToComplete derives spec section 4.9's partial-word filter from a raw
// input line and cursor position: if the line does not end in whitespace,
// the final token is the word being completed.
func WordToComplete(fullLine string) string {
	if fullLine == "" || strings.HasSuffix(fullLine, " ") {
		return ""
	}
	toks, err := token.Parse(fullLine)
	if err != nil || len(toks) == 0 {
		return ""
	}
	return toks[len(toks)-1].Text
}
