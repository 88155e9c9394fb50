// Package sequence implements SequencePredictor (component C6): a bare
// n-gram model of command-to-command adjacency, independent of
// WorkflowLearner's timing and subcommand canonicalization (spec section
// 4.6). Both are populated from the same FeedbackIngestor event but model
// distinct relationships and are NOT merged into one table.
package sequence

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Candidate is one predict() result.
type Candidate struct {
	Command   string
	Frequency uint64
	LastUsed  time.Time
}

const defaultMinFreq = 3

// edge is a bigram (prev -> next) transition.
type edge struct {
	Frequency uint64
	LastUsed  time.Time
	FirstSeen time.Time
}

// Predictor is SequencePredictor. order is the configured n-gram order
// (default 2, i.e. bigram); order 3 additionally tracks trigrams with
// fallback to bigram on miss, per spec section 4.6.
type Predictor struct {
	mu      sync.RWMutex
	log     *zap.Logger
	now     func() time.Time
	order   int
	minFreq uint64

	bigrams  map[string]map[string]*edge // keyed by single prev command
	trigrams map[string]map[string]*edge // keyed by "prev1\x00prev2"

	baselineBigrams  map[string]map[string]edge
	baselineTrigrams map[string]map[string]edge
}

// Option configures a Predictor at construction.
type Option func(*Predictor)

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) { p.now = now }
}

// New builds an empty SequencePredictor. order defaults to 2 (bigram);
// minFreq defaults to 3 per spec section 4.6.
func New(log *zap.Logger, order int, minFreq uint64, opts ...Option) *Predictor {
	if order < 2 {
		order = 2
	}
	if minFreq == 0 {
		minFreq = defaultMinFreq
	}
	p := &Predictor{
		log:              log,
		now:              time.Now,
		order:            order,
		minFreq:          minFreq,
		bigrams:          make(map[string]map[string]*edge),
		trigrams:         make(map[string]map[string]*edge),
		baselineBigrams:  make(map[string]map[string]edge),
		baselineTrigrams: make(map[string]map[string]edge),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Record increments the bigram (and, if order >= 3 and a trigram context is
// available via RecordTrigram, trigram) frequency for prev -> next.
func (p *Predictor) Record(prev, next string) {
	prev, next = strings.TrimSpace(prev), strings.TrimSpace(next)
	if prev == "" || next == "" {
		return
	}
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bumpLocked(p.bigrams, prev, next, now)
}

// RecordTrigram additionally records the (prev2, prev1) -> next trigram
// context, used when order >= 3.
func (p *Predictor) RecordTrigram(prev2, prev1, next string) {
	if p.order < 3 {
		return
	}
	prev2, prev1, next = strings.TrimSpace(prev2), strings.TrimSpace(prev1), strings.TrimSpace(next)
	if prev2 == "" || prev1 == "" || next == "" {
		return
	}
	now := p.now()
	key := prev2 + "\x00" + prev1
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bumpLocked(p.trigrams, key, next, now)
}

func (p *Predictor) bumpLocked(table map[string]map[string]*edge, key, next string, now time.Time) {
	edges, ok := table[key]
	if !ok {
		edges = make(map[string]*edge)
		table[key] = edges
	}
	e, ok := edges[next]
	if !ok {
		e = &edge{FirstSeen: now}
		edges[next] = e
	}
	e.Frequency++
	e.LastUsed = now
}

// Predict returns top next-command candidates for prevKCommands (most
// recent last), trying the trigram table first (if order >= 3 and at least
// two prior commands are given) and falling back to bigram on miss, per
// spec section 4.6.
func (p *Predictor) Predict(prevKCommands []string) []Candidate {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.order >= 3 && len(prevKCommands) >= 2 {
		prev2 := prevKCommands[len(prevKCommands)-2]
		prev1 := prevKCommands[len(prevKCommands)-1]
		key := prev2 + "\x00" + prev1
		if edges, ok := p.trigrams[key]; ok {
			if cands := p.candidatesFrom(edges); len(cands) > 0 {
				return cands
			}
		}
	}

	if len(prevKCommands) == 0 {
		return nil
	}
	prev := prevKCommands[len(prevKCommands)-1]
	edges, ok := p.bigrams[prev]
	if !ok {
		return nil
	}
	return p.candidatesFrom(edges)
}

func (p *Predictor) candidatesFrom(edges map[string]*edge) []Candidate {
	var out []Candidate
	for next, e := range edges {
		if e.Frequency < p.minFreq {
			continue
		}
		out = append(out, Candidate{Command: next, Frequency: e.Frequency, LastUsed: e.LastUsed})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Command < out[j].Command
	})
	return out
}
