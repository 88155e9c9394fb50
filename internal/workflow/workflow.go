// Package workflow implements WorkflowLearner (component C5): a
// command-to-command transition graph with timing, used to predict the next
// whole command a user is likely to run (spec section 4.5).
package workflow

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Transition is spec section 3's WorkflowTransition entity.
type Transition struct {
	From, To         string
	Frequency        uint64
	TotalTimeDeltaMs uint64
	FirstSeen        time.Time
	LastUsed         time.Time
}

// AvgTimeDeltaMs returns the running average delta, or 0 if never recorded.
func (t Transition) AvgTimeDeltaMs() float64 {
	if t.Frequency == 0 {
		return 0
	}
	return float64(t.TotalTimeDeltaMs) / float64(t.Frequency)
}

// Prediction is one predict_next candidate (spec section 4.5).
type Prediction struct {
	Command    string
	Confidence float64
	SourceTag  string
	Reason     string
}

const (
	maxTransitionsPerFrom = 20
	defaultMaxTimeDelta   = 15 * time.Minute
	defaultMinConfidence  = 0.6
	defaultMinFrequency   = 5
)

// Learner is WorkflowLearner. Guarded by one RWMutex with short critical
// sections, matching internal/knowledge's concurrency strategy.
type Learner struct {
	mu  sync.RWMutex
	log *zap.Logger
	now func() time.Time

	maxTimeDelta  time.Duration
	minConfidence float64
	minFrequency  uint64

	// byFrom[from][to] = *Transition
	byFrom map[string]map[string]*Transition

	baseline map[string]map[string]Transition
}

// Option configures a Learner at construction time.
type Option func(*Learner)

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(l *Learner) { l.now = now }
}

// New builds an empty WorkflowLearner. maxTimeDelta/minConfidence/minFrequency
// default to spec section 6's values when zero.
func New(log *zap.Logger, maxTimeDelta time.Duration, minConfidence float64, minFrequency uint64, opts ...Option) *Learner {
	if maxTimeDelta <= 0 {
		maxTimeDelta = defaultMaxTimeDelta
	}
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}
	if minFrequency == 0 {
		minFrequency = defaultMinFrequency
	}
	l := &Learner{
		log:           log,
		now:           time.Now,
		maxTimeDelta:  maxTimeDelta,
		minConfidence: minConfidence,
		minFrequency:  minFrequency,
		byFrom:        make(map[string]map[string]*Transition),
		baseline:      make(map[string]map[string]Transition),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Canonicalize implements spec section 4.5's canonicalization rule: the
// base verb plus, if the first non-flag argument looks like a subcommand,
// that argument too (e.g. "git commit", "cargo test"). With no arguments,
// just the verb.
func Canonicalize(command string, arguments []string) string {
	verb := strings.ToLower(strings.TrimSpace(command))
	for _, a := range arguments {
		if a == "" || strings.HasPrefix(a, "-") {
			continue
		}
		return verb + " " + strings.ToLower(a)
	}
	return verb
}

// RecordTransition updates frequency/total_time_delta_ms/last_seen for the
// from->to edge (spec section 4.5). Dropped if delta exceeds maxTimeDelta,
// or if from == to with delta under 1 second (accidental double-enter).
func (l *Learner) RecordTransition(from, to string, delta time.Duration) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return
	}
	if delta > l.maxTimeDelta {
		return
	}
	if from == to && delta < time.Second {
		return
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	edges, ok := l.byFrom[from]
	if !ok {
		edges = make(map[string]*Transition)
		l.byFrom[from] = edges
	}
	tr, ok := edges[to]
	if !ok {
		if len(edges) >= maxTransitionsPerFrom {
			l.evictWorstLocked(edges)
		}
		tr = &Transition{From: from, To: to, FirstSeen: now}
		edges[to] = tr
	}
	tr.Frequency++
	tr.TotalTimeDeltaMs += uint64(delta.Milliseconds())
	tr.LastUsed = now
}

// evictWorstLocked drops the lowest-frequency transition, tie-broken by
// oldest last_used, per spec section 4.5's per-from cap of 20.
func (l *Learner) evictWorstLocked(edges map[string]*Transition) {
	var worstKey string
	var worst *Transition
	for k, v := range edges {
		if worst == nil ||
			v.Frequency < worst.Frequency ||
			(v.Frequency == worst.Frequency && v.LastUsed.Before(worst.LastUsed)) {
			worstKey, worst = k, v
		}
	}
	if worst != nil {
		delete(edges, worstKey)
	}
}

// PredictNext implements spec section 4.5's predict_next: confidence =
// 0.7*freq_norm + 0.3*recency_norm, time-sensitivity multiplied by how the
// elapsed time since currentCommand started compares to the edge's average
// delta, then filtered by min_confidence and min_frequency.
func (l *Learner) PredictNext(currentCommand string, sinceCurrent time.Duration) []Prediction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	edges, ok := l.byFrom[strings.TrimSpace(currentCommand)]
	if !ok || len(edges) == 0 {
		return nil
	}

	now := l.now()
	var maxFreq uint64
	var newestLastUsed time.Time
	for _, tr := range edges {
		if tr.Frequency > maxFreq {
			maxFreq = tr.Frequency
		}
		if tr.LastUsed.After(newestLastUsed) {
			newestLastUsed = tr.LastUsed
		}
	}

	var out []Prediction
	for _, tr := range edges {
		if tr.Frequency < l.minFrequency {
			continue
		}
		freqNorm := float64(tr.Frequency) / float64(maxFreq)
		recencyNorm := recencyNorm(tr.LastUsed, now, newestLastUsed)
		confidence := 0.7*freqNorm + 0.3*recencyNorm
		confidence *= timeSensitivityMultiplier(sinceCurrent, tr.AvgTimeDeltaMs())

		if confidence < l.minConfidence {
			continue
		}
		out = append(out, Prediction{
			Command:    tr.To,
			Confidence: confidence,
			SourceTag:  "workflow",
			Reason:     "transition",
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Command < out[j].Command
	})
	return out
}

// recencyNorm scores how recent tr's last use is relative to the most
// recently used edge from the same origin; 1.0 for the newest, decaying
// toward 0 for older edges over a week-scale window.
func recencyNorm(lastUsed, now, newest time.Time) float64 {
	if newest.IsZero() {
		return 0
	}
	ageOfNewest := now.Sub(newest).Hours() / 24
	ageOfThis := now.Sub(lastUsed).Hours() / 24
	if ageOfThis <= ageOfNewest {
		return 1.0
	}
	const windowDays = 7.0
	v := 1.0 - (ageOfThis-ageOfNewest)/windowDays
	if v < 0 {
		return 0
	}
	return v
}

// timeSensitivityMultiplier implements spec section 4.5's ratio bands
// comparing elapsed time since the current command to the edge's historical
// average delta.
func timeSensitivityMultiplier(elapsed time.Duration, avgMs float64) float64 {
	if avgMs <= 0 {
		return 1.0
	}
	ratio := float64(elapsed.Milliseconds()) / avgMs
	switch {
	case ratio < 1.5:
		return 1.5
	case ratio < 5:
		return 1.2
	case ratio < 30:
		return 1.0
	default:
		return 0.8
	}
}
