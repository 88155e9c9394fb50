package sequence

import "time"

// BigramDelta is one row of additive change to the command_sequences table
// (spec section 4.7), distinct from workflow.TransitionDelta (no timing).
type BigramDelta struct {
	Prev, Next     string
	FrequencyDelta int64
	LastUsed       time.Time
}

// Deltas computes the additive bigram change since the last AdvanceBaseline
// call. Trigrams (when order >= 3) are an in-memory refinement only; spec
// section 4.7's schema persists command_sequences at bigram granularity.
func (p *Predictor) Deltas() []BigramDelta {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []BigramDelta
	for prev, edges := range p.bigrams {
		baseEdges := p.baselineBigrams[prev]
		for next, e := range edges {
			var baseFreq uint64
			if baseEdges != nil {
				if b, ok := baseEdges[next]; ok {
					baseFreq = b.Frequency
				}
			}
			d := int64(e.Frequency) - int64(baseFreq)
			if d == 0 {
				continue
			}
			out = append(out, BigramDelta{Prev: prev, Next: next, FrequencyDelta: d, LastUsed: e.LastUsed})
		}
	}
	return out
}

// AdvanceBaseline sets the bigram baseline to current in-memory state.
func (p *Predictor) AdvanceBaseline() {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := make(map[string]map[string]edge, len(p.bigrams))
	for prev, edges := range p.bigrams {
		m := make(map[string]edge, len(edges))
		for next, e := range edges {
			m[next] = *e
		}
		snap[prev] = m
	}
	p.baselineBigrams = snap
}

// SetBaselineFromLoad installs loaded bigram rows as current state and sets
// the baseline to the same values, preventing double-counting on the next
// Deltas call.
func (p *Predictor) SetBaselineFromLoad(loaded []BigramDelta) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bigrams = make(map[string]map[string]*edge)
	for _, row := range loaded {
		edges, ok := p.bigrams[row.Prev]
		if !ok {
			edges = make(map[string]*edge)
			p.bigrams[row.Prev] = edges
		}
		edges[row.Next] = &edge{Frequency: uint64(row.FrequencyDelta), LastUsed: row.LastUsed, FirstSeen: row.LastUsed}
	}

	snap := make(map[string]map[string]edge, len(p.bigrams))
	for prev, edges := range p.bigrams {
		m := make(map[string]edge, len(edges))
		for next, e := range edges {
			m[next] = *e
		}
		snap[prev] = m
	}
	p.baselineBigrams = snap
}
