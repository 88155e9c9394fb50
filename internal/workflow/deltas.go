package workflow

import "time"

// TransitionDelta is one row of additive change since the last baseline,
// consumed by Persistence's UPSERT into workflow_transitions (spec section
// 4.7's delta-merge protocol).
type TransitionDelta struct {
	From, To            string
	FrequencyDelta      int64
	TotalTimeDeltaMsDelta int64
	FirstSeen, LastUsed time.Time
}

// Deltas computes the additive change since the last AdvanceBaseline call.
func (l *Learner) Deltas() []TransitionDelta {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []TransitionDelta
	for from, edges := range l.byFrom {
		baseEdges := l.baseline[from]
		for to, tr := range edges {
			var baseFreq, baseTimeMs uint64
			var baseFirst time.Time
			if baseEdges != nil {
				if b, ok := baseEdges[to]; ok {
					baseFreq = b.Frequency
					baseTimeMs = b.TotalTimeDeltaMs
					baseFirst = b.FirstSeen
				}
			}
			freqDelta := int64(tr.Frequency) - int64(baseFreq)
			timeDelta := int64(tr.TotalTimeDeltaMs) - int64(baseTimeMs)
			if freqDelta == 0 && timeDelta == 0 {
				continue
			}
			firstSeen := tr.FirstSeen
			if !baseFirst.IsZero() && baseFirst.Before(firstSeen) {
				firstSeen = baseFirst
			}
			out = append(out, TransitionDelta{
				From: from, To: to,
				FrequencyDelta:        freqDelta,
				TotalTimeDeltaMsDelta: timeDelta,
				FirstSeen:             firstSeen,
				LastUsed:              tr.LastUsed,
			})
		}
	}
	return out
}

// AdvanceBaseline sets the baseline to the current in-memory state. Call
// only after a persistence save transaction commits.
func (l *Learner) AdvanceBaseline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := make(map[string]map[string]Transition, len(l.byFrom))
	for from, edges := range l.byFrom {
		m := make(map[string]Transition, len(edges))
		for to, tr := range edges {
			m[to] = *tr
		}
		snap[from] = m
	}
	l.baseline = snap
}

// SetBaselineFromLoad installs rows read from disk as current state AND
// sets the baseline to the same values, preventing double-counting on the
// next Deltas call (spec section 4.7's "critical" invariant).
func (l *Learner) SetBaselineFromLoad(loaded []TransitionDelta) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.byFrom = make(map[string]map[string]*Transition)
	for _, row := range loaded {
		edges, ok := l.byFrom[row.From]
		if !ok {
			edges = make(map[string]*Transition)
			l.byFrom[row.From] = edges
		}
		edges[row.To] = &Transition{
			From: row.From, To: row.To,
			Frequency:        uint64(row.FrequencyDelta),
			TotalTimeDeltaMs: uint64(row.TotalTimeDeltaMsDelta),
			FirstSeen:        row.FirstSeen,
			LastUsed:         row.LastUsed,
		}
	}

	snap := make(map[string]map[string]Transition, len(l.byFrom))
	for from, edges := range l.byFrom {
		m := make(map[string]Transition, len(edges))
		for to, tr := range edges {
			m[to] = *tr
		}
		snap[from] = m
	}
	l.baseline = snap
}
