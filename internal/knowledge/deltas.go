package knowledge

import (
	"strings"
	"time"
)

// snapshot is the baseline KnowledgeGraph compares against to compute
// deltas (spec section 4.7's delta-merge protocol). It mirrors the shape of
// the live commands map but only carries the counters/timestamps Deltas
// needs, so baseline snapshots are cheap to keep around between saves.
type snapshot struct {
	commands map[string]CommandKnowledge
}

func emptySnapshot() *snapshot {
	return &snapshot{commands: make(map[string]CommandKnowledge)}
}

// CommandDelta is one row of additive change since the last baseline,
// ready for Persistence to UPSERT per spec section 4.7: count = existing +
// delta, last_used = max(existing, new), first_seen = min(existing, new).
type CommandDelta struct {
	Command            string
	UsageCountDelta     int64
	FirstSeen, LastUsed time.Time

	Arguments         []ArgumentDelta
	FlagCombinations  []FlagCombinationDelta
	ArgumentSequences []ArgumentSequenceDelta
	ParameterValues   []ParameterValueDelta
	CoOccurrences     []CoOccurrenceDelta
}

type ArgumentDelta struct {
	Argument            string
	IsFlag              bool
	UsageCountDelta     int64
	FirstSeen, LastUsed time.Time
}

type FlagCombinationDelta struct {
	Flags               []string
	UsageCountDelta     int64
	FirstSeen, LastUsed time.Time
}

type ArgumentSequenceDelta struct {
	First, Second       string
	UsageCountDelta     int64
	FirstSeen, LastUsed time.Time
}

type ParameterValueDelta struct {
	Parameter, Value string
	UsageCountDelta  int64
	LastUsed         time.Time
}

type CoOccurrenceDelta struct {
	ArgA, ArgB      string
	UsageCountDelta int64
}

// Deltas computes, for every command currently known, the additive change
// since the last AdvanceBaseline call (or since construction, for a graph
// that was never loaded from disk). Entities with zero delta are omitted.
func (g *Graph) Deltas() []CommandDelta {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []CommandDelta
	for key, ck := range g.commands {
		base, hadBase := g.baseline.commands[key]

		cmdDelta := int64(ck.TotalUsageCount)
		firstSeen := ck.FirstSeen
		if hadBase {
			cmdDelta = int64(ck.TotalUsageCount) - int64(base.TotalUsageCount)
			if base.FirstSeen.Before(firstSeen) {
				firstSeen = base.FirstSeen
			}
		}

		cd := CommandDelta{
			Command:         ck.Command,
			UsageCountDelta: cmdDelta,
			FirstSeen:       firstSeen,
			LastUsed:        ck.LastUsed,
		}

		for ak, au := range ck.Arguments {
			var baseCount uint64
			var baseFirst time.Time
			if hadBase {
				if bau, ok := base.Arguments[ak]; ok {
					baseCount = bau.UsageCount
					baseFirst = bau.FirstSeen
				}
			}
			d := int64(au.UsageCount) - int64(baseCount)
			if d == 0 {
				continue
			}
			fs := au.FirstSeen
			if !baseFirst.IsZero() && baseFirst.Before(fs) {
				fs = baseFirst
			}
			cd.Arguments = append(cd.Arguments, ArgumentDelta{
				Argument: au.Argument, IsFlag: au.IsFlag,
				UsageCountDelta: d, FirstSeen: fs, LastUsed: au.LastUsed,
			})
		}

		for fk, fc := range ck.FlagCombinations {
			var baseCount uint64
			var baseFirst time.Time
			if hadBase {
				if bfc, ok := base.FlagCombinations[fk]; ok {
					baseCount = bfc.UsageCount
					baseFirst = bfc.FirstSeen
				}
			}
			d := int64(fc.UsageCount) - int64(baseCount)
			if d == 0 {
				continue
			}
			fs := fc.FirstSeen
			if !baseFirst.IsZero() && baseFirst.Before(fs) {
				fs = baseFirst
			}
			cd.FlagCombinations = append(cd.FlagCombinations, FlagCombinationDelta{
				Flags: append([]string(nil), fc.Flags...), UsageCountDelta: d, FirstSeen: fs, LastUsed: fc.LastUsed,
			})
		}

		for sk, sq := range ck.ArgumentSequences {
			var baseCount uint64
			var baseFirst time.Time
			if hadBase {
				if bsq, ok := base.ArgumentSequences[sk]; ok {
					baseCount = bsq.UsageCount
					baseFirst = bsq.FirstSeen
				}
			}
			d := int64(sq.UsageCount) - int64(baseCount)
			if d == 0 {
				continue
			}
			fs := sq.FirstSeen
			if !baseFirst.IsZero() && baseFirst.Before(fs) {
				fs = baseFirst
			}
			cd.ArgumentSequences = append(cd.ArgumentSequences, ArgumentSequenceDelta{
				First: sq.First, Second: sq.Second, UsageCountDelta: d, FirstSeen: fs, LastUsed: sq.LastUsed,
			})
		}

		for pk, list := range ck.ParameterValues {
			var baseList []*ParameterValue
			if hadBase {
				baseList = base.ParameterValues[pk]
			}
			for _, pv := range list {
				var baseCount uint64
				for _, bpv := range baseList {
					if bpv.Value == pv.Value {
						baseCount = bpv.UsageCount
						break
					}
				}
				d := int64(pv.UsageCount) - int64(baseCount)
				if d == 0 {
					continue
				}
				cd.ParameterValues = append(cd.ParameterValues, ParameterValueDelta{
					Parameter: pv.Parameter, Value: pv.Value, UsageCountDelta: d, LastUsed: pv.LastUsed,
				})
			}
		}

		for cok, co := range ck.CoOccurrences {
			var baseCount uint64
			if hadBase {
				if bco, ok := base.CoOccurrences[cok]; ok {
					baseCount = bco.UsageCount
				}
			}
			d := int64(co.UsageCount) - int64(baseCount)
			if d == 0 {
				continue
			}
			cd.CoOccurrences = append(cd.CoOccurrences, CoOccurrenceDelta{
				ArgA: co.ArgA, ArgB: co.ArgB, UsageCountDelta: d,
			})
		}

		if cmdDelta != 0 || len(cd.Arguments) > 0 || len(cd.FlagCombinations) > 0 ||
			len(cd.ArgumentSequences) > 0 || len(cd.ParameterValues) > 0 || len(cd.CoOccurrences) > 0 {
			out = append(out, cd)
		}
	}
	return out
}

// AdvanceBaseline sets the baseline to the current in-memory state (spec
// section 4.7: "After a successful save, baseline is advanced to the
// just-written state"). Persistence calls this only after its write
// transaction commits.
func (g *Graph) AdvanceBaseline() {
	g.mu.Lock()
	defer g.mu.Unlock()
	snap := make(map[string]CommandKnowledge, len(g.commands))
	for k, ck := range g.commands {
		snap[k] = cloneCommandKnowledge(ck)
	}
	g.baseline = &snapshot{commands: snap}
}

// SetBaselineFromLoad is the spec section 4.7 "critical" hook: any
// Initialize/Load path MUST call this with the values read from disk, or
// the next delta computation would double-count everything already
// persisted. It both installs the loaded rows as current state AND sets
// the baseline to the same values in one step.
func (g *Graph) SetBaselineFromLoad(loaded []CommandDelta) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.commands = make(map[string]*CommandKnowledge, len(loaded))
	for _, row := range loaded {
		ck := newCommandKnowledge(row.Command, row.FirstSeen)
		ck.TotalUsageCount = uint64(row.UsageCountDelta)
		ck.FirstSeen = row.FirstSeen
		ck.LastUsed = row.LastUsed
		for _, a := range row.Arguments {
			ck.Arguments[lower(a.Argument)] = &ArgumentUsage{
				Argument: a.Argument, IsFlag: a.IsFlag,
				UsageCount: uint64(a.UsageCountDelta), FirstSeen: a.FirstSeen, LastUsed: a.LastUsed,
			}
		}
		for _, f := range row.FlagCombinations {
			key := flagsKey(f.Flags)
			ck.FlagCombinations[key] = &FlagCombination{
				Flags: f.Flags, UsageCount: uint64(f.UsageCountDelta), FirstSeen: f.FirstSeen, LastUsed: f.LastUsed,
			}
		}
		for _, s := range row.ArgumentSequences {
			key := seqKey{first: lower(s.First), second: lower(s.Second)}
			ck.ArgumentSequences[key] = &ArgumentSequence{
				First: s.First, Second: s.Second, UsageCount: uint64(s.UsageCountDelta), FirstSeen: s.FirstSeen, LastUsed: s.LastUsed,
			}
		}
		for _, p := range row.ParameterValues {
			key := lower(p.Parameter)
			ck.ParameterValues[key] = append(ck.ParameterValues[key], &ParameterValue{
				Parameter: p.Parameter, Value: p.Value, UsageCount: uint64(p.UsageCountDelta), LastUsed: p.LastUsed,
			})
		}
		for _, c := range row.CoOccurrences {
			key := pairKey{a: lower(c.ArgA), b: lower(c.ArgB)}
			ck.CoOccurrences[key] = &CoOccurrence{ArgA: c.ArgA, ArgB: c.ArgB, UsageCount: uint64(c.UsageCountDelta)}
		}
		g.commands[lower(row.Command)] = ck
	}
	g.evictCommandsLocked()

	snap := make(map[string]CommandKnowledge, len(g.commands))
	for k, ck := range g.commands {
		snap[k] = cloneCommandKnowledge(ck)
	}
	g.baseline = &snapshot{commands: snap}
}

func lower(s string) string { return strings.ToLower(s) }

func flagsKey(flags []string) string { return strings.Join(flags, "\x00") }
