package knowledge

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Graph is KnowledgeGraph (component C4). Construct with New.
type Graph struct {
	mu   sync.RWMutex
	log  *zap.Logger
	now  func() time.Time

	maxCommands   int
	maxArgsPerCmd int
	decayDays     float64

	commands map[string]*CommandKnowledge // keyed by lower(command)

	baseline *snapshot
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithClock overrides the time source; tests use this for determinism.
func WithClock(now func() time.Time) Option {
	return func(g *Graph) { g.now = now }
}

// New builds an empty KnowledgeGraph. maxCommands/maxArgsPerCmd/decayDays
// are the spec section 6 config values (defaults 500/100/30).
func New(log *zap.Logger, maxCommands, maxArgsPerCmd int, decayDays float64, opts ...Option) *Graph {
	if maxCommands <= 0 {
		maxCommands = 500
	}
	if maxArgsPerCmd <= 0 {
		maxArgsPerCmd = 100
	}
	if decayDays <= 0 {
		decayDays = 30
	}
	g := &Graph{
		log:           log,
		now:           time.Now,
		maxCommands:   maxCommands,
		maxArgsPerCmd: maxArgsPerCmd,
		decayDays:     decayDays,
		commands:      make(map[string]*CommandKnowledge),
		baseline:      emptySnapshot(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

const maxSequencesPerCommand = 50

// RecordUsage updates per-command stats for one executed command, per spec
// section 4.4. For navigation commands, arguments must already be
// normalized absolute paths by the caller (FeedbackIngestor owns the
// "working_directory present vs degraded mode" decision described there);
// Graph itself does not special-case navigation path normalization beyond
// treating each argument as a single opaque string, matching the spec's
// framing of KnowledgeGraph as the stats store and FeedbackIngestor as the
// orchestrator that derives the correct argument text (spec section 4.8
// step 5).
func (g *Graph) RecordUsage(command string, arguments []string) {
	if strings.TrimSpace(command) == "" {
		return // invalid input silently ignored, spec 4.4
	}
	now := g.now()
	key := strings.ToLower(command)

	g.mu.Lock()
	defer g.mu.Unlock()

	ck, ok := g.commands[key]
	if !ok {
		ck = newCommandKnowledge(command, now)
		g.commands[key] = ck
	}
	ck.TotalUsageCount++
	ck.LastUsed = now
	if !ok {
		g.evictCommandsLocked()
	}

	g.recordArgumentsLocked(ck, arguments, now)
	g.recordFlagCombinationLocked(ck, arguments, now)
	g.recordSequencesLocked(ck, arguments, now)
	g.recordParameterValuesLocked(ck, arguments, now)
	g.recordCoOccurrencesLocked(ck, arguments, now)

	g.evictArgumentsLocked(ck)
}

func (g *Graph) recordArgumentsLocked(ck *CommandKnowledge, arguments []string, now time.Time) {
	for _, raw := range arguments {
		if raw == "" {
			continue
		}
		isFlag := strings.HasPrefix(raw, "-")
		lk := strings.ToLower(raw)
		au, ok := ck.Arguments[lk]
		if !ok {
			au = &ArgumentUsage{Argument: raw, FirstSeen: now, IsFlag: isFlag}
			ck.Arguments[lk] = au
		}
		au.UsageCount++
		au.LastUsed = now
	}
}

func (g *Graph) recordFlagCombinationLocked(ck *CommandKnowledge, arguments []string, now time.Time) {
	var flags []string
	for _, a := range arguments {
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
		}
	}
	if len(flags) < 2 {
		return // a combination needs at least 2 co-occurring flags
	}
	sorted := append([]string(nil), flags...)
	sort.Strings(sorted)
	canonicalKey := flagsKey(sorted)
	fc, ok := ck.FlagCombinations[canonicalKey]
	if !ok {
		fc = &FlagCombination{Flags: sorted, FirstSeen: now}
		ck.FlagCombinations[canonicalKey] = fc
	}
	fc.UsageCount++
	fc.LastUsed = now
}

// recordSequencesLocked tracks consecutive non-flag argument pairs (spec
// section 3 ArgumentSequence), capped at 50 entries with LRU-by-last_used
// eviction.
func (g *Graph) recordSequencesLocked(ck *CommandKnowledge, arguments []string, now time.Time) {
	var nonFlags []string
	for _, a := range arguments {
		if a != "" && !strings.HasPrefix(a, "-") {
			nonFlags = append(nonFlags, a)
		}
	}
	for i := 0; i+1 < len(nonFlags); i++ {
		key := seqKey{first: strings.ToLower(nonFlags[i]), second: strings.ToLower(nonFlags[i+1])}
		sq, ok := ck.ArgumentSequences[key]
		if !ok {
			if len(ck.ArgumentSequences) >= maxSequencesPerCommand {
				g.evictOldestSequenceLocked(ck)
			}
			sq = &ArgumentSequence{First: nonFlags[i], Second: nonFlags[i+1], FirstSeen: now}
			ck.ArgumentSequences[key] = sq
		}
		sq.UsageCount++
		sq.LastUsed = now
	}
}

func (g *Graph) evictOldestSequenceLocked(ck *CommandKnowledge) {
	var oldestKey seqKey
	var oldestTime time.Time
	first := true
	for k, v := range ck.ArgumentSequences {
		if first || v.LastUsed.Before(oldestTime) {
			oldestKey, oldestTime, first = k, v.LastUsed, false
		}
	}
	if !first {
		delete(ck.ArgumentSequences, oldestKey)
	}
}

// recordParameterValuesLocked tracks, for each Parameter-kind argument
// immediately followed by a value in the raw argument list, the
// (parameter, value) pair. PSCue's caller passes the already-tokenized
// argument strings; Parameter/ParameterValue adjacency detection here uses
// the same convention as internal/token: a flag-like argument followed by a
// non-flag-like one.
func (g *Graph) recordParameterValuesLocked(ck *CommandKnowledge, arguments []string, now time.Time) {
	for i := 0; i+1 < len(arguments); i++ {
		if !strings.HasPrefix(arguments[i], "-") {
			continue
		}
		value := arguments[i+1]
		if strings.HasPrefix(value, "-") {
			continue
		}
		param := strings.ToLower(arguments[i])
		values := ck.ParameterValues[param]
		var found *ParameterValue
		for _, pv := range values {
			if pv.Value == value {
				found = pv
				break
			}
		}
		if found == nil {
			found = &ParameterValue{Parameter: arguments[i], Value: value}
			ck.ParameterValues[param] = append(ck.ParameterValues[param], found)
		}
		found.UsageCount++
		found.LastUsed = now
	}
}

// recordCoOccurrencesLocked tracks every unordered pair of distinct
// arguments seen together in one invocation (spec section 4.7's
// co_occurrences table), symmetric and deduplicated by storing the lower
// argument first.
func (g *Graph) recordCoOccurrencesLocked(ck *CommandKnowledge, arguments []string, now time.Time) {
	seen := make(map[string]bool, len(arguments))
	var distinct []string
	for _, a := range arguments {
		if a == "" {
			continue
		}
		lk := strings.ToLower(a)
		if seen[lk] {
			continue
		}
		seen[lk] = true
		distinct = append(distinct, a)
	}
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			a, b := distinct[i], distinct[j]
			if strings.ToLower(b) < strings.ToLower(a) {
				a, b = b, a
			}
			key := pairKey{a: strings.ToLower(a), b: strings.ToLower(b)}
			co, ok := ck.CoOccurrences[key]
			if !ok {
				co = &CoOccurrence{ArgA: a, ArgB: b}
				ck.CoOccurrences[key] = co
			}
			co.UsageCount++
		}
	}
}

// evictCommandsLocked enforces the process-wide max_commands cap (spec
// section 4.4): evict lowest total_usage_count, tie-broken by oldest
// last_used. Must be called with mu held.
func (g *Graph) evictCommandsLocked() {
	for len(g.commands) > g.maxCommands {
		var worstKey string
		var worst *CommandKnowledge
		for k, v := range g.commands {
			if worst == nil ||
				v.TotalUsageCount < worst.TotalUsageCount ||
				(v.TotalUsageCount == worst.TotalUsageCount && v.LastUsed.Before(worst.LastUsed)) {
				worstKey, worst = k, v
			}
		}
		if worst == nil {
			return
		}
		delete(g.commands, worstKey)
	}
}

// evictArgumentsLocked enforces the per-command max_args_per_cmd cap,
// evicting the lowest-score arguments first.
func (g *Graph) evictArgumentsLocked(ck *CommandKnowledge) {
	if len(ck.Arguments) <= g.maxArgsPerCmd {
		return
	}
	now := g.now()
	type scored struct {
		key   string
		score float64
	}
	all := make([]scored, 0, len(ck.Arguments))
	for k, au := range ck.Arguments {
		all = append(all, scored{k, argumentScore(au.UsageCount, ck.TotalUsageCount, au.LastUsed, now, g.decayDays)})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].score < all[j].score })
	toEvict := len(ck.Arguments) - g.maxArgsPerCmd
	for i := 0; i < toEvict; i++ {
		delete(ck.Arguments, all[i].key)
	}
}

// GetTrackedCommands lists known command keys (spec section 4.4), for
// empty-input suggestions.
func (g *Graph) GetTrackedCommands() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.commands))
	for _, ck := range g.commands {
		out = append(out, ck.Command)
	}
	sort.Strings(out)
	return out
}

// Lookup returns a read-only copy of a command's aggregate, or false if
// untracked. Exposed for PcdEngine's "learned cd arguments" query (spec
// section 4.11) and for persistence export.
func (g *Graph) Lookup(command string) (CommandKnowledge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ck, ok := g.commands[strings.ToLower(command)]
	if !ok {
		return CommandKnowledge{}, false
	}
	return cloneCommandKnowledge(ck), true
}
