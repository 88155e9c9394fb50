// Package knowledge implements KnowledgeGraph (component C4), the
// per-command argument/flag/sequence/parameter knowledge store described in
// spec sections 3 and 4.4. It is the single largest core component (spec
// section 2, ~18% share) and is guarded by one sync.RWMutex with short
// critical sections — one of the three concurrency strategies spec section
// 5 allows, chosen because PSCue has exactly one writer (FeedbackIngestor)
// and the per-command maps are small enough that lock contention between
// reads and the rare write is not a practical bottleneck (the teacher's
// LocalStore makes the same tradeoff with a single sync.RWMutex over the
// whole SQLite handle).
package knowledge

import "time"

// ArgumentUsage is spec section 3's ArgumentUsage entity.
type ArgumentUsage struct {
	Argument   string
	UsageCount uint64
	FirstSeen  time.Time
	LastUsed   time.Time
	IsFlag     bool
}

// FlagCombination is spec section 3's FlagCombination entity. Flags is the
// canonical sorted set; CanonicalKey is its join for map storage.
type FlagCombination struct {
	Flags      []string
	UsageCount uint64
	FirstSeen  time.Time
	LastUsed   time.Time
}

// ArgumentSequence is spec section 3's ArgumentSequence entity: a
// consecutive non-flag argument pair within one command invocation.
type ArgumentSequence struct {
	First      string
	Second     string
	UsageCount uint64
	FirstSeen  time.Time
	LastUsed   time.Time
}

// ParameterValue is spec section 3's ParameterValue entity.
type ParameterValue struct {
	Parameter  string
	Value      string
	UsageCount uint64
	LastUsed   time.Time
}

// CoOccurrence is spec section 4.7's co_occurrences row: a symmetric
// argument adjacency within one command invocation, unordered (arg_a,
// arg_b are stored sorted so {a,b} and {b,a} are the same row).
type CoOccurrence struct {
	ArgA, ArgB string
	UsageCount uint64
}

// CommandKnowledge is spec section 3's per-command aggregate.
type CommandKnowledge struct {
	Command         string // case-insensitive key, stored as first-seen case
	TotalUsageCount uint64
	FirstSeen       time.Time
	LastUsed        time.Time

	Arguments         map[string]*ArgumentUsage     // keyed by lower(argument)
	FlagCombinations  map[string]*FlagCombination   // keyed by canonical joined key
	ArgumentSequences map[seqKey]*ArgumentSequence   // capped at 50, LRU by LastUsed
	ParameterValues   map[string][]*ParameterValue   // keyed by lower(parameter)
	CoOccurrences     map[pairKey]*CoOccurrence      // symmetric argument pairs within one invocation
}

type seqKey struct {
	first, second string
}

type pairKey struct {
	a, b string // a <= b lexically
}

func newCommandKnowledge(command string, now time.Time) *CommandKnowledge {
	return &CommandKnowledge{
		Command:           command,
		FirstSeen:         now,
		LastUsed:          now,
		Arguments:         make(map[string]*ArgumentUsage),
		FlagCombinations:  make(map[string]*FlagCombination),
		ArgumentSequences: make(map[seqKey]*ArgumentSequence),
		ParameterValues:   make(map[string][]*ParameterValue),
		CoOccurrences:     make(map[pairKey]*CoOccurrence),
	}
}

// Suggestion is the ranked result type GetSuggestions and
// GetSequencesStartingWith return (spec section 4.4).
type Suggestion struct {
	Argument    string
	Score       float64
	Description string
	IsFlag      bool
	Reason      string // supplemental source tag, SPEC_FULL.md section 12.2
}
