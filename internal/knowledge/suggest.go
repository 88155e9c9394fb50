package knowledge

import (
	"sort"
	"strings"
)

// GetSuggestions implements spec section 4.4's ranked-suggestion query. If
// currentArguments is non-empty, the last non-flag argument is consulted to
// surface matching ArgumentSequences for multi-word expansion (the caller,
// GenericPredictor, uses this to drive its own sequence-expansion step;
// Graph itself returns both single-argument and sequence-continuation
// candidates here so callers needing only one kind can filter by Reason).
func (g *Graph) GetSuggestions(command string, currentArguments []string, wordToComplete string) []Suggestion {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ck, ok := g.commands[strings.ToLower(command)]
	if !ok {
		return nil
	}
	now := g.now()
	wtc := strings.ToLower(wordToComplete)

	var out []Suggestion
	for _, au := range ck.Arguments {
		if wtc != "" && !strings.HasPrefix(strings.ToLower(au.Argument), wtc) {
			continue
		}
		out = append(out, Suggestion{
			Argument: au.Argument,
			Score:    argumentScore(au.UsageCount, ck.TotalUsageCount, au.LastUsed, now, g.decayDays),
			IsFlag:   au.IsFlag,
			Reason:   "freq",
		})
	}

	sortSuggestions(out)
	return out
}

// GetSequencesStartingWith returns the top-max ArgumentSequences whose
// First matches firstArg (case-insensitive) and whose usage count is at
// least minFreq (spec section 4.9 step 2's "min 3 occurrences"), ranked by
// the same freq/recency blend GetSuggestions uses (spec section 4.4).
func (g *Graph) GetSequencesStartingWith(command, firstArg string, minFreq uint64, max int) []Suggestion {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ck, ok := g.commands[strings.ToLower(command)]
	if !ok {
		return nil
	}
	now := g.now()
	target := strings.ToLower(firstArg)

	var totalFreq uint64
	for _, sq := range ck.ArgumentSequences {
		totalFreq += sq.UsageCount
	}

	var out []Suggestion
	for _, sq := range ck.ArgumentSequences {
		if strings.ToLower(sq.First) != target {
			continue
		}
		if sq.UsageCount < minFreq {
			continue
		}
		out = append(out, Suggestion{
			Argument: sq.Second,
			Score:    sequenceScore(sq.UsageCount, totalFreq, sq.LastUsed, now, g.decayDays),
			Reason:   "sequence",
		})
	}
	sortSuggestions(out)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// sortSuggestions applies spec section 4.9's output ordering: score desc,
// then frequency desc (approximated here by score since Suggestion does not
// carry raw frequency; callers needing the raw tie-break re-sort with their
// own frequency field), then alphabetical.
func sortSuggestions(s []Suggestion) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].Argument < s[j].Argument
	})
}
