package pcd

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/pscue/pscue/internal/config"
)

const longQueryThreshold = 10

// matchScore implements spec section 4.11 stage 2's match_score: exact
// name match = 1.0, prefix match = 0.9, substring = 0.5, fuzzy =
// similarity ratio scaled into [0.7, 0.9]. Both the full path and the
// terminal directory name are tested (spec's "match key"); the higher
// score wins.
func matchScore(cfg config.PCD, query, path string) float64 {
	if query == "" {
		return 0
	}
	name := filepathBase(path)
	byPath := matchScoreOne(cfg, query, path)
	byName := matchScoreOne(cfg, query, name)
	if byName > byPath {
		return byName
	}
	return byPath
}

func matchScoreOne(cfg config.PCD, query, candidate string) float64 {
	q := strings.ToLower(query)
	c := strings.ToLower(candidate)

	if q == c {
		return 1.0
	}
	if strings.HasPrefix(c, q) {
		return 0.9
	}
	if strings.Contains(c, q) {
		return 0.5
	}
	ratio := similarityRatio(q, c)
	minMatch := cfg.FuzzyMinMatchPct
	if minMatch <= 0 {
		minMatch = 0.70
	}
	if ratio < minMatch {
		return 0
	}
	if len(q) > longQueryThreshold {
		lcsPct := cfg.LongQueryLCSPct
		if lcsPct <= 0 {
			lcsPct = 0.60
		}
		if lcsCoverage(q, c) < lcsPct {
			return 0
		}
	}
	// Scale the similarity ratio (>= minMatch, <= 1.0) into [0.7, 0.9].
	span := 1.0 - minMatch
	if span <= 0 {
		return 0.9
	}
	scaled := 0.7 + 0.2*((ratio-minMatch)/span)
	if scaled > 0.9 {
		scaled = 0.9
	}
	return scaled
}

// isExactMatch reports whether query exactly matches (case-insensitive)
// either the full path or its terminal name, for spec section 4.11 stage
// 2's exact_match_boost.
func isExactMatch(query, path string) bool {
	q := strings.ToLower(query)
	return q == strings.ToLower(path) || q == strings.ToLower(filepathBase(path))
}

// similarityRatio blends github.com/sahilm/fuzzy's subsequence match (fast
// reject of completely unrelated strings) with a Levenshtein-distance
// ratio, since fuzzy.Find alone scores ordering/compactness rather than the
// normalized edit-distance percentage spec section 4.11 names directly.
func similarityRatio(query, candidate string) float64 {
	if query == "" || candidate == "" {
		return 0
	}
	matches := fuzzy.Find(query, []string{candidate})
	if len(matches) == 0 {
		return 0
	}
	dist := levenshtein(query, candidate)
	longest := len(query)
	if len(candidate) > longest {
		longest = len(candidate)
	}
	if longest == 0 {
		return 1
	}
	return 1.0 - float64(dist)/float64(longest)
}

// lcsCoverage returns the longest-common-subsequence length between a and
// b, normalized by the query length, for spec section 4.11's long-query
// guard ("dd-trace-js" must not match "dd-trace-dotnet").
func lcsCoverage(a, b string) float64 {
	if a == "" {
		return 0
	}
	n, m := len(a), len(b)
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcsLen := prev[m]
	return float64(lcsLen) / float64(n)
}

// levenshtein computes the classic edit distance between a and b.
func levenshtein(a, b string) int {
	n, m := len(a), len(b)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[m]
}

func filepathBase(path string) string {
	trimmed := strings.TrimRight(path, "/\\")
	idx := strings.LastIndexAny(trimmed, "/\\")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
