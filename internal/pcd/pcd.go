// Package pcd implements PcdEngine (component C11): ranked directory
// candidates for the smart-navigation surface, blending learned `cd`
// arguments from KnowledgeGraph with a bounded filesystem walk, fuzzy
// matching, and topological-distance scoring (spec section 4.11).
package pcd

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pscue/pscue/internal/config"
	"github.com/pscue/pscue/internal/knowledge"
)

// defaultBlocklist is spec section 4.11 stage 5's built-in directory-name
// blocklist, grounded on the teacher's hidden/generated-directory skip list
// in internal/world/incremental_scan.go, narrowed to PCD's own defaults.
var defaultBlocklist = []string{
	".codeium", ".claude", ".dotnet", ".nuget", ".git", ".vs", ".vscode",
	".idea", "node_modules", "bin", "obj", "target", "__pycache__", ".pytest_cache",
}

// Candidate is one ranked directory suggestion.
type Candidate struct {
	Path  string
	Score float64
}

// Request is PcdEngine's query input (spec section 4.11).
type Request struct {
	Query              string
	CurrentDirectory   string
	MaxDepth           int
	SkipExistenceCheck bool
}

// Engine is PcdEngine.
type Engine struct {
	log       *zap.Logger
	kg        *knowledge.Graph
	cfg       config.PCD
	decayDays float64
	now       func() time.Time
}

// New builds a PcdEngine over the given KnowledgeGraph and config.
// decayDays is SPEC_FULL.md section 12 supplement 3's shared recency-decay
// constant: the same value KnowledgeGraph was built with (spec section 6's
// decay_days), so ArgumentUsage scoring and PCD's recency_decay move
// together instead of drifting as two independent constants.
func New(log *zap.Logger, kg *knowledge.Graph, cfg config.PCD, decayDays float64) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if decayDays <= 0 {
		decayDays = 30
	}
	return &Engine{log: log, kg: kg, cfg: cfg, decayDays: decayDays, now: time.Now}
}

// Rank runs spec section 4.11's full stage pipeline and returns candidates
// sorted by final score descending.
func (e *Engine) Rank(req Request) []Candidate {
	byPath := make(map[string]float64)
	upsert := func(path string, score float64) {
		abs := normalizeForDedup(path)
		if existing, ok := byPath[abs]; !ok || score > existing {
			byPath[abs] = score
		}
	}

	// Stage 1: well-known shortcuts, only for relative queries.
	if !filepath.IsAbs(req.Query) {
		upsert("~", 50.0)
		upsert("..", 50.0)
	}

	// Stage 2: learned directories.
	if e.kg != nil {
		for _, cand := range e.learnedCandidates(req) {
			upsert(cand.Path, cand.Score)
		}
	}

	// Stage 3 & 4: filesystem walk.
	prefix := resolvePrefix(req.Query, req.CurrentDirectory)
	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = e.cfg.MaxDepthTab
	}
	for _, dir := range e.walk(prefix, maxDepth) {
		if score, ok := e.scoreWalkedDir(req, dir); ok {
			upsert(dir, score)
		}
	}

	// Stage 5: blocklist filter (unless the query explicitly names it).
	blocklist := append(append([]string{}, defaultBlocklist...), e.cfg.CustomBlocklist...)
	queryLower := strings.ToLower(req.Query)

	var out []Candidate
	for path, score := range byPath {
		name := strings.ToLower(filepath.Base(path))
		if e.cfg.EnableDotDirFilter && isBlocked(name, blocklist) && !strings.HasPrefix(name, queryLower) {
			continue
		}
		// Stage 6: existence filter.
		if !req.SkipExistenceCheck && path != "~" {
			if info, err := os.Stat(path); err != nil || !info.IsDir() {
				continue
			}
		}
		out = append(out, Candidate{Path: path, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})

	n := e.cfg.TopN
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// BestMatch implements spec section 4.11's non-Tab navigation: the first
// ranked candidate that actually exists on disk. ok is false if none do;
// PcdEngine never asks the caller to cd into a non-existent path.
func (e *Engine) BestMatch(req Request) (string, bool) {
	for _, cand := range e.Rank(req) {
		if info, err := os.Stat(cand.Path); err == nil && info.IsDir() {
			return cand.Path, true
		}
	}
	return "", false
}

// learnedCandidates pulls up to 200 learned cd arguments and scores each
// per spec section 4.11 stage 2.
func (e *Engine) learnedCandidates(req Request) []Candidate {
	var out []Candidate
	ck, ok := e.kg.Lookup("cd")
	if !ok {
		return nil
	}
	now := e.now()
	const maxLearned = 200
	count := 0
	for _, au := range ck.Arguments {
		if count >= maxLearned {
			break
		}
		count++
		arg := au.Argument
		match := matchScore(e.cfg, req.Query, arg)
		if match == 0 {
			continue
		}
		freqNorm := 0.0
		if ck.TotalUsageCount > 0 {
			freqNorm = float64(au.UsageCount) / float64(ck.TotalUsageCount)
		}
		frecency := e.cfg.FrequencyWeight*freqNorm + e.cfg.RecencyWeight*knowledge.RecencyDecay(au.LastUsed, now, e.decayDays)
		distance := distanceScore(arg, req.CurrentDirectory)
		score := match * (frecency + e.cfg.DistanceWeight*distance)
		if isExactMatch(req.Query, arg) {
			score *= e.cfg.ExactMatchBoost
		}
		out = append(out, Candidate{Path: arg, Score: score})
	}
	return out
}
