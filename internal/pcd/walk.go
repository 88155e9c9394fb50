package pcd

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// resolvePrefix expands the query into the directory whose children should
// be walked: relative queries resolve against currentDirectory, `~`
// expands to the user's home, absolute queries are used as-is. If the
// query names a path that doesn't exist or isn't a directory, its parent
// is used instead so a partially-typed query still yields candidates.
func resolvePrefix(query, currentDirectory string) string {
	q := query
	if q == "" {
		q = currentDirectory
	}
	if strings.HasPrefix(q, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			q = filepath.Join(home, strings.TrimPrefix(q, "~"))
		}
	}
	if !filepath.IsAbs(q) {
		q = filepath.Join(currentDirectory, q)
	}
	if info, err := os.Stat(q); err == nil && info.IsDir() {
		return q
	}
	return filepath.Dir(q)
}

// walk implements spec section 4.11 stages 3 and 4: a non-recursive list
// of prefix's child directories, plus a recursive descent to maxDepth when
// the engine's recursive_search config is enabled. Grounded on the
// teacher's filepath.WalkDir + hidden/generated-directory skip pattern in
// internal/world/incremental_scan.go, adapted from codebase scanning to
// bounded directory discovery. Permission and not-found errors during the
// walk are skipped (spec section 7's FilesystemBenign class), never
// aborting the whole walk.
func (e *Engine) walk(prefix string, maxDepth int) []string {
	var out []string

	entries, err := os.ReadDir(prefix)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() {
			out = append(out, filepath.Join(prefix, entry.Name()))
		}
	}

	if !e.cfg.RecursiveSearch || maxDepth <= 1 {
		return out
	}

	baseDepth := strings.Count(prefix, string(filepath.Separator))
	_ = filepath.WalkDir(prefix, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // FilesystemBenign: skip and continue
		}
		if path == prefix || !d.IsDir() {
			return nil
		}
		depth := strings.Count(path, string(filepath.Separator)) - baseDepth
		if depth > maxDepth {
			return fs.SkipDir
		}
		if depth > 1 {
			out = append(out, path)
		}
		return nil
	})
	return out
}

// scoreWalkedDir scores a filesystem-discovered directory using the same
// match/distance shape as learned candidates, but without a frecency term
// (the directory has no KnowledgeGraph usage history). An empty query
// means "list everything under the walked prefix" (bare Tab with nothing
// typed yet); a non-empty query that fails to match at all excludes the
// directory entirely, so PcdEngine's fuzzy guard (spec section 4.11:
// "dd-trace-js" must not match "dd-trace-dotnet") applies to
// filesystem-discovered candidates exactly as it does to learned ones.
func (e *Engine) scoreWalkedDir(req Request, path string) (float64, bool) {
	match := 0.5
	if req.Query != "" {
		match = matchScore(e.cfg, req.Query, path)
		if match == 0 {
			return 0, false
		}
	}
	distance := distanceScore(path, req.CurrentDirectory)
	score := match * (e.cfg.DistanceWeight * distance)
	if req.Query != "" && isExactMatch(req.Query, path) {
		score *= e.cfg.ExactMatchBoost
	}
	return score, true
}
