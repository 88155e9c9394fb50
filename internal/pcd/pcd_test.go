package pcd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscue/pscue/internal/config"
	"github.com/pscue/pscue/internal/knowledge"
	"github.com/pscue/pscue/internal/pscuelog"
)

func testConfig() config.PCD {
	return config.PCD{
		FrequencyWeight:    0.5,
		RecencyWeight:      0.3,
		DistanceWeight:     0.2,
		ExactMatchBoost:    100.0,
		FuzzyMinMatchPct:   0.70,
		LongQueryLCSPct:    0.60,
		MaxDepthTab:        3,
		MaxDepthPredictor:  1,
		RecursiveSearch:    true,
		EnableDotDirFilter: true,
		TopN:               10,
	}
}

func TestExactNameMatchRanksFirst(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dd-trace-dotnet"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dd-trace-other-thing"), 0o755))

	kg := knowledge.New(pscuelog.Noop(), 500, 100, 30)
	kg.RecordUsage("cd", []string{filepath.Join(root, "dd-trace-dotnet")})
	kg.RecordUsage("cd", []string{filepath.Join(root, "dd-trace-other-thing")})

	e := New(pscuelog.Noop(), kg, testConfig(), 30)
	out := e.Rank(Request{Query: "dd-trace-dotnet", CurrentDirectory: root})
	require.NotEmpty(t, out)
	assert.Equal(t, filepath.Join(root, "dd-trace-dotnet"), out[0].Path)
}

func TestLongQueryLCSGuardRejectsUnrelatedNeighbor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dd-trace-dotnet"), 0o755))

	kg := knowledge.New(pscuelog.Noop(), 500, 100, 30)
	kg.RecordUsage("cd", []string{filepath.Join(root, "dd-trace-dotnet")})

	e := New(pscuelog.Noop(), kg, testConfig(), 30)
	out := e.Rank(Request{Query: "dd-trace-js", CurrentDirectory: root})
	for _, c := range out {
		assert.NotEqual(t, filepath.Join(root, "dd-trace-dotnet"), c.Path)
	}
}

func TestBlocklistFiltersGitAndNodeModules(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	e := New(pscuelog.Noop(), nil, testConfig(), 30)
	out := e.Rank(Request{Query: "", CurrentDirectory: root, MaxDepth: 1})

	for _, c := range out {
		assert.NotEqual(t, ".git", filepath.Base(c.Path))
		assert.NotEqual(t, "node_modules", filepath.Base(c.Path))
	}
}

func TestBlocklistAllowsExplicitQueryMatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))

	e := New(pscuelog.Noop(), nil, testConfig(), 30)
	out := e.Rank(Request{Query: "node_modules", CurrentDirectory: root, MaxDepth: 1})

	var found bool
	for _, c := range out {
		if filepath.Base(c.Path) == "node_modules" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBestMatchSkipsNonexistentCandidates(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "areal"), 0o755))

	kg := knowledge.New(pscuelog.Noop(), 500, 100, 30)
	kg.RecordUsage("cd", []string{filepath.Join(root, "areal")})
	kg.RecordUsage("cd", []string{filepath.Join(root, "aghost")}) // never created on disk, ranks above areal by recency

	e := New(pscuelog.Noop(), kg, testConfig(), 30)
	path, ok := e.BestMatch(Request{Query: "a", CurrentDirectory: root, SkipExistenceCheck: true})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "areal"), path)
}

func TestWellKnownShortcutsOnlyForRelativeQuery(t *testing.T) {
	root := t.TempDir()
	e := New(pscuelog.Noop(), nil, testConfig(), 30)

	relative := e.Rank(Request{Query: "proj", CurrentDirectory: root, SkipExistenceCheck: true})
	var sawShortcut bool
	for _, c := range relative {
		if c.Path == "~" || c.Path == ".." {
			sawShortcut = true
		}
	}
	assert.True(t, sawShortcut)

	absolute := e.Rank(Request{Query: "/tmp/proj", CurrentDirectory: root, SkipExistenceCheck: true})
	for _, c := range absolute {
		assert.NotEqual(t, "~", c.Path)
		assert.NotEqual(t, "..", c.Path)
	}
}

func TestDistanceScoreParentChildSibling(t *testing.T) {
	assert.InDelta(t, 0.85, distanceScore("/a/b/c", "/a/b"), 0.001)
	assert.InDelta(t, 0.9, distanceScore("/a/b", "/a/b/c"), 0.001)
	assert.InDelta(t, 0.7, distanceScore("/a/sibling", "/a/b"), 0.001)
	assert.Equal(t, 0.3, distanceScore("/unrelated/x", "/a/b"))
}
