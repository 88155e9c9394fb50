package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNavigationCommand(t *testing.T) {
	assert.True(t, IsNavigationCommand("cd"))
	assert.True(t, IsNavigationCommand("CD"))
	assert.True(t, IsNavigationCommand("Set-Location"))
	assert.False(t, IsNavigationCommand("ls"))
}

func TestNormalizePathRelativeToWorkingDirectory(t *testing.T) {
	wd := t.TempDir()
	sub := filepath.Join(wd, "child")
	require.NoError(t, os.Mkdir(sub, 0o755))

	got := NormalizePath("child", wd)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, string(filepath.Separator), got[len(got)-1:])
}

func TestNormalizePathIdempotence(t *testing.T) {
	wd := t.TempDir()
	first := NormalizePath("some/dir", wd)
	second := NormalizePath(first, wd)
	assert.Equal(t, first, second)
}

func TestNormalizePathExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got := NormalizePath("~", "")
	assert.Contains(t, got, home)
}

func TestNormalizePathTrailingSeparator(t *testing.T) {
	wd := t.TempDir()
	got := NormalizePath(".", wd)
	assert.Equal(t, string(filepath.Separator), got[len(got)-1:])
}
