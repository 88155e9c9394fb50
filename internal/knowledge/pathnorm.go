package knowledge

import (
	"os"
	"path/filepath"
	"strings"
)

// navigationCommands is the case-insensitive set of commands whose
// arguments are directory paths, per spec section 4.4.
var navigationCommands = map[string]bool{
	"cd":            true,
	"set-location":  true,
	"sl":            true,
	"chdir":         true,
}

// IsNavigationCommand reports whether command (any case) is one of the
// navigation verbs spec section 4.4 lists.
func IsNavigationCommand(command string) bool {
	return navigationCommands[strings.ToLower(command)]
}

// NormalizePath implements spec section 4.4's path normalization
// invariant: expand leading ~, resolve relative to workingDirectory,
// canonicalize, resolve symlinks to their real target, and terminate with
// the platform separator. If any step fails, NormalizePath falls back to
// the result of the last step that succeeded (spec section 4.4), so a
// permission error resolving symlinks still yields a usable absolute path.
func NormalizePath(raw, workingDirectory string) string {
	p := expandHome(raw)

	if !filepath.IsAbs(p) {
		if workingDirectory != "" {
			p = filepath.Join(workingDirectory, p)
		}
		// else: degraded mode, spec 4.4 — raw argument used as-is below.
	}

	clean := filepath.Clean(p)
	best := clean

	if abs, err := filepath.Abs(clean); err == nil {
		best = abs
	}

	if real, err := filepath.EvalSymlinks(best); err == nil {
		best = real
	}
	// else: fall back to `best` from the last successful step, per spec.

	return ensureTrailingSeparator(best)
}

func expandHome(p string) string {
	if p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return p
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

func ensureTrailingSeparator(p string) string {
	if strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + string(filepath.Separator)
}
