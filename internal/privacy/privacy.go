// Package privacy implements PSCue's PrivacyFilter (component C2), deciding
// whether a command line may be learned, per spec section 4.2. The
// built-in reject rules are never disableable; callers may only widen the
// reject set via configured wildcard patterns (spec section 6
// ignore_patterns).
//
// Documented tradeoff (spec section 9, open question 4): the built-in
// `*api*key*` wildcard is intentionally conservative and will reject
// innocuous phrases like "use new api key format" — false positives are
// acceptable per spec; PSCue never tries to distinguish a real secret from
// a phrase that merely mentions one.
package privacy

import (
	"regexp"
	"strings"
)

// builtinWildcards are always-on substring-wildcard rejects (spec 4.2).
var builtinWildcards = []string{
	"*password*",
	"*passwd*",
	"*secret*",
	"*api*key*",
	"*token*",
	"*private*key*",
	"*credentials*",
	"*bearer*",
	"*oauth*",
}

var (
	reAKIA       = regexp.MustCompile(`AKIA[A-Z0-9]{16,}`)
	reEyJ        = regexp.MustCompile(`eyJ[A-Za-z0-9+/_=-]{20,}`)
	reBearer     = regexp.MustCompile(`(?i)Bearer\s+\S+`)
	reLongB64Hex = regexp.MustCompile(`[A-Za-z0-9+/_=-]{40,}`)
)

var literalPrefixes = []string{"sk_", "pk_", "ghp_", "gho_"}

// Filter decides whether a full command line may be learned.
type Filter struct {
	userPatterns []string
}

// New builds a Filter with the given user-supplied wildcard patterns
// (comma-separated in config, already split by the caller), appended to
// (never replacing) the built-in rejects.
func New(userPatterns []string) *Filter {
	return &Filter{userPatterns: userPatterns}
}

// Reject reports whether line must NOT be learned.
func (f *Filter) Reject(line string) bool {
	if line == "" {
		return false
	}
	for _, pat := range builtinWildcards {
		if wildcardMatch(pat, line) {
			return true
		}
	}
	for _, tok := range literalPrefixTokens(line) {
		for _, prefix := range literalPrefixes {
			if strings.HasPrefix(tok, prefix) {
				return true
			}
		}
	}
	if reAKIA.MatchString(line) {
		return true
	}
	if reEyJ.MatchString(line) {
		return true
	}
	if reBearer.MatchString(line) {
		return true
	}
	// Strip quoted substrings before the base64/hex-run heuristic so a
	// long quoted message (e.g. a commit message) does not trip it merely
	// by being long; spec 4.2 says the run is checked "after first
	// stripping quoted substrings".
	if reLongB64Hex.MatchString(stripQuoted(line)) {
		return true
	}
	for _, pat := range f.userPatterns {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		if wildcardMatch(pat, line) {
			return true
		}
	}
	return false
}

// wildcardMatch treats pat as a glob where '*' matches any run of
// characters (including none, and including '/'); matching is
// case-insensitive, consistent with the command-key case-insensitivity
// invariant (spec section 3). path/filepath's Match intentionally refuses
// to let '*' cross a '/', which is wrong here (a full command line is not
// a path), so PSCue implements the simple in-order-segment scan directly.
func wildcardMatch(pat, s string) bool {
	pat = strings.ToLower(pat)
	s = strings.ToLower(s)
	segments := strings.Split(pat, "*")

	pos := 0
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		idx := strings.Index(s[pos:], seg)
		if idx < 0 {
			return false
		}
		if i == 0 && !strings.HasPrefix(pat, "*") && idx != 0 {
			return false
		}
		pos += idx + len(seg)
	}
	if !strings.HasSuffix(pat, "*") {
		lastSeg := segments[len(segments)-1]
		if lastSeg != "" && !strings.HasSuffix(s, lastSeg) {
			return false
		}
	}
	return true
}

func literalPrefixTokens(line string) []string {
	return strings.Fields(line)
}

func stripQuoted(line string) string {
	var b strings.Builder
	inSingle, inDouble := false, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case inSingle || inDouble:
			// skip
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
