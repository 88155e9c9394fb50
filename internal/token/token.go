// Package token implements PSCue's command-line tokenizer (component C1 in
// spec section 2), per the rules in spec section 4.1: a deterministic,
// greedy left-to-right split into Verb / Flag / Parameter / ParameterValue /
// Standalone tokens. It is intentionally a lightweight lexer, not a shell
// grammar parser (spec section 1 non-goals).
package token

import (
	"strings"

	"github.com/pscue/pscue/internal/pscueerr"
)

// Kind enumerates the token classification spec section 4.1 requires.
type Kind int

const (
	Verb Kind = iota
	Flag
	Parameter
	ParameterValue
	Standalone
)

func (k Kind) String() string {
	switch k {
	case Verb:
		return "Verb"
	case Flag:
		return "Flag"
	case Parameter:
		return "Parameter"
	case ParameterValue:
		return "ParameterValue"
	case Standalone:
		return "Standalone"
	default:
		return "Unknown"
	}
}

// Token is one classified word from a command line.
type Token struct {
	Kind  Kind
	Text  string
	// BoundTo holds the canonical parameter name a ParameterValue token is
	// bound to (e.g. "--framework"); empty for all other kinds.
	BoundTo string
}

// Escape convention (spec section 4.1 requires this documented): PSCue
// follows POSIX-shell-like quoting. Inside double quotes, a backslash
// escapes `"`, `\`, `$`, and `` ` ``; inside single quotes nothing is
// escaped and the string runs verbatim to the next single quote.
const (
	bsEscapableInDouble = "\"\\$`"
)

// Parse splits line into an ordered token sequence. It returns
// pscueerr.ErrUnterminatedQuote (class ClassInputRejected) if a quote is
// left unclosed, per spec section 4.1; callers must treat that as "do not
// learn".
func Parse(line string) ([]Token, error) {
	words, err := splitWords(line)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, nil
	}

	tokens := make([]Token, 0, len(words))
	tokens = append(tokens, Token{Kind: Verb, Text: words[0]})

	i := 1
	for i < len(words) {
		w := words[i]
		switch {
		case isParameterWithInlineValue(w):
			name, value := splitInlineValue(w)
			tokens = append(tokens, Token{Kind: Parameter, Text: name})
			tokens = append(tokens, Token{Kind: ParameterValue, Text: value, BoundTo: name})
			i++
		case isFlagLike(w):
			// A parameter is a flag-like token whose following word is not
			// itself flag-like and is not the verb position; if the next
			// word exists and qualifies, reclassify it as a ParameterValue
			// bound to this parameter. Otherwise this is a bare Flag.
			if i+1 < len(words) && !isFlagLike(words[i+1]) {
				tokens = append(tokens, Token{Kind: Parameter, Text: w})
				tokens = append(tokens, Token{Kind: ParameterValue, Text: words[i+1], BoundTo: w})
				i += 2
				continue
			}
			tokens = append(tokens, Token{Kind: Flag, Text: w})
			i++
		default:
			tokens = append(tokens, Token{Kind: Standalone, Text: w})
			i++
		}
	}
	return tokens, nil
}

func isFlagLike(w string) bool {
	return strings.HasPrefix(w, "-") && w != "-" && w != "--"
}

func isParameterWithInlineValue(w string) bool {
	return isFlagLike(w) && strings.Contains(w, "=")
}

func splitInlineValue(w string) (name, value string) {
	idx := strings.IndexByte(w, '=')
	return w[:idx], w[idx+1:]
}

// splitWords performs the quote-aware whitespace split. Quoted substrings
// (single or double) become one token with the surrounding quotes
// stripped.
func splitWords(line string) ([]string, error) {
	var words []string
	var cur strings.Builder
	inWord := false
	i := 0
	n := len(line)

	flush := func() {
		if inWord {
			words = append(words, cur.String())
			cur.Reset()
			inWord = false
		}
	}

	for i < n {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			flush()
			i++
		case c == '\'':
			inWord = true
			i++
			start := i
			for i < n && line[i] != '\'' {
				i++
			}
			if i >= n {
				return nil, pscueerr.ErrUnterminatedQuote
			}
			cur.WriteString(line[start:i])
			i++ // skip closing quote
		case c == '"':
			inWord = true
			i++
			for i < n && line[i] != '"' {
				if line[i] == '\\' && i+1 < n && strings.IndexByte(bsEscapableInDouble, line[i+1]) >= 0 {
					cur.WriteByte(line[i+1])
					i += 2
					continue
				}
				cur.WriteByte(line[i])
				i++
			}
			if i >= n {
				return nil, pscueerr.ErrUnterminatedQuote
			}
			i++ // skip closing quote
		default:
			inWord = true
			cur.WriteByte(c)
			i++
		}
	}
	flush()
	return words, nil
}
