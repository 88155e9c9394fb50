package token

import (
	"testing"

	"github.com/pscue/pscue/internal/pscueerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerbAndStandalone(t *testing.T) {
	toks, err := Parse("ls /tmp")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, Verb, toks[0].Kind)
	assert.Equal(t, "ls", toks[0].Text)
	assert.Equal(t, Standalone, toks[1].Kind)
	assert.Equal(t, "/tmp", toks[1].Text)
}

func TestParseFlagAndParameterValue(t *testing.T) {
	toks, err := Parse(`git commit -m "fix bug"`)
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, Verb, toks[0].Kind)
	assert.Equal(t, Standalone, toks[1].Kind)
	assert.Equal(t, "commit", toks[1].Text)
	assert.Equal(t, Parameter, toks[2].Kind)
	assert.Equal(t, "-m", toks[2].Text)
	assert.Equal(t, ParameterValue, toks[3].Kind)
	assert.Equal(t, "fix bug", toks[3].Text)
	assert.Equal(t, "-m", toks[3].BoundTo)
}

func TestParseInlineEquals(t *testing.T) {
	toks, err := Parse("create --framework=react")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, Parameter, toks[1].Kind)
	assert.Equal(t, "--framework", toks[1].Text)
	assert.Equal(t, ParameterValue, toks[2].Kind)
	assert.Equal(t, "react", toks[2].Text)
}

func TestParseBareFlagAtEnd(t *testing.T) {
	toks, err := Parse("ls -la --all")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, Flag, toks[1].Kind)
	assert.Equal(t, Flag, toks[2].Kind)
}

func TestParseFlagFollowedByFlagStaysBareFlag(t *testing.T) {
	toks, err := Parse("cmd -a -b")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, Flag, toks[1].Kind)
	assert.Equal(t, Flag, toks[2].Kind)
}

func TestParseSingleQuotesNoEscapes(t *testing.T) {
	toks, err := Parse(`echo 'a\nb'`)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, `a\nb`, toks[1].Text)
}

func TestParseDoubleQuoteEscape(t *testing.T) {
	toks, err := Parse(`echo "say \"hi\""`)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, `say "hi"`, toks[1].Text)
}

func TestParseUnterminatedQuote(t *testing.T) {
	_, err := Parse(`echo "unterminated`)
	require.Error(t, err)
	assert.True(t, pscueerr.Is(err, pscueerr.ClassInputRejected))
}

func TestParseEmptyLine(t *testing.T) {
	toks, err := Parse("   ")
	require.NoError(t, err)
	assert.Empty(t, toks)
}
