package pscuelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDebugAndProduction(t *testing.T) {
	dbg, err := New(true)
	require.NoError(t, err)
	require.NotNil(t, dbg)
	defer dbg.Sync() //nolint:errcheck

	prod, err := New(false)
	require.NoError(t, err)
	require.NotNil(t, prod)
	defer prod.Sync() //nolint:errcheck
}

func TestForAttachesComponentField(t *testing.T) {
	root := Noop()
	child := For(root, CategoryKnowledge)
	assert.NotNil(t, child)
}
