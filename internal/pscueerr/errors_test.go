package pscueerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("db is locked")
	err := New(ClassTransientStore, "store.Save", cause)

	assert.True(t, Is(err, ClassTransientStore))
	assert.False(t, Is(err, ClassFatalStore))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "transient_store")
	assert.Contains(t, err.Error(), "db is locked")
}

func TestIsFalseForPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("plain"), ClassInvariant))
}

func TestErrUnterminatedQuoteIsInputRejected(t *testing.T) {
	assert.True(t, Is(ErrUnterminatedQuote, ClassInputRejected))
}
