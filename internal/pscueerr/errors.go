// Package pscueerr defines the small, closed taxonomy of error classes the
// rest of PSCue uses to decide how to react to a failure, per the
// propagation policy described in spec section 7. Core components never let
// an error escape into the host shell's hot prediction path: every
// recoverable class here is meant to be absorbed by its caller, not
// surfaced to the user.
package pscueerr

import "errors"

// Class identifies which of the taxonomy buckets an error belongs to.
type Class int

const (
	// ClassInputRejected means the privacy filter blocked a command line or
	// the token parser could not parse it. Learning does not occur; this is
	// never logged as an error.
	ClassInputRejected Class = iota
	// ClassTransientStore means the backing store is busy or locked and the
	// operation should be retried with backoff.
	ClassTransientStore
	// ClassFatalStore means the backing store is corrupt or unreachable;
	// the caller should degrade to in-memory-only operation.
	ClassFatalStore
	// ClassFilesystemBenign means a filesystem operation hit a permission
	// error or a missing path; the caller should skip and continue.
	ClassFilesystemBenign
	// ClassInvariant means an internal consistency check failed (for
	// example, a baseline was not set after a load). It is logged loudly
	// but the process keeps running.
	ClassInvariant
)

func (c Class) String() string {
	switch c {
	case ClassInputRejected:
		return "input_rejected"
	case ClassTransientStore:
		return "transient_store"
	case ClassFatalStore:
		return "fatal_store"
	case ClassFilesystemBenign:
		return "filesystem_benign"
	case ClassInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a taxonomy class.
type Error struct {
	Class Class
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Class.String()
	}
	return e.Op + ": " + e.Class.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a classified error.
func New(class Class, op string, err error) *Error {
	return &Error{Class: class, Op: op, Err: err}
}

// Is reports whether err (or anything it wraps) belongs to class.
func Is(err error, class Class) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Class == class
	}
	return false
}

// ErrUnterminatedQuote is returned by the token parser on an unclosed quote
// (spec section 4.1). Callers treat this the same as any other
// ClassInputRejected error: do not learn.
var ErrUnterminatedQuote = New(ClassInputRejected, "token.Parse", errors.New("unterminated quote"))
