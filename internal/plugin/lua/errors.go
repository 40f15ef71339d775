package lua

import "github.com/cockroachdb/errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a script runs past its deadline.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNoHost is returned when the ks module has no host to act on.
	ErrNoHost = errors.New("no script host")
)
