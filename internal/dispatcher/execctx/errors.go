package execctx

import "errors"

// Execution context errors.
var (
	// ErrMissingWorkspace indicates the workspace is required but not set.
	ErrMissingWorkspace = errors.New("execution context: workspace is required")

	// ErrMissingEditor indicates an active editor is required but none exists.
	ErrMissingEditor = errors.New("execution context: editor is required")

	// ErrMissingExpander indicates no expansion engine serves the editor.
	ErrMissingExpander = errors.New("execution context: expander is required")
)
