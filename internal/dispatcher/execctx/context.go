// Package execctx provides the execution context for action handlers.
package execctx

import (
	"context"

	"github.com/dshills/dabbrev/internal/dabbrev"
	"github.com/dshills/dabbrev/internal/logger"
	"github.com/dshills/dabbrev/internal/workspace"
)

// Expander runs word expansion for one editor.
type Expander interface {
	Expand(ctx context.Context) dabbrev.Result
}

// ExpanderLookup returns the expander serving an editor.
type ExpanderLookup func(editorID string) (Expander, bool)

// ExecutionContext provides what a handler needs to run one action.
type ExecutionContext struct {
	// Context bounds blocking work such as edits.
	Context context.Context

	// Workspace holds every editor.
	Workspace *workspace.Workspace

	// Editor is the active editor when the action was dispatched.
	Editor *workspace.Editor

	// Expanders finds the expansion engine of an editor.
	Expanders ExpanderLookup

	// Logger is scoped to the action being run.
	Logger *logger.Logger

	// Count is the repeat count (1 if not specified).
	Count int
}

// New creates an execution context with a background context and a
// count of 1.
func New() *ExecutionContext {
	return &ExecutionContext{
		Context: context.Background(),
		Logger:  logger.Null(),
		Count:   1,
	}
}

// GetCount returns the repeat count, minimum 1.
func (c *ExecutionContext) GetCount() int {
	if c.Count < 1 {
		return 1
	}
	return c.Count
}

// RequireEditor returns the active editor or ErrMissingEditor.
func (c *ExecutionContext) RequireEditor() (*workspace.Editor, error) {
	if c.Editor == nil {
		return nil, ErrMissingEditor
	}
	return c.Editor, nil
}

// Expander returns the expander for the active editor.
func (c *ExecutionContext) Expander() (Expander, error) {
	ed, err := c.RequireEditor()
	if err != nil {
		return nil, err
	}
	if c.Expanders == nil {
		return nil, ErrMissingExpander
	}
	exp, ok := c.Expanders(ed.ID)
	if !ok {
		return nil, ErrMissingExpander
	}
	return exp, nil
}

// Notify shows msg through the workspace, if any.
func (c *ExecutionContext) Notify(msg string) {
	if c.Workspace != nil {
		c.Workspace.Notify(msg)
	}
}
