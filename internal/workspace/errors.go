package workspace

import "github.com/cockroachdb/errors"

// Workspace errors.
var (
	// ErrEditorClosed is returned by edits on an editor that was closed.
	ErrEditorClosed = errors.New("editor closed")

	// ErrEditorNotFound indicates no editor has the given ID.
	ErrEditorNotFound = errors.New("editor not found")

	// ErrNoActiveEditor indicates no editor is currently active.
	ErrNoActiveEditor = errors.New("no active editor")

	// ErrScratchDocument is returned when saving a document with no path.
	ErrScratchDocument = errors.New("document has no file path")
)
