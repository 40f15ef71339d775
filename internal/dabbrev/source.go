package dabbrev

import (
	"context"

	"github.com/dshills/dabbrev/internal/engine/buffer"
)

// Point is a zero-based line/column position.
type Point = buffer.Point

// TextSource is the editor-side view the engine reads and edits through.
type TextSource interface {
	// ActivePosition returns the primary cursor position.
	ActivePosition() Point

	// LineText returns the content of line without its terminator.
	LineText(line uint32) string

	// Text returns the full document text.
	Text() string

	// Version returns the document revision. It increases on every edit.
	Version() buffer.RevisionID

	// PositionAt converts a byte offset in Text into a position.
	PositionAt(offset buffer.ByteOffset) Point

	// OffsetAt converts a position into a byte offset in Text.
	OffsetAt(p Point) buffer.ByteOffset

	// ApplyReplacement replaces [Start, End) with Text as one edit and
	// returns once the edit has been applied.
	ApplyReplacement(ctx context.Context, r Replacement) (ReplacementResult, error)
}

// Notifier shows informational messages to the user.
type Notifier interface {
	Notify(message string)
}

// Replacement is a single-range text substitution.
type Replacement struct {
	Start Point
	End   Point
	Text  string
}

// ReplacementResult is the host's answer to ApplyReplacement.
type ReplacementResult struct {
	// Version is the document revision after the edit.
	Version buffer.RevisionID

	// End is the position just past the inserted text.
	End Point
}
