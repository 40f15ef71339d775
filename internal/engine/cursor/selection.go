package cursor

import (
	"fmt"

	"github.com/dshills/dabbrev/internal/engine/buffer"
)

// Point is an alias for buffer.Point for convenience.
type Point = buffer.Point

// Selection represents a range of selected text.
// Anchor is where the selection started; Head is the current cursor position.
// When Anchor == Head, this represents a cursor with no selection.
// Selection is an immutable value type.
type Selection struct {
	Anchor Point // Where selection started
	Head   Point // Current cursor position (where typing occurs)
}

// NewSelection creates a selection from anchor to head.
func NewSelection(anchor, head Point) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// NewCursorSelection creates a selection representing just a cursor (no extent).
func NewCursorSelection(p Point) Selection {
	return Selection{Anchor: p, Head: p}
}

// LineSelection selects a whole line: anchor at column 0, head at the end
// of the line's content.
func LineSelection(line uint32, lineLen int) Selection {
	if lineLen < 0 {
		lineLen = 0
	}
	return Selection{
		Anchor: Point{Line: line, Column: 0},
		Head:   Point{Line: line, Column: uint32(lineLen)},
	}
}

// IsEmpty returns true if the selection has no extent (just a cursor).
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Start returns the lower bound of the selection.
func (s Selection) Start() Point {
	if s.Anchor.Compare(s.Head) <= 0 {
		return s.Anchor
	}
	return s.Head
}

// End returns the upper bound of the selection.
func (s Selection) End() Point {
	if s.Anchor.Compare(s.Head) >= 0 {
		return s.Anchor
	}
	return s.Head
}

// Cursor returns the head position (where typing would occur).
func (s Selection) Cursor() Point {
	return s.Head
}

// IsBackward returns true if the selection extends backward (head < anchor).
func (s Selection) IsBackward() bool {
	return s.Head.Before(s.Anchor)
}

// MoveTo returns a new collapsed selection (cursor) at the given point.
func (s Selection) MoveTo(p Point) Selection {
	return Selection{Anchor: p, Head: p}
}

// Extend returns a new selection extended to the given point.
// The anchor remains fixed; only the head moves.
func (s Selection) Extend(p Point) Selection {
	return Selection{Anchor: s.Anchor, Head: p}
}

// Collapse collapses the selection to a cursor at the head.
func (s Selection) Collapse() Selection {
	return Selection{Anchor: s.Head, Head: s.Head}
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Cursor%s", s.Head)
	}
	dir := "→"
	if s.IsBackward() {
		dir = "←"
	}
	return fmt.Sprintf("Selection%s%s%s", s.Anchor, dir, s.Head)
}
