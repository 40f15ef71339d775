// Package cursor provides selection values for text editing.
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started
//   - Head: The current cursor position (where typing would occur)
//
// When Anchor == Head, the selection represents just a cursor with no
// selected text. The selection can extend forward (head > anchor) or
// backward (head < anchor), preserving the user's selection direction.
//
// Positions are buffer.Point values so that hosts speaking line/column
// (status lines, scripts, selection events) never convert back and forth.
//
// Basic usage:
//
//	sel := cursor.NewCursorSelection(buffer.Point{Line: 2, Column: 4})
//	line := cursor.LineSelection(2, 17) // (2:0) -> (2:17)
package cursor
