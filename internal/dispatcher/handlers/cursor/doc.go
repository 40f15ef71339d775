// Package cursor provides handlers for cursor movement.
//
// The Handler type provides:
//   - cursor.moveLeft / cursor.moveRight: move by [count] characters,
//     wrapping across line boundaries
//   - cursor.moveUp / cursor.moveDown: move by [count] lines
//   - cursor.moveTo: jump to the "line" and "col" arguments (0-based)
//
// Every move collapses the selection and publishes a selection change.
package cursor
