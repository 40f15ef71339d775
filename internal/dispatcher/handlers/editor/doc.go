// Package editor provides handlers for text editing operations.
//
// The Handler type provides:
//   - editor.insert: insert the "text" argument at the cursor, replacing
//     the selection, [count] times
//   - editor.backspace: delete the selection or the character before the
//     cursor, joining lines at column 0
//   - editor.newline: insert the document's line ending
//   - editor.save: write the document to its path
//   - editor.undo, editor.redo: walk the document history [count] steps
//
// A repeated edit is recorded as one undo unit.
package editor
