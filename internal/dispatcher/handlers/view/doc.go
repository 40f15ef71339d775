// Package view provides handlers for viewport operations.
//
//   - view.centerCursor: scroll the active editor so the cursor line is
//     in the middle of its viewport
//   - view.centerOtherEditor: do the same for the first other visible
//     editor
package view
