// Package dispatcher routes named actions to handlers and runs them.
//
// Actions are dotted names such as "emacs.dabbrevExpand" or
// "view.centerCursor". The dispatcher first asks the namespace router
// (keyed by the text before the first dot) and then the exact-name
// registry for a handler, builds an ExecutionContext holding the
// workspace, the active editor and the expander lookup, and runs the
// handler with panic recovery. Handlers run one at a time.
//
// Handlers live in the handlers/ subpackages:
//
//	handlers/emacs   emacs.dabbrevExpand, emacs.selectLine
//	handlers/view    view.centerCursor, view.centerOtherEditor
//	handlers/cursor  cursor.moveLeft, cursor.moveTo, ...
//	handlers/editor  editor.insert, editor.backspace, editor.newline, editor.save
package dispatcher
