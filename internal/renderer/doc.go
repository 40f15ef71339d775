// Package renderer draws the active editor and a status line onto a
// terminal backend.
//
// The renderer follows a layered design:
//
//	┌─────────────────────────────────────────┐
//	│           Renderer                      │
//	├─────────────────────────────────────────┤
//	│  Viewport (per editor scrolling)        │
//	├─────────────────────────────────────────┤
//	│  Backend (tcell terminal)               │
//	└─────────────────────────────────────────┘
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	r := renderer.New(term, renderer.DefaultOptions())
//	r.Render(editor, renderer.Status{Title: editor.Title()})
package renderer
