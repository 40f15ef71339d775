// Package workspace holds the open documents, the editors showing them,
// and the user-facing message line.
package workspace

import (
	"slices"
	"sync"

	"github.com/dshills/dabbrev/internal/engine/buffer"
	"github.com/dshills/dabbrev/internal/event"
	"github.com/dshills/dabbrev/internal/logger"
)

// MsgNoOtherEditor is shown when no second visible editor exists.
const MsgNoOtherEditor = "No other visible editor found"

const defaultMessageLimit = 100

// Option configures a Workspace.
type Option func(*Workspace)

// WithViewSize sets the viewport size of new editors.
func WithViewSize(width, height int) Option {
	return func(w *Workspace) {
		w.viewWidth, w.viewHeight = width, height
	}
}

// WithBufferOptions applies opts to every document the workspace creates.
func WithBufferOptions(opts ...buffer.Option) Option {
	return func(w *Workspace) {
		w.bufferOpts = append(w.bufferOpts, opts...)
	}
}

// WithUndoLimit bounds the undo history of every document the workspace
// creates.
func WithUndoLimit(n int) Option {
	return func(w *Workspace) {
		w.undoLimit = n
	}
}

// WithLogger sets the workspace logger.
func WithLogger(l *logger.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.log = l
		}
	}
}

// Workspace tracks editors in open order, which of them are visible, and
// which one has focus.
type Workspace struct {
	mu      sync.RWMutex
	editors []*Editor
	visible map[string]bool
	active  *Editor

	messages []string
	onNotify []func(string)

	bus        *event.Bus
	log        *logger.Logger
	viewWidth  int
	viewHeight int
	bufferOpts []buffer.Option
	undoLimit  int
}

// New creates an empty workspace publishing on bus.
func New(bus *event.Bus, opts ...Option) *Workspace {
	w := &Workspace{
		visible:    make(map[string]bool),
		bus:        bus,
		log:        logger.Null(),
		viewWidth:  80,
		viewHeight: 24,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("workspace")
	return w
}

// Open loads path into a new document and opens a focused editor on it.
func (w *Workspace) Open(path string) (*Editor, error) {
	doc, err := LoadDocument(path, w.documentOptions()...)
	if err != nil {
		return nil, err
	}
	w.log.Info("opened %s", doc.Path)
	return w.Show(doc), nil
}

// OpenText opens a focused editor on a scratch document holding text.
func (w *Workspace) OpenText(text string) *Editor {
	return w.Show(NewDocument("", text, w.documentOptions()...))
}

func (w *Workspace) documentOptions() []buffer.Option {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.bufferOpts)
}

// SetTabWidth changes the tab width of every open document and of the
// documents opened later. Widths below 1 are ignored.
func (w *Workspace) SetTabWidth(width int) {
	if width < 1 {
		return
	}
	w.mu.Lock()
	w.bufferOpts = append(w.bufferOpts, buffer.WithTabWidth(width))
	editors := slices.Clone(w.editors)
	w.mu.Unlock()

	for _, ed := range editors {
		ed.doc.buf.SetTabWidth(width)
	}
}

// Show opens a new visible, focused editor on doc. Several editors may
// show the same document.
func (w *Workspace) Show(doc *Document) *Editor {
	if w.undoLimit > 0 {
		doc.hist.SetMaxEntries(w.undoLimit)
	}
	ed := newEditor(doc, w.bus, w.log, w.viewWidth, w.viewHeight)

	w.mu.Lock()
	w.editors = append(w.editors, ed)
	w.visible[ed.ID] = true
	w.active = ed
	w.mu.Unlock()
	return ed
}

// Active returns the focused editor, or nil.
func (w *Workspace) Active() *Editor {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.active
}

// SetActive focuses the editor with the given ID and makes it visible.
func (w *Workspace) SetActive(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ed := w.find(id)
	if ed == nil {
		return ErrEditorNotFound
	}
	w.active = ed
	w.visible[id] = true
	return nil
}

// Editor returns the editor with the given ID.
func (w *Workspace) Editor(id string) (*Editor, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ed := w.find(id)
	return ed, ed != nil
}

func (w *Workspace) find(id string) *Editor {
	for _, ed := range w.editors {
		if ed.ID == id {
			return ed
		}
	}
	return nil
}

// Editors returns all editors in open order.
func (w *Workspace) Editors() []*Editor {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]*Editor(nil), w.editors...)
}

// SetVisible shows or hides an editor.
func (w *Workspace) SetVisible(id string, visible bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.find(id) == nil {
		return ErrEditorNotFound
	}
	if visible {
		w.visible[id] = true
	} else {
		delete(w.visible, id)
	}
	return nil
}

// VisibleEditors returns the visible editors in open order.
func (w *Workspace) VisibleEditors() []*Editor {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []*Editor
	for _, ed := range w.editors {
		if w.visible[ed.ID] {
			out = append(out, ed)
		}
	}
	return out
}

// OtherVisibleEditor returns the first visible editor that is not the
// active one.
func (w *Workspace) OtherVisibleEditor() (*Editor, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, ed := range w.editors {
		if ed != w.active && w.visible[ed.ID] {
			return ed, true
		}
	}
	return nil, false
}

// Close closes an editor. Focus moves to the most recently opened
// remaining editor.
func (w *Workspace) Close(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, ed := range w.editors {
		if ed.ID != id {
			continue
		}
		ed.closed.Store(true)
		w.editors = append(w.editors[:i], w.editors[i+1:]...)
		delete(w.visible, id)
		if w.active == ed {
			w.active = nil
			if n := len(w.editors); n > 0 {
				w.active = w.editors[n-1]
			}
		}
		return nil
	}
	return ErrEditorNotFound
}

// Notify records an informational message and forwards it to listeners.
func (w *Workspace) Notify(msg string) {
	w.mu.Lock()
	w.messages = append(w.messages, msg)
	if over := len(w.messages) - defaultMessageLimit; over > 0 {
		w.messages = append(w.messages[:0], w.messages[over:]...)
	}
	listeners := slices.Clone(w.onNotify)
	w.mu.Unlock()

	w.log.Info("message: %s", msg)
	for _, fn := range listeners {
		fn(msg)
	}
}

// OnNotify registers fn to receive every message.
func (w *Workspace) OnNotify(fn func(string)) {
	w.mu.Lock()
	w.onNotify = append(w.onNotify, fn)
	w.mu.Unlock()
}

// Messages returns the recorded messages, oldest first.
func (w *Workspace) Messages() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.messages...)
}

// LastMessage returns the most recent message, or "".
func (w *Workspace) LastMessage() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.messages) == 0 {
		return ""
	}
	return w.messages[len(w.messages)-1]
}
