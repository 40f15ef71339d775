package history

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/dshills/dabbrev/internal/engine/buffer"
	"github.com/dshills/dabbrev/internal/engine/cursor"
)

// DefaultMaxEntries bounds the undo stack when no limit is given.
const DefaultMaxEntries = 1000

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Applier applies one edit and positions the selection. The editor
// implements it so replays publish events like any other edit.
type Applier func(edit buffer.Edit, sel cursor.Selection) error

// entry is one undo unit: operations in the order they were applied.
type entry struct {
	name string
	ops  []*Operation
}

func (e *entry) info() OperationInfo {
	desc := e.name
	if desc == "" {
		parts := make([]string, len(e.ops))
		for i, op := range e.ops {
			parts[i] = op.Description()
		}
		desc = strings.Join(parts, ", ")
	}
	return OperationInfo{Description: desc, Timestamp: e.ops[0].Timestamp}
}

// History manages undo/redo state for a buffer.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	// Grouping state
	grouping int
	group    *entry

	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Record adds op to the undo stack and clears the redo stack. Inside a
// group the operation joins the group instead.
func (h *History) Record(op *Operation) {
	if op == nil || op.IsNoop() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping > 0 {
		h.group.ops = append(h.group.ops, op)
		return
	}
	h.pushLocked(&entry{ops: []*Operation{op}})
}

// pushLocked adds an entry without acquiring the lock.
func (h *History) pushLocked(e *entry) {
	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil

	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts the last undo unit through apply.
// The lock is released while applying so apply may publish events whose
// subscribers read the history.
func (h *History) Undo(apply Applier) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	for i := len(e.ops) - 1; i >= 0; i-- {
		inv := e.ops[i].Invert()
		if err := apply(inv.Edit(), inv.SelectionAfter); err != nil {
			// Restore entry on failure
			h.mu.Lock()
			h.undoStack = append(h.undoStack, e)
			h.mu.Unlock()
			return errors.Wrap(err, "undo")
		}
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, e)
	h.mu.Unlock()
	return nil
}

// Redo re-applies the last undone unit through apply.
func (h *History) Redo(apply Applier) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	for _, op := range e.ops {
		if err := apply(op.Edit(), op.SelectionAfter); err != nil {
			h.mu.Lock()
			h.redoStack = append(h.redoStack, e)
			h.mu.Unlock()
			return errors.Wrap(err, "redo")
		}
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, e)
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo units available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo units available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts an undo unit. Groups nest; only the outermost name is
// kept and the unit closes with the matching outermost EndGroup.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping++
	if h.grouping == 1 {
		h.group = &entry{name: name}
	}
}

// EndGroup closes the current group. An empty group leaves no entry.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping == 0 {
		return
	}
	h.grouping--
	if h.grouping > 0 {
		return
	}

	g := h.group
	h.group = nil
	if len(g.ops) > 0 {
		h.pushLocked(g)
	}
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = 0
	h.group = nil
}

// PeekUndo returns info about the next undo unit without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo unit without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the maximum number of undo units.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	if excess := len(h.undoStack) - max; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo units.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
