package editor

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/dshills/dabbrev/internal/dispatcher/execctx"
	"github.com/dshills/dabbrev/internal/dispatcher/handler"
	"github.com/dshills/dabbrev/internal/engine/history"
	"github.com/dshills/dabbrev/internal/workspace"
)

// Action names for edit operations.
const (
	ActionInsert    = "editor.insert"
	ActionBackspace = "editor.backspace"
	ActionNewline   = "editor.newline"
	ActionSave      = "editor.save"
	ActionUndo      = "editor.undo"
	ActionRedo      = "editor.redo"
)

// Messages shown when history is exhausted.
const (
	MsgNothingToUndo = "Nothing to undo"
	MsgNothingToRedo = "Nothing to redo"
)

// ArgText is the text argument of editor.insert.
const ArgText = "text"

// Handler implements namespace-based edit handling.
type Handler struct{}

// NewHandler creates a new editor handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Namespace returns the editor namespace.
func (h *Handler) Namespace() string {
	return "editor"
}

// CanHandle returns true if this handler can process the action.
func (h *Handler) CanHandle(actionName string) bool {
	switch actionName {
	case ActionInsert, ActionBackspace, ActionNewline, ActionSave, ActionUndo, ActionRedo:
		return true
	}
	return false
}

// HandleAction processes an edit action.
func (h *Handler) HandleAction(action handler.Action, ctx *execctx.ExecutionContext) handler.Result {
	ed, err := ctx.RequireEditor()
	if err != nil {
		return handler.Error(err)
	}

	switch action.Name {
	case ActionInsert:
		return h.insert(ctx, ed, action.ArgString(ArgText))
	case ActionBackspace:
		return h.edit(ctx, ed, ed.Backspace)
	case ActionNewline:
		return h.edit(ctx, ed, ed.Newline)
	case ActionSave:
		return h.save(ed)
	case ActionUndo:
		return h.walkHistory(ctx, ed.Undo, history.ErrNothingToUndo, MsgNothingToUndo)
	case ActionRedo:
		return h.walkHistory(ctx, ed.Redo, history.ErrNothingToRedo, MsgNothingToRedo)
	default:
		return handler.Errorf("unknown editor action: %s", action.Name)
	}
}

func (h *Handler) insert(ctx *execctx.ExecutionContext, ed *workspace.Editor, text string) handler.Result {
	if text == "" {
		return handler.NoOp()
	}
	defer group(ed, ctx.GetCount(), ActionInsert)()
	for range ctx.GetCount() {
		if err := ed.Insert(ctx.Context, text); err != nil {
			return handler.Error(err)
		}
	}
	return handler.Success()
}

func (h *Handler) edit(ctx *execctx.ExecutionContext, ed *workspace.Editor, op func(context.Context) error) handler.Result {
	before := ed.Version()
	defer group(ed, ctx.GetCount(), "edit")()
	for range ctx.GetCount() {
		if err := op(ctx.Context); err != nil {
			return handler.Error(err)
		}
	}
	if ed.Version() == before {
		return handler.NoOp()
	}
	return handler.Success()
}

func (h *Handler) save(ed *workspace.Editor) handler.Result {
	if err := ed.Document().Save(); err != nil {
		return handler.Error(err)
	}
	return handler.SuccessWithMessage("Wrote " + ed.Document().Path)
}

// walkHistory walks the undo history count steps. Running out after at least
// one step is not an error.
func (h *Handler) walkHistory(ctx *execctx.ExecutionContext, step func(context.Context) error, exhausted error, msg string) handler.Result {
	done := 0
	for range ctx.GetCount() {
		err := step(ctx.Context)
		if errors.Is(err, exhausted) {
			break
		}
		if err != nil {
			return handler.Error(err)
		}
		done++
	}
	if done == 0 {
		return handler.NoOpWithMessage(msg)
	}
	return handler.Success().WithData("steps", done)
}

// group makes a repeated edit a single undo unit. The returned func closes
// the group.
func group(ed *workspace.Editor, count int, name string) func() {
	if count < 2 {
		return func() {}
	}
	hist := ed.Document().History()
	hist.BeginGroup(name)
	return hist.EndGroup
}
