package cursor

import (
	"context"

	"github.com/dshills/dabbrev/internal/dispatcher/execctx"
	"github.com/dshills/dabbrev/internal/dispatcher/handler"
	"github.com/dshills/dabbrev/internal/engine/buffer"
	"github.com/dshills/dabbrev/internal/workspace"
)

// Action names for cursor movements.
const (
	ActionMoveLeft  = "cursor.moveLeft"
	ActionMoveRight = "cursor.moveRight"
	ActionMoveUp    = "cursor.moveUp"
	ActionMoveDown  = "cursor.moveDown"
	ActionMoveTo    = "cursor.moveTo"
)

// Arguments of cursor.moveTo: a 0-based line and byte column.
const (
	ArgLine = "line"
	ArgCol  = "col"
)

// Handler implements namespace-based cursor movement handling.
type Handler struct{}

// NewHandler creates a new cursor handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Namespace returns the cursor namespace.
func (h *Handler) Namespace() string {
	return "cursor"
}

// CanHandle returns true if this handler can process the action.
func (h *Handler) CanHandle(actionName string) bool {
	switch actionName {
	case ActionMoveLeft, ActionMoveRight, ActionMoveUp, ActionMoveDown, ActionMoveTo:
		return true
	}
	return false
}

// HandleAction processes a cursor action.
func (h *Handler) HandleAction(action handler.Action, ctx *execctx.ExecutionContext) handler.Result {
	ed, err := ctx.RequireEditor()
	if err != nil {
		return handler.Error(err)
	}

	switch action.Name {
	case ActionMoveLeft:
		return h.repeat(ctx, ed, ed.MoveLeft)
	case ActionMoveRight:
		return h.repeat(ctx, ed, ed.MoveRight)
	case ActionMoveUp:
		return h.repeat(ctx, ed, ed.MoveUp)
	case ActionMoveDown:
		return h.repeat(ctx, ed, ed.MoveDown)
	case ActionMoveTo:
		return h.moveTo(ctx, ed, action)
	default:
		return handler.Errorf("unknown cursor action: %s", action.Name)
	}
}

func (h *Handler) repeat(ctx *execctx.ExecutionContext, ed *workspace.Editor, move func(context.Context)) handler.Result {
	before := ed.ActivePosition()
	for range ctx.GetCount() {
		move(ctx.Context)
	}
	return result(before, ed.ActivePosition())
}

func (h *Handler) moveTo(ctx *execctx.ExecutionContext, ed *workspace.Editor, action handler.Action) handler.Result {
	line, ok := action.ArgInt(ArgLine)
	if !ok || line < 0 {
		return handler.Errorf("cursor.moveTo: missing or invalid line")
	}
	col, _ := action.ArgInt(ArgCol)
	if col < 0 {
		col = 0
	}

	before := ed.ActivePosition()
	ed.MoveTo(ctx.Context, buffer.Point{Line: uint32(line), Column: uint32(col)})
	return result(before, ed.ActivePosition())
}

func result(before, after buffer.Point) handler.Result {
	if before == after {
		return handler.NoOp().WithData("position", after.String())
	}
	return handler.Success().WithData("position", after.String())
}
