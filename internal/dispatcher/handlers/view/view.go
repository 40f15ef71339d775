package view

import (
	"github.com/dshills/dabbrev/internal/dispatcher/execctx"
	"github.com/dshills/dabbrev/internal/dispatcher/handler"
	"github.com/dshills/dabbrev/internal/workspace"
)

// Action names for view operations.
const (
	ActionCenterCursor      = "view.centerCursor"      // zz - center view on cursor
	ActionCenterOtherEditor = "view.centerOtherEditor" // center the other window
)

// Handler implements namespace-based view handling.
type Handler struct{}

// NewHandler creates a new view handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Namespace returns the view namespace.
func (h *Handler) Namespace() string {
	return "view"
}

// CanHandle returns true if this handler can process the action.
func (h *Handler) CanHandle(actionName string) bool {
	switch actionName {
	case ActionCenterCursor, ActionCenterOtherEditor:
		return true
	}
	return false
}

// HandleAction processes a view action.
func (h *Handler) HandleAction(action handler.Action, ctx *execctx.ExecutionContext) handler.Result {
	switch action.Name {
	case ActionCenterCursor:
		return h.centerCursor(ctx)
	case ActionCenterOtherEditor:
		return h.centerOtherEditor(ctx)
	default:
		return handler.Errorf("unknown view action: %s", action.Name)
	}
}

// centerCursor centers the active viewport on the cursor line.
func (h *Handler) centerCursor(ctx *execctx.ExecutionContext) handler.Result {
	if ctx.Editor == nil {
		return handler.NoOp()
	}
	ctx.Editor.CenterCursor()
	return handler.Success().WithData("topLine", int(ctx.Editor.View().TopLine()))
}

// centerOtherEditor centers the first visible editor that is not active.
func (h *Handler) centerOtherEditor(ctx *execctx.ExecutionContext) handler.Result {
	if ctx.Workspace == nil {
		return handler.Error(execctx.ErrMissingWorkspace)
	}
	other, ok := ctx.Workspace.OtherVisibleEditor()
	if !ok {
		ctx.Notify(workspace.MsgNoOtherEditor)
		return handler.NoOpWithMessage(workspace.MsgNoOtherEditor)
	}
	other.CenterCursor()
	return handler.Success().
		WithData("editor", other.ID).
		WithData("topLine", int(other.View().TopLine()))
}
