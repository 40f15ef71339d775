package app

import (
	"context"
	"errors"

	"github.com/dshills/dabbrev/internal/dispatcher/handler"
	cursorhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/cursor"
	editorhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/editor"
	"github.com/dshills/dabbrev/internal/plugin/lua"
)

// ScriptHost adapts the application to lua.Host. Every edit a script
// makes goes through the dispatcher, so scripts see the same results and
// expansion sessions as key presses.
type ScriptHost struct {
	app *Application
}

var _ lua.Host = (*ScriptHost)(nil)

// ScriptHost returns a host for scripts acting on the active editor.
func (app *Application) ScriptHost() *ScriptHost {
	return &ScriptHost{app: app}
}

// NewScriptRunner creates a sandboxed Lua runner bound to the application.
func (app *Application) NewScriptRunner(opts ...lua.StateOption) *lua.Runner {
	return lua.NewRunner(app.ScriptHost(), opts...)
}

func (h *ScriptHost) Text() (string, error) {
	ed := h.app.workspace.Active()
	if ed == nil {
		return "", ErrNoActiveEditor
	}
	return ed.Text(), nil
}

func (h *ScriptHost) Cursor() (line, col int, err error) {
	ed := h.app.workspace.Active()
	if ed == nil {
		return 0, 0, ErrNoActiveEditor
	}
	p := ed.ActivePosition()
	return int(p.Line), int(p.Column), nil
}

func (h *ScriptHost) Move(ctx context.Context, line, col int) error {
	res := h.app.Dispatch(ctx, handler.NewAction(cursorhandler.ActionMoveTo).
		WithArg(cursorhandler.ArgLine, line).
		WithArg(cursorhandler.ArgCol, col))
	return resultErr(res)
}

func (h *ScriptHost) Insert(ctx context.Context, text string) error {
	res := h.app.Dispatch(ctx, handler.NewAction(editorhandler.ActionInsert).
		WithArg(editorhandler.ArgText, text))
	return resultErr(res)
}

// Exec dispatches command with args. A numeric "count" argument becomes
// the repeat count.
func (h *ScriptHost) Exec(ctx context.Context, command string, args map[string]any) (lua.ExecResult, error) {
	action := handler.NewAction(command)
	for k, v := range args {
		action = action.WithArg(k, v)
	}
	if n, ok := action.ArgInt("count"); ok && n > 0 {
		action.Count = n
	}

	res := h.app.Dispatch(ctx, action)
	out := lua.ExecResult{
		Status:  res.Status.String(),
		Message: res.Message,
		Data:    res.Data,
	}
	if res.IsError() && out.Message == "" && res.Error != nil {
		out.Message = res.Error.Error()
	}
	return out, nil
}

func (h *ScriptHost) Messages() []string {
	return h.app.workspace.Messages()
}

func resultErr(res handler.Result) error {
	if !res.IsError() {
		return nil
	}
	if res.Error != nil {
		return res.Error
	}
	return errors.New(res.Message)
}
