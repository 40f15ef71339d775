package app

import (
	"context"
	"errors"

	"github.com/dshills/dabbrev/internal/dispatcher/handler"
	editorhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/editor"
	"github.com/dshills/dabbrev/internal/input/key"
	"github.com/dshills/dabbrev/internal/input/keymap"
	"github.com/dshills/dabbrev/internal/renderer"
	"github.com/dshills/dabbrev/internal/renderer/backend"
)

// Run starts the terminal editor and blocks until the user quits or ctx
// is cancelled. A scratch editor is opened when no file is open.
func (app *Application) Run(ctx context.Context) error {
	if app.backend == nil {
		return ErrNoBackend
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	defer app.backend.Shutdown()

	r := renderer.New(app.backend, app.rendererOptions())
	app.mu.Lock()
	app.renderer = r
	app.mu.Unlock()

	if app.workspace.Active() == nil {
		app.OpenText("")
	}
	app.workspace.OnNotify(app.setStatus)

	stop := context.AfterFunc(ctx, func() {
		app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	})
	defer stop()

	app.log.Info("terminal editor started")
	app.draw()
	for {
		ev := app.backend.PollEvent()
		if ctx.Err() != nil {
			return nil
		}
		if err := app.handleBackendEvent(ctx, ev); err != nil {
			if errors.Is(err, ErrQuit) {
				app.log.Info("terminal editor stopped")
				return nil
			}
			return err
		}
		app.draw()
	}
}

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ctx context.Context, ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		app.mu.RLock()
		r := app.renderer
		app.mu.RUnlock()
		if r != nil {
			r.Resize(ev.Width, ev.Height)
		}
		return nil
	case backend.EventKey:
		return app.handleKeyEvent(ctx, ev)
	default:
		return nil
	}
}

// handleKeyEvent looks the key up in the keymap and dispatches the bound
// action. Unbound printable keys are inserted.
func (app *Application) handleKeyEvent(ctx context.Context, ev backend.Event) error {
	spec, ok := key.FromEvent(ev)
	if !ok {
		return nil
	}
	app.setStatus("")

	var action handler.Action
	if b, bound := app.Keymap().Lookup(spec); bound {
		if b.Action == keymap.ActionQuit {
			return ErrQuit
		}
		action = handler.NewAction(b.Action)
	} else {
		text, insertable := insertText(spec)
		if !insertable {
			app.log.Debug("unbound key %s", spec)
			return nil
		}
		action = handler.NewAction(editorhandler.ActionInsert).WithArg(editorhandler.ArgText, text)
	}

	res := app.dispatcher.Dispatch(ctx, action)
	switch {
	case res.IsError() && res.Error != nil:
		app.setStatus(res.Error.Error())
	case res.Message != "" && app.currentStatus() == "":
		app.setStatus(res.Message)
	}
	return nil
}

// insertText returns the text typed by an unmodified rune or tab key.
func insertText(spec key.Spec) (string, bool) {
	switch {
	case spec.Modifiers != key.ModNone:
		return "", false
	case spec.Name == "tab":
		return "\t", true
	case spec.Name == "" && spec.Rune != 0:
		return string(spec.Rune), true
	}
	return "", false
}

func (app *Application) setStatus(msg string) {
	app.mu.Lock()
	app.status = msg
	app.mu.Unlock()
}

func (app *Application) currentStatus() string {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.status
}

// draw renders the active editor.
func (app *Application) draw() {
	app.mu.RLock()
	r := app.renderer
	status := app.status
	app.mu.RUnlock()
	if r == nil {
		return
	}

	ed := app.workspace.Active()
	if ed == nil {
		r.Render(nil, renderer.Status{Message: status})
		return
	}
	r.Render(ed, renderer.Status{Title: ed.Title(), Message: status})
}
