package app

import (
	"context"

	"github.com/dshills/dabbrev/internal/config"
	"github.com/dshills/dabbrev/internal/event"
	"github.com/dshills/dabbrev/internal/renderer"
	"github.com/dshills/dabbrev/internal/renderer/backend"
)

// handleConfigReload re-applies the settings that can change at runtime
// and announces the reload on the bus. A keymap that fails to parse is
// reported and the previous bindings stay active.
func (app *Application) handleConfigReload(c *config.Config, path string) {
	app.applyLogging()
	app.workspace.SetTabWidth(c.Editor().TabWidth)

	if km, err := app.buildKeymap(); err != nil {
		app.log.WithError(err).Warn("keeping previous keymap")
	} else {
		app.mu.Lock()
		app.keymap = km
		app.mu.Unlock()
	}

	app.mu.RLock()
	r := app.renderer
	app.mu.RUnlock()
	if r != nil {
		r.SetOptions(app.rendererOptions())
	}

	ev := event.NewEvent(event.TopicConfigReloaded, event.ConfigReloaded{Path: path}, "app")
	if err := event.Publish(context.Background(), app.bus, ev); err != nil {
		app.log.WithError(err).Warn("publishing config reload")
	}

	if app.running.Load() && app.backend != nil {
		app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	}
	app.log.Debug("applied configuration from %s", c.Path())
}

func (app *Application) rendererOptions() renderer.Options {
	return renderer.Options{
		TabWidth:        app.config.Editor().TabWidth,
		ShowLineNumbers: app.config.View().LineNumbers,
	}
}
