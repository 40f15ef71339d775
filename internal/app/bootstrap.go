package app

import (
	"context"
	"os"

	"github.com/VictoriaMetrics/metrics"

	"github.com/dshills/dabbrev/internal/config"
	"github.com/dshills/dabbrev/internal/dabbrev"
	"github.com/dshills/dabbrev/internal/dispatcher"
	cursorhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/cursor"
	editorhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/editor"
	"github.com/dshills/dabbrev/internal/dispatcher/handlers/emacs"
	viewhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/view"
	"github.com/dshills/dabbrev/internal/event"
	"github.com/dshills/dabbrev/internal/input/keymap"
	"github.com/dshills/dabbrev/internal/logger"
	"github.com/dshills/dabbrev/internal/workspace"
)

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap(ctx context.Context) error {
	// 1. Logger - configured from defaults until the config is loaded
	out := app.opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	app.log = logger.New(logger.Config{Level: logger.LevelInfo, Output: out, Prefix: "dabbrev"})

	// 2. Config System
	configOpts := []config.Option{
		config.WithPath(app.opts.ConfigPath),
		config.WithWatcher(app.opts.WatchConfig),
		config.WithLogger(app.log),
	}
	if app.opts.EnvPrefix != "" {
		configOpts = append(configOpts, config.WithEnvPrefix(app.opts.EnvPrefix))
	}
	app.config = config.New(configOpts...)
	if err := app.config.Load(ctx); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.applyLogging()

	// 3. Metrics and Event Bus
	app.metrics = metrics.NewSet()
	app.bus = event.NewBus(app.log)

	// 4. Workspace
	view := app.config.View()
	app.workspace = workspace.New(app.bus,
		workspace.WithViewSize(view.Width, view.Height),
		workspace.WithBufferOptions(app.config.Editor().BufferOptions()...),
		workspace.WithUndoLimit(app.config.Editor().UndoLevels),
		workspace.WithLogger(app.log),
	)

	// 5. Expansion engines, one per editor
	var expandMetrics *dabbrev.Metrics
	if app.config.Dabbrev().Metrics {
		expandMetrics = dabbrev.NewMetrics(app.metrics)
	}
	app.engines = newEngineRegistry(app.workspace, expandMetrics, app.log)
	sub, err := event.SubscribeTo(app.bus, event.TopicSelectionChanged, app.engines.onSelectionChanged)
	if err != nil {
		return &InitError{Component: "event subscriptions", Err: err}
	}
	app.subscriptions = append(app.subscriptions, sub)

	// 6. Dispatcher
	app.dispatcher = dispatcher.New(dispatcher.DefaultConfig(),
		dispatcher.WithWorkspace(app.workspace),
		dispatcher.WithExpanders(app.engines.lookup),
		dispatcher.WithLogger(app.log),
		dispatcher.WithMetrics(app.metrics),
	)
	app.registerHandlers()

	// 7. Keymap
	km, err := app.buildKeymap()
	if err != nil {
		return &InitError{Component: "keymap", Err: err}
	}
	app.keymap = km

	app.config.OnReload(app.handleConfigReload)

	// 8. Open initial files
	for _, file := range app.opts.Files {
		if _, err := app.Open(file); err != nil {
			return &InitError{Component: "workspace", Err: err}
		}
	}

	return nil
}

// registerHandlers registers all standard handlers with the dispatcher.
func (app *Application) registerHandlers() {
	d := app.dispatcher
	d.RegisterNamespace(cursorhandler.NewHandler())
	d.RegisterNamespace(editorhandler.NewHandler())
	d.RegisterNamespace(viewhandler.NewHandler())
	d.RegisterNamespace(emacs.NewHandler(emacs.WithEnabled(func() bool {
		return app.config.Dabbrev().Enabled
	})))
}

// buildKeymap layers the configured bindings over the built-in ones.
func (app *Application) buildKeymap() (*keymap.Keymap, error) {
	km := keymap.Default()
	if err := km.Merge(app.config.Keymap()); err != nil {
		return nil, err
	}
	return km, nil
}

// applyLogging applies the logging section. A level given on the command
// line wins over the file.
func (app *Application) applyLogging() {
	cfg := app.config.Logging()
	level := cfg.LoggerLevel()
	if app.opts.LogLevel != "" {
		level = logger.ParseLevel(app.opts.LogLevel)
	}
	app.log.SetLevel(level)
	app.log.SetFormat(cfg.LoggerFormat())
}
