// Package app provides the main application structure and coordination
// for dabbrev. It wires together the configuration, the workspace, the
// per-editor expansion engines and the dispatcher, and runs the terminal
// editor.
package app

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	"github.com/dshills/dabbrev/internal/config"
	"github.com/dshills/dabbrev/internal/dabbrev"
	"github.com/dshills/dabbrev/internal/dispatcher"
	"github.com/dshills/dabbrev/internal/dispatcher/handler"
	"github.com/dshills/dabbrev/internal/event"
	"github.com/dshills/dabbrev/internal/input/keymap"
	"github.com/dshills/dabbrev/internal/logger"
	"github.com/dshills/dabbrev/internal/renderer"
	"github.com/dshills/dabbrev/internal/renderer/backend"
	"github.com/dshills/dabbrev/internal/workspace"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// Files are files to open on startup.
	Files []string

	// LogLevel overrides logging.level when set.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// EnvPrefix overrides the environment variable prefix.
	EnvPrefix string

	// WatchConfig reloads the configuration when the file changes.
	WatchConfig bool

	// Backend is the terminal used by Run. Headless use leaves it nil.
	Backend backend.Backend
}

// Application is the central coordinator for all dabbrev components.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	log     *logger.Logger
	config  *config.Config
	metrics *metrics.Set
	bus     *event.Bus

	// Editor components
	workspace  *workspace.Workspace
	dispatcher *dispatcher.Dispatcher
	engines    *engineRegistry
	keymap     *keymap.Keymap

	// Terminal
	backend  backend.Backend
	renderer *renderer.Renderer
	status   string

	subscriptions []*event.Subscription

	running atomic.Bool
	opts    Options
}

// New creates a new Application with the given options.
func New(ctx context.Context, opts Options) (*Application, error) {
	app := &Application{opts: opts, backend: opts.Backend}
	if err := app.bootstrap(ctx); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// Logger returns the root logger.
func (app *Application) Logger() *logger.Logger {
	return app.log
}

// Config returns the configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Bus returns the event bus.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Workspace returns the workspace.
func (app *Application) Workspace() *workspace.Workspace {
	return app.workspace
}

// Dispatcher returns the dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher {
	return app.dispatcher
}

// Metrics returns the metrics set shared by the dispatcher and engines.
func (app *Application) Metrics() *metrics.Set {
	return app.metrics
}

// WriteMetrics writes all metrics in Prometheus text format.
func (app *Application) WriteMetrics(w io.Writer) {
	app.metrics.WritePrometheus(w)
}

// Keymap returns the active key bindings.
func (app *Application) Keymap() *keymap.Keymap {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.keymap
}

// Engine returns the expansion engine attached to an editor.
func (app *Application) Engine(editorID string) (*dabbrev.Engine, bool) {
	return app.engines.get(editorID)
}

// Dispatch runs an action against the active editor.
func (app *Application) Dispatch(ctx context.Context, action handler.Action) handler.Result {
	return app.dispatcher.Dispatch(ctx, action)
}

// Open opens path in a new focused editor with its own expansion engine.
func (app *Application) Open(path string) (*workspace.Editor, error) {
	ed, err := app.workspace.Open(path)
	if err != nil {
		return nil, err
	}
	app.engines.attach(ed)
	return ed, nil
}

// OpenText opens a scratch editor holding text.
func (app *Application) OpenText(text string) *workspace.Editor {
	ed := app.workspace.OpenText(text)
	app.engines.attach(ed)
	return ed
}

// CloseEditor closes an editor and detaches its engine.
func (app *Application) CloseEditor(id string) error {
	if err := app.workspace.Close(id); err != nil {
		return err
	}
	app.engines.detach(id)
	return nil
}

// Shutdown releases subscriptions and stops the config watcher.
// It is safe to call more than once.
func (app *Application) Shutdown() {
	app.mu.Lock()
	subs := app.subscriptions
	app.subscriptions = nil
	app.mu.Unlock()

	for _, sub := range subs {
		_ = app.bus.Unsubscribe(sub)
	}
	if app.config != nil {
		if err := app.config.Close(); err != nil {
			app.log.WithError(err).Warn("closing config watcher")
		}
	}
}
