package dispatcher

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/dshills/dabbrev/internal/dispatcher/execctx"
	"github.com/dshills/dabbrev/internal/dispatcher/handler"
	"github.com/dshills/dabbrev/internal/logger"
	"github.com/dshills/dabbrev/internal/workspace"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkspace sets the workspace handlers act on.
func WithWorkspace(ws *workspace.Workspace) Option {
	return func(d *Dispatcher) { d.workspace = ws }
}

// WithExpanders sets how handlers find an editor's expansion engine.
func WithExpanders(lookup execctx.ExpanderLookup) Option {
	return func(d *Dispatcher) { d.expanders = lookup }
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetrics records dispatch statistics into set.
func WithMetrics(set *metrics.Set) Option {
	return func(d *Dispatcher) {
		if set != nil {
			d.metrics = NewMetrics(set)
		}
	}
}

// Dispatcher routes actions to handlers and runs them one at a time.
type Dispatcher struct {
	mu sync.RWMutex

	// exec serializes handler execution.
	exec sync.Mutex

	registry *Registry
	router   *Router

	workspace *workspace.Workspace
	expanders execctx.ExpanderLookup

	config  Config
	metrics *Metrics
	log     *logger.Logger
}

// New creates a new dispatcher with the given configuration.
func New(config Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		router:   NewRouter(),
		config:   config,
		log:      logger.Null(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.WithComponent("dispatcher")
	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults(opts ...Option) *Dispatcher {
	return New(DefaultConfig(), opts...)
}

// SetWorkspace replaces the workspace.
func (d *Dispatcher) SetWorkspace(ws *workspace.Workspace) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.workspace = ws
}

// SetExpanders replaces the expander lookup.
func (d *Dispatcher) SetExpanders(lookup execctx.ExpanderLookup) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expanders = lookup
}

// Dispatch runs action against the active editor and returns its result.
// Actions are serialized; a handler must not dispatch another action.
func (d *Dispatcher) Dispatch(ctx context.Context, action handler.Action) handler.Result {
	if action.Name == "" {
		return handler.Error(ErrInvalidAction)
	}
	start := time.Now()

	h := d.router.Route(action.Name)
	if h == nil {
		h = d.registry.Get(action.Name)
	}
	if h == nil {
		d.log.Debug("no handler for %s", action.Name)
		return handler.Error(fmt.Errorf("%w: %s", ErrNoHandler, action.Name))
	}

	d.exec.Lock()
	ectx := d.buildContext(ctx, action)
	var result handler.Result
	if d.config.RecoverFromPanic {
		result = d.executeWithRecovery(h, action, ectx)
	} else {
		result = h.Handle(action, ectx)
	}
	d.exec.Unlock()

	elapsed := time.Since(start)
	if d.metrics != nil {
		d.metrics.RecordDispatch(action.Name, elapsed, result.Status)
	}
	if result.IsError() {
		d.log.WithError(result.Error).Warn("dispatch %s failed", action.Name)
	} else {
		d.log.Debug("dispatch %s: %s in %s", action.Name, result.Status, elapsed)
	}
	return result
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(h handler.Handler, action handler.Action, ctx *execctx.ExecutionContext) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			d.log.Error("handler panic for %s: %v\n%s", action.Name, r, stack[:n])

			result = handler.Error(fmt.Errorf("%w for %s: %v", ErrPanic, action.Name, r))
			if d.metrics != nil {
				d.metrics.RecordPanic(action.Name)
			}
		}
	}()

	return h.Handle(action, ctx)
}

// buildContext builds an execution context from current state.
func (d *Dispatcher) buildContext(ctx context.Context, action handler.Action) *execctx.ExecutionContext {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ectx := execctx.New()
	if ctx != nil {
		ectx.Context = ctx
	}
	ectx.Workspace = d.workspace
	ectx.Expanders = d.expanders
	ectx.Logger = d.log.WithField("action", action.Name)
	if d.workspace != nil {
		ectx.Editor = d.workspace.Active()
	}

	if action.Count > 0 {
		ectx.Count = action.Count
	}
	if limit := d.config.MaxRepeatCount; limit > 0 && ectx.Count > limit {
		ectx.Count = limit
	}
	return ectx
}

// RegisterHandler registers a handler for an exact action name.
func (d *Dispatcher) RegisterHandler(actionName string, h handler.Handler) {
	d.registry.Register(actionName, h)
}

// RegisterHandlerFunc registers a handler function for an action name.
func (d *Dispatcher) RegisterHandlerFunc(actionName string, fn func(handler.Action, *execctx.ExecutionContext) handler.Result) {
	d.registry.Register(actionName, handler.NewHandlerFunc(fn))
}

// RegisterNamespace registers a namespace handler under its own namespace.
func (d *Dispatcher) RegisterNamespace(h handler.NamespaceHandler) {
	d.router.RegisterNamespace(h.Namespace(), h)
}

// CanDispatch reports whether some handler accepts actionName.
func (d *Dispatcher) CanDispatch(actionName string) bool {
	return d.router.Route(actionName) != nil || d.registry.Get(actionName) != nil
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Router returns the action router.
func (d *Dispatcher) Router() *Router {
	return d.router
}

// Metrics returns the metrics collector (nil unless WithMetrics was used).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}
