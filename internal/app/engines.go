package app

import (
	"context"
	"sync"

	"github.com/dshills/dabbrev/internal/dabbrev"
	"github.com/dshills/dabbrev/internal/dispatcher/execctx"
	"github.com/dshills/dabbrev/internal/event"
	"github.com/dshills/dabbrev/internal/logger"
	"github.com/dshills/dabbrev/internal/workspace"
)

// engineRegistry owns one expansion engine per open editor.
type engineRegistry struct {
	mu      sync.RWMutex
	engines map[string]*dabbrev.Engine

	notifier dabbrev.Notifier
	metrics  *dabbrev.Metrics
	log      *logger.Logger
}

func newEngineRegistry(notifier dabbrev.Notifier, m *dabbrev.Metrics, log *logger.Logger) *engineRegistry {
	return &engineRegistry{
		engines:  make(map[string]*dabbrev.Engine),
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// attach creates the engine for ed.
func (r *engineRegistry) attach(ed *workspace.Editor) *dabbrev.Engine {
	eng := dabbrev.New(ed, r.notifier,
		dabbrev.WithEditorID(ed.ID),
		dabbrev.WithLogger(r.log),
		dabbrev.WithMetrics(r.metrics),
	)

	r.mu.Lock()
	r.engines[ed.ID] = eng
	r.mu.Unlock()
	return eng
}

// detach drops the engine of a closed editor.
func (r *engineRegistry) detach(id string) {
	r.mu.Lock()
	eng, ok := r.engines[id]
	delete(r.engines, id)
	r.mu.Unlock()

	if ok {
		eng.Detach()
	}
}

func (r *engineRegistry) get(id string) (*dabbrev.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eng, ok := r.engines[id]
	return eng, ok
}

// lookup adapts get to execctx.ExpanderLookup.
func (r *engineRegistry) lookup(id string) (execctx.Expander, bool) {
	eng, ok := r.get(id)
	if !ok {
		return nil, false
	}
	return eng, true
}

// onSelectionChanged forwards cursor moves to the editor's engine.
func (r *engineRegistry) onSelectionChanged(_ context.Context, ev event.Event[event.SelectionChanged]) error {
	if eng, ok := r.get(ev.Payload.EditorID); ok {
		eng.OnSelectionChanged(ev.Payload.EditorID, ev.Payload.Position())
	}
	return nil
}
