package dispatcher

import (
	"sort"
	"sync"

	"github.com/dshills/dabbrev/internal/dispatcher/handler"
)

// Registry maps exact action names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]handler.Handler // sorted by descending priority
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string][]handler.Handler),
	}
}

// Register adds a handler for an action name. When several handlers share
// a name, the highest priority wins; ties go to the earliest registered.
func (r *Registry) Register(actionName string, h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := append(r.handlers[actionName], h)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority() > handlers[j].Priority()
	})
	r.handlers[actionName] = handlers
}

// Unregister removes all handlers for an action name.
func (r *Registry) Unregister(actionName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, actionName)
}

// Get returns the highest priority handler for an action, or nil.
func (r *Registry) Get(actionName string) handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if handlers := r.handlers[actionName]; len(handlers) > 0 {
		return handlers[0]
	}
	return nil
}

// List returns all registered action names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
