package dispatcher

import (
	"sort"
	"strings"
	"sync"

	"github.com/dshills/dabbrev/internal/dispatcher/handler"
)

// Router routes actions to namespace handlers by the prefix before the
// first dot, so "view.centerCursor" goes to the "view" handler.
type Router struct {
	mu         sync.RWMutex
	namespaces map[string]handler.NamespaceHandler
}

// NewRouter creates a new action router.
func NewRouter() *Router {
	return &Router{
		namespaces: make(map[string]handler.NamespaceHandler),
	}
}

// RegisterNamespace registers a handler for all actions in a namespace.
func (r *Router) RegisterNamespace(namespace string, h handler.NamespaceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces[namespace] = h
}

// Route finds the namespace handler for an action, or nil.
func (r *Router) Route(actionName string) handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.namespaces[extractNamespace(actionName)]; ok && h.CanHandle(actionName) {
		return handler.NewNamespaceAdapter(h)
	}
	return nil
}

// Namespaces returns all registered namespace names, sorted.
func (r *Router) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// extractNamespace extracts the namespace from "namespace.action" format.
// Returns empty string if no namespace separator is found.
func extractNamespace(actionName string) string {
	ns, _, found := strings.Cut(actionName, ".")
	if !found {
		return ""
	}
	return ns
}
