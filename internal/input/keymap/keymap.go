package keymap

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/dabbrev/internal/input/key"
)

// ActionQuit is handled by the terminal loop rather than the dispatcher.
const ActionQuit = "app.quit"

// Binding represents a single key-to-action mapping.
type Binding struct {
	// Keys is the canonical key specification.
	Keys string

	// Action is the command to execute.
	// Examples: "cursor.moveLeft", "emacs.dabbrevExpand"
	Action string

	// Source indicates where this binding was defined.
	// Examples: "default", "config"
	Source string
}

// Keymap holds key bindings. It is safe for concurrent use.
type Keymap struct {
	Name string

	mu       sync.RWMutex
	bindings map[string]Binding
}

// NewKeymap creates an empty keymap with the given name.
func NewKeymap(name string) *Keymap {
	return &Keymap{
		Name:     name,
		bindings: make(map[string]Binding),
	}
}

// Add binds keys to action. Invalid specifications return an error and
// leave the keymap unchanged.
func (k *Keymap) Add(keys, action, source string) error {
	if action == "" {
		return fmt.Errorf("binding %q: empty action", keys)
	}
	spec, err := key.Parse(keys)
	if err != nil {
		return fmt.Errorf("binding %q: %w", keys, err)
	}

	canonical := spec.String()
	k.mu.Lock()
	k.bindings[canonical] = Binding{Keys: canonical, Action: action, Source: source}
	k.mu.Unlock()
	return nil
}

// Merge adds every key/action pair of m as a "config" binding. All pairs
// are validated before any is applied.
func (k *Keymap) Merge(m map[string]string) error {
	parsed := make(map[string]string, len(m))
	for keys, action := range m {
		spec, err := key.Parse(keys)
		if err != nil {
			return fmt.Errorf("binding %q: %w", keys, err)
		}
		if action == "" {
			return fmt.Errorf("binding %q: empty action", keys)
		}
		parsed[spec.String()] = action
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	for keys, action := range parsed {
		k.bindings[keys] = Binding{Keys: keys, Action: action, Source: "config"}
	}
	return nil
}

// Lookup returns the binding for spec.
func (k *Keymap) Lookup(spec key.Spec) (Binding, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	b, ok := k.bindings[spec.String()]
	return b, ok
}

// Bindings returns all bindings sorted by key.
func (k *Keymap) Bindings() []Binding {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]Binding, 0, len(k.bindings))
	for _, b := range k.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keys < out[j].Keys })
	return out
}

// Clone creates a copy of the keymap.
func (k *Keymap) Clone() *Keymap {
	k.mu.RLock()
	defer k.mu.RUnlock()

	clone := NewKeymap(k.Name)
	for keys, b := range k.bindings {
		clone.bindings[keys] = b
	}
	return clone
}
