package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/dabbrev/internal/renderer/backend"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Spec is a parsed key: a named key or a single rune, plus modifiers.
type Spec struct {
	// Name is a special key name such as "enter", or "" for a rune key.
	Name string

	// Rune is the character for rune keys.
	Rune rune

	Modifiers Modifier
}

// String returns the canonical specification.
func (s Spec) String() string {
	k := s.Name
	if k == "" {
		k = string(s.Rune)
	}
	if s.Modifiers == ModNone {
		return k
	}
	return s.Modifiers.String() + "+" + k
}

var keyNames = map[string]string{
	"enter":     "enter",
	"return":    "enter",
	"cr":        "enter",
	"esc":       "escape",
	"escape":    "escape",
	"tab":       "tab",
	"bs":        "backspace",
	"backspace": "backspace",
	"del":       "delete",
	"delete":    "delete",
	"home":      "home",
	"end":       "end",
	"pageup":    "pageup",
	"pgup":      "pageup",
	"pagedown":  "pagedown",
	"pgdn":      "pagedown",
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
	"space":     " ",
}

// Parse parses a key specification.
//
// Supported formats:
//   - Single character: "a", "/", "@"
//   - Special keys: "Enter", "Escape", "Tab", "Backspace", "Left"
//   - With modifiers: "Ctrl+S", "alt+/", "Ctrl+Shift+P"
//   - Vim-style: "<C-s>", "<A-/>", "<CR>"
func Parse(spec string) (Spec, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Spec{}, ErrEmptySpec
	}

	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseParts(spec[1:len(spec)-1], "-")
	}
	return parseParts(spec, "+")
}

// parseParts splits on sep. The last element is the key, so "alt++"
// binds the plus sign.
func parseParts(spec, sep string) (Spec, error) {
	parts := strings.Split(spec, sep)
	keyPart := parts[len(parts)-1]
	mods := parts[:len(parts)-1]
	if keyPart == "" && len(parts) > 1 {
		keyPart = sep
		mods = parts[:len(parts)-2]
	}

	var m Modifier
	for _, p := range mods {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Spec{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		m = m.With(mod)
	}
	return parseKey(keyPart, m)
}

func parseKey(keyPart string, mods Modifier) (Spec, error) {
	if keyPart == "" {
		return Spec{}, ErrInvalidSpec
	}
	if name, ok := keyNames[strings.ToLower(keyPart)]; ok {
		if name == " " {
			return Spec{Rune: ' ', Modifiers: mods}, nil
		}
		return Spec{Name: name, Modifiers: mods}, nil
	}

	runes := []rune(keyPart)
	if len(runes) != 1 {
		return Spec{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
	}
	r := runes[0]
	// For Ctrl combinations, use lowercase
	if mods.Has(ModCtrl) {
		r = unicode.ToLower(r)
	}
	return Spec{Rune: r, Modifiers: mods}, nil
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Spec {
	s, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return s
}

// Normalize parses and re-formats a key specification to its canonical form.
func Normalize(spec string) (string, error) {
	s, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

var backendNames = map[backend.Key]string{
	backend.KeyEscape:    "escape",
	backend.KeyEnter:     "enter",
	backend.KeyTab:       "tab",
	backend.KeyBackspace: "backspace",
	backend.KeyDelete:    "delete",
	backend.KeyHome:      "home",
	backend.KeyEnd:       "end",
	backend.KeyPageUp:    "pageup",
	backend.KeyPageDown:  "pagedown",
	backend.KeyUp:        "up",
	backend.KeyDown:      "down",
	backend.KeyLeft:      "left",
	backend.KeyRight:     "right",
}

// FromEvent converts a terminal key event. The second result is false for
// events that carry no key.
func FromEvent(ev backend.Event) (Spec, bool) {
	if ev.Type != backend.EventKey {
		return Spec{}, false
	}

	var mods Modifier
	if ev.Mod.Has(backend.ModCtrl) {
		mods = mods.With(ModCtrl)
	}
	if ev.Mod.Has(backend.ModAlt) {
		mods = mods.With(ModAlt)
	}

	switch {
	case ev.Key == backend.KeyRune:
		r := ev.Rune
		if mods.Has(ModCtrl) {
			r = unicode.ToLower(r)
		}
		return Spec{Rune: r, Modifiers: mods}, r != 0
	case ev.Key.CtrlLetter() != 0:
		return Spec{Rune: ev.Key.CtrlLetter(), Modifiers: mods.With(ModCtrl)}, true
	}

	name, ok := backendNames[ev.Key]
	if !ok {
		return Spec{}, false
	}
	if ev.Mod.Has(backend.ModShift) {
		mods = mods.With(ModShift)
	}
	return Spec{Name: name, Modifiers: mods}, true
}
