package handler

import "strconv"

// Action is a named command with optional arguments.
type Action struct {
	// Name is the dotted command name, e.g. "emacs.dabbrevExpand".
	Name string

	// Count repeats the action; zero means once.
	Count int

	// Args carries command arguments such as the text to insert.
	Args map[string]any
}

// NewAction creates an action with no arguments.
func NewAction(name string) Action {
	return Action{Name: name}
}

// WithArg returns a copy of the action with key set.
func (a Action) WithArg(key string, value any) Action {
	args := make(map[string]any, len(a.Args)+1)
	for k, v := range a.Args {
		args[k] = v
	}
	args[key] = value
	a.Args = args
	return a
}

// ArgString returns a string argument, or "".
func (a Action) ArgString(key string) string {
	s, _ := a.Args[key].(string)
	return s
}

// ArgInt returns an integer argument. Numeric strings are parsed.
func (a Action) ArgInt(key string) (int, bool) {
	switch v := a.Args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}
