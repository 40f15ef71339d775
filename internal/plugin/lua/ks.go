package lua

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// ExecResult is what ks.exec returns to a script.
type ExecResult struct {
	Status  string
	Message string
	Data    map[string]any
}

// Host is the editor a script acts on. Positions are 0-based; the ks
// module converts to and from Lua's 1-based convention.
type Host interface {
	Text() (string, error)
	Cursor() (line, col int, err error)
	Move(ctx context.Context, line, col int) error
	Insert(ctx context.Context, text string) error
	Exec(ctx context.Context, command string, args map[string]any) (ExecResult, error)
	Messages() []string
}

// Runner executes scripts against a host.
type Runner struct {
	state *State
	host  Host
	ctx   context.Context
}

// NewRunner creates a sandboxed state with the ks module bound to host.
func NewRunner(host Host, opts ...StateOption) *Runner {
	r := &Runner{
		state: NewState(opts...),
		host:  host,
		ctx:   context.Background(),
	}
	r.state.RegisterModule("ks", r.funcs())
	return r
}

// RunFile executes the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	r.ctx = ctx
	return r.state.DoFile(ctx, path)
}

// RunString executes code.
func (r *Runner) RunString(ctx context.Context, code string) error {
	r.ctx = ctx
	return r.state.DoString(ctx, code)
}

// State returns the underlying state.
func (r *Runner) State() *State {
	return r.state
}

// Close releases the Lua state.
func (r *Runner) Close() {
	r.state.Close()
}

func (r *Runner) funcs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"text":     r.text,
		"cursor":   r.cursor,
		"move":     r.move,
		"insert":   r.insert,
		"exec":     r.exec,
		"messages": r.messages,
	}
}

func (r *Runner) requireHost(L *lua.LState) Host {
	if r.host == nil {
		L.RaiseError("%s", ErrNoHost.Error())
	}
	return r.host
}

// ks.text() -> string
func (r *Runner) text(L *lua.LState) int {
	text, err := r.requireHost(L).Text()
	if err != nil {
		L.RaiseError("ks.text: %s", err.Error())
		return 0
	}
	L.Push(lua.LString(text))
	return 1
}

// ks.cursor() -> line, col
func (r *Runner) cursor(L *lua.LState) int {
	line, col, err := r.requireHost(L).Cursor()
	if err != nil {
		L.RaiseError("ks.cursor: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(line + 1))
	L.Push(lua.LNumber(col + 1))
	return 2
}

// ks.move(line, col)
func (r *Runner) move(L *lua.LState) int {
	line := L.CheckInt(1)
	col := L.OptInt(2, 1)
	if line < 1 {
		L.ArgError(1, "line must be >= 1")
		return 0
	}
	if col < 1 {
		L.ArgError(2, "col must be >= 1")
		return 0
	}
	if err := r.requireHost(L).Move(r.ctx, line-1, col-1); err != nil {
		L.RaiseError("ks.move: %s", err.Error())
	}
	return 0
}

// ks.insert(s)
func (r *Runner) insert(L *lua.LState) int {
	text := L.CheckString(1)
	if err := r.requireHost(L).Insert(r.ctx, text); err != nil {
		L.RaiseError("ks.insert: %s", err.Error())
	}
	return 0
}

// ks.exec(cmd [, args]) -> {status, message, data}
func (r *Runner) exec(L *lua.LState) int {
	cmd := L.CheckString(1)
	var args map[string]any
	if t := L.OptTable(2, nil); t != nil {
		if m, ok := ToGoValue(t).(map[string]any); ok {
			args = m
		} else {
			L.ArgError(2, "args must be a table with string keys")
			return 0
		}
	}

	res, err := r.requireHost(L).Exec(r.ctx, cmd, args)
	if err != nil {
		L.RaiseError("ks.exec %s: %s", cmd, err.Error())
		return 0
	}

	out := L.NewTable()
	out.RawSetString("status", lua.LString(res.Status))
	out.RawSetString("message", lua.LString(res.Message))
	if res.Data != nil {
		out.RawSetString("data", ToLuaValue(L, res.Data))
	} else {
		out.RawSetString("data", L.NewTable())
	}
	L.Push(out)
	return 1
}

// ks.messages() -> {string...}
func (r *Runner) messages(L *lua.LState) int {
	L.Push(ToLuaValue(L, r.requireHost(L).Messages()))
	return 1
}
