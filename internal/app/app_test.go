package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/dabbrev/internal/dabbrev"
	"github.com/dshills/dabbrev/internal/dispatcher/handler"
	cursorhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/cursor"
	"github.com/dshills/dabbrev/internal/dispatcher/handlers/emacs"
	"github.com/dshills/dabbrev/internal/event"
	"github.com/dshills/dabbrev/internal/input/key"
	"github.com/dshills/dabbrev/internal/input/keymap"
	"github.com/dshills/dabbrev/internal/logger"
	"github.com/dshills/dabbrev/internal/renderer/backend"
	"github.com/dshills/dabbrev/internal/workspace"
)

const testEnvPrefix = "DABBREVAPPTEST_"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, opts Options) *Application {
	t.Helper()
	opts.EnvPrefix = testEnvPrefix
	if opts.LogOutput == nil {
		opts.LogOutput = &bytes.Buffer{}
	}
	app, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)
	return app
}

func moveTo(t *testing.T, app *Application, line, col int) {
	t.Helper()
	res := app.Dispatch(context.Background(), handler.NewAction(cursorhandler.ActionMoveTo).
		WithArg(cursorhandler.ArgLine, line).
		WithArg(cursorhandler.ArgCol, col))
	require.False(t, res.IsError(), "move: %v", res.Error)
}

func TestOpenFileAndExpand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.go", "func handler() {}\nha")

	app := newTestApp(t, Options{Files: []string{path}})
	ed := app.Workspace().Active()
	require.NotNil(t, ed)

	_, ok := app.Engine(ed.ID)
	require.True(t, ok)

	moveTo(t, app, 1, 2)
	res := app.Dispatch(context.Background(), handler.NewAction(emacs.ActionDabbrevExpand))
	require.True(t, res.IsOK(), res.Message)
	assert.Equal(t, "func handler() {}\nhandler", ed.Text())
	assert.Equal(t, "main.go *", filepath.Base(ed.Title()))
}

func TestOpenMissingFileFails(t *testing.T) {
	_, err := New(context.Background(), Options{
		Files:     []string{filepath.Join(t.TempDir(), "nope", "missing.txt")},
		EnvPrefix: testEnvPrefix,
		LogOutput: &bytes.Buffer{},
	})
	require.Error(t, err)
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "workspace", initErr.Component)
}

func TestInvalidConfigFails(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dabbrev.toml", "[logging]\nlevel = \"loud\"\n")

	_, err := New(context.Background(), Options{ConfigPath: path, EnvPrefix: testEnvPrefix, LogOutput: &bytes.Buffer{}})
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "config", initErr.Component)
}

func TestDisabledByConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dabbrev.yaml", "dabbrev:\n  enabled: false\n")
	app := newTestApp(t, Options{ConfigPath: path})
	ed := app.OpenText("foo f")
	moveTo(t, app, 0, 5)

	res := app.Dispatch(context.Background(), handler.NewAction(emacs.ActionDabbrevExpand))
	assert.Equal(t, handler.StatusNoOp, res.Status)
	assert.Equal(t, "foo f", ed.Text())
}

func TestExpansionMetricsFromConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dabbrev.toml", "[dabbrev]\nmetrics = true\n")
	app := newTestApp(t, Options{ConfigPath: path})
	app.OpenText("alpha a")
	moveTo(t, app, 0, 7)

	app.Dispatch(context.Background(), handler.NewAction(emacs.ActionDabbrevExpand))

	var buf bytes.Buffer
	app.WriteMetrics(&buf)
	out := buf.String()
	assert.Contains(t, out, `dabbrev_expand_total{outcome="expanded"} 1`)
	assert.Contains(t, out, `dispatch_total{action="emacs.dabbrevExpand",status="ok"} 1`)
}

func TestCloseEditorDetachesEngine(t *testing.T) {
	app := newTestApp(t, Options{})
	first := app.OpenText("one")
	second := app.OpenText("two")

	eng, ok := app.Engine(second.ID)
	require.True(t, ok)
	require.NoError(t, app.CloseEditor(second.ID))

	_, ok = app.Engine(second.ID)
	assert.False(t, ok)
	assert.Equal(t, dabbrev.OutcomeUnavailable, eng.Expand(context.Background()).Outcome)
	assert.Equal(t, first, app.Workspace().Active())
	assert.Error(t, app.CloseEditor(second.ID))
}

func TestEnginesAreIndependent(t *testing.T) {
	app := newTestApp(t, Options{})
	a := app.OpenText("apple ap")
	moveTo(t, app, 0, 8)
	app.Dispatch(context.Background(), handler.NewAction(emacs.ActionDabbrevExpand))

	b := app.OpenText("banana b")
	moveTo(t, app, 0, 8)
	app.Dispatch(context.Background(), handler.NewAction(emacs.ActionDabbrevExpand))

	engA, _ := app.Engine(a.ID)
	engB, _ := app.Engine(b.ID)
	assert.IsType(t, &dabbrev.Active{}, engA.Session())
	assert.IsType(t, &dabbrev.Active{}, engB.Session())
	assert.Equal(t, "apple apple", a.Text())
	assert.Equal(t, "banana banana", b.Text())
}

func TestScriptHost(t *testing.T) {
	app := newTestApp(t, Options{})
	ed := app.OpenText("function foo() { return foobar; } fo")

	runner := app.NewScriptRunner()
	defer runner.Close()

	err := runner.RunString(context.Background(), `
		ks.move(1, 37)
		local r = ks.exec("emacs.dabbrevExpand")
		assert(r.status == "ok", r.status)
		assert(r.data.replacement == "foobar", tostring(r.data.replacement))
		local again = ks.exec("emacs.dabbrevExpand")
		assert(again.data.outcome == "cycled")
		local line, col = ks.cursor()
		assert(line == 1 and col == 38, line .. ":" .. col)
	`)
	require.NoError(t, err)
	assert.Equal(t, "function foo() { return foobar; } foo", ed.Text())
}

func TestScriptHostInsertAndCount(t *testing.T) {
	app := newTestApp(t, Options{})
	ed := app.OpenText("")
	host := app.ScriptHost()

	require.NoError(t, host.Insert(context.Background(), "ab"))
	res, err := host.Exec(context.Background(), "editor.insert", map[string]any{"text": "x", "count": int64(3)})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, "abxxx", ed.Text())

	res, err = host.Exec(context.Background(), "nope.command", nil)
	require.NoError(t, err)
	assert.Equal(t, "error", res.Status)
	assert.Contains(t, res.Message, "nope.command")

	assert.Error(t, host.Move(context.Background(), -1, 0))
}

func TestScriptHostWithoutEditor(t *testing.T) {
	app := newTestApp(t, Options{})
	host := app.ScriptHost()

	_, err := host.Text()
	assert.ErrorIs(t, err, ErrNoActiveEditor)
	_, _, err = host.Cursor()
	assert.ErrorIs(t, err, ErrNoActiveEditor)
}

func TestConfigReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dabbrev.toml", "[keymap]\n\"ctrl+e\" = \"emacs.dabbrevExpand\"\n")
	app := newTestApp(t, Options{ConfigPath: path})

	b, ok := app.Keymap().Lookup(key.MustParse("ctrl+e"))
	require.True(t, ok)
	assert.Equal(t, emacs.ActionDabbrevExpand, b.Action)

	var reloaded []string
	_, err := event.SubscribeTo(app.Bus(), event.TopicConfigReloaded, func(_ context.Context, ev event.Event[event.ConfigReloaded]) error {
		reloaded = append(reloaded, ev.Payload.Path)
		return nil
	})
	require.NoError(t, err)

	ed := app.OpenText("\tindented")
	writeFile(t, dir, "dabbrev.toml", "[logging]\nlevel = \"debug\"\n[editor]\ntabWidth = 2\n[keymap]\n\"ctrl+e\" = \"emacs.selectLine\"\n")
	require.NoError(t, app.Config().Reload())
	assert.Equal(t, 2, ed.Document().Buffer().TabWidth())

	b, _ = app.Keymap().Lookup(key.MustParse("ctrl+e"))
	assert.Equal(t, emacs.ActionSelectLine, b.Action)
	assert.Equal(t, []string{path}, reloaded)
	assert.True(t, app.Logger().Enabled(logger.LevelDebug))

	// A broken keymap keeps the previous bindings.
	writeFile(t, dir, "dabbrev.toml", "[keymap]\n\"hyper+e\" = \"emacs.selectLine\"\n")
	require.NoError(t, app.Config().Reload())
	b, _ = app.Keymap().Lookup(key.MustParse("ctrl+e"))
	assert.Equal(t, emacs.ActionSelectLine, b.Action)
}

func TestLogLevelOptionWins(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dabbrev.toml", "[logging]\nlevel = \"error\"\n")
	app := newTestApp(t, Options{ConfigPath: path, LogLevel: "debug"})
	assert.True(t, app.Logger().Enabled(logger.LevelDebug))
}

func TestHandleKeyEvent(t *testing.T) {
	app := newTestApp(t, Options{})
	ed := app.OpenText("")
	ctx := context.Background()

	require.NoError(t, app.handleKeyEvent(ctx, backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'h'}))
	require.NoError(t, app.handleKeyEvent(ctx, backend.Event{Type: backend.EventKey, Key: backend.KeyTab}))
	require.NoError(t, app.handleKeyEvent(ctx, backend.Event{Type: backend.EventKey, Key: backend.KeyEnter}))
	require.NoError(t, app.handleKeyEvent(ctx, backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlB, Mod: backend.ModCtrl}))
	assert.Equal(t, "h\t\n", ed.Text())

	require.NoError(t, app.handleKeyEvent(ctx, backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 's', Mod: backend.ModCtrl}))
	assert.Equal(t, workspace.ErrScratchDocument.Error(), app.currentStatus())

	err := app.handleKeyEvent(ctx, backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlQ, Mod: backend.ModCtrl})
	assert.ErrorIs(t, err, ErrQuit)
}

func TestInsertText(t *testing.T) {
	tests := []struct {
		spec string
		text string
		ok   bool
	}{
		{"a", "a", true},
		{"A", "A", true},
		{"tab", "\t", true},
		{"alt+a", "", false},
		{"enter", "", false},
	}
	for _, tt := range tests {
		text, ok := insertText(key.MustParse(tt.spec))
		assert.Equal(t, tt.ok, ok, tt.spec)
		assert.Equal(t, tt.text, text, tt.spec)
	}
}

func TestRunWithoutBackend(t *testing.T) {
	app := newTestApp(t, Options{})
	assert.ErrorIs(t, app.Run(context.Background()), ErrNoBackend)
}

func TestRunTerminal(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	term := backend.NewTerminalWithScreen(screen)
	app := newTestApp(t, Options{Backend: term})
	ed := app.OpenText("foobar\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		app.mu.RLock()
		defer app.mu.RUnlock()
		return app.renderer != nil
	}, time.Second, 5*time.Millisecond)

	for _, ev := range []backend.Event{
		{Type: backend.EventKey, Key: backend.KeyDown},
		{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'f'},
		{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'o'},
		{Type: backend.EventKey, Key: backend.KeyRune, Rune: '/', Mod: backend.ModAlt},
	} {
		term.PostEvent(ev)
	}

	require.Eventually(t, func() bool {
		return ed.Text() == "foobar\nfoobar"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.Equal(t, keymap.ActionQuit, mustLookup(t, app, "ctrl+q"))
}

func mustLookup(t *testing.T, app *Application, spec string) string {
	t.Helper()
	b, ok := app.Keymap().Lookup(key.MustParse(spec))
	require.True(t, ok, spec)
	return b.Action
}
