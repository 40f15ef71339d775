package dispatcher_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/dabbrev/internal/dabbrev"
	"github.com/dshills/dabbrev/internal/dispatcher"
	"github.com/dshills/dabbrev/internal/dispatcher/execctx"
	"github.com/dshills/dabbrev/internal/dispatcher/handler"
	cursorhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/cursor"
	editorhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/editor"
	"github.com/dshills/dabbrev/internal/dispatcher/handlers/emacs"
	"github.com/dshills/dabbrev/internal/dispatcher/handlers/view"
	"github.com/dshills/dabbrev/internal/engine/buffer"
	"github.com/dshills/dabbrev/internal/event"
	"github.com/dshills/dabbrev/internal/workspace"
)

type fixture struct {
	ws      *workspace.Workspace
	d       *dispatcher.Dispatcher
	set     *metrics.Set
	engines map[string]*dabbrev.Engine
}

func newFixture(t *testing.T, opts ...emacs.Option) *fixture {
	t.Helper()

	bus := event.NewBus(nil)
	f := &fixture{
		ws:      workspace.New(bus, workspace.WithViewSize(40, 5)),
		set:     metrics.NewSet(),
		engines: make(map[string]*dabbrev.Engine),
	}
	_, err := event.SubscribeTo(bus, event.TopicSelectionChanged, func(_ context.Context, ev event.Event[event.SelectionChanged]) error {
		if eng, ok := f.engines[ev.Payload.EditorID]; ok {
			eng.OnSelectionChanged(ev.Payload.EditorID, ev.Payload.Position())
		}
		return nil
	})
	require.NoError(t, err)

	f.d = dispatcher.NewWithDefaults(
		dispatcher.WithWorkspace(f.ws),
		dispatcher.WithMetrics(f.set),
		dispatcher.WithExpanders(func(id string) (execctx.Expander, bool) {
			eng, ok := f.engines[id]
			return eng, ok
		}),
	)
	f.d.RegisterNamespace(emacs.NewHandler(opts...))
	f.d.RegisterNamespace(view.NewHandler())
	f.d.RegisterNamespace(cursorhandler.NewHandler())
	f.d.RegisterNamespace(editorhandler.NewHandler())
	return f
}

func (f *fixture) open(text string) *workspace.Editor {
	ed := f.ws.OpenText(text)
	f.engines[ed.ID] = dabbrev.New(ed, f.ws, dabbrev.WithEditorID(ed.ID))
	return ed
}

func (f *fixture) run(t *testing.T, name string, args ...any) handler.Result {
	t.Helper()
	action := handler.NewAction(name)
	for i := 0; i+1 < len(args); i += 2 {
		action = action.WithArg(args[i].(string), args[i+1])
	}
	return f.d.Dispatch(context.Background(), action)
}

func TestDispatchDabbrevCycle(t *testing.T) {
	f := newFixture(t)
	ed := f.open("function foo() { return foobar; } fo")

	res := f.run(t, cursorhandler.ActionMoveTo, "line", 0, "col", 36)
	require.True(t, res.IsOK(), res.Message)

	res = f.run(t, emacs.ActionDabbrevExpand)
	require.True(t, res.IsOK())
	assert.Equal(t, "expanded", res.GetDataString(emacs.DataOutcome))
	assert.Equal(t, "foobar", res.GetDataString(emacs.DataReplacement))
	assert.Equal(t, 2, res.GetDataInt(emacs.DataCandidates))
	assert.Equal(t, "function foo() { return foobar; } foobar", ed.Text())

	res = f.run(t, emacs.ActionDabbrevExpand)
	assert.Equal(t, "cycled", res.GetDataString(emacs.DataOutcome))
	assert.Equal(t, 1, res.GetDataInt(emacs.DataIndex))
	assert.Equal(t, "function foo() { return foobar; } foo", ed.Text())

	res = f.run(t, emacs.ActionDabbrevExpand)
	assert.Equal(t, 0, res.GetDataInt(emacs.DataIndex))
	assert.Equal(t, "function foo() { return foobar; } foobar", ed.Text())

	assert.Equal(t, uint64(3), f.d.Metrics().DispatchCount(emacs.ActionDabbrevExpand, handler.StatusOK))
}

func TestDispatchDabbrevCursorMoveStartsFresh(t *testing.T) {
	f := newFixture(t)
	ed := f.open("foo foobar fo")

	f.run(t, cursorhandler.ActionMoveTo, "line", 0, "col", 13)
	f.run(t, emacs.ActionDabbrevExpand)
	assert.Equal(t, "foo foobar foobar", ed.Text())

	f.run(t, cursorhandler.ActionMoveLeft)
	f.run(t, cursorhandler.ActionMoveRight)

	// The session is gone, so the whole word "foobar" is the new prefix.
	res := f.run(t, emacs.ActionDabbrevExpand)
	assert.Equal(t, "no_match", res.GetDataString(emacs.DataOutcome))
	assert.Equal(t, "foo foobar foobar", ed.Text())
	assert.IsType(t, dabbrev.Absent{}, f.engines[ed.ID].Session())
}

func TestDispatchDabbrevCount(t *testing.T) {
	f := newFixture(t)
	ed := f.open("alpha alps al")

	f.run(t, cursorhandler.ActionMoveTo, "line", 0, "col", 13)
	res := f.d.Dispatch(context.Background(), handler.Action{Name: emacs.ActionDabbrevExpand, Count: 2})
	require.True(t, res.IsOK())
	assert.Equal(t, "alpha alps alpha", ed.Text())
	assert.Equal(t, 1, res.GetDataInt(emacs.DataIndex))
}

func TestDispatchDabbrevMessages(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		col     int
		outcome string
		message string
	}{
		{"no prefix", "foo ", 4, "no_prefix", dabbrev.MsgNoPrefix},
		{"no match", "bar qu", 6, "no_match", dabbrev.MsgNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.open(tt.text)
			f.run(t, cursorhandler.ActionMoveTo, "line", 0, "col", tt.col)

			res := f.run(t, emacs.ActionDabbrevExpand)
			assert.Equal(t, handler.StatusNoOp, res.Status)
			assert.Equal(t, tt.outcome, res.GetDataString(emacs.DataOutcome))
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.message, f.ws.LastMessage())
		})
	}
}

func TestDispatchDabbrevDisabled(t *testing.T) {
	f := newFixture(t, emacs.WithEnabled(func() bool { return false }))
	ed := f.open("foo fo")
	f.run(t, cursorhandler.ActionMoveTo, "line", 0, "col", 6)

	res := f.run(t, emacs.ActionDabbrevExpand)
	assert.Equal(t, handler.StatusNoOp, res.Status)
	assert.Equal(t, "foo fo", ed.Text())
}

func TestDispatchDabbrevWithoutEditor(t *testing.T) {
	f := newFixture(t)

	res := f.run(t, emacs.ActionDabbrevExpand)
	assert.True(t, res.IsError())
	assert.ErrorIs(t, res.Error, execctx.ErrMissingEditor)

	// An editor nobody attached an engine to.
	f.ws.OpenText("foo fo")
	res = f.run(t, emacs.ActionDabbrevExpand)
	assert.ErrorIs(t, res.Error, execctx.ErrMissingExpander)
}

func TestDispatchSelectLine(t *testing.T) {
	f := newFixture(t)
	ed := f.open("first\nsecond line\nthird")
	f.run(t, cursorhandler.ActionMoveTo, "line", 1, "col", 3)

	res := f.run(t, emacs.ActionSelectLine)
	require.True(t, res.IsOK())

	sel := ed.Selection()
	assert.Equal(t, buffer.Point{Line: 1, Column: 0}, sel.Anchor)
	assert.Equal(t, buffer.Point{Line: 1, Column: 11}, sel.Head)
}

func TestDispatchCenterCursor(t *testing.T) {
	f := newFixture(t)
	var text bytes.Buffer
	for range 50 {
		text.WriteString("line\n")
	}
	ed := f.open(text.String())
	f.run(t, cursorhandler.ActionMoveTo, "line", 30, "col", 0)

	res := f.run(t, view.ActionCenterCursor)
	require.True(t, res.IsOK())
	assert.Equal(t, uint32(28), ed.View().TopLine())
	assert.Equal(t, 28, res.GetDataInt("topLine"))
}

func TestDispatchCenterCursorWithoutEditor(t *testing.T) {
	f := newFixture(t)
	res := f.run(t, view.ActionCenterCursor)
	assert.Equal(t, handler.StatusNoOp, res.Status)
}

func TestDispatchCenterOtherEditor(t *testing.T) {
	f := newFixture(t)
	var text bytes.Buffer
	for range 40 {
		text.WriteString("x\n")
	}

	other := f.open(text.String())
	other.MoveTo(context.Background(), buffer.Point{Line: 20})
	active := f.open("only line")
	require.NoError(t, f.ws.SetVisible(other.ID, false))

	res := f.run(t, view.ActionCenterOtherEditor)
	assert.Equal(t, handler.StatusNoOp, res.Status)
	assert.Equal(t, workspace.MsgNoOtherEditor, f.ws.LastMessage())

	require.NoError(t, f.ws.SetVisible(other.ID, true))
	res = f.run(t, view.ActionCenterOtherEditor)
	require.True(t, res.IsOK())
	assert.Equal(t, other.ID, res.GetDataString("editor"))
	assert.Equal(t, uint32(18), other.View().TopLine())
	assert.Equal(t, uint32(0), active.View().TopLine())
}

func TestDispatchEditing(t *testing.T) {
	f := newFixture(t)
	ed := f.open("")

	assert.True(t, f.run(t, editorhandler.ActionInsert, "text", "ab").IsOK())
	assert.True(t, f.run(t, editorhandler.ActionNewline).IsOK())
	assert.True(t, f.run(t, editorhandler.ActionInsert, "text", "c").IsOK())
	assert.Equal(t, "ab\nc", ed.Text())

	assert.True(t, f.run(t, editorhandler.ActionBackspace).IsOK())
	assert.True(t, f.run(t, editorhandler.ActionBackspace).IsOK())
	assert.Equal(t, "ab", ed.Text())

	f.run(t, cursorhandler.ActionMoveTo, "line", 0, "col", 0)
	assert.Equal(t, handler.StatusNoOp, f.run(t, editorhandler.ActionBackspace).Status)
	assert.Equal(t, handler.StatusNoOp, f.run(t, editorhandler.ActionInsert).Status)
}

func TestDispatchUndoRedoExpansion(t *testing.T) {
	f := newFixture(t)
	ed := f.open("function foo() { return foobar; } fo")
	f.run(t, cursorhandler.ActionMoveTo, "line", 0, "col", 36)

	expand := handler.NewAction(emacs.ActionDabbrevExpand)
	expand.Count = 2
	require.True(t, f.d.Dispatch(context.Background(), expand).IsOK())
	require.Equal(t, "function foo() { return foobar; } foo", ed.Text())

	res := f.run(t, editorhandler.ActionUndo)
	require.True(t, res.IsOK())
	assert.Equal(t, 1, res.GetDataInt("steps"))
	assert.Equal(t, "function foo() { return foobar; } fo", ed.Text())
	assert.Equal(t, buffer.Point{Line: 0, Column: 36}, ed.ActivePosition())

	res = f.run(t, editorhandler.ActionUndo)
	assert.Equal(t, handler.StatusNoOp, res.Status)
	assert.Equal(t, editorhandler.MsgNothingToUndo, res.Message)

	require.True(t, f.run(t, editorhandler.ActionRedo).IsOK())
	assert.Equal(t, "function foo() { return foobar; } foo", ed.Text())

	// Undo moved the cursor off the expansion, so the next trigger is fresh.
	require.True(t, f.run(t, editorhandler.ActionUndo).IsOK())
	res = f.run(t, emacs.ActionDabbrevExpand)
	assert.Equal(t, string(dabbrev.OutcomeExpanded), res.GetDataString(emacs.DataOutcome))
	assert.Equal(t, "function foo() { return foobar; } foobar", ed.Text())
}

func TestDispatchRepeatedInsertIsOneUndoUnit(t *testing.T) {
	f := newFixture(t)
	ed := f.open("")

	insert := handler.NewAction(editorhandler.ActionInsert).WithArg(editorhandler.ArgText, "ab")
	insert.Count = 3
	require.True(t, f.d.Dispatch(context.Background(), insert).IsOK())
	assert.Equal(t, "ababab", ed.Text())
	assert.Equal(t, 1, ed.Document().History().UndoCount())

	undo := handler.NewAction(editorhandler.ActionUndo)
	undo.Count = 5
	res := f.d.Dispatch(context.Background(), undo)
	require.True(t, res.IsOK())
	assert.Equal(t, 1, res.GetDataInt("steps"))
	assert.Empty(t, ed.Text())

	require.True(t, f.run(t, editorhandler.ActionRedo).IsOK())
	assert.Equal(t, "ababab", ed.Text())
	assert.Equal(t, editorhandler.MsgNothingToRedo, f.run(t, editorhandler.ActionRedo).Message)
}

func TestDispatchSaveScratch(t *testing.T) {
	f := newFixture(t)
	f.open("scratch")

	res := f.run(t, editorhandler.ActionSave)
	assert.ErrorIs(t, res.Error, workspace.ErrScratchDocument)
}

func TestDispatchCursorCount(t *testing.T) {
	f := newFixture(t)
	ed := f.open("abcdef\nxyz")

	res := f.d.Dispatch(context.Background(), handler.Action{Name: cursorhandler.ActionMoveRight, Count: 4})
	require.True(t, res.IsOK())
	assert.Equal(t, buffer.Point{Line: 0, Column: 4}, ed.ActivePosition())

	f.run(t, cursorhandler.ActionMoveDown)
	assert.Equal(t, buffer.Point{Line: 1, Column: 3}, ed.ActivePosition())

	assert.Equal(t, handler.StatusNoOp, f.run(t, cursorhandler.ActionMoveDown).Status)
	assert.True(t, f.run(t, cursorhandler.ActionMoveTo).IsError())
}

func TestDispatchUnknownAction(t *testing.T) {
	f := newFixture(t)

	res := f.run(t, "nothing.here")
	assert.ErrorIs(t, res.Error, dispatcher.ErrNoHandler)

	res = f.d.Dispatch(context.Background(), handler.Action{})
	assert.ErrorIs(t, res.Error, dispatcher.ErrInvalidAction)

	assert.True(t, f.d.CanDispatch(emacs.ActionDabbrevExpand))
	assert.False(t, f.d.CanDispatch("emacs.unknown"))
}

func TestDispatchRecoversPanic(t *testing.T) {
	f := newFixture(t)
	f.d.RegisterHandlerFunc("test.panic", func(handler.Action, *execctx.ExecutionContext) handler.Result {
		panic("boom")
	})

	res := f.run(t, "test.panic")
	require.True(t, res.IsError())
	assert.True(t, errors.Is(res.Error, dispatcher.ErrPanic))
	assert.Equal(t, uint64(1), f.d.Metrics().PanicCount("test.panic"))
}

func TestDispatchRegistryFallback(t *testing.T) {
	f := newFixture(t)
	f.d.RegisterHandlerFunc("custom", func(_ handler.Action, ctx *execctx.ExecutionContext) handler.Result {
		return handler.Success().WithData("count", ctx.GetCount())
	})

	res := f.d.Dispatch(context.Background(), handler.Action{Name: "custom", Count: 1 << 20})
	require.True(t, res.IsOK())
	assert.Equal(t, dispatcher.DefaultConfig().MaxRepeatCount, res.GetDataInt("count"))
}
