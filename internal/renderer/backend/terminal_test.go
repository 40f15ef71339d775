package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimTerminal(t *testing.T, w, h int) *Terminal {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	term := NewTerminalWithScreen(screen)
	require.NoError(t, term.Init())
	screen.SetSize(w, h)
	t.Cleanup(term.Shutdown)
	return term
}

func TestTerminalContent(t *testing.T) {
	term := newSimTerminal(t, 10, 3)

	w, h := term.Size()
	assert.Equal(t, 10, w)
	assert.Equal(t, 3, h)

	term.SetContent(2, 1, 'x', Style{Bold: true})
	term.SetContent(50, 50, 'y', Style{})
	assert.Equal(t, 'x', term.Content(2, 1))
}

func TestTerminalPostAndPollKey(t *testing.T) {
	term := newSimTerminal(t, 10, 3)

	term.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: '/', Mod: ModAlt})
	ev := term.PollEvent()
	require.Equal(t, EventKey, ev.Type)
	assert.Equal(t, KeyRune, ev.Key)
	assert.Equal(t, '/', ev.Rune)
	assert.True(t, ev.Mod.Has(ModAlt))

	term.PostEvent(Event{Type: EventKey, Key: KeyLeft})
	ev = term.PollEvent()
	assert.Equal(t, KeyLeft, ev.Key)
}

func TestTerminalPollResize(t *testing.T) {
	term := newSimTerminal(t, 10, 3)

	require.NoError(t, term.screen.PostEvent(tcell.NewEventResize(40, 12)))
	ev := term.PollEvent()
	require.Equal(t, EventResize, ev.Type)
	assert.Equal(t, 40, ev.Width)
	assert.Equal(t, 12, ev.Height)
}

func TestConvertKey(t *testing.T) {
	assert.Equal(t, KeyEnter, convertKey(tcell.KeyEnter))
	assert.Equal(t, KeyTab, convertKey(tcell.KeyTab))
	assert.Equal(t, KeyBackspace, convertKey(tcell.KeyBackspace2))
	assert.Equal(t, KeyCtrlL, convertKey(tcell.KeyCtrlL))
	assert.Equal(t, KeyCtrlQ, convertKey(tcell.KeyCtrlQ))
	assert.Equal(t, tcell.KeyCtrlS, convertToTcellKey(KeyCtrlS))
	assert.Equal(t, 'l', KeyCtrlL.CtrlLetter())
	assert.Equal(t, rune(0), KeyEnter.CtrlLetter())
}

func TestConvertMod(t *testing.T) {
	m := convertMod(tcell.ModCtrl | tcell.ModMeta)
	assert.True(t, m.Has(ModCtrl))
	assert.True(t, m.Has(ModAlt))
	assert.False(t, m.Has(ModShift))
	assert.Equal(t, tcell.ModAlt|tcell.ModShift, convertToTcellMod(ModAlt|ModShift))
}
