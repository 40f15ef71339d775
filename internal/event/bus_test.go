package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/dabbrev/internal/engine/cursor"
	"github.com/dshills/dabbrev/internal/event/topic"
)

func selectionEvent(editor string, line, col uint32) Event[SelectionChanged] {
	sel := cursor.NewCursorSelection(cursor.Point{Line: line, Column: col})
	return NewEvent(TopicSelectionChanged, SelectionChanged{EditorID: editor, Selection: sel}, "test")
}

func TestNewEventMetadata(t *testing.T) {
	a := selectionEvent("e1", 0, 0)
	b := selectionEvent("e1", 0, 0)

	assert.NotEmpty(t, a.Metadata.ID)
	assert.NotEqual(t, a.Metadata.ID, b.Metadata.ID)
	assert.Equal(t, "test", a.Metadata.Source)
	assert.False(t, a.Metadata.Timestamp.IsZero())
	assert.Equal(t, "cmd-1", a.WithCausation("cmd-1").Metadata.CausationID)
	assert.Empty(t, a.Metadata.CausationID)
}

func TestBusDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewBus(nil)
	var exact, wildcard, other int

	_, err := bus.Subscribe(TopicSelectionChanged, func(context.Context, Envelope) error { exact++; return nil })
	require.NoError(t, err)
	_, err = bus.Subscribe("cursor.**", func(context.Context, Envelope) error { wildcard++; return nil })
	require.NoError(t, err)
	_, err = bus.Subscribe(TopicConfigReloaded, func(context.Context, Envelope) error { other++; return nil })
	require.NoError(t, err)

	require.NoError(t, Publish(context.Background(), bus, selectionEvent("e1", 1, 2)))

	assert.Equal(t, 1, exact)
	assert.Equal(t, 1, wildcard)
	assert.Equal(t, 0, other)
}

func TestSubscribeToFiltersPayloadType(t *testing.T) {
	bus := NewBus(nil)
	var got []SelectionChanged

	_, err := SubscribeTo(bus, "**", func(_ context.Context, ev Event[SelectionChanged]) error {
		got = append(got, ev.Payload)
		return nil
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, Publish(ctx, bus, selectionEvent("e1", 3, 4)))
	require.NoError(t, Publish(ctx, bus, NewEvent(TopicConfigReloaded, ConfigReloaded{Path: "x.toml"}, "test")))

	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].EditorID)
	assert.Equal(t, cursor.Point{Line: 3, Column: 4}, got[0].Position())
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	sub, err := bus.Subscribe(TopicSelectionChanged, func(context.Context, Envelope) error { calls++; return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, bus.SubscriberCount())

	require.NoError(t, bus.Unsubscribe(sub))
	assert.ErrorIs(t, bus.Unsubscribe(sub), ErrSubscriptionNotFound)
	assert.Equal(t, 0, bus.SubscriberCount())

	require.NoError(t, Publish(context.Background(), bus, selectionEvent("e1", 0, 0)))
	assert.Equal(t, 0, calls)
}

func TestBusHandlerFailuresAreJoined(t *testing.T) {
	bus := NewBus(nil)
	boom := errors.New("boom")
	reached := false

	_, _ = bus.Subscribe(TopicSelectionChanged, func(context.Context, Envelope) error { return boom })
	_, _ = bus.Subscribe(TopicSelectionChanged, func(context.Context, Envelope) error { panic("bad handler") })
	_, _ = bus.Subscribe(TopicSelectionChanged, func(context.Context, Envelope) error { reached = true; return nil })

	err := Publish(context.Background(), bus, selectionEvent("e1", 0, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.True(t, reached, "later handlers must still run")

	var herr *HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, string(TopicSelectionChanged), herr.Topic)
}

func TestBusReentrantPublish(t *testing.T) {
	bus := NewBus(nil)
	var order []string

	_, _ = bus.Subscribe(TopicContentReplaced, func(ctx context.Context, _ Envelope) error {
		order = append(order, "content")
		return Publish(ctx, bus, selectionEvent("e1", 0, 1))
	})
	_, _ = bus.Subscribe(TopicSelectionChanged, func(context.Context, Envelope) error {
		order = append(order, "selection")
		return nil
	})

	err := Publish(context.Background(), bus, NewEvent(TopicContentReplaced, ContentReplaced{EditorID: "e1"}, "test"))
	require.NoError(t, err)
	assert.Equal(t, []string{"content", "selection"}, order)
}

func TestBusRejectsInvalidInput(t *testing.T) {
	bus := NewBus(nil)

	_, err := bus.Subscribe("", func(context.Context, Envelope) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidTopic)

	_, err = bus.Subscribe(TopicSelectionChanged, nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	err = Publish(context.Background(), bus, NewEvent[int](topic.Topic("cursor.*"), 1, "test"))
	assert.ErrorIs(t, err, ErrInvalidTopic)
}
