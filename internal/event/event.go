package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/dabbrev/internal/event/topic"
)

// Event is a typed notification published on the bus.
// Events are immutable once created.
type Event[T any] struct {
	// Type is the hierarchical event type (e.g., "cursor.selection.changed").
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string

	// CausationID links to the event or command that caused this one.
	CausationID string
}

// NewEvent creates a new event with the given type and payload.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// WithCausation returns a copy of the event with a causation ID set.
func (e Event[T]) WithCausation(causationID string) Event[T] {
	e.Metadata.CausationID = causationID
	return e
}

// Envelope is the type-erased form handed to subscribers.
type Envelope struct {
	Topic    topic.Topic
	Payload  any
	Metadata Metadata
}

func (e Event[T]) envelope() Envelope {
	return Envelope{Topic: e.Type, Payload: e.Payload, Metadata: e.Metadata}
}
