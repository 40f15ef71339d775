package event

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/dabbrev/internal/event/topic"
	"github.com/dshills/dabbrev/internal/logger"
)

// Handler receives events whose topic matches a subscription pattern.
type Handler func(ctx context.Context, env Envelope) error

// Subscription identifies a registered handler.
type Subscription struct {
	ID      string
	Pattern topic.Topic
	handler Handler
}

// Bus delivers events synchronously, in subscription order, on the
// publisher's goroutine. Handlers may publish or subscribe re-entrantly.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription
	log  *logger.Logger
}

// NewBus creates an empty bus. A nil logger discards handler failures.
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Null()
	}
	return &Bus{log: log.WithComponent("event")}
}

// Subscribe registers h for every topic matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, h Handler) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}
	if h == nil {
		return nil, ErrNilHandler
	}

	sub := &Subscription{ID: uuid.NewString(), Pattern: pattern, handler: h}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.ID == sub.ID {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers ev to every matching subscriber. Every handler runs even
// if an earlier one fails; the failures are joined in the returned error.
func Publish[T any](ctx context.Context, b *Bus, ev Event[T]) error {
	if !ev.Type.IsValid() || ev.Type.IsWildcard() {
		return ErrInvalidTopic
	}
	return b.deliver(ctx, ev.envelope())
}

func (b *Bus) deliver(ctx context.Context, env Envelope) error {
	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if env.Topic.Matches(s.Pattern) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range targets {
		if err := b.invoke(ctx, s, env); err != nil {
			b.log.WithField("subscription", s.ID).Warn("handler failed for %s: %v", env.Topic, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) invoke(ctx context.Context, s *Subscription, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{SubscriptionID: s.ID, Topic: env.Topic.String(), Value: r}
		}
	}()

	if herr := s.handler(ctx, env); herr != nil {
		return &HandlerError{SubscriptionID: s.ID, Topic: env.Topic.String(), Err: herr}
	}
	return nil
}

// SubscribeTo registers a handler that only sees payloads of type T.
// Events on matching topics carrying other payload types are skipped.
func SubscribeTo[T any](b *Bus, pattern topic.Topic, fn func(ctx context.Context, ev Event[T]) error) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, func(ctx context.Context, env Envelope) error {
		payload, ok := env.Payload.(T)
		if !ok {
			return nil
		}
		return fn(ctx, Event[T]{Type: env.Topic, Payload: payload, Metadata: env.Metadata})
	})
}
