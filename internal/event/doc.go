// Package event is the in-process notification bus.
//
// Components publish typed events under dot-separated topics and subscribe
// with exact names or wildcard patterns (see package topic). Delivery is
// synchronous: Publish returns after every matching handler has run, so an
// editor that publishes a selection change observes all reactions to it
// before its own call returns.
//
//	sub, _ := event.SubscribeTo(bus, event.TopicSelectionChanged,
//	    func(ctx context.Context, ev event.Event[event.SelectionChanged]) error {
//	        engine.OnSelectionChanged(ev.Payload.EditorID, ev.Payload.Position())
//	        return nil
//	    })
//	defer bus.Unsubscribe(sub)
//
// Handler panics are recovered and reported as *PanicError.
package event
