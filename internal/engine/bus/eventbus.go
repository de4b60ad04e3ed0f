package bus

import (
	"context"
	"sync"

	"go-dash/internal/engine/events"
)

type subscription struct {
	id   int
	pred events.Predicate
	fn   func(events.Event)
}

// EventBus pushes events to listeners in strict emission order. Listener
// registration and deregistration never affect an emission already in
// flight: each emission works on a snapshot of the listener list.
type EventBus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for events matching pred. The returned
// function removes the listener; calling it more than once is harmless.
func (b *EventBus) Subscribe(pred events.Predicate, fn func(events.Event)) func() {
	if pred == nil {
		pred = events.Any()
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, pred: pred, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers the event to all currently registered listeners, in
// registration order, on the calling goroutine.
func (b *EventBus) Emit(e events.Event) {
	b.mu.Lock()
	snapshot := make([]subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		if s.pred(e) {
			s.fn(e)
		}
	}
}

// WaitFor blocks until an event matching pred is emitted or the context is
// done. This is the primary way callers observe asynchronous command
// outcomes without polling state.
func (b *EventBus) WaitFor(ctx context.Context, pred events.Predicate) (events.Event, error) {
	ch := make(chan events.Event, 1)
	var once sync.Once
	unsub := b.Subscribe(pred, func(e events.Event) {
		once.Do(func() { ch <- e })
	})
	defer unsub()

	select {
	case e := <-ch:
		return e, nil
	case <-ctx.Done():
		return events.Event{}, ctx.Err()
	}
}
