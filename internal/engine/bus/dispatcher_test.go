package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/selectors"
	"go-dash/internal/engine/store"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *EventBus, context.CancelFunc) {
	t.Helper()
	st := store.New()
	view := selectors.New(st)
	eb := NewEventBus()
	d := NewDispatcher(st, view, eb, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)
	return d, eb, cancel
}

func TestEventBusDeliversInRegistrationOrder(t *testing.T) {
	eb := NewEventBus()
	var seen []string
	eb.Subscribe(events.Any(), func(events.Event) { seen = append(seen, "first") })
	eb.Subscribe(events.Any(), func(events.Event) { seen = append(seen, "second") })

	eb.Emit(events.Event{Type: events.TypeDashboardRenamed})

	if len(seen) != 2 || seen[0] != "first" || seen[1] != "second" {
		t.Errorf("delivery order = %v, want [first second]", seen)
	}
}

func TestEventBusPredicateFilters(t *testing.T) {
	eb := NewEventBus()
	var matched int
	eb.Subscribe(events.IsType(events.TypeDashboardSaved), func(events.Event) { matched++ })

	eb.Emit(events.Event{Type: events.TypeDashboardRenamed})
	eb.Emit(events.Event{Type: events.TypeDashboardSaved})
	eb.Emit(events.Event{Type: events.TypeDashboardSaved, CorrelationID: "c1"})

	if matched != 2 {
		t.Errorf("matched = %d, want 2", matched)
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	eb := NewEventBus()
	var count int
	unsub := eb.Subscribe(events.Any(), func(events.Event) { count++ })

	eb.Emit(events.Event{Type: events.TypeDashboardSaved})
	unsub()
	unsub() // second call is a no-op
	eb.Emit(events.Event{Type: events.TypeDashboardSaved})

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestEventBusWaitFor(t *testing.T) {
	eb := NewEventBus()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go eb.Emit(events.Event{Type: events.TypeDashboardSaved, CorrelationID: "c1"})

	e, err := eb.WaitFor(ctx, events.TypeForCorrelation(events.TypeDashboardSaved, "c1"))
	if err != nil {
		t.Fatalf("WaitFor() error = %v", err)
	}
	if e.Type != events.TypeDashboardSaved {
		t.Errorf("event type = %s, want %s", e.Type, events.TypeDashboardSaved)
	}
}

func TestEventBusWaitForContextDone(t *testing.T) {
	eb := NewEventBus()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := eb.WaitFor(ctx, events.Any())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitFor() error = %v, want deadline exceeded", err)
	}
}

func TestDispatchEmitsStartedBeforeHandlerEvents(t *testing.T) {
	d, eb, cancel := newTestDispatcher(t)
	defer cancel()

	d.Register(cmds.TypeRenameDashboard, func(ctx context.Context, tx *Tx) error {
		tx.Emit(events.TypeDashboardRenamed, events.DashboardRenamed{Title: "new"})
		return nil
	})

	var order []events.Type
	done := make(chan struct{})
	eb.Subscribe(events.ForCorrelation("c1"), func(e events.Event) {
		order = append(order, e.Type)
		if e.Type == events.TypeDashboardRenamed {
			close(done)
		}
	})

	d.Dispatch(context.Background(), cmds.RenameDashboard{Meta: cmds.Meta{CorrelationID: "c1"}, Title: "new"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for events")
	}
	if len(order) != 2 || order[0] != events.TypeCommandStarted || order[1] != events.TypeDashboardRenamed {
		t.Errorf("event order = %v, want [started renamed]", order)
	}
}

func TestDispatchAndWaitReturnsTerminalEvent(t *testing.T) {
	d, _, cancel := newTestDispatcher(t)
	defer cancel()

	d.Register(cmds.TypeRenameDashboard, func(ctx context.Context, tx *Tx) error {
		tx.Emit(events.TypeDashboardRenamed, events.DashboardRenamed{Title: "after"})
		return nil
	})

	ctx, cancelWait := context.WithTimeout(context.Background(), time.Second)
	defer cancelWait()

	e, err := d.DispatchAndWait(ctx, cmds.RenameDashboard{Meta: cmds.Meta{CorrelationID: "c1"}, Title: "after"})
	if err != nil {
		t.Fatalf("DispatchAndWait() error = %v", err)
	}
	if e.Type != events.TypeDashboardRenamed {
		t.Errorf("terminal event = %s, want %s", e.Type, events.TypeDashboardRenamed)
	}
}

func TestDispatchAndWaitRequiresCorrelation(t *testing.T) {
	d, _, cancel := newTestDispatcher(t)
	defer cancel()

	d.Register(cmds.TypeRenameDashboard, func(ctx context.Context, tx *Tx) error { return nil })

	if _, err := d.DispatchAndWait(context.Background(), cmds.RenameDashboard{Title: "x"}); err == nil {
		t.Error("expected error for command without correlation id")
	}
}

func TestHandlerErrorBecomesFailedEvent(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReason events.FailReason
	}{
		{name: "user error", err: UserErrorf("no such section"), wantReason: events.ReasonUserError},
		{name: "internal error", err: errors.New("backend unreachable"), wantReason: events.ReasonInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, cancel := newTestDispatcher(t)
			defer cancel()

			d.Register(cmds.TypeRenameDashboard, func(ctx context.Context, tx *Tx) error {
				return tt.err
			})

			ctx, cancelWait := context.WithTimeout(context.Background(), time.Second)
			defer cancelWait()

			e, err := d.DispatchAndWait(ctx, cmds.RenameDashboard{Meta: cmds.Meta{CorrelationID: "c1"}})
			if err != nil {
				t.Fatalf("DispatchAndWait() error = %v", err)
			}
			if e.Type != events.TypeCommandFailed {
				t.Fatalf("event type = %s, want %s", e.Type, events.TypeCommandFailed)
			}
			payload, ok := e.Payload.(events.CommandFailed)
			if !ok {
				t.Fatalf("payload type = %T, want CommandFailed", e.Payload)
			}
			if payload.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", payload.Reason, tt.wantReason)
			}
			if payload.Message != tt.err.Error() {
				t.Errorf("message = %q, want %q", payload.Message, tt.err.Error())
			}
		})
	}
}

func TestChainedDispatchRunsAfterCurrentHandler(t *testing.T) {
	d, eb, cancel := newTestDispatcher(t)
	defer cancel()

	d.Register(cmds.TypeRenameDashboard, func(ctx context.Context, tx *Tx) error {
		tx.Dispatch(ctx, cmds.SaveDashboard{Meta: cmds.Meta{CorrelationID: "c2"}})
		tx.Emit(events.TypeDashboardRenamed, events.DashboardRenamed{Title: "new"})
		return nil
	})
	d.Register(cmds.TypeSaveDashboard, func(ctx context.Context, tx *Tx) error {
		tx.Emit(events.TypeDashboardSaved, events.DashboardSaved{Version: 2})
		return nil
	})

	var order []events.Type
	done := make(chan struct{})
	eb.Subscribe(events.Or(
		events.IsType(events.TypeDashboardRenamed),
		events.IsType(events.TypeDashboardSaved),
	), func(e events.Event) {
		order = append(order, e.Type)
		if e.Type == events.TypeDashboardSaved {
			close(done)
		}
	})

	d.Dispatch(context.Background(), cmds.RenameDashboard{Meta: cmds.Meta{CorrelationID: "c1"}, Title: "new"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for chained command")
	}

	// The chained command's events must come after every event of the
	// originating handler.
	if len(order) != 2 || order[0] != events.TypeDashboardRenamed || order[1] != events.TypeDashboardSaved {
		t.Errorf("event order = %v, want renamed before saved", order)
	}
}

func TestDispatchUnregisteredPanics(t *testing.T) {
	d, _, cancel := newTestDispatcher(t)
	defer cancel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unregistered command type")
		}
	}()
	d.Dispatch(context.Background(), cmds.RenameDashboard{})
}

func TestIsUserError(t *testing.T) {
	if !IsUserError(UserErrorf("bad ref")) {
		t.Error("UserErrorf result not recognized")
	}
	if IsUserError(errors.New("plain")) {
		t.Error("plain error misclassified as user error")
	}
}
