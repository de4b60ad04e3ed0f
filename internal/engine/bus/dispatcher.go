package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/selectors"
	"go-dash/internal/engine/store"
)

// HandlerFunc is the logic bound to one command type. It validates against
// current state, optionally awaits backend calls, commits store actions and
// emits events through the transaction. A returned UserError or plain error
// becomes a COMMAND.FAILED event; a panic propagates, by design, because it
// signals a programmer error.
type HandlerFunc func(ctx context.Context, tx *Tx) error

type work struct {
	ctx      context.Context
	cmd      cmds.Command
	internal func(ctx context.Context, tx *Tx)
}

// Dispatcher is the command bus. All commands — external dispatches and
// chained dispatches from event listeners alike — go through one FIFO queue
// drained by a single worker goroutine, so a handler's synchronous section
// never interleaves with another handler's. Store commits are therefore
// observed as atomic by everyone.
type Dispatcher struct {
	store  *store.Store
	view   *selectors.View
	events *EventBus
	log    *zap.Logger

	handlers map[cmds.Type]HandlerFunc

	mu    sync.Mutex
	queue []work
	wake  chan struct{}
}

func NewDispatcher(st *store.Store, view *selectors.View, eb *EventBus, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:    st,
		view:     view,
		events:   eb,
		log:      log,
		handlers: make(map[cmds.Type]HandlerFunc),
		wake:     make(chan struct{}, 1),
	}
}

// Register binds a handler to a command type. Double registration is a
// programmer error.
func (d *Dispatcher) Register(t cmds.Type, h HandlerFunc) {
	if _, dup := d.handlers[t]; dup {
		panic(fmt.Sprintf("bus: handler for %s already registered", t))
	}
	d.handlers[t] = h
}

// Dispatch enqueues a command. It is fire-and-forget: outcomes are observed
// through the event bus. Dispatching a type with no registered handler
// panics immediately — that is a broken caller, not a recoverable
// condition.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd cmds.Command) {
	if _, ok := d.handlers[cmd.CommandType()]; !ok {
		panic(fmt.Sprintf("bus: no handler registered for command %s", cmd.CommandType()))
	}
	d.push(work{ctx: ctx, cmd: cmd})
}

// DispatchAndWait dispatches and blocks until the first outcome event for
// the command's correlation id arrives. The command must carry a
// correlation id.
func (d *Dispatcher) DispatchAndWait(ctx context.Context, cmd cmds.Command) (events.Event, error) {
	if cmd.Correlation() == "" {
		return events.Event{}, fmt.Errorf("bus: DispatchAndWait requires a correlation id")
	}

	ch := make(chan events.Event, 1)
	unsub := d.events.Subscribe(events.Terminal(cmd.Correlation()), func(e events.Event) {
		select {
		case ch <- e:
		default:
		}
	})
	defer unsub()

	d.Dispatch(ctx, cmd)

	select {
	case e := <-ch:
		return e, nil
	case <-ctx.Done():
		return events.Event{}, ctx.Err()
	}
}

// EnqueueInternal schedules a function to run on the worker goroutine with
// a transaction bound to the given originating command. Long-running
// workflow coordinators use this to commit their state transitions without
// ever touching the store from their own goroutine.
func (d *Dispatcher) EnqueueInternal(ctx context.Context, cmd cmds.Command, fn func(ctx context.Context, tx *Tx)) {
	d.push(work{ctx: ctx, cmd: cmd, internal: fn})
}

func (d *Dispatcher) push(w work) {
	d.mu.Lock()
	d.queue = append(d.queue, w)
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) pop() (work, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return work{}, false
	}
	w := d.queue[0]
	d.queue = d.queue[1:]
	return w, true
}

// Run drains the queue until ctx is cancelled. Exactly one Run must be
// active per dispatcher.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		w, ok := d.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-d.wake:
				continue
			}
		}
		d.process(w)
	}
}

func (d *Dispatcher) process(w work) {
	tx := &Tx{d: d, cmd: w.cmd}

	if w.internal != nil {
		w.internal(w.ctx, tx)
		return
	}

	cmdType := string(w.cmd.CommandType())
	d.log.Debug("processing command",
		zap.String("type", cmdType),
		zap.String("correlationId", w.cmd.Correlation()))

	tx.Emit(events.TypeCommandStarted, events.CommandStarted{CommandType: cmdType})

	handler := d.handlers[w.cmd.CommandType()]
	if err := handler(w.ctx, tx); err != nil {
		reason := events.ReasonInternal
		if IsUserError(err) {
			reason = events.ReasonUserError
		}
		d.log.Warn("command failed",
			zap.String("type", cmdType),
			zap.String("reason", string(reason)),
			zap.Error(err))
		tx.Emit(events.TypeCommandFailed, events.CommandFailed{
			CommandType: cmdType,
			Reason:      reason,
			Message:     err.Error(),
		})
	}
}

func (d *Dispatcher) now() time.Time { return time.Now().UTC() }
