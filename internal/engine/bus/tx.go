package bus

import (
	"context"

	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/selectors"
	"go-dash/internal/engine/store"
)

// Tx is the handler's window onto the engine for one command: read access
// through selectors, atomic commits, ordered event emission and chained
// dispatch. A Tx is only valid on the worker goroutine for the duration of
// its handler.
type Tx struct {
	d   *Dispatcher
	cmd cmds.Command
}

// Command returns the command being processed.
func (tx *Tx) Command() cmds.Command { return tx.cmd }

// View exposes the memoized selectors over current state.
func (tx *Tx) View() *selectors.View { return tx.d.view }

// Commit applies the action batch as one atomic state transition.
// Multi-step structural edits belong in a single Commit call so no
// intermediate state is ever observable.
func (tx *Tx) Commit(actions ...store.Action) {
	tx.d.store.Commit(actions...)
}

// CommitUndoable commits and records the inverse batch on the undo ledger.
func (tx *Tx) CommitUndoable(actions ...store.Action) {
	tx.d.store.CommitUndoable(string(tx.cmd.CommandType()), tx.cmd.Correlation(), actions...)
}

// Undo rolls back up to count undoable commits, most recent first.
func (tx *Tx) Undo(count int) []store.UndoEntry {
	return tx.d.store.Undo(count)
}

// Emit publishes an event stamped with the command's correlation id.
// Handlers emit only after their commit, never before.
func (tx *Tx) Emit(t events.Type, payload interface{}) {
	tx.d.events.Emit(events.Event{
		Type:          t,
		CorrelationID: tx.cmd.Correlation(),
		Timestamp:     tx.d.now(),
		Payload:       payload,
	})
}

// Dispatch queues a follow-up command. The chained handler runs only after
// the current handler (and the listener callbacks of its events) finish;
// it is validated independently like any other command.
func (tx *Tx) Dispatch(ctx context.Context, cmd cmds.Command) {
	tx.d.Dispatch(ctx, cmd)
}
