package store

import (
	"sync"
)

// UndoEntry pairs one committed action batch with the inverse batch that
// rolls it back, plus the command that caused it. Entries are popped in
// LIFO order.
type UndoEntry struct {
	CommandType   string
	CorrelationID string
	applied       []Action
	inverse       []Action
}

// Store holds the current state snapshot and the undo ledger. All writes go
// through Commit/CommitUndoable; the dispatcher serializes callers, the
// internal mutex additionally protects concurrent snapshot readers.
type Store struct {
	mu    sync.RWMutex
	state State
	rev   uint64
	undo  []UndoEntry
}

func New() *Store {
	return &Store{state: newState()}
}

// Snapshot returns the current state and its revision. The returned state
// is immutable; holders may read it at any time without locking.
func (s *Store) Snapshot() (State, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.rev
}

// Revision returns the current state revision without copying state.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// Commit applies the action batch atomically: the whole batch becomes
// visible as a single revision bump, so no reader ever observes a state
// between two actions of one batch.
func (s *Store) Commit(actions ...Action) {
	s.commit("", "", false, actions)
}

// CommitUndoable behaves like Commit and additionally records an undo
// entry. Every action in the batch must be invertible.
func (s *Store) CommitUndoable(commandType, correlationID string, actions ...Action) {
	s.commit(commandType, correlationID, true, actions)
}

func (s *Store) commit(commandType, correlationID string, undoable bool, actions []Action) {
	if len(actions) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.copyForCommit()
	var inverse []Action
	resetLedger := false

	for _, a := range actions {
		if undoable {
			inv, ok := invert(&next, a)
			invariant(ok, "action %T is not invertible", a)
			// Prepend so the inverse batch rolls back in reverse order.
			inverse = append([]Action{inv}, inverse...)
		}
		if _, ok := a.(SetDashboard); ok {
			resetLedger = true
		}
		apply(&next, a)
	}

	s.state = next
	s.rev++

	if resetLedger {
		s.undo = nil
	} else if undoable {
		s.undo = append(s.undo, UndoEntry{
			CommandType:   commandType,
			CorrelationID: correlationID,
			applied:       actions,
			inverse:       inverse,
		})
	}
}

// UndoDepth reports how many commits can currently be rolled back.
func (s *Store) UndoDepth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.undo)
}

// Undo rolls back up to count undoable commits in LIFO order and returns
// the entries that were undone, most recent first.
func (s *Store) Undo(count int) []UndoEntry {
	if count <= 0 {
		count = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return nil
	}
	if count > len(s.undo) {
		count = len(s.undo)
	}

	undone := make([]UndoEntry, 0, count)
	next := s.state.copyForCommit()
	for i := 0; i < count; i++ {
		entry := s.undo[len(s.undo)-1]
		s.undo = s.undo[:len(s.undo)-1]
		for _, a := range entry.inverse {
			apply(&next, a)
		}
		undone = append(undone, entry)
	}
	s.state = next
	s.rev++
	return undone
}
