package events

// Predicate matches events. Used for subscriptions and one-shot waiters.
type Predicate func(Event) bool

// Any matches every event.
func Any() Predicate {
	return func(Event) bool { return true }
}

// IsType matches events of one type.
func IsType(t Type) Predicate {
	return func(e Event) bool { return e.Type == t }
}

// ForCorrelation matches events carrying the given correlation id.
func ForCorrelation(correlationID string) Predicate {
	return func(e Event) bool { return e.CorrelationID == correlationID }
}

// TypeForCorrelation matches one event type with one correlation id.
func TypeForCorrelation(t Type, correlationID string) Predicate {
	return func(e Event) bool {
		return e.Type == t && e.CorrelationID == correlationID
	}
}

// Or matches when any of the given predicates match.
func Or(preds ...Predicate) Predicate {
	return func(e Event) bool {
		for _, p := range preds {
			if p(e) {
				return true
			}
		}
		return false
	}
}

// Terminal matches the first outcome event of a command: anything with the
// command's correlation id other than the started marker. Host applications
// use this to await a dispatched command's result.
func Terminal(correlationID string) Predicate {
	return func(e Event) bool {
		return e.CorrelationID == correlationID && e.Type != TypeCommandStarted
	}
}
