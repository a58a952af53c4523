package fsm

import (
	"github.com/fluxorio/iotfsm/function"
	"github.com/fluxorio/iotfsm/internal/ids"
)

// State holds an identity, an optional parent (for hierarchical
// fall-through), and an optional handler invoked with the engine's
// forwarded argument pack on entry.
//
// Ids are generated at construction time from random bytes, never by
// the engine — two States built independently are expected to collide
// only as often as an 8-byte hash does, a probability the engine
// accepts as negligible rather than defending against.
type State struct {
	id      StateId
	parent  StateId
	handler function.Invocable
}

// StateOption configures a State at construction time.
type StateOption func(*State)

// WithParent marks the state as a child of parent, so the transition
// table falls through to parent's rows when the state has none of its
// own for a given symbol.
func WithParent(parent StateId) StateOption {
	return func(s *State) { s.parent = parent }
}

// WithHandler installs the invocable run on entry to this state. A
// state with no handler always reports failure when invoked, which is
// the engine's signal to drop to the error state.
func WithHandler(handler function.Invocable) StateOption {
	return func(s *State) { s.handler = handler }
}

// NewState constructs a State with a freshly generated id.
func NewState(opts ...StateOption) State {
	s := State{id: ids.New()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ID returns the state's generated identity.
func (s State) ID() StateId { return s.id }

// Parent returns the parent id, or zero if the state has none.
func (s State) Parent() StateId { return s.parent }

// HasParent reports whether the state has a parent.
func (s State) HasParent() bool { return s.parent != 0 }

// HasHandler reports whether an invocable is installed.
func (s State) HasHandler() bool { return s.handler.Valid() }

// Invoke forwards args to the handler. A bool-returning handler's
// result is returned verbatim (see function.FromVoid for adapting a
// void handler, which always reports success). A missing handler
// reports failure.
func (s State) Invoke(args ...interface{}) bool {
	return s.handler.Invoke(args...)
}

// IsZero reports whether s is the empty State returned by
// Engine.CurrentState when the engine isn't running.
func (s State) IsZero() bool { return s.id == 0 }
