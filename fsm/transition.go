package fsm

import "github.com/fluxorio/iotfsm/function"

// Transition pairs an input symbol with a destination state and an
// optional guard predicate.
//
// Guards are advisory: the engine's Step does not consult HasGuard or
// EvaluateGuard before advancing. They are stored and evaluable for callers building
// their own veto logic — e.g. from within a destination handler — but
// validity checking and Accept use only the (state, event) key, not
// the guard. This mirrors the donor engine's behaviour rather than
// silently changing it; see DESIGN.md for the reasoning.
type Transition struct {
	Event EventSymbol
	Next  StateId
	Guard function.Invocable
}

// NewTransition builds an unguarded transition.
func NewTransition(event EventSymbol, next StateId) Transition {
	return Transition{Event: event, Next: next}
}

// WithGuard returns a copy of t with the given guard installed.
func (t Transition) WithGuard(guard function.Invocable) Transition {
	t.Guard = guard
	return t
}

// HasGuard reports whether a guard is installed.
func (t Transition) HasGuard() bool { return t.Guard.Valid() }

// EvaluateGuard invokes the guard, forwarding args. Behaviour is
// undefined if called when HasGuard is false — callers must check
// first, per the spec's contract for this operation.
func (t Transition) EvaluateGuard(args ...interface{}) bool {
	return t.Guard.Invoke(args...)
}

// EqualsEvent reports whether the transition is keyed on event,
// ignoring its destination and guard.
func (t Transition) EqualsEvent(event EventSymbol) bool { return t.Event == event }

// Valid reports whether the transition has a non-zero destination and
// a non-zero triggering symbol.
func (t Transition) Valid() bool { return t.Next != 0 && t.Event != 0 }
