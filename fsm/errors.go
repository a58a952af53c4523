package fsm

import "errors"

// Sentinel errors the Err-suffixed variants (errors_api.go) return,
// wrapped with context, when the matching bool-returning operation
// reports false. The bool-returning operations do not use them; the
// Err-suffixed variants exist for callers wanting a reason, following
// the donor's dual style of a bare setter plus a
// richer error path (pkg/statemachine's StateMachineError/ErrorCode).
var (
	ErrDuplicateState      = errors.New("fsm: state id already registered")
	ErrDuplicateTransition = errors.New("fsm: transition already registered for (state, event)")
	ErrUnknownState        = errors.New("fsm: state id not registered")
	ErrInvalidAutomaton    = errors.New("fsm: automaton failed validation")
	ErrNotAccepted         = errors.New("fsm: event not acceptable from current state")
	ErrReentrantTransition = errors.New("fsm: a handler-initiated transition is already in flight")
	ErrNotRunning          = errors.New("fsm: engine is not running")
	ErrStopTimedOut        = errors.New("fsm: stop(wait) did not observe a terminal state")
)
