package fsm

import "fmt"

// The Err-suffixed methods below wrap the bool-returning operations with
// a reason, for callers that want more than a bare boolean — the
// donor's dual style of a plain setter plus a richer error path
// (pkg/statemachine's StateMachineError/ErrorCode). They never change
// engine state beyond what the bool-returning call already does; they
// only add context to a failure.

// AddStateErr is AddState, returning a sentinel error instead of false.
func (e *Engine) AddStateErr(s State) error {
	if !e.AddState(s) {
		return fmt.Errorf("%w: id %d", ErrDuplicateState, s.ID())
	}
	return nil
}

// AddTransitionErr is AddTransition, returning a sentinel error instead
// of false.
func (e *Engine) AddTransitionErr(state StateId, tr Transition) error {
	e.mu.Lock()
	known := e.states.Contains(state)
	e.mu.Unlock()
	if !known {
		return fmt.Errorf("%w: state %d", ErrUnknownState, state)
	}
	if !e.AddTransition(state, tr) {
		return fmt.Errorf("%w: (state %d, event %d)", ErrDuplicateTransition, state, tr.Event)
	}
	return nil
}

// SetErrorStateErr is SetErrorState, returning a sentinel error instead
// of false.
func (e *Engine) SetErrorStateErr(id StateId) error {
	if !e.SetErrorState(id) {
		return fmt.Errorf("%w: id %d", ErrUnknownState, id)
	}
	return nil
}

// StartErr is Start, returning ErrInvalidAutomaton instead of a bare
// false when check rejects the automaton.
func (e *Engine) StartErr(check bool) error {
	if !e.Start(check) {
		return ErrInvalidAutomaton
	}
	return nil
}

// RaiseErr is Raise, returning ErrNotAccepted instead of false.
func (e *Engine) RaiseErr(event EventSymbol, args ...interface{}) error {
	if !e.Raise(event, args...) {
		return fmt.Errorf("%w: event %d", ErrNotAccepted, event)
	}
	return nil
}

// TransitionErr is Transition, distinguishing a rejected-reentrant call
// from a merely unacceptable event.
func (e *Engine) TransitionErr(event EventSymbol, args ...interface{}) error {
	if e.inTransition {
		return ErrReentrantTransition
	}
	if !e.Transition(event, args...) {
		return fmt.Errorf("%w: event %d", ErrNotAccepted, event)
	}
	return nil
}

// StopErr is Stop, returning ErrStopTimedOut instead of false.
func (e *Engine) StopErr(wait bool) error {
	if !e.Stop(wait) {
		return ErrStopTimedOut
	}
	return nil
}
