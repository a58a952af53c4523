// Package fsm implements a policy-parameterised, thread-aware,
// hierarchical-state DFA executor: a typed event alphabet, guard-carrying
// transitions, argument-forwarding state handlers, watchdog integration,
// and validity checking (determinism: no state and ancestor both claim
// a row for the same symbol; a missing row is not reported).
//
// A minimal traffic light:
//
//	green := fsm.NewState(fsm.WithHandler(function.FromVoid(func(args ...interface{}) {})))
//	yellow := fsm.NewState(fsm.WithHandler(function.FromVoid(func(args ...interface{}) {})))
//	red := fsm.NewState(fsm.WithHandler(function.FromVoid(func(args ...interface{}) {})))
//
//	e := fsm.New(fsm.DefaultPolicy())
//	e.AddStates([]fsm.State{green, yellow, red})
//	e.AddTransition(green.ID(), fsm.NewTransition(tick, yellow.ID()))
//	e.AddTransition(yellow.ID(), fsm.NewTransition(tick, red.ID()))
//	e.AddTransition(red.ID(), fsm.NewTransition(tick, green.ID()))
//	e.SetStartState(green.ID())
//	e.SetErrorState(green.ID())
//	e.AddStopState(red.ID())
//
//	e.Start(true)
//	e.Raise(tick)
//	e.Step()
//
// A driver loop calls Step repeatedly; each call resets the configured
// Watchdog and executes at most one queued event.
package fsm
