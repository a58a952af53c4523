package fsm

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/fluxorio/iotfsm/containers"
	"github.com/fluxorio/iotfsm/diagnostics"
	"github.com/fluxorio/iotfsm/internal/corelog"
	"github.com/fluxorio/iotfsm/internal/ids"
	"github.com/fluxorio/iotfsm/threading"
	"github.com/fluxorio/iotfsm/watchdog"
)

// Engine is the hierarchical state machine: a set of registered states,
// a transition table keyed on (state, event) with parent fall-through,
// a FIFO event queue, and the lifecycle/status bookkeeping a host drives
// through Start, Step, and Stop.
//
// Every public method acquires mu, so an Engine built over a real
// threading.Policy is safe for concurrent callers. The exceptions are
// Transition, documented on its own declaration, and TransitionErr,
// which wraps it without locking either: they are reachable only
// from within a state handler, which already runs inside Step's
// critical section on the same goroutine.
type Engine struct {
	policy Policy
	table  *TransitionTable
	states containers.OrderedMap[StateId, State]

	stopStates []StateId
	startState StateId
	hasStart   bool
	errorState StateId
	hasError   bool

	current StateId
	status  Status
	events  containers.Deque[queuedEvent]

	inTransition bool

	mu   threading.Mutex
	stop threading.Cond

	watchdogTimeout time.Duration
	watchdog        watchdog.Watchdog
	diagnostics     diagnostics.Diagnostics
	logger          corelog.Logger
	silent          bool

	id string
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithWatchdog installs a watchdog the engine resets on every Step and
// enables (with timeout) on Start. Defaults to watchdog.NoOp.
func WithWatchdog(w watchdog.Watchdog) Option {
	return func(e *Engine) { e.watchdog = w }
}

// WithWatchdogTimeout sets the duration Start arms the watchdog with.
// Ignored if no real watchdog is installed.
func WithWatchdogTimeout(d time.Duration) Option {
	return func(e *Engine) { e.watchdogTimeout = d }
}

// WithDiagnostics installs the sink Step reports transitions and faults
// to. Defaults to nil, which Step treats as "report nothing."
func WithDiagnostics(d diagnostics.Diagnostics) Option {
	return func(e *Engine) { e.diagnostics = d }
}

// WithLogger overrides the engine's corelog.Logger. Defaults to
// corelog.New().
func WithLogger(l corelog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSilent suppresses the engine's own Warn/Error log lines (sinks
// installed via WithDiagnostics still observe faults). Useful for tests
// that deliberately exercise invalid configurations.
func WithSilent(silent bool) Option {
	return func(e *Engine) { e.silent = silent }
}

// New builds an Engine with no registered states. A nil policy falls
// back to DefaultPolicy.
func New(policy Policy, opts ...Option) *Engine {
	if policy == nil {
		policy = DefaultPolicy()
	}
	threadPolicy := threading.NoOp()
	if ta, ok := policy.(ThreadingAware); ok {
		threadPolicy = ta.Threading()
	}
	mu := threadPolicy.NewMutex()
	e := &Engine{
		policy:          policy,
		table:           NewTransitionTable(policy),
		states:          policy.NewStateRegistry(),
		events:          policy.NewEventQueue(),
		status:          StatusStopped,
		mu:              mu,
		stop:            threadPolicy.NewCond(mu),
		watchdogTimeout: 5 * time.Second,
		watchdog:        watchdog.NoOp(),
		logger:          corelog.New(),
		id:              fmt.Sprintf("%016x", ids.New()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns the engine's generated identity, the value diagnostics
// Records carry as EngineID.
func (e *Engine) ID() string { return e.id }

// AddState registers s. It reports whether the id was previously
// unused.
func (e *Engine) AddState(s State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states.Insert(s.ID(), s)
}

// AddStates registers every state in states, or none of them: if any id
// collides with the registry or with another entry in states, nothing
// is added.
func (e *Engine) AddStates(states []State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	seen := make(map[StateId]struct{}, len(states))
	for _, s := range states {
		if e.states.Contains(s.ID()) {
			return false
		}
		if _, dup := seen[s.ID()]; dup {
			return false
		}
		seen[s.ID()] = struct{}{}
	}
	for _, s := range states {
		e.states.Insert(s.ID(), s)
	}
	return true
}

// AddTransition installs tr as a row for state. It reports false if
// state is unregistered or the (state, tr.Event) row already exists.
func (e *Engine) AddTransition(state StateId, tr Transition) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.states.Contains(state) {
		return false
	}
	return e.table.Insert(state, tr)
}

// AddAlphabetSymbol extends the accepted alphabet with event
// independent of any transition row. It reports whether the symbol was
// new.
func (e *Engine) AddAlphabetSymbol(event EventSymbol) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.AddSymbol(event)
}

// SetStartState designates the state Start(true) enters. A reference to
// an unregistered id is ignored.
func (e *Engine) SetStartState(id StateId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.states.Contains(id) {
		return
	}
	e.startState = id
	e.hasStart = true
}

// SetErrorState designates the state a handler failure drops into. It
// reports false for an unregistered id.
func (e *Engine) SetErrorState(id StateId) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.states.Contains(id) {
		return false
	}
	e.errorState = id
	e.hasError = true
	return true
}

// AddStopState marks id as terminal: Stop observes it (and the error
// state) as grounds to latch Stopped. It reports false for an
// unregistered or already-marked id.
func (e *Engine) AddStopState(id StateId) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addStopStateLocked(id)
}

func (e *Engine) addStopStateLocked(id StateId) bool {
	if !e.states.Contains(id) || e.isStopStateLocked(id) {
		return false
	}
	e.stopStates = append(e.stopStates, id)
	return true
}

// AddStopStates marks every id in ids as terminal, or none of them: if
// any id is unregistered, already marked, or repeated within ids,
// nothing is added.
func (e *Engine) AddStopStates(stateIds []StateId) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	seen := make(map[StateId]struct{}, len(stateIds))
	for _, id := range stateIds {
		if !e.states.Contains(id) || e.isStopStateLocked(id) {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	e.stopStates = append(e.stopStates, stateIds...)
	return true
}

func (e *Engine) isStopStateLocked(id StateId) bool {
	for _, s := range e.stopStates {
		if s == id {
			return true
		}
	}
	return false
}

// Valid reports whether the automaton has at least one state, a start
// state, an error state, at least one stop state, and a deterministic
// transition table.
func (e *Engine) Valid() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validLocked()
}

func (e *Engine) validLocked() bool {
	if e.states.Size() == 0 || !e.hasStart || !e.hasError || len(e.stopStates) == 0 {
		return false
	}
	return e.deterministicLocked()
}

// Deterministic reports whether every (state, alphabet symbol) pair
// resolves to at most one transition once parent fall-through is
// accounted for — no state/ancestor pair both claim a direct row for
// the same symbol. It does not check completeness: a state, with or
// without a handler, that has no row (direct or inherited) for some
// alphabet symbol does not make it report false.
func (e *Engine) Deterministic() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deterministicLocked()
}

func (e *Engine) deterministicLocked() bool {
	ok := true
	e.states.Range(func(id StateId, _ State) bool {
		e.table.Alphabet().Range(func(sym EventSymbol) bool {
			hits := 0
			for cur, more := id, true; more; {
				if e.table.HasDirect(cur, sym) {
					hits++
				}
				st, found := e.states.Find(cur)
				more = found && st.HasParent()
				if more {
					cur = st.Parent()
				}
			}
			if hits >= 2 {
				if !e.silent {
					e.logger.Warnf("fsm: epsilon-transition for state %d on symbol %d", id, sym)
				}
				ok = false
			}
			return true
		})
		return true
	})
	return ok
}

// Accept reports whether event resolves to a transition from the
// current state, with the engine Running. It does not consult guards.
func (e *Engine) Accept(event EventSymbol) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acceptLocked(event)
}

func (e *Engine) acceptLocked(event EventSymbol) bool {
	if e.status != StatusRunning {
		return false
	}
	_, ok := e.table.Lookup(e.states, e.current, event)
	return ok
}

// Start transitions the engine to Running, resetting current to the
// start state. If check is true and Valid reports false, Start aborts
// without changing anything. Arms the watchdog on success.
func (e *Engine) Start(check bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if check && !e.validLocked() {
		return false
	}
	e.current = e.startState
	e.status = StatusRunning
	e.watchdog.Enable(e.watchdogTimeout)
	return true
}

// Stop requests a transition to Stopped. If the engine is already
// parked on its error state or a registered stop state, it latches
// Stopped immediately. Otherwise, if wait is true, it blocks on the
// stop condition for one wake-up (pulsed by Step when it lands on a
// terminal state) before re-checking; if wait is false, or the
// condition's single wake-up still finds a non-terminal state, Stop
// reports false without changing status.
func (e *Engine) Stop(wait bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusRunning && e.status != StatusError {
		return true
	}
	if e.atTerminalLocked() {
		e.status = StatusStopped
		return true
	}
	if !wait {
		return false
	}
	e.stop.Wait()
	if e.atTerminalLocked() {
		e.status = StatusStopped
		return true
	}
	return false
}

func (e *Engine) atTerminalLocked() bool {
	return e.current == e.errorState || e.isStopStateLocked(e.current)
}

// Halt latches Stopped unconditionally, regardless of current state.
// Unlike Stop, it never blocks and never fails.
func (e *Engine) Halt() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = StatusStopped
}

// Raise enqueues event at the back of the queue, behind any event
// already waiting, if it is acceptable from the current state. It
// reports whether the event was enqueued.
func (e *Engine) Raise(event EventSymbol, args ...interface{}) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.acceptLocked(event) {
		return false
	}
	e.events.PushBack(queuedEvent{Event: event, Args: args})
	return true
}

// Transition enqueues event at the front of the queue, ahead of
// anything already waiting, so the next Step call serves it first. It
// is for use by a state handler during its own invocation: Step holds
// the engine's lock for the duration of a handler call, on the same
// goroutine, so Transition must not attempt to acquire it again — it
// operates directly on the already-locked state. Calling it from
// outside a handler is a race.
//
// At most one handler-initiated transition may be in flight per Step
// call; a second call before the first is consumed reports false, the
// engine's rejection of reentrant transitions.
func (e *Engine) Transition(event EventSymbol, args ...interface{}) bool {
	if e.inTransition {
		return false
	}
	if !e.acceptLocked(event) {
		return false
	}
	e.events.PushFront(queuedEvent{Event: event, Args: args})
	e.inTransition = true
	return true
}

// Step services at most one queued event: it pops the front of the
// queue, resolves the transition for (current, event) with parent
// fall-through, invokes the destination state's handler with the
// forwarded argument pack, and advances current on success.
//
// A handler reporting failure (or a state with no handler, or an event
// with no resolvable row) is treated identically: current drops to the
// error state, status latches Error, the error state's own handler
// runs with the same forwarded args, and Step returns Fault. Landing on
// a registered stop state or the error state pulses the stop condition
// so a blocked Stop(true) call wakes.
func (e *Engine) Step() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.watchdog.Reset()

	if e.status != StatusRunning {
		return e.status
	}
	qe, ok := e.events.PopFront()
	if !ok {
		return StatusStateUnchanged
	}

	started := time.Now()
	from := e.current
	tr, found := e.table.Lookup(e.states, from, qe.Event)
	if !found {
		return e.faultLocked(from, qe.Event, qe.Args, started)
	}

	dest, _ := e.states.Find(tr.Next)
	e.current = tr.Next
	e.inTransition = false
	if !dest.Invoke(qe.Args...) {
		return e.faultLocked(from, qe.Event, qe.Args, started)
	}

	if e.atTerminalLocked() {
		e.stop.Signal()
	}
	e.reportLocked(diagnostics.Record{
		EngineID:  e.id,
		From:      from,
		Event:     qe.Event,
		To:        e.current,
		Status:    StatusStateChanged.String(),
		Timestamp: started,
		Duration:  time.Since(started),
	})
	return StatusStateChanged
}

func (e *Engine) faultLocked(from StateId, event EventSymbol, args []interface{}, started time.Time) Status {
	e.current = e.errorState
	e.status = StatusError
	e.inTransition = false
	if errState, found := e.states.Find(e.errorState); found {
		errState.Invoke(args...)
	}
	e.stop.Signal()
	if !e.silent {
		e.logger.Errorf("fsm: handler failure on event %d from state %d, dropped to error state", event, from)
	}
	e.reportLocked(diagnostics.Record{
		EngineID:  e.id,
		From:      from,
		Event:     event,
		To:        e.errorState,
		Status:    StatusFault.String(),
		Fault:     true,
		Timestamp: started,
		Duration:  time.Since(started),
	})
	return StatusFault
}

func (e *Engine) reportLocked(rec diagnostics.Record) {
	if e.diagnostics == nil {
		return
	}
	e.diagnostics.Observe(rec)
}

// CurrentState returns the currently active state, or the zero State if
// the engine isn't Running.
func (e *Engine) CurrentState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusRunning {
		return State{}
	}
	st, _ := e.states.Find(e.current)
	return st
}

// Status returns the engine's latched lifecycle status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// lockOrder returns a and b in address order, so two engines locked
// together (Swap, CopyFrom) always acquire their mutexes in the same
// relative order regardless of which one the caller names first —
// avoiding an ABBA deadlock against a concurrent swap in the other
// direction.
func lockOrder(a, b *Engine) (*Engine, *Engine) {
	if uintptr(unsafe.Pointer(a)) <= uintptr(unsafe.Pointer(b)) {
		return a, b
	}
	return b, a
}

// Swap exchanges the full configuration and runtime state of a and b —
// every field except each engine's own lock and the stop condition
// bound to it, which stay put so a
// caller still holding a reference to one continues to serialize
// against the same mutex object it always has. Locks both engines in
// address order first.
func Swap(a, b *Engine) {
	if a == b {
		return
	}
	first, second := lockOrder(a, b)
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	a.policy, b.policy = b.policy, a.policy
	a.table, b.table = b.table, a.table
	a.states, b.states = b.states, a.states
	a.stopStates, b.stopStates = b.stopStates, a.stopStates
	a.startState, b.startState = b.startState, a.startState
	a.hasStart, b.hasStart = b.hasStart, a.hasStart
	a.errorState, b.errorState = b.errorState, a.errorState
	a.hasError, b.hasError = b.hasError, a.hasError
	a.current, b.current = b.current, a.current
	a.status, b.status = b.status, a.status
	a.events, b.events = b.events, a.events
	a.inTransition, b.inTransition = b.inTransition, a.inTransition
	a.watchdogTimeout, b.watchdogTimeout = b.watchdogTimeout, a.watchdogTimeout
	a.watchdog, b.watchdog = b.watchdog, a.watchdog
	a.diagnostics, b.diagnostics = b.diagnostics, a.diagnostics
	a.logger, b.logger = b.logger, a.logger
	a.silent, b.silent = b.silent, a.silent
	a.id, b.id = b.id, a.id
}

// CopyFrom replaces dst's configuration and runtime state with a deep
// copy of src's, and takes src's logger and silent flag. dst keeps its
// own lock, stop condition, id, watchdog, watchdog timeout, and
// diagnostics sink; src's are not copied. Locks both engines in address
// order first.
func (dst *Engine) CopyFrom(src *Engine) {
	if dst == src {
		return
	}
	first, second := lockOrder(dst, src)
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	states := dst.policy.NewStateRegistry()
	src.states.Range(func(id StateId, s State) bool {
		states.Insert(id, s)
		return true
	})
	dst.states = states

	table := NewTransitionTable(dst.policy)
	src.table.Range(func(state StateId, tr Transition) bool {
		table.Insert(state, tr)
		return true
	})
	src.table.Alphabet().Range(func(sym EventSymbol) bool {
		table.AddSymbol(sym)
		return true
	})
	dst.table = table

	dst.stopStates = append([]StateId(nil), src.stopStates...)
	dst.startState, dst.hasStart = src.startState, src.hasStart
	dst.errorState, dst.hasError = src.errorState, src.hasError
	dst.current = src.current
	dst.status = src.status
	dst.inTransition = src.inTransition
	dst.logger = src.logger
	dst.silent = src.silent

	events := dst.policy.NewEventQueue()
	src.events.Range(func(qe queuedEvent) bool {
		events.PushBack(qe)
		return true
	})
	dst.events = events
}
