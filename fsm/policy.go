package fsm

import (
	"github.com/fluxorio/iotfsm/containers"
	"github.com/fluxorio/iotfsm/threading"
)

// Policy names the container families the engine must use for its
// state registry, transition rows, alphabet, and event queue. The
// event-symbol type itself (EventSymbol) is a compile-time choice
// rather than a per-instance policy knob — Go's static typing makes
// that the idiomatic tradeoff where the original's template parameter
// would have varied it per instantiation.
type Policy interface {
	NewStateRegistry() containers.OrderedMap[StateId, State]
	NewTransitionRows() containers.OrderedMap[tableKey, Transition]
	NewAlphabet() containers.Set[EventSymbol]
	NewEventQueue() containers.Deque[queuedEvent]
}

// ThreadingAware is an optional capability a Policy may advertise. The
// engine queries for it at construction time: if the policy implements
// ThreadingAware, its Policy is used for the engine's mutex and stop
// condition; otherwise the engine falls back to threading.NoOp, making
// every lock/wait/signal a trivial success.
type ThreadingAware interface {
	Threading() threading.Policy
}

// DefaultPolicy returns the Policy used when no other is supplied: Go
// maps/slices for every container family, and the real sync-backed
// threading.Policy (it implements ThreadingAware).
func DefaultPolicy() Policy { return defaultPolicy{} }

type defaultPolicy struct{}

func (defaultPolicy) NewStateRegistry() containers.OrderedMap[StateId, State] {
	return containers.NewOrderedMap[StateId, State]()
}

func (defaultPolicy) NewTransitionRows() containers.OrderedMap[tableKey, Transition] {
	return containers.NewOrderedMap[tableKey, Transition]()
}

func (defaultPolicy) NewAlphabet() containers.Set[EventSymbol] {
	return containers.NewSet[EventSymbol]()
}

func (defaultPolicy) NewEventQueue() containers.Deque[queuedEvent] {
	return containers.NewDeque[queuedEvent]()
}

func (defaultPolicy) Threading() threading.Policy { return threading.Default() }

// SingleThreadedPolicy returns a Policy identical to DefaultPolicy's
// container choices but without ThreadingAware, so the engine falls
// back to threading.NoOp — the shape a freestanding, single-threaded
// build (no real contention possible) wants.
func SingleThreadedPolicy() Policy { return singleThreadedPolicy{} }

// singleThreadedPolicy implements Policy directly rather than
// embedding defaultPolicy — embedding would have promoted
// defaultPolicy's Threading method and accidentally made this
// ThreadingAware too.
type singleThreadedPolicy struct{}

func (singleThreadedPolicy) NewStateRegistry() containers.OrderedMap[StateId, State] {
	return containers.NewOrderedMap[StateId, State]()
}

func (singleThreadedPolicy) NewTransitionRows() containers.OrderedMap[tableKey, Transition] {
	return containers.NewOrderedMap[tableKey, Transition]()
}

func (singleThreadedPolicy) NewAlphabet() containers.Set[EventSymbol] {
	return containers.NewSet[EventSymbol]()
}

func (singleThreadedPolicy) NewEventQueue() containers.Deque[queuedEvent] {
	return containers.NewDeque[queuedEvent]()
}
