// Package threading supplies the optional concurrency primitives a
// fsm.Policy may advertise. An engine built over Default serializes
// every public operation through a real mutex and blocks stop(wait=true)
// on a real condition variable; an engine built over NoOp treats every
// lock/wait/signal as a trivial success, matching a single-threaded or
// freestanding build where no real contention can occur.
package threading

import "sync"

// Mutex is a reentrant-in-spirit lock contract: Lock/Unlock only, no
// TryLock, matching what the engine actually needs.
type Mutex interface {
	Lock()
	Unlock()
}

// Cond is a condition variable bound to a Mutex.
type Cond interface {
	Wait()
	Signal()
}

// Policy names the threading family the engine must use.
type Policy interface {
	NewMutex() Mutex
	NewCond(Mutex) Cond
}

// Default returns the real, sync-backed Policy.
func Default() Policy { return defaultPolicy{} }

type defaultPolicy struct{}

func (defaultPolicy) NewMutex() Mutex { return &sync.Mutex{} }

func (defaultPolicy) NewCond(m Mutex) Cond {
	locker, ok := m.(sync.Locker)
	if !ok {
		// The only Mutex Default ever hands out satisfies sync.Locker;
		// this only triggers if a caller mixes policies.
		locker = &syncLockerAdapter{m: m}
	}
	return &syncCond{cond: sync.NewCond(locker)}
}

type syncLockerAdapter struct{ m Mutex }

func (a *syncLockerAdapter) Lock()   { a.m.Lock() }
func (a *syncLockerAdapter) Unlock() { a.m.Unlock() }

type syncCond struct{ cond *sync.Cond }

func (c *syncCond) Wait()   { c.cond.Wait() }
func (c *syncCond) Signal() { c.cond.Broadcast() }

// NoOp returns the trivial Policy: every primitive is a no-op success,
// for builds with no real concurrent access to the engine.
func NoOp() Policy { return noopPolicy{} }

type noopPolicy struct{}

func (noopPolicy) NewMutex() Mutex    { return noopMutex{} }
func (noopPolicy) NewCond(Mutex) Cond { return noopCond{} }

type noopMutex struct{}

func (noopMutex) Lock()   {}
func (noopMutex) Unlock() {}

type noopCond struct{}

func (noopCond) Wait()   {}
func (noopCond) Signal() {}
