package fsm

import (
	"testing"
	"time"
)

func TestEngineSwapExchangesState(t *testing.T) {
	a := New(DefaultPolicy())
	aStart := NewState(WithHandler(alwaysTrue))
	aStop := NewState(WithHandler(alwaysTrue))
	a.AddStates([]State{aStart, aStop})
	a.AddTransition(aStart.ID(), NewTransition(evTick, aStop.ID()))
	a.SetStartState(aStart.ID())
	a.SetErrorState(aStart.ID())
	a.AddStopState(aStop.ID())
	a.Start(true)

	b := New(DefaultPolicy())
	bStart := NewState(WithHandler(alwaysTrue))
	bStop := NewState(WithHandler(alwaysTrue))
	b.AddStates([]State{bStart, bStop})
	b.AddTransition(bStart.ID(), NewTransition(evX, bStop.ID()))
	b.SetStartState(bStart.ID())
	b.SetErrorState(bStart.ID())
	b.AddStopState(bStop.ID())
	b.Start(true)

	aMu, bMu := a.mu, b.mu
	aID, bID := a.id, b.id

	Swap(a, b)

	if a.mu != aMu || b.mu != bMu {
		t.Fatal("Swap must leave each engine's own lock in place")
	}
	if a.id != bID || b.id != aID {
		t.Fatal("Swap should exchange id along with the rest of the configuration")
	}
	if a.CurrentState().ID() != bStart.ID() {
		t.Fatalf("a.CurrentState = %d, want b's former start state", a.CurrentState().ID())
	}
	if b.CurrentState().ID() != aStart.ID() {
		t.Fatalf("b.CurrentState = %d, want a's former start state", b.CurrentState().ID())
	}
	if !a.Accept(evX) {
		t.Fatal("a should now accept evX, the transition it received from b")
	}
	if a.Accept(evTick) {
		t.Fatal("a should no longer accept evTick, its own former transition")
	}
	if !b.Accept(evTick) {
		t.Fatal("b should now accept evTick, the transition it received from a")
	}

	// swapping back should restore each engine's original identity.
	Swap(a, b)
	if a.id != aID || b.id != bID {
		t.Fatal("a second Swap should restore the original ids")
	}
	if a.CurrentState().ID() != aStart.ID() || b.CurrentState().ID() != bStart.ID() {
		t.Fatal("a second Swap should restore each engine's original current state")
	}
}

func TestEngineSwapIsANoOpOnItself(t *testing.T) {
	a := New(DefaultPolicy())
	id := a.id
	Swap(a, a)
	if a.id != id {
		t.Fatal("Swap(a, a) must not alter a")
	}
}

// Two goroutines racing Swap(a, b) against Swap(b, a) must not deadlock.
// lockOrder is what's supposed to prevent the ABBA pattern this test
// would otherwise trigger.
func TestEngineConcurrentSwapBothDirectionsDoesNotDeadlock(t *testing.T) {
	a := New(DefaultPolicy())
	b := New(DefaultPolicy())

	const rounds = 500
	done := make(chan struct{})
	go func() {
		for i := 0; i < rounds; i++ {
			Swap(a, b)
		}
		done <- struct{}{}
	}()
	go func() {
		for i := 0; i < rounds; i++ {
			Swap(b, a)
		}
		done <- struct{}{}
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Swap(a, b) racing Swap(b, a) did not complete, suspect an ABBA deadlock")
		}
	}
}

func TestEngineCopyFromDuplicatesState(t *testing.T) {
	src := New(DefaultPolicy())
	start := NewState(WithHandler(alwaysTrue))
	stop := NewState(WithHandler(alwaysTrue))
	src.AddStates([]State{start, stop})
	src.AddTransition(start.ID(), NewTransition(evTick, stop.ID()))
	src.SetStartState(start.ID())
	src.SetErrorState(start.ID())
	src.AddStopState(stop.ID())
	src.Start(true)
	if !src.Raise(evTick) {
		t.Fatal("Raise rejected an acceptable event on src")
	}

	dst := New(DefaultPolicy())
	dstMu := dst.mu
	dst.CopyFrom(src)

	if dst.mu != dstMu {
		t.Fatal("CopyFrom must not replace dst's own lock")
	}
	if dst.CurrentState().ID() != start.ID() {
		t.Fatalf("dst.CurrentState = %d, want src's start state", dst.CurrentState().ID())
	}
	if !dst.Accept(evTick) {
		t.Fatal("dst should have copied src's transition table")
	}

	// Mutating src afterward must not reach through to dst: CopyFrom is a
	// deep copy under lock, not an alias.
	extra := NewState(WithHandler(alwaysTrue))
	src.AddState(extra)
	src.AddTransition(start.ID(), NewTransition(evX, extra.ID()))
	if dst.Accept(evX) {
		t.Fatal("dst's transition table should be independent of src's, not aliased")
	}

	// dst should have its own copy of src's queued event.
	if got := dst.Step(); got != StatusStateChanged {
		t.Fatalf("dst.Step() = %v, want StateChanged from the copied queued event", got)
	}
	if dst.CurrentState().ID() != stop.ID() {
		t.Fatal("dst did not advance on the event copied from src's queue")
	}
	if src.CurrentState().ID() != start.ID() {
		t.Fatal("stepping dst must not advance src, which has its own independent queue")
	}
}

func TestEngineCopyFromIsANoOpOnItself(t *testing.T) {
	e := New(DefaultPolicy())
	a := NewState(WithHandler(alwaysTrue))
	e.AddState(a)
	e.SetStartState(a.ID())
	e.Start(false)
	id := e.id
	e.CopyFrom(e)
	if e.id != id || e.CurrentState().ID() != a.ID() {
		t.Fatal("CopyFrom(e, e) must not alter e")
	}
}
