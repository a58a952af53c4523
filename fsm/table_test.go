package fsm

import "testing"

func TestTransitionTableHasDirectVsLookup(t *testing.T) {
	policy := DefaultPolicy()
	table := NewTransitionTable(policy)
	registry := policy.NewStateRegistry()

	parent := NewState()
	child := NewState(WithParent(parent.ID()))
	registry.Insert(parent.ID(), parent)
	registry.Insert(child.ID(), child)

	tr := NewTransition(evTick, parent.ID())
	if !table.Insert(parent.ID(), tr) {
		t.Fatal("Insert should succeed on a fresh row")
	}
	if table.Insert(parent.ID(), tr) {
		t.Fatal("Insert should reject a duplicate (state, event) row")
	}

	if table.HasDirect(child.ID(), evTick) {
		t.Fatal("child has no row of its own for evTick")
	}
	got, ok := table.Lookup(registry, child.ID(), evTick)
	if !ok || got.Next != parent.ID() {
		t.Fatalf("Lookup via parent fall-through = (%+v, %v), want parent's row", got, ok)
	}
	if !table.Alphabet().Contains(evTick) {
		t.Fatal("Insert should have extended the alphabet")
	}
}

func TestTransitionTableLookupMissReturnsFalse(t *testing.T) {
	policy := DefaultPolicy()
	table := NewTransitionTable(policy)
	registry := policy.NewStateRegistry()
	lone := NewState()
	registry.Insert(lone.ID(), lone)

	if _, ok := table.Lookup(registry, lone.ID(), evTick); ok {
		t.Fatal("Lookup should fail when no row exists anywhere in the parent chain")
	}
}
