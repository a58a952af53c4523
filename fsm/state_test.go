package fsm

import "testing"

func TestStateZeroValueIsZero(t *testing.T) {
	var s State
	if !s.IsZero() {
		t.Fatal("zero-value State should report IsZero")
	}
	if NewState().IsZero() {
		t.Fatal("NewState should generate a non-zero id")
	}
}

func TestStateParent(t *testing.T) {
	parent := NewState()
	child := NewState(WithParent(parent.ID()))

	if child.HasParent() {
		if child.Parent() != parent.ID() {
			t.Fatalf("Parent() = %d, want %d", child.Parent(), parent.ID())
		}
	} else {
		t.Fatal("child should report HasParent")
	}
	if parent.HasParent() {
		t.Fatal("parent was built with no WithParent option")
	}
}

func TestStateHandlerInvocation(t *testing.T) {
	noHandler := NewState()
	if noHandler.HasHandler() {
		t.Fatal("state built without WithHandler should report HasHandler false")
	}
	if noHandler.Invoke() {
		t.Fatal("a missing handler must report failure, not success")
	}

	var seen []interface{}
	withHandler := NewState(WithHandler(func(args ...interface{}) bool {
		seen = args
		return true
	}))
	if !withHandler.HasHandler() {
		t.Fatal("state built with WithHandler should report HasHandler true")
	}
	if !withHandler.Invoke("a", 1) {
		t.Fatal("handler returning true should propagate")
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != 1 {
		t.Fatalf("args not forwarded, got %v", seen)
	}
}
