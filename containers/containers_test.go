package containers

import "testing"

func TestOrderedMapInsertIsRejectOnDuplicate(t *testing.T) {
	m := NewOrderedMap[string, int]()
	if !m.Insert("a", 1) {
		t.Fatal("first insert should succeed")
	}
	if m.Insert("a", 2) {
		t.Fatal("duplicate key insert should be rejected")
	}
	v, ok := m.Find("a")
	if !ok || v != 1 {
		t.Fatalf("Find = (%d, %v), want (1, true); duplicate insert must not overwrite", v, ok)
	}
	if m.Size() != 1 {
		t.Fatalf("Size = %d, want 1", m.Size())
	}
	if !m.Erase("a") || m.Contains("a") {
		t.Fatal("Erase should remove the key")
	}
}

func TestSetInsertIsIdempotent(t *testing.T) {
	s := NewSet[int]()
	if !s.Insert(5) {
		t.Fatal("first insert should succeed")
	}
	if s.Insert(5) {
		t.Fatal("second insert of the same element should report false")
	}
	if s.Size() != 1 {
		t.Fatalf("Size = %d, want 1", s.Size())
	}
}

func TestDequeOrdering(t *testing.T) {
	d := NewDeque[int]()
	d.PushBack(1)
	d.PushBack(2)
	d.PushFront(0)
	// [0, 1, 2]
	var got []int
	d.Range(func(v int) bool { got = append(got, v); return true })
	want := []int{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("Range = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Range = %v, want %v", got, want)
		}
	}
	for _, w := range want {
		v, ok := d.PopFront()
		if !ok || v != w {
			t.Fatalf("PopFront = (%d, %v), want (%d, true)", v, ok, w)
		}
	}
	if d.Len() != 0 {
		t.Fatalf("Len = %d, want 0", d.Len())
	}
	if _, ok := d.PopFront(); ok {
		t.Fatal("PopFront on an empty deque should report false")
	}
}
