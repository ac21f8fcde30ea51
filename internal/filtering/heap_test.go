package filtering

import (
	"sort"
	"testing"
)

func intLess(a, b int) bool { return a < b }

func TestHeapifyRootIsMinimum(t *testing.T) {
	data := []int{5, 3, 8, 1, 9, 2, 7}
	h := NewHeap(append([]int(nil), data...), intLess)
	if h.Root() != 1 {
		t.Errorf("Root() = %v, want 1", h.Root())
	}
	if h.Len() != len(data) {
		t.Errorf("Len() = %v, want %v", h.Len(), len(data))
	}
}

func TestHeapPopYieldsSortedOrder(t *testing.T) {
	data := []int{5, 3, 8, 1, 9, 2, 7, 7, 0}
	h := NewHeap(append([]int(nil), data...), intLess)

	var popped []int
	for h.Len() > 0 {
		popped = append(popped, h.Pop())
	}

	want := append([]int(nil), data...)
	sort.Ints(want)
	if len(popped) != len(want) {
		t.Fatalf("popped %d elements, want %d", len(popped), len(want))
	}
	for i := range want {
		if popped[i] != want[i] {
			t.Errorf("popped[%d] = %v, want %v", i, popped[i], want[i])
		}
	}
}

func TestHeapPushMaintainsInvariant(t *testing.T) {
	h := NewHeap([]int{}, intLess)
	for _, v := range []int{4, 2, 9, 1, 5} {
		h.Push(v)
	}
	if h.Root() != 1 {
		t.Errorf("Root() = %v, want 1", h.Root())
	}
}

func TestHeapReplaceEquivalentToPopPush(t *testing.T) {
	h1 := NewHeap([]int{4, 2, 9, 1, 5}, intLess)
	h2 := NewHeap([]int{4, 2, 9, 1, 5}, intLess)

	h1.Replace(7)

	h2.Pop()
	h2.Push(7)

	d1 := append([]int(nil), h1.Data()...)
	d2 := append([]int(nil), h2.Data()...)
	sort.Ints(d1)
	sort.Ints(d2)
	if len(d1) != len(d2) {
		t.Fatalf("lengths differ: %d vs %d", len(d1), len(d2))
	}
	for i := range d1 {
		if d1[i] != d2[i] {
			t.Errorf("element %d differs: %v vs %v", i, d1[i], d2[i])
		}
	}
}

func TestHeapSingleElement(t *testing.T) {
	h := NewHeap([]int{42}, intLess)
	if h.Root() != 42 {
		t.Fatalf("Root() = %v, want 42", h.Root())
	}
	if got := h.Pop(); got != 42 {
		t.Errorf("Pop() = %v, want 42", got)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %v, want 0", h.Len())
	}
}
