package ring

import "testing"

func TestBufferEviction(t *testing.T) {
	b := New[int](3)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}

	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}
	if oldest, _ := b.Oldest(); oldest != 3 {
		t.Errorf("Oldest = %d, want 3", oldest)
	}
	if newest, _ := b.Newest(); newest != 5 {
		t.Errorf("Newest = %d, want 5", newest)
	}

	want := []int{3, 4, 5}
	for i, v := range b.Items() {
		if v != want[i] {
			t.Errorf("Items[%d] = %d, want %d", i, v, want[i])
		}
	}
}

func TestBufferEmpty(t *testing.T) {
	b := New[string](2)
	if _, ok := b.Oldest(); ok {
		t.Error("Oldest on empty buffer returned ok")
	}
	if _, ok := b.Newest(); ok {
		t.Error("Newest on empty buffer returned ok")
	}
	if b.Full() {
		t.Error("empty buffer reported Full")
	}
}

func TestBufferCount(t *testing.T) {
	b := New[int](4)
	for _, v := range []int{1, 2, 3, 4} {
		b.Push(v)
	}
	even := b.Count(func(v int) bool { return v%2 == 0 })
	if even != 2 {
		t.Errorf("Count = %d, want 2", even)
	}
}

func TestBufferReset(t *testing.T) {
	b := New[int](2)
	b.Push(1)
	b.Push(2)
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", b.Len())
	}
	// Reset twice must be safe
	b.Reset()
	if b.Len() != 0 {
		t.Error("second Reset changed state")
	}
}

func TestMinCapacity(t *testing.T) {
	b := New[int](0)
	b.Push(7)
	b.Push(8)
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1", b.Len())
	}
	if newest, _ := b.Newest(); newest != 8 {
		t.Errorf("Newest = %d, want 8", newest)
	}
}
