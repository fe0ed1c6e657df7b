// Package ring provides the fixed-capacity sliding window shared by the
// cadence history, the heading lag window, and the classifier label window.
package ring

// Buffer keeps the most recent values pushed into it, oldest first.
type Buffer[T any] struct {
	items    []T
	capacity int
}

// New creates a buffer holding at most capacity values.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{capacity: capacity}
}

// Push appends a value, evicting the oldest when the buffer is full.
func (b *Buffer[T]) Push(v T) {
	b.items = append(b.items, v)
	if len(b.items) > b.capacity {
		b.items = b.items[1:]
	}
}

// Len returns the number of buffered values.
func (b *Buffer[T]) Len() int {
	return len(b.items)
}

// Cap returns the configured capacity.
func (b *Buffer[T]) Cap() int {
	return b.capacity
}

// Full reports whether the buffer holds capacity values.
func (b *Buffer[T]) Full() bool {
	return len(b.items) == b.capacity
}

// Oldest returns the least recent value.
func (b *Buffer[T]) Oldest() (T, bool) {
	var zero T
	if len(b.items) == 0 {
		return zero, false
	}
	return b.items[0], true
}

// Newest returns the most recent value.
func (b *Buffer[T]) Newest() (T, bool) {
	var zero T
	if len(b.items) == 0 {
		return zero, false
	}
	return b.items[len(b.items)-1], true
}

// Items returns a copy of the buffered values, oldest first.
func (b *Buffer[T]) Items() []T {
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Count returns how many buffered values satisfy the predicate.
func (b *Buffer[T]) Count(pred func(T) bool) int {
	n := 0
	for _, v := range b.items {
		if pred(v) {
			n++
		}
	}
	return n
}

// Reset discards all buffered values.
func (b *Buffer[T]) Reset() {
	b.items = nil
}
