// Package history holds fixed-capacity, newest-first transaction buffers.
package history

import "sync"

// Buffer keeps at most Cap items ordered by insertion, newest first.
// It is a ring: the newest item sits at head and Prepend moves head
// backwards, overwriting the oldest slot once full.
//
// Writes come from a single owning scanner; reads may come from any
// goroutine and always observe a whole buffer state.
type Buffer[T any] struct {
	mu   sync.RWMutex
	ring []T
	head int
	size int
}

// New returns an empty Buffer holding at most capacity items.
// capacity must be positive.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		panic("history: capacity must be positive")
	}

	return &Buffer[T]{
		ring: make([]T, capacity),
	}
}

// Prepend inserts item at the front. When the buffer overflows, the oldest
// item is dropped and returned so callers can release anything keyed by it.
func (b *Buffer[T]) Prepend(item T) (evicted []T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.ring)
	b.head = (b.head - 1 + capacity) % capacity

	if b.size == capacity {
		// the oldest item occupies the slot the new head lands on
		evicted = []T{b.ring[b.head]}
	} else {
		b.size++
	}

	b.ring[b.head] = item
	return evicted
}

// Snapshot copies the first n items (fewer if the buffer is shorter).
// A negative n copies everything.
func (b *Buffer[T]) Snapshot(n int) []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n < 0 || n > b.size {
		n = b.size
	}

	out := make([]T, n)
	for i := range out {
		out[i] = b.ring[(b.head+i)%len(b.ring)]
	}
	return out
}

// All copies the whole buffer.
func (b *Buffer[T]) All() []T {
	return b.Snapshot(-1)
}

// Len returns the current number of items.
func (b *Buffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.size
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.ring)
}
