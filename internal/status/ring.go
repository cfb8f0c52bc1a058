package status

import "sync"

// Ring is a bounded, concurrency-safe buffer that keeps the most recent
// items, evicting the oldest once full.
type Ring[T any] struct {
	mu    sync.Mutex
	items []T
	start int
	size  int
}

// NewRing returns a ring holding at most capacity items (minimum 1).
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends item, evicting the oldest item when the ring is full.
func (r *Ring[T]) Push(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.push(item)
}

func (r *Ring[T]) push(item T) {
	if r.size < len(r.items) {
		r.items[(r.start+r.size)%len(r.items)] = item
		r.size++
		return
	}
	r.items[r.start] = item
	r.start = (r.start + 1) % len(r.items)
}

// PushUnless appends item unless an existing item satisfies same.
// It reports whether item was added.
func (r *Ring[T]) PushUnless(item T, same func(T) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < r.size; i++ {
		if same(r.items[(r.start+i)%len(r.items)]) {
			return false
		}
	}
	r.push(item)
	return true
}

// Len returns the number of items held.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Items returns the held items oldest first.
func (r *Ring[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[(r.start+i)%len(r.items)]
	}
	return out
}

// Last returns the most recent item.
func (r *Ring[T]) Last() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.items[(r.start+r.size-1)%len(r.items)], true
}
