// Package observe is the push-based subscription primitive shared by the
// navigator, the evaluation wizard and the stats refresher.
package observe

import (
	"slices"
	"sync"
)

// Hub fans a value out to subscribers. Publish calls subscribers synchronously,
// in subscription order, on the caller's goroutine; it never holds the hub lock
// while a subscriber runs, so subscribers may unsubscribe themselves.
type Hub[T any] struct {
	mu     sync.Mutex
	next   uint64
	subs   []subscription[T]
	closed bool
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it. The returned
// function is idempotent. Subscribing to a closed hub is a no-op.
func (h *Hub[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return func() {}
	}
	h.next++
	id := h.next
	h.subs = append(h.subs, subscription[T]{id: id, fn: fn})
	return func() { h.remove(id) }
}

func (h *Hub[T]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = slices.DeleteFunc(h.subs, func(s subscription[T]) bool { return s.id == id })
}

// Publish delivers v to every current subscriber.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	subs := slices.Clone(h.subs)
	h.mu.Unlock()
	for _, s := range subs {
		s.fn(v)
	}
}

// Len reports the number of live subscriptions.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops all subscribers; later Subscribe and Publish calls do nothing.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.subs = nil
}
