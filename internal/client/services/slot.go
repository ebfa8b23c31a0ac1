package services

import (
	"context"
	"sync"
)

// Ticket identifies one request started on a Slot.
type Ticket struct {
	gen uint64
	key string
}

func (t Ticket) Key() string { return t.key }

// Slot holds the result of the most recently started request. Starting a
// request cancels the previous one, and a result is kept only if no newer
// request was started after it, so results are applied in the order the
// requests began regardless of when the responses arrive.
type Slot[T any] struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	key   string
	value T
	has   bool
}

// Begin starts a request for key and returns its context and ticket.
func (s *Slot[T]) Begin(ctx context.Context, key string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.gen++
	return ctx, Ticket{gen: s.gen, key: key}
}

// Apply stores v if t belongs to the latest request and reports whether it
// did.
func (s *Slot[T]) Apply(t Ticket, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.gen != s.gen {
		return false
	}
	s.key = t.key
	s.value = v
	s.has = true
	return true
}

// Current returns the stored value and the key it was requested for.
func (s *Slot[T]) Current() (T, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.key, s.has
}

// Clear cancels any pending request and drops the stored value.
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	var zero T
	s.value, s.key, s.has = zero, "", false
}
