package guestboard

import (
	"context"
	"sync"
)

// Hub is a one-shot broadcast signal for long-polling waiters. Every waiter
// armed before a Notify is released exactly once; a waiter that arms after
// the Notify waits for the next one.
type Hub struct {
	mu        sync.Mutex
	armed     chan struct{}
	shutdown  chan struct{}
	closeOnce sync.Once
}

// NewHub creates an idle hub.
func NewHub() *Hub {
	return &Hub{
		armed:    make(chan struct{}),
		shutdown: make(chan struct{}),
	}
}

// Wait blocks until the next Notify, the context ends, or the hub closes.
// It reports whether an event fired; context expiry and shutdown are normal
// no-event outcomes, not errors.
func (h *Hub) Wait(ctx context.Context) bool {
	h.mu.Lock()
	armed := h.armed
	h.mu.Unlock()

	select {
	case <-armed:
		return true
	case <-h.shutdown:
		return false
	case <-ctx.Done():
		return false
	}
}

// Notify releases every currently-armed waiter and resets the hub for the
// next cycle. A notify with no waiters is not remembered.
func (h *Hub) Notify() {
	select {
	case <-h.shutdown:
		return
	default:
	}

	h.mu.Lock()
	close(h.armed)
	h.armed = make(chan struct{})
	h.mu.Unlock()
}

// Close releases all armed waiters with a no-event outcome. Subsequent
// waits return immediately. Safe to call more than once.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.shutdown)
	})
}

// Shutdown implements the container's shutdown contract.
func (h *Hub) Shutdown() error {
	h.Close()

	return nil
}
