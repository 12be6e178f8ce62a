package dashboard

import (
	"context"
	"sync"
)

// BroadcastHook fans out configuration events to in-process subscribers.
// Slow subscribers miss events rather than block writers.
type BroadcastHook struct {
	mu     sync.RWMutex
	subs   map[int]chan ConfigEvent
	next   int
	closed bool
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]chan ConfigEvent),
	}
}

// ConfigChanged satisfies EventHook and broadcasts the event.
func (h *BroadcastHook) ConfigChanged(ctx context.Context, event ConfigEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of events and a cancel func. After Close the
// returned channel is already closed.
func (h *BroadcastHook) Subscribe() (<-chan ConfigEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan ConfigEvent, 8)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Subscribers reports the number of active subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *BroadcastHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// MultiHook forwards events to several hooks, stopping at the first error.
type MultiHook []EventHook

// ConfigChanged calls every hook in order.
func (m MultiHook) ConfigChanged(ctx context.Context, event ConfigEvent) error {
	for _, hook := range m {
		if hook == nil {
			continue
		}
		if err := hook.ConfigChanged(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
