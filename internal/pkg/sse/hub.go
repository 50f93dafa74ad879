package sse

import (
	"sync"
)

// Event is a change-propagation message. Every mutation of the log
// collection or a slot map publishes one so other devices can merge it
// through the same upsert/delete semantics as local changes.
type Event struct {
	Event string      // e.g. "worklog.upserted", "shift.slots_changed"
	Data  interface{}
}

// Hub fans events out to subscribed clients, keyed by organization.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a listener for one organization's events and
// returns the channel plus a cleanup function.
func (h *Hub) Subscribe(orgID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)

	if h.subscribers[orgID] == nil {
		h.subscribers[orgID] = make(map[chan Event]struct{})
	}
	h.subscribers[orgID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[orgID], ch)
		close(ch)
		if len(h.subscribers[orgID]) == 0 {
			delete(h.subscribers, orgID)
		}
	}

	return ch, cleanup
}

// Publish sends an event to every subscriber of the organization. Slow
// subscribers are skipped rather than blocking the publisher.
func (h *Hub) Publish(orgID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[orgID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of listeners for an organization.
func (h *Hub) SubscriberCount(orgID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[orgID])
}
