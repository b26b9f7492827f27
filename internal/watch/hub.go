// Package watch fans out "snapshot invalidated" notifications to live-read
// subscribers. A subscriber re-reads its store on each tick and emits a full
// snapshot, so a missed intermediate notification never loses data; it only
// collapses two refreshes into one. Topics are per owner and per record kind
// (for example "clients:<userID>").
package watch

import (
	"context"
	"sync"
)

// Hub is an in-process broadcaster. Redis pub/sub (see Bridge) relays
// notifications between instances; each instance re-publishes into its local
// hub.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ch chan struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers for notifications on a topic until ctx is cancelled.
// The returned channel has a buffer of one: notifications coalesce while the
// subscriber is busy re-reading.
func (h *Hub) Subscribe(ctx context.Context, topic string) <-chan struct{} {
	sub := &subscriber{ch: make(chan struct{}, 1)}

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*subscriber]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if set, ok := h.subs[topic]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, topic)
			}
		}
		h.mu.Unlock()
	}()

	return sub.ch
}

// Publish notifies every subscriber of a topic. Never blocks: a subscriber
// that already has a pending notification keeps just that one.
func (h *Hub) Publish(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[topic] {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers a topic has. Used by tests
// and the streams-active gauge.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}
