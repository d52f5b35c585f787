package auth

import (
	"context"
	"sync"
)

// Listener receives session events.
type Listener func(ctx context.Context, evt Event)

// Hub fans session events out to explicit subscribers. Listeners run
// synchronously on the publishing goroutine in subscription order.
type Hub struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
	order     []int
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[int]Listener)}
}

// Subscribe registers fn and returns the function that removes it.
func (h *Hub) Subscribe(fn Listener) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.listeners, id)
			for i, v := range h.order {
				if v == id {
					h.order = append(h.order[:i], h.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers evt to every current subscriber.
func (h *Hub) Publish(ctx context.Context, evt Event) {
	h.mu.RLock()
	listeners := make([]Listener, 0, len(h.order))
	for _, id := range h.order {
		listeners = append(listeners, h.listeners[id])
	}
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, evt)
	}
}
