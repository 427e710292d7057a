package events

import "sync"

const subscriberBuffer = 16

// Hub fans published events out to SSE subscribers. A subscriber whose
// buffer is full misses the event; publishers never block.
type Hub struct {
	mu      sync.Mutex
	subs    map[chan string]struct{}
	closed  bool
	dropped uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan string]struct{})}
}

// Subscribe registers a new listener. On a closed hub the returned channel is
// already closed.
func (h *Hub) Subscribe() chan string {
	ch := make(chan string, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe is safe to call more than once and after Close.
func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Publish delivers evt to every subscriber with room and reports how many
// received it. A nil hub drops everything.
func (h *Hub) Publish(evt string) int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for ch := range h.subs {
		select {
		case ch <- evt:
			sent++
		default:
			h.dropped++
		}
	}
	return sent
}

// Close ends every subscription, which lets open SSE streams return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped counts deliveries skipped because a subscriber was full.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
