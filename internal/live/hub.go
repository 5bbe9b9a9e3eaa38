package live

import (
	"context"
	"log/slog"
	"sync"
)

type listener struct {
	ch   chan struct{}
	once sync.Once
}

// Hub is an in-process Notifier. It is also the local fan-out used by the
// Redis notifier once a message arrives from another instance.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*listener]struct{}
	logger *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*listener]struct{}),
		logger: logger.With("component", "live"),
	}
}

// Subscribe registers a listener on topic.
func (h *Hub) Subscribe(topic string) (<-chan struct{}, func()) {
	l := &listener{ch: make(chan struct{}, 1)}

	h.mu.Lock()
	set, ok := h.topics[topic]
	if !ok {
		set = make(map[*listener]struct{})
		h.topics[topic] = set
	}
	set[l] = struct{}{}
	h.mu.Unlock()

	return l.ch, func() { h.unsubscribe(topic, l) }
}

func (h *Hub) unsubscribe(topic string, l *listener) {
	h.mu.Lock()
	if set, ok := h.topics[topic]; ok {
		delete(set, l)
		if len(set) == 0 {
			delete(h.topics, topic)
		}
	}
	h.mu.Unlock()
	l.once.Do(func() { close(l.ch) })
}

// Publish fires topic locally. It never fails.
func (h *Hub) Publish(_ context.Context, topic string) error {
	h.Fire(topic)
	return nil
}

// Fire signals every listener on topic without blocking.
func (h *Hub) Fire(topic string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.topics[topic]
	for l := range set {
		select {
		case l.ch <- struct{}{}:
		default:
			// A signal is already pending; the listener will re-read anyway.
		}
	}
	h.logger.Debug("fired topic", "topic", topic, "listeners", len(set))
}

// ListenerCount returns the number of listeners on topic.
func (h *Hub) ListenerCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
