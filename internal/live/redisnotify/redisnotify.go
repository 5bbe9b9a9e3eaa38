// Package redisnotify carries live change signals between roomshare
// instances over Redis pub/sub.
package redisnotify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/dukerupert/roomshare/internal/live"
)

// DefaultPrefix namespaces roomshare channels on a shared Redis.
const DefaultPrefix = "roomshare:"

// Notifier publishes to Redis and relays every message received on the
// roomshare channel pattern into a local Hub. Listeners subscribe on the
// Hub, so Start must run before signals reach them.
type Notifier struct {
	client *redis.Client
	hub    *live.Hub
	prefix string
	logger *slog.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func New(client *redis.Client, hub *live.Hub, logger *slog.Logger) *Notifier {
	return &Notifier{
		client: client,
		hub:    hub,
		prefix: DefaultPrefix,
		logger: logger.With("component", "redisnotify"),
	}
}

// Subscribe registers on the local hub.
func (n *Notifier) Subscribe(topic string) (<-chan struct{}, func()) {
	return n.hub.Subscribe(topic)
}

// Publish sends topic to every instance, this one included.
func (n *Notifier) Publish(ctx context.Context, topic string) error {
	if err := n.client.Publish(ctx, n.prefix+topic, "1").Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Start subscribes to the channel pattern and waits for Redis to confirm
// before relaying in the background. The relay stops when ctx is cancelled
// or Close is called.
func (n *Notifier) Start(ctx context.Context) error {
	ps := n.client.PSubscribe(ctx, n.prefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return fmt.Errorf("psubscribe: %w", err)
	}

	n.mu.Lock()
	n.pubsub = ps
	n.done = make(chan struct{})
	done := n.done
	n.mu.Unlock()

	go n.relay(ctx, ps, done)
	n.logger.Info("relaying redis notifications", "pattern", n.prefix+"*")
	return nil
}

func (n *Notifier) relay(ctx context.Context, ps *redis.PubSub, done chan struct{}) {
	defer close(done)
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			ps.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			topic := strings.TrimPrefix(msg.Channel, n.prefix)
			n.hub.Fire(topic)
		}
	}
}

// Close stops the relay and waits for it to exit.
func (n *Notifier) Close() error {
	n.mu.Lock()
	ps, done := n.pubsub, n.done
	n.pubsub = nil
	n.mu.Unlock()

	if ps == nil {
		return nil
	}
	err := ps.Close()
	<-done
	return err
}
