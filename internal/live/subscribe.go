package live

import (
	"context"
	"fmt"
	"sync"

	"github.com/dukerupert/roomshare/internal/apperr"
	"github.com/dukerupert/roomshare/internal/metrics"
)

// Snapshot is one delivery: the complete current result set for a
// (kind, house) pair. When Err is set the subscription has terminated and
// Items is empty.
type Snapshot[T any] struct {
	Kind    Kind
	HouseID string
	Items   []T
	Err     error
}

// Query loads the current result set for a house.
type Query[T any] func(ctx context.Context, houseID string) ([]T, error)

// Subscription is a handle on a running collection watch.
type Subscription struct {
	kind    Kind
	houseID string

	cancel      context.CancelFunc
	unsubscribe func()
	done        chan struct{}

	mu      sync.Mutex // held while a callback runs
	stopped bool
}

// Subscribe delivers the current result of query for houseID to fn, then a
// fresh full result after every change signal on the (kind, houseID) topic.
// The listener is registered before the first read so no change made after
// Subscribe returns can be missed. Deliveries arrive on a single goroutine.
//
// A failed query delivers one empty Snapshot carrying an ErrSubscription
// error and stops the subscription.
func Subscribe[T any](n Notifier, kind Kind, houseID string, query Query[T], fn func(Snapshot[T])) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		kind:    kind,
		houseID: houseID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	signals, unsubscribe := n.Subscribe(Topic(kind, houseID))
	s.unsubscribe = sync.OnceFunc(unsubscribe)
	metrics.SubscriptionsActive.WithLabelValues(string(kind)).Inc()

	go func() {
		defer close(s.done)
		defer metrics.SubscriptionsActive.WithLabelValues(string(kind)).Dec()
		defer s.unsubscribe()

		for {
			items, err := query(ctx, houseID)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				metrics.SubscriptionErrors.WithLabelValues(string(kind)).Inc()
				s.deliver(func() {
					fn(Snapshot[T]{
						Kind:    kind,
						HouseID: houseID,
						Items:   []T{},
						Err:     fmt.Errorf("%w: %s for house %s: %w", apperr.ErrSubscription, kind, houseID, err),
					})
				})
				return
			}
			if items == nil {
				items = []T{}
			}
			if s.deliver(func() { fn(Snapshot[T]{Kind: kind, HouseID: houseID, Items: items}) }) {
				metrics.SnapshotsDelivered.WithLabelValues(string(kind)).Inc()
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
			}
		}
	}()

	return s
}

func (s *Subscription) deliver(f func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	f()
	return true
}

// Cancel stops the subscription. Once Cancel returns the listener is gone,
// Done is closed and no further callback runs. A callback already in flight
// is waited for, so Cancel must not be called from inside the callback
// itself. Cancel is idempotent.
func (s *Subscription) Cancel() {
	s.cancel()
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.unsubscribe()
	<-s.done
}

// Done is closed when the delivery goroutine has exited, either through
// Cancel or after an error delivery.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) Kind() Kind      { return s.kind }
func (s *Subscription) HouseID() string { return s.houseID }
