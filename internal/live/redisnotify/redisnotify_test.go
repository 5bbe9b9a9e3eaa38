package redisnotify

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/roomshare/internal/live"
)

func setupNotifier(t *testing.T, mr *miniredis.Miniredis) *Notifier {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	n := New(client, live.NewHub(slog.Default()), slog.Default())
	require.NoError(t, n.Start(context.Background()))
	t.Cleanup(func() { n.Close() })
	return n
}

func TestPublishReachesOtherInstance(t *testing.T) {
	mr := miniredis.RunT(t)
	a := setupNotifier(t, mr)
	b := setupNotifier(t, mr)

	signals, stop := b.Subscribe(live.Topic(live.KindChores, "h1"))
	defer stop()

	require.NoError(t, a.Publish(context.Background(), live.Topic(live.KindChores, "h1")))

	select {
	case <-signals:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for relayed signal")
	}
}

func TestPublishUsesPrefixedChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	n := setupNotifier(t, mr)

	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer raw.Close()
	ps := raw.Subscribe(context.Background(), "roomshare:expenses:h9")
	defer ps.Close()
	_, err := ps.Receive(context.Background())
	require.NoError(t, err)

	require.NoError(t, n.Publish(context.Background(), "expenses:h9"))

	select {
	case msg := <-ps.Channel():
		assert.Equal(t, "roomshare:expenses:h9", msg.Channel)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for raw message")
	}
}

func TestSubscribeDeliversSnapshotsAcrossRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	writer := setupNotifier(t, mr)
	reader := setupNotifier(t, mr)

	version := 0
	query := func(context.Context, string) ([]int, error) {
		version++
		return []int{version}, nil
	}
	out := make(chan live.Snapshot[int], 4)
	sub := live.Subscribe(reader, live.KindExpenses, "h1", query, func(s live.Snapshot[int]) { out <- s })
	defer sub.Cancel()

	first := <-out
	assert.Equal(t, []int{1}, first.Items)

	require.NoError(t, writer.Publish(context.Background(), live.Topic(live.KindExpenses, "h1")))

	select {
	case s := <-out:
		assert.Equal(t, []int{2}, s.Items)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for refreshed snapshot")
	}
}

func TestCloseWithoutStart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := New(client, live.NewHub(slog.Default()), slog.Default())
	assert.NoError(t, n.Close())
}
