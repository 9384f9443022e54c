package events

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	feed, err := NewFeed(client)
	require.NoError(t, err)
	return feed
}

func TestFeed_PublishReachesSubscriber(t *testing.T) {
	feed := newTestFeed(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan struct{}, 1)
	stop, err := feed.Subscribe(ctx, TopicAppointments, func() {
		select {
		case got <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer stop()

	feed.Publish(ctx, TopicAppointments)

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reload notification")
	}
}

func TestFeed_TopicsAreIsolated(t *testing.T) {
	feed := newTestFeed(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan struct{}, 1)
	stop, err := feed.Subscribe(ctx, TopicPatients, func() {
		got <- struct{}{}
	})
	require.NoError(t, err)
	defer stop()

	feed.Publish(ctx, TopicAppointments)

	select {
	case <-got:
		t.Fatal("patients subscriber should not see appointment events")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFeed_StopEndsDelivery(t *testing.T) {
	feed := newTestFeed(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan struct{}, 4)
	stop, err := feed.Subscribe(ctx, TopicConversations, func() {
		got <- struct{}{}
	})
	require.NoError(t, err)

	stop()
	feed.Publish(ctx, TopicConversations)

	select {
	case <-got:
		t.Fatal("stopped subscriber should not receive events")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNewFeed_RequiresClient(t *testing.T) {
	_, err := NewFeed(nil)
	assert.Error(t, err)
}
