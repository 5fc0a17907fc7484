package services

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"taskhub/models"
)

func recv(t *testing.T, ch <-chan FeedEvent) FeedEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return FeedEvent{}
	}
}

func TestRedisRelayBridgesInstances(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	defer m.Close()
	leaks := goleak.IgnoreCurrent()

	ctx, cancel := context.WithCancel(context.Background())
	const channel = "taskhub:test"

	var clients []*redis.Client
	newInstance := func() *CommentFeed {
		rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
		clients = append(clients, rc)
		feed := NewCommentFeed()
		relay := NewRedisRelay(rc, channel, feed)
		feed.SetRelay(relay)
		go relay.Run(ctx)
		return feed
	}
	a, b := newInstance(), newInstance()
	require.Eventually(t, func() bool {
		return m.PubSubNumSub(channel)[channel] == 2
	}, 2*time.Second, 10*time.Millisecond)

	onA, cancelA := a.Subscribe(1)
	defer cancelA()
	onB, cancelB := b.Subscribe(1)
	defer cancelB()

	a.Publish(1, FeedEvent{Type: EventCommentCreated, Comment: &models.Comment{ID: 1, Text: "from a"}})
	assert.Equal(t, uint(1), recv(t, onA).Comment.ID)
	assert.Equal(t, "from a", recv(t, onB).Comment.Text)

	b.Publish(1, FeedEvent{Type: EventCommentDeleted, Comment: &models.Comment{ID: 2}})
	assert.Equal(t, uint(2), recv(t, onB).Comment.ID)
	// A's own first event is not echoed back ahead of B's.
	ev := recv(t, onA)
	assert.Equal(t, EventCommentDeleted, ev.Type)
	assert.Equal(t, uint(2), ev.Comment.ID)

	cancel()
	for _, rc := range clients {
		require.NoError(t, rc.Close())
	}
	goleak.VerifyNone(t, leaks)
}
