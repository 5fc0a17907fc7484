// services/feed_relay.go - Redis pub/sub bridge between server instances
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const relayPublishTimeout = 2 * time.Second

type relayMessage struct {
	Origin string    `json:"origin"`
	TaskID uint      `json:"task_id"`
	Event  FeedEvent `json:"event"`
}

// RedisRelay publishes feed events to a Redis channel and delivers events
// published by other instances to the local feed. Messages carry the
// publishing instance's id so an instance never delivers its own event twice.
type RedisRelay struct {
	rc      *redis.Client
	channel string
	origin  string
	feed    *CommentFeed
}

func NewRedisRelay(rc *redis.Client, channel string, feed *CommentFeed) *RedisRelay {
	return &RedisRelay{rc: rc, channel: channel, origin: uuid.NewString(), feed: feed}
}

// Forward is best effort; a failed publish only affects remote listeners.
func (r *RedisRelay) Forward(taskID uint, ev FeedEvent) {
	data, err := json.Marshal(relayMessage{Origin: r.origin, TaskID: taskID, Event: ev})
	if err != nil {
		log.WithError(err).Error("relay: marshal event")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
	defer cancel()
	if err := r.rc.Publish(ctx, r.channel, data).Err(); err != nil {
		log.WithError(err).WithField("task", taskID).Warn("relay: publish failed")
	}
}

// Run receives remote events until ctx is done, resubscribing if the
// subscription drops.
func (r *RedisRelay) Run(ctx context.Context) {
	for {
		sub := r.rc.Subscribe(ctx, r.channel)
		r.consume(ctx, sub.Channel())
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		log.WithField("channel", r.channel).Error("relay: pubsub channel closed, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (r *RedisRelay) consume(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var m relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				log.WithError(err).Warn("relay: unable to parse message")
				continue
			}
			if m.Origin == r.origin {
				continue
			}
			r.feed.deliver(m.TaskID, m.Event)
		}
	}
}
