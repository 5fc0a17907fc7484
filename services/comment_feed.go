// services/comment_feed.go - In-process fan-out of comment events to live subscribers
package services

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskhub/models"
)

const (
	EventCommentCreated = "comment.created"
	EventCommentDeleted = "comment.deleted"

	feedBufferSize = 32
)

type FeedEvent struct {
	Type    string          `json:"type"`
	Comment *models.Comment `json:"comment"`
}

// CommentFeed delivers events published after a commit to websocket
// subscribers of the same task. Slow subscribers lose events rather than
// block publishers. A nil *CommentFeed is a valid no-op feed.
type CommentFeed struct {
	mu    sync.RWMutex
	subs  map[uint]map[string]chan FeedEvent
	relay Relay
}

// Relay forwards locally published events to other server instances.
type Relay interface {
	Forward(taskID uint, ev FeedEvent)
}

// SetRelay must be called before the feed is shared.
func (f *CommentFeed) SetRelay(r Relay) {
	f.relay = r
}

func NewCommentFeed() *CommentFeed {
	return &CommentFeed{subs: make(map[uint]map[string]chan FeedEvent)}
}

// Subscribe registers a listener for taskID. cancel must be called once.
func (f *CommentFeed) Subscribe(taskID uint) (<-chan FeedEvent, func()) {
	id := uuid.NewString()
	ch := make(chan FeedEvent, feedBufferSize)

	f.mu.Lock()
	if f.subs[taskID] == nil {
		f.subs[taskID] = make(map[string]chan FeedEvent)
	}
	f.subs[taskID][id] = ch
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[taskID], id)
			if len(f.subs[taskID]) == 0 {
				delete(f.subs, taskID)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to local subscribers and hands it to the relay.
func (f *CommentFeed) Publish(taskID uint, ev FeedEvent) {
	if f == nil {
		return
	}
	f.deliver(taskID, ev)
	if f.relay != nil {
		f.relay.Forward(taskID, ev)
	}
}

func (f *CommentFeed) deliver(taskID uint, ev FeedEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for id, ch := range f.subs[taskID] {
		select {
		case ch <- ev:
		default:
			log.WithFields(log.Fields{"task": taskID, "subscriber": id}).Debug("comment feed subscriber is full, dropping event")
		}
	}
}

// Subscribers returns the number of live subscribers for taskID.
func (f *CommentFeed) Subscribers(taskID uint) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[taskID])
}
