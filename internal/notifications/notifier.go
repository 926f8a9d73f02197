// Package notifications publishes post activity events over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
)

// BroadcastChannel receives every post activity event.
const BroadcastChannel = "notifications:broadcast"

// Post activity event types.
const (
	EventPostCreated         = "post_created"
	EventPostDeleted         = "post_deleted"
	EventPostReactionUpdated = "post_reaction_updated"
	EventCommentCreated      = "comment_created"
	EventCommentDeleted      = "comment_deleted"
)

// PostEvent describes a change to a post aggregate.
type PostEvent struct {
	Type      string    `json:"type"`
	PostID    string    `json:"post_id"`
	ActorID   string    `json:"actor_id"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CommentID string    `json:"comment_id,omitempty"`
	Liked     *bool     `json:"liked,omitempty"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	At        time.Time `json:"at"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID string) string {
	return "notifications:user:" + userID
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a notification payload to all subscribers.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, BroadcastChannel, payload).Err()
}

// PublishPostEvent broadcasts evt and, when someone else acted on the post,
// also notifies the post owner on their user channel.
func (n *Notifier) PublishPostEvent(ctx context.Context, evt PostEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := n.PublishBroadcast(ctx, string(payload)); err != nil {
		return fmt.Errorf("publish broadcast: %w", err)
	}
	if evt.OwnerID != "" && evt.OwnerID != evt.ActorID {
		if err := n.PublishUser(ctx, evt.OwnerID, string(payload)); err != nil {
			return fmt.Errorf("publish to owner: %w", err)
		}
	}
	return nil
}

// StartPatternSubscriber subscribes to the broadcast channel and every user channel and
// calls onMessage for each incoming message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*", BroadcastChannel)
	// Wait for the subscription to be confirmed so no early publish is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
