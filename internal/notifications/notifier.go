// Package notifications publishes user-facing events to Redis. Each event is
// sent on the user's pub/sub channel for live clients and kept in a short
// per-user inbox for clients that poll.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event types.
const (
	EventModerationDecision = "moderation_decision"
	EventAccountStatus      = "account_status"
	EventApplicationStatus  = "application_status"
	EventNewApplication     = "new_application"
)

const (
	inboxSize = 50
	inboxTTL  = 30 * 24 * time.Hour
)

// Event is the payload delivered to a user.
type Event struct {
	Type       string    `json:"type"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   uint      `json:"entity_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Notifier provides helpers to publish notifications into Redis channels.
// A nil client turns every call into a no-op.
type Notifier struct {
	rdb *redis.Client
	now func() time.Time
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, now: time.Now}
}

// UserChannel is the pub/sub channel of one user.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

const userChannelPattern = "notifications:user:*"

func inboxKey(userID uint) string {
	return fmt.Sprintf("notifications:inbox:%d", userID)
}

// Notify publishes ev to userID and appends it to the user's inbox.
func (n *Notifier) Notify(ctx context.Context, userID uint, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = n.now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	key := inboxKey(userID)
	pipe := n.rdb.TxPipeline()
	pipe.Publish(ctx, UserChannel(userID), payload)
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, inboxSize-1)
	pipe.Expire(ctx, key, inboxTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns up to limit inbox events, newest first.
func (n *Notifier) Recent(ctx context.Context, userID uint, limit int) ([]Event, error) {
	events := []Event{}
	if n == nil || n.rdb == nil {
		return events, nil
	}
	if limit <= 0 || limit > inboxSize {
		limit = inboxSize
	}
	raw, err := n.rdb.LRange(ctx, inboxKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	for _, item := range raw {
		var ev Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Clear empties the user's inbox.
func (n *Notifier) Clear(ctx context.Context, userID uint) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Del(ctx, inboxKey(userID)).Err()
}

// StartPatternSubscriber subscribes to every user channel and calls
// onMessage for each incoming message until ctx is done.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelPattern, err)
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
							slog.Default().Error("panic in notification subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
