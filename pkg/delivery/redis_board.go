package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// dismissalChannel is the pub/sub channel carrying dismissed nudge ids.
const dismissalChannel = "retention:nudge_dismissals"

// RedisBoard implements Board on Redis: the flag is a TTL'd key and live
// notification rides a pub/sub channel, so delivery surfaces in different
// processes converge the same way tabs do over shared storage.
type RedisBoard struct {
	client *redis.Client
}

// NewRedisBoard creates a Redis-backed dismissal board.
func NewRedisBoard(client *redis.Client) *RedisBoard {
	return &RedisBoard{client: client}
}

func dismissalKey(nudgeID string) string {
	return fmt.Sprintf("%s%s", DismissalKeyPrefix, nudgeID)
}

// MarkDismissed implements Board.
func (b *RedisBoard) MarkDismissed(ctx context.Context, nudgeID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := b.client.Set(ctx, dismissalKey(nudgeID), "true", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set dismissal flag: %w", err)
	}
	if err := b.client.Publish(ctx, dismissalChannel, nudgeID).Err(); err != nil {
		// The flag is set; watchers that miss the publish still see the key
		// on their next check.
		logrus.Warnf("failed to publish dismissal for nudge %s: %v", nudgeID, err)
	}
	return nil
}

// IsDismissed implements Board.
func (b *RedisBoard) IsDismissed(ctx context.Context, nudgeID string) (bool, error) {
	n, err := b.client.Exists(ctx, dismissalKey(nudgeID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dismissal flag: %w", err)
	}
	return n > 0, nil
}

// Watch implements Board.
func (b *RedisBoard) Watch(ctx context.Context) (<-chan string, error) {
	sub := b.client.Subscribe(ctx, dismissalChannel)

	// Force the subscription to establish so a broken connection surfaces
	// here instead of as a silent dead channel.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to dismissals: %w", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

var _ Board = (*RedisBoard)(nil)
