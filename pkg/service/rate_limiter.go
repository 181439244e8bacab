package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/pkg/nudge"
)

// rateLimiterKeyPrefix is the prefix for nudge window claim keys.
const rateLimiterKeyPrefix = "retention:nudge_window:"

// RedisRateLimiter implements nudge.RateLimiter on Redis. The window claim
// is a SET NX with TTL, which makes Mark an atomic check-and-claim: when two
// instances race for the same student, Redis picks exactly one winner, and
// the key's expiry implements the rolling window with no cleanup job.
type RedisRateLimiter struct {
	client *redis.Client
	window time.Duration
}

// NewRedisRateLimiter creates a limiter with the given window. A zero
// window means nudge.DefaultRateLimitWindow.
func NewRedisRateLimiter(client *redis.Client, window time.Duration) *RedisRateLimiter {
	if window <= 0 {
		window = nudge.DefaultRateLimitWindow
	}
	return &RedisRateLimiter{
		client: client,
		window: window,
	}
}

// makeWindowKey creates the claim key for a student.
func makeWindowKey(studentID string) string {
	return fmt.Sprintf("%s%s", rateLimiterKeyPrefix, studentID)
}

// Allow implements nudge.RateLimiter.
func (r *RedisRateLimiter) Allow(ctx context.Context, studentID string) (bool, error) {
	n, err := r.client.Exists(ctx, makeWindowKey(studentID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check nudge window: %w", err)
	}
	return n == 0, nil
}

// Mark implements nudge.RateLimiter.
func (r *RedisRateLimiter) Mark(ctx context.Context, studentID string) (bool, error) {
	won, err := r.client.SetNX(ctx, makeWindowKey(studentID), time.Now().UTC().Format(time.RFC3339), r.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim nudge window: %w", err)
	}
	if !won {
		logrus.Debugf("nudge window already claimed for student %s", studentID)
	}
	return won, nil
}
