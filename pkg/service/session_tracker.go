package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	sessionTrackerDefaultTTL = 28 * 24 * time.Hour // 4 weeks retention
	sessionTrackerKeyPrefix  = "retention:sessions:"
)

// SessionActivity tracks login counts per ISO week for a student.
// Keys are yearWeek strings (YYYYWW), values are login counts for that
// week. Four weeks of history is enough to tell quick drop-off apart
// from slow disengagement.
// Example: {"202635": 5, "202634": 3} means 5 logins in week 35, 3 in week 34.
type SessionActivity struct {
	LoginCount map[string]int `json:"loginCount"`
}

// TotalLogins sums login counts across all retained weeks.
func (a *SessionActivity) TotalLogins() int {
	total := 0
	for _, n := range a.LoginCount {
		total += n
	}
	return total
}

// RedisSessionTracker records login activity per student in a Redis hash
// keyed by ISO week. Counts are incremented atomically so concurrent
// login events from multiple app instances never lose updates.
type RedisSessionTracker struct {
	client *redis.Client
}

func NewRedisSessionTracker(client *redis.Client) *RedisSessionTracker {
	return &RedisSessionTracker{client: client}
}

func makeSessionTrackerKey(studentID string) string {
	return fmt.Sprintf("%s%s", sessionTrackerKeyPrefix, studentID)
}

// yearWeek returns the ISO year-week string in format "YYYYWW".
func yearWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d%02d", year, week)
}

// RecordLogin increments the current week's login count and prunes
// weeks older than the retention window.
func (r *RedisSessionTracker) RecordLogin(ctx context.Context, studentID string, now time.Time) error {
	key := makeSessionTrackerKey(studentID)
	week := yearWeek(now)

	if err := r.client.HIncrBy(ctx, key, week, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment login count: %w", err)
	}

	allWeeks, err := r.client.HKeys(ctx, key).Result()
	if err == nil && len(allWeeks) > 0 {
		cutoff := yearWeek(now.Add(-sessionTrackerDefaultTTL))

		var stale []string
		for _, w := range allWeeks {
			if w < cutoff {
				stale = append(stale, w)
			}
		}
		if len(stale) > 0 {
			r.client.HDel(ctx, key, stale...)
		}
	}

	r.client.Expire(ctx, key, sessionTrackerDefaultTTL)

	return nil
}

// GetActivity retrieves weekly login activity for a student. Returns
// activity with an empty map when nothing has been recorded.
func (r *RedisSessionTracker) GetActivity(ctx context.Context, studentID string) (*SessionActivity, error) {
	key := makeSessionTrackerKey(studentID)

	data, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session activity: %w", err)
	}

	loginCount := make(map[string]int)
	for week, countStr := range data {
		count, err := strconv.Atoi(countStr)
		if err != nil {
			continue
		}
		loginCount[week] = count
	}

	return &SessionActivity{LoginCount: loginCount}, nil
}
