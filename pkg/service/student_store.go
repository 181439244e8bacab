package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/pkg/student"
)

// studentStoreKeyPrefix is the prefix for all student record keys.
const studentStoreKeyPrefix = "retention:student:"

// RedisStudentStore implements student.Store using Redis JSON blobs.
// Records carry no TTL; students are primary data, not cache entries.
type RedisStudentStore struct {
	client *redis.Client
	cfg    RedisStudentStoreConfig
}

type RedisStudentStoreConfig struct{}

// NewRedisStudentStore creates a new Redis-backed student store.
func NewRedisStudentStore(client *redis.Client, cfg RedisStudentStoreConfig) *RedisStudentStore {
	return &RedisStudentStore{
		client: client,
		cfg:    cfg,
	}
}

// makeStudentKey creates a Redis key for a student record.
func makeStudentKey(studentID string) string {
	return fmt.Sprintf("%s%s", studentStoreKeyPrefix, studentID)
}

// GetStudent retrieves a student snapshot from Redis.
func (r *RedisStudentStore) GetStudent(ctx context.Context, studentID string) (*student.Student, error) {
	key := makeStudentKey(studentID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, student.ErrNotFound
	}
	if err != nil {
		logrus.Errorf("failed to get student %s: %v", studentID, err)
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	var s student.Student
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		logrus.Errorf("failed to unmarshal student %s: %v", studentID, err)
		return nil, fmt.Errorf("failed to unmarshal student: %w", err)
	}

	return &s, nil
}

// SaveStudent persists the full student record to Redis.
func (r *RedisStudentStore) SaveStudent(ctx context.Context, s *student.Student) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("student id is required")
	}

	key := makeStudentKey(s.ID)

	data, err := json.Marshal(s)
	if err != nil {
		logrus.Errorf("failed to marshal student %s: %v", s.ID, err)
		return fmt.Errorf("failed to marshal student: %w", err)
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		logrus.Errorf("failed to set student %s: %v", s.ID, err)
		return fmt.Errorf("failed to set student: %w", err)
	}

	logrus.Debugf("saved student %s", s.ID)
	return nil
}
