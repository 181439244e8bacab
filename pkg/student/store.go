package student

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by stores when no record exists for a student id.
var ErrNotFound = errors.New("student not found")

// Store is the student persistence boundary. Implementations must be
// read-after-write consistent for a single student.
type Store interface {
	// GetStudent returns the student's current snapshot.
	// Returns ErrNotFound when no record exists.
	GetStudent(ctx context.Context, id string) (*Student, error)

	// SaveStudent persists the full student record.
	SaveStudent(ctx context.Context, s *Student) error
}

// MemoryStore is an in-memory Store used in tests and single-process
// deployments. Snapshots are copied on the way in and out so callers can
// never mutate stored state through a retained pointer.
type MemoryStore struct {
	mu       sync.RWMutex
	students map[string]*Student
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		students: make(map[string]*Student),
	}
}

// GetStudent implements Store.
func (m *MemoryStore) GetStudent(ctx context.Context, id string) (*Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// SaveStudent implements Store.
func (m *MemoryStore) SaveStudent(ctx context.Context, s *Student) error {
	if s == nil || s.ID == "" {
		return errors.New("student id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.students[s.ID] = s.Clone()
	return nil
}
