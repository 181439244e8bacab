package nudge

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultRateLimitWindow is the rolling window within which at most one
// nudge may be recorded as shown per student.
const DefaultRateLimitWindow = 24 * time.Hour

// ErrRateLimited is returned when a nudge cannot be marked shown because
// another one already claimed the window. Callers absorb it silently; a
// suppressed nudge is a normal outcome, not a failure.
var ErrRateLimited = errors.New("nudge rate limit window not elapsed")

// RateLimiter enforces the per-student nudge window. Mark is the critical
// section: implementations must guarantee that for concurrent calls at most
// one wins per window, so at most one nudge is ever recorded as shown even
// if two were transiently generated.
type RateLimiter interface {
	// Allow reports whether the student's window has elapsed. Read-only.
	Allow(ctx context.Context, studentID string) (bool, error)

	// Mark atomically claims the window for the student. Returns false when
	// another nudge already holds it.
	Mark(ctx context.Context, studentID string) (bool, error)
}

// MemoryRateLimiter is an in-process RateLimiter for tests and
// single-instance deployments.
type MemoryRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	marks  map[string]time.Time
	now    func() time.Time
}

// NewMemoryRateLimiter creates a limiter with the given window. A zero
// window means DefaultRateLimitWindow.
func NewMemoryRateLimiter(window time.Duration) *MemoryRateLimiter {
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &MemoryRateLimiter{
		window: window,
		marks:  make(map[string]time.Time),
		now:    time.Now,
	}
}

// SetClock overrides the limiter's clock. Test hook.
func (l *MemoryRateLimiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Allow implements RateLimiter.
func (l *MemoryRateLimiter) Allow(ctx context.Context, studentID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	mark, ok := l.marks[studentID]
	if !ok {
		return true, nil
	}
	return l.now().Sub(mark) >= l.window, nil
}

// Mark implements RateLimiter.
func (l *MemoryRateLimiter) Mark(ctx context.Context, studentID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if mark, ok := l.marks[studentID]; ok && now.Sub(mark) < l.window {
		return false, nil
	}
	l.marks[studentID] = now
	return true, nil
}
