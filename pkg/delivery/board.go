package delivery

import (
	"context"
	"sync"
	"time"
)

// DismissalKeyPrefix is the shared-storage key prefix for dismissal flags.
const DismissalKeyPrefix = "nudge_dismissed_"

// Board is the shared dismissal channel between delivery surfaces showing
// the same student's nudges. A flag is a monotonic "dismissed" boolean:
// written once by whichever surface acts first, read by the rest, never
// un-set. Entries expire with the nudge so the store stays bounded.
type Board interface {
	// MarkDismissed sets the dismissal flag for a nudge id.
	MarkDismissed(ctx context.Context, nudgeID string, ttl time.Duration) error

	// IsDismissed reports whether the flag is set.
	IsDismissed(ctx context.Context, nudgeID string) (bool, error)

	// Watch streams dismissed nudge ids until ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}

// MemoryBoard implements Board in process memory. Controllers sharing one
// MemoryBoard behave like browser tabs sharing local storage.
type MemoryBoard struct {
	mu       sync.Mutex
	flags    map[string]time.Time // nudge id -> expiry
	watchers map[int]chan string
	nextID   int
	now      func() time.Time
}

// NewMemoryBoard creates an empty in-memory board.
func NewMemoryBoard() *MemoryBoard {
	return &MemoryBoard{
		flags:    make(map[string]time.Time),
		watchers: make(map[int]chan string),
		now:      time.Now,
	}
}

// MarkDismissed implements Board.
func (b *MemoryBoard) MarkDismissed(ctx context.Context, nudgeID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.flags[nudgeID] = b.now().Add(ttl)
	for _, ch := range b.watchers {
		select {
		case ch <- nudgeID:
		default:
		}
	}
	return nil
}

// IsDismissed implements Board.
func (b *MemoryBoard) IsDismissed(ctx context.Context, nudgeID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.flags[nudgeID]
	if !ok {
		return false, nil
	}
	if b.now().After(expiry) {
		delete(b.flags, nudgeID)
		return false, nil
	}
	return true, nil
}

// Watch implements Board.
func (b *MemoryBoard) Watch(ctx context.Context) (<-chan string, error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan string, 16)
	b.watchers[id] = ch
	b.mu.Unlock()

	out := make(chan string)
	go func() {
		defer close(out)
		defer func() {
			b.mu.Lock()
			delete(b.watchers, id)
			b.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case nudgeID := <-ch:
				select {
				case out <- nudgeID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
