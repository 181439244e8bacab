// Package events is the in-process domain event channel. Application code
// publishes student activity (logins, completions, streak warnings) and the
// nudge delivery controller listens to turn them into immediate checks.
package events

import (
	"sync"
	"time"
)

// Type identifies a domain event kind.
type Type string

const (
	TypeLogin         Type = "login"
	TypeGoalCompleted Type = "goal_completed"
	TypeTaskCompleted Type = "task_completed"
	TypeStreakWarning Type = "streak_warning"
)

// Known reports whether the event type is one the retention core reacts to.
func (t Type) Known() bool {
	switch t {
	case TypeLogin, TypeGoalCompleted, TypeTaskCompleted, TypeStreakWarning:
		return true
	}
	return false
}

// Event is one domain event occurrence.
type Event struct {
	StudentID string    `json:"studentId"`
	Type      Type      `json:"eventType"`
	At        time.Time `json:"at"`
}

// Bus is a minimal in-process publish/subscribe fanout. Publishing never
// blocks: a subscriber that falls behind loses events rather than stalling
// the publisher, which is acceptable because every event only means "check
// soon" and the next poll covers any loss.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a listener. The returned cancel function removes the
// subscription and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
