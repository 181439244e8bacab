package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestMemoryBoard_MarkAndCheck(t *testing.T) {
	board := NewMemoryBoard()
	ctx := context.Background()

	if dismissed, _ := board.IsDismissed(ctx, "n1"); dismissed {
		t.Error("Expected fresh nudge not dismissed")
	}

	if err := board.MarkDismissed(ctx, "n1", time.Hour); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if dismissed, _ := board.IsDismissed(ctx, "n1"); !dismissed {
		t.Error("Expected nudge dismissed after mark")
	}
	if dismissed, _ := board.IsDismissed(ctx, "n2"); dismissed {
		t.Error("Expected other nudge unaffected")
	}
}

func TestMemoryBoard_FlagExpiry(t *testing.T) {
	board := NewMemoryBoard()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	board.now = func() time.Time { return now }
	ctx := context.Background()

	board.MarkDismissed(ctx, "n1", time.Hour)

	now = now.Add(30 * time.Minute)
	if dismissed, _ := board.IsDismissed(ctx, "n1"); !dismissed {
		t.Error("Expected flag alive inside ttl")
	}

	now = now.Add(31 * time.Minute)
	if dismissed, _ := board.IsDismissed(ctx, "n1"); dismissed {
		t.Error("Expected flag expired after ttl")
	}
}

func TestMemoryBoard_WatchDeliversDismissals(t *testing.T) {
	board := NewMemoryBoard()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := board.Watch(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	board.MarkDismissed(ctx, "n1", time.Hour)

	select {
	case id := <-ch:
		if id != "n1" {
			t.Errorf("Expected n1, got %s", id)
		}
	case <-time.After(time.Second):
		t.Fatal("Watcher did not receive dismissal")
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Expected channel closed after context cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed after context cancel")
	}
}

func TestRedisBoard(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	board := NewRedisBoard(client)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := board.Watch(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := board.MarkDismissed(ctx, "n1", time.Hour); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if dismissed, _ := board.IsDismissed(ctx, "n1"); !dismissed {
		t.Error("Expected flag set in redis")
	}

	select {
	case id := <-ch:
		if id != "n1" {
			t.Errorf("Expected n1 published, got %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watcher did not receive published dismissal")
	}

	// The flag expires with the nudge.
	mr.FastForward(2 * time.Hour)
	if dismissed, _ := board.IsDismissed(ctx, "n1"); dismissed {
		t.Error("Expected flag expired")
	}
}
