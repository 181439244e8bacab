package nudge

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brightpath-edu/retention-service/pkg/risk"
	riskBuiltin "github.com/brightpath-edu/retention-service/pkg/risk/builtin"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

var composerNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestComposer(t *testing.T, store student.Store) *Composer {
	t.Helper()

	riskBuiltin.RegisterBuiltinRules()
	registry := risk.NewRegistry()
	if err := risk.RegisterRules(registry, riskBuiltin.DefaultRuleConfigs()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	catalog := NewCatalog()
	if err := catalog.AddAll(DefaultTemplates()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	limiter := NewMemoryRateLimiter(24 * time.Hour)
	limiter.SetClock(func() time.Time { return composerNow })

	return NewComposer(store, risk.NewAssessor(registry), catalog, limiter, ComposerConfig{
		Window: 24 * time.Hour,
		Now:    func() time.Time { return composerNow },
		Intn:   func(n int) int { return 0 },
	})
}

// inactiveStudent is at risk with a multi-day login gap.
func inactiveStudent() *student.Student {
	return &student.Student{
		ID:          "s1",
		Name:        "Maya",
		Age:         9,
		CreatedAt:   composerNow.AddDate(0, 0, -20),
		LastLoginAt: composerNow.AddDate(0, 0, -5),
		CompletedSessions: []string{
			"a", "b", "c", "d", "e",
		},
		Conversations: 6,
		TaskHistory: []student.TaskRecord{
			{ID: "t1", Subject: "math", CompletedAt: composerNow.AddDate(0, 0, -5)},
		},
	}
}

func TestGenerate_InactiveStudent(t *testing.T) {
	store := student.NewMemoryStore()
	store.SaveStudent(context.Background(), inactiveStudent())
	composer := newTestComposer(t, store)

	msg, err := composer.Generate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if msg == nil {
		t.Fatal("Expected a nudge for an inactive at-risk student")
	}

	if msg.Trigger != TriggerInactive {
		t.Errorf("Expected trigger inactive, got %s", msg.Trigger)
	}
	if msg.StudentID != "s1" {
		t.Errorf("Expected studentID s1, got %s", msg.StudentID)
	}
	if msg.ID == "" {
		t.Error("Expected a generated nudge ID")
	}
	if !msg.ExpiresAt.Equal(composerNow.Add(24 * time.Hour)) {
		t.Errorf("Expected expiry one window out, got %v", msg.ExpiresAt)
	}
	if msg.Encouragement == "" || msg.CallToAction == "" {
		t.Error("Expected all message slots populated")
	}
	if strings.Contains(msg.Celebration+msg.Encouragement+msg.CallToAction, "{") {
		t.Errorf("Expected no unresolved placeholders: %q %q %q",
			msg.Celebration, msg.Encouragement, msg.CallToAction)
	}
	if err := msg.Validate(); err != nil {
		t.Errorf("Expected generated message to validate: %v", err)
	}
}

func TestGenerate_HealthyStudentGetsNothing(t *testing.T) {
	s := inactiveStudent()
	s.LastLoginAt = composerNow.Add(-2 * time.Hour)
	s.Conversations = 10
	store := student.NewMemoryStore()
	store.SaveStudent(context.Background(), s)
	composer := newTestComposer(t, store)

	msg, err := composer.Generate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if msg != nil {
		t.Errorf("Expected no nudge for healthy student, got trigger %s", msg.Trigger)
	}
}

func TestGenerate_UnknownStudent(t *testing.T) {
	composer := newTestComposer(t, student.NewMemoryStore())

	msg, err := composer.Generate(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Expected unknown student to be silent, got error: %v", err)
	}
	if msg != nil {
		t.Error("Expected no nudge for unknown student")
	}
}

func TestGenerate_RateLimitIdempotent(t *testing.T) {
	store := student.NewMemoryStore()
	store.SaveStudent(context.Background(), inactiveStudent())
	composer := newTestComposer(t, store)
	ctx := context.Background()

	first, err := composer.Generate(ctx, "s1")
	if err != nil || first == nil {
		t.Fatalf("Expected first nudge, got msg=%v err=%v", first, err)
	}

	if err := composer.MarkShown(ctx, "s1", first.ID, first.Trigger); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second, err := composer.Generate(ctx, "s1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if second != nil {
		t.Error("Expected second check inside window to return nothing")
	}
}

func TestMarkShown_SecondClaimLoses(t *testing.T) {
	store := student.NewMemoryStore()
	store.SaveStudent(context.Background(), inactiveStudent())
	composer := newTestComposer(t, store)
	ctx := context.Background()

	if err := composer.MarkShown(ctx, "s1", "n1", TriggerInactive); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := composer.MarkShown(ctx, "s1", "n2", TriggerInactive); err != ErrRateLimited {
		t.Errorf("Expected ErrRateLimited for second claim, got %v", err)
	}

	s, _ := store.GetStudent(ctx, "s1")
	if s.Metadata.LastNudgeShown == nil || !s.Metadata.LastNudgeShown.Equal(composerNow) {
		t.Errorf("Expected lastNudgeShown set to now, got %v", s.Metadata.LastNudgeShown)
	}
	if len(s.Metadata.NudgeHistory) != 1 {
		t.Fatalf("Expected exactly one shown record, got %d", len(s.Metadata.NudgeHistory))
	}
	if s.Metadata.NudgeHistory[0].NudgeID != "n1" {
		t.Errorf("Expected winning nudge recorded, got %s", s.Metadata.NudgeHistory[0].NudgeID)
	}
}

func TestGenerate_TriggerPriority(t *testing.T) {
	// Goal completion outranks inactivity even when both hold.
	s := inactiveStudent()
	s.Goals = []student.Goal{{Subject: "math", Progress: 100}}
	store := student.NewMemoryStore()
	store.SaveStudent(context.Background(), s)
	composer := newTestComposer(t, store)

	msg, err := composer.Generate(context.Background(), "s1")
	if err != nil || msg == nil {
		t.Fatalf("Expected nudge, got msg=%v err=%v", msg, err)
	}
	if msg.Trigger != TriggerGoalCompleted {
		t.Errorf("Expected goal_completed to outrank inactive, got %s", msg.Trigger)
	}
}

func TestGenerate_InactiveThresholdFollowsRuleConfig(t *testing.T) {
	// Raising the inactivity rule's critical_days must raise the inactive
	// trigger threshold with it; a 5-day gap under a 7-day threshold falls
	// through to the broken streak.
	s := inactiveStudent()
	s.Streaks = map[student.StreakType]student.Streak{
		student.StreakLogin: {Current: 0, Longest: 6, LastActive: composerNow.AddDate(0, 0, -5)},
	}
	store := student.NewMemoryStore()
	store.SaveStudent(context.Background(), s)

	riskBuiltin.RegisterBuiltinRules()
	registry := risk.NewRegistry()
	configs := riskBuiltin.DefaultRuleConfigs()
	for i := range configs {
		if configs[i].ID == risk.RuleInactivity {
			configs[i].Parameters = map[string]interface{}{"critical_days": 7}
		}
	}
	if err := risk.RegisterRules(registry, configs); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	catalog := NewCatalog()
	if err := catalog.AddAll(DefaultTemplates()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	limiter := NewMemoryRateLimiter(24 * time.Hour)
	limiter.SetClock(func() time.Time { return composerNow })

	composer := NewComposer(store, risk.NewAssessor(registry), catalog, limiter, ComposerConfig{
		Window:            24 * time.Hour,
		InactiveAfterDays: 7,
		Now:               func() time.Time { return composerNow },
		Intn:              func(n int) int { return 0 },
	})

	msg, err := composer.Generate(context.Background(), "s1")
	if err != nil || msg == nil {
		t.Fatalf("Expected nudge, got msg=%v err=%v", msg, err)
	}
	if msg.Trigger != TriggerStreakBroken {
		t.Errorf("Expected streak_broken under raised inactivity threshold, got %s", msg.Trigger)
	}
}

func TestGenerate_CelebrationOverride(t *testing.T) {
	s := inactiveStudent()
	s.Achievements = []string{"first-steps", "streak-3"}
	store := student.NewMemoryStore()
	store.SaveStudent(context.Background(), s)
	composer := newTestComposer(t, store)

	msg, err := composer.Generate(context.Background(), "s1")
	if err != nil || msg == nil {
		t.Fatalf("Expected nudge, got msg=%v err=%v", msg, err)
	}
	// Intn pinned to 0 picks the achievements candidate.
	if msg.Celebration != "You've earned 2 achievements already!" {
		t.Errorf("Expected achievement celebration override, got %q", msg.Celebration)
	}
}

func TestGenerate_PriorityMatchesRiskLevel(t *testing.T) {
	s := &student.Student{
		ID:          "s1",
		Name:        "Leo",
		Age:         16,
		CreatedAt:   composerNow.AddDate(0, 0, -10),
		LastLoginAt: composerNow.AddDate(0, 0, -4),
	}
	store := student.NewMemoryStore()
	store.SaveStudent(context.Background(), s)
	composer := newTestComposer(t, store)

	msg, err := composer.Generate(context.Background(), "s1")
	if err != nil || msg == nil {
		t.Fatalf("Expected nudge, got msg=%v err=%v", msg, err)
	}
	if msg.Priority != risk.LevelHigh {
		t.Errorf("Expected high priority, got %s", msg.Priority)
	}
}

func TestRecordInteraction_AppendOnly(t *testing.T) {
	store := student.NewMemoryStore()
	store.SaveStudent(context.Background(), inactiveStudent())
	composer := newTestComposer(t, store)
	ctx := context.Background()

	if err := composer.RecordInteraction(ctx, "s1", "n1", ActionDismissed, TriggerInactive); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := composer.RecordInteraction(ctx, "s1", "n1", ActionExpired, TriggerInactive); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	s, _ := store.GetStudent(ctx, "s1")
	if len(s.Metadata.NudgeHistory) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(s.Metadata.NudgeHistory))
	}
	if s.Metadata.NudgeHistory[0].Action != string(ActionDismissed) {
		t.Errorf("Expected first record preserved, got %s", s.Metadata.NudgeHistory[0].Action)
	}
}
