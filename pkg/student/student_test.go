package student

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestAgeGroupFor(t *testing.T) {
	tests := []struct {
		age      int
		expected AgeGroup
	}{
		{5, AgeGroupYoung},
		{11, AgeGroupYoung},
		{12, AgeGroupMiddle},
		{14, AgeGroupMiddle},
		{15, AgeGroupTeen},
		{18, AgeGroupTeen},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("age_%d", tt.age), func(t *testing.T) {
			if got := AgeGroupFor(tt.age); got != tt.expected {
				t.Errorf("Expected age group %s for age %d, got %s", tt.expected, tt.age, got)
			}
		})
	}
}

func TestDaysSinceLastLogin_FallsBackToCreatedAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	s := &Student{
		ID:        "s1",
		CreatedAt: now.AddDate(0, 0, -6),
	}

	if got := s.DaysSinceLastLogin(now); got != 6 {
		t.Errorf("Expected 6 days since last login (from signup), got %d", got)
	}

	s.LastLoginAt = now.AddDate(0, 0, -2)
	if got := s.DaysSinceLastLogin(now); got != 2 {
		t.Errorf("Expected 2 days since last login, got %d", got)
	}
}

func TestHasBrokenStreak(t *testing.T) {
	tests := []struct {
		name     string
		streaks  map[StreakType]Streak
		expected bool
	}{
		{
			name:     "no streaks at all",
			streaks:  nil,
			expected: false,
		},
		{
			name: "active streak",
			streaks: map[StreakType]Streak{
				StreakLogin: {Current: 4, Longest: 10},
			},
			expected: false,
		},
		{
			name: "lost streak",
			streaks: map[StreakType]Streak{
				StreakLogin: {Current: 0, Longest: 7},
			},
			expected: true,
		},
		{
			name: "never had a streak",
			streaks: map[StreakType]Streak{
				StreakPractice: {Current: 0, Longest: 0},
			},
			expected: false,
		},
		{
			name: "one active one broken",
			streaks: map[StreakType]Streak{
				StreakLogin:    {Current: 3, Longest: 3},
				StreakPractice: {Current: 0, Longest: 5},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Student{Streaks: tt.streaks}
			if got := s.HasBrokenStreak(); got != tt.expected {
				t.Errorf("Expected HasBrokenStreak=%v, got %v", tt.expected, got)
			}
		})
	}
}

func TestHasCompletedGoalWithoutNew(t *testing.T) {
	tests := []struct {
		name     string
		goals    []Goal
		expected bool
	}{
		{"no goals", nil, false},
		{"one completed", []Goal{{Subject: "math", Progress: 100}}, true},
		{"completed plus in progress", []Goal{{Subject: "math", Progress: 100}, {Subject: "reading", Progress: 30}}, false},
		{"all in progress", []Goal{{Subject: "math", Progress: 60}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Student{Goals: tt.goals}
			if got := s.HasCompletedGoalWithoutNew(); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestAppendNudgeRecord_Bounded(t *testing.T) {
	var m Metadata
	for i := 0; i < maxNudgeHistory+10; i++ {
		m.AppendNudgeRecord(NudgeRecord{NudgeID: fmt.Sprintf("n%d", i), Action: "shown"})
	}

	if len(m.NudgeHistory) != maxNudgeHistory {
		t.Fatalf("Expected history capped at %d, got %d", maxNudgeHistory, len(m.NudgeHistory))
	}

	// Oldest entries trimmed, newest kept.
	if m.NudgeHistory[len(m.NudgeHistory)-1].NudgeID != fmt.Sprintf("n%d", maxNudgeHistory+9) {
		t.Errorf("Expected newest record kept, got %s", m.NudgeHistory[len(m.NudgeHistory)-1].NudgeID)
	}
}

func TestClone_DeepCopy(t *testing.T) {
	now := time.Now()
	s := &Student{
		ID:    "s1",
		Goals: []Goal{{Subject: "math", Progress: 40, Topics: map[string]float64{"algebra": 20}}},
		Streaks: map[StreakType]Streak{
			StreakLogin: {Current: 2, Longest: 5},
		},
		Metadata: Metadata{LastNudgeShown: &now},
	}

	c := s.Clone()
	c.Goals[0].Progress = 99
	c.Goals[0].Topics["algebra"] = 99
	c.Streaks[StreakLogin] = Streak{Current: 0}
	*c.Metadata.LastNudgeShown = now.Add(time.Hour)

	if s.Goals[0].Progress != 40 {
		t.Errorf("Clone mutated original goal progress: %v", s.Goals[0].Progress)
	}
	if s.Goals[0].Topics["algebra"] != 20 {
		t.Errorf("Clone mutated original topic progress: %v", s.Goals[0].Topics["algebra"])
	}
	if s.Streaks[StreakLogin].Current != 2 {
		t.Errorf("Clone mutated original streaks")
	}
	if !s.Metadata.LastNudgeShown.Equal(now) {
		t.Errorf("Clone shares LastNudgeShown pointer with original")
	}
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := &Student{ID: "s1", Name: "Ada"}
	if err := store.SaveStudent(ctx, s); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Mutating the saved pointer must not affect the stored copy.
	s.Name = "changed"

	got, err := store.GetStudent(ctx, "s1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("Expected stored copy isolated from caller, got name %q", got.Name)
	}

	if _, err := store.GetStudent(ctx, "missing"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for unknown student, got %v", err)
	}
}
