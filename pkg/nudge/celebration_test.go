package nudge

import (
	"testing"

	"github.com/brightpath-edu/retention-service/pkg/student"
)

func TestFindCelebrationPoint(t *testing.T) {
	pickFirst := func(n int) int { return 0 }

	tests := []struct {
		name     string
		student  *student.Student
		expected string
		found    bool
	}{
		{
			name:    "nothing to celebrate",
			student: &student.Student{ID: "s1"},
			found:   false,
		},
		{
			name:     "single achievement",
			student:  &student.Student{Achievements: []string{"a"}},
			expected: "You've earned an achievement already!",
			found:    true,
		},
		{
			name: "longest streak",
			student: &student.Student{
				Streaks: map[student.StreakType]student.Streak{
					student.StreakLogin: {Current: 0, Longest: 6},
				},
			},
			expected: "Your best streak is 6 days. That took real commitment!",
			found:    true,
		},
		{
			name:     "goal past halfway",
			student:  &student.Student{Goals: []student.Goal{{Subject: "math", Progress: 72}}},
			expected: "You're 72% of the way through math!",
			found:    true,
		},
		{
			name:     "completed goal",
			student:  &student.Student{Goals: []student.Goal{{Subject: "reading", Progress: 100}}},
			expected: "You finished your reading goal!",
			found:    true,
		},
		{
			name: "task count",
			student: &student.Student{
				TaskHistory: make([]student.TaskRecord, 12),
			},
			expected: "You've completed 12 practice tasks!",
			found:    true,
		},
		{
			name:    "goal below halfway does not qualify",
			student: &student.Student{Goals: []student.Goal{{Subject: "math", Progress: 30}}},
			found:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := findCelebrationPoint(tt.student, pickFirst)
			if found != tt.found {
				t.Fatalf("Expected found=%v, got %v (%q)", tt.found, found, got)
			}
			if found && got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFindCelebrationPoint_RandomPick(t *testing.T) {
	s := &student.Student{
		Achievements: []string{"a", "b"},
		Goals:        []student.Goal{{Subject: "math", Progress: 100}},
	}

	first, _ := findCelebrationPoint(s, func(n int) int { return 0 })
	second, _ := findCelebrationPoint(s, func(n int) int { return n - 1 })

	if first == second {
		t.Errorf("Expected intn to select among candidates, got %q twice", first)
	}
}
