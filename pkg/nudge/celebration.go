package nudge

import (
	"fmt"

	"github.com/brightpath-edu/retention-service/pkg/student"
)

// Bounds for goal-progress celebrations: a goal partway through is praised
// for momentum, a finished one for completion.
const (
	celebrationProgressMin = 50
	celebrationProgressMax = 100
	celebrationTaskCount   = 10
)

// findCelebrationPoint scans the snapshot for something specific to praise:
// earned achievements, a best streak, a goal past the halfway mark, a
// finished goal, or a solid practice task count. Specific factual praise
// outperforms template copy, so when any fact qualifies it overrides the
// template's celebration slot. intn picks among qualifying facts.
func findCelebrationPoint(s *student.Student, intn func(n int) int) (string, bool) {
	var candidates []string

	if n := len(s.Achievements); n > 0 {
		if n == 1 {
			candidates = append(candidates, "You've earned an achievement already!")
		} else {
			candidates = append(candidates,
				fmt.Sprintf("You've earned %d achievements already!", n))
		}
	}

	if streak := s.LongestStreak(); streak > 0 {
		candidates = append(candidates,
			fmt.Sprintf("Your best streak is %d days. That took real commitment!", streak))
	}

	for _, g := range s.Goals {
		if g.Progress >= celebrationProgressMin && g.Progress < celebrationProgressMax {
			candidates = append(candidates,
				fmt.Sprintf("You're %d%% of the way through %s!", int(g.Progress), g.Subject))
			break
		}
	}

	for _, g := range s.Goals {
		if g.Completed() {
			candidates = append(candidates,
				fmt.Sprintf("You finished your %s goal!", g.Subject))
			break
		}
	}

	if n := len(s.TaskHistory); n >= celebrationTaskCount {
		candidates = append(candidates,
			fmt.Sprintf("You've completed %d practice tasks!", n))
	}

	if len(candidates) == 0 {
		return "", false
	}
	return candidates[intn(len(candidates))], true
}
