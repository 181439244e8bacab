package builtin

import (
	"time"

	"github.com/brightpath-edu/retention-service/pkg/risk"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

// DefaultBrokenStreakPoints is the score added when a previously earned
// streak has dropped to zero.
const DefaultBrokenStreakPoints = 15

// BrokenStreakRule fires when any streak type sits at zero after the student
// previously built one up. Losing a streak is a known disengagement moment.
type BrokenStreakRule struct {
	config risk.RuleConfig
	points int
}

// NewBrokenStreakRule creates the rule with parameters from config.
func NewBrokenStreakRule(config risk.RuleConfig) *BrokenStreakRule {
	return &BrokenStreakRule{
		config: config,
		points: config.GetInt("points", DefaultBrokenStreakPoints),
	}
}

// ID returns the rule identifier.
func (r *BrokenStreakRule) ID() string {
	return r.config.ID
}

// Name returns the rule name.
func (r *BrokenStreakRule) Name() string {
	return "Broken Streak"
}

// Config returns the rule configuration.
func (r *BrokenStreakRule) Config() risk.RuleConfig {
	return r.config
}

// Evaluate checks every streak type for a current=0, longest>0 pattern.
func (r *BrokenStreakRule) Evaluate(s *student.Student, now time.Time) (int, string, bool) {
	if !s.HasBrokenStreak() {
		return 0, "", false
	}
	return r.points, "Lost previous streak", true
}
