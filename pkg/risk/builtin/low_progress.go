package builtin

import (
	"time"

	"github.com/brightpath-edu/retention-service/pkg/risk"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

const (
	// DefaultLowProgressThreshold is the average goal progress below which
	// the rule fires.
	DefaultLowProgressThreshold = 20.0

	// DefaultLowProgressMinAccountDays gives new accounts time to ramp up.
	DefaultLowProgressMinAccountDays = 7

	// DefaultLowProgressPoints is the score added when the rule fires.
	DefaultLowProgressPoints = 15
)

// LowProgressRule fires when an established account shows very low average
// goal progress. Students with no goals at all are skipped; that gap is
// covered by engagement rules instead.
type LowProgressRule struct {
	config         risk.RuleConfig
	threshold      float64
	minAccountDays int
	points         int
}

// NewLowProgressRule creates the rule with parameters from config.
func NewLowProgressRule(config risk.RuleConfig) *LowProgressRule {
	return &LowProgressRule{
		config:         config,
		threshold:      config.GetFloat("threshold", DefaultLowProgressThreshold),
		minAccountDays: config.GetInt("min_account_days", DefaultLowProgressMinAccountDays),
		points:         config.GetInt("points", DefaultLowProgressPoints),
	}
}

// ID returns the rule identifier.
func (r *LowProgressRule) ID() string {
	return r.config.ID
}

// Name returns the rule name.
func (r *LowProgressRule) Name() string {
	return "Low Goal Progress"
}

// Config returns the rule configuration.
func (r *LowProgressRule) Config() risk.RuleConfig {
	return r.config
}

// Evaluate compares average goal progress against the threshold.
func (r *LowProgressRule) Evaluate(s *student.Student, now time.Time) (int, string, bool) {
	if len(s.Goals) == 0 || s.AccountAgeDays(now) < r.minAccountDays {
		return 0, "", false
	}
	if s.AverageGoalProgress() >= r.threshold {
		return 0, "", false
	}
	return r.points, "Low progress on learning goals", true
}
