package builtin

import (
	"time"

	"github.com/brightpath-edu/retention-service/pkg/risk"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

const (
	// DefaultFewChatsThreshold is the conversation count below which the
	// rule fires.
	DefaultFewChatsThreshold = 3

	// DefaultFewChatsMinAccountDays gives new accounts time to ramp up.
	DefaultFewChatsMinAccountDays = 7

	// DefaultFewChatsPoints is the score added when the rule fires.
	DefaultFewChatsPoints = 10

	// DefaultNoTasksMinAccountDays is how old an account must be before an
	// empty task history counts against it.
	DefaultNoTasksMinAccountDays = 3

	// DefaultNoTasksPoints is the score added for an empty task history.
	DefaultNoTasksPoints = 5
)

// FewChatsRule fires when an established account has barely talked to the
// tutor.
type FewChatsRule struct {
	config         risk.RuleConfig
	threshold      int
	minAccountDays int
	points         int
}

// NewFewChatsRule creates the rule with parameters from config.
func NewFewChatsRule(config risk.RuleConfig) *FewChatsRule {
	return &FewChatsRule{
		config:         config,
		threshold:      config.GetInt("threshold", DefaultFewChatsThreshold),
		minAccountDays: config.GetInt("min_account_days", DefaultFewChatsMinAccountDays),
		points:         config.GetInt("points", DefaultFewChatsPoints),
	}
}

// ID returns the rule identifier.
func (r *FewChatsRule) ID() string { return r.config.ID }

// Name returns the rule name.
func (r *FewChatsRule) Name() string { return "Few Tutoring Conversations" }

// Config returns the rule configuration.
func (r *FewChatsRule) Config() risk.RuleConfig { return r.config }

// Evaluate compares the conversation count against the threshold.
func (r *FewChatsRule) Evaluate(s *student.Student, now time.Time) (int, string, bool) {
	if s.AccountAgeDays(now) < r.minAccountDays {
		return 0, "", false
	}
	if s.Conversations >= r.threshold {
		return 0, "", false
	}
	return r.points, "Fewer than 3 tutoring conversations", true
}

// NoTaskHistoryRule fires when a student past the grace period has not
// attempted a single practice task.
type NoTaskHistoryRule struct {
	config         risk.RuleConfig
	minAccountDays int
	points         int
}

// NewNoTaskHistoryRule creates the rule with parameters from config.
func NewNoTaskHistoryRule(config risk.RuleConfig) *NoTaskHistoryRule {
	return &NoTaskHistoryRule{
		config:         config,
		minAccountDays: config.GetInt("min_account_days", DefaultNoTasksMinAccountDays),
		points:         config.GetInt("points", DefaultNoTasksPoints),
	}
}

// ID returns the rule identifier.
func (r *NoTaskHistoryRule) ID() string { return r.config.ID }

// Name returns the rule name.
func (r *NoTaskHistoryRule) Name() string { return "No Practice Tasks" }

// Config returns the rule configuration.
func (r *NoTaskHistoryRule) Config() risk.RuleConfig { return r.config }

// Evaluate checks for an empty task history past the grace period.
func (r *NoTaskHistoryRule) Evaluate(s *student.Student, now time.Time) (int, string, bool) {
	if s.AccountAgeDays(now) < r.minAccountDays {
		return 0, "", false
	}
	if len(s.TaskHistory) > 0 {
		return 0, "", false
	}
	return r.points, "No practice tasks attempted", true
}
