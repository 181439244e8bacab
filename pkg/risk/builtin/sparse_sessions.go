package builtin

import (
	"fmt"
	"time"

	"github.com/brightpath-edu/retention-service/pkg/risk"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

const (
	// DefaultSparseSessionsMinAccountDays is how old an account must be
	// before session counts are held against it.
	DefaultSparseSessionsMinAccountDays = 7

	// DefaultSparseSessionsCriticalCount is the session count below which
	// the critical band applies.
	DefaultSparseSessionsCriticalCount = 3

	// DefaultSparseSessionsWarningCount is the session count below which
	// the warning band applies.
	DefaultSparseSessionsWarningCount = 5

	// DefaultSparseSessionsCriticalPoints is the score for the critical band.
	DefaultSparseSessionsCriticalPoints = 40

	// DefaultSparseSessionsWarningPoints is the score for the warning band.
	DefaultSparseSessionsWarningPoints = 20
)

// SparseSessionsRule scores students whose first-week session count is low.
// Fewer than 3 sessions is critical; fewer than 5 is a warning. Only the
// stronger band applies.
type SparseSessionsRule struct {
	config         risk.RuleConfig
	minAccountDays int
	criticalCount  int
	warningCount   int
	criticalPoints int
	warningPoints  int
}

// NewSparseSessionsRule creates the rule with parameters from config.
func NewSparseSessionsRule(config risk.RuleConfig) *SparseSessionsRule {
	return &SparseSessionsRule{
		config:         config,
		minAccountDays: config.GetInt("min_account_days", DefaultSparseSessionsMinAccountDays),
		criticalCount:  config.GetInt("critical_count", DefaultSparseSessionsCriticalCount),
		warningCount:   config.GetInt("warning_count", DefaultSparseSessionsWarningCount),
		criticalPoints: config.GetInt("critical_points", DefaultSparseSessionsCriticalPoints),
		warningPoints:  config.GetInt("warning_points", DefaultSparseSessionsWarningPoints),
	}
}

// ID returns the rule identifier.
func (r *SparseSessionsRule) ID() string {
	return r.config.ID
}

// Name returns the rule name.
func (r *SparseSessionsRule) Name() string {
	return "Sparse First-Week Sessions"
}

// Config returns the rule configuration.
func (r *SparseSessionsRule) Config() risk.RuleConfig {
	return r.config
}

// Evaluate applies the session-count bands.
func (r *SparseSessionsRule) Evaluate(s *student.Student, now time.Time) (int, string, bool) {
	if s.AccountAgeDays(now) < r.minAccountDays {
		return 0, "", false
	}

	sessions := s.SessionCount()
	switch {
	case sessions < r.criticalCount:
		return r.criticalPoints,
			fmt.Sprintf("Fewer than %d sessions in first week", r.criticalCount),
			true
	case sessions < r.warningCount:
		return r.warningPoints,
			fmt.Sprintf("Fewer than %d sessions in first week", r.warningCount),
			true
	default:
		return 0, "", false
	}
}
