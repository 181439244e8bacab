package builtin

import (
	"fmt"
	"time"

	"github.com/brightpath-edu/retention-service/pkg/risk"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

const (
	// DefaultInactivityCriticalDays is the login gap beyond which the
	// critical band applies.
	DefaultInactivityCriticalDays = 3

	// DefaultInactivityCriticalPoints is the score for the critical band.
	DefaultInactivityCriticalPoints = 25

	// DefaultInactivityWarningPoints is the score for a gap of more than
	// one day up to the critical threshold.
	DefaultInactivityWarningPoints = 10
)

// InactivityRule scores students by login recency. A gap of more than the
// critical threshold is the strong signal; a shorter gap of more than one
// day is a mild one.
type InactivityRule struct {
	config         risk.RuleConfig
	criticalDays   int
	criticalPoints int
	warningPoints  int
}

// NewInactivityRule creates the rule with parameters from config.
func NewInactivityRule(config risk.RuleConfig) *InactivityRule {
	return &InactivityRule{
		config:         config,
		criticalDays:   config.GetInt("critical_days", DefaultInactivityCriticalDays),
		criticalPoints: config.GetInt("critical_points", DefaultInactivityCriticalPoints),
		warningPoints:  config.GetInt("warning_points", DefaultInactivityWarningPoints),
	}
}

// ID returns the rule identifier.
func (r *InactivityRule) ID() string {
	return r.config.ID
}

// Name returns the rule name.
func (r *InactivityRule) Name() string {
	return "Login Inactivity"
}

// Config returns the rule configuration.
func (r *InactivityRule) Config() risk.RuleConfig {
	return r.config
}

// Evaluate applies the login-gap bands.
func (r *InactivityRule) Evaluate(s *student.Student, now time.Time) (int, string, bool) {
	days := s.DaysSinceLastLogin(now)
	switch {
	case days > r.criticalDays:
		return r.criticalPoints, fmt.Sprintf("No login for %d days", days), true
	case days > 1:
		return r.warningPoints, fmt.Sprintf("No login for %d days", days), true
	default:
		return 0, "", false
	}
}
