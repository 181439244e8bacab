package builtin

import (
	"time"

	"github.com/brightpath-edu/retention-service/pkg/risk"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

// DefaultCompletedGoalPoints is the score added when a student finished a
// goal and has not started a new one.
const DefaultCompletedGoalPoints = 30

// CompletedGoalRule fires when the student has completed at least one goal
// and no goal remains in progress. A finished goal with nothing lined up
// next is a common drop-off point.
//
// Recency is inferred heuristically: any fully completed goal with no
// concurrently in-progress goal counts, without an explicit completion
// timestamp.
type CompletedGoalRule struct {
	config risk.RuleConfig
	points int
}

// NewCompletedGoalRule creates the rule with parameters from config.
func NewCompletedGoalRule(config risk.RuleConfig) *CompletedGoalRule {
	return &CompletedGoalRule{
		config: config,
		points: config.GetInt("points", DefaultCompletedGoalPoints),
	}
}

// ID returns the rule identifier.
func (r *CompletedGoalRule) ID() string {
	return r.config.ID
}

// Name returns the rule name.
func (r *CompletedGoalRule) Name() string {
	return "Completed Goal Without Follow-Up"
}

// Config returns the rule configuration.
func (r *CompletedGoalRule) Config() risk.RuleConfig {
	return r.config
}

// Evaluate checks for a completed goal with no in-progress successor.
func (r *CompletedGoalRule) Evaluate(s *student.Student, now time.Time) (int, string, bool) {
	if !s.HasCompletedGoalWithoutNew() {
		return 0, "", false
	}
	return r.points, "Completed goal, no new goals", true
}
