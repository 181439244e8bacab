package risk

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/pkg/student"
)

// Rule IDs shared between the builtin rules and the intervention table.
const (
	RuleSparseSessions  = "sparse_sessions"
	RuleInactivity      = "inactivity"
	RuleBrokenStreak    = "broken_streak"
	RuleCompletedGoal   = "completed_goal_no_new"
	RuleLowGoalProgress = "low_goal_progress"
	RuleFewChats        = "few_conversations"
	RuleNoTaskHistory   = "no_task_history"
)

// interventionsByRule maps a fired rule to its recommended intervention.
var interventionsByRule = map[string]string{
	RuleSparseSessions:  "Schedule a short guided session",
	RuleInactivity:      "Send a re-engagement reminder",
	RuleBrokenStreak:    "Encourage streak rebuild",
	RuleCompletedGoal:   "Suggest a new learning goal",
	RuleLowGoalProgress: "Break goals into smaller steps",
	RuleFewChats:        "Prompt a chat with the tutor",
	RuleNoTaskHistory:   "Offer a warm-up practice task",
}

// fallbackIntervention is always present when level is above none.
const fallbackIntervention = "Check in with an encouraging message"

// Assessor computes churn-risk assessments by evaluating every registered
// scoring rule against a student snapshot. It is stateless; assessments are
// pure functions of (student, now).
type Assessor struct {
	registry *Registry
}

// NewAssessor creates a new assessor backed by the given rule registry.
func NewAssessor(registry *Registry) *Assessor {
	return &Assessor{registry: registry}
}

// Assess evaluates all enabled rules and accumulates their scores, capped at
// MaxScore. A nil snapshot yields a fail-safe zero assessment: missing data
// means a skipped encouragement, never an error surfaced to callers.
func (a *Assessor) Assess(s *student.Student, now time.Time) Assessment {
	if s == nil {
		return Assessment{
			Level:         LevelNone,
			Score:         0,
			Reasons:       []string{"student record unavailable"},
			Interventions: []string{},
		}
	}

	assessment := Assessment{
		AccountAgeDays:      s.AccountAgeDays(now),
		DaysSinceLastActive: s.DaysSinceLastLogin(now),
		Reasons:             []string{},
		Interventions:       []string{},
	}

	seen := make(map[string]bool)
	for _, rule := range a.registry.GetAll() {
		points, reason, fired := rule.Evaluate(s, now)
		if !fired {
			continue
		}

		logrus.Debugf("risk rule %s fired for student %s: +%d (%s)",
			rule.ID(), s.ID, points, reason)

		assessment.Score += points
		if reason != "" {
			assessment.Reasons = append(assessment.Reasons, reason)
		}

		if iv, ok := interventionsByRule[rule.ID()]; ok && !seen[iv] {
			assessment.Interventions = append(assessment.Interventions, iv)
			seen[iv] = true
		}
	}

	if assessment.Score > MaxScore {
		assessment.Score = MaxScore
	}
	assessment.Level = LevelForScore(assessment.Score)

	if assessment.Level != LevelNone && !seen[fallbackIntervention] {
		assessment.Interventions = append(assessment.Interventions, fallbackIntervention)
	}

	return assessment
}
