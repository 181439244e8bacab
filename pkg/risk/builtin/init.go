package builtin

import (
	"github.com/brightpath-edu/retention-service/pkg/risk"
)

// RegisterBuiltinRules registers all built-in scoring rule types with the
// factory. Call once during bootstrap before rules are created from config.
func RegisterBuiltinRules() {
	risk.RegisterRuleType(risk.RuleSparseSessions, func(config risk.RuleConfig) (risk.Rule, error) {
		return NewSparseSessionsRule(config), nil
	})

	risk.RegisterRuleType(risk.RuleInactivity, func(config risk.RuleConfig) (risk.Rule, error) {
		return NewInactivityRule(config), nil
	})

	risk.RegisterRuleType(risk.RuleBrokenStreak, func(config risk.RuleConfig) (risk.Rule, error) {
		return NewBrokenStreakRule(config), nil
	})

	risk.RegisterRuleType(risk.RuleCompletedGoal, func(config risk.RuleConfig) (risk.Rule, error) {
		return NewCompletedGoalRule(config), nil
	})

	risk.RegisterRuleType(risk.RuleLowGoalProgress, func(config risk.RuleConfig) (risk.Rule, error) {
		return NewLowProgressRule(config), nil
	})

	risk.RegisterRuleType(risk.RuleFewChats, func(config risk.RuleConfig) (risk.Rule, error) {
		return NewFewChatsRule(config), nil
	})

	risk.RegisterRuleType(risk.RuleNoTaskHistory, func(config risk.RuleConfig) (risk.Rule, error) {
		return NewNoTaskHistoryRule(config), nil
	})
}

// DefaultRuleConfigs returns the full built-in rule set with default
// parameters. Used when no retention config file is supplied.
func DefaultRuleConfigs() []risk.RuleConfig {
	types := []string{
		risk.RuleSparseSessions,
		risk.RuleInactivity,
		risk.RuleBrokenStreak,
		risk.RuleCompletedGoal,
		risk.RuleLowGoalProgress,
		risk.RuleFewChats,
		risk.RuleNoTaskHistory,
	}

	configs := make([]risk.RuleConfig, 0, len(types))
	for _, t := range types {
		configs = append(configs, risk.RuleConfig{
			ID:      t,
			Type:    t,
			Enabled: true,
		})
	}
	return configs
}
