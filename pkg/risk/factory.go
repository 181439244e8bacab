package risk

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RuleFactory is a function that creates a rule from a configuration.
type RuleFactory func(config RuleConfig) (Rule, error)

// factories stores registered rule factories by type
var factories = make(map[string]RuleFactory)

// RegisterRuleType registers a factory function for a rule type.
// This allows external packages to register rule types without creating
// import cycles.
func RegisterRuleType(ruleType string, factory RuleFactory) {
	factories[ruleType] = factory
	logrus.Debugf("registered rule type: %s", ruleType)
}

// CreateRule creates a rule instance based on the configuration.
// Disabled rules yield (nil, nil). Returns an error for unknown rule types.
func CreateRule(config RuleConfig) (Rule, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled rule: %s", config.ID)
		return nil, nil
	}

	factory, exists := factories[config.Type]
	if !exists {
		return nil, fmt.Errorf("unknown rule type: %s", config.Type)
	}

	logrus.Infof("creating rule: id=%s type=%s", config.ID, config.Type)
	return factory(config)
}

// RegisterRules creates rules from the given configurations and registers
// them with the registry. Creation failures abort registration.
func RegisterRules(registry *Registry, configs []RuleConfig) error {
	for _, config := range configs {
		rule, err := CreateRule(config)
		if err != nil {
			return fmt.Errorf("failed to create rule %s: %w", config.ID, err)
		}
		if rule == nil {
			continue
		}
		if err := registry.Register(rule); err != nil {
			return fmt.Errorf("failed to register rule %s: %w", rule.ID(), err)
		}
	}

	logrus.Infof("registered %d scoring rules", registry.Count())
	return nil
}
