package risk

import (
	"time"

	"github.com/brightpath-edu/retention-service/pkg/student"
)

// Rule is one independently evaluated churn scoring rule. Rules are
// registered in a Registry and summed by the Assessor.
type Rule interface {
	// ID returns the unique rule identifier.
	ID() string

	// Name returns a human-readable rule name.
	Name() string

	// Evaluate inspects the student snapshot at the given instant.
	// Returns the points to add and a human-readable reason when the rule
	// fires; fired=false means the rule contributes nothing.
	// Evaluate must be pure: no I/O, deterministic given now.
	Evaluate(s *student.Student, now time.Time) (points int, reason string, fired bool)

	// Config returns the rule's configuration.
	Config() RuleConfig
}

// RuleConfig is the base configuration for scoring rules, typically loaded
// from the retention YAML config.
type RuleConfig struct {
	ID         string                 `yaml:"id" json:"id"`
	Type       string                 `yaml:"type" json:"type"`
	Enabled    bool                   `yaml:"enabled" json:"enabled"`
	Parameters map[string]interface{} `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// GetInt retrieves an integer parameter with a default.
func (c *RuleConfig) GetInt(key string, defaultValue int) int {
	if val, ok := c.Parameters[key]; ok {
		if intVal, ok := val.(int); ok {
			return intVal
		}
	}
	return defaultValue
}

// GetFloat retrieves a float parameter with a default.
func (c *RuleConfig) GetFloat(key string, defaultValue float64) float64 {
	if val, ok := c.Parameters[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return defaultValue
}

// GetString retrieves a string parameter with a default.
func (c *RuleConfig) GetString(key string, defaultValue string) string {
	if val, ok := c.Parameters[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean parameter with a default.
func (c *RuleConfig) GetBool(key string, defaultValue bool) bool {
	if val, ok := c.Parameters[key]; ok {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}
