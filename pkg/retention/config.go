// Package retention loads and validates the retention pipeline
// configuration: the churn scoring rules and the nudge template catalog.
package retention

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brightpath-edu/retention-service/pkg/nudge"
	"github.com/brightpath-edu/retention-service/pkg/risk"
)

// Config represents the complete retention configuration file.
type Config struct {
	Rules     []risk.RuleConfig `yaml:"rules"`
	Templates []nudge.Template  `yaml:"templates"`
}

// LoadConfig loads retention configuration from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or
// ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration for common errors.
func (c *Config) Validate() error {
	ruleIDs := make(map[string]bool)
	for _, rule := range c.Rules {
		if rule.ID == "" {
			return fmt.Errorf("rule with empty ID found")
		}
		if ruleIDs[rule.ID] {
			return fmt.Errorf("duplicate rule ID: %s", rule.ID)
		}
		ruleIDs[rule.ID] = true

		if rule.Type == "" {
			return fmt.Errorf("rule %s has empty type", rule.ID)
		}
	}

	for i, tmpl := range c.Templates {
		if err := tmpl.Validate(); err != nil {
			return fmt.Errorf("template %d: %w", i, err)
		}
	}

	return nil
}

// ValidateWiring verifies that the loaded configuration produced a usable
// pipeline: every enabled rule config made it into the registry and the
// template catalog covers every trigger and age group combination. Run at
// startup so misconfiguration fails the boot, not a nudge at 3pm.
func ValidateWiring(registry *risk.Registry, catalog *nudge.Catalog, config *Config) error {
	for _, rc := range config.Rules {
		if !rc.Enabled {
			continue
		}
		if registry.Get(rc.ID) == nil {
			return fmt.Errorf("enabled rule %s is not registered", rc.ID)
		}
	}

	if err := catalog.ValidateCoverage(); err != nil {
		return fmt.Errorf("template catalog: %w", err)
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or
// ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
