package bootstrap

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/pkg/nudge"
	"github.com/brightpath-edu/retention-service/pkg/retention"
	"github.com/brightpath-edu/retention-service/pkg/risk"
)

// LoadRetentionConfig reads and validates the retention YAML. A missing
// file is not fatal: the builtin rules and copy deck cover everything,
// so the service starts with an empty config and logs the fallback.
func LoadRetentionConfig(path string) (*retention.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logrus.Warnf("retention config %s not found, using builtin defaults", path)
		return &retention.Config{}, nil
	}

	cfg, err := retention.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load retention config from %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retention config: %w", err)
	}

	logrus.Infof("loaded retention config from %s (%d rules, %d templates)",
		path, len(cfg.Rules), len(cfg.Templates))
	return cfg, nil
}

// ValidateWiring cross-checks the assembled registry and catalog against
// the config so a typo'd rule type or trigger fails at startup.
func ValidateWiring(registry *risk.Registry, catalog *nudge.Catalog, cfg *retention.Config) error {
	if err := retention.ValidateWiring(registry, catalog, cfg); err != nil {
		return fmt.Errorf("retention wiring validation failed: %w", err)
	}
	logrus.Info("retention wiring validated")
	return nil
}
