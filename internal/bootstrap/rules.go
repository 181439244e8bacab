// Package bootstrap assembles the retention pipeline from configuration:
// the rule registry behind the risk assessor and the template catalog
// behind the nudge composer.
package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/pkg/retention"
	"github.com/brightpath-edu/retention-service/pkg/risk"
	riskBuiltin "github.com/brightpath-edu/retention-service/pkg/risk/builtin"
)

// InitRiskEngine creates the rule registry and assessor from the
// retention config. When the config carries no rules the builtin
// defaults apply.
func InitRiskEngine(cfg *retention.Config) (*risk.Assessor, *risk.Registry, error) {
	riskBuiltin.RegisterBuiltinRules()

	ruleConfigs := cfg.Rules
	if len(ruleConfigs) == 0 {
		logrus.Info("no rules in config, using builtin defaults")
		ruleConfigs = riskBuiltin.DefaultRuleConfigs()
	}

	registry := risk.NewRegistry()
	if err := risk.RegisterRules(registry, ruleConfigs); err != nil {
		return nil, nil, fmt.Errorf("failed to register rules: %w", err)
	}

	logrus.Infof("registered %d risk rules", registry.Count())

	assessor := risk.NewAssessor(registry)
	logrus.Infof("initialized risk assessor")

	return assessor, registry, nil
}
