package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/pkg/nudge"
	"github.com/brightpath-edu/retention-service/pkg/retention"
)

// InitTemplateCatalog builds the nudge template catalog from the
// retention config, falling back to the builtin copy deck when the
// config carries no templates. Coverage is enforced here so a missing
// trigger/age-group combination fails startup instead of a live check.
func InitTemplateCatalog(cfg *retention.Config) (*nudge.Catalog, error) {
	templates := cfg.Templates
	if len(templates) == 0 {
		logrus.Info("no templates in config, using builtin copy deck")
		templates = nudge.DefaultTemplates()
	}

	catalog := nudge.NewCatalog()
	if err := catalog.AddAll(templates); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	if err := catalog.ValidateCoverage(); err != nil {
		return nil, fmt.Errorf("template catalog incomplete: %w", err)
	}

	logrus.Infof("loaded %d nudge templates", catalog.Count())
	return catalog, nil
}
