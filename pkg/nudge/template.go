package nudge

import (
	"fmt"
	"sync"

	"github.com/brightpath-edu/retention-service/pkg/risk"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

// Template is an immutable catalog entry keyed by (trigger, age group).
// The three message slots may contain placeholder tokens such as {name},
// {subject}, {progress} and {longest_streak}.
type Template struct {
	Trigger       Trigger          `yaml:"trigger" json:"trigger"`
	AgeGroup      student.AgeGroup `yaml:"ageGroup" json:"ageGroup"`
	Intensity     Intensity        `yaml:"intensity" json:"intensity"`
	Celebration   string           `yaml:"celebration" json:"celebration"`
	Encouragement string           `yaml:"encouragement" json:"encouragement"`
	CallToAction  string           `yaml:"callToAction" json:"callToAction"`
}

// Validate checks a template's enum fields and content.
func (t Template) Validate() error {
	if !t.Trigger.Valid() {
		return fmt.Errorf("template has unknown trigger %q", t.Trigger)
	}
	switch t.AgeGroup {
	case student.AgeGroupYoung, student.AgeGroupMiddle, student.AgeGroupTeen:
	default:
		return fmt.Errorf("template has unknown age group %q", t.AgeGroup)
	}
	if !t.Intensity.Valid() {
		return fmt.Errorf("template has unknown intensity %q", t.Intensity)
	}
	if t.Encouragement == "" {
		return fmt.Errorf("template %s/%s has empty encouragement", t.Trigger, t.AgeGroup)
	}
	if t.CallToAction == "" {
		return fmt.Errorf("template %s/%s has empty call to action", t.Trigger, t.AgeGroup)
	}
	return nil
}

// Catalog is the static template registry. Templates are added at startup
// and selected at compose time; catalog order is the tie-break order.
type Catalog struct {
	mu        sync.RWMutex
	templates []Template
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Add validates and appends a template.
func (c *Catalog) Add(t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates = append(c.templates, t)
	return nil
}

// AddAll validates and appends templates, stopping at the first invalid one.
func (c *Catalog) AddAll(templates []Template) error {
	for _, t := range templates {
		if err := c.Add(t); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of registered templates.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// Select picks the template for (trigger, ageGroup). When no template
// matches the trigger, the age group's general_encouragement template is
// the fallback. At high risk an urgent-tagged match is preferred when one
// exists; otherwise the first match in catalog order wins.
func (c *Catalog) Select(trigger Trigger, ageGroup student.AgeGroup, level risk.Level) (Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := c.filter(trigger, ageGroup)
	if len(matches) == 0 && trigger != TriggerGeneralEncouragement {
		matches = c.filter(TriggerGeneralEncouragement, ageGroup)
	}
	if len(matches) == 0 {
		return Template{}, false
	}

	if level == risk.LevelHigh {
		for _, t := range matches {
			if t.Intensity == IntensityUrgent {
				return t, true
			}
		}
	}
	return matches[0], true
}

func (c *Catalog) filter(trigger Trigger, ageGroup student.AgeGroup) []Template {
	var matches []Template
	for _, t := range c.templates {
		if t.Trigger == trigger && t.AgeGroup == ageGroup {
			matches = append(matches, t)
		}
	}
	return matches
}

// ValidateCoverage verifies that every (trigger, age group) combination has
// at least one template. Called at startup so a gap in the catalog fails
// the boot instead of silently dropping nudges at compose time.
func (c *Catalog) ValidateCoverage() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	groups := []student.AgeGroup{
		student.AgeGroupYoung,
		student.AgeGroupMiddle,
		student.AgeGroupTeen,
	}

	for _, trigger := range Triggers {
		for _, group := range groups {
			found := false
			for _, t := range c.templates {
				if t.Trigger == trigger && t.AgeGroup == group {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("no template for trigger %s, age group %s", trigger, group)
			}
		}
	}
	return nil
}
