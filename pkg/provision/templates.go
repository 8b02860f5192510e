package provision

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Built-in workflow template identifiers on the hosted automation engine.
// Template choice is a pure function of the scheduler-mode flag; there is no
// dynamic template discovery.
const (
	DefaultTemplateID   = "br1jZz0y1gU6EmOg"
	SchedulerTemplateID = "xW4uTgN27kQbPfRd"
)

// TemplateCatalog maps the two provisioning modes to engine template ids
type TemplateCatalog struct {
	Default   string `yaml:"default"`
	Scheduler string `yaml:"scheduler"`
}

// DefaultCatalog returns the built-in template catalog
func DefaultCatalog() TemplateCatalog {
	return TemplateCatalog{
		Default:   DefaultTemplateID,
		Scheduler: SchedulerTemplateID,
	}
}

// LoadCatalog reads a template catalog override from a YAML file. Missing
// entries fall back to the built-in ids; an empty path returns the defaults.
func LoadCatalog(path string) (TemplateCatalog, error) {
	catalog := DefaultCatalog()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return catalog, fmt.Errorf("failed to read template catalog %s: %w", path, err)
	}

	var override TemplateCatalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return catalog, fmt.Errorf("failed to parse template catalog %s: %w", path, err)
	}

	if override.Default != "" {
		catalog.Default = override.Default
	}
	if override.Scheduler != "" {
		catalog.Scheduler = override.Scheduler
	}
	return catalog, nil
}

// ForMode selects the template id for a provisioning mode
func (c TemplateCatalog) ForMode(schedulerMode bool) string {
	if schedulerMode {
		return c.Scheduler
	}
	return c.Default
}
