package agents

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Catalog is a set of agents and their prompt histories.
type Catalog struct {
	Agents   []Agent         `yaml:"agents"`
	Versions []PromptVersion `yaml:"versions"`
}

// Seed returns the built-in sample catalog used by `agentdeck seed` and as
// the playground's fallback records source.
func Seed() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(seedYAML, &c); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	for i := range c.Agents {
		a := &c.Agents[i]
		if a.SchemaVersion == 0 {
			a.SchemaVersion = SchemaVersion
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("seed agent %q: %w", a.ID, err)
		}
	}
	for i := range c.Versions {
		if err := c.Versions[i].Validate(); err != nil {
			return nil, fmt.Errorf("seed version %q: %w", c.Versions[i].ID, err)
		}
	}
	return &c, nil
}
