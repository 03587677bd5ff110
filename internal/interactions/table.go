package interactions

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Class groups substances that share interaction behavior. AvoidWith and the
// SeparateFrom keys may name other classes or bare substances.
type Class struct {
	Name         string             `yaml:"name"`
	Members      []string           `yaml:"members"`
	AvoidWith    []string           `yaml:"avoid_with"`
	SeparateFrom map[string]float64 `yaml:"separate_from"`
	Notes        string             `yaml:"notes"`
}

// Table is the full interaction rule set: classes plus alias resolution.
type Table struct {
	Aliases map[string]string `yaml:"aliases"`
	Classes []Class           `yaml:"classes"`
}

// DefaultTable parses the embedded rule table.
func DefaultTable() (Table, error) {
	return parseTable(defaultRulesYAML)
}

// LoadTable reads a rule table from a YAML file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("interactions: read rule table: %w", err)
	}
	return parseTable(data)
}

func parseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("interactions: parse rule table: %w", err)
	}
	return t, nil
}
