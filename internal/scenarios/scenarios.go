// Package scenarios loads the golden end-to-end fixtures in
// testdata/scenarios.yaml and runs each through internal/fixture +
// internal/driver, asserting over the rendered IR text.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one golden fixture: fixture-language source for a single
// function, the pass subset to run (empty selects driver.DefaultPassOrder),
// and the substrings its compiled IR text must or must not contain.
type Scenario struct {
	Name           string     `yaml:"name"`
	Function       string     `yaml:"function"`
	Source         string     `yaml:"source"`
	PassOrder      []string   `yaml:"passOrder"`
	MustContain    []string   `yaml:"mustContain"`
	MustNotContain []string   `yaml:"mustNotContain"`
	MustPrecede    [][]string `yaml:"mustPrecede"` // [a, b]: a's first occurrence must come before b's
}

// Load reads and parses the scenario set at path.
func Load(path string) ([]Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenarios: read %s: %w", path, err)
	}
	var out []Scenario
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("scenarios: parse %s: %w", path, err)
	}
	return out, nil
}
