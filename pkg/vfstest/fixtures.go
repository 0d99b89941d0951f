package vfstest

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is a golden session script: a sequence of simfs-shell-style
// commands together with the output lines they are expected to
// produce, loaded from YAML so session scripts are authored as plain
// data files instead of inline literals.
type Fixture struct {
	Name     string   `yaml:"name"`
	Commands []string `yaml:"commands"`
	Expect   []string `yaml:"expect"`
}

// LoadFixture parses path as a YAML session-script fixture.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
