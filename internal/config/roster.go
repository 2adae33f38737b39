package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Roster is the CLI roster file: the session identifier and the subject ids
// expected to be evaluated for one attendance request.
type Roster struct {
	Session  string   `yaml:"session"`
	Enrolled []string `yaml:"enrolled"`
}

// LoadRoster reads a roster YAML file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from a CLI flag
	if err != nil {
		return nil, fmt.Errorf("could not read roster file: %w", err)
	}

	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("could not parse roster file: %w", err)
	}
	if len(roster.Enrolled) == 0 {
		return nil, fmt.Errorf("roster file %s lists no enrolled subjects", path)
	}
	return &roster, nil
}
