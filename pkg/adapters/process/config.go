package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// OpenerConfig describes one allow-listed command that handles jump URLs.
type OpenerConfig struct {
	Name string `yaml:"name" json:"name"`
	// Match is a regular expression tested against the URL.
	Match       string            `yaml:"match" json:"match"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of openers.yaml.
type ConfigFile struct {
	Openers []OpenerConfig `yaml:"openers" json:"openers"`
}

// LoadOpeners reads a configuration file (YAML or JSON). Rules keep their file order.
func LoadOpeners(path string) ([]OpenerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read openers config: %w", err)
	}

	var cfg ConfigFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	for i, o := range cfg.Openers {
		if o.Command == "" {
			return nil, fmt.Errorf("opener %d (%s) has no command", i, o.Name)
		}
		if _, err := regexp.Compile(o.Match); err != nil {
			return nil, fmt.Errorf("opener %d (%s) has an invalid match: %w", i, o.Name, err)
		}
	}
	return cfg.Openers, nil
}
