package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// cliConfig mirrors the yaml config file. Flags override file values.
type cliConfig struct {
	Store            string `yaml:"store"`
	Backend          string `yaml:"backend"`
	Delimiter        string `yaml:"delimiter"`
	RootsAreSiblings bool   `yaml:"roots_are_siblings"`
}

func loadConfig(path string) (cliConfig, error) {
	var cfg cliConfig
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
