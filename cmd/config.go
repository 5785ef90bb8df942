package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the analyze flags for users who keep them in a
// checked-in YAML file.
type fileConfig struct {
	Output     string `yaml:"output"`
	OutputFile string `yaml:"output-file"`
	Dot        string `yaml:"dot"`
	SCCP       bool   `yaml:"sccp"`
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}
