package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load parses the YAML file at path into an AgentConfig. ${VAR}
// references are substituted from the environment before parsing, so
// secrets like auth tokens can stay out of the file itself.
func Load(path string) (*AgentConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &AgentConfig{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadWithDefaults is Load plus default fill-in for unset fields.
func LoadWithDefaults(path string) (*AgentConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate is the full pipeline used by the agent binary:
// parse, apply defaults, then reject anything Validate flags.
func LoadAndValidate(path string) (*AgentConfig, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
