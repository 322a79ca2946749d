package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads, validates and defaults a SoundtextConfig from a YAML file.
func LoadConfig(filename string) (*SoundtextConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// Parse validates YAML data against the schema, decodes it and applies defaults.
func Parse(data []byte) (*SoundtextConfig, error) {
	if err := ValidateSoundtextConfig(data); err != nil {
		return nil, err
	}

	var cfg SoundtextConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Schema validation already confirmed apiVersion and kind

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
