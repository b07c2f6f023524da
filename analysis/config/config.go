// Package config loads analyzer options from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stridelab/stepscan/analysis"
)

// Config is the YAML shape of the analyzer options.
type Config struct {
	StripTags            bool     `yaml:"strip_tags"`
	MonoThreshold        int      `yaml:"mono_threshold"`
	CustomPatterns       []string `yaml:"custom_patterns"`
	ComputeTechCounts    bool     `yaml:"compute_tech_counts"`
	ComputePatternCounts bool     `yaml:"compute_pattern_counts"`
}

// DefaultConfig mirrors analysis.DefaultOptions.
func DefaultConfig() *Config {
	opts := analysis.DefaultOptions()
	return &Config{
		StripTags:            opts.StripTags,
		MonoThreshold:        opts.MonoThreshold,
		CustomPatterns:       opts.CustomPatterns,
		ComputeTechCounts:    opts.ComputeTechCounts,
		ComputePatternCounts: opts.ComputePatternCounts,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	opts := c.Options()
	return opts.Validate()
}

// Options converts the config into analyzer options.
func (c *Config) Options() analysis.Options {
	return analysis.Options{
		StripTags:            c.StripTags,
		MonoThreshold:        c.MonoThreshold,
		CustomPatterns:       c.CustomPatterns,
		ComputeTechCounts:    c.ComputeTechCounts,
		ComputePatternCounts: c.ComputePatternCounts,
	}
}

// Load reads a YAML options file, layering it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
