// Package config provides configuration loading and management for the
// imgseries CLI. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
// Command-line flags override whatever is set here.
type Config struct {
	// Input describes how raw frame dumps are interpreted.
	Input struct {
		// Dtype is the pixel element type of the raw input, e.g. "uint16".
		Dtype string `yaml:"dtype"`

		// Rows is the number of rows per frame.
		Rows int `yaml:"rows"`

		// Cols is the number of columns per frame.
		Cols int `yaml:"cols"`
	} `yaml:"input"`

	// Write selects the output format and its options.
	Write struct {
		// Format is the registry name of the writer, "hdf5" or "frame-cache".
		Format string `yaml:"format"`

		// GroupPath is the group path inside the container for the dense
		// format.
		GroupPath string `yaml:"groupPath"`

		// Compression is the chunk codec id for the dense format.
		Compression string `yaml:"compression"`

		// Threshold is the sparse-format intensity cutoff.
		Threshold float64 `yaml:"threshold"`

		// ThresholdPercentile, when in (0, 1], derives the cutoff from the
		// pixel distribution instead of Threshold.
		ThresholdPercentile float64 `yaml:"thresholdPercentile"`

		// CacheFile is the sparse-format archive path.
		CacheFile string `yaml:"cacheFile"`

		// Checksum records an archive hash in the sparse descriptor.
		Checksum bool `yaml:"checksum"`
	} `yaml:"write"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Input.Dtype = "uint16"

	cfg.Write.Format = "hdf5"
	cfg.Write.GroupPath = "/images"
	cfg.Write.Compression = "gzip"
	cfg.Write.Threshold = 0
	cfg.Write.ThresholdPercentile = 0
	cfg.Write.CacheFile = "frames.npz"
	cfg.Write.Checksum = false

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
