package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded config fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges that YAML cannot express.
func (c *Config) Validate() error {
	if c.Grid.Resolution < 0 {
		return fmt.Errorf("%w: grid.resolution %v is negative", ErrInvalidConfig, c.Grid.Resolution)
	}
	if c.Query.T0 < 0 {
		return fmt.Errorf("%w: query.t0 %v is negative", ErrInvalidConfig, c.Query.T0)
	}
	if c.Query.T1 != 0 && c.Query.T1 < c.Query.T0 {
		return fmt.Errorf("%w: query.t1 %v is below query.t0 %v", ErrInvalidConfig, c.Query.T1, c.Query.T0)
	}
	if c.Grid.GRF != "" && c.Grid.Path == "" {
		return fmt.Errorf("%w: grid.grf set without grid.path", ErrInvalidConfig)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./hftool.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the user config directory for hftool.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hftool")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "hftool")
	}
	return filepath.Join(dir, "hftool")
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
