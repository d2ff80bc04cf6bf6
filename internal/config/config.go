// Package config handles hftool configuration loading and management.
package config

import (
	"math"
	"time"
)

// Config holds all hftool settings.
type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Query   QueryConfig   `yaml:"query"`
	Server  ServerConfig  `yaml:"server"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Logging LoggingConfig `yaml:"logging"`
}

// GridConfig selects the height grid to index.
type GridConfig struct {
	Path       string  `yaml:"path"`       // .yaml/.yml grid file or .gat table
	GRF        string  `yaml:"grf"`        // Optional archive that Path lives in
	Resolution float64 `yaml:"resolution"` // World size of one cell, 0 = auto
}

// QueryConfig holds the default parametric interval for ray casts.
type QueryConfig struct {
	T0 float64 `yaml:"t0"`
	T1 float64 `yaml:"t1"` // 0 = unbounded
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// MeshConfig holds mesh export settings.
type MeshConfig struct {
	Output string `yaml:"output"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Interval returns the configured [t0, t1] with an unset t1 mapped to +Inf.
func (q QueryConfig) Interval() (float64, float64) {
	t1 := q.T1
	if t1 == 0 {
		t1 = math.Inf(1)
	}
	return q.T0, t1
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Mesh: MeshConfig{
			Output: "terrain.obj",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
