package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Grid.Path != "" {
		t.Errorf("expected no default grid, got %s", cfg.Grid.Path)
	}
	if cfg.Grid.Resolution != 0 {
		t.Errorf("expected auto resolution, got %v", cfg.Grid.Resolution)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("expected read timeout 10s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("expected write timeout 30s, got %v", cfg.Server.WriteTimeout)
	}

	if cfg.Mesh.Output != "terrain.obj" {
		t.Errorf("expected mesh output terrain.obj, got %s", cfg.Mesh.Output)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestQueryInterval(t *testing.T) {
	t0, t1 := QueryConfig{}.Interval()
	if t0 != 0 || !math.IsInf(t1, 1) {
		t.Errorf("expected [0, +Inf], got [%v, %v]", t0, t1)
	}

	t0, t1 = QueryConfig{T0: 1, T1: 50}.Interval()
	if t0 != 1 || t1 != 50 {
		t.Errorf("expected [1, 50], got [%v, %v]", t0, t1)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
grid:
  path: "data/prontera.gat"
  grf: "data.grf"
  resolution: 2.5

query:
  t0: 1
  t1: 500

server:
  addr: "127.0.0.1:9000"
  read_timeout: 5s
  write_timeout: 1m

mesh:
  output: "out/prontera.obj"

logging:
  level: "debug"
  log_file: "hftool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Grid.Path != "data/prontera.gat" {
		t.Errorf("expected grid path data/prontera.gat, got %s", cfg.Grid.Path)
	}
	if cfg.Grid.GRF != "data.grf" {
		t.Errorf("expected grf data.grf, got %s", cfg.Grid.GRF)
	}
	if cfg.Grid.Resolution != 2.5 {
		t.Errorf("expected resolution 2.5, got %v", cfg.Grid.Resolution)
	}

	if cfg.Query.T0 != 1 || cfg.Query.T1 != 500 {
		t.Errorf("expected query [1, 500], got [%v, %v]", cfg.Query.T0, cfg.Query.T1)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("expected addr 127.0.0.1:9000, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != time.Minute {
		t.Errorf("expected write timeout 1m, got %v", cfg.Server.WriteTimeout)
	}

	if cfg.Mesh.Output != "out/prontera.obj" {
		t.Errorf("expected mesh output out/prontera.obj, got %s", cfg.Mesh.Output)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "hftool.log" {
		t.Errorf("expected log file 'hftool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
grid:
  resolution: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative resolution", func(c *Config) { c.Grid.Resolution = -1 }},
		{"negative t0", func(c *Config) { c.Query.T0 = -0.5 }},
		{"t1 below t0", func(c *Config) { c.Query.T0, c.Query.T1 = 10, 5 }},
		{"grf without path", func(c *Config) { c.Grid.GRF = "data.grf" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if dir := ConfigDir(); dir != filepath.Join("/tmp/xdg", "hftool") {
		t.Errorf("expected XDG config dir, got %s", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "hftool.yaml")
	if err := os.WriteFile(configPath, []byte("grid:\n  path: map.gat\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find hftool.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "grid flags",
			setup: func() {
				*flagGrid = "data/prontera.gat"
				*flagGRF = "data.grf"
				*flagResolution = 5
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Grid.Path != "data/prontera.gat" {
					t.Errorf("expected grid data/prontera.gat, got %s", cfg.Grid.Path)
				}
				if cfg.Grid.GRF != "data.grf" {
					t.Errorf("expected grf data.grf, got %s", cfg.Grid.GRF)
				}
				if cfg.Grid.Resolution != 5 {
					t.Errorf("expected resolution 5, got %v", cfg.Grid.Resolution)
				}
			},
			teardown: func() {
				*flagGrid = ""
				*flagGRF = ""
				*flagResolution = 0
			},
		},
		{
			name:  "addr flag",
			setup: func() { *flagAddr = ":9999" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Server.Addr != ":9999" {
					t.Errorf("expected addr :9999, got %s", cfg.Server.Addr)
				}
			},
			teardown: func() { *flagAddr = "" },
		},
		{
			name:  "log file flag",
			setup: func() { *flagLogFile = "run.log" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "run.log" {
					t.Errorf("expected log file run.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
grid:
  path: "from-file.yaml"
  resolution: 2
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagGrid = "from-flag.gat"
	defer func() {
		*flagConfig = ""
		*flagGrid = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Path comes from the flag, resolution from the file.
	if cfg.Grid.Path != "from-flag.gat" {
		t.Errorf("expected grid from flag, got %s", cfg.Grid.Path)
	}
	if cfg.Grid.Resolution != 2 {
		t.Errorf("expected resolution 2 from file, got %v", cfg.Grid.Resolution)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hftool.yaml")

	cfg := Default()
	cfg.Grid.Path = "map.gat"
	cfg.Query.T1 = 100
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("reloaded config = %+v, want %+v", loaded, cfg)
	}
}
