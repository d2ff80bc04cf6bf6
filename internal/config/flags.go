package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagGrid       = flag.String("grid", "", "Grid file (.yaml, .yml or .gat)")
	flagGRF        = flag.String("grf", "", "GRF archive containing the grid")
	flagResolution = flag.Float64("resolution", 0, "World size of one grid cell (0 = auto)")
	flagAddr       = flag.String("addr", "", "HTTP listen address for serve")
	flagLogFile    = flag.String("log-file", "", "Also write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments, i.e. the subcommand and its operands.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagGrid != "" {
		cfg.Grid.Path = *flagGrid
	}
	if *flagGRF != "" {
		cfg.Grid.GRF = *flagGRF
	}
	if *flagResolution > 0 {
		cfg.Grid.Resolution = *flagResolution
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
