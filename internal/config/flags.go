package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagRadius   = flag.Float64("radius", 0, "Surface projection search radius")
	flagSeeds    = flag.Int("seeds", 0, "Nearest-vertex seed count")
	flagRings    = flag.Int("rings", 0, "Character sphere rings")
	flagSegments = flag.Int("segments", 0, "Character sphere segments")
	flagAssets   = flag.Int("assets", 0, "Number of synthetic assets to fit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
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
	if *flagRadius > 0 {
		cfg.Fit.SearchRadius = *flagRadius
	}
	if *flagSeeds > 0 {
		cfg.Fit.SeedCount = *flagSeeds
	}
	if *flagRings > 0 {
		cfg.Bench.Rings = *flagRings
	}
	if *flagSegments > 0 {
		cfg.Bench.Segments = *flagSegments
	}
	if *flagAssets > 0 {
		cfg.Bench.Assets = *flagAssets
	}
}
