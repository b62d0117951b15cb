// Package config handles fitbench configuration loading and management.
package config

// Config holds all fitbench settings.
type Config struct {
	Fit     FitConfig     `yaml:"fit"`
	Bench   BenchConfig   `yaml:"bench"`
	Logging LoggingConfig `yaml:"logging"`
}

// FitConfig holds the tunable weight-computation parameters. The defaults
// match the library's DefaultParams; change them only for meshes at unusual
// world scales.
type FitConfig struct {
	SearchRadius float64 `yaml:"search_radius"` // surface projection radius, world units
	SeedCount    int     `yaml:"seed_count"`    // nearest vertices seeded per query
	RigSeedCount int     `yaml:"rig_seed_count"`
	Cutoff       float64 `yaml:"cutoff"` // transferred vertex-group cutoff
}

// BenchConfig holds synthetic mesh generation settings.
type BenchConfig struct {
	Rings    int     `yaml:"rings"`    // sphere rings of the character mesh
	Segments int     `yaml:"segments"` // sphere segments of the character mesh
	Assets   int     `yaml:"assets"`   // number of shell assets to fit
	Shell    float64 `yaml:"shell"`    // shell offset above the character surface
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Fit: FitConfig{
			SearchRadius: 0.1,
			SeedCount:    16,
			RigSeedCount: 4,
			Cutoff:       1e-4,
		},
		Bench: BenchConfig{
			Rings:    48,
			Segments: 64,
			Assets:   4,
			Shell:    0.02,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
