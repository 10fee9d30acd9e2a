package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Calc   Calc         `yaml:"calc" mapstructure:"calc"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// Calc configures source-model and rupture-enumeration behavior.
type Calc struct {
	// SurfaceSpacing is the target grid discretization of fault
	// surfaces, in km.
	SurfaceSpacing float64 `yaml:"surface_spacing" mapstructure:"surface_spacing"`
	// FloatingModel selects how ruptures smaller than their parent
	// surface are distributed over it: "off", "on", "strike_only",
	// "nshm", or "triangular".
	FloatingModel string `yaml:"floating_model" mapstructure:"floating_model"`
	// RuptureVariability adds along-strike and down-dip aspect-ratio
	// variants when floating ruptures.
	RuptureVariability bool `yaml:"rupture_variability" mapstructure:"rupture_variability"`
	// PointSourceType selects the grid-source rupture representation:
	// "point", "finite", or "fixed_strike".
	PointSourceType string `yaml:"point_source_type" mapstructure:"point_source_type"`
	// GridScaling selects the area-source discretization ladder.
	GridScaling string `yaml:"grid_scaling" mapstructure:"grid_scaling"`
	// MinRuptureRate drops fault rupture bins with annual rates below
	// this cutoff.
	MinRuptureRate float64 `yaml:"min_rupture_rate" mapstructure:"min_rupture_rate"`
	// MaxDistance limits source-to-site rupture enumeration, in km.
	MaxDistance float64 `yaml:"max_distance" mapstructure:"max_distance"`
	// Workers bounds concurrent per-source rupture enumeration.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// StoreConfig configures the local run log database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ExportConfig configures the postgres rupture exporter.
type ExportConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HAZARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("calc.surface_spacing", 1.0)
	v.SetDefault("calc.floating_model", "off")
	v.SetDefault("calc.rupture_variability", false)
	v.SetDefault("calc.point_source_type", "finite")
	v.SetDefault("calc.grid_scaling", "scaled_small")
	v.SetDefault("calc.min_rupture_rate", 1e-14)
	v.SetDefault("calc.max_distance", 300.0)
	v.SetDefault("calc.workers", 4)
	v.SetDefault("store.path", "hazard.db")
	v.SetDefault("export.batch_size", 500)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

var floatingModels = map[string]bool{
	"off": true, "on": true, "strike_only": true, "nshm": true, "triangular": true,
}

var pointSourceTypes = map[string]bool{"point": true, "finite": true, "fixed_strike": true}

var gridScalings = map[string]bool{
	"uniform_0p005": true, "uniform_0p01": true, "uniform_0p02": true,
	"uniform_0p05": true, "uniform_0p1": true, "uniform_0p5": true,
	"scaled_small": true, "scaled_large": true,
}

// Validate checks the fields required for the given run mode and reports
// every problem found.
func (c *Config) Validate(mode string) error {
	var problems []string

	// calc settings are shared by every mode
	if c.Calc.SurfaceSpacing < 0.01 || c.Calc.SurfaceSpacing > 20 {
		problems = append(problems, "calc.surface_spacing must be in [0.01, 20] km")
	}
	if !floatingModels[c.Calc.FloatingModel] {
		problems = append(problems, "calc.floating_model is not a recognized model")
	}
	if !pointSourceTypes[c.Calc.PointSourceType] {
		problems = append(problems, "calc.point_source_type must be one of point, finite, fixed_strike")
	}
	if !gridScalings[c.Calc.GridScaling] {
		problems = append(problems, "calc.grid_scaling is not a recognized scheme")
	}
	if c.Calc.MinRuptureRate < 0 {
		problems = append(problems, "calc.min_rupture_rate must be >= 0")
	}
	if c.Calc.MaxDistance <= 0 {
		problems = append(problems, "calc.max_distance must be > 0")
	}
	if c.Calc.Workers < 1 || c.Calc.Workers > 64 {
		problems = append(problems, "calc.workers must be between 1 and 64")
	}

	switch mode {
	case "ruptures", "model", "import":
		// calc checks only
	case "runs":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required")
		}
	case "export":
		if c.Export.DatabaseURL == "" {
			problems = append(problems, "export.database_url is required")
		}
		if c.Export.BatchSize < 1 {
			problems = append(problems, "export.batch_size must be > 0")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RateLimit <= 0 {
			problems = append(problems, "server.rate_limit must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration:\n  - %s",
			strings.Join(problems, "\n  - "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
