package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 1.0, cfg.Calc.SurfaceSpacing, 0.001)
	assert.Equal(t, "off", cfg.Calc.FloatingModel)
	assert.False(t, cfg.Calc.RuptureVariability)
	assert.Equal(t, "finite", cfg.Calc.PointSourceType)
	assert.Equal(t, "scaled_small", cfg.Calc.GridScaling)
	assert.InDelta(t, 1e-14, cfg.Calc.MinRuptureRate, 1e-20)
	assert.InDelta(t, 300.0, cfg.Calc.MaxDistance, 0.001)
	assert.Equal(t, 4, cfg.Calc.Workers)
	assert.Equal(t, "hazard.db", cfg.Store.Path)
	assert.Equal(t, 500, cfg.Export.BatchSize)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
calc:
  surface_spacing: 0.5
  point_source_type: fixed_strike
  min_rupture_rate: 0
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.5, cfg.Calc.SurfaceSpacing, 0.001)
	assert.Equal(t, "fixed_strike", cfg.Calc.PointSourceType)
	assert.InDelta(t, 0.0, cfg.Calc.MinRuptureRate, 1e-20)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "off", cfg.Calc.FloatingModel)
	assert.InDelta(t, 300.0, cfg.Calc.MaxDistance, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
calc:
  point_source_type: point
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("HAZARD_CALC_POINT_SOURCE_TYPE", "finite")
	t.Setenv("HAZARD_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "finite", cfg.Calc.PointSourceType)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("HAZARD_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Calc.SurfaceSpacing = 1.0
	cfg.Calc.FloatingModel = "off"
	cfg.Calc.PointSourceType = "finite"
	cfg.Calc.GridScaling = "scaled_small"
	cfg.Calc.MinRuptureRate = 1e-14
	cfg.Calc.MaxDistance = 300
	cfg.Calc.Workers = 4
	cfg.Store.Path = "hazard.db"
	cfg.Export.BatchSize = 500
	cfg.Server.Port = 8080
	cfg.Server.RateLimit = 10
	cfg.Server.RateBurst = 20
	return cfg
}

func TestValidateRuptures_Valid(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("ruptures"))
}

func TestValidateCalcBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Calc.SurfaceSpacing = 0
	err := cfg.Validate("ruptures")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "calc.surface_spacing")

	cfg.Calc.SurfaceSpacing = 25
	err = cfg.Validate("ruptures")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "calc.surface_spacing")

	cfg.Calc.SurfaceSpacing = 1.0
	cfg.Calc.FloatingModel = "elliptic"
	err = cfg.Validate("ruptures")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "calc.floating_model")

	cfg.Calc.FloatingModel = "nshm"
	cfg.Calc.PointSourceType = "elliptical"
	err = cfg.Validate("ruptures")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "calc.point_source_type")

	cfg.Calc.PointSourceType = "point"
	cfg.Calc.MinRuptureRate = -1
	err = cfg.Validate("ruptures")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "calc.min_rupture_rate")

	cfg.Calc.MinRuptureRate = 0
	cfg.Calc.MaxDistance = 0
	err = cfg.Validate("ruptures")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "calc.max_distance")

	cfg.Calc.MaxDistance = 300
	cfg.Calc.Workers = 0
	err = cfg.Validate("ruptures")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "calc.workers must be between 1 and 64")

	cfg.Calc.Workers = 65
	err = cfg.Validate("ruptures")
	assert.Error(t, err)

	cfg.Calc.Workers = 64
	assert.NoError(t, cfg.Validate("ruptures"))
}

func TestValidateExport(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("export")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "export.database_url is required")

	cfg.Export.DatabaseURL = "postgres://localhost/hazard"
	assert.NoError(t, cfg.Validate("export"))

	cfg.Export.BatchSize = 0
	err = cfg.Validate("export")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "export.batch_size")
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	cfg.Server.Port = 9090
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.RateLimit = 0
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.rate_limit")
}

func TestValidateRuns(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Path = ""

	err := cfg.Validate("runs")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.path is required")

	cfg.Store.Path = "hazard.db"
	assert.NoError(t, cfg.Validate("runs"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
