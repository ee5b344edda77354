package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "colonybot.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 20*time.Millisecond, cfg.Simulation.TickBudget)
	assert.Equal(t, 1, cfg.Simulation.Ticks)
	assert.Equal(t, time.Second, cfg.Daemon.TickInterval)
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfigFile(t, `
database:
  type: sqlite
  path: ":memory:"
logging:
  level: debug
  format: json
  output: stdout
  persist: true
simulation:
  scenario: scenarios/basic.yaml
  tick_budget: 5ms
  ticks: 12
daemon:
  tick_interval: 250ms
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Persist)
	assert.Equal(t, "scenarios/basic.yaml", cfg.Simulation.Scenario)
	assert.Equal(t, 5*time.Millisecond, cfg.Simulation.TickBudget)
	assert.Equal(t, 12, cfg.Simulation.Ticks)
	assert.Equal(t, 250*time.Millisecond, cfg.Daemon.TickInterval)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "logging:\n  level: info\n")
	t.Setenv("CB_LOGGING_LEVEL", "error")
	t.Setenv("CB_SIMULATION_TICKS", "3")
	t.Setenv("DATABASE_URL", "postgresql://bot:secret@db:5432/colony")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Simulation.Ticks)
	assert.Equal(t, "postgresql://bot:secret@db:5432/colony", cfg.Database.URL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown database", "database:\n  type: mysql\n"},
		{"bad log level", "logging:\n  level: verbose\n"},
		{"file output without path", "logging:\n  output: file\n"},
		{"privileged metrics port", "metrics:\n  port: 80\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestValidateConfig_MetricsPath(t *testing.T) {
	cfg := &Config{}
	SetDefaults(cfg)
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "metrics"

	assert.Error(t, ValidateConfig(cfg))
}

func TestLoadConfigOrDefault_FallsBack(t *testing.T) {
	cfg := LoadConfigOrDefault(writeConfigFile(t, "database:\n  type: mysql\n"))
	assert.Equal(t, "sqlite", cfg.Database.Type)
}
