package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skirmish.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, `
[simulation]
tick_rate = 30
duration = "90s"

[display]
headless = true
input_hold = "100ms"
`))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Simulation.TickRate)
	assert.Equal(t, 90*time.Second, cfg.Simulation.Duration)
	assert.Equal(t, 100*time.Millisecond, cfg.Display.InputHold)
	assert.True(t, cfg.Display.Headless)
	assert.Equal(t, 8.0, cfg.Simulation.CellSize)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, time.Second/30, cfg.Step())
	require.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "[simulation\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestShippedFileIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "skirmish.toml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "scripts", cfg.Data.Scripts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero tick rate", func(c *Config) { c.Simulation.TickRate = 0 }},
		{"negative catch-up", func(c *Config) { c.Simulation.MaxCatchUp = -1 }},
		{"zero cell size", func(c *Config) { c.Simulation.CellSize = 0 }},
		{"cell larger than world", func(c *Config) { c.Simulation.CellSize = 500 }},
		{"flat world", func(c *Config) { c.Simulation.WorldHeight = 0 }},
		{"negative blocks", func(c *Config) { c.Simulation.Blocks = -2 }},
		{"negative duration", func(c *Config) { c.Simulation.Duration = -time.Second }},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }},
		{"screen without log file", func(c *Config) { c.Logging.File = "" }},
		{"loud audio", func(c *Config) { c.Audio.Volume = 2 }},
		{"low sample rate", func(c *Config) { c.Audio.SampleRate = 100 }},
		{"scoreboard without dsn", func(c *Config) { c.Scoreboard = ScoreboardConfig{Enabled: true} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestHeadlessNeedsNoLogFile(t *testing.T) {
	cfg := Default()
	cfg.Display.Headless = true
	cfg.Logging.File = ""
	cfg.Audio.Enabled = false
	cfg.Audio.Volume = 7
	require.NoError(t, cfg.Validate())
}

func TestCheckCellSize(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.CheckCellSize(4))
	require.NoError(t, cfg.CheckCellSize(8))
	require.ErrorIs(t, cfg.CheckCellSize(8.5), ErrInvalid)
}
