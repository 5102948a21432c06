package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/skirmish/skirmish/internal/config"
	"github.com/skirmish/skirmish/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func headless(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Display.Headless = true
	cfg.Audio.Enabled = false
	cfg.Logging.File = ""
	cfg.Simulation.TickRate = 500
	cfg.Simulation.Seed = "test"
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config) *Game {
	t.Helper()
	g, cleanup, err := initializeGame(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	require.NoError(t, g.Setup())
	return g
}

func TestInitializeRegistersEverySystem(t *testing.T) {
	g := newTestGame(t, headless(t))

	assert.Equal(t, []string{
		"input", "history", "control", "chase", "movement",
		"collision",
		"damage", "impact", "obstacle", "lifetime", "bounds", "hierarchy",
		"spawner",
	}, g.world.Runner.Order())
	assert.Nil(t, g.screen)
	assert.Nil(t, g.renderer)
}

func TestRunStopsWhenTimeIsUp(t *testing.T) {
	cfg := headless(t)
	cfg.Simulation.Duration = 40 * time.Millisecond
	g := newTestGame(t, cfg)

	outcome, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, persist.OutcomeTimeUp, outcome)
	assert.Equal(t, uint64(20), g.world.Stats.Ticks)

	rec := g.Record(outcome)
	assert.Equal(t, g.world.ID, rec.ID)
	assert.Equal(t, 40*time.Millisecond, rec.SimTime)
	assert.Equal(t, "test", rec.Seed)
}

func TestRunStopsOnQuit(t *testing.T) {
	g := newTestGame(t, headless(t))
	g.controller.RequestQuit()

	outcome, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, persist.OutcomeQuit, outcome)
}

func TestRunStopsOnCancel(t *testing.T) {
	g := newTestGame(t, headless(t))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	outcome, err := g.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, persist.OutcomeQuit, outcome)
}

func TestGameOverWhenPlayerGone(t *testing.T) {
	g := newTestGame(t, headless(t))
	g.world.Store.Remove(g.player)

	outcome, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, persist.OutcomeGameOver, outcome)
}

func TestStatusShowsPlayerHealth(t *testing.T) {
	g := newTestGame(t, headless(t))
	require.NoError(t, g.tick(g.cfg.Step()))
	assert.Contains(t, g.status(), "hp 10")
	assert.Contains(t, g.status(), "wave 0")
}

func TestInitializeRejectsSmallCells(t *testing.T) {
	cfg := headless(t)
	cfg.Simulation.CellSize = 2
	_, _, err := initializeGame(cfg, zap.NewNop())
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skirmish.log")
	log, err := newLogger(config.LoggingConfig{Level: "debug", Format: "console", File: path})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, log.Sync())
	assert.FileExists(t, path)

}
