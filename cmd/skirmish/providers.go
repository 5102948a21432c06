package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/google/wire"
	"github.com/skirmish/skirmish/internal/audio"
	"github.com/skirmish/skirmish/internal/config"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"github.com/skirmish/skirmish/internal/data"
	"github.com/skirmish/skirmish/internal/hud"
	"github.com/skirmish/skirmish/internal/input"
	"github.com/skirmish/skirmish/internal/scripting"
	"github.com/skirmish/skirmish/internal/system"
	"github.com/skirmish/skirmish/internal/world"
	"go.uber.org/zap"
)

var gameSet = wire.NewSet(
	provideWorld,
	provideTemplates,
	provideEngine,
	provideController,
	provideBoard,
	provideScreen,
	provideSound,
	provideSpawner,
	provideSystems,
	newGame,
)

// systems is the full registration list, in tick order.
type systems []coresys.System

func provideWorld(cfg *config.Config, log *zap.Logger) (*world.World, func(), error) {
	s := cfg.Simulation
	w, err := world.New(uuid.New(), s.WorldWidth, s.WorldHeight, s.CellSize, log)
	if err != nil {
		return nil, nil, fmt.Errorf("world: %w", err)
	}
	return w, w.Shutdown, nil
}

func provideTemplates(cfg *config.Config) (*data.Templates, error) {
	tpl, err := data.LoadTemplates(cfg.Data.Templates)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	if err := cfg.CheckCellSize(tpl.MaxExtent()); err != nil {
		return nil, err
	}
	return tpl, nil
}

func provideEngine(cfg *config.Config, log *zap.Logger) (*scripting.Engine, func(), error) {
	eng, err := scripting.NewEngine(cfg.Data.Scripts, log)
	if err != nil {
		return nil, nil, fmt.Errorf("scripting: %w", err)
	}
	return eng, eng.Close, nil
}

func provideController(cfg *config.Config) *input.Controller {
	return input.NewController(cfg.Display.InputHold)
}

func provideBoard() *hud.Board {
	return hud.NewBoard(80)
}

// provideScreen returns a nil screen in headless mode. The game initialises
// and finalises it.
func provideScreen(cfg *config.Config) (tcell.Screen, error) {
	if cfg.Display.Headless {
		return nil, nil
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("screen: %w", err)
	}
	return screen, nil
}

func provideSound(cfg *config.Config, log *zap.Logger) (audio.Player, func()) {
	if !cfg.Audio.Enabled || cfg.Display.Headless {
		return audio.NopPlayer{}, func() {}
	}
	p, err := audio.NewBeepPlayer(cfg.Audio.SampleRate, cfg.Audio.Volume)
	if err != nil {
		log.Warn("audio unavailable, continuing without sound", zap.Error(err))
		return audio.NopPlayer{}, func() {}
	}
	return p, p.Close
}

func provideSpawner(cfg *config.Config, w *world.World, tpl *data.Templates, eng *scripting.Engine, log *zap.Logger) (*system.SpawnerSystem, error) {
	seed := cfg.Simulation.Seed
	if seed == "" {
		seed = w.ID.String()
	}
	return system.NewSpawnerSystem(w.Store, w.Bus, tpl, eng, w.Bounds, seed, log)
}

func provideSystems(w *world.World, ctrl *input.Controller, tpl *data.Templates, eng *scripting.Engine,
	spawner *system.SpawnerSystem, log *zap.Logger) systems {
	return systems{
		// Phase 0 (input)
		system.NewInputSystem(ctrl),
		// Phase 1 (pre-update)
		system.NewHistorySystem(w.Store, log),
		// Phase 2 (update)
		system.NewControlSystem(w.Store, w.Bus, ctrl, tpl, log),
		system.NewChaseSystem(w.Store, log),
		system.NewMovementSystem(w.Store, log),
		// Phase 3 (physics)
		system.NewCollisionSystem(w.Store, w.Grid, log),
		// Phase 4 (post-update)
		system.NewDamageSystem(w.Store, w.Bus, eng, log),
		system.NewImpactSystem(w.Store, w.Bus, log),
		system.NewObstacleSystem(w.Store, log),
		system.NewLifetimeSystem(w.Store, w.Bus, log),
		system.NewBoundsSystem(w.Store, w.Bus, w.Bounds, log),
		system.NewHierarchySystem(w.Store, w.Bus, log),
		// Phase 5 (spawn)
		spawner,
	}
}
