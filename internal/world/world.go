package world

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/event"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"go.uber.org/zap"
)

// Stats counts what happened during the session.
type Stats struct {
	Ticks        uint64
	SimTime      time.Duration
	Kills        int
	Waves        int
	PlayerDeaths int
	Score        int
}

// World is the context object of one game session: the entity store, the
// ordered system runner, the event bus and the collision grid. Built once at
// start-up and handed to every system and template.
// Accessed only from the game loop goroutine; no locks.
type World struct {
	ID     uuid.UUID
	Store  *ecs.Store
	Runner *coresys.Runner
	Bus    *event.Bus
	Grid   *SpatialHash
	Bounds component.Rect
	Stats  Stats

	log *zap.Logger
}

func New(id uuid.UUID, width, height, cellSize float64, log *zap.Logger) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("world size %vx%v must be positive", width, height)
	}
	grid, err := NewSpatialHash(cellSize)
	if err != nil {
		return nil, err
	}
	store := ecs.NewStore()
	if err := component.Register(store); err != nil {
		return nil, err
	}

	w := &World{
		ID:     id,
		Store:  store,
		Runner: coresys.NewRunner(),
		Bus:    event.NewBus(),
		Grid:   grid,
		Bounds: component.RectAt(mgl64.Vec2{}, mgl64.Vec2{width, height}),
		log:    log.With(zap.Stringer("world", id)),
	}
	event.Subscribe(w.Bus, w.onDied)
	event.Subscribe(w.Bus, w.onWave)
	return w, nil
}

// Register adds systems to the runner in the order given.
func (w *World) Register(systems ...coresys.System) error {
	for _, s := range systems {
		if err := w.Runner.Register(s); err != nil {
			return err
		}
		w.log.Debug("system registered",
			zap.String("system", s.Name()),
			zap.Stringer("phase", s.Phase()))
	}
	return nil
}

// Tick advances the world by dt: last tick's events are delivered, staged
// mutations are applied at the single apply point, then every system runs.
func (w *World) Tick(dt time.Duration) error {
	w.Bus.SwapBuffers()
	w.Bus.DispatchAll()
	w.Store.Apply()
	if err := w.Runner.Tick(dt); err != nil {
		return err
	}
	w.Stats.Ticks++
	w.Stats.SimTime += dt
	return nil
}

// Spawn creates an entity during setup, visible immediately.
func (w *World) Spawn(components ...ecs.Component) ecs.EntityID {
	return w.Store.CreateNow(components...)
}

// Players returns the applied player entities.
func (w *World) Players() []ecs.EntityID {
	return w.Store.Query(component.KindPlayer)
}

// Shutdown clears all entities and pending events.
func (w *World) Shutdown() {
	w.log.Info("world shutdown",
		zap.Uint64("ticks", w.Stats.Ticks),
		zap.Int("entities", w.Store.Len()),
		zap.Int("kills", w.Stats.Kills))
	w.Store.Clear()
	w.Bus.Reset()
	w.Grid.Clear()
}

func (w *World) onDied(e event.EntityDied) {
	switch {
	case e.Player:
		w.Stats.PlayerDeaths++
	case e.Cause == event.CauseKilled:
		w.Stats.Kills++
		w.Stats.Score += e.Bounty
	}
}

func (w *World) onWave(e event.WaveStarted) {
	if e.Wave > w.Stats.Waves {
		w.Stats.Waves = e.Wave
	}
}
