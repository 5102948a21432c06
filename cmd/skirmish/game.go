package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/skirmish/skirmish/internal/audio"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/config"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/loop"
	"github.com/skirmish/skirmish/internal/data"
	"github.com/skirmish/skirmish/internal/hud"
	"github.com/skirmish/skirmish/internal/input"
	"github.com/skirmish/skirmish/internal/persist"
	"github.com/skirmish/skirmish/internal/render"
	"github.com/skirmish/skirmish/internal/scripting"
	"github.com/skirmish/skirmish/internal/system"
	"github.com/skirmish/skirmish/internal/world"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	errGameOver = errors.New("game over")
	errTimeUp   = errors.New("time up")
)

// Game owns one session: the world, its collaborators and the loop.
type Game struct {
	cfg        *config.Config
	log        *zap.Logger
	world      *world.World
	templates  *data.Templates
	engine     *scripting.Engine
	controller *input.Controller
	board      *hud.Board
	screen     tcell.Screen // nil when headless
	renderer   *render.Renderer
	sound      audio.Player
	spawner    *system.SpawnerSystem
	scheduler  *loop.Scheduler

	player    ecs.EntityID
	startedAt time.Time
	finiOnce  sync.Once
}

func newGame(cfg *config.Config, log *zap.Logger, w *world.World, tpl *data.Templates, eng *scripting.Engine,
	ctrl *input.Controller, board *hud.Board, screen tcell.Screen, sound audio.Player,
	spawner *system.SpawnerSystem, sys systems) (*Game, error) {
	if err := w.Register(sys...); err != nil {
		return nil, fmt.Errorf("register systems: %w", err)
	}
	hud.Bind(w.Bus, board)
	audio.Bind(w.Bus, sound, log)

	g := &Game{
		cfg:        cfg,
		log:        log.Named("game"),
		world:      w,
		templates:  tpl,
		engine:     eng,
		controller: ctrl,
		board:      board,
		screen:     screen,
		sound:      sound,
		spawner:    spawner,
	}

	var draw loop.RenderFunc
	if screen != nil {
		g.renderer = render.New(screen, w.Store, board, w.Bounds, g.status)
		draw = g.renderer.Draw
	}
	sched, err := loop.New(loop.Config{
		Step:       cfg.Step(),
		MaxCatchUp: cfg.Simulation.MaxCatchUp,
	}, loop.RealClock{}, g.tick, draw, log)
	if err != nil {
		return nil, err
	}
	g.scheduler = sched
	return g, nil
}

// Setup places the player and the obstacles. They become visible at the
// first tick's apply point.
func (g *Game) Setup() error {
	player, err := g.spawner.Setup(g.cfg.Simulation.Blocks)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	g.player = player
	g.board.Post("wasd/arrows move, space fires, q quits", 4*time.Second)
	return nil
}

func (g *Game) tick(dt time.Duration) error {
	if err := g.world.Tick(dt); err != nil {
		return err
	}
	g.board.Advance(dt)
	if len(g.world.Players()) == 0 {
		return errGameOver
	}
	if d := g.cfg.Simulation.Duration; d > 0 && g.world.Stats.SimTime >= d {
		return errTimeUp
	}
	return nil
}

// Run drives the loop until the player quits, dies, time runs out or ctx
// is cancelled. Only the loop goroutine touches the world.
func (g *Game) Run(ctx context.Context) (persist.Outcome, error) {
	if g.screen != nil {
		if err := g.screen.Init(); err != nil {
			return persist.OutcomeFailed, fmt.Errorf("init screen: %w", err)
		}
		g.screen.HideCursor()
		defer g.fini()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g.startedAt = time.Now()

	outcome := persist.OutcomeQuit
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		defer cancel()
		err := g.scheduler.Run(gctx)
		switch {
		case errors.Is(err, errGameOver):
			outcome = persist.OutcomeGameOver
			return nil
		case errors.Is(err, errTimeUp):
			outcome = persist.OutcomeTimeUp
			return nil
		}
		return err
	})
	grp.Go(func() error {
		select {
		case <-g.controller.Quit():
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	if g.screen != nil {
		grp.Go(func() error { return g.controller.Pump(gctx, g.screen) })
		grp.Go(func() error {
			<-gctx.Done()
			g.fini()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return persist.OutcomeFailed, err
	}
	g.log.Info("session finished",
		zap.String("outcome", string(outcome)),
		zap.Uint64("ticks", g.world.Stats.Ticks),
		zap.Uint64("frames", g.scheduler.Stats().Frames))
	return outcome, nil
}

func (g *Game) fini() {
	g.finiOnce.Do(g.screen.Fini)
}

func (g *Game) status() string {
	hp := 0
	for _, id := range g.world.Players() {
		if h, ok := ecs.Get[*component.Health](g.world.Store, id); ok {
			hp = h.HP
		}
	}
	s := g.world.Stats
	return fmt.Sprintf(" wave %d  score %d  kills %d  hp %d  %s",
		g.spawner.Wave(), s.Score, s.Kills, hp, s.SimTime.Truncate(time.Second))
}

// Record summarises the session for the scoreboard.
func (g *Game) Record(outcome persist.Outcome) persist.SessionRecord {
	s := g.world.Stats
	return persist.SessionRecord{
		ID:        g.world.ID,
		Seed:      g.cfg.Simulation.Seed,
		Ticks:     s.Ticks,
		SimTime:   s.SimTime,
		Kills:     s.Kills,
		Waves:     s.Waves,
		Score:     s.Score,
		Outcome:   outcome,
		StartedAt: g.startedAt,
		EndedAt:   time.Now(),
	}
}
