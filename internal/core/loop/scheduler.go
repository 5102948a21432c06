// Package loop drives the simulation with a fixed timestep.
//
// Each iteration runs one tick and one render, then sleeps off whatever is
// left of the step, corrected by the previous oversleep (debt). When an
// iteration overruns its step the deficit accumulates as lag, which is paid
// back with logic-only ticks, at most MaxCatchUp per iteration. Lag beyond
// MaxCatchUp steps is shed: the simulation falls behind real time instead of
// spinning. Every tick advances simulated time by exactly Step.
package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("loop: invalid config")

type Config struct {
	Step       time.Duration
	MaxCatchUp int
}

func (c Config) validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("%w: step %s", ErrInvalidConfig, c.Step)
	}
	if c.MaxCatchUp < 0 {
		return fmt.Errorf("%w: max catch-up %d", ErrInvalidConfig, c.MaxCatchUp)
	}
	return nil
}

// TickFunc advances the simulation by dt. An error stops the scheduler.
type TickFunc func(dt time.Duration) error

// RenderFunc draws the current state. It must not mutate the simulation.
type RenderFunc func()

type Stats struct {
	Ticks        uint64
	Frames       uint64
	CatchUpTicks uint64
	SimTime      time.Duration
	Lag          time.Duration
	Shed         time.Duration
}

type Scheduler struct {
	cfg    Config
	clock  Clock
	tick   TickFunc
	render RenderFunc
	log    *zap.Logger

	mark   time.Time     // start of the current iteration
	debt   time.Duration // oversleep of the last sleep, signed
	lag    time.Duration // unpaid overrun
	behind bool
	stats  Stats
}

func New(cfg Config, clock Clock, tick TickFunc, render RenderFunc, log *zap.Logger) (*Scheduler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if render == nil {
		render = func() {}
	}
	return &Scheduler{
		cfg:    cfg,
		clock:  clock,
		tick:   tick,
		render: render,
		log:    log.Named("loop"),
	}, nil
}

// Run iterates until ctx is cancelled (returns nil) or a tick fails.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("loop started",
		zap.Duration("step", s.cfg.Step),
		zap.Int("max_catch_up", s.cfg.MaxCatchUp))
	s.mark = s.clock.Now()
	for {
		if ctx.Err() != nil {
			break
		}
		if err := s.Iterate(ctx); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				break
			}
			return err
		}
	}
	s.log.Info("loop stopped",
		zap.Uint64("ticks", s.stats.Ticks),
		zap.Uint64("frames", s.stats.Frames),
		zap.Duration("sim_time", s.stats.SimTime))
	return nil
}

// Iterate runs one tick, one render, the sleep and any catch-up ticks.
func (s *Scheduler) Iterate(ctx context.Context) error {
	if s.mark.IsZero() {
		s.mark = s.clock.Now()
	}
	if err := s.step(); err != nil {
		return err
	}
	s.render()
	s.stats.Frames++

	consumed := s.clock.Now().Sub(s.mark)
	sleep := s.cfg.Step - consumed - s.debt
	if sleep > 0 {
		before := s.clock.Now()
		if err := s.clock.Sleep(ctx, sleep); err != nil {
			return err
		}
		s.debt = s.clock.Now().Sub(before) - sleep
	} else {
		s.debt = 0
		s.lag += -sleep
	}
	s.mark = s.clock.Now()

	skips := 0
	for s.lag >= s.cfg.Step && skips < s.cfg.MaxCatchUp {
		s.lag -= s.cfg.Step
		if err := s.step(); err != nil {
			return err
		}
		skips++
	}
	s.stats.CatchUpTicks += uint64(skips)

	if limit := s.cfg.Step * time.Duration(s.cfg.MaxCatchUp); s.lag > limit {
		s.stats.Shed += s.lag - limit
		s.lag = limit
		if !s.behind {
			s.behind = true
			s.log.Warn("simulation falling behind real time",
				zap.Int("catch_up_ticks", skips),
				zap.Duration("lag", s.lag))
		}
	} else if s.behind && s.lag < s.cfg.Step {
		s.behind = false
		s.log.Info("simulation caught up")
	}
	s.stats.Lag = s.lag
	return nil
}

func (s *Scheduler) step() error {
	if err := s.tick(s.cfg.Step); err != nil {
		return err
	}
	s.stats.Ticks++
	s.stats.SimTime += s.cfg.Step
	return nil
}

func (s *Scheduler) Stats() Stats { return s.stats }

// SimTime is Ticks × Step.
func (s *Scheduler) SimTime() time.Duration { return s.stats.SimTime }
