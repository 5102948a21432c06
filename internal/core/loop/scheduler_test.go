package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const step = 10 * time.Millisecond

type harness struct {
	clock      *ManualClock
	tickCost   time.Duration
	renderCost time.Duration
	dts        []time.Duration
	frames     int
}

func newHarness() *harness {
	return &harness{clock: NewManualClock(time.Unix(0, 0))}
}

func (h *harness) scheduler(t *testing.T, maxCatchUp int) *Scheduler {
	t.Helper()
	s, err := New(Config{Step: step, MaxCatchUp: maxCatchUp}, h.clock,
		func(dt time.Duration) error {
			h.dts = append(h.dts, dt)
			h.clock.Advance(h.tickCost)
			return nil
		},
		func() {
			h.frames++
			h.clock.Advance(h.renderCost)
		}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func iterate(t *testing.T, s *Scheduler, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.Iterate(context.Background()))
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Step: 0}, RealClock{}, nil, nil, zap.NewNop())
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(Config{Step: step, MaxCatchUp: -1}, RealClock{}, nil, nil, zap.NewNop())
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestOneTickPerStepWhenIdle(t *testing.T) {
	h := newHarness()
	s := h.scheduler(t, 5)
	start := h.clock.Now()
	iterate(t, s, 10)

	assert.Len(t, h.dts, 10)
	assert.Equal(t, 10, h.frames)
	assert.Equal(t, 10*step, s.SimTime())
	assert.Equal(t, 10*step, h.clock.Now().Sub(start))
	assert.Zero(t, s.Stats().CatchUpTicks)
}

func TestTimestepIsFixedRegardlessOfRenderCost(t *testing.T) {
	h := newHarness()
	h.renderCost = 3 * step
	s := h.scheduler(t, 5)
	iterate(t, s, 4)

	for _, dt := range h.dts {
		assert.Equal(t, step, dt)
	}
	// each iteration burns three steps of wall time and ticks three times
	assert.Len(t, h.dts, 12)
	assert.Equal(t, 4, h.frames)
	assert.Equal(t, uint64(8), s.Stats().CatchUpTicks)
	assert.Equal(t, time.Duration(len(h.dts))*step, s.SimTime())
	assert.Zero(t, s.Stats().Lag)
}

func TestCatchUpIsBounded(t *testing.T) {
	h := newHarness()
	h.renderCost = 5 * step
	s := h.scheduler(t, 2)
	iterate(t, s, 5)

	// one regular tick + at most two catch-up ticks per iteration
	assert.Len(t, h.dts, 15)
	assert.Equal(t, 5, h.frames)
	assert.LessOrEqual(t, s.Stats().Lag, 2*step)
	assert.Positive(t, s.Stats().Shed)
	assert.Equal(t, 15*step, s.SimTime())
}

func TestNoCatchUpWhenDisabled(t *testing.T) {
	h := newHarness()
	h.renderCost = 2 * step
	s := h.scheduler(t, 0)
	iterate(t, s, 3)

	assert.Len(t, h.dts, 3)
	assert.Zero(t, s.Stats().Lag)
}

func TestOversleepIsRepaid(t *testing.T) {
	h := newHarness()
	h.clock.Oversleep = 2 * time.Millisecond
	s := h.scheduler(t, 5)
	start := h.clock.Now()
	iterate(t, s, 10)

	// only the very first oversleep is left uncorrected
	assert.Equal(t, 10*step+2*time.Millisecond, h.clock.Now().Sub(start))
	assert.Len(t, h.dts, 10)
}

func TestSimulationNeverRunsFasterThanRealTime(t *testing.T) {
	h := newHarness()
	h.tickCost = step / 4
	s := h.scheduler(t, 5)
	start := h.clock.Now()
	iterate(t, s, 20)

	assert.GreaterOrEqual(t, h.clock.Now().Sub(start), s.SimTime())
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	var s *Scheduler
	s, err := New(Config{Step: step, MaxCatchUp: 3}, h.clock, func(time.Duration) error {
		if s.Stats().Ticks == 6 {
			cancel()
		}
		return nil
	}, nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, uint64(7), s.Stats().Ticks)
}

func TestRunReturnsTickFailure(t *testing.T) {
	h := newHarness()
	boom := errors.New("boom")
	s, err := New(Config{Step: step}, h.clock, func(time.Duration) error { return boom }, nil, zap.NewNop())
	require.NoError(t, err)

	require.ErrorIs(t, s.Run(context.Background()), boom)
	assert.Zero(t, s.Stats().Ticks)
}
