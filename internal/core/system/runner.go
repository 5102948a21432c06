package system

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrDuplicateSystem = errors.New("system: duplicate registration")

// TickError wraps a fault escaping a system. The world is possibly
// inconsistent afterwards, so callers treat it as fatal.
type TickError struct {
	System string
	Tick   uint64
	Err    error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d: system %s: %v", e.Tick, e.System, e.Err)
}

func (e *TickError) Unwrap() error { return e.Err }

// Runner executes systems in phase order each tick.
type Runner struct {
	systems []System
	names   map[string]struct{}
	sorted  bool
	ticks   uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
		names:   make(map[string]struct{}, 16),
	}
}

// Register appends s. Registering two systems under one name is a
// configuration error.
func (r *Runner) Register(s System) error {
	if _, dup := r.names[s.Name()]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.Name())
	}
	r.names[s.Name()] = struct{}{}
	r.systems = append(r.systems, s)
	r.sorted = false
	return nil
}

// Tick runs every system once. The first failure stops the tick.
func (r *Runner) Tick(dt time.Duration) error {
	r.ensureSorted()
	r.ticks++
	for _, s := range r.systems {
		if err := r.run(s, dt); err != nil {
			return err
		}
	}
	return nil
}

// TickPhase runs only the systems of one phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) error {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() != phase {
			continue
		}
		if err := r.run(s, dt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) run(s System, dt time.Duration) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &TickError{System: s.Name(), Tick: r.ticks, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	if err := s.Update(dt); err != nil {
		return &TickError{System: s.Name(), Tick: r.ticks, Err: err}
	}
	return nil
}

// Ticks returns how many full ticks have started.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Order lists system names in execution order.
func (r *Runner) Order() []string {
	r.ensureSorted()
	names := make([]string, len(r.systems))
	for i, s := range r.systems {
		names[i] = s.Name()
	}
	return names
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
