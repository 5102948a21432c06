package system

import (
	"time"

	coresys "github.com/skirmish/skirmish/internal/core/system"
)

// Latcher snapshots pending input for the coming tick.
type Latcher interface {
	Latch()
}

// InputSystem latches the input controller so every later system in the tick
// reads the same snapshot. Phase 0 (Input).
type InputSystem struct {
	input Latcher
}

func NewInputSystem(input Latcher) *InputSystem {
	return &InputSystem{input: input}
}

func (s *InputSystem) Name() string         { return "input" }
func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) error {
	s.input.Latch()
	return nil
}
