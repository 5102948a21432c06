package system

import "time"

// Phase defines execution ordering within a single tick. Systems of the same
// phase run in registration order.
type Phase int

const (
	PhaseInput      Phase = iota // 0: latch input snapshot
	PhasePreUpdate               // 1: snapshot previous-tick state
	PhaseUpdate                  // 2: game logic, movement
	PhasePhysics                 // 3: broad-phase collision
	PhasePostUpdate              // 4: react to contacts, expire, stage removals
	PhaseSpawn                   // 5: spawn waves
)

var phaseNames = [...]string{"input", "pre-update", "update", "physics", "post-update", "spawn"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "phase(?)"
}

// System is the interface every ECS system implements.
// Update returns an error only for faults the tick cannot survive.
type System interface {
	Name() string
	Phase() Phase
	Update(dt time.Duration) error
}
