package event

import "github.com/skirmish/skirmish/internal/core/ecs"

// Cause names why an entity was removed.
type Cause string

const (
	CauseKilled     Cause = "killed"
	CauseExpired    Cause = "expired"
	CauseOutOfWorld Cause = "out_of_world"
	CauseOrphaned   Cause = "orphaned"
	CauseImpact     Cause = "impact"
)

type EntityDied struct {
	Entity ecs.EntityID
	Cause  Cause
	By     ecs.EntityID // zero when nobody is to blame
	Bounty int
	Player bool
}

type EntityDamaged struct {
	Entity ecs.EntityID
	By     ecs.EntityID
	Amount int
	HP     int
	Player bool
}

type ShotFired struct {
	Shooter ecs.EntityID
	Bullet  ecs.EntityID
}

type WaveStarted struct {
	Wave  int
	Count int
}
