package system

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"go.uber.org/zap"
)

// MovementSystem integrates velocity into position. Registered after the
// systems that steer. Phase 2 (Update).
type MovementSystem struct {
	*coresys.PerEntity
	store *ecs.Store
}

func NewMovementSystem(store *ecs.Store, log *zap.Logger) *MovementSystem {
	s := &MovementSystem{store: store}
	s.PerEntity = coresys.NewPerEntity("movement", coresys.PhaseUpdate, store,
		coresys.All(component.KindTransform, component.KindVelocity), s, log)
	return s
}

func (s *MovementSystem) Process(id ecs.EntityID, dt time.Duration) error {
	tr, err := ecs.Require[*component.Transform](s.store, id)
	if err != nil {
		return err
	}
	v, err := ecs.Require[*component.Velocity](s.store, id)
	if err != nil {
		return err
	}
	vel := v.V
	if !finite(vel) {
		v.V = mgl64.Vec2{}
		return errBadVelocity
	}
	if v.MaxSpeed > 0 {
		if l := vel.Len(); l > v.MaxSpeed {
			vel = vel.Mul(v.MaxSpeed / l)
		}
	}
	next := tr.Pos.Add(vel.Mul(dt.Seconds()))
	if !finite(next) {
		v.V = mgl64.Vec2{}
		return errBadPosition
	}
	tr.Pos = next
	return nil
}

func finite(v mgl64.Vec2) bool {
	return !math.IsNaN(v[0]) && !math.IsInf(v[0], 0) && !math.IsNaN(v[1]) && !math.IsInf(v[1], 0)
}
