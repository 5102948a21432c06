package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"go.uber.org/zap"
)

// ChaseSystem points chasers at their target. Targets are plain ids; a target
// that died or is about to be removed is replaced by the nearest live
// player, or dropped when there is none. Phase 2 (Update).
type ChaseSystem struct {
	*coresys.PerEntity
	store   *ecs.Store
	players coresys.Cache
}

func NewChaseSystem(store *ecs.Store, log *zap.Logger) *ChaseSystem {
	s := &ChaseSystem{
		store:   store,
		players: coresys.NewCache(store, coresys.All(component.KindPlayer, component.KindTransform)),
	}
	s.PerEntity = coresys.NewPerEntity("chase", coresys.PhaseUpdate, store,
		coresys.All(component.KindTarget, component.KindTransform, component.KindVelocity), s, log)
	return s
}

func (s *ChaseSystem) Process(id ecs.EntityID, _ time.Duration) error {
	tgt, err := ecs.Require[*component.Target](s.store, id)
	if err != nil {
		return err
	}
	tr, err := ecs.Require[*component.Transform](s.store, id)
	if err != nil {
		return err
	}
	v, err := ecs.Require[*component.Velocity](s.store, id)
	if err != nil {
		return err
	}

	from := tr.Box().Center()
	if !s.alive(tgt.Entity) {
		tgt.Entity = s.nearestPlayer(from)
	}
	if tgt.Entity.IsZero() {
		v.V = mgl64.Vec2{}
		return nil
	}
	to, ok := ecs.Get[*component.Transform](s.store, tgt.Entity)
	if !ok {
		v.V = mgl64.Vec2{}
		return nil
	}
	d := to.Box().Center().Sub(from)
	if d.Len() < 1e-9 {
		v.V = mgl64.Vec2{}
		return nil
	}
	v.V = d.Normalize().Mul(tgt.Speed)
	return nil
}

func (s *ChaseSystem) alive(id ecs.EntityID) bool {
	return !id.IsZero() && s.store.Contains(id) && !s.store.Pending(id)
}

func (s *ChaseSystem) nearestPlayer(from mgl64.Vec2) ecs.EntityID {
	var (
		best ecs.EntityID
		dist = -1.0
	)
	for _, id := range s.players.Entities() {
		if s.store.Pending(id) {
			continue
		}
		tr, _ := ecs.Get[*component.Transform](s.store, id)
		d := tr.Box().Center().Sub(from).Len()
		if dist < 0 || d < dist {
			best, dist = id, d
		}
	}
	return best
}
