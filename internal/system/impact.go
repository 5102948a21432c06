package system

import (
	"time"

	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/event"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"go.uber.org/zap"
)

// ImpactSystem removes one-shot damage dealers once they touched anything
// they collide with. Registered after DamageSystem. Phase 4 (PostUpdate).
type ImpactSystem struct {
	*coresys.PerEntity
	store *ecs.Store
	bus   *event.Bus
}

func NewImpactSystem(store *ecs.Store, bus *event.Bus, log *zap.Logger) *ImpactSystem {
	s := &ImpactSystem{store: store, bus: bus}
	s.PerEntity = coresys.NewPerEntity("impact", coresys.PhasePostUpdate, store,
		coresys.All(component.KindDamage, component.KindCollider), s, log)
	return s
}

func (s *ImpactSystem) Process(id ecs.EntityID, _ time.Duration) error {
	d, err := ecs.Require[*component.Damage](s.store, id)
	if err != nil {
		return err
	}
	col, err := ecs.Require[*component.Collider](s.store, id)
	if err != nil {
		return err
	}
	if !d.Expend || s.store.Pending(id) {
		return nil
	}
	if !d.Spent && len(col.Hits) == 0 {
		return nil
	}
	s.store.Remove(id)
	event.Emit(s.bus, event.EntityDied{Entity: id, Cause: event.CauseImpact, By: d.Owner})
	return nil
}
