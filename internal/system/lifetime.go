package system

import (
	"time"

	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/event"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"go.uber.org/zap"
)

// LifetimeSystem removes entities whose time has run out. Removal is staged;
// the entity stays visible until the next apply. Phase 4 (PostUpdate).
type LifetimeSystem struct {
	*coresys.PerEntity
	store *ecs.Store
	bus   *event.Bus
}

func NewLifetimeSystem(store *ecs.Store, bus *event.Bus, log *zap.Logger) *LifetimeSystem {
	s := &LifetimeSystem{store: store, bus: bus}
	s.PerEntity = coresys.NewPerEntity("lifetime", coresys.PhasePostUpdate, store,
		coresys.All(component.KindLifetime), s, log)
	return s
}

func (s *LifetimeSystem) Process(id ecs.EntityID, dt time.Duration) error {
	lt, err := ecs.Require[*component.Lifetime](s.store, id)
	if err != nil {
		return err
	}
	if s.store.Pending(id) {
		return nil
	}
	lt.Left -= dt
	if lt.Left > 0 {
		return nil
	}
	s.store.Remove(id)
	event.Emit(s.bus, event.EntityDied{Entity: id, Cause: event.CauseExpired})
	return nil
}
