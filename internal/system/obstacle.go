package system

import (
	"time"

	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"go.uber.org/zap"
)

// ObstacleSystem moves entities that ran into a block back to where they
// started the tick. Collision only reports contact; this is the one place a
// contact is resolved. Phase 4 (PostUpdate).
type ObstacleSystem struct {
	*coresys.PerEntity
	store *ecs.Store
}

func NewObstacleSystem(store *ecs.Store, log *zap.Logger) *ObstacleSystem {
	s := &ObstacleSystem{store: store}
	s.PerEntity = coresys.NewPerEntity("obstacle", coresys.PhasePostUpdate, store,
		coresys.All(component.KindTransform, component.KindHistory, component.KindCollider), s, log)
	return s
}

func (s *ObstacleSystem) Process(id ecs.EntityID, _ time.Duration) error {
	col, err := ecs.Require[*component.Collider](s.store, id)
	if err != nil {
		return err
	}
	h, err := ecs.Require[*component.History](s.store, id)
	if err != nil {
		return err
	}
	if !h.Written {
		return nil
	}
	for _, other := range col.Hits {
		oc, ok := ecs.Get[*component.Collider](s.store, other)
		if !ok || oc.Layer&component.LayerBlock == 0 {
			continue
		}
		tr, err := ecs.Require[*component.Transform](s.store, id)
		if err != nil {
			return err
		}
		tr.Pos = h.Prev.Pos
		return nil
	}
	return nil
}
