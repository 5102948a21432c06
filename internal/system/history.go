package system

import (
	"time"

	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"go.uber.org/zap"
)

// HistorySystem snapshots every Transform before anything moves, so later
// systems can compare against or roll back to the start of the tick.
// Phase 1 (PreUpdate).
type HistorySystem struct {
	*coresys.PerEntity
	store *ecs.Store
}

func NewHistorySystem(store *ecs.Store, log *zap.Logger) *HistorySystem {
	s := &HistorySystem{store: store}
	s.PerEntity = coresys.NewPerEntity("history", coresys.PhasePreUpdate, store,
		coresys.All(component.KindTransform, component.KindHistory), s, log)
	return s
}

func (s *HistorySystem) Process(id ecs.EntityID, _ time.Duration) error {
	tr, err := ecs.Require[*component.Transform](s.store, id)
	if err != nil {
		return err
	}
	h, err := ecs.Require[*component.History](s.store, id)
	if err != nil {
		return err
	}
	h.Moved = h.Written && h.Prev != *tr
	h.Prev = *tr
	h.Written = true
	return nil
}
