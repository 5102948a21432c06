package system

import (
	"math"
	"time"

	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/event"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"go.uber.org/zap"
)

// BoundsSystem keeps players inside the world and removes anything else that
// has left it completely. Phase 4 (PostUpdate).
type BoundsSystem struct {
	*coresys.PerEntity
	store  *ecs.Store
	bus    *event.Bus
	bounds component.Rect
}

func NewBoundsSystem(store *ecs.Store, bus *event.Bus, bounds component.Rect, log *zap.Logger) *BoundsSystem {
	s := &BoundsSystem{store: store, bus: bus, bounds: bounds}
	s.PerEntity = coresys.NewPerEntity("bounds", coresys.PhasePostUpdate, store,
		coresys.All(component.KindTransform), s, log)
	return s
}

func (s *BoundsSystem) Process(id ecs.EntityID, _ time.Duration) error {
	tr, err := ecs.Require[*component.Transform](s.store, id)
	if err != nil {
		return err
	}
	box := tr.Box()
	if s.store.Has(id, component.KindPlayer) {
		tr.Pos[0] = clamp(tr.Pos[0], s.bounds.Min[0], s.bounds.Max[0]-tr.Size[0])
		tr.Pos[1] = clamp(tr.Pos[1], s.bounds.Min[1], s.bounds.Max[1]-tr.Size[1])
		return nil
	}
	if box.Overlaps(s.bounds) || s.store.Pending(id) {
		return nil
	}
	s.store.Remove(id)
	event.Emit(s.bus, event.EntityDied{Entity: id, Cause: event.CauseOutOfWorld})
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
