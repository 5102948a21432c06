package system

import (
	"time"

	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/event"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"go.uber.org/zap"
)

// maxHierarchyDepth bounds how far removal follows child links; deeper
// descendants are left alone and logged.
const maxHierarchyDepth = 16

type hierarchyItem struct {
	id    ecs.EntityID
	depth int
}

// HierarchySystem removes the children of every parent pending removal and
// prunes child ids that no longer exist. Traversal is iterative with an
// explicit stack. Registered last in PostUpdate so it sees every removal
// staged this tick. Phase 4 (PostUpdate).
type HierarchySystem struct {
	*coresys.Batch
	store *ecs.Store
	bus   *event.Bus
	log   *zap.Logger
	stack []hierarchyItem
}

func NewHierarchySystem(store *ecs.Store, bus *event.Bus, log *zap.Logger) *HierarchySystem {
	s := &HierarchySystem{store: store, bus: bus, log: log.Named("hierarchy")}
	s.Batch = coresys.NewBatch("hierarchy", coresys.PhasePostUpdate, store,
		coresys.All(component.KindChildren), s.update)
	return s
}

func (s *HierarchySystem) update(ids []ecs.EntityID, _ time.Duration) error {
	for _, id := range ids {
		ch, err := ecs.Require[*component.Children](s.store, id)
		if err != nil {
			s.log.Warn("entity skipped", zap.Stringer("entity", id), zap.Error(err))
			continue
		}
		if s.store.Pending(id) {
			s.removeDescendants(id)
			continue
		}
		live := ch.IDs[:0]
		for _, c := range ch.IDs {
			if s.store.Contains(c) || s.store.Waiting(c) {
				live = append(live, c)
			}
		}
		clear(ch.IDs[len(live):])
		ch.IDs = live
	}
	return nil
}

func (s *HierarchySystem) removeDescendants(root ecs.EntityID) {
	s.stack = append(s.stack[:0], hierarchyItem{id: root})
	for len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		ch, ok := ecs.Get[*component.Children](s.store, top.id)
		if !ok {
			continue
		}
		if top.depth >= maxHierarchyDepth {
			s.log.Warn("hierarchy too deep, children kept",
				zap.Stringer("entity", top.id),
				zap.Int("children", len(ch.IDs)))
			continue
		}
		for _, c := range ch.IDs {
			if !s.store.Contains(c) && !s.store.Waiting(c) {
				continue
			}
			if s.store.Contains(c) && s.store.Pending(c) {
				continue // already on its way out
			}
			s.store.Remove(c)
			event.Emit(s.bus, event.EntityDied{Entity: c, Cause: event.CauseOrphaned, By: root})
			s.stack = append(s.stack, hierarchyItem{id: c, depth: top.depth + 1})
		}
	}
}
