package system

import (
	"time"

	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"github.com/skirmish/skirmish/internal/world"
	"go.uber.org/zap"
)

const (
	// maxCells is how many grid cells an entity no larger than a cell can touch.
	maxCells = 4
	// maxSpan caps the cells one collider may be inserted into.
	maxSpan = 1 << 12
)

type collisionEntry struct {
	box component.Rect
	col *component.Collider
}

type pairKey struct{ lo, hi ecs.EntityID }

func makePair(a, b ecs.EntityID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

// CollisionSystem is the broad phase. Every tick it rebuilds the spatial hash
// from scratch, tests each pair sharing a bucket once, and records overlaps
// symmetrically in both colliders' Hits. It never moves anything.
//
// Fast movers can pass through thin colliders between two ticks; there is no
// swept test. Phase 3 (Physics).
type CollisionSystem struct {
	*coresys.Batch
	store *ecs.Store
	grid  *world.SpatialHash
	log   *zap.Logger

	entries map[ecs.EntityID]collisionEntry
	tested  map[pairKey]struct{}
	pairs   int

	warnedEmpty map[ecs.EntityID]struct{}
	warnedWide  map[ecs.EntityID]struct{}
}

func NewCollisionSystem(store *ecs.Store, grid *world.SpatialHash, log *zap.Logger) *CollisionSystem {
	s := &CollisionSystem{
		store:       store,
		grid:        grid,
		log:         log.Named("collision"),
		entries:     make(map[ecs.EntityID]collisionEntry, 256),
		tested:      make(map[pairKey]struct{}, 256),
		warnedEmpty: make(map[ecs.EntityID]struct{}),
		warnedWide:  make(map[ecs.EntityID]struct{}),
	}
	s.Batch = coresys.NewBatch("collision", coresys.PhasePhysics, store,
		coresys.All(component.KindTransform, component.KindCollider), s.update)
	return s
}

// Pairs returns how many overlapping pairs the last tick found.
func (s *CollisionSystem) Pairs() int { return s.pairs }

func (s *CollisionSystem) update(ids []ecs.EntityID, _ time.Duration) error {
	s.grid.Clear()
	clear(s.entries)
	clear(s.tested)
	s.pairs = 0

	for _, id := range ids {
		col, err := ecs.Require[*component.Collider](s.store, id)
		if err != nil {
			s.log.Warn("entity skipped", zap.Stringer("entity", id), zap.Error(err))
			continue
		}
		col.Hits = col.Hits[:0]
		col.Cells = col.Cells[:0]
		tr, err := ecs.Require[*component.Transform](s.store, id)
		if err != nil {
			s.log.Warn("entity skipped", zap.Stringer("entity", id), zap.Error(err))
			continue
		}

		box := tr.Box()
		if !box.Valid() {
			s.warnOnce(s.warnedEmpty, id, "collider with empty or non-finite box skipped", box)
			continue
		}
		if lo, hi := s.grid.Span(box); spanCells(lo, hi) > maxSpan {
			s.warnOnce(s.warnedWide, id, "collider too large for the grid skipped", box)
			continue
		}
		col.Cells = s.grid.Insert(id, box, col.Cells)
		if len(col.Cells) > maxCells {
			s.warnOnce(s.warnedWide, id, "collider larger than a grid cell", box)
		}
		s.entries[id] = collisionEntry{box: box, col: col}
	}

	s.grid.EachBucket(func(_ component.Cell, bucket []ecs.EntityID) {
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				s.test(bucket[i], bucket[j])
			}
		}
	})

	s.forget(s.warnedEmpty)
	s.forget(s.warnedWide)
	return nil
}

func (s *CollisionSystem) test(a, b ecs.EntityID) {
	key := makePair(a, b)
	if _, done := s.tested[key]; done {
		return
	}
	s.tested[key] = struct{}{}

	ea, eb := s.entries[a], s.entries[b]
	if !component.Interacts(ea.col, eb.col) || !ea.box.Overlaps(eb.box) {
		return
	}
	ea.col.Hits = append(ea.col.Hits, b)
	eb.col.Hits = append(eb.col.Hits, a)
	s.pairs++
}

func (s *CollisionSystem) warnOnce(seen map[ecs.EntityID]struct{}, id ecs.EntityID, msg string, box component.Rect) {
	if _, ok := seen[id]; ok {
		return
	}
	seen[id] = struct{}{}
	s.log.Warn(msg,
		zap.Stringer("entity", id),
		zap.Float64("x", box.Min[0]),
		zap.Float64("y", box.Min[1]),
		zap.Float64("w", box.Width()),
		zap.Float64("h", box.Height()),
		zap.Float64("cell", s.grid.CellSize()))
}

func spanCells(lo, hi component.Cell) int64 {
	return (int64(hi.X) - int64(lo.X) + 1) * (int64(hi.Y) - int64(lo.Y) + 1)
}

// forget drops warning marks of entities that no longer exist.
func (s *CollisionSystem) forget(seen map[ecs.EntityID]struct{}) {
	for id := range seen {
		if !s.store.Contains(id) {
			delete(seen, id)
		}
	}
}
