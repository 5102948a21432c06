package system

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCollision(t *testing.T, f *fixture, cell float64) *CollisionSystem {
	t.Helper()
	grid, err := world.NewSpatialHash(cell)
	require.NoError(t, err)
	return NewCollisionSystem(f.store, grid, zap.NewNop())
}

func solid() *component.Collider { return &component.Collider{Layer: 1, Mask: 1} }

func TestCollisionOverlapAndSeparation(t *testing.T) {
	f := newFixture(t)
	sys := newCollision(t, f, 10)

	a := f.store.Create(xform(0, 0, 10, 10), solid())
	b := f.store.Create(xform(5, 5, 10, 10), solid())
	f.tick(t, sys)

	ca := get[*component.Collider](t, f.store, a)
	cb := get[*component.Collider](t, f.store, b)
	assert.Equal(t, []ecs.EntityID{b}, ca.Hits)
	assert.Equal(t, []ecs.EntityID{a}, cb.Hits)
	assert.Equal(t, 1, sys.Pairs())

	get[*component.Transform](t, f.store, b).Pos = mgl64.Vec2{100, 100}
	f.tick(t, sys)
	assert.Empty(t, ca.Hits)
	assert.Empty(t, cb.Hits)
	assert.Zero(t, sys.Pairs())
}

func TestCollisionPairRecordedOnceAcrossSharedBuckets(t *testing.T) {
	f := newFixture(t)
	sys := newCollision(t, f, 10)

	// both straddle the same four cells
	a := f.store.Create(xform(5, 5, 10, 10), solid())
	b := f.store.Create(xform(6, 6, 10, 10), solid())
	f.tick(t, sys)

	ca := get[*component.Collider](t, f.store, a)
	assert.Equal(t, []ecs.EntityID{b}, ca.Hits)
	assert.Len(t, ca.Cells, 4)
	assert.Equal(t, []ecs.EntityID{a}, get[*component.Collider](t, f.store, b).Hits)
}

func TestCollisionTouchingEdgesDoNotOverlap(t *testing.T) {
	f := newFixture(t)
	sys := newCollision(t, f, 10)

	a := f.store.Create(xform(0, 0, 10, 10), solid())
	f.store.Create(xform(10, 0, 10, 10), solid())
	f.tick(t, sys)
	assert.Empty(t, get[*component.Collider](t, f.store, a).Hits)
}

func TestCollisionLayerMask(t *testing.T) {
	f := newFixture(t)
	sys := newCollision(t, f, 10)

	player := f.store.Create(xform(0, 0, 2, 2), &component.Collider{Layer: component.LayerPlayer, Mask: component.LayerEnemy})
	enemy := f.store.Create(xform(1, 1, 2, 2), &component.Collider{Layer: component.LayerEnemy})
	shot := f.store.Create(xform(1, 1, 1, 1), &component.Collider{Layer: component.LayerPlayerShot, Mask: component.LayerEnemy})
	f.tick(t, sys)

	// one-sided masks still produce symmetric hits; player and shot ignore each other
	assert.Equal(t, []ecs.EntityID{enemy}, get[*component.Collider](t, f.store, player).Hits)
	assert.ElementsMatch(t, []ecs.EntityID{player, shot}, get[*component.Collider](t, f.store, enemy).Hits)
	assert.Equal(t, []ecs.EntityID{enemy}, get[*component.Collider](t, f.store, shot).Hits)
}

func TestCollisionSkipsEmptyBoxes(t *testing.T) {
	f := newFixture(t)
	sys := newCollision(t, f, 10)

	flat := f.store.Create(xform(0, 0, 0, 10), solid())
	other := f.store.Create(xform(0, 0, 10, 10), solid())
	f.tick(t, sys)

	assert.Empty(t, get[*component.Collider](t, f.store, flat).Hits)
	assert.Empty(t, get[*component.Collider](t, f.store, flat).Cells)
	assert.Empty(t, get[*component.Collider](t, f.store, other).Hits)
}

func TestCollisionSkipsNonFiniteBoxes(t *testing.T) {
	for _, tt := range []struct {
		name string
		x, y float64
	}{
		{"nan", math.NaN(), 0},
		{"positive inf", math.Inf(1), 0},
		{"negative inf", 0, math.Inf(-1)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			sys := newCollision(t, f, 10)

			bad := f.store.Create(xform(tt.x, tt.y, 10, 10), solid())
			a := f.store.Create(xform(0, 0, 10, 10), solid())
			b := f.store.Create(xform(5, 5, 10, 10), solid())
			f.tick(t, sys)

			cbad := get[*component.Collider](t, f.store, bad)
			assert.Empty(t, cbad.Hits)
			assert.Empty(t, cbad.Cells)
			assert.Equal(t, []ecs.EntityID{b}, get[*component.Collider](t, f.store, a).Hits)
			assert.Equal(t, 1, sys.Pairs())
		})
	}
}

func TestCollisionSkipsBoxesWiderThanTheGrid(t *testing.T) {
	f := newFixture(t)
	sys := newCollision(t, f, 10)

	huge := f.store.Create(xform(-1e300, -1e300, 2e300, 2e300), solid())
	dot := f.store.Create(xform(1, 1, 1, 1), solid())
	f.tick(t, sys)

	assert.Empty(t, get[*component.Collider](t, f.store, huge).Cells)
	assert.Empty(t, get[*component.Collider](t, f.store, dot).Hits)
}

func TestCollisionSkipsEntityMissingComponents(t *testing.T) {
	f := newFixture(t)
	sys := newCollision(t, f, 10)

	bare := f.store.Create(xform(0, 0, 10, 10))
	a := f.store.Create(xform(0, 0, 10, 10), solid())
	b := f.store.Create(xform(5, 5, 10, 10), solid())
	f.store.Apply()

	require.NoError(t, sys.update([]ecs.EntityID{bare, a, b}, step))
	assert.Equal(t, []ecs.EntityID{b}, get[*component.Collider](t, f.store, a).Hits)
}

func TestCollisionOversizedEntityStillCollides(t *testing.T) {
	f := newFixture(t)
	sys := newCollision(t, f, 10)

	wall := f.store.Create(xform(0, 0, 45, 3), solid())
	dot := f.store.Create(xform(38, 1, 1, 1), solid())
	f.tick(t, sys)

	cw := get[*component.Collider](t, f.store, wall)
	assert.Greater(t, len(cw.Cells), 4)
	assert.Equal(t, []ecs.EntityID{dot}, cw.Hits)
}

func TestCollisionSymmetryRandomized(t *testing.T) {
	f := newFixture(t)
	sys := newCollision(t, f, 8)

	r := rand.New(rand.NewPCG(7, 11))
	var ids []ecs.EntityID
	for i := 0; i < 300; i++ {
		ids = append(ids, f.store.Create(
			xform(r.Float64()*100, r.Float64()*100, 1+r.Float64()*7, 1+r.Float64()*7), solid()))
	}
	f.tick(t, sys)

	hits := make(map[ecs.EntityID][]ecs.EntityID)
	for _, id := range ids {
		hits[id] = get[*component.Collider](t, f.store, id).Hits
	}
	pairs := 0
	for _, a := range ids {
		boxA := get[*component.Transform](t, f.store, a).Box()
		for _, b := range ids {
			if a == b {
				continue
			}
			overlap := boxA.Overlaps(get[*component.Transform](t, f.store, b).Box())
			assert.Equal(t, overlap, contains(hits[a], b), "pair %s %s", a, b)
			assert.Equal(t, contains(hits[a], b), contains(hits[b], a))
			if overlap && a < b {
				pairs++
			}
		}
		assert.Equal(t, len(hits[a]), len(unique(hits[a])), "no duplicate hits")
	}
	assert.Equal(t, pairs, sys.Pairs())
}

func contains(ids []ecs.EntityID, id ecs.EntityID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func unique(ids []ecs.EntityID) map[ecs.EntityID]struct{} {
	m := make(map[ecs.EntityID]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
