package component

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAllKinds(t *testing.T) {
	s := ecs.NewStore()
	require.NoError(t, Register(s))
	assert.Equal(t, "collider", s.KindName(KindCollider))
	require.Error(t, Register(s))

	k, ok := KindByName("lifetime")
	require.True(t, ok)
	assert.Equal(t, KindLifetime, k)
}

func TestGetByType(t *testing.T) {
	s := ecs.NewStore()
	require.NoError(t, Register(s))
	id := s.CreateNow(&Transform{Pos: mgl64.Vec2{1, 2}}, &Health{HP: 3})

	tr, ok := ecs.Get[*Transform](s, id)
	require.True(t, ok)
	assert.Equal(t, 2.0, tr.Pos.Y())
	_, ok = ecs.Get[*Velocity](s, id)
	assert.False(t, ok)
}

func TestRectOverlap(t *testing.T) {
	a := RectAt(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 10})
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlapping", RectAt(mgl64.Vec2{5, 5}, mgl64.Vec2{10, 10}), true},
		{"contained", RectAt(mgl64.Vec2{2, 2}, mgl64.Vec2{1, 1}), true},
		{"touching edge", RectAt(mgl64.Vec2{10, 0}, mgl64.Vec2{5, 5}), false},
		{"far", RectAt(mgl64.Vec2{100, 100}, mgl64.Vec2{10, 10}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a))
		})
	}
}

func TestRectEmpty(t *testing.T) {
	assert.True(t, RectAt(mgl64.Vec2{}, mgl64.Vec2{0, 5}).Empty())
	assert.False(t, RectAt(mgl64.Vec2{}, mgl64.Vec2{1, 1}).Empty())
	assert.Equal(t, mgl64.Vec2{5, 5}, RectAt(mgl64.Vec2{}, mgl64.Vec2{10, 10}).Center())
}

func TestInteracts(t *testing.T) {
	shot := &Collider{Layer: LayerPlayerShot, Mask: LayerEnemy}
	enemy := &Collider{Layer: LayerEnemy, Mask: LayerPlayer}
	player := &Collider{Layer: LayerPlayer, Mask: LayerEnemy}
	assert.True(t, Interacts(shot, enemy))
	assert.True(t, Interacts(enemy, shot))
	assert.False(t, Interacts(shot, player))
}

func TestRectValid(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name string
		box  Rect
		want bool
	}{
		{"unit", RectAt(mgl64.Vec2{}, mgl64.Vec2{1, 1}), true},
		{"flat", RectAt(mgl64.Vec2{}, mgl64.Vec2{1, 0}), false},
		{"nan position", RectAt(mgl64.Vec2{nan, 0}, mgl64.Vec2{10, 10}), false},
		{"nan size", RectAt(mgl64.Vec2{}, mgl64.Vec2{nan, 1}), false},
		{"inf position", RectAt(mgl64.Vec2{inf, 0}, mgl64.Vec2{10, 10}), false},
		{"negative inf position", RectAt(mgl64.Vec2{0, -inf}, mgl64.Vec2{10, 10}), false},
		{"inf size", RectAt(mgl64.Vec2{}, mgl64.Vec2{inf, 1}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.box.Valid())
		})
	}
	assert.True(t, RectAt(mgl64.Vec2{math.NaN(), 0}, mgl64.Vec2{10, 10}).Empty())
}
