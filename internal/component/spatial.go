package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/core/ecs"
)

// Transform is the position (top-left corner) and size of an entity in world units.
type Transform struct {
	Pos  mgl64.Vec2
	Size mgl64.Vec2
}

func (*Transform) Kind() ecs.Kind { return KindTransform }

// Box returns the world-space bounding box.
func (t *Transform) Box() Rect { return RectAt(t.Pos, t.Size) }

// Velocity in world units per second.
type Velocity struct {
	V        mgl64.Vec2
	MaxSpeed float64 // 0 = unbounded
}

func (*Velocity) Kind() ecs.Kind { return KindVelocity }

// History caches the previous tick's Transform for change detection.
// The snapshot is owned by the History component alone.
type History struct {
	Prev    Transform
	Moved   bool
	Written bool // false until the first snapshot
}

func (*History) Kind() ecs.Kind { return KindHistory }
