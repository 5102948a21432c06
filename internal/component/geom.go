package component

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rect is an axis-aligned box, half-open: it covers [Min, Max).
type Rect struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// RectAt builds the box with top-left corner at pos.
func RectAt(pos, size mgl64.Vec2) Rect {
	return Rect{Min: pos, Max: pos.Add(size)}
}

func (r Rect) Width() float64  { return r.Max[0] - r.Min[0] }
func (r Rect) Height() float64 { return r.Max[1] - r.Min[1] }

// Empty reports a box with no area; such boxes never collide. A NaN extent
// counts as empty.
func (r Rect) Empty() bool { return !(r.Width() > 0) || !(r.Height() > 0) }

// Finite reports whether every coordinate is a real number.
func (r Rect) Finite() bool {
	for _, v := range [...]float64{r.Min[0], r.Min[1], r.Max[0], r.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Valid reports a finite box with positive area.
func (r Rect) Valid() bool { return r.Finite() && !r.Empty() }

// Overlaps reports whether the interiors intersect. Boxes sharing only an
// edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min[0] < o.Max[0] && o.Min[0] < r.Max[0] &&
		r.Min[1] < o.Max[1] && o.Min[1] < r.Max[1]
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p mgl64.Vec2) bool {
	return p[0] >= r.Min[0] && p[0] < r.Max[0] && p[1] >= r.Min[1] && p[1] < r.Max[1]
}

func (r Rect) Center() mgl64.Vec2 {
	return r.Min.Add(r.Max).Mul(0.5)
}

// Cell is a spatial hash grid coordinate.
type Cell struct {
	X, Y int32
}
