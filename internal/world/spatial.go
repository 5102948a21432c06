package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
)

var ErrCellSize = errors.New("world: invalid cell size")

// SpatialHash buckets entities into a uniform grid, rebuilt every tick.
// With a cell size no smaller than the largest entity, every entity lands in
// at most 2×2 cells. Larger entities still work, only more cells get touched.
// Accessed only from the game loop goroutine; no locks.
type SpatialHash struct {
	cellSize float64
	cells    map[component.Cell][]ecs.EntityID
	order    []component.Cell // first-touch order, for deterministic iteration
}

func NewSpatialHash(cellSize float64) (*SpatialHash, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: %v", ErrCellSize, cellSize)
	}
	return &SpatialHash{
		cellSize: cellSize,
		cells:    make(map[component.Cell][]ecs.EntityID, 256),
		order:    make([]component.Cell, 0, 256),
	}, nil
}

func (g *SpatialHash) CellSize() float64 { return g.cellSize }

// Clear empties every bucket, keeping allocations for the next tick.
func (g *SpatialHash) Clear() {
	for k, ids := range g.cells {
		g.cells[k] = ids[:0]
	}
	g.order = g.order[:0]
}

// Span returns the inclusive cell range covered by box. Max edges are open,
// so a box ending exactly on a cell boundary does not touch the next cell.
// Coordinates are clamped, so Span is bounded for any input; callers skip
// boxes that are not Valid.
func (g *SpatialHash) Span(box component.Rect) (lo, hi component.Cell) {
	lo = component.Cell{X: g.floor(box.Min[0]), Y: g.floor(box.Min[1])}
	hi = component.Cell{X: g.ceil(box.Max[0]) - 1, Y: g.ceil(box.Max[1]) - 1}
	if hi.X < lo.X {
		hi.X = lo.X
	}
	if hi.Y < lo.Y {
		hi.Y = lo.Y
	}
	return lo, hi
}

func (g *SpatialHash) floor(v float64) int32 { return toCell(math.Floor(v / g.cellSize)) }
func (g *SpatialHash) ceil(v float64) int32  { return toCell(math.Ceil(v / g.cellSize)) }

// cellLimit keeps cell coordinates far enough from the int32 edges that the
// span loops cannot overflow.
const cellLimit = 1 << 30

// toCell converts a cell coordinate to int32, clamping it into
// [-cellLimit, cellLimit]. NaN maps to 0.
func toCell(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f < -cellLimit:
		return -cellLimit
	case f > cellLimit:
		return cellLimit
	}
	return int32(f)
}

// Insert places id into every cell box overlaps and appends those cells to
// dst, which is returned.
func (g *SpatialHash) Insert(id ecs.EntityID, box component.Rect, dst []component.Cell) []component.Cell {
	lo, hi := g.Span(box)
	for cy := lo.Y; cy <= hi.Y; cy++ {
		for cx := lo.X; cx <= hi.X; cx++ {
			c := component.Cell{X: cx, Y: cy}
			ids := g.cells[c]
			if len(ids) == 0 {
				g.order = append(g.order, c)
			}
			g.cells[c] = append(ids, id)
			dst = append(dst, c)
		}
	}
	return dst
}

// Bucket returns the entities in one cell. The slice is reused next tick.
func (g *SpatialHash) Bucket(c component.Cell) []ecs.EntityID {
	return g.cells[c]
}

// EachBucket visits every non-empty bucket in first-touch order.
func (g *SpatialHash) EachBucket(fn func(c component.Cell, ids []ecs.EntityID)) {
	for _, c := range g.order {
		fn(c, g.cells[c])
	}
}

// Occupied returns the number of non-empty buckets.
func (g *SpatialHash) Occupied() int { return len(g.order) }

// Nearby returns the entities in the cells overlapped by box, deduplicated.
// Caller does fine-grained filtering.
func (g *SpatialHash) Nearby(box component.Rect) []ecs.EntityID {
	lo, hi := g.Span(box)
	var result []ecs.EntityID
	seen := make(map[ecs.EntityID]struct{})
	for cy := lo.Y; cy <= hi.Y; cy++ {
		for cx := lo.X; cx <= hi.X; cx++ {
			for _, id := range g.cells[component.Cell{X: cx, Y: cy}] {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				result = append(result, id)
			}
		}
	}
	return result
}
