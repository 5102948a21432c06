package ecs

import "math/bits"

// Kind is the stable type tag of a component. A store holds at most one
// component of each kind per entity.
type Kind uint8

// MaxKinds bounds the number of registered kinds so a Mask fits in one word.
const MaxKinds = 64

// Component is a passive data record. Implementations are pointer types whose
// Kind method must not dereference the receiver, so Get can call it on nil.
type Component interface {
	Kind() Kind
}

// Mask is a set of kinds.
type Mask uint64

func MaskOf(kinds ...Kind) Mask {
	var m Mask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

func (m Mask) Has(k Kind) bool         { return m&(1<<k) != 0 }
func (m Mask) With(k Kind) Mask        { return m | 1<<k }
func (m Mask) Without(k Kind) Mask     { return m &^ (1 << k) }
func (m Mask) ContainsAll(o Mask) bool { return m&o == o }
func (m Mask) ContainsAny(o Mask) bool { return m&o != 0 }
func (m Mask) IsZero() bool            { return m == 0 }
func (m Mask) Len() int                { return bits.OnesCount64(uint64(m)) }

// Kinds lists the kinds in m in ascending order.
func (m Mask) Kinds() []Kind {
	out := make([]Kind, 0, m.Len())
	for v := uint64(m); v != 0; v &= v - 1 {
		out = append(out, Kind(bits.TrailingZeros64(v)))
	}
	return out
}

// column is a sparse set holding every applied component of one kind,
// indexed by entity index. Removal swaps with the last dense slot.
type column struct {
	kind   Kind
	name   string
	sparse []int32 // entity index -> dense slot, -1 when absent
	dense  []EntityID
	values []Component
}

func newColumn(kind Kind, name string) *column {
	return &column{
		kind:   kind,
		name:   name,
		dense:  make([]EntityID, 0, 64),
		values: make([]Component, 0, 64),
	}
}

func (c *column) slot(id EntityID) int32 {
	idx := id.Index()
	if int(idx) >= len(c.sparse) {
		return -1
	}
	s := c.sparse[idx]
	if s < 0 || c.dense[s] != id {
		return -1
	}
	return s
}

func (c *column) has(id EntityID) bool { return c.slot(id) >= 0 }

func (c *column) get(id EntityID) (Component, bool) {
	s := c.slot(id)
	if s < 0 {
		return nil, false
	}
	return c.values[s], true
}

func (c *column) set(id EntityID, v Component) {
	if s := c.slot(id); s >= 0 {
		c.values[s] = v
		return
	}
	idx := int(id.Index())
	for len(c.sparse) <= idx {
		c.sparse = append(c.sparse, -1)
	}
	c.dense = append(c.dense, id)
	c.values = append(c.values, v)
	c.sparse[idx] = int32(len(c.dense) - 1)
}

func (c *column) remove(id EntityID) {
	s := c.slot(id)
	if s < 0 {
		return
	}
	last := int32(len(c.dense) - 1)
	lastID := c.dense[last]

	c.dense[s] = lastID
	c.values[s] = c.values[last]
	c.sparse[lastID.Index()] = s

	c.values[last] = nil
	c.dense = c.dense[:last]
	c.values = c.values[:last]
	c.sparse[id.Index()] = -1
}

func (c *column) len() int { return len(c.dense) }

func (c *column) reset() {
	c.sparse = c.sparse[:0]
	clear(c.values)
	c.dense = c.dense[:0]
	c.values = c.values[:0]
}
