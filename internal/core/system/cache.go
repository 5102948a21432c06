package system

import "github.com/skirmish/skirmish/internal/core/ecs"

// CacheState is Stale after any structural change to the store and Fresh
// once the cached query has been recomputed.
type CacheState int

const (
	Stale CacheState = iota
	Fresh
)

func (s CacheState) String() string {
	if s == Fresh {
		return "fresh"
	}
	return "stale"
}

// Signature is the set of kinds a system needs. With Any set, an entity
// matches when it carries at least one of them.
type Signature struct {
	Mask ecs.Mask
	Any  bool
}

func All(kinds ...ecs.Kind) Signature   { return Signature{Mask: ecs.MaskOf(kinds...)} }
func AnyOf(kinds ...ecs.Kind) Signature { return Signature{Mask: ecs.MaskOf(kinds...), Any: true} }

// Cache holds the entity list matching a signature. It compares the store
// generation on access and refreshes lazily, so several structural edits in
// one tick cost one query.
type Cache struct {
	store     *ecs.Store
	sig       Signature
	entities  []ecs.EntityID
	gen       uint64
	fresh     bool
	refreshes uint64
}

func NewCache(store *ecs.Store, sig Signature) Cache {
	return Cache{store: store, sig: sig}
}

func (c *Cache) Store() *ecs.Store    { return c.store }
func (c *Cache) Signature() Signature { return c.sig }
func (c *Cache) Refreshes() uint64    { return c.refreshes }

func (c *Cache) State() CacheState {
	if !c.fresh || c.gen != c.store.Generation() {
		return Stale
	}
	return Fresh
}

// Refresh re-runs the signature query unconditionally.
func (c *Cache) Refresh() {
	if c.sig.Any {
		c.entities = c.store.QueryAnyMask(c.sig.Mask)
	} else {
		c.entities = c.store.QueryMask(c.sig.Mask)
	}
	c.gen = c.store.Generation()
	c.fresh = true
	c.refreshes++
}

// Entities returns the cached list, refreshing it first when stale.
func (c *Cache) Entities() []ecs.EntityID {
	if c.State() == Stale {
		c.Refresh()
	}
	return c.entities
}
