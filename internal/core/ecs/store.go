package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateKind = errors.New("ecs: kind already registered")
	ErrKindRange     = errors.New("ecs: kind out of range")
)

// editOp is one staged component edit. A nil component means detach.
type editOp struct {
	id        EntityID
	kind      Kind
	component Component
}

// Store is the authoritative registry of entities and their components.
// Every structural edit (create, remove, attach, detach) is staged and only
// becomes visible at Apply. Queries reflect applied state only.
//
// Apply bumps Generation whenever it changes structure; cached queries compare
// generations instead of subscribing to change notifications.
// Accessed only from the simulation goroutine; no locks.
type Store struct {
	pool     *EntityPool
	entities *MutationQueue[EntityID]
	masks    []Mask // entity index -> applied kinds
	columns  [MaxKinds]*column
	kinds    Mask

	staged map[EntityID][]Component // components of waiting entities
	edits  []editOp                 // attaches and detaches, in issue order

	generation uint64
}

func NewStore() *Store {
	return &Store{
		pool:     NewEntityPool(),
		entities: NewMutationQueue[EntityID](1024),
		masks:    make([]Mask, 0, 1024),
		staged:   make(map[EntityID][]Component, 64),
	}
}

// RegisterKind declares a component kind. Every kind must be registered
// before a component of that kind is created or queried.
func (s *Store) RegisterKind(kind Kind, name string) error {
	if kind >= MaxKinds {
		return fmt.Errorf("%w: %d (%s)", ErrKindRange, kind, name)
	}
	if s.kinds.Has(kind) {
		return fmt.Errorf("%w: %d (%s, already %s)", ErrDuplicateKind, kind, name, s.columns[kind].name)
	}
	s.columns[kind] = newColumn(kind, name)
	s.kinds = s.kinds.With(kind)
	return nil
}

// KindName returns the registered name of kind, or its number.
func (s *Store) KindName(kind Kind) string {
	if kind < MaxKinds && s.kinds.Has(kind) {
		return s.columns[kind].name
	}
	return fmt.Sprintf("kind(%d)", kind)
}

func (s *Store) mustKind(kind Kind) *column {
	if kind >= MaxKinds || !s.kinds.Has(kind) {
		panic(fmt.Sprintf("ecs: unregistered component kind %d", kind))
	}
	return s.columns[kind]
}

func (s *Store) mustKnown(id EntityID) {
	if !s.pool.Known(id) {
		panic(fmt.Sprintf("ecs: unknown entity %s", id))
	}
}

func (s *Store) mustComponent(c Component) {
	if c == nil {
		panic("ecs: nil component")
	}
	s.mustKind(c.Kind())
}

// Create allocates an entity with the given components. It becomes visible to
// queries at the next Apply.
func (s *Store) Create(components ...Component) EntityID {
	for _, c := range components {
		s.mustComponent(c)
	}
	id := s.pool.Create()
	if len(components) > 0 {
		s.staged[id] = append([]Component(nil), components...)
	}
	s.entities.Add(id)
	return id
}

// CreateNow creates an entity and applies every staged mutation at once.
// Only for world setup, never from inside a tick.
func (s *Store) CreateNow(components ...Component) EntityID {
	id := s.Create(components...)
	s.Apply()
	return id
}

// Remove stages id for deletion. It stays visible until the next Apply.
// Removing a dead or already pending entity is a no-op; removing an entity
// that was never applied cancels its creation.
func (s *Store) Remove(id EntityID) {
	s.mustKnown(id)
	if !s.pool.Alive(id) {
		return
	}
	if s.entities.Waiting(id) {
		s.entities.Remove(id)
		delete(s.staged, id)
		s.pool.Destroy(id)
		return
	}
	s.entities.Remove(id)
}

// Attach stages c to be added to id, replacing any component of the same kind.
func (s *Store) Attach(id EntityID, c Component) {
	s.mustKnown(id)
	s.mustComponent(c)
	if !s.pool.Alive(id) {
		return
	}
	s.edits = append(s.edits, editOp{id: id, kind: c.Kind(), component: c})
}

// Detach stages removal of kind from id.
func (s *Store) Detach(id EntityID, kind Kind) {
	s.mustKnown(id)
	s.mustKind(kind)
	if !s.pool.Alive(id) {
		return
	}
	s.edits = append(s.edits, editOp{id: id, kind: kind})
}

// Dirty reports whether Apply has anything to do.
func (s *Store) Dirty() bool {
	return s.entities.Dirty() || len(s.edits) > 0
}

// Apply is the single synchronization point of a tick: waiting entities
// become visible with their components, pending deletions are purged, and
// staged attaches and detaches land in the order they were issued. Calling
// it twice in a row is the same as calling it once. Returns whether anything
// changed.
func (s *Store) Apply() bool {
	if !s.Dirty() {
		return false
	}
	changed := false

	added, removed := s.entities.Apply()
	for _, id := range removed {
		s.purge(id)
		changed = true
	}
	for _, id := range added {
		s.growMasks(id)
		for _, c := range s.staged[id] {
			s.put(id, c)
		}
		delete(s.staged, id)
		changed = true
	}

	for _, op := range s.edits {
		if !s.entities.Contains(op.id) {
			continue // removed before it landed
		}
		if op.component != nil {
			s.put(op.id, op.component)
			changed = true
			continue
		}
		idx := op.id.Index()
		if !s.masks[idx].Has(op.kind) {
			continue
		}
		s.columns[op.kind].remove(op.id)
		s.masks[idx] = s.masks[idx].Without(op.kind)
		changed = true
	}
	clear(s.edits)
	s.edits = s.edits[:0]

	if changed {
		s.generation++
	}
	return changed
}

func (s *Store) put(id EntityID, c Component) {
	k := c.Kind()
	s.columns[k].set(id, c)
	s.masks[id.Index()] = s.masks[id.Index()].With(k)
}

func (s *Store) purge(id EntityID) {
	idx := id.Index()
	for _, k := range s.masks[idx].Kinds() {
		s.columns[k].remove(id)
	}
	s.masks[idx] = 0
	s.pool.Destroy(id)
}

func (s *Store) growMasks(id EntityID) {
	for len(s.masks) <= int(id.Index()) {
		s.masks = append(s.masks, 0)
	}
	s.masks[id.Index()] = 0
}

// Generation increments on every Apply that changed structure.
func (s *Store) Generation() uint64 { return s.generation }

// Contains reports whether id is applied and not yet purged. Entities pending
// deletion are still contained until the next Apply.
func (s *Store) Contains(id EntityID) bool {
	return !id.IsZero() && s.entities.Contains(id)
}

// Pending reports whether id is visible but staged for deletion.
func (s *Store) Pending(id EntityID) bool { return s.entities.Pending(id) }

// Waiting reports whether id was created but is not applied yet.
func (s *Store) Waiting(id EntityID) bool { return s.entities.Waiting(id) }

// Len returns the number of applied entities.
func (s *Store) Len() int { return s.entities.Len() }

// Count returns the number of applied components of kind.
func (s *Store) Count(kind Kind) int { return s.mustKind(kind).len() }

// Mask returns the applied kinds of id.
func (s *Store) Mask(id EntityID) Mask {
	s.mustKnown(id)
	if !s.Contains(id) {
		return 0
	}
	return s.masks[id.Index()]
}

// Has reports whether id currently carries kind.
func (s *Store) Has(id EntityID, kind Kind) bool {
	return s.Mask(id).Has(kind)
}

// Component returns the applied component of kind on id.
func (s *Store) Component(id EntityID, kind Kind) (Component, bool) {
	s.mustKnown(id)
	col := s.mustKind(kind)
	if !s.Contains(id) {
		return nil, false
	}
	return col.get(id)
}

// Clear drops every entity and staged mutation. Registered kinds survive.
// Used at world shutdown; ids handed out earlier become stale.
func (s *Store) Clear() {
	s.entities.Clear()
	for _, k := range s.kinds.Kinds() {
		s.columns[k].reset()
	}
	s.masks = s.masks[:0]
	clear(s.staged)
	clear(s.edits)
	s.edits = s.edits[:0]
	s.pool.Reset()
	s.generation++
}
