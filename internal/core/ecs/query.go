package ecs

import (
	"errors"
	"fmt"
)

// ErrMissingComponent is returned by Require when an entity lacks a kind its
// caller's signature promised.
var ErrMissingComponent = errors.New("ecs: missing component")

// Query returns every applied entity carrying all of kinds, in the order the
// entities became visible.
func (s *Store) Query(kinds ...Kind) []EntityID {
	return s.QueryMask(s.maskOf(kinds))
}

// QueryAny returns every applied entity carrying at least one of kinds.
func (s *Store) QueryAny(kinds ...Kind) []EntityID {
	return s.QueryAnyMask(s.maskOf(kinds))
}

func (s *Store) maskOf(kinds []Kind) Mask {
	for _, k := range kinds {
		s.mustKind(k)
	}
	return MaskOf(kinds...)
}

// QueryMask is Query with a prebuilt signature. An empty mask matches every entity.
func (s *Store) QueryMask(m Mask) []EntityID {
	if smallest := s.smallestColumn(m); smallest != nil && smallest.len() == 0 {
		return nil
	}
	var out []EntityID
	for _, id := range s.entities.Items() {
		if s.masks[id.Index()].ContainsAll(m) {
			out = append(out, id)
		}
	}
	return out
}

// QueryAnyMask is QueryAny with a prebuilt signature. An empty mask matches nothing.
func (s *Store) QueryAnyMask(m Mask) []EntityID {
	if m.IsZero() {
		return nil
	}
	var out []EntityID
	for _, id := range s.entities.Items() {
		if s.masks[id.Index()].ContainsAny(m) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) smallestColumn(m Mask) *column {
	var best *column
	for _, k := range m.Kinds() {
		c := s.mustKind(k)
		if best == nil || c.len() < best.len() {
			best = c
		}
	}
	return best
}

// Get returns the applied component of type T on id.
func Get[T Component](s *Store, id EntityID) (T, bool) {
	var zero T
	c, ok := s.Component(id, zero.Kind())
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// Require is Get for callers whose signature guarantees the component. A
// miss means the signature is wrong and is reported as ErrMissingComponent.
func Require[T Component](s *Store, id EntityID) (T, error) {
	t, ok := Get[T](s, id)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s on entity %s", ErrMissingComponent, s.KindName(zero.Kind()), id)
	}
	return t, nil
}
