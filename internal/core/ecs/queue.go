package ecs

// MutationQueue is a deferred-apply list. Iteration always walks the current
// view; additions and removals are staged and only become visible when Apply
// runs. Apply must not be called while anything iterates Items.
//
// The three collections are disjoint: an item is either current, waiting to
// be added, or current and pending deletion.
type MutationQueue[T comparable] struct {
	current []T
	members map[T]struct{}

	waiting    []T
	waitingSet map[T]struct{}

	pending    []T
	pendingSet map[T]struct{}
}

func NewMutationQueue[T comparable](capacity int) *MutationQueue[T] {
	return &MutationQueue[T]{
		current:    make([]T, 0, capacity),
		members:    make(map[T]struct{}, capacity),
		waitingSet: make(map[T]struct{}),
		pendingSet: make(map[T]struct{}),
	}
}

// Add stages item for addition. Returns false if it is already current or waiting.
func (q *MutationQueue[T]) Add(item T) bool {
	if _, ok := q.members[item]; ok {
		return false
	}
	if _, ok := q.waitingSet[item]; ok {
		return false
	}
	q.waiting = append(q.waiting, item)
	q.waitingSet[item] = struct{}{}
	return true
}

// Remove stages item for deletion. A current item stays visible until Apply.
// A waiting item is dropped immediately and never becomes visible.
// Returns false when nothing was staged.
func (q *MutationQueue[T]) Remove(item T) bool {
	if _, ok := q.waitingSet[item]; ok {
		delete(q.waitingSet, item)
		for i, w := range q.waiting {
			if w == item {
				q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
				break
			}
		}
		return true
	}
	if _, ok := q.members[item]; !ok {
		return false
	}
	if _, ok := q.pendingSet[item]; ok {
		return false
	}
	q.pending = append(q.pending, item)
	q.pendingSet[item] = struct{}{}
	return true
}

// Items returns the current view. The slice must not be modified.
func (q *MutationQueue[T]) Items() []T { return q.current }

func (q *MutationQueue[T]) Len() int { return len(q.current) }

// Contains reports whether item is in the current view (pending deletion included).
func (q *MutationQueue[T]) Contains(item T) bool {
	_, ok := q.members[item]
	return ok
}

// Waiting reports whether item is staged for addition.
func (q *MutationQueue[T]) Waiting(item T) bool {
	_, ok := q.waitingSet[item]
	return ok
}

// Pending reports whether item is current and staged for deletion.
func (q *MutationQueue[T]) Pending(item T) bool {
	_, ok := q.pendingSet[item]
	return ok
}

// Dirty reports whether Apply would change the current view.
func (q *MutationQueue[T]) Dirty() bool {
	return len(q.waiting) > 0 || len(q.pending) > 0
}

// Apply merges waiting items into the current view (in staging order) and
// strips pending deletions, then clears both side lists. It returns what was
// added and removed; both are nil when nothing was staged.
func (q *MutationQueue[T]) Apply() (added, removed []T) {
	if !q.Dirty() {
		return nil, nil
	}

	if len(q.pending) > 0 {
		removed = q.pending
		// fresh backing array: slices handed out by Items keep their contents
		kept := make([]T, 0, len(q.current)-len(q.pending)+len(q.waiting))
		for _, item := range q.current {
			if _, gone := q.pendingSet[item]; gone {
				delete(q.members, item)
				continue
			}
			kept = append(kept, item)
		}
		q.current = kept
		q.pending = nil
		clear(q.pendingSet)
	}

	if len(q.waiting) > 0 {
		added = q.waiting
		for _, item := range q.waiting {
			q.current = append(q.current, item)
			q.members[item] = struct{}{}
		}
		q.waiting = nil
		clear(q.waitingSet)
	}

	return added, removed
}

// Clear drops every item, staged or current.
func (q *MutationQueue[T]) Clear() {
	q.current = q.current[:0:0]
	q.waiting = nil
	q.pending = nil
	clear(q.members)
	clear(q.waitingSet)
	clear(q.pendingSet)
}
