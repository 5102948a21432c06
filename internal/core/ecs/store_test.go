package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	kindPos Kind = iota
	kindVel
	kindTag
)

type pos struct{ X, Y float64 }

func (*pos) Kind() Kind { return kindPos }

type vel struct{ DX, DY float64 }

func (*vel) Kind() Kind { return kindVel }

type tag struct{ Name string }

func (*tag) Kind() Kind { return kindTag }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.RegisterKind(kindPos, "pos"))
	require.NoError(t, s.RegisterKind(kindVel, "vel"))
	require.NoError(t, s.RegisterKind(kindTag, "tag"))
	return s
}

func TestRegisterKindRejectsDuplicates(t *testing.T) {
	s := newTestStore(t)
	require.ErrorIs(t, s.RegisterKind(kindPos, "again"), ErrDuplicateKind)
	require.ErrorIs(t, s.RegisterKind(MaxKinds, "huge"), ErrKindRange)
	assert.Equal(t, "vel", s.KindName(kindVel))
}

func TestCreateIsDeferredUntilApply(t *testing.T) {
	s := newTestStore(t)
	id := s.Create(&pos{X: 1})

	assert.False(t, s.Contains(id))
	assert.True(t, s.Waiting(id))
	assert.Empty(t, s.Query(kindPos))

	require.True(t, s.Apply())
	assert.True(t, s.Contains(id))
	assert.False(t, s.Waiting(id))
	assert.Equal(t, []EntityID{id}, s.Query(kindPos))
}

func TestCreateNowIsVisibleImmediately(t *testing.T) {
	s := newTestStore(t)
	id := s.CreateNow(&pos{}, &vel{})
	assert.Equal(t, []EntityID{id}, s.Query(kindPos, kindVel))
}

func TestQueryUnaffectedUntilApply(t *testing.T) {
	s := newTestStore(t)
	a := s.CreateNow(&pos{}, &vel{})
	b := s.CreateNow(&pos{})
	before := s.Query(kindPos)
	gen := s.Generation()

	c := s.Create(&pos{})
	s.Remove(a)
	s.Attach(b, &vel{})
	s.Detach(a, kindVel)

	assert.Equal(t, before, s.Query(kindPos))
	assert.Equal(t, []EntityID{a}, s.Query(kindPos, kindVel))
	assert.Equal(t, gen, s.Generation())

	require.True(t, s.Apply())
	assert.Equal(t, []EntityID{b, c}, s.Query(kindPos))
	assert.Equal(t, []EntityID{b}, s.Query(kindPos, kindVel))

	after := s.Query(kindPos)
	afterGen := s.Generation()
	assert.False(t, s.Apply())
	assert.Equal(t, after, s.Query(kindPos))
	assert.Equal(t, afterGen, s.Generation())
}

func TestSignatureCorrectness(t *testing.T) {
	s := newTestStore(t)
	bundles := [][]Component{
		{&pos{}},
		{&vel{}},
		{&pos{}, &vel{}},
		{&pos{}, &vel{}, &tag{}},
		{&tag{}},
		{},
	}
	ids := make([]EntityID, len(bundles))
	for i, b := range bundles {
		ids[i] = s.Create(b...)
	}
	s.Apply()

	sigs := [][]Kind{{kindPos}, {kindVel}, {kindPos, kindVel}, {kindTag, kindPos}, {kindPos, kindVel, kindTag}}
	for _, sig := range sigs {
		got := s.Query(sig...)
		for i, id := range ids {
			carries := true
			for _, k := range sig {
				carries = carries && s.Has(id, k)
			}
			assert.Equal(t, carries, contains(got, id), "entity %d signature %v", i, sig)
		}
	}
}

func TestQueryAny(t *testing.T) {
	s := newTestStore(t)
	a := s.Create(&pos{})
	b := s.Create(&tag{})
	s.Create(&vel{})
	s.Apply()

	assert.Equal(t, []EntityID{a, b}, s.QueryAny(kindPos, kindTag))
	assert.Empty(t, s.QueryAny())
}

func TestDeferredDeletion(t *testing.T) {
	s := newTestStore(t)
	id := s.CreateNow(&pos{})

	s.Remove(id)
	assert.True(t, s.Contains(id))
	assert.True(t, s.Pending(id))
	assert.Equal(t, []EntityID{id}, s.Query(kindPos))

	s.Apply()
	assert.False(t, s.Contains(id))
	assert.Empty(t, s.Query(kindPos))
	assert.Empty(t, s.QueryAny(kindPos))

	// second remove of a dead entity is a no-op
	assert.NotPanics(t, func() { s.Remove(id) })
	assert.False(t, s.Apply())
}

func TestCreateThenRemoveBeforeApplyNeverAppears(t *testing.T) {
	s := newTestStore(t)
	gen := s.Generation()
	id := s.Create(&pos{})
	s.Remove(id)
	assert.False(t, s.Waiting(id))

	s.Apply()
	assert.False(t, s.Contains(id))
	assert.Empty(t, s.Query(kindPos))
	assert.Equal(t, gen, s.Generation())
}

func TestAttachReplacesSameKind(t *testing.T) {
	s := newTestStore(t)
	id := s.CreateNow(&pos{X: 1})
	s.Attach(id, &pos{X: 2})
	s.Apply()

	p, ok := Get[*pos](s, id)
	require.True(t, ok)
	assert.Equal(t, 2.0, p.X)
	assert.Equal(t, 1, s.Count(kindPos))
}

func TestAttachToRemovedEntityIsDropped(t *testing.T) {
	s := newTestStore(t)
	id := s.CreateNow(&pos{})
	s.Remove(id)
	s.Attach(id, &vel{})
	s.Apply()

	assert.Empty(t, s.Query(kindVel))
	assert.Zero(t, s.Count(kindVel))
}

func TestStaleIDAfterRecycle(t *testing.T) {
	s := newTestStore(t)
	old := s.CreateNow(&pos{})
	s.Remove(old)
	s.Apply()

	fresh := s.CreateNow(&pos{})
	assert.Equal(t, old.Index(), fresh.Index())
	assert.NotEqual(t, old, fresh)
	assert.False(t, s.Contains(old))
	_, ok := Get[*pos](s, old)
	assert.False(t, ok)
}

func TestUnknownEntityPanics(t *testing.T) {
	s := newTestStore(t)
	assert.Panics(t, func() { s.Remove(0) })
	assert.Panics(t, func() { s.Attach(NewEntityID(7, 1), &pos{}) })
	assert.Panics(t, func() { s.Query(Kind(9)) })
	assert.Panics(t, func() { s.Create(nil) })
}

func TestRequireReportsMissingComponent(t *testing.T) {
	s := newTestStore(t)
	id := s.CreateNow(&pos{})
	_, err := Require[*vel](s, id)
	require.ErrorIs(t, err, ErrMissingComponent)
	assert.Contains(t, err.Error(), "vel")
}

func TestDetachLandsAtApply(t *testing.T) {
	s := newTestStore(t)
	id := s.CreateNow(&pos{X: 1}, &vel{DX: 2})
	s.Detach(id, kindVel)
	assert.True(t, s.Has(id, kindVel))

	gen := s.Generation()
	require.True(t, s.Apply())
	assert.False(t, s.Has(id, kindVel))
	assert.Greater(t, s.Generation(), gen)
	assert.Empty(t, s.Query(kindPos, kindVel))
	assert.Zero(t, s.Count(kindVel))
}

func TestEditsLandInIssueOrder(t *testing.T) {
	s := newTestStore(t)
	id := s.CreateNow(&pos{X: 1})

	s.Detach(id, kindPos)
	s.Attach(id, &pos{X: 2})
	require.True(t, s.Apply())
	p, ok := Get[*pos](s, id)
	require.True(t, ok)
	assert.Equal(t, 2.0, p.X)

	s.Attach(id, &pos{X: 3})
	s.Detach(id, kindPos)
	s.Apply()
	assert.False(t, s.Has(id, kindPos))
	assert.Empty(t, s.Query(kindPos))
}

func TestEditsOnUnappliedEntityFollowCreate(t *testing.T) {
	s := newTestStore(t)
	id := s.Create(&pos{X: 1}, &vel{DX: 1})
	s.Detach(id, kindVel)
	s.Attach(id, &tag{Name: "late"})
	s.Apply()

	assert.Equal(t, MaskOf(kindPos, kindTag), s.Mask(id))
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	id := s.CreateNow(&pos{})
	s.Create(&pos{})
	s.Clear()

	assert.Zero(t, s.Len())
	assert.False(t, s.Contains(id))
	assert.False(t, s.Apply())
	assert.NoError(t, s.RegisterKind(3, "late"))
}

func contains(ids []EntityID, id EntityID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
