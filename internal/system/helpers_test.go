package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/event"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"github.com/skirmish/skirmish/internal/data"
	"github.com/skirmish/skirmish/internal/input"
	"github.com/skirmish/skirmish/internal/scripting"
	"github.com/stretchr/testify/require"
)

const step = 10 * time.Millisecond

type fixture struct {
	store *ecs.Store
	bus   *event.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := ecs.NewStore()
	require.NoError(t, component.Register(store))
	return &fixture{store: store, bus: event.NewBus()}
}

// tick applies staged mutations, then runs systems in the order given.
func (f *fixture) tick(t *testing.T, systems ...coresys.System) {
	t.Helper()
	f.store.Apply()
	for _, s := range systems {
		require.NoError(t, s.Update(step))
	}
}

// collect subscribes to events of type T; flush delivers them.
func collect[T any](bus *event.Bus) *[]T {
	var got []T
	event.Subscribe(bus, func(e T) { got = append(got, e) })
	return &got
}

func flush(bus *event.Bus) {
	bus.SwapBuffers()
	bus.DispatchAll()
}

func templates(t *testing.T) *data.Templates {
	t.Helper()
	tpls, err := data.LoadTemplates("")
	require.NoError(t, err)
	return tpls
}

// flatFormulas deals the dealer's base amount and fixed wave sizes.
type flatFormulas struct{ wave int }

func (flatFormulas) CalcContactDamage(ctx scripting.ContactContext) int { return ctx.Amount }
func (f flatFormulas) WaveSize(int) int                                 { return f.wave }

// keys is an input.Actions stub.
type keys map[input.Action]bool

func (k keys) Active(a input.Action) bool { return k[a] }

func xform(x, y, w, h float64) *component.Transform {
	return &component.Transform{Pos: mgl64.Vec2{x, y}, Size: mgl64.Vec2{w, h}}
}

func get[T ecs.Component](t *testing.T, s *ecs.Store, id ecs.EntityID) T {
	t.Helper()
	c, err := ecs.Require[T](s, id)
	require.NoError(t, err)
	return c
}
