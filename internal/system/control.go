package system

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/event"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"github.com/skirmish/skirmish/internal/data"
	"github.com/skirmish/skirmish/internal/input"
	"go.uber.org/zap"
)

// ControlSystem steers players from the latched input and fires their
// bullet template. Phase 2 (Update).
type ControlSystem struct {
	*coresys.PerEntity
	store     *ecs.Store
	bus       *event.Bus
	actions   input.Actions
	templates *data.Templates
}

func NewControlSystem(store *ecs.Store, bus *event.Bus, actions input.Actions, templates *data.Templates, log *zap.Logger) *ControlSystem {
	s := &ControlSystem{store: store, bus: bus, actions: actions, templates: templates}
	s.PerEntity = coresys.NewPerEntity("control", coresys.PhaseUpdate, store,
		coresys.All(component.KindPlayer, component.KindTransform, component.KindVelocity), s, log)
	return s
}

func (s *ControlSystem) Process(id ecs.EntityID, dt time.Duration) error {
	p, err := ecs.Require[*component.Player](s.store, id)
	if err != nil {
		return err
	}
	tr, err := ecs.Require[*component.Transform](s.store, id)
	if err != nil {
		return err
	}
	v, err := ecs.Require[*component.Velocity](s.store, id)
	if err != nil {
		return err
	}

	var dir mgl64.Vec2
	if s.actions.Active(input.ActionUp) {
		dir[1]--
	}
	if s.actions.Active(input.ActionDown) {
		dir[1]++
	}
	if s.actions.Active(input.ActionLeft) {
		dir[0]--
	}
	if s.actions.Active(input.ActionRight) {
		dir[0]++
	}
	if dir.Len() > 0 {
		dir = dir.Normalize()
		p.Facing = dir
	}
	v.V = dir.Mul(p.Speed)

	if p.CooldownLeft > 0 {
		p.CooldownLeft -= dt
	}
	if !s.actions.Active(input.ActionFire) || p.CooldownLeft > 0 || p.Bullet == "" {
		return nil
	}
	return s.fire(id, p, tr)
}

func (s *ControlSystem) fire(id ecs.EntityID, p *component.Player, tr *component.Transform) error {
	tpl := s.templates.Get(p.Bullet)
	if tpl == nil {
		return fmt.Errorf("%w: %q", errNoBullet, p.Bullet)
	}
	pos := tr.Box().Center().Sub(tpl.Size.Mul(0.5))
	comps := tpl.Build(pos)
	for _, c := range comps {
		switch c := c.(type) {
		case *component.Velocity:
			c.V = p.Facing.Mul(p.BulletSpeed)
		case *component.Damage:
			c.Owner = id
		}
	}
	bullet := s.store.Create(comps...)
	p.CooldownLeft = p.Cooldown

	// bullets belong to their shooter and go with it
	if ch, ok := ecs.Get[*component.Children](s.store, id); ok {
		ch.IDs = append(ch.IDs, bullet)
	}
	event.Emit(s.bus, event.ShotFired{Shooter: id, Bullet: bullet})
	return nil
}
