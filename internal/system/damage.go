package system

import (
	"time"

	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/event"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"github.com/skirmish/skirmish/internal/scripting"
	"go.uber.org/zap"
)

// Formulas are the scripted gameplay numbers. *scripting.Engine implements it.
type Formulas interface {
	CalcContactDamage(ctx scripting.ContactContext) int
	WaveSize(wave int) int
}

// DamageSystem turns this tick's contacts into hit point loss. An entity
// with Health takes damage from every Damage-carrying entity in its Hits,
// unless it is still within its grace period. At zero HP it is removed and
// its killer credited. Phase 4 (PostUpdate), after collision.
type DamageSystem struct {
	*coresys.PerEntity
	store    *ecs.Store
	bus      *event.Bus
	formulas Formulas
}

func NewDamageSystem(store *ecs.Store, bus *event.Bus, formulas Formulas, log *zap.Logger) *DamageSystem {
	s := &DamageSystem{store: store, bus: bus, formulas: formulas}
	s.PerEntity = coresys.NewPerEntity("damage", coresys.PhasePostUpdate, store,
		coresys.All(component.KindHealth, component.KindCollider), s, log)
	return s
}

func (s *DamageSystem) Process(id ecs.EntityID, dt time.Duration) error {
	h, err := ecs.Require[*component.Health](s.store, id)
	if err != nil {
		return err
	}
	col, err := ecs.Require[*component.Collider](s.store, id)
	if err != nil {
		return err
	}
	if h.GraceLeft > 0 {
		h.GraceLeft = max(h.GraceLeft-dt, 0)
	}
	if s.store.Pending(id) {
		return nil
	}
	player := s.store.Has(id, component.KindPlayer)

	for _, other := range col.Hits {
		if h.GraceLeft > 0 {
			return nil
		}
		d, ok := ecs.Get[*component.Damage](s.store, other)
		if !ok || d.Owner == id || (d.Expend && d.Spent) {
			continue
		}
		amount := s.formulas.CalcContactDamage(scripting.ContactContext{
			Amount:       d.Amount,
			Expend:       d.Expend,
			TargetHP:     h.HP,
			TargetMax:    h.Max,
			TargetPlayer: player,
		})
		if d.Expend {
			d.Spent = true
		}
		h.HP -= amount
		h.GraceLeft = h.Grace

		by := other
		if !d.Owner.IsZero() {
			by = d.Owner
		}
		event.Emit(s.bus, event.EntityDamaged{Entity: id, By: by, Amount: amount, HP: max(h.HP, 0), Player: player})
		if h.HP <= 0 {
			s.kill(id, by, player)
			return nil
		}
	}
	return nil
}

func (s *DamageSystem) kill(id, by ecs.EntityID, player bool) {
	s.store.Remove(id)
	bounty := 0
	if e, ok := ecs.Get[*component.Enemy](s.store, id); ok {
		bounty = e.Bounty
	}
	if p, ok := ecs.Get[*component.Player](s.store, by); ok {
		p.Score += bounty
		p.Kills++
	}
	event.Emit(s.bus, event.EntityDied{Entity: id, Cause: event.CauseKilled, By: by, Bounty: bounty, Player: player})
}
