package component

import (
	"time"

	"github.com/skirmish/skirmish/internal/core/ecs"
)

// Layer bits used by Collider.
const (
	LayerPlayer uint32 = 1 << iota
	LayerEnemy
	LayerPlayerShot
	LayerEnemyShot
	LayerBlock
)

var layerNames = map[string]uint32{
	"player":      LayerPlayer,
	"enemy":       LayerEnemy,
	"player_shot": LayerPlayerShot,
	"enemy_shot":  LayerEnemyShot,
	"block":       LayerBlock,
}

// LayerByName resolves a collision layer name.
func LayerByName(name string) (uint32, bool) {
	l, ok := layerNames[name]
	return l, ok
}

// Collider takes part in broad-phase collision. Hits and Cells are rebuilt
// by the collision system every tick; Hits is the only channel through which
// other systems learn about contact.
type Collider struct {
	Layer uint32
	Mask  uint32 // layers this collider reacts to
	Hits  []ecs.EntityID
	Cells []Cell
}

func (*Collider) Kind() ecs.Kind { return KindCollider }

// Interacts reports whether a and b should be tested against each other.
func Interacts(a, b *Collider) bool {
	return a.Mask&b.Layer != 0 || b.Mask&a.Layer != 0
}

type Health struct {
	HP        int
	Max       int
	Grace     time.Duration // invulnerability after a hit
	GraceLeft time.Duration
}

func (*Health) Kind() ecs.Kind { return KindHealth }

// Damage is dealt on contact to any entity with Health.
type Damage struct {
	Amount int
	Expend bool         // removed after its first impact
	Owner  ecs.EntityID // shooter, zero for environmental
	Spent  bool
}

func (*Damage) Kind() ecs.Kind { return KindDamage }
