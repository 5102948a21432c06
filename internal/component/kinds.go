package component

import (
	"fmt"

	"github.com/skirmish/skirmish/internal/core/ecs"
)

const (
	KindTransform ecs.Kind = iota
	KindVelocity
	KindHistory
	KindCollider
	KindHealth
	KindDamage
	KindSprite
	KindTarget
	KindChildren
	KindLifetime
	KindPlayer
	KindEnemy
)

var kindNames = []string{
	KindTransform: "transform",
	KindVelocity:  "velocity",
	KindHistory:   "history",
	KindCollider:  "collider",
	KindHealth:    "health",
	KindDamage:    "damage",
	KindSprite:    "sprite",
	KindTarget:    "target",
	KindChildren:  "children",
	KindLifetime:  "lifetime",
	KindPlayer:    "player",
	KindEnemy:     "enemy",
}

// Register declares every component kind with the store.
func Register(store *ecs.Store) error {
	for k, name := range kindNames {
		if err := store.RegisterKind(ecs.Kind(k), name); err != nil {
			return fmt.Errorf("register components: %w", err)
		}
	}
	return nil
}

// KindByName resolves a registered kind name.
func KindByName(name string) (ecs.Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return ecs.Kind(k), true
		}
	}
	return 0, false
}
