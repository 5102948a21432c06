package component

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/core/ecs"
)

// Sprite is what the renderer draws. Glyph is the image handle.
type Sprite struct {
	Glyph rune
	Color string
	Z     int
}

func (*Sprite) Kind() ecs.Kind { return KindSprite }

// Target is a non-owning reference to the entity being chased.
// Holders check Store.Contains before use.
type Target struct {
	Entity ecs.EntityID
	Speed  float64
}

func (*Target) Kind() ecs.Kind { return KindTarget }

// Children lists owned entities, removed together with their parent.
type Children struct {
	IDs []ecs.EntityID
}

func (*Children) Kind() ecs.Kind { return KindChildren }

type Lifetime struct {
	Left time.Duration
}

func (*Lifetime) Kind() ecs.Kind { return KindLifetime }

type Player struct {
	Speed        float64
	Facing       mgl64.Vec2
	Cooldown     time.Duration
	CooldownLeft time.Duration
	Bullet       string // template fired
	BulletSpeed  float64
	Score        int
	Kills        int
}

func (*Player) Kind() ecs.Kind { return KindPlayer }

type Enemy struct {
	Bounty int
	Wave   int
}

func (*Enemy) Kind() ecs.Kind { return KindEnemy }
