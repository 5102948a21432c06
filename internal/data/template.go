package data

import (
	_ "embed"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

var (
	ErrUnknownComponent = errors.New("data: unknown component")
	ErrUnknownTemplate  = errors.New("data: unknown template")
	ErrInvalidTemplate  = errors.New("data: invalid template")
)

// componentDef is the YAML form of one component. build returns a fresh
// component every call so spawned entities never share state.
type componentDef interface {
	build() ecs.Component
}

type velocityDef struct {
	MaxSpeed float64 `yaml:"max_speed"`
}

func (s velocityDef) build() ecs.Component {
	return &component.Velocity{MaxSpeed: s.MaxSpeed}
}

type historyDef struct{}

func (historyDef) build() ecs.Component { return &component.History{} }

type colliderDef struct {
	Layer string   `yaml:"layer"`
	Mask  []string `yaml:"mask"`

	layer, mask uint32
}

func (s colliderDef) build() ecs.Component {
	return &component.Collider{Layer: s.layer, Mask: s.mask}
}

type healthDef struct {
	HP      int `yaml:"hp"`
	GraceMS int `yaml:"grace_ms"`
}

func (s healthDef) build() ecs.Component {
	return &component.Health{HP: s.HP, Max: s.HP, Grace: ms(s.GraceMS)}
}

type damageDef struct {
	Amount int  `yaml:"amount"`
	Expend bool `yaml:"expend"`
}

func (s damageDef) build() ecs.Component {
	return &component.Damage{Amount: s.Amount, Expend: s.Expend}
}

type spriteDef struct {
	Glyph string `yaml:"glyph"`
	Color string `yaml:"color"`
	Z     int    `yaml:"z"`
}

func (s spriteDef) build() ecs.Component {
	r, _ := utf8.DecodeRuneInString(s.Glyph)
	return &component.Sprite{Glyph: r, Color: s.Color, Z: s.Z}
}

type targetDef struct {
	Speed float64 `yaml:"speed"`
}

func (s targetDef) build() ecs.Component { return &component.Target{Speed: s.Speed} }

type childrenDef struct{}

func (childrenDef) build() ecs.Component { return &component.Children{} }

type lifetimeDef struct {
	MS int `yaml:"ms"`
}

func (s lifetimeDef) build() ecs.Component { return &component.Lifetime{Left: ms(s.MS)} }

type playerDef struct {
	Speed       float64 `yaml:"speed"`
	CooldownMS  int     `yaml:"cooldown_ms"`
	Bullet      string  `yaml:"bullet"`
	BulletSpeed float64 `yaml:"bullet_speed"`
}

func (s playerDef) build() ecs.Component {
	return &component.Player{
		Speed:       s.Speed,
		Facing:      mgl64.Vec2{1, 0},
		Cooldown:    ms(s.CooldownMS),
		Bullet:      s.Bullet,
		BulletSpeed: s.BulletSpeed,
	}
}

type enemyDef struct {
	Bounty int `yaml:"bounty"`
}

func (s enemyDef) build() ecs.Component { return &component.Enemy{Bounty: s.Bounty} }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// decodeDef decodes the YAML node of the named component.
func decodeDef(name string, node *yaml.Node) (componentDef, error) {
	var (
		def componentDef
		err  error
	)
	switch name {
	case "velocity":
		var s velocityDef
		err = node.Decode(&s)
		def = s
	case "history":
		def = historyDef{}
	case "collider":
		var s colliderDef
		if err = node.Decode(&s); err == nil {
			err = s.resolve()
		}
		def = s
	case "health":
		var s healthDef
		if err = node.Decode(&s); err == nil && s.HP <= 0 {
			err = fmt.Errorf("%w: health hp %d must be positive", ErrInvalidTemplate, s.HP)
		}
		def = s
	case "damage":
		var s damageDef
		err = node.Decode(&s)
		def = s
	case "sprite":
		var s spriteDef
		if err = node.Decode(&s); err == nil && utf8.RuneCountInString(s.Glyph) != 1 {
			err = fmt.Errorf("%w: sprite glyph %q must be one character", ErrInvalidTemplate, s.Glyph)
		}
		def = s
	case "target":
		var s targetDef
		err = node.Decode(&s)
		def = s
	case "children":
		def = childrenDef{}
	case "lifetime":
		var s lifetimeDef
		if err = node.Decode(&s); err == nil && s.MS <= 0 {
			err = fmt.Errorf("%w: lifetime %dms must be positive", ErrInvalidTemplate, s.MS)
		}
		def = s
	case "player":
		var s playerDef
		err = node.Decode(&s)
		def = s
	case "enemy":
		var s enemyDef
		err = node.Decode(&s)
		def = s
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", name, err)
	}
	return def, nil
}

func (s *colliderDef) resolve() error {
	var ok bool
	if s.layer, ok = component.LayerByName(s.Layer); !ok {
		return fmt.Errorf("%w: collision layer %q", ErrInvalidTemplate, s.Layer)
	}
	for _, name := range s.Mask {
		l, ok := component.LayerByName(name)
		if !ok {
			return fmt.Errorf("%w: collision layer %q", ErrInvalidTemplate, name)
		}
		s.mask |= l
	}
	return nil
}
