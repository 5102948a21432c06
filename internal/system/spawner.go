package system

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/event"
	coresys "github.com/skirmish/skirmish/internal/core/system"
	"github.com/skirmish/skirmish/internal/data"
	"go.uber.org/zap"
)

// Template names the spawner relies on.
const (
	TemplatePlayer = "player"
	TemplateEnemy  = "enemy"
	TemplateBlock  = "block"
)

// WaveDelay is the pause between clearing a wave and the next one.
const WaveDelay = 2 * time.Second

// SpawnerSystem sends waves of enemies in from the world edges. A new wave
// starts WaveDelay after the last enemy is gone. Positions come from an RNG
// seeded by the session seed and the wave number, so a seed replays the same
// waves. Phase 5 (Spawn).
type SpawnerSystem struct {
	*coresys.Batch
	store     *ecs.Store
	bus       *event.Bus
	templates *data.Templates
	formulas  Formulas
	bounds    component.Rect
	seed      uint64
	log       *zap.Logger

	wave     int
	cooldown time.Duration
}

func NewSpawnerSystem(store *ecs.Store, bus *event.Bus, templates *data.Templates, formulas Formulas,
	bounds component.Rect, seed string, log *zap.Logger) (*SpawnerSystem, error) {
	for _, name := range []string{TemplatePlayer, TemplateEnemy, TemplateBlock} {
		if templates.Get(name) == nil {
			return nil, fmt.Errorf("spawner: %w: %q", data.ErrUnknownTemplate, name)
		}
	}
	s := &SpawnerSystem{
		store:     store,
		bus:       bus,
		templates: templates,
		formulas:  formulas,
		bounds:    bounds,
		seed:      xxhash.Sum64String(seed),
		log:       log.Named("spawner"),
		cooldown:  WaveDelay,
	}
	s.Batch = coresys.NewBatch("spawner", coresys.PhaseSpawn, store,
		coresys.All(component.KindEnemy), s.update)
	return s, nil
}

// Wave returns the number of the current wave, 0 before the first.
func (s *SpawnerSystem) Wave() int { return s.wave }

func (s *SpawnerSystem) rng(stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, stream))
}

// Setup stages the player at the world centre and blocks scattered around
// it. The caller applies the store.
func (s *SpawnerSystem) Setup(blocks int) (ecs.EntityID, error) {
	tpl := s.templates.Get(TemplatePlayer)
	centre := s.bounds.Center().Sub(tpl.Size.Mul(0.5))
	player, err := s.templates.Spawn(s.store, TemplatePlayer, centre)
	if err != nil {
		return 0, err
	}
	keepOut := component.RectAt(centre.Sub(mgl64.Vec2{8, 8}), tpl.Size.Add(mgl64.Vec2{16, 16}))

	block := s.templates.Get(TemplateBlock)
	r := s.rng(0)
	for placed, tries := 0, 0; placed < blocks && tries < blocks*20; tries++ {
		pos := s.randomPoint(r, block.Size)
		if component.RectAt(pos, block.Size).Overlaps(keepOut) {
			continue
		}
		if _, err := s.templates.Spawn(s.store, TemplateBlock, pos); err != nil {
			return 0, err
		}
		placed++
	}
	return player, nil
}

func (s *SpawnerSystem) update(enemies []ecs.EntityID, dt time.Duration) error {
	for _, id := range enemies {
		if !s.store.Pending(id) {
			return nil // wave still running
		}
	}
	if s.cooldown > 0 {
		s.cooldown -= dt
		return nil
	}
	s.cooldown = WaveDelay
	s.wave++
	n := s.formulas.WaveSize(s.wave)

	tpl := s.templates.Get(TemplateEnemy)
	r := s.rng(uint64(s.wave))
	for i := 0; i < n; i++ {
		comps := tpl.Build(s.edgePoint(r, tpl.Size))
		for _, c := range comps {
			if e, ok := c.(*component.Enemy); ok {
				e.Wave = s.wave
				e.Bounty += s.wave - 1
			}
		}
		s.store.Create(comps...)
	}
	s.log.Info("wave started", zap.Int("wave", s.wave), zap.Int("enemies", n))
	event.Emit(s.bus, event.WaveStarted{Wave: s.wave, Count: n})
	return nil
}

// randomPoint returns a top-left position keeping a size box inside the world.
func (s *SpawnerSystem) randomPoint(r *rand.Rand, size mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{
		s.bounds.Min[0] + r.Float64()*(s.bounds.Width()-size[0]),
		s.bounds.Min[1] + r.Float64()*(s.bounds.Height()-size[1]),
	}
}

// edgePoint returns a position along a random world edge, inside the world.
func (s *SpawnerSystem) edgePoint(r *rand.Rand, size mgl64.Vec2) mgl64.Vec2 {
	p := s.randomPoint(r, size)
	switch r.IntN(4) {
	case 0:
		p[1] = s.bounds.Min[1]
	case 1:
		p[1] = s.bounds.Max[1] - size[1]
	case 2:
		p[0] = s.bounds.Min[0]
	default:
		p[0] = s.bounds.Max[0] - size[0]
	}
	return p
}
