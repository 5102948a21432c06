package system

import (
	"time"

	"github.com/skirmish/skirmish/internal/core/ecs"
	"go.uber.org/zap"
)

// Base carries identity and the cached signature query. Batch systems embed
// it and implement Update over Entities themselves.
type Base struct {
	Cache
	name  string
	phase Phase
}

func NewBase(name string, phase Phase, store *ecs.Store, sig Signature) Base {
	return Base{Cache: NewCache(store, sig), name: name, phase: phase}
}

func (b *Base) Name() string { return b.name }
func (b *Base) Phase() Phase { return b.phase }

// BatchFunc handles the whole matching list in one call.
type BatchFunc func(ids []ecs.EntityID, dt time.Duration) error

// Batch is a system that processes its entity list as a unit, for work that
// needs every entity at once (pair tests, sorting).
type Batch struct {
	Base
	fn BatchFunc
}

func NewBatch(name string, phase Phase, store *ecs.Store, sig Signature, fn BatchFunc) *Batch {
	return &Batch{Base: NewBase(name, phase, store, sig), fn: fn}
}

func (s *Batch) Update(dt time.Duration) error { return s.fn(s.Entities(), dt) }

// Processor handles one entity. A returned error skips that entity for the
// current tick; it does not abort the tick.
type Processor interface {
	Process(id ecs.EntityID, dt time.Duration) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(id ecs.EntityID, dt time.Duration) error

func (f ProcessorFunc) Process(id ecs.EntityID, dt time.Duration) error { return f(id, dt) }

// PerEntity is a system whose Update hands each matching entity to a Processor.
type PerEntity struct {
	Base
	proc    Processor
	log     *zap.Logger
	skipped uint64
}

func NewPerEntity(name string, phase Phase, store *ecs.Store, sig Signature, proc Processor, log *zap.Logger) *PerEntity {
	return &PerEntity{
		Base: NewBase(name, phase, store, sig),
		proc: proc,
		log:  log.Named(name),
	}
}

func (s *PerEntity) Update(dt time.Duration) error {
	for _, id := range s.Entities() {
		if err := s.proc.Process(id, dt); err != nil {
			s.skipped++
			s.log.Warn("entity skipped",
				zap.Stringer("entity", id),
				zap.Error(err))
		}
	}
	return nil
}

// Skipped counts entities whose processing failed since start-up.
func (s *PerEntity) Skipped() uint64 { return s.skipped }

// Processor returns the wrapped processor.
func (s *PerEntity) Processor() Processor { return s.proc }
