package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/skirmish/skirmish/internal/core/event"
	"go.uber.org/zap"
)

type Sound uint8

const (
	SoundShot Sound = iota + 1
	SoundHit
	SoundDeath
	SoundPlayerHit
	SoundWave
)

// Player plays short effects without blocking the caller.
type Player interface {
	Play(Sound)
	Close()
}

// NopPlayer is used when audio is disabled or the device is unavailable.
type NopPlayer struct{}

func (NopPlayer) Play(Sound) {}
func (NopPlayer) Close()     {}

// BeepPlayer mixes effects into one speaker stream.
type BeepPlayer struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	volume float64
	mixer  *beep.Mixer
	closed bool
}

// NewBeepPlayer opens the audio device. Callers fall back to NopPlayer on
// error; a game without sound still runs.
func NewBeepPlayer(sampleRate int, volume float64) (*BeepPlayer, error) {
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(50*time.Millisecond)); err != nil {
		return nil, err
	}
	p := &BeepPlayer{rate: rate, volume: volume, mixer: &beep.Mixer{}}
	speaker.Play(p.mixer)
	return p, nil
}

func (p *BeepPlayer) Play(s Sound) {
	st := Synth(s, p.rate, p.volume)
	if st == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	speaker.Lock()
	p.mixer.Add(st)
	speaker.Unlock()
}

func (p *BeepPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	speaker.Clear()
	speaker.Close()
}

// Bind plays a sound for every gameplay event on bus.
func Bind(bus *event.Bus, p Player, log *zap.Logger) {
	event.Subscribe(bus, func(event.ShotFired) { p.Play(SoundShot) })
	event.Subscribe(bus, func(e event.EntityDamaged) {
		if e.Player {
			p.Play(SoundPlayerHit)
			return
		}
		p.Play(SoundHit)
	})
	event.Subscribe(bus, func(e event.EntityDied) {
		if e.Cause == event.CauseKilled {
			p.Play(SoundDeath)
		}
	})
	event.Subscribe(bus, func(e event.WaveStarted) {
		log.Debug("wave sound", zap.Int("wave", e.Wave))
		p.Play(SoundWave)
	})
}
