package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

type wave int

const (
	waveSine wave = iota
	waveSquare
	waveNoise
)

// oscillator generates a raw wave whose frequency slides from freq to end
// over its duration.
type oscillator struct {
	freq, end float64
	phase     float64
	duration  int
	position  int
	wave      wave
	rate      beep.SampleRate
	seed      uint32
}

func newOscillator(freq, end float64, d time.Duration, w wave, rate beep.SampleRate) *oscillator {
	return &oscillator{freq: freq, end: end, duration: rate.N(d), wave: w, rate: rate, seed: 2463534242}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		var val float64
		switch o.wave {
		case waveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case waveSquare:
			val = 1
			if o.phase >= 0.5 {
				val = -1
			}
		case waveNoise:
			// xorshift keeps the output reproducible
			o.seed ^= o.seed << 13
			o.seed ^= o.seed >> 17
			o.seed ^= o.seed << 5
			val = float64(o.seed)/math.MaxUint32*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		t := float64(o.position) / float64(o.duration)
		f := o.freq + (o.end-o.freq)*t
		o.phase += f / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a finite stream.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) *envelope {
	return &envelope{streamer: s, attack: rate.N(attack), release: rate.N(release), total: rate.N(d)}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if left := e.total - e.position; left < e.release {
			vol = math.Max(float64(left)/float64(e.release), 0)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales linearly; zero or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

type voice struct {
	wave            wave
	from, to        float64
	length          time.Duration
	attack, release time.Duration
	gain            float64
}

var voices = map[Sound]voice{
	SoundShot:      {waveSquare, 1400, 700, 60 * time.Millisecond, 2 * time.Millisecond, 40 * time.Millisecond, 0.15},
	SoundHit:       {waveNoise, 0, 0, 80 * time.Millisecond, time.Millisecond, 60 * time.Millisecond, 0.3},
	SoundDeath:     {waveSquare, 400, 60, 350 * time.Millisecond, 5 * time.Millisecond, 200 * time.Millisecond, 0.25},
	SoundPlayerHit: {waveSine, 220, 110, 200 * time.Millisecond, 5 * time.Millisecond, 120 * time.Millisecond, 0.4},
	SoundWave:      {waveSine, 440, 880, 400 * time.Millisecond, 20 * time.Millisecond, 150 * time.Millisecond, 0.3},
}

// Synth builds the streamer for s at the given rate and master volume.
// Unknown sounds yield nil.
func Synth(s Sound, rate beep.SampleRate, volume float64) beep.Streamer {
	v, ok := voices[s]
	if !ok {
		return nil
	}
	osc := newOscillator(v.from, v.to, v.length, v.wave, rate)
	env := newEnvelope(osc, v.length, v.attack, v.release, rate)
	return newVolume(env, v.gain*volume)
}
