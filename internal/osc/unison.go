package osc

import (
	"math"
	"math/rand/v2"
)

// MaxUnison is the largest number of stacked accumulators per oscillator.
const MaxUnison = 7

// PhaseStart picks the starting phase of the centre accumulator. The
// remaining accumulators always start at random phases.
type PhaseStart uint8

const (
	PhaseSoft PhaseStart = iota // zero crossing
	PhaseHard                   // quarter cycle, peak for sine
	PhaseRandom
)

// Config is the per-slot oscillator shape. Values are assumed to be in range.
type Config struct {
	Kind      Kind
	Volume    float64
	Transpose int     // semitones
	Tune      float64 // cents
	Count     int     // 1..MaxUnison
}

// Spread returns the cents offset of each accumulator for a unison stack.
// A single accumulator is plain detune by tune cents. Odd stacks keep one
// accumulator at the centre and place pairs at ±tune·i/(n-1); even stacks
// place pairs at ±tune·(2i-1)/(n-1).
func Spread(count int, tune float64) (offsets [MaxUnison]float64, n int) {
	switch {
	case count <= 1:
		offsets[0] = tune
		return offsets, 1
	case count > MaxUnison:
		count = MaxUnison
	}
	div := float64(count - 1)
	if count%2 == 1 {
		n = 1
		for i := 1; i <= count/2; i++ {
			d := tune * float64(i) / div
			offsets[n], offsets[n+1] = d, -d
			n += 2
		}
		return offsets, n
	}
	for i := 1; i <= count/2; i++ {
		d := tune * float64(2*i-1) / div
		offsets[n], offsets[n+1] = d, -d
		n += 2
	}
	return offsets, n
}

// CentsRatio converts a cents offset into a frequency ratio.
func CentsRatio(cents float64) float64 {
	return math.Exp2(cents / 1200)
}

// Unison is a stack of detuned phase accumulators sharing one waveform.
type Unison struct {
	cfg        Config
	base       float64
	sampleRate float64
	phase      [MaxUnison]float64
	inc        [MaxUnison]float64
	n          int
	scale      float64
}

// Reset prepares the stack for a new note. Initial phases for every
// accumulator are drawn from rng here so a later change of Count never
// needs randomness on the render path. rng may be nil when start is not
// PhaseRandom and a single accumulator is used.
func (u *Unison) Reset(cfg Config, baseFreq, sampleRate float64, start PhaseStart, rng *rand.Rand) {
	u.base = baseFreq
	u.sampleRate = sampleRate
	for i := range u.phase {
		if rng != nil {
			u.phase[i] = rng.Float64()
		} else {
			u.phase[i] = 0
		}
	}
	switch start {
	case PhaseSoft:
		u.phase[0] = 0
	case PhaseHard:
		u.phase[0] = 0.25
	}
	u.n = 0
	u.apply(cfg)
}

// Configure applies a possibly changed config. Increments are recomputed only
// when pitch-related fields differ from the current ones.
func (u *Unison) Configure(cfg Config) {
	if cfg.Transpose != u.cfg.Transpose || cfg.Tune != u.cfg.Tune || cfg.Count != u.cfg.Count || u.n == 0 {
		u.apply(cfg)
		return
	}
	u.cfg.Kind = cfg.Kind
	u.cfg.Volume = cfg.Volume
	u.scale = cfg.Volume / float64(u.n)
}

func (u *Unison) apply(cfg Config) {
	u.cfg = cfg
	offsets, n := Spread(cfg.Count, cfg.Tune)
	freq := u.base * math.Exp2(float64(cfg.Transpose)/12)
	for i := 0; i < n; i++ {
		u.inc[i] = freq * CentsRatio(offsets[i]) / u.sampleRate
	}
	u.n = n
	u.scale = cfg.Volume / float64(n)
}

// Count returns the number of live accumulators.
func (u *Unison) Count() int { return u.n }

// Increment returns the per-sample phase increment of accumulator i.
func (u *Unison) Increment(i int) float64 { return u.inc[i] }

// Next returns the mean waveform value at the current phases, scaled by the
// slot volume, then advances every accumulator by one sample.
func (u *Unison) Next() float64 {
	var sum float64
	for i := 0; i < u.n; i++ {
		sum += Sample(u.cfg.Kind, u.phase[i])
		p := u.phase[i] + u.inc[i]
		if p >= 1 {
			p -= math.Floor(p)
		}
		u.phase[i] = p
	}
	return sum * u.scale
}
