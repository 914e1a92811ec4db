package synth

import (
	"math"

	"github.com/cbegin/beepboop-go/internal/envelope"
	"github.com/cbegin/beepboop-go/internal/osc"
)

// Slots is the number of oscillator slots and of envelope configs.
const Slots = 2

// Control ranges enforced by Clamp.
const (
	MinTranspose = -24
	MaxTranspose = 24
	MinTune      = -100.0
	MaxTune      = 100.0
	MinStageMs   = 1.0
	MaxStageMs   = 3000.0
	MinVolumeDB  = -96.0
	MaxVolumeDB  = 0.0
)

// RefFreq is the frequency of note 0 (middle C).
const RefFreq = 261.6256

type OscillatorConfig struct {
	Waveform  osc.Kind
	Volume    float64
	Transpose int
	Tune      float64
	Unison    int
	Envelope  int // index into Patch.Envelopes
}

type EnvelopeConfig = envelope.Config

// Patch is an immutable snapshot of every sound parameter. Once published
// to an Engine it must not be modified.
type Patch struct {
	Oscillators  [Slots]OscillatorConfig
	Envelopes    [Slots]EnvelopeConfig
	MasterVolume float64 // linear gain
	PhaseStart   osc.PhaseStart
}

// DefaultEnvelope is 300ms attack, decay and release with 0.7 sustain.
func DefaultEnvelope() EnvelopeConfig {
	return EnvelopeConfig{AttackMs: 300, DecayMs: 300, SustainLevel: 0.7, ReleaseMs: 300}
}

// DefaultPatch has both slots on a plain sine through the default envelope.
func DefaultPatch() Patch {
	var p Patch
	for i := range p.Oscillators {
		p.Oscillators[i] = OscillatorConfig{Waveform: osc.Sine, Volume: 0.5, Unison: 1}
		p.Envelopes[i] = DefaultEnvelope()
	}
	p.MasterVolume = 1
	return p
}

func (c OscillatorConfig) Clamp() OscillatorConfig {
	if !c.Waveform.Valid() {
		c.Waveform = osc.Sine
	}
	c.Volume = clamp(c.Volume, 0, 1)
	c.Transpose = clampInt(c.Transpose, MinTranspose, MaxTranspose)
	c.Tune = clamp(c.Tune, MinTune, MaxTune)
	c.Unison = clampInt(c.Unison, 1, osc.MaxUnison)
	c.Envelope = clampInt(c.Envelope, 0, Slots-1)
	return c
}

func ClampEnvelope(c EnvelopeConfig) EnvelopeConfig {
	c.AttackMs = clamp(c.AttackMs, MinStageMs, MaxStageMs)
	c.DecayMs = clamp(c.DecayMs, MinStageMs, MaxStageMs)
	c.ReleaseMs = clamp(c.ReleaseMs, MinStageMs, MaxStageMs)
	c.SustainLevel = clamp(c.SustainLevel, 0, 1)
	return c
}

// Clamp returns a copy with every field forced into its valid range.
func (p Patch) Clamp() Patch {
	for i := range p.Oscillators {
		p.Oscillators[i] = p.Oscillators[i].Clamp()
		p.Envelopes[i] = ClampEnvelope(p.Envelopes[i])
	}
	p.MasterVolume = clamp(p.MasterVolume, 0, 1)
	if p.PhaseStart > osc.PhaseRandom {
		p.PhaseStart = osc.PhaseSoft
	}
	return p
}

func (c OscillatorConfig) unisonConfig() osc.Config {
	return osc.Config{
		Kind:      c.Waveform,
		Volume:    c.Volume,
		Transpose: c.Transpose,
		Tune:      c.Tune,
		Count:     c.Unison,
	}
}

// NoteFreq returns the frequency of a note counted in semitones from
// middle C.
func NoteFreq(note int) float64 {
	return RefFreq * math.Exp2(float64(note)/12)
}

// SliderToMs maps a log2 control position to a whole number of
// milliseconds in the stage range.
func SliderToMs(pos float64) float64 {
	return clamp(math.Round(math.Exp2(pos)), MinStageMs, MaxStageMs)
}

// MsToSlider is the inverse of SliderToMs.
func MsToSlider(ms float64) float64 {
	return math.Log2(clamp(ms, MinStageMs, MaxStageMs))
}

// DBToGain converts decibels in [MinVolumeDB, MaxVolumeDB] to linear gain.
// The floor maps to silence.
func DBToGain(db float64) float64 {
	db = clamp(db, MinVolumeDB, MaxVolumeDB)
	if db <= MinVolumeDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// GainToDB is the inverse of DBToGain.
func GainToDB(gain float64) float64 {
	if gain <= 0 {
		return MinVolumeDB
	}
	return clamp(20*math.Log10(gain), MinVolumeDB, MaxVolumeDB)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
