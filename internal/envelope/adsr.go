// Package envelope implements a linear ADSR amplitude envelope advanced one
// sample at a time.
package envelope

import "math"

// Stage is the envelope's position in its attack-decay-sustain-release cycle.
type Stage uint8

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Config holds stage times in milliseconds and the sustain level in [0,1].
type Config struct {
	AttackMs     float64
	DecayMs      float64
	SustainLevel float64
	ReleaseMs    float64
}

// Samples converts a stage time to a whole number of samples, never less
// than one.
func Samples(ms, sampleRate float64) int {
	n := int(math.Round(ms * sampleRate / 1000))
	if n < 1 {
		return 1
	}
	return n
}

// ADSR is the per-voice envelope state. The zero value is idle.
type ADSR struct {
	cfg        Config
	sampleRate float64
	stage      Stage
	level      float64
	elapsed    int
}

// New returns an idle envelope for cfg at sampleRate.
func New(cfg Config, sampleRate float64) ADSR {
	return ADSR{cfg: cfg, sampleRate: sampleRate}
}

// SetConfig swaps the stage times used from the next sample on. A stage in
// progress keeps its elapsed count, so a shorter time finishes it sooner.
func (e *ADSR) SetConfig(cfg Config) { e.cfg = cfg }

// Trigger restarts the envelope at Attack from zero.
func (e *ADSR) Trigger() {
	e.stage = StageAttack
	e.level = 0
	e.elapsed = 0
}

// Release moves Attack, Decay and Sustain into Release from the current
// level. Any other stage is left alone, so repeated calls are harmless.
func (e *ADSR) Release() {
	switch e.stage {
	case StageAttack, StageDecay, StageSustain:
		e.stage = StageRelease
		e.elapsed = 0
	}
}

func (e *ADSR) Stage() Stage    { return e.stage }
func (e *ADSR) Level() float64  { return e.level }
func (e *ADSR) Done() bool      { return e.stage == StageDone }
func (e *ADSR) Releasing() bool { return e.stage == StageRelease }

// Next advances one sample and returns the new level.
func (e *ADSR) Next() float64 {
	switch e.stage {
	case StageAttack:
		if e.ramp(1, e.cfg.AttackMs) {
			e.enter(StageDecay)
		}
	case StageDecay:
		// A sustain raised mid-decay holds the level until Sustain.
		if e.ramp(min(e.cfg.SustainLevel, e.level), e.cfg.DecayMs) {
			e.enter(StageSustain)
		}
	case StageSustain:
		e.level = e.cfg.SustainLevel
	case StageRelease:
		if e.ramp(0, e.cfg.ReleaseMs) {
			e.enter(StageDone)
		}
	default:
		e.level = 0
	}
	return e.level
}

// ramp moves the level toward target so that it lands exactly on target
// after the stage's sample count. It reports whether the stage finished.
func (e *ADSR) ramp(target, ms float64) bool {
	remaining := Samples(ms, e.sampleRate) - e.elapsed
	if remaining <= 1 {
		e.level = target
		return true
	}
	e.level += (target - e.level) / float64(remaining)
	e.elapsed++
	return false
}

func (e *ADSR) enter(s Stage) {
	e.stage = s
	e.elapsed = 0
}
