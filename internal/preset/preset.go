// Package preset stores a synth patch as a JSON file.
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cbegin/beepboop-go/internal/osc"
	"github.com/cbegin/beepboop-go/internal/synth"
)

var ErrInvalid = errors.New("invalid preset")

type Oscillator struct {
	Waveform  osc.Kind `json:"waveform"`
	Volume    float64  `json:"volume"`
	Transpose int      `json:"transpose"`
	Tune      float64  `json:"tune"`
	Unison    int      `json:"unison"`
	Envelope  int      `json:"envelope"`
}

type Envelope struct {
	AttackMs  float64 `json:"attackMs"`
	DecayMs   float64 `json:"decayMs"`
	Sustain   float64 `json:"sustain"`
	ReleaseMs float64 `json:"releaseMs"`
}

type Preset struct {
	Name           string                  `json:"name,omitempty"`
	MasterVolumeDB float64                 `json:"masterVolumeDb"`
	PhaseStart     string                  `json:"phaseStart,omitempty"`
	Oscillators    [synth.Slots]Oscillator `json:"oscillators"`
	Envelopes      [synth.Slots]Envelope   `json:"envelopes"`
}

// Default is the stock sound: a detuned saw over a sine one octave down.
func Default() Preset {
	env := Envelope{AttackMs: 300, DecayMs: 300, Sustain: 0.7, ReleaseMs: 300}
	return Preset{
		Name:           "default",
		MasterVolumeDB: -25,
		PhaseStart:     "soft",
		Oscillators: [synth.Slots]Oscillator{
			{Waveform: osc.Saw, Volume: 0.3, Tune: 15, Unison: 3},
			{Waveform: osc.Sine, Volume: 0.5, Transpose: -12, Unison: 1},
		},
		Envelopes: [synth.Slots]Envelope{env, env},
	}
}

func parsePhaseStart(s string) (osc.PhaseStart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "soft":
		return osc.PhaseSoft, nil
	case "hard":
		return osc.PhaseHard, nil
	case "random":
		return osc.PhaseRandom, nil
	}
	return osc.PhaseSoft, fmt.Errorf("%w: unknown phase start %q", ErrInvalid, s)
}

func phaseStartName(p osc.PhaseStart) string {
	switch p {
	case osc.PhaseHard:
		return "hard"
	case osc.PhaseRandom:
		return "random"
	}
	return "soft"
}

// Patch converts the preset into a clamped engine snapshot.
func (p Preset) Patch() (synth.Patch, error) {
	var out synth.Patch
	ps, err := parsePhaseStart(p.PhaseStart)
	if err != nil {
		return out, err
	}
	out.PhaseStart = ps
	for i, o := range p.Oscillators {
		out.Oscillators[i] = synth.OscillatorConfig{
			Waveform:  o.Waveform,
			Volume:    o.Volume,
			Transpose: o.Transpose,
			Tune:      o.Tune,
			Unison:    o.Unison,
			Envelope:  o.Envelope,
		}
	}
	for i, e := range p.Envelopes {
		out.Envelopes[i] = synth.EnvelopeConfig{
			AttackMs:     e.AttackMs,
			DecayMs:      e.DecayMs,
			SustainLevel: e.Sustain,
			ReleaseMs:    e.ReleaseMs,
		}
	}
	out.MasterVolume = synth.DBToGain(p.MasterVolumeDB)
	return out.Clamp(), nil
}

// FromPatch captures an engine snapshot as a preset.
func FromPatch(name string, p synth.Patch) Preset {
	out := Preset{
		Name:           name,
		MasterVolumeDB: synth.GainToDB(p.MasterVolume),
		PhaseStart:     phaseStartName(p.PhaseStart),
	}
	for i, o := range p.Oscillators {
		out.Oscillators[i] = Oscillator{
			Waveform:  o.Waveform,
			Volume:    o.Volume,
			Transpose: o.Transpose,
			Tune:      o.Tune,
			Unison:    o.Unison,
			Envelope:  o.Envelope,
		}
	}
	for i, e := range p.Envelopes {
		out.Envelopes[i] = Envelope{
			AttackMs:  e.AttackMs,
			DecayMs:   e.DecayMs,
			Sustain:   e.SustainLevel,
			ReleaseMs: e.ReleaseMs,
		}
	}
	return out
}

// Parse decodes a preset. Fields missing from data keep their Default
// values.
func Parse(data []byte) (*Preset, error) {
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := parsePhaseStart(p.PhaseStart); err != nil {
		return nil, err
	}
	return &p, nil
}

// Read loads the preset at path, writing the default preset there first if
// the file does not exist.
func Read(path string) (*Preset, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Write(path, Default()); err != nil {
			return nil, fmt.Errorf("can't write default preset: %w", err)
		}
	}
	return load(path)
}

func load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read preset: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func Write(path string, p Preset) error {
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
