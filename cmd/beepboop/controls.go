package main

import (
	"fmt"
	"image"
	"math"

	"github.com/cbegin/beepboop-go"
	"github.com/cbegin/beepboop-go/internal/keymap"
	"github.com/cbegin/beepboop-go/internal/synth"
)

const sliderLabelW = 200

// slider edits one value of the patch (or the octave) through get and set.
// A step of 0 makes it continuous.
type slider struct {
	minV, maxV float64
	step       float64
	def        float64
	get        func() float64
	set        func(v float64)
	label      func(v float64) string
	rect       image.Rectangle
}

func (s *slider) frac() float64 {
	return (s.get() - s.minV) / (s.maxV - s.minV)
}

func (s *slider) setFromMouse(mx int) {
	track := sliderTrack(s.rect)
	if track.Dx() <= 0 {
		return
	}
	f := clamp(float64(mx-track.Min.X)/float64(track.Dx()), 0, 1)
	v := s.minV + f*(s.maxV-s.minV)
	if s.step > 0 {
		v = math.Round(v/s.step) * s.step
	}
	s.set(clamp(v, s.minV, s.maxV))
}

type button struct {
	label func() string
	click func()
	rect  image.Rectangle
}

// panelControls holds the widgets of one bevelled panel.
type panelControls struct {
	title   string
	buttons []*button
	sliders []*slider
	rect    image.Rectangle
}

func pct(v float64) string { return fmt.Sprintf("%d%%", int(v*100+0.5)) }

func (g *game) oscPanel(slot int) *panelControls {
	osc := func() *beepboop.OscillatorConfig { return &g.patch.Oscillators[slot] }
	return &panelControls{
		title: fmt.Sprintf("Oscillator %d", slot+1),
		buttons: []*button{
			{
				label: func() string { return osc().Waveform.String() },
				click: func() { osc().Waveform = osc().Waveform.Next() },
			},
			{
				label: func() string { return "Env " + envName(osc().Envelope) },
				click: func() { osc().Envelope = (osc().Envelope + 1) % synth.Slots },
			},
		},
		sliders: []*slider{
			{
				minV: 0, maxV: 1, def: 0.5,
				get:   func() float64 { return osc().Volume },
				set:   func(v float64) { osc().Volume = v },
				label: func(v float64) string { return "Volume " + pct(v) },
			},
			{
				minV: synth.MinTranspose, maxV: synth.MaxTranspose, step: 1,
				get:   func() float64 { return float64(osc().Transpose) },
				set:   func(v float64) { osc().Transpose = int(v) },
				label: func(v float64) string { return fmt.Sprintf("Semi %+d", int(v)) },
			},
			{
				minV: synth.MinTune, maxV: synth.MaxTune, step: 1,
				get:   func() float64 { return osc().Tune },
				set:   func(v float64) { osc().Tune = v },
				label: func(v float64) string { return fmt.Sprintf("Tune %+dc", int(v)) },
			},
			{
				minV: 1, maxV: 7, step: 1, def: 1,
				get:   func() float64 { return float64(osc().Unison) },
				set:   func(v float64) { osc().Unison = int(v) },
				label: func(v float64) string { return fmt.Sprintf("Unison %d", int(v)) },
			},
		},
	}
}

func (g *game) envPanel(index int) *panelControls {
	env := func() *beepboop.EnvelopeConfig { return &g.patch.Envelopes[index] }
	stage := func(name string, field func() *float64) *slider {
		return &slider{
			minV: 0, maxV: synth.MsToSlider(synth.MaxStageMs), def: synth.MsToSlider(300),
			get:   func() float64 { return synth.MsToSlider(*field()) },
			set:   func(v float64) { *field() = synth.SliderToMs(v) },
			label: func(v float64) string { return fmt.Sprintf("%s %dms", name, int(synth.SliderToMs(v))) },
		}
	}
	return &panelControls{
		title: "Envelope " + envName(index),
		sliders: []*slider{
			stage("Attack", func() *float64 { return &env().AttackMs }),
			stage("Decay", func() *float64 { return &env().DecayMs }),
			{
				minV: 0, maxV: 1, def: 0.7,
				get:   func() float64 { return env().SustainLevel },
				set:   func(v float64) { env().SustainLevel = v },
				label: func(v float64) string { return "Sustain " + pct(v) },
			},
			stage("Release", func() *float64 { return &env().ReleaseMs }),
		},
	}
}

func (g *game) masterPanel() *panelControls {
	return &panelControls{
		title: "Master",
		buttons: []*button{
			{
				label: func() string { return "Phase " + phaseName(g.patch.PhaseStart) },
				click: func() { g.patch.PhaseStart = (g.patch.PhaseStart + 1) % 3 },
			},
			{
				label: func() string { return "Save" },
				click: g.savePreset,
			},
		},
		sliders: []*slider{
			{
				minV: synth.MinVolumeDB, maxV: synth.MaxVolumeDB, step: 0.5, def: -25,
				get:   func() float64 { return synth.GainToDB(g.patch.MasterVolume) },
				set:   func(v float64) { g.patch.MasterVolume = synth.DBToGain(v) },
				label: func(v float64) string {
					if v <= synth.MinVolumeDB {
						return "Vol off"
					}
					return fmt.Sprintf("Vol %.1fdB", v)
				},
			},
			{
				minV: keymap.MinOctave, maxV: keymap.MaxOctave, step: 1,
				get:   func() float64 { return float64(g.keys.Octave()) },
				set:   func(v float64) { g.keys.ShiftOctave(int(v) - g.keys.Octave()) },
				label: func(v float64) string { return fmt.Sprintf("Octave %+d", int(v)) },
			},
		},
	}
}

func envName(i int) string { return string(rune('A' + i)) }

func phaseName(p beepboop.PhaseStart) string {
	switch p {
	case beepboop.PhaseHard:
		return "hard"
	case beepboop.PhaseRandom:
		return "random"
	}
	return "soft"
}
