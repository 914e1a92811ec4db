package synth

import (
	"math"
	"testing"

	"github.com/cbegin/beepboop-go/internal/osc"
)

func TestNoteFreq(t *testing.T) {
	for _, tc := range []struct {
		note int
		want float64
	}{
		{0, 261.6256},
		{12, 523.2512},
		{-12, 130.8128},
		{9, 440.0},
	} {
		if got := NoteFreq(tc.note); math.Abs(got-tc.want) > 0.01 {
			t.Errorf("NoteFreq(%d) = %v, want %v", tc.note, got, tc.want)
		}
	}
}

func TestOscillatorClamp(t *testing.T) {
	c := OscillatorConfig{Waveform: osc.Kind(42), Volume: -1, Transpose: 99, Tune: -300, Unison: 0, Envelope: 5}.Clamp()
	want := OscillatorConfig{Waveform: osc.Sine, Volume: 0, Transpose: MaxTranspose, Tune: MinTune, Unison: 1, Envelope: 1}
	if c != want {
		t.Fatalf("clamped = %+v, want %+v", c, want)
	}
}

func TestEnvelopeClamp(t *testing.T) {
	c := ClampEnvelope(EnvelopeConfig{AttackMs: -5, DecayMs: 9000, SustainLevel: math.NaN(), ReleaseMs: 0.1})
	want := EnvelopeConfig{AttackMs: MinStageMs, DecayMs: MaxStageMs, SustainLevel: 0, ReleaseMs: MinStageMs}
	if c != want {
		t.Fatalf("clamped = %+v, want %+v", c, want)
	}
}

func TestSliderMapping(t *testing.T) {
	for _, tc := range []struct {
		pos  float64
		want float64
	}{
		{0, 1},
		{1, 2},
		{8.2288, 300},
		{11.55, 2998},
		{20, MaxStageMs},
		{-3, MinStageMs},
	} {
		if got := SliderToMs(tc.pos); got != tc.want {
			t.Errorf("SliderToMs(%v) = %v, want %v", tc.pos, got, tc.want)
		}
	}
	for _, ms := range []float64{1, 10, 300, 3000} {
		if got := SliderToMs(MsToSlider(ms)); got != ms {
			t.Errorf("round trip %v = %v", ms, got)
		}
	}
}

func TestDecibels(t *testing.T) {
	if DBToGain(0) != 1 {
		t.Fatalf("0 dB should be unity")
	}
	if DBToGain(MinVolumeDB) != 0 || DBToGain(-500) != 0 {
		t.Fatalf("floor should be silent")
	}
	if g := DBToGain(-20); math.Abs(g-0.1) > 1e-12 {
		t.Fatalf("-20 dB = %v, want 0.1", g)
	}
	if db := GainToDB(DBToGain(-25)); math.Abs(db+25) > 1e-9 {
		t.Fatalf("round trip -25 dB = %v", db)
	}
	if GainToDB(0) != MinVolumeDB {
		t.Fatalf("silence should map to floor")
	}
}
