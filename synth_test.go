package beepboop

import (
	"errors"
	"math"
	"testing"
)

func TestSynthMasterVolumeRuntimeAPI(t *testing.T) {
	s, err := New(48000)
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	if got := s.MasterVolume(); got != 1 {
		t.Fatalf("default master volume = %v, want 1", got)
	}
	s.SetMasterVolume(0.35)
	if got := s.MasterVolume(); got != 0.35 {
		t.Fatalf("master volume = %v, want 0.35", got)
	}
	s.SetMasterVolume(-2)
	if got := s.MasterVolume(); got != 0 {
		t.Fatalf("master volume should clamp to 0, got %v", got)
	}
	s.SetMasterVolumeDB(-20)
	if got := s.MasterVolume(); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("-20 dB = %v, want 0.1", got)
	}
	if got := s.MasterVolumeDB(); math.Abs(got+20) > 1e-9 {
		t.Fatalf("master dB = %v, want -20", got)
	}
}

func TestNewRejectsBadSampleRate(t *testing.T) {
	if _, err := New(-1); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSetOscillatorAndEnvelope(t *testing.T) {
	s, err := New(48000)
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	if err := s.SetOscillator(0, OscillatorConfig{Waveform: Pulse25, Volume: 2, Tune: 10, Unison: 5}); err != nil {
		t.Fatalf("set oscillator: %v", err)
	}
	if err := s.SetOscillator(2, OscillatorConfig{}); err == nil {
		t.Fatalf("expected error for slot 2")
	}
	if err := s.SetEnvelope(1, EnvelopeConfig{AttackMs: 5000, DecayMs: 10, SustainLevel: 0.2, ReleaseMs: 20}); err != nil {
		t.Fatalf("set envelope: %v", err)
	}
	if err := s.SetEnvelope(-1, EnvelopeConfig{}); err == nil {
		t.Fatalf("expected error for envelope -1")
	}
	p := s.Patch()
	if p.Oscillators[0].Waveform != Pulse25 || p.Oscillators[0].Volume != 1 || p.Oscillators[0].Unison != 5 {
		t.Fatalf("oscillator = %+v", p.Oscillators[0])
	}
	if p.Envelopes[1].AttackMs != 3000 {
		t.Fatalf("envelope = %+v", p.Envelopes[1])
	}
}

func TestSynthRendersWithoutDevice(t *testing.T) {
	s, err := New(44100, WithChannels(1), WithPolyphony(4), WithSeed(3))
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	s.NoteOn(0)
	buf := make([]float32, 4410)
	s.Process(buf)
	var peak float32
	for _, v := range buf {
		peak = max(peak, v)
	}
	if peak == 0 {
		t.Fatalf("expected audio")
	}
	if st := s.Stats(); st.ActiveVoices != 1 || st.Frames != 4410 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestStartAfterClose(t *testing.T) {
	s, err := New(48000)
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrClosed) {
		t.Fatalf("start after close = %v, want ErrClosed", err)
	}
}
