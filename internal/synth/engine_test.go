package synth

import (
	"math"
	"testing"

	"github.com/cbegin/beepboop-go/internal/envelope"
	"github.com/cbegin/beepboop-go/internal/osc"
)

func newEngine(t testing.TB, sampleRate, channels int) *Engine {
	t.Helper()
	params := DefaultParams()
	params.Channels = channels
	e, err := New(sampleRate, params)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestNewRejectsBadSampleRate(t *testing.T) {
	if _, err := New(0, DefaultParams()); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}

func TestSilenceWithoutVoices(t *testing.T) {
	e := newEngine(t, 48000, 2)
	buf := make([]float32, 1024)
	for i := range buf {
		buf[i] = 1
	}
	e.Process(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %v, want 0", i, s)
		}
	}
}

func TestMiddleCEndToEnd(t *testing.T) {
	const sr = 44100
	e := newEngine(t, sr, 1)
	e.NoteOn(0)
	buf := make([]float32, 1000)
	e.Process(buf)

	var crossings []float64
	for i := 1; i < len(buf); i++ {
		a, b := float64(buf[i-1]), float64(buf[i])
		if math.IsNaN(b) || b < -1 || b > 1 {
			t.Fatalf("sample %d = %v out of range", i, b)
		}
		if a < 0 && b >= 0 {
			crossings = append(crossings, float64(i-1)+a/(a-b))
		}
	}
	if len(crossings) < 4 {
		t.Fatalf("only %d rising zero crossings", len(crossings))
	}
	span := crossings[len(crossings)-1] - crossings[0]
	freq := float64(len(crossings)-1) * sr / span
	if math.Abs(freq-261.63) > 0.5 {
		t.Fatalf("frequency = %.3f Hz, want ~261.63", freq)
	}

	// Attack is still ramping, so each cycle peaks higher than the last.
	period := int(sr/261.63) + 1
	prevPeak := float32(0)
	for start := 0; start+period <= len(buf); start += period {
		var peak float32
		for _, s := range buf[start : start+period] {
			if s > peak {
				peak = s
			}
		}
		if peak < prevPeak {
			t.Fatalf("cycle at %d peaks at %v after %v", start, peak, prevPeak)
		}
		prevPeak = peak
	}
}

func TestStereoChannelsCarrySameSignal(t *testing.T) {
	e := newEngine(t, 48000, 2)
	e.NoteOn(3)
	buf := make([]float32, 4096)
	e.Process(buf)
	var energy float64
	for i := 0; i+1 < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d: left %v right %v", i/2, buf[i], buf[i+1])
		}
		energy += math.Abs(float64(buf[i]))
	}
	if energy == 0 {
		t.Fatalf("expected non-zero output")
	}
}

func TestImmediateNoteOffReleasesFromPartialLevel(t *testing.T) {
	const sr = 44100
	e := newEngine(t, sr, 1)
	e.NoteOn(0)
	head := make([]float32, 200)
	e.Process(head)
	e.NoteOff(0)

	rel := envelope.Samples(DefaultEnvelope().ReleaseMs, sr)
	tail := make([]float32, rel+64)
	e.Process(tail)
	var peak float32
	for _, s := range tail[:rel/2] {
		peak = max(peak, s)
	}
	if peak == 0 || peak > 0.05 {
		t.Fatalf("release peak = %v, want small but audible", peak)
	}
	for i, s := range tail[rel:] {
		if s != 0 {
			t.Fatalf("sample %d after release = %v", rel+i, s)
		}
	}
	if got := e.Stats().ActiveVoices; got != 0 {
		t.Fatalf("active voices = %d after release", got)
	}
}

func TestNoteOffTwiceMatchesOnce(t *testing.T) {
	render := func(offs int) []float32 {
		e := newEngine(t, 48000, 1)
		e.NoteOn(5)
		warm := make([]float32, 4800)
		e.Process(warm)
		for i := 0; i < offs; i++ {
			e.NoteOff(5)
		}
		out := make([]float32, 4800)
		e.Process(out)
		e.NoteOff(5)
		rest := make([]float32, 4800)
		e.Process(rest)
		return append(out, rest...)
	}
	once, twice := render(1), render(2)
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, once[i], twice[i])
		}
	}
}

func TestNoteOffWithoutVoiceIsIgnored(t *testing.T) {
	e := newEngine(t, 48000, 1)
	e.NoteOff(12)
	buf := make([]float32, 256)
	e.Process(buf)
	if s := e.Stats(); s.ActiveVoices != 0 || s.DroppedNotes != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestMasterVolumeScalesOutput(t *testing.T) {
	render := func(gain float64) []float32 {
		e := newEngine(t, 48000, 1)
		e.UpdatePatch(func(p *Patch) { p.MasterVolume = gain })
		e.NoteOn(0)
		buf := make([]float32, 2048)
		e.Process(buf)
		return buf
	}
	full, half := render(1), render(0.5)
	for i := range full {
		if d := math.Abs(float64(full[i])*0.5 - float64(half[i])); d > 1e-6 {
			t.Fatalf("sample %d: full %v half %v", i, full[i], half[i])
		}
	}
}

func TestPatchChangeReachesSoundingVoice(t *testing.T) {
	e := newEngine(t, 48000, 1)
	e.NoteOn(0)
	buf := make([]float32, 1024)
	e.Process(buf)
	e.UpdatePatch(func(p *Patch) {
		p.Oscillators[0].Volume = 0
		p.Oscillators[1].Volume = 0
	})
	e.Process(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %v after muting both slots", i, s)
		}
	}
}

func TestSetPatchClamps(t *testing.T) {
	e := newEngine(t, 48000, 2)
	p := DefaultPatch()
	p.Oscillators[0].Unison = 40
	p.Oscillators[1].Tune = 900
	p.Envelopes[0].AttackMs = 0
	p.MasterVolume = 3
	e.SetPatch(p)
	got := e.Patch()
	if got.Oscillators[0].Unison != osc.MaxUnison || got.Oscillators[1].Tune != MaxTune {
		t.Fatalf("oscillators not clamped: %+v", got.Oscillators)
	}
	if got.Envelopes[0].AttackMs != MinStageMs || got.MasterVolume != 1 {
		t.Fatalf("envelope/master not clamped: %+v %v", got.Envelopes[0], got.MasterVolume)
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	e := newEngine(t, 48000, 2)
	buf := make([]float32, 2048)
	allocs := testing.AllocsPerRun(50, func() {
		e.NoteOn(0)
		e.NoteOn(7)
		e.Process(buf)
		e.NoteOff(0)
		e.Process(buf)
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %v times per run", allocs)
	}
}

func TestQueueOverflowIsCounted(t *testing.T) {
	params := DefaultParams()
	params.QueueSize = 4
	e, err := New(48000, params)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	for i := 0; i < 6; i++ {
		e.NoteOn(i)
	}
	if got := e.Stats().DroppedEvents; got != 2 {
		t.Fatalf("dropped events = %d, want 2", got)
	}
	e.Process(make([]float32, 64))
	if got := e.Stats().ActiveVoices; got != 4 {
		t.Fatalf("active voices = %d, want 4", got)
	}
}

func BenchmarkProcessEightVoices(b *testing.B) {
	e := newEngine(b, 48000, 2)
	e.UpdatePatch(func(p *Patch) {
		p.Oscillators[0].Unison = 7
		p.Oscillators[0].Tune = 20
		p.Oscillators[0].Waveform = osc.Saw
	})
	for i := 0; i < 8; i++ {
		e.NoteOn(i * 3)
	}
	buf := make([]float32, 512*2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Process(buf)
	}
}
