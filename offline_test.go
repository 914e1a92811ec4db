package beepboop

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestRenderPhraseIsDeterministic(t *testing.T) {
	p := DefaultPatch()
	p.Oscillators[0].Waveform = Saw
	p.Oscillators[0].Unison = 5
	p.Oscillators[0].Tune = 12
	p.PhaseStart = PhaseRandom
	p.MasterVolume = 0.5
	render := func() []float32 {
		out, err := RenderPhrase("t140 o4 l8 cdefgab>c<c", 48000, WithPatch(p), WithSeed(42))
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		return out
	}
	a, b := render(), render()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	var energy float64
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs", i)
		}
		if math.IsNaN(float64(a[i])) || a[i] < -1 || a[i] > 1 {
			t.Fatalf("sample %d = %v out of range", i, a[i])
		}
		energy += math.Abs(float64(a[i]))
	}
	if energy == 0 {
		t.Fatalf("expected non-zero audio energy")
	}
}

func TestRenderIncludesReleaseTail(t *testing.T) {
	out, err := RenderPhrase("t120 c4", 1000, WithChannels(1))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// A quarter note at 120 BPM is 500 frames; the default release adds 300.
	if len(out) != 500+300+1 {
		t.Fatalf("len = %d, want 801", len(out))
	}
	if out[len(out)-1] != 0 {
		t.Fatalf("tail did not decay to silence: %v", out[len(out)-1])
	}
}

func TestRenderPhraseRejectsBadInput(t *testing.T) {
	if _, err := RenderPhrase("c x", 48000); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := RenderPhrase("c", 0); err == nil {
		t.Fatalf("expected sample rate error")
	}
}

func TestWriteWAVRoundTrip(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1, 2}
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := WriteWAVFile(path, samples, 22050, 2); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatalf("invalid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.Format.NumChannels != 2 || buf.Format.SampleRate != 22050 {
		t.Fatalf("format = %+v", buf.Format)
	}
	want := []int{0, 16384, -16384, 32767, -32767, 32767}
	if len(buf.Data) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(want))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], want[i])
		}
	}
}
