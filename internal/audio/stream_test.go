package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

type rampSource struct {
	next float32
}

func (s *rampSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = s.next
		s.next += 0.25
	}
}

func TestStreamReaderEncodesWholeFrames(t *testing.T) {
	src := &rampSource{}
	r := NewStreamReader(src, 2)
	p := make([]byte, 8*3+5)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 24 {
		t.Fatalf("n = %d, want 24", n)
	}
	for i := 0; i < 6; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if want := float32(i) * 0.25; got != want {
			t.Fatalf("sample %d = %v, want %v", i, got, want)
		}
	}
}

func TestStreamReaderShortBuffer(t *testing.T) {
	r := NewStreamReader(&rampSource{}, 2)
	if n, err := r.Read(make([]byte, 7)); n != 0 || err != nil {
		t.Fatalf("short read = %d, %v", n, err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("jack", Config{SampleRate: 48000}, &rampSource{})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("err = %v, want ErrUnknownBackend", err)
	}
	if _, err := Open("oto", Config{}, &rampSource{}); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}

func TestBackendsSorted(t *testing.T) {
	got := Backends()
	want := []string{"ebiten", "malgo", "oto", "portaudio"}
	if len(got) != len(want) {
		t.Fatalf("backends = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("backends = %v, want %v", got, want)
		}
	}
}
