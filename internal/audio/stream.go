package audio

import (
	"encoding/binary"
	"math"
)

// SampleSource fills dst with interleaved float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to an io.Reader of little-endian
// float32 samples, the format pull-based players consume. It is meant for
// a single reading goroutine.
type StreamReader struct {
	source   SampleSource
	channels int
	buf      []float32
}

func NewStreamReader(source SampleSource, channels int) *StreamReader {
	if channels < 1 {
		channels = 1
	}
	return &StreamReader{source: source, channels: channels}
}

// Grow preallocates room for frames so later reads of that size do not
// allocate.
func (r *StreamReader) Grow(frames int) {
	if need := frames * r.channels; cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	frameBytes := 4 * r.channels
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	need := frames * r.channels
	r.Grow(frames)
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	encodeFloat32LE(p, r.buf)
	return frames * frameBytes, nil
}

func (r *StreamReader) Close() error { return nil }

func encodeFloat32LE(dst []byte, src []float32) {
	for i, s := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(s))
	}
}
