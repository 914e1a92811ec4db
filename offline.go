package beepboop

import (
	"errors"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	intenv "github.com/cbegin/beepboop-go/internal/envelope"
	intphrase "github.com/cbegin/beepboop-go/internal/phrase"
	intsynth "github.com/cbegin/beepboop-go/internal/synth"
)

// CompilePhrase parses the phrase notation used by RenderPhrase.
func CompilePhrase(text string) (*intphrase.Phrase, error) {
	return intphrase.Parse(text)
}

// RenderSamples plays ph through a fresh engine and returns interleaved
// frames, including the release tail of the last notes.
func RenderSamples(ph *intphrase.Phrase, sampleRate int, opts ...Option) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	params := intsynth.DefaultParams()
	params.Polyphony = cfg.polyphony
	params.Channels = cfg.channels
	params.Seed = cfg.seed
	engine, err := intsynth.New(sampleRate, params)
	if err != nil {
		return nil, err
	}
	if cfg.patch != nil {
		engine.SetPatch(*cfg.patch)
	}
	patch := engine.Patch()
	var tailMs float64
	for _, e := range patch.Envelopes {
		tailMs = math.Max(tailMs, e.ReleaseMs)
	}
	seq := intphrase.New(ph, engine, sampleRate, params.Channels)
	frames := seq.EndFrame() + int64(intenv.Samples(tailMs, float64(sampleRate))) + 1
	out := make([]float32, frames*int64(params.Channels))
	seq.Process(out)
	return out, nil
}

// RenderPhrase compiles and renders text in one step.
func RenderPhrase(text string, sampleRate int, opts ...Option) ([]float32, error) {
	ph, err := CompilePhrase(text)
	if err != nil {
		return nil, err
	}
	return RenderSamples(ph, sampleRate, opts...)
}

// WriteWAV encodes interleaved float samples as 16-bit PCM. Samples are
// clipped to [-1,1].
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate, channels int) error {
	if channels < 1 {
		return errors.New("channels must be positive")
	}
	enc := wav.NewEncoder(w, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		buf.Data[i] = int(math.Round(v * 32767))
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// WriteWAVFile writes samples to a new file at path.
func WriteWAVFile(path string, samples []float32, sampleRate, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(f, samples, sampleRate, channels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
