// Package beepboop is a two-oscillator polyphonic synthesizer. Notes are
// counted in semitones from middle C; sound parameters are published as
// immutable patch snapshots that the audio thread picks up without locking.
package beepboop

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	intaudio "github.com/cbegin/beepboop-go/internal/audio"
	intosc "github.com/cbegin/beepboop-go/internal/osc"
	intsynth "github.com/cbegin/beepboop-go/internal/synth"
)

type (
	Patch            = intsynth.Patch
	OscillatorConfig = intsynth.OscillatorConfig
	EnvelopeConfig   = intsynth.EnvelopeConfig
	Stats            = intsynth.Stats
	Waveform         = intosc.Kind
	PhaseStart       = intosc.PhaseStart
)

const (
	Sine     = intosc.Sine
	Triangle = intosc.Triangle
	Saw      = intosc.Saw
	Square   = intosc.Square
	Pulse25  = intosc.Pulse25

	PhaseSoft   = intosc.PhaseSoft
	PhaseHard   = intosc.PhaseHard
	PhaseRandom = intosc.PhaseRandom
)

// DefaultSampleRate is used by the bundled commands.
const DefaultSampleRate = 44100

var ErrClosed = errors.New("synth closed")

// DefaultPatch returns both oscillators on a plain sine with the default
// envelope.
func DefaultPatch() Patch { return intsynth.DefaultPatch() }

type Option func(*config)

type config struct {
	backend      string
	channels     int
	polyphony    int
	bufferFrames int
	seed         uint64
	patch        *Patch
	logger       *slog.Logger
}

func defaultConfig() config {
	params := intsynth.DefaultParams()
	return config{
		backend:   intaudio.DefaultBackend,
		channels:  params.Channels,
		polyphony: params.Polyphony,
		seed:      params.Seed,
	}
}

// WithBackend selects the audio output: "ebiten", "oto", "portaudio" or
// "malgo".
func WithBackend(name string) Option {
	return func(cfg *config) {
		cfg.backend = name
	}
}

// WithPolyphony sets the size of the preallocated voice pool.
func WithPolyphony(voices int) Option {
	return func(cfg *config) {
		cfg.polyphony = voices
	}
}

// WithChannels sets the number of interleaved output channels.
func WithChannels(channels int) Option {
	return func(cfg *config) {
		cfg.channels = channels
	}
}

// WithBufferFrames passes a device buffer size hint to the backend.
func WithBufferFrames(frames int) Option {
	return func(cfg *config) {
		cfg.bufferFrames = frames
	}
}

// WithSeed fixes the random unison phases.
func WithSeed(seed uint64) Option {
	return func(cfg *config) {
		cfg.seed = seed
	}
}

// WithPatch sets the initial sound.
func WithPatch(p Patch) Option {
	return func(cfg *config) {
		cfg.patch = &p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// Synth ties the engine to an audio device. All methods are safe for
// concurrent use.
type Synth struct {
	mu           sync.Mutex
	sampleRate   int
	engine       *intsynth.Engine
	out          intaudio.Output
	backend      string
	bufferFrames int
	logger       *slog.Logger
	closed       bool
}

// New builds a synth. No device is opened until Start.
func New(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
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
	return &Synth{
		sampleRate:   sampleRate,
		engine:       engine,
		backend:      cfg.backend,
		bufferFrames: cfg.bufferFrames,
		logger:       cfg.logger,
	}, nil
}

func (s *Synth) SampleRate() int { return s.sampleRate }

// Start opens the audio device on first use and starts pulling frames.
func (s *Synth) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.out == nil {
		out, err := intaudio.Open(s.backend, intaudio.Config{
			SampleRate:   s.sampleRate,
			Channels:     s.engine.Channels(),
			BufferFrames: s.bufferFrames,
			Logger:       s.logger,
		}, s.engine)
		if err != nil {
			return err
		}
		s.out = out
	}
	if err := s.out.Start(); err != nil {
		return fmt.Errorf("start %s output: %w", s.backend, err)
	}
	s.logger.Info("synth started", "backend", s.backend, "sampleRate", s.sampleRate)
	return nil
}

// Close stops rendering and releases the device. Sounding voices are cut.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.out == nil {
		return nil
	}
	err := s.out.Stop()
	s.out = nil
	st := s.engine.Stats()
	s.logger.Info("synth stopped", "blocks", st.Blocks, "droppedEvents", st.DroppedEvents, "droppedNotes", st.DroppedNotes)
	return err
}

// NoteOn starts note, counted in semitones from middle C. It reports false
// if the event queue was full.
func (s *Synth) NoteOn(note int) bool {
	return s.engine.NoteOn(note)
}

// NoteOff releases note. Releasing a silent note does nothing.
func (s *Synth) NoteOff(note int) bool {
	return s.engine.NoteOff(note)
}

// Process renders directly from the engine. It is for callers that drive
// their own output, such as offline rendering, and must not be mixed with
// Start.
func (s *Synth) Process(dst []float32) {
	s.engine.Process(dst)
}

func (s *Synth) Patch() Patch { return s.engine.Patch() }

// ApplyPatch publishes p after clamping every field into range.
func (s *Synth) ApplyPatch(p Patch) {
	s.engine.SetPatch(p)
}

// SetOscillator replaces one oscillator slot. Out-of-range values are
// clamped.
func (s *Synth) SetOscillator(slot int, cfg OscillatorConfig) error {
	if slot < 0 || slot >= intsynth.Slots {
		return fmt.Errorf("oscillator slot %d out of range", slot)
	}
	s.engine.UpdatePatch(func(p *Patch) { p.Oscillators[slot] = cfg })
	return nil
}

// SetEnvelope replaces one envelope. Out-of-range values are clamped.
func (s *Synth) SetEnvelope(index int, cfg EnvelopeConfig) error {
	if index < 0 || index >= intsynth.Slots {
		return fmt.Errorf("envelope %d out of range", index)
	}
	s.engine.UpdatePatch(func(p *Patch) { p.Envelopes[index] = cfg })
	return nil
}

// SetMasterVolume sets the linear output gain, clamped to [0,1].
func (s *Synth) SetMasterVolume(volume float64) {
	s.engine.UpdatePatch(func(p *Patch) { p.MasterVolume = volume })
}

func (s *Synth) MasterVolume() float64 {
	return s.engine.Patch().MasterVolume
}

// SetMasterVolumeDB sets the output gain in decibels, clamped to [-96,0].
// -96 dB is silence.
func (s *Synth) SetMasterVolumeDB(db float64) {
	s.SetMasterVolume(intsynth.DBToGain(db))
}

func (s *Synth) MasterVolumeDB() float64 {
	return intsynth.GainToDB(s.MasterVolume())
}

func (s *Synth) Stats() Stats { return s.engine.Stats() }
