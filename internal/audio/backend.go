// Package audio connects a SampleSource to an output device. Several
// driver stacks are supported; all of them pull frames from the source on
// the driver's own goroutine.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

var ErrUnknownBackend = errors.New("unknown audio backend")

// Output is an opened device stream.
type Output interface {
	Start() error
	// Stop halts the stream and releases the device. It is safe to call
	// more than once.
	Stop() error
}

type Config struct {
	SampleRate int
	Channels   int
	// BufferFrames is a latency hint; zero lets the driver choose.
	BufferFrames int
	Logger       *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

type opener func(cfg Config, src SampleSource) (Output, error)

var backends = map[string]opener{
	"ebiten":    openEbiten,
	"oto":       openOto,
	"portaudio": openPortAudio,
	"malgo":     openMalgo,
}

// DefaultBackend is used when Open is given an empty name.
const DefaultBackend = "ebiten"

// Backends lists the names accepted by Open.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open prepares an output stream on the named backend. The stream is not
// started.
func Open(name string, cfg Config, src SampleSource) (Output, error) {
	if name == "" {
		name = DefaultBackend
	}
	open, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, name)
	}
	if cfg.SampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 2
	}
	out, err := open(cfg, src)
	if err != nil {
		return nil, fmt.Errorf("open %s output: %w", name, err)
	}
	cfg.logger().Debug("audio output opened", "backend", name, "sampleRate", cfg.SampleRate, "channels", cfg.Channels)
	return out, nil
}
