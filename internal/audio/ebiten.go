package audio

import (
	"fmt"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

type ebitenOutput struct {
	mu     sync.Mutex
	player *ebitaudio.Player
	reader *StreamReader
	closed bool
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// sharedAudioContext returns the process-wide ebiten audio context. Ebiten
// allows only one, so every later caller must ask for the same rate.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func openEbiten(cfg Config, src SampleSource) (Output, error) {
	if cfg.Channels != 2 {
		return nil, fmt.Errorf("ebiten output is stereo only, got %d channels", cfg.Channels)
	}
	ctx, err := sharedAudioContext(cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(src, cfg.Channels)
	reader.Grow(4096)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	if cfg.BufferFrames > 0 {
		pl.SetBufferSize(time.Duration(cfg.BufferFrames) * time.Second / time.Duration(cfg.SampleRate))
	}
	return &ebitenOutput{player: pl, reader: reader}, nil
}

func (o *ebitenOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return fmt.Errorf("ebiten output closed")
	}
	o.player.Play()
	return nil
}

func (o *ebitenOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	o.player.Pause()
	if err := o.player.Close(); err != nil {
		return err
	}
	return o.reader.Close()
}
