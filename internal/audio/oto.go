package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process, like ebiten.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
	otoRate int
	otoChan int
)

type otoOutput struct {
	mu      sync.Mutex
	player  *oto.Player
	started bool
}

func sharedOtoContext(cfg Config) (*oto.Context, error) {
	otoOnce.Do(func() {
		opts := &oto.NewContextOptions{
			SampleRate:   cfg.SampleRate,
			ChannelCount: cfg.Channels,
			Format:       oto.FormatFloat32LE,
		}
		if cfg.BufferFrames > 0 {
			opts.BufferSize = time.Duration(cfg.BufferFrames) * time.Second / time.Duration(cfg.SampleRate)
		}
		ctx, ready, err := oto.NewContext(opts)
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx, otoRate, otoChan = ctx, cfg.SampleRate, cfg.Channels
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != cfg.SampleRate || otoChan != cfg.Channels {
		return nil, errors.New("oto context already initialized with a different format")
	}
	return otoCtx, nil
}

func openOto(cfg Config, src SampleSource) (Output, error) {
	ctx, err := sharedOtoContext(cfg)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(src, cfg.Channels)
	reader.Grow(4096)
	return &otoOutput{player: ctx.NewPlayer(reader)}, nil
}

func (o *otoOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return errors.New("oto output closed")
	}
	if !o.started {
		o.player.Play()
		o.started = true
	}
	return nil
}

func (o *otoOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	o.started = false
	return err
}
