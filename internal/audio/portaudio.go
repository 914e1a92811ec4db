package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

type portAudioOutput struct {
	mu     sync.Mutex
	stream *portaudio.Stream
}

func openPortAudio(cfg Config, src SampleSource) (Output, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	frames := portaudio.FramesPerBufferUnspecified
	if cfg.BufferFrames > 0 {
		frames = cfg.BufferFrames
	}
	// Interleaved callback: out holds frames*channels samples.
	stream, err := portaudio.OpenDefaultStream(0, cfg.Channels, float64(cfg.SampleRate), frames, func(out []float32) {
		src.Process(out)
	})
	if err != nil {
		// ignore Terminate error
		portaudio.Terminate()
		return nil, err
	}
	return &portAudioOutput{stream: stream}, nil
}

func (o *portAudioOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stream == nil {
		return nil
	}
	return o.stream.Start()
}

func (o *portAudioOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stream == nil {
		return nil
	}
	err := o.stream.Stop()
	if cerr := o.stream.Close(); err == nil {
		err = cerr
	}
	o.stream = nil
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
