package audio

import (
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
)

type malgoOutput struct {
	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

func openMalgo(cfg Config, src SampleSource) (Output, error) {
	log := cfg.logger()
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		log.Debug("miniaudio", "msg", strings.TrimSpace(msg))
	})
	if err != nil {
		return nil, err
	}
	dc := malgo.DefaultDeviceConfig(malgo.Playback)
	dc.Playback.Format = malgo.FormatF32
	dc.Playback.Channels = uint32(cfg.Channels)
	dc.SampleRate = uint32(cfg.SampleRate)
	if cfg.BufferFrames > 0 {
		dc.PeriodSizeInFrames = uint32(cfg.BufferFrames)
	}

	reader := NewStreamReader(src, cfg.Channels)
	reader.Grow(4096)
	send := func(out, _ []byte, frames uint32) {
		if frames == 0 {
			return
		}
		// Read never fails; EOF only matters to pull players.
		_, _ = reader.Read(out[:int(frames)*4*cfg.Channels])
	}
	device, err := malgo.InitDevice(mctx.Context, dc, malgo.DeviceCallbacks{Data: send})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, err
	}
	return &malgoOutput{ctx: mctx, device: device}, nil
}

func (o *malgoOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.device == nil {
		return nil
	}
	return o.device.Start()
}

func (o *malgoOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.device == nil {
		return nil
	}
	err := o.device.Stop()
	o.device.Uninit()
	o.device = nil
	if uerr := o.ctx.Uninit(); err == nil {
		err = uerr
	}
	o.ctx.Free()
	return err
}
