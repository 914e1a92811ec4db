// Package synth holds the real-time engine: patch snapshots, the note event
// queue, the voice pool and the render loop pulled by the audio device.
package synth

import (
	"errors"
	"sync"
	"sync/atomic"
)

type Params struct {
	Polyphony   int
	Channels    int // interleaved output channels, each carrying the same signal
	QueueSize   int
	BlockFrames int // frames rendered per internal chunk
	Seed        uint64
}

func DefaultParams() Params {
	return Params{
		Polyphony:   32,
		Channels:    2,
		QueueSize:   256,
		BlockFrames: 512,
		Seed:        1,
	}
}

// Stats is a point-in-time copy of engine counters.
type Stats struct {
	Blocks        uint64
	Frames        uint64
	DroppedEvents uint64 // queue full
	DroppedNotes  uint64 // voice pool full
	ActiveVoices  int
}

// Engine is the render loop. Control methods may be called from any
// goroutine; Process must only be called from the audio context.
type Engine struct {
	sampleRate int
	params     Params
	manager    *Manager
	queue      *Queue
	patch      atomic.Pointer[Patch]
	scratch    []float32
	seq        atomic.Uint64

	writeMu sync.Mutex // serialises patch writers only

	blocks        atomic.Uint64
	frames        atomic.Uint64
	droppedEvents atomic.Uint64
	droppedNotes  atomic.Uint64
	activeVoices  atomic.Int64
}

func New(sampleRate int, params Params) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	def := DefaultParams()
	if params.Polyphony <= 0 {
		params.Polyphony = def.Polyphony
	}
	if params.Channels <= 0 {
		params.Channels = def.Channels
	}
	if params.QueueSize <= 0 {
		params.QueueSize = def.QueueSize
	}
	if params.BlockFrames <= 0 {
		params.BlockFrames = def.BlockFrames
	}
	p := DefaultPatch()
	e := &Engine{
		sampleRate: sampleRate,
		params:     params,
		manager:    NewManager(sampleRate, params.Polyphony, params.Seed, &p),
		queue:      NewQueue(params.QueueSize),
		scratch:    make([]float32, params.BlockFrames),
	}
	e.patch.Store(&p)
	return e, nil
}

func (e *Engine) SampleRate() int { return e.sampleRate }
func (e *Engine) Channels() int   { return e.params.Channels }

// SetPatch clamps p and publishes it. The render loop picks it up at the
// start of its next block.
func (e *Engine) SetPatch(p Patch) {
	c := p.Clamp()
	e.writeMu.Lock()
	e.patch.Store(&c)
	e.writeMu.Unlock()
}

// UpdatePatch applies fn to a copy of the current patch and publishes the
// result. Concurrent updates are serialised so none is lost.
func (e *Engine) UpdatePatch(fn func(*Patch)) Patch {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	c := *e.patch.Load()
	fn(&c)
	c = c.Clamp()
	e.patch.Store(&c)
	return c
}

// Patch returns a copy of the most recently published snapshot.
func (e *Engine) Patch() Patch {
	return *e.patch.Load()
}

// NoteOn queues a note start. It reports false if the queue was full.
func (e *Engine) NoteOn(note int) bool {
	return e.push(NoteOn, note)
}

// NoteOff queues a note release. It reports false if the queue was full.
func (e *Engine) NoteOff(note int) bool {
	return e.push(NoteOff, note)
}

func (e *Engine) push(kind EventKind, note int) bool {
	ok := e.queue.Push(Event{Kind: kind, Note: note, Seq: e.seq.Add(1)})
	if !ok {
		e.droppedEvents.Add(1)
	}
	return ok
}

// Process fills dst with interleaved frames. It never blocks or allocates.
func (e *Engine) Process(dst []float32) {
	ch := e.params.Channels
	frames := len(dst) / ch
	e.drain()
	p := e.patch.Load()
	e.manager.SetPatch(p)
	gain := float32(p.MasterVolume)

	for off := 0; off < frames; {
		n := frames - off
		if n > len(e.scratch) {
			n = len(e.scratch)
		}
		buf := e.scratch[:n]
		e.manager.RenderBlock(buf)
		out := dst[off*ch : (off+n)*ch]
		if ch == 1 {
			for i, s := range buf {
				out[i] = s * gain
			}
		} else {
			for i, s := range buf {
				s *= gain
				frame := out[i*ch : i*ch+ch]
				for c := range frame {
					frame[c] = s
				}
			}
		}
		off += n
	}
	clear(dst[frames*ch:])

	e.blocks.Add(1)
	e.frames.Add(uint64(frames))
	e.activeVoices.Store(int64(e.manager.ActiveVoices()))
}

func (e *Engine) drain() {
	before := e.manager.Dropped()
	for {
		ev, ok := e.queue.Pop()
		if !ok {
			break
		}
		switch ev.Kind {
		case NoteOn:
			e.manager.NoteOn(ev.Note)
		case NoteOff:
			e.manager.NoteOff(ev.Note)
		}
	}
	if d := e.manager.Dropped() - before; d > 0 {
		e.droppedNotes.Add(d)
	}
}

func (e *Engine) Stats() Stats {
	return Stats{
		Blocks:        e.blocks.Load(),
		Frames:        e.frames.Load(),
		DroppedEvents: e.droppedEvents.Load(),
		DroppedNotes:  e.droppedNotes.Load(),
		ActiveVoices:  int(e.activeVoices.Load()),
	}
}
