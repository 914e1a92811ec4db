package phrase

import "sort"

// Target is the engine side of playback: note events are queued and take
// effect at the start of the next Process call.
type Target interface {
	NoteOn(note int) bool
	NoteOff(note int) bool
	Process(dst []float32)
}

type cue struct {
	frame int64
	on    bool
	note  int
}

// Sequencer plays a phrase into a Target, splitting render calls at event
// frames so every note starts and stops on its exact sample.
type Sequencer struct {
	target   Target
	channels int
	cues     []cue
	next     int
	frame    int64
	endFrame int64
}

func New(ph *Phrase, target Target, sampleRate int, channels int) *Sequencer {
	if channels < 1 {
		channels = 1
	}
	s := &Sequencer{target: target, channels: channels}
	tm := newTempoMap(ph, sampleRate)
	for _, ev := range ph.Events {
		if ev.Type != EventNote {
			continue
		}
		// A note always lasts at least one frame, or its release would
		// sort ahead of its start.
		on := tm.frame(ev.Tick)
		off := max(tm.frame(ev.Tick+ev.Duration), on+1)
		s.cues = append(s.cues,
			cue{frame: on, on: true, note: ev.Note},
			cue{frame: off, on: false, note: ev.Note},
		)
		s.endFrame = max(s.endFrame, off)
	}
	// Releases sort ahead of starts on the same frame so a repeated note
	// is not cut by its predecessor's release.
	sort.SliceStable(s.cues, func(i, j int) bool {
		if s.cues[i].frame != s.cues[j].frame {
			return s.cues[i].frame < s.cues[j].frame
		}
		return !s.cues[i].on && s.cues[j].on
	})
	s.endFrame = max(s.endFrame, tm.frame(ph.EndTick))
	return s
}

// EndFrame is the frame at which the last note or rest ends.
func (s *Sequencer) EndFrame() int64 { return s.endFrame }

// Frame is the number of frames rendered so far.
func (s *Sequencer) Frame() int64 { return s.frame }

// Done reports whether every cue has been sent.
func (s *Sequencer) Done() bool { return s.next >= len(s.cues) }

func (s *Sequencer) Process(dst []float32) {
	ch := s.channels
	frames := int64(len(dst) / ch)
	var pos int64
	for pos < frames {
		for s.next < len(s.cues) && s.cues[s.next].frame <= s.frame {
			c := s.cues[s.next]
			if c.on {
				s.target.NoteOn(c.note)
			} else {
				s.target.NoteOff(c.note)
			}
			s.next++
		}
		n := frames - pos
		if s.next < len(s.cues) {
			n = min(n, s.cues[s.next].frame-s.frame)
		}
		s.target.Process(dst[pos*int64(ch) : (pos+n)*int64(ch)])
		pos += n
		s.frame += n
	}
}

type tempoPoint struct {
	tick  int
	frame float64
	bpm   float64
}

type tempoMap struct {
	points       []tempoPoint
	ticksPerBeat float64
	sampleRate   float64
}

func newTempoMap(ph *Phrase, sampleRate int) tempoMap {
	tm := tempoMap{
		points:       []tempoPoint{{tick: 0, frame: 0, bpm: ph.BPM}},
		ticksPerBeat: float64(ph.Resolution) / 4,
		sampleRate:   float64(sampleRate),
	}
	for _, ev := range ph.Events {
		if ev.Type != EventTempo {
			continue
		}
		f := tm.exact(ev.Tick)
		last := &tm.points[len(tm.points)-1]
		if last.tick == ev.Tick {
			last.bpm = float64(ev.Value)
			continue
		}
		tm.points = append(tm.points, tempoPoint{tick: ev.Tick, frame: f, bpm: float64(ev.Value)})
	}
	return tm
}

func (tm tempoMap) exact(tick int) float64 {
	p := tm.points[0]
	for _, q := range tm.points[1:] {
		if q.tick > tick {
			break
		}
		p = q
	}
	secs := float64(tick-p.tick) / tm.ticksPerBeat * 60 / p.bpm
	return p.frame + secs*tm.sampleRate
}

func (tm tempoMap) frame(tick int) int64 {
	return int64(tm.exact(tick) + 0.5)
}
