package synth

import (
	"math/rand/v2"

	"github.com/cbegin/beepboop-go/internal/envelope"
	"github.com/cbegin/beepboop-go/internal/osc"
)

type slot struct {
	unison osc.Unison
	env    envelope.ADSR
}

// voice is one sounding note. It lives in a fixed pool slot and is reused.
type voice struct {
	active bool
	note   int
	id     uint64
	freq   float64
	slots  [Slots]slot
}

func (v *voice) start(note int, id uint64, p *Patch, sampleRate float64, rng *rand.Rand) {
	v.active = true
	v.note = note
	v.id = id
	v.freq = NoteFreq(note)
	for i := range v.slots {
		oc := p.Oscillators[i]
		s := &v.slots[i]
		s.unison.Reset(oc.unisonConfig(), v.freq, sampleRate, p.PhaseStart, rng)
		s.env = envelope.New(p.Envelopes[oc.Envelope], sampleRate)
		s.env.Trigger()
	}
}

func (v *voice) configure(p *Patch) {
	for i := range v.slots {
		oc := p.Oscillators[i]
		v.slots[i].unison.Configure(oc.unisonConfig())
		v.slots[i].env.SetConfig(p.Envelopes[oc.Envelope])
	}
}

func (v *voice) release() {
	for i := range v.slots {
		v.slots[i].env.Release()
	}
}

func (v *voice) releasing() bool {
	for i := range v.slots {
		if v.slots[i].env.Releasing() {
			return true
		}
	}
	return false
}

func (v *voice) render() float64 {
	var out float64
	for i := range v.slots {
		s := &v.slots[i]
		out += s.unison.Next() * s.env.Next()
	}
	return out
}

func (v *voice) finished() bool {
	for i := range v.slots {
		if !v.slots[i].env.Done() {
			return false
		}
	}
	return true
}
