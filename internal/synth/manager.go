package synth

import "math/rand/v2"

// Manager owns a fixed pool of voices. It is not safe for concurrent use;
// only the audio context touches it.
type Manager struct {
	sampleRate float64
	voices     []voice
	patch      *Patch
	nextID     uint64
	rng        *rand.Rand
	dropped    uint64
}

// NewManager preallocates polyphony voices. seed fixes the random unison
// phases so renders are reproducible.
func NewManager(sampleRate int, polyphony int, seed uint64, patch *Patch) *Manager {
	if polyphony < 1 {
		polyphony = 1
	}
	if patch == nil {
		p := DefaultPatch()
		patch = &p
	}
	return &Manager{
		sampleRate: float64(sampleRate),
		voices:     make([]voice, polyphony),
		patch:      patch,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SetPatch points the manager at a new snapshot and reconfigures every
// sounding voice.
func (m *Manager) SetPatch(p *Patch) {
	if p == nil || p == m.patch {
		return
	}
	m.patch = p
	for i := range m.voices {
		if m.voices[i].active {
			m.voices[i].configure(p)
		}
	}
}

// NoteOn starts a voice for note. A voice already holding the note is
// replaced in place by a fresh one. It reports false when every slot is
// busy and the note was dropped.
func (m *Manager) NoteOn(note int) bool {
	idx := m.find(note)
	if idx < 0 {
		for i := range m.voices {
			if !m.voices[i].active {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		m.dropped++
		return false
	}
	m.nextID++
	m.voices[idx].start(note, m.nextID, m.patch, m.sampleRate, m.rng)
	return true
}

// NoteOff releases the voice holding note. Unknown notes are ignored.
func (m *Manager) NoteOff(note int) {
	if idx := m.find(note); idx >= 0 {
		m.voices[idx].release()
	}
}

// AllOff releases every voice.
func (m *Manager) AllOff() {
	for i := range m.voices {
		if m.voices[i].active {
			m.voices[i].release()
		}
	}
}

func (m *Manager) find(note int) int {
	for i := range m.voices {
		if m.voices[i].active && m.voices[i].note == note {
			return i
		}
	}
	return -1
}

// RenderBlock overwrites out with the sum of all voices, one sample per
// element, and frees voices whose envelopes finished.
func (m *Manager) RenderBlock(out []float32) {
	clear(out)
	for i := range m.voices {
		v := &m.voices[i]
		if !v.active {
			continue
		}
		for j := range out {
			out[j] += float32(v.render())
		}
		if v.finished() {
			v.active = false
		}
	}
}

// ActiveVoices counts voices still sounding, including release tails.
func (m *Manager) ActiveVoices() int {
	n := 0
	for i := range m.voices {
		if m.voices[i].active {
			n++
		}
	}
	return n
}

// Held reports whether note has a voice that is not yet releasing.
func (m *Manager) Held(note int) bool {
	idx := m.find(note)
	return idx >= 0 && !m.voices[idx].releasing()
}

func (m *Manager) Polyphony() int { return len(m.voices) }

// Dropped counts note-ons lost to a full pool.
func (m *Manager) Dropped() uint64 { return m.dropped }

// VoiceID returns the instance id of the voice holding note, or 0.
func (m *Manager) VoiceID(note int) uint64 {
	if idx := m.find(note); idx >= 0 {
		return m.voices[idx].id
	}
	return 0
}
