package synth

import (
	"sync"
	"testing"
)

func TestManagerRetriggerReplacesVoice(t *testing.T) {
	m := NewManager(48000, 8, 1, nil)
	m.NoteOn(4)
	first := m.VoiceID(4)
	buf := make([]float32, 128)
	m.RenderBlock(buf)
	m.NoteOn(4)
	if got := m.ActiveVoices(); got != 1 {
		t.Fatalf("active voices = %d, want 1", got)
	}
	if second := m.VoiceID(4); second == first || second == 0 {
		t.Fatalf("retrigger kept voice id %d", second)
	}
	if !m.Held(4) {
		t.Fatalf("retriggered note should be held")
	}
}

func TestManagerRetriggerDuringRelease(t *testing.T) {
	m := NewManager(48000, 8, 1, nil)
	m.NoteOn(4)
	m.RenderBlock(make([]float32, 64))
	m.NoteOff(4)
	if m.Held(4) {
		t.Fatalf("released note still held")
	}
	m.NoteOn(4)
	if m.ActiveVoices() != 1 || !m.Held(4) {
		t.Fatalf("retrigger during release: active=%d held=%v", m.ActiveVoices(), m.Held(4))
	}
}

func TestManagerDropsWhenPoolFull(t *testing.T) {
	m := NewManager(48000, 2, 1, nil)
	if !m.NoteOn(0) || !m.NoteOn(1) {
		t.Fatalf("expected first two notes to start")
	}
	if m.NoteOn(2) {
		t.Fatalf("third note should be dropped")
	}
	if m.Dropped() != 1 || m.ActiveVoices() != 2 {
		t.Fatalf("dropped=%d active=%d", m.Dropped(), m.ActiveVoices())
	}
}

func TestManagerFreesFinishedVoices(t *testing.T) {
	p := DefaultPatch()
	for i := range p.Envelopes {
		p.Envelopes[i] = EnvelopeConfig{AttackMs: 1, DecayMs: 1, SustainLevel: 0.5, ReleaseMs: 1}
	}
	m := NewManager(48000, 4, 1, &p)
	m.NoteOn(0)
	m.NoteOn(7)
	buf := make([]float32, 256)
	m.RenderBlock(buf)
	m.NoteOff(0)
	m.RenderBlock(buf)
	if got := m.ActiveVoices(); got != 1 {
		t.Fatalf("active voices = %d, want 1", got)
	}
	m.AllOff()
	m.RenderBlock(buf)
	if got := m.ActiveVoices(); got != 0 {
		t.Fatalf("active voices = %d after AllOff", got)
	}
	m.RenderBlock(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %v with no voices", i, s)
		}
	}
}

func TestManagerSeedReproducible(t *testing.T) {
	p := DefaultPatch()
	p.Oscillators[0].Unison = 5
	p.Oscillators[0].Tune = 30
	render := func(seed uint64) []float32 {
		m := NewManager(44100, 4, seed, &p)
		m.NoteOn(0)
		m.NoteOn(4)
		out := make([]float32, 2048)
		m.RenderBlock(out)
		return out
	}
	a, b, c := render(9), render(9), render(10)
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs for equal seeds", i)
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Fatalf("different seeds rendered identical output")
	}
}

func TestQueueFIFOAndBounds(t *testing.T) {
	q := NewQueue(3)
	if q.Cap() != 4 {
		t.Fatalf("cap = %d, want 4", q.Cap())
	}
	for i := 0; i < 4; i++ {
		if !q.Push(Event{Kind: NoteOn, Note: i}) {
			t.Fatalf("push %d failed", i)
		}
	}
	if q.Push(Event{Kind: NoteOn, Note: 99}) {
		t.Fatalf("push into full queue succeeded")
	}
	for i := 0; i < 4; i++ {
		ev, ok := q.Pop()
		if !ok || ev.Note != i {
			t.Fatalf("pop %d = %+v, %v", i, ev, ok)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("pop from empty queue succeeded")
	}
	// Wraps around after draining.
	for round := 0; round < 10; round++ {
		q.Push(Event{Note: round})
		if ev, ok := q.Pop(); !ok || ev.Note != round {
			t.Fatalf("round %d: %+v %v", round, ev, ok)
		}
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers, per = 4, 500
	q := NewQueue(producers * per)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < per; i++ {
				for !q.Push(Event{Kind: NoteOn, Note: p*per + i}) {
				}
			}
		}(p)
	}
	wg.Wait()
	seen := make(map[int]bool)
	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	for {
		ev, ok := q.Pop()
		if !ok {
			break
		}
		p, i := ev.Note/per, ev.Note%per
		if i <= last[p] {
			t.Fatalf("producer %d out of order: %d after %d", p, i, last[p])
		}
		last[p] = i
		seen[ev.Note] = true
	}
	if len(seen) != producers*per {
		t.Fatalf("received %d events, want %d", len(seen), producers*per)
	}
}
