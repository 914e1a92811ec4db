// Package keymap turns computer-keyboard keys into notes using a two-row
// piano layout with a movable octave.
package keymap

import "unicode"

const (
	MinOctave = -2
	MaxOctave = 2
)

// layout maps a key to semitones above middle C at octave shift 0. The
// bottom row starts at C on Z, the top row one octave up on Q.
var layout = map[rune]int{
	'z': 0, 's': 1, 'x': 2, 'd': 3, 'c': 4, 'v': 5, 'g': 6, 'b': 7, 'h': 8, 'n': 9, 'j': 10, 'm': 11,
	',': 12, 'l': 13, '.': 14, ';': 15, '/': 16,
	'q': 12, '2': 13, 'w': 14, '3': 15, 'e': 16, 'r': 17, '5': 18, 't': 19, '6': 20, 'y': 21, '7': 22, 'u': 23,
	'i': 24, '9': 25, 'o': 26, '0': 27, 'p': 28,
}

// Semitone looks up a key in the layout, ignoring case.
func Semitone(r rune) (int, bool) {
	s, ok := layout[unicode.ToLower(r)]
	return s, ok
}

// Keys returns the number of mapped keys.
func Keys() int { return len(layout) }

// Translator tracks the octave shift and which note each held key started,
// so releasing a key after an octave change still releases the right note.
// It is not safe for concurrent use.
type Translator struct {
	octave int
	held   map[rune]int
}

func NewTranslator() *Translator {
	return &Translator{held: make(map[rune]int)}
}

func (t *Translator) Octave() int { return t.octave }

// ShiftOctave moves the octave by delta, clamped to [MinOctave, MaxOctave],
// and returns the new value. Held notes are unaffected.
func (t *Translator) ShiftOctave(delta int) int {
	t.octave = min(max(t.octave+delta, MinOctave), MaxOctave)
	return t.octave
}

// Press returns the note for key r. It reports false for unmapped keys and
// for keys already held.
func (t *Translator) Press(r rune) (int, bool) {
	r = unicode.ToLower(r)
	s, ok := layout[r]
	if !ok {
		return 0, false
	}
	if _, down := t.held[r]; down {
		return 0, false
	}
	note := s + 12*t.octave
	t.held[r] = note
	return note, true
}

// Release returns the note started by key r. It reports false when r was
// not held.
func (t *Translator) Release(r rune) (int, bool) {
	r = unicode.ToLower(r)
	note, ok := t.held[r]
	if ok {
		delete(t.held, r)
	}
	return note, ok
}

// ReleaseAll forgets every held key and returns their notes.
func (t *Translator) ReleaseAll() []int {
	notes := make([]int, 0, len(t.held))
	for r, n := range t.held {
		notes = append(notes, n)
		delete(t.held, r)
	}
	return notes
}

func (t *Translator) HeldCount() int { return len(t.held) }
