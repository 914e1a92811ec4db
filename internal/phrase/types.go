// Package phrase parses a compact note notation and plays it into the
// engine with sample-accurate timing.
//
// Supported commands:
//
//	c d e f g a b  notes, followed by + # (sharp) or - (flat), a length and dots
//	r              rest with optional length
//	l<n>           default length (4 = quarter note)
//	o<n>           octave, o4 holds middle C
//	< >            octave down / up
//	t<n>           tempo in quarter notes per minute
//	q<n>           gate, percent of the note length that is held
//	^<n>           tie, extends the previous length
//	|              bar line, ignored
package phrase

type EventType int

const (
	EventNote EventType = iota + 1
	EventRest
	EventTempo
)

type Event struct {
	Type     EventType
	Tick     int
	Duration int // ticks the note is held
	Note     int // semitones from middle C
	Value    int // tempo in BPM for EventTempo
}

type Phrase struct {
	Resolution int // ticks per whole note
	BPM        float64
	Events     []Event
	EndTick    int
}

type ParserConfig struct {
	Resolution    int
	DefaultBPM    float64
	DefaultLValue int
	DefaultOctave int
	MinOctave     int
	MaxOctave     int
	DefaultGate   int
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		Resolution:    1920,
		DefaultBPM:    120,
		DefaultLValue: 4,
		DefaultOctave: 4,
		MinOctave:     0,
		MaxOctave:     8,
		DefaultGate:   90,
	}
}
