package phrase

import (
	"fmt"
	"strconv"
	"unicode"
)

var noteOffsets = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// middleOctave is the octave number whose C is note 0.
const middleOctave = 4

type Parser struct{ cfg ParserConfig }

func NewParser(cfg ParserConfig) *Parser { return &Parser{cfg: cfg} }

type parseState struct {
	tick       int
	octave     int
	defaultLen int
	resolution int
	gate       int
	bpm        float64
}

func (p *Parser) Parse(input string) (*Phrase, error) {
	st := parseState{
		octave:     p.cfg.DefaultOctave,
		defaultLen: p.cfg.Resolution / p.cfg.DefaultLValue,
		resolution: p.cfg.Resolution,
		gate:       p.cfg.DefaultGate,
		bpm:        p.cfg.DefaultBPM,
	}
	events := make([]Event, 0, 64)
	s := input
	i := 0
	for i < len(s) {
		ch := lower(s[i])
		if isSpace(ch) || ch == '|' {
			i++
			continue
		}
		switch {
		case isNote(ch):
			evt, next, err := parseNote(s, i, st)
			if err != nil {
				return nil, err
			}
			if evt.Note < (p.cfg.MinOctave-middleOctave)*12 || evt.Note >= (p.cfg.MaxOctave-middleOctave+1)*12 {
				return nil, fmt.Errorf("note out of range at %d", i)
			}
			st.tick += evt.Duration
			evt.Duration = gated(evt.Duration, st.gate)
			events = append(events, evt)
			i = next
		case ch == 'r':
			dur, next, err := parseLengthWithTie(s, i+1, st)
			if err != nil {
				return nil, err
			}
			events = append(events, Event{Type: EventRest, Tick: st.tick, Duration: dur})
			st.tick += dur
			i = next
		case ch == 'l':
			length, next, err := parseLengthToken(s, i+1, st)
			if err != nil {
				return nil, err
			}
			st.defaultLen = length
			i = next
		case ch == 't':
			val, next, err := parseNumberDefault(s, i+1, int(st.bpm))
			if err != nil {
				return nil, err
			}
			if val <= 0 {
				return nil, fmt.Errorf("tempo must be positive at %d", i)
			}
			st.bpm = float64(val)
			events = append(events, Event{Type: EventTempo, Tick: st.tick, Value: val})
			i = next
		case ch == 'o':
			val, next, err := parseNumberDefault(s, i+1, st.octave)
			if err != nil {
				return nil, err
			}
			if val < p.cfg.MinOctave || val > p.cfg.MaxOctave {
				return nil, fmt.Errorf("octave out of range at %d", i)
			}
			st.octave = val
			i = next
		case ch == '>':
			if st.octave >= p.cfg.MaxOctave {
				return nil, fmt.Errorf("octave out of range at %d", i)
			}
			st.octave++
			i++
		case ch == '<':
			if st.octave <= p.cfg.MinOctave {
				return nil, fmt.Errorf("octave out of range at %d", i)
			}
			st.octave--
			i++
		case ch == 'q':
			val, next, err := parseNumberDefault(s, i+1, st.gate)
			if err != nil {
				return nil, err
			}
			if val < 1 || val > 100 {
				return nil, fmt.Errorf("gate out of range at %d", i)
			}
			st.gate = val
			i = next
		default:
			return nil, fmt.Errorf("unexpected %q at %d", s[i], i)
		}
	}
	return &Phrase{
		Resolution: p.cfg.Resolution,
		BPM:        p.cfg.DefaultBPM,
		Events:     events,
		EndTick:    st.tick,
	}, nil
}

// Parse reads input with the default configuration.
func Parse(input string) (*Phrase, error) {
	return NewParser(DefaultParserConfig()).Parse(input)
}

func parseNote(s string, at int, st parseState) (Event, int, error) {
	base := noteOffsets[lower(s[at])]
	i, shift := at+1, 0
	for i < len(s) {
		c := s[i]
		if c == '#' || c == '+' {
			shift++
		} else if c == '-' {
			shift--
		} else {
			break
		}
		i++
	}
	dur, next, err := parseLengthWithTie(s, i, st)
	if err != nil {
		return Event{}, at, err
	}
	return Event{
		Type:     EventNote,
		Tick:     st.tick,
		Duration: dur,
		Note:     (st.octave-middleOctave)*12 + base + shift,
	}, next, nil
}

func parseLengthWithTie(s string, at int, st parseState) (int, int, error) {
	dur, i, err := parseLengthToken(s, at, st)
	if err != nil {
		return 0, at, err
	}
	for i < len(s) && s[i] == '^' {
		extra, next, e := parseLengthToken(s, i+1, st)
		if e != nil {
			return 0, at, e
		}
		dur += extra
		i = next
	}
	return dur, i, nil
}

func parseLengthToken(s string, at int, st parseState) (int, int, error) {
	val, i, err := parseNumberOptional(s, at)
	if err != nil {
		return 0, at, err
	}
	base := st.defaultLen
	if val == 0 {
		return 0, at, fmt.Errorf("zero length at %d", at)
	}
	if val > st.resolution {
		return 0, at, fmt.Errorf("length %d shorter than one tick at %d", val, at)
	}
	if val > 0 {
		base = st.resolution / val
	}
	dots := 0
	for i < len(s) && s[i] == '.' {
		dots++
		i++
	}
	dur, term := base, base
	for k := 0; k < dots; k++ {
		term >>= 1
		dur += term
	}
	return dur, i, nil
}

func parseNumberDefault(s string, at int, def int) (int, int, error) {
	v, i, err := parseNumberOptional(s, at)
	if err != nil {
		return 0, at, err
	}
	if v == -1 {
		return def, i, nil
	}
	return v, i, nil
}

func parseNumberOptional(s string, at int) (int, int, error) {
	i, start := at, at
	for i < len(s) && unicode.IsDigit(rune(s[i])) {
		i++
	}
	if start == i {
		return -1, i, nil
	}
	n, err := strconv.Atoi(s[start:i])
	if err != nil {
		return 0, at, err
	}
	return n, i, nil
}

func gated(dur int, gatePercent int) int {
	g := dur * gatePercent / 100
	if g <= 0 && dur > 0 {
		return 1
	}
	return g
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func isSpace(b byte) bool { return b == ' ' || b == '\n' || b == '\r' || b == '\t' }
func isNote(b byte) bool  { _, ok := noteOffsets[b]; return ok }
