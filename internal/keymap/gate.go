package keymap

import (
	"time"
	"unicode"
)

// DefaultHold covers the initial auto-repeat delay of most terminals.
const DefaultHold = 600 * time.Millisecond

// Gate infers key releases for inputs that only report presses, such as a
// raw terminal. A key counts as held while auto-repeat keeps touching it and
// as released once it goes quiet for longer than Hold.
type Gate struct {
	Hold time.Duration
	seen map[rune]time.Time
}

func NewGate(hold time.Duration) *Gate {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Gate{Hold: hold, seen: make(map[rune]time.Time)}
}

// Touch records key r at now and reports whether it is a new press.
func (g *Gate) Touch(r rune, now time.Time) bool {
	r = unicode.ToLower(r)
	_, held := g.seen[r]
	g.seen[r] = now
	return !held
}

// Expire appends to dst every key not touched within Hold of now and stops
// tracking them.
func (g *Gate) Expire(now time.Time, dst []rune) []rune {
	for r, last := range g.seen {
		if now.Sub(last) > g.Hold {
			dst = append(dst, r)
			delete(g.seen, r)
		}
	}
	return dst
}

func (g *Gate) Held() int { return len(g.seen) }
