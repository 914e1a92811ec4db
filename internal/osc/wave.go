// Package osc generates raw waveforms and detuned unison stacks.
package osc

import (
	"fmt"
	"math"
	"strings"
)

const twoPi = math.Pi * 2

// Kind selects one of the fixed waveform shapes.
type Kind uint8

const (
	Sine Kind = iota
	Triangle
	Saw
	Square
	Pulse25
	kindCount
)

var kindNames = [kindCount]string{"sine", "triangle", "saw", "square", "pulse25"}

// Kinds lists every waveform in display order.
func Kinds() []Kind {
	return []Kind{Sine, Triangle, Saw, Square, Pulse25}
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Next cycles to the following waveform, wrapping after Pulse25.
func (k Kind) Next() Kind {
	return (k + 1) % kindCount
}

// Valid reports whether k names a known waveform.
func (k Kind) Valid() bool { return k < kindCount }

// MarshalText encodes k as its name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid waveform %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	kind, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind accepts the names produced by String, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "pulse", "pulse 25%":
		return Pulse25, nil
	case "tri":
		return Triangle, nil
	case "sawtooth":
		return Saw, nil
	}
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return Sine, fmt.Errorf("unknown waveform %q", s)
}

// Sample returns the value of waveform k at phase p, where one cycle spans
// [0,1). Phases outside that range are wrapped first.
func Sample(k Kind, p float64) float64 {
	p -= math.Floor(p)
	switch k {
	case Triangle:
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	case Saw:
		return 2*p - 1
	case Square:
		if p < 0.5 {
			return 1
		}
		return -1
	case Pulse25:
		if p < 0.25 {
			return 1
		}
		return -1
	default: // sine
		return math.Sin(twoPi * p)
	}
}
