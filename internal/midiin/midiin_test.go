package midiin

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func TestTranslate(t *testing.T) {
	for _, tc := range []struct {
		name string
		msg  midi.Message
		on   bool
		note int
		ok   bool
	}{
		{"middle c on", midi.NoteOn(0, 60, 100), true, 0, true},
		{"low a off", midi.NoteOff(3, 45), false, -15, true},
		{"zero velocity is off", midi.NoteOn(0, 72, 0), false, 12, true},
		{"control change", midi.ControlChange(0, 7, 100), false, 0, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			on, note, ok := Translate(tc.msg)
			if on != tc.on || note != tc.note || ok != tc.ok {
				t.Fatalf("Translate = %v %d %v, want %v %d %v", on, note, ok, tc.on, tc.note, tc.ok)
			}
		})
	}
}
