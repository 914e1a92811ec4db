// Package midiin feeds notes from a MIDI input port into the synth.
package midiin

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// MiddleC is the MIDI key that maps to note 0.
const MiddleC = 60

// Sink receives notes counted in semitones from middle C.
type Sink interface {
	NoteOn(note int) bool
	NoteOff(note int) bool
}

type Listener struct {
	drv    *rtmididrv.Driver
	in     drivers.In
	stop   func()
	logger *slog.Logger
}

// Ports lists the available MIDI input names.
func Ports() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	defer drv.Close()
	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

// Open starts listening on the input whose name contains name, or on the
// first input when name is empty.
func Open(name string, sink Sink, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi driver: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("list midi inputs: %w", err)
	}
	var found drivers.In
	for _, in := range ins {
		if name == "" || strings.Contains(in.String(), name) {
			found = in
			break
		}
	}
	if found == nil {
		drv.Close()
		if name == "" {
			return nil, errors.New("no MIDI inputs")
		}
		return nil, fmt.Errorf("MIDI input %q not found", name)
	}
	if err := found.Open(); err != nil {
		drv.Close()
		return nil, err
	}
	l := &Listener{drv: drv, in: found, logger: logger}
	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		l.handle(msg, sink)
	}, midi.HandleError(func(err error) {
		logger.Warn("midi listener error", "device", found.String(), "err", err)
	}))
	if err != nil {
		_ = found.Close()
		drv.Close()
		return nil, err
	}
	l.stop = stop
	logger.Info("MIDI input connected", "device", found.String())
	return l, nil
}

func (l *Listener) handle(msg midi.Message, sink Sink) {
	if ev, note, ok := Translate(msg); ok {
		if ev {
			sink.NoteOn(note)
		} else {
			sink.NoteOff(note)
		}
		return
	}
	l.logger.Debug("unhandled MIDI message", "msg", msg.String())
}

// Translate reports whether msg is a note start (on == true) or note end
// and the note it carries relative to middle C.
func Translate(msg midi.Message) (on bool, note int, ok bool) {
	var ch, key, vel uint8
	if msg.GetNoteStart(&ch, &key, &vel) {
		return true, int(key) - MiddleC, true
	}
	if msg.GetNoteEnd(&ch, &key) {
		return false, int(key) - MiddleC, true
	}
	return false, 0, false
}

func (l *Listener) Close() error {
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
	err := l.in.Close()
	if derr := l.drv.Close(); err == nil {
		err = derr
	}
	return err
}
