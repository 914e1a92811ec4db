// Command beepboop-term plays the synth from a terminal keyboard, with
// optional MIDI input and live preset reloading.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cbegin/beepboop-go"
	"github.com/cbegin/beepboop-go/internal/audio"
	"github.com/cbegin/beepboop-go/internal/keymap"
	"github.com/cbegin/beepboop-go/internal/midiin"
	"github.com/cbegin/beepboop-go/internal/preset"
)

var errQuit = errors.New("quit")

func initLogger(debug bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func main() {
	var (
		sampleRate = flag.Int("sample-rate", beepboop.DefaultSampleRate, "output sample rate")
		backend    = flag.String("backend", audio.DefaultBackend, "audio output: "+strings.Join(audio.Backends(), "|"))
		presetPath = flag.String("preset", "beepboop.json", "preset JSON file, created with the default sound if missing")
		midiPort   = flag.String("midi", "", "MIDI input name to listen on, or \"any\" for the first one")
		polyphony  = flag.Int("voices", 32, "voice pool size")
		hold       = flag.Duration("hold", keymap.DefaultHold, "release a key after this long without auto-repeat")
		list       = flag.Bool("list", false, "list MIDI inputs and exit")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	logger := initLogger(*debug, crlfWriter{os.Stderr})

	if *list {
		ports, err := midiin.Ports()
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	p, err := preset.Read(*presetPath)
	if err != nil {
		log.Fatal(err)
	}
	patch, err := p.Patch()
	if err != nil {
		log.Fatal(err)
	}
	s, err := beepboop.New(*sampleRate,
		beepboop.WithBackend(*backend),
		beepboop.WithPolyphony(*polyphony),
		beepboop.WithPatch(patch),
		beepboop.WithLogger(logger),
		beepboop.WithSeed(uint64(time.Now().UnixNano())),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(s, logger, *presetPath, *midiPort, *hold); err != nil {
		log.Fatal(err)
	}
}

func run(s *beepboop.Synth, logger *slog.Logger, presetPath, midiPort string, hold time.Duration) error {
	if err := s.Start(); err != nil {
		return err
	}
	defer s.Close()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, old)
	}

	fmt.Print("keys z..m and q..p play, arrows change octave, esc quits\r\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	inputs := make(chan input, 64)
	// Reads from stdin can't be interrupted; the goroutine ends with the process.
	go readInputs(os.Stdin, inputs)

	g.Go(func() error {
		return play(ctx, s, inputs, hold)
	})
	g.Go(func() error {
		err := preset.Watch(ctx, presetPath, func(p *preset.Preset) {
			patch, err := p.Patch()
			if err != nil {
				logger.Warn("preset rejected", "err", err)
				return
			}
			s.ApplyPatch(patch)
			logger.Info("preset reloaded", "name", p.Name)
		}, func(err error) {
			logger.Warn("preset reload failed", "err", err)
		})
		if err != nil {
			logger.Warn("preset watch disabled", "err", err)
			return nil
		}
		<-ctx.Done()
		return nil
	})
	if midiPort != "" {
		g.Go(func() error {
			name := midiPort
			if name == "any" {
				name = ""
			}
			l, err := midiin.Open(name, s, logger)
			if err != nil {
				logger.Warn("MIDI input disabled", "err", err)
				return nil
			}
			<-ctx.Done()
			return l.Close()
		})
	}
	g.Go(func() error {
		t := time.NewTicker(250 * time.Millisecond)
		defer t.Stop()
		var last beepboop.Stats
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				st := s.Stats()
				if st.DroppedNotes != last.DroppedNotes || st.DroppedEvents != last.DroppedEvents {
					logger.Warn("notes dropped", "notes", st.DroppedNotes, "events", st.DroppedEvents)
				}
				logger.Debug("engine", "voices", st.ActiveVoices, "blocks", st.Blocks)
				last = st
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

// play turns key presses into notes. Terminals report no key releases, so
// a Gate infers them from the gaps in auto-repeat.
func play(ctx context.Context, s *beepboop.Synth, inputs <-chan input, hold time.Duration) error {
	tr := keymap.NewTranslator()
	gate := keymap.NewGate(hold)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	var expired []rune
	release := func(r rune) {
		if note, ok := tr.Release(r); ok {
			s.NoteOff(note)
		}
	}
	defer func() {
		for _, note := range tr.ReleaseAll() {
			s.NoteOff(note)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case in, ok := <-inputs:
			if !ok || in.quit {
				return errQuit
			}
			if in.octave != 0 {
				fmt.Printf("octave %+d\r\n", tr.ShiftOctave(in.octave))
				continue
			}
			if _, mapped := keymap.Semitone(in.key); !mapped {
				continue
			}
			if !gate.Touch(in.key, time.Now()) {
				continue
			}
			if note, ok := tr.Press(in.key); ok {
				s.NoteOn(note)
			}
		case now := <-tick.C:
			expired = gate.Expire(now, expired[:0])
			for _, r := range expired {
				release(r)
			}
		}
	}
}
