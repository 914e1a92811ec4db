// Command beepboop is a desktop synthesizer: two oscillator panels, two
// envelopes and the computer keyboard as a two-octave piano.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/cbegin/beepboop-go"
	"github.com/cbegin/beepboop-go/internal/audio"
	"github.com/cbegin/beepboop-go/internal/keymap"
	"github.com/cbegin/beepboop-go/internal/preset"
)

const (
	windowW    = 1100
	windowH    = 720
	minWindowW = 980
	minWindowH = 680
)

// keyRunes maps the physical keys of the piano layout to the runes the
// keymap package understands.
var keyRunes = map[ebiten.Key]rune{
	ebiten.KeyZ: 'z', ebiten.KeyS: 's', ebiten.KeyX: 'x', ebiten.KeyD: 'd', ebiten.KeyC: 'c',
	ebiten.KeyV: 'v', ebiten.KeyG: 'g', ebiten.KeyB: 'b', ebiten.KeyH: 'h', ebiten.KeyN: 'n',
	ebiten.KeyJ: 'j', ebiten.KeyM: 'm', ebiten.KeyComma: ',', ebiten.KeyL: 'l', ebiten.KeyPeriod: '.',
	ebiten.KeySemicolon: ';', ebiten.KeySlash: '/',
	ebiten.KeyQ: 'q', ebiten.KeyDigit2: '2', ebiten.KeyW: 'w', ebiten.KeyDigit3: '3', ebiten.KeyE: 'e',
	ebiten.KeyR: 'r', ebiten.KeyDigit5: '5', ebiten.KeyT: 't', ebiten.KeyDigit6: '6', ebiten.KeyY: 'y',
	ebiten.KeyDigit7: '7', ebiten.KeyU: 'u', ebiten.KeyI: 'i', ebiten.KeyDigit9: '9', ebiten.KeyO: 'o',
	ebiten.KeyDigit0: '0', ebiten.KeyP: 'p',
}

type game struct {
	synth      *beepboop.Synth
	patch      beepboop.Patch
	voices     int
	presetPath string
	reloads    chan beepboop.Patch
	logger     *slog.Logger

	keys     *keymap.Translator
	keyBuf   []ebiten.Key
	panels   []*panelControls
	dragging *slider
	focused  bool

	status    string
	statusErr bool

	textCache map[string]*ebiten.Image
	viewW     int
	viewH     int
}

func newGame(s *beepboop.Synth, voices int, presetPath string, logger *slog.Logger) *game {
	g := &game{
		synth:      s,
		patch:      s.Patch(),
		voices:     voices,
		presetPath: presetPath,
		reloads:    make(chan beepboop.Patch, 1),
		logger:     logger,
		keys:       keymap.NewTranslator(),
		focused:    true,
		status:     "Ready",
		textCache:  make(map[string]*ebiten.Image, 1024),
		viewW:      windowW,
		viewH:      windowH,
	}
	g.panels = []*panelControls{g.oscPanel(0), g.oscPanel(1), g.envPanel(0), g.envPanel(1), g.masterPanel()}
	return g
}

func (g *game) Update() error {
	select {
	case p := <-g.reloads:
		g.patch = p
		g.synth.ApplyPatch(p)
		g.setStatus("Preset reloaded")
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.handleKeys()
	g.handleMouse()
	return nil
}

func (g *game) handleKeys() {
	if focused := ebiten.IsFocused(); focused != g.focused {
		g.focused = focused
		if !focused {
			// Key releases are not delivered while unfocused.
			for _, note := range g.keys.ReleaseAll() {
				g.synth.NoteOff(note)
			}
		}
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp), inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.setStatus(fmt.Sprintf("Octave: %+d", g.keys.ShiftOctave(1)))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown), inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.setStatus(fmt.Sprintf("Octave: %+d", g.keys.ShiftOctave(-1)))
	}

	g.keyBuf = inpututil.AppendJustReleasedKeys(g.keyBuf[:0])
	for _, k := range g.keyBuf {
		if r, ok := keyRunes[k]; ok {
			if note, ok := g.keys.Release(r); ok {
				g.synth.NoteOff(note)
			}
		}
	}
	g.keyBuf = inpututil.AppendJustPressedKeys(g.keyBuf[:0])
	for _, k := range g.keyBuf {
		if r, ok := keyRunes[k]; ok {
			if note, ok := g.keys.Press(r); ok && !g.synth.NoteOn(note) {
				g.setError("event queue full")
			}
		}
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		for _, p := range g.panels {
			for _, b := range p.buttons {
				if pointInRect(mx, my, b.rect) {
					b.click()
					g.synth.ApplyPatch(g.patch)
					return
				}
			}
			for _, s := range p.sliders {
				if !pointInRect(mx, my, s.rect) {
					continue
				}
				if ebiten.IsKeyPressed(ebiten.KeyControl) {
					s.set(s.def)
				} else {
					g.dragging = s
					s.setFromMouse(mx)
				}
				g.synth.ApplyPatch(g.patch)
				g.setStatus(s.label(s.get()))
				return
			}
		}
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = nil
	}
	if g.dragging != nil {
		g.dragging.setFromMouse(mx)
		g.synth.ApplyPatch(g.patch)
		g.setStatus(g.dragging.label(g.dragging.get()))
	}
}

func (g *game) savePreset() {
	if g.presetPath == "" {
		g.setError("no preset file")
		return
	}
	if err := preset.Write(g.presetPath, preset.FromPatch("", g.patch)); err != nil {
		g.setError(err.Error())
		return
	}
	g.logger.Info("preset saved", "path", g.presetPath)
	g.setStatus("Saved " + g.presetPath)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	status := g.layoutRects()

	for _, p := range g.panels {
		g.drawPanel(screen, p.rect)
		g.drawText(screen, p.title, p.rect.Min.X+8, p.rect.Min.Y+6)
		for _, b := range p.buttons {
			g.drawButton(screen, b.rect, b.label())
		}
		for _, s := range p.sliders {
			g.drawSlider(screen, s.rect, s.label(s.get()), s.frac())
		}
	}
	g.drawSunkenPanel(screen, status)
	g.drawStatus(screen, status)
}

func (g *game) drawStatus(screen *ebiten.Image, rect image.Rectangle) {
	st := g.synth.Stats()
	meterW := 160
	meter := image.Rect(rect.Max.X-meterW-8, rect.Min.Y+8, rect.Max.X-8, rect.Max.Y-8)
	used := float64(st.ActiveVoices) / float64(max(1, g.voices))
	ebitenutil.DrawRect(screen, float64(meter.Min.X), float64(meter.Min.Y), float64(meter.Dx())*clamp(used, 0, 1), float64(meter.Dy()), activeFillColor)
	drawSunkenBorder(screen, meter)

	msg := "Status: " + g.status
	if g.statusErr {
		msg = "Status: ERROR - " + g.status
	}
	maxChars := max(8, (rect.Dx()-meterW-32)/charW)
	g.drawText(screen, shortenEnd(msg, maxChars), rect.Min.X+8, rect.Min.Y+6)
}

// layoutRects positions every panel and widget for the current window size
// and returns the status bar rectangle.
func (g *game) layoutRects() image.Rectangle {
	w := max(g.viewW, minWindowW)
	h := max(g.viewH, minWindowH)

	const (
		pad     = 20
		gap     = 12
		titleH  = 36
		rowH    = 40
		statusH = 40
	)
	colW := (w - 2*pad - gap) / 2
	statusRect := image.Rect(pad, h-pad-statusH, w-pad, h-pad)

	place := func(p *panelControls, x, y, width int) int {
		rowY := y + titleH
		if n := len(p.buttons); n > 0 {
			bw := (width - 16 - 8*(n-1)) / n
			for i, b := range p.buttons {
				bx := x + 8 + i*(bw+8)
				b.rect = image.Rect(bx, rowY, bx+bw, rowY+rowH-6)
			}
			rowY += rowH
		}
		for _, s := range p.sliders {
			s.rect = image.Rect(x, rowY, x+width, rowY+rowH)
			rowY += rowH
		}
		p.rect = image.Rect(x, y, x+width, rowY+6)
		return p.rect.Max.Y
	}

	y := pad
	bottom := 0
	for col := range 2 {
		x := pad + col*(colW+gap)
		oscBottom := place(g.panels[col], x, y, colW)
		bottom = max(bottom, place(g.panels[2+col], x, oscBottom+gap, colW))
	}
	masterBottom := place(g.panels[4], pad, bottom+gap, w-2*pad)
	if masterBottom > statusRect.Min.Y-8 {
		statusRect = statusRect.Add(image.Pt(0, masterBottom+8-statusRect.Min.Y))
	}
	return statusRect
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	g.viewW = max(outsideW, minWindowW)
	g.viewH = max(outsideH, minWindowH)
	return g.viewW, g.viewH
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

func initLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
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
		polyphony  = flag.Int("voices", 32, "voice pool size")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()
	logger := initLogger(*debug)

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
	if err := s.Start(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	g := newGame(s, *polyphony, *presetPath, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = preset.Watch(ctx, *presetPath, func(p *preset.Preset) {
		patch, err := p.Patch()
		if err != nil {
			logger.Warn("preset rejected", "err", err)
			return
		}
		// Keep only the newest patch if the UI has not caught up.
		select {
		case <-g.reloads:
		default:
		}
		g.reloads <- patch
	}, func(err error) {
		logger.Warn("preset reload failed", "err", err)
	})
	if err != nil {
		logger.Warn("preset watch disabled", "err", err)
	}

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("beepboop")
	if err := ebiten.RunGame(g); err != nil {
		logger.Error("ui exited", "err", err)
	}
}
