package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cbegin/beepboop-go"
	"github.com/cbegin/beepboop-go/internal/preset"
)

const defaultPhrase = "t132 o4 l8 c e g > c < b g e c"

func main() {
	var (
		sampleRate = flag.Int("sample-rate", beepboop.DefaultSampleRate, "output sample rate")
		channels   = flag.Int("channels", 2, "output channels")
		phrasePath = flag.String("file", "", "path to a phrase file")
		phraseText = flag.String("phrase", "", "inline phrase")
		presetPath = flag.String("preset", "", "preset JSON file (default sound when empty)")
		outPath    = flag.String("out", "out.wav", "WAV file to write")
		seed       = flag.Uint64("seed", 1, "seed for random unison phases")
	)
	flag.Parse()

	text, err := resolvePhraseInput(*phrasePath, *phraseText)
	if err != nil {
		log.Fatal(err)
	}

	opts := []beepboop.Option{beepboop.WithChannels(*channels), beepboop.WithSeed(*seed)}
	if *presetPath != "" {
		p, err := preset.Read(*presetPath)
		if err != nil {
			log.Fatal(err)
		}
		patch, err := p.Patch()
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, beepboop.WithPatch(patch))
	}

	samples, err := beepboop.RenderPhrase(text, *sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}
	if err := beepboop.WriteWAVFile(*outPath, samples, *sampleRate, *channels); err != nil {
		log.Fatal(err)
	}
	seconds := float64(len(samples)/(*channels)) / float64(*sampleRate)
	fmt.Printf("wrote %s (%.2fs)\n", *outPath, seconds)
}

func resolvePhraseInput(path string, inline string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return defaultPhrase, nil
}
