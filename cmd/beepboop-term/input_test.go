package main

import (
	"bytes"
	"fmt"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		in   string
		want []input
	}{
		{"zx", []input{{key: 'z'}, {key: 'x'}}},
		{"\x1b[A", []input{{octave: 1}}},
		{"\x1b[D\x1b[C", []input{{octave: -1}, {octave: 1}}},
		{"\x1bOB", []input{{octave: -1}}},
		{"\x1b", []input{{quit: true}}},
		{"q\x03w", []input{{key: 'q'}, {quit: true}}},
		{"\r\n\t", nil},
	}
	for _, tt := range tests {
		got := decode([]byte(tt.in), nil)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("decode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReadInputsClosesOnEOF(t *testing.T) {
	out := make(chan input, 8)
	readInputs(bytes.NewReader([]byte("zs")), out)
	var got []rune
	for in := range out {
		got = append(got, in.key)
	}
	if string(got) != "zs" {
		t.Fatalf("got %q", string(got))
	}
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := crlfWriter{&buf}.Write([]byte("a\nb\n"))
	if err != nil || n != 4 {
		t.Fatalf("write = %d, %v", n, err)
	}
	if buf.String() != "a\r\nb\r\n" {
		t.Fatalf("got %q", buf.String())
	}
}
