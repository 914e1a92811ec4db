package main

import (
	"bytes"
	"io"
)

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

type input struct {
	key    rune
	octave int
	quit   bool
}

// decode splits one raw read into inputs. A lone escape quits; arrow key
// sequences shift the octave, up and right raising it.
func decode(chunk []byte, dst []input) []input {
	for i := 0; i < len(chunk); i++ {
		b := chunk[i]
		switch {
		case b == keyCtrlC:
			return append(dst, input{quit: true})
		case b == keyEsc:
			if i+2 < len(chunk) && (chunk[i+1] == '[' || chunk[i+1] == 'O') {
				switch chunk[i+2] {
				case 'A', 'C':
					dst = append(dst, input{octave: 1})
				case 'B', 'D':
					dst = append(dst, input{octave: -1})
				}
				i += 2
				continue
			}
			if i == len(chunk)-1 {
				return append(dst, input{quit: true})
			}
		case b >= 0x20 && b < 0x7f:
			dst = append(dst, input{key: rune(b)})
		}
	}
	return dst
}

func readInputs(r io.Reader, out chan<- input) {
	defer close(out)
	buf := make([]byte, 64)
	var batch []input
	for {
		n, err := r.Read(buf)
		if n > 0 {
			batch = decode(buf[:n], batch[:0])
			for _, in := range batch {
				out <- in
			}
		}
		if err != nil {
			return
		}
	}
}

// crlfWriter keeps log lines aligned while the terminal is in raw mode.
type crlfWriter struct{ w io.Writer }

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
