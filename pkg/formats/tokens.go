package formats

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize bounds a single line. Raster data is usually short lines but
// some exporters write a whole image row per line.
const maxLineSize = 4 << 20

// Tokenizer yields whitespace-separated tokens across line boundaries.
// A token starting with '#' starts a comment; the rest of that line is skipped.
type Tokenizer struct {
	scanner *bufio.Scanner
	fields  []string
	line    int
}

// NewTokenizer creates a tokenizer reading from r.
func NewTokenizer(r io.Reader) *Tokenizer {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Tokenizer{scanner: s}
}

// Next returns the next real token and the line it was read from.
// ok is false at end of input or on a read error; check Err afterwards.
func (t *Tokenizer) Next() (tok string, line int, ok bool) {
	for len(t.fields) == 0 {
		if !t.scanner.Scan() {
			return "", t.line, false
		}
		t.line++
		t.fields = strings.Fields(t.scanner.Text())
		for i, f := range t.fields {
			if strings.HasPrefix(f, "#") {
				t.fields = t.fields[:i]
				break
			}
		}
	}
	tok = t.fields[0]
	t.fields = t.fields[1:]
	return tok, t.line, true
}

// Err returns the first read error, if any.
func (t *Tokenizer) Err() error {
	return t.scanner.Err()
}
