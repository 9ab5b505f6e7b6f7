package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MTL holds the single material a model may reference.
// Only the diffuse channel is modelled.
type MTL struct {
	Name            string
	DiffuseColor    [3]float32
	HasDiffuseColor bool
	// DiffuseMap is the map_Kd reference exactly as written, relative to the MTL file.
	DiffuseMap string
}

// HasDiffuseMap reports whether a map_Kd directive was found.
func (m *MTL) HasDiffuseMap() bool {
	return m.DiffuseMap != ""
}

// ParseMTL parses a material library. Unknown directives are ignored.
// When several map_Kd lines appear the last one wins.
func ParseMTL(r io.Reader) (*MTL, error) {
	mtl := &MTL{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				return nil, &ParseError{Line: line, Token: fields[0], Err: ErrMissingValue}
			}
			if mtl.Name == "" {
				mtl.Name = fields[1]
			}
		case "Kd":
			if len(fields) < 4 {
				return nil, &ParseError{Line: line, Token: fields[0], Err: ErrMissingValue}
			}
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, &ParseError{Line: line, Token: fields[i+1], Err: ErrMalformedNumber}
				}
				mtl.DiffuseColor[i] = float32(f)
			}
			mtl.HasDiffuseColor = true
		case "map_Kd":
			if len(fields) < 2 {
				return nil, &ParseError{Line: line, Token: fields[0], Err: ErrMissingValue}
			}
			// Options such as -o or -s precede the file name.
			mtl.DiffuseMap = fields[len(fields)-1]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL data: %w", err)
	}
	return mtl, nil
}

// ParseMTLFile parses a material library from disk.
func ParseMTLFile(path string) (*MTL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening MTL file: %w", err)
	}
	defer f.Close()

	mtl, err := ParseMTL(f)
	if err != nil {
		return nil, withPath(err, path)
	}
	return mtl, nil
}
