package formats

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strconv"

	"golang.org/x/exp/constraints"
)

// PPMMagic identifies the plain-text RGB variant of the PPM format.
const PPMMagic = "P3"

// maxPPMDimension bounds width and height of a decoded image.
const maxPPMDimension = 16384

// maxPPMPrealloc caps the pixel capacity reserved from the header alone.
// Larger images grow as pixel data actually arrives.
const maxPPMPrealloc = 1 << 16

// PPM format errors.
var (
	ErrInvalidPPMMagic      = errors.New("invalid PPM magic: expected 'P3'")
	ErrInvalidPPMDimensions = errors.New("invalid PPM dimensions")
	ErrUnsupportedPPMRange  = errors.New("unsupported PPM max value (must be 1..255)")
	ErrChannelOutOfRange    = errors.New("PPM channel value exceeds max value")
	ErrTruncatedPPMData     = errors.New("truncated PPM data")
)

// Pixel is one RGB sample.
type Pixel struct {
	R, G, B uint8
}

// PPM is a decoded plain-text RGB image.
// Pixels are row-major, starting at the top-left pixel as stored in the file.
// After VerticalFlip the first row is the bottom row of the authored image.
type PPM struct {
	Width    int
	Height   int
	MaxValue int
	Pixels   []Pixel
}

// ppmState tracks which header field the decoder expects next.
type ppmState int

const (
	ppmAwaitMagic ppmState = iota
	ppmAwaitDimensions
	ppmAwaitRange
	ppmReadPixels
)

// DecodePPM decodes a P3 image from r.
// Comments may appear between any two tokens, including inside a pixel triple.
func DecodePPM(r io.Reader) (*PPM, error) {
	tok := NewTokenizer(r)
	img := &PPM{}
	state := ppmAwaitMagic

	var dims []int
	var triple [3]uint8
	channel := 0

scan:
	for {
		s, line, ok := tok.Next()
		if !ok {
			break
		}

		switch state {
		case ppmAwaitMagic:
			if s != PPMMagic {
				return nil, &ParseError{Line: line, Token: s, Err: ErrInvalidPPMMagic}
			}
			state = ppmAwaitDimensions

		case ppmAwaitDimensions:
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, &ParseError{Line: line, Token: s, Err: ErrMalformedNumber}
			}
			if n <= 0 || n > maxPPMDimension {
				return nil, &ParseError{Line: line, Token: s, Err: ErrInvalidPPMDimensions}
			}
			dims = append(dims, n)
			if len(dims) == 2 {
				img.Width, img.Height = dims[0], dims[1]
				img.Pixels = make([]Pixel, 0, min(img.Width*img.Height, maxPPMPrealloc))
				state = ppmAwaitRange
			}

		case ppmAwaitRange:
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, &ParseError{Line: line, Token: s, Err: ErrMalformedNumber}
			}
			if n < 1 || n > 255 {
				return nil, &ParseError{Line: line, Token: s, Err: ErrUnsupportedPPMRange}
			}
			img.MaxValue = n
			state = ppmReadPixels

		case ppmReadPixels:
			if len(img.Pixels) == img.Width*img.Height {
				// Trailing data after the last pixel is ignored.
				break scan
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, &ParseError{Line: line, Token: s, Err: ErrMalformedNumber}
			}
			if n < 0 || n > img.MaxValue {
				return nil, &ParseError{Line: line, Token: s, Err: ErrChannelOutOfRange}
			}
			triple[channel] = uint8(n)
			channel++
			if channel == 3 {
				img.Pixels = append(img.Pixels, Pixel{R: triple[0], G: triple[1], B: triple[2]})
				channel = 0
			}
		}
	}
	if err := tok.Err(); err != nil {
		return nil, fmt.Errorf("reading PPM data: %w", err)
	}

	if state != ppmReadPixels {
		return nil, fmt.Errorf("%w: header incomplete", ErrTruncatedPPMData)
	}
	if want := img.Width * img.Height; len(img.Pixels) != want {
		return nil, fmt.Errorf("%w: got %d of %d pixels", ErrTruncatedPPMData, len(img.Pixels), want)
	}
	return img, nil
}

// ParsePPMFile decodes a P3 image from disk.
// The file handle is released before returning on every path.
func ParsePPMFile(path string) (*PPM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PPM file: %w", err)
	}
	defer f.Close()

	img, err := DecodePPM(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, withPath(err, path))
	}
	return img, nil
}

// At returns the pixel at column x, row y.
func (p *PPM) At(x, y int) (Pixel, error) {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return Pixel{}, fmt.Errorf("%w: pixel (%d, %d) in %dx%d image", ErrIndexOutOfRange, x, y, p.Width, p.Height)
	}
	return p.Pixels[y*p.Width+x], nil
}

// Set replaces the pixel at column x, row y. Channels above MaxValue are clamped.
func (p *PPM) Set(x, y int, px Pixel) error {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return fmt.Errorf("%w: pixel (%d, %d) in %dx%d image", ErrIndexOutOfRange, x, y, p.Width, p.Height)
	}
	limit := uint8(p.MaxValue)
	p.Pixels[y*p.Width+x] = Pixel{
		R: clamp(px.R, 0, limit),
		G: clamp(px.G, 0, limit),
		B: clamp(px.B, 0, limit),
	}
	return nil
}

// VerticalFlip reverses the row order in place. Pixels within a row keep their order.
// Flipping twice restores the original sequence.
func (p *PPM) VerticalFlip() {
	w := p.Width
	if w <= 0 || len(p.Pixels) < w*p.Height {
		return
	}
	for top, bottom := 0, p.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		rowTop := p.Pixels[top*w : (top+1)*w]
		rowBottom := p.Pixels[bottom*w : (bottom+1)*w]
		for i := range rowTop {
			rowTop[i], rowBottom[i] = rowBottom[i], rowTop[i]
		}
	}
}

// Darken halves every channel.
func (p *PPM) Darken() {
	p.mapChannels(func(c int) int { return c / 2 })
}

// Lighten doubles every channel, saturating at MaxValue.
func (p *PPM) Lighten() {
	p.mapChannels(func(c int) int { return c * 2 })
}

func (p *PPM) mapChannels(fn func(int) int) {
	for i := range p.Pixels {
		px := &p.Pixels[i]
		px.R = uint8(clamp(fn(int(px.R)), 0, p.MaxValue))
		px.G = uint8(clamp(fn(int(px.G)), 0, p.MaxValue))
		px.B = uint8(clamp(fn(int(px.B)), 0, p.MaxValue))
	}
}

// Bytes returns the pixels as a flat R,G,B sequence in storage order.
func (p *PPM) Bytes() []byte {
	out := make([]byte, 0, len(p.Pixels)*3)
	for _, px := range p.Pixels {
		out = append(out, px.R, px.G, px.B)
	}
	return out
}

// Clone returns a deep copy.
func (p *PPM) Clone() *PPM {
	c := *p
	c.Pixels = make([]Pixel, len(p.Pixels))
	copy(c.Pixels, p.Pixels)
	return &c
}

// Image converts the pixels to an opaque RGBA image, scaling channels from
// MaxValue to 255. Row 0 of the result is the first stored row.
func (p *PPM) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	scale := func(c uint8) uint8 {
		if p.MaxValue == 255 || p.MaxValue <= 0 {
			return c
		}
		return uint8(int(c) * 255 / p.MaxValue)
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			px := p.Pixels[y*p.Width+x]
			img.SetRGBA(x, y, color.RGBA{R: scale(px.R), G: scale(px.G), B: scale(px.B), A: 255})
		}
	}
	return img
}

// Encode writes the image in canonical P3 form: magic, a comment line,
// dimensions, max value, then one channel value per line.
func (p *PPM) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n# written by meshweld\n%d %d\n%d\n", PPMMagic, p.Width, p.Height, p.MaxValue)
	for _, px := range p.Pixels {
		fmt.Fprintf(bw, "%d\n%d\n%d\n", px.R, px.G, px.B)
	}
	return bw.Flush()
}

// SaveFile writes the image to path in canonical P3 form.
func (p *PPM) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
