package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshweld/internal/logger"
	"github.com/Faultbox/meshweld/internal/material"
	"github.com/Faultbox/meshweld/pkg/formats"
)

// maxLineSize bounds a single OBJ line.
const maxLineSize = 1 << 20

// Options controls model loading.
type Options struct {
	// DefaultColor is the 0-255 tint written into every vertex. OBJ files carry no color.
	DefaultColor [3]uint8
	// Strict returns unopenable model, material and texture files as errors.
	// Otherwise the load degrades to an empty or untextured mesh and records
	// the paths in Mesh.Missing.
	Strict bool
	// FlipTexture reorders the diffuse texture bottom row first.
	FlipTexture bool
}

// DefaultOptions returns tolerant loading with the stock tint and texture flip.
func DefaultOptions() Options {
	return Options{
		DefaultColor: [3]uint8{150, 190, 210},
		FlipTexture:  true,
	}
}

// Builder accumulates attribute pools and welds face corners into vertices.
// A Builder is single-use and not safe for concurrent use.
type Builder struct {
	path  string
	opts  Options
	color mgl32.Vec3

	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	texCoords []mgl32.Vec2

	vertices  []Vertex
	triangles []IndexedTriangle
	welded    map[VertexKey]uint32

	material *material.Material
	missing  []string
	faces    int
	reused   int
}

// NewBuilder creates a builder. path is the model location used to resolve
// mtllib references; it may be empty when no material is expected.
func NewBuilder(path string, opts Options) *Builder {
	return &Builder{
		path: path,
		opts: opts,
		color: mgl32.Vec3{
			float32(opts.DefaultColor[0]) / 255,
			float32(opts.DefaultColor[1]) / 255,
			float32(opts.DefaultColor[2]) / 255,
		},
		welded: make(map[VertexKey]uint32),
	}
}

// Load reads and welds the OBJ model at path.
// The file is read completely before any buffer is produced.
func Load(path string, opts Options) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		if !opts.Strict {
			logger.Named("mesh").Warn("could not open model file", zap.String("path", path), zap.Error(err))
			return &Mesh{Path: path, Missing: []string{path}}, nil
		}
		return nil, fmt.Errorf("opening model file: %w", err)
	}
	defer f.Close()

	return Parse(f, path, opts)
}

// Parse welds an OBJ model read from r. path locates mtllib references.
func Parse(r io.Reader, path string, opts Options) (*Mesh, error) {
	b := NewBuilder(path, opts)
	if err := b.ReadFrom(r); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// ReadFrom processes every line of r. Parse faults abort with a *formats.ParseError.
func (b *Builder) ReadFrom(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		if err := b.processLine(scanner.Text(), line); err != nil {
			var pe *formats.ParseError
			if errors.As(err, &pe) && pe.Path == "" {
				pe.Path = b.path
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading model %s: %w", b.path, err)
	}
	return nil
}

// processLine dispatches one line on its first token. Unknown directives are ignored.
// A token starting with '#' ends the line.
func (b *Builder) processLine(text string, line int) error {
	fields := strings.Fields(text)
	for i, f := range fields {
		if strings.HasPrefix(f, "#") {
			fields = fields[:i]
			break
		}
	}
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case formats.OBJPosition, formats.OBJNormal:
		v, tok, err := formats.ParseVec3(fields[1:])
		if err != nil {
			return vecError(fields[0], tok, line, err)
		}
		if fields[0] == formats.OBJPosition {
			b.AddPosition(v)
		} else {
			b.AddNormal(v)
		}

	case formats.OBJTexCoord:
		v, tok, err := formats.ParseVec2(fields[1:])
		if err != nil {
			return vecError(fields[0], tok, line, err)
		}
		b.AddTexCoord(v)

	case formats.OBJFace:
		refs := fields[1:]
		if len(refs) != 3 {
			return &formats.ParseError{
				Line:  line,
				Token: strings.Join(fields, " "),
				Err:   fmt.Errorf("%w: got %d", formats.ErrUnsupportedFaceArity, len(refs)),
			}
		}
		var corners [3]formats.FaceVertex
		for i, ref := range refs {
			fv, err := formats.ParseFaceVertex(ref)
			if err != nil {
				return &formats.ParseError{Line: line, Token: ref, Err: err}
			}
			corners[i] = fv
		}
		if err := b.AddFace(corners); err != nil {
			var pe *formats.ParseError
			if errors.As(err, &pe) {
				return err
			}
			return &formats.ParseError{Line: line, Token: strings.Join(refs, " "), Err: err}
		}

	case formats.OBJMtlLib:
		if len(fields) < 2 {
			return &formats.ParseError{Line: line, Token: fields[0], Err: formats.ErrMissingValue}
		}
		if err := b.loadMaterial(fields[1]); err != nil {
			return &formats.ParseError{Line: line, Token: fields[1], Err: err}
		}
	}
	return nil
}

func vecError(directive, tok string, line int, err error) error {
	if tok == "" {
		tok = directive
	}
	return &formats.ParseError{Line: line, Token: tok, Err: err}
}

// loadMaterial loads the material library name relative to the model directory.
func (b *Builder) loadMaterial(name string) error {
	path := formats.Resolve(b.path, name)
	if b.material != nil {
		logger.Named("mesh").Debug("replacing material library",
			zap.String("previous", b.material.Path), zap.String("path", path))
	}

	m, err := material.Load(path, material.Options{Strict: b.opts.Strict, FlipVertical: b.opts.FlipTexture})
	if err != nil {
		return err
	}
	b.material = m
	b.missing = append(b.missing, m.Missing...)
	return nil
}

// AddPosition appends to the position pool.
func (b *Builder) AddPosition(v mgl32.Vec3) {
	b.positions = append(b.positions, v)
}

// AddNormal appends to the normal pool.
func (b *Builder) AddNormal(v mgl32.Vec3) {
	b.normals = append(b.normals, v)
}

// AddTexCoord appends to the texture coordinate pool.
func (b *Builder) AddTexCoord(v mgl32.Vec2) {
	b.texCoords = append(b.texCoords, v)
}

// AddFace welds three corners and appends the resulting triangle.
// On error nothing is added, so the builder stays usable.
func (b *Builder) AddFace(corners [3]formats.FaceVertex) error {
	var (
		t       IndexedTriangle
		created []Vertex
		keys    []VertexKey
		reused  int
	)
	next := uint32(len(b.vertices))

corners:
	for i, fv := range corners {
		key := keyOf(fv)
		if idx, ok := b.welded[key]; ok {
			t[i] = idx
			reused++
			continue
		}
		for j, k := range keys {
			if k == key {
				t[i] = next + uint32(j)
				reused++
				continue corners
			}
		}

		v, err := b.resolve(fv)
		if err != nil {
			return err
		}
		t[i] = next + uint32(len(created))
		created = append(created, v)
		keys = append(keys, key)
	}

	for j, key := range keys {
		b.welded[key] = next + uint32(j)
	}
	b.vertices = append(b.vertices, created...)
	b.triangles = append(b.triangles, t)
	b.reused += reused
	b.faces++
	return nil
}

// resolve looks a face corner up in the attribute pools.
func (b *Builder) resolve(fv formats.FaceVertex) (Vertex, error) {
	if fv.Position < 1 || fv.Position > len(b.positions) {
		return Vertex{}, fmt.Errorf("%w: position %d, pool has %d", formats.ErrIndexOutOfRange, fv.Position, len(b.positions))
	}
	if fv.Normal < 1 || fv.Normal > len(b.normals) {
		return Vertex{}, fmt.Errorf("%w: normal %d, pool has %d", formats.ErrIndexOutOfRange, fv.Normal, len(b.normals))
	}

	v := Vertex{
		Position: b.positions[fv.Position-1],
		Color:    b.color,
		Normal:   b.normals[fv.Normal-1],
	}
	if fv.HasTexCoord {
		if fv.TexCoord < 1 || fv.TexCoord > len(b.texCoords) {
			return Vertex{}, fmt.Errorf("%w: texture coordinate %d, pool has %d", formats.ErrIndexOutOfRange, fv.TexCoord, len(b.texCoords))
		}
		v.TexCoord = b.texCoords[fv.TexCoord-1]
	}
	return v, nil
}

// Build returns the welded mesh and drops the welding map.
func (b *Builder) Build() *Mesh {
	m := &Mesh{
		Path:      b.path,
		Vertices:  b.vertices,
		Triangles: b.triangles,
		Bounds:    computeBounds(b.vertices),
		Material:  b.material,
		Missing:   b.missing,
		Stats: Stats{
			Positions: len(b.positions),
			Normals:   len(b.normals),
			TexCoords: len(b.texCoords),
			Faces:     b.faces,
			Vertices:  len(b.vertices),
			Reused:    b.reused,
		},
	}
	b.welded = nil

	logger.Named("mesh").Debug("model welded",
		zap.String("path", b.path),
		zap.Int("faces", m.Stats.Faces),
		zap.Int("vertices", m.Stats.Vertices),
		zap.Int("reused", m.Stats.Reused),
		zap.Bool("textured", m.HasDiffuseTexture()))
	return m
}

// IsNotFound reports whether err means a model, material or texture file could not be opened.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
