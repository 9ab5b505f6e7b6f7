// Package material loads the diffuse texture a model's material library points at.
package material

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/Faultbox/meshweld/internal/logger"
	"github.com/Faultbox/meshweld/pkg/formats"
)

// Options controls material loading.
type Options struct {
	// Strict returns unopenable material or texture files as errors.
	// Otherwise they are logged and the material loads without a texture.
	Strict bool
	// FlipVertical reorders the decoded texture bottom row first, which is
	// what a rasterizer sampling from the lower-left corner expects.
	FlipVertical bool
}

// DefaultOptions returns tolerant loading with the vertical flip enabled.
func DefaultOptions() Options {
	return Options{FlipVertical: true}
}

// Material is a loaded material library.
type Material struct {
	Path    string
	MTL     *formats.MTL
	Diffuse *formats.PPM
	// TexturePath is the resolved map_Kd path, empty without a map_Kd directive.
	TexturePath string
	// Flipped is set when Diffuse was reordered bottom row first.
	Flipped bool
	// Missing lists files that could not be opened in tolerant mode.
	Missing []string
}

// Load parses the material library at path and decodes its diffuse texture.
// References are resolved against the directory of path.
func Load(path string, opts Options) (*Material, error) {
	log := logger.Named("material")
	m := &Material{Path: path}

	mtl, err := formats.ParseMTLFile(path)
	if err != nil {
		if isMissing(err) && !opts.Strict {
			log.Warn("could not open material file", zap.String("path", path), zap.Error(err))
			m.Missing = append(m.Missing, path)
			return m, nil
		}
		return nil, fmt.Errorf("loading material %s: %w", path, err)
	}
	m.MTL = mtl

	if !mtl.HasDiffuseMap() {
		log.Debug("material has no diffuse texture", zap.String("path", path))
		return m, nil
	}

	m.TexturePath = formats.Resolve(path, mtl.DiffuseMap)
	img, err := formats.ParsePPMFile(m.TexturePath)
	if err != nil {
		if isMissing(err) && !opts.Strict {
			log.Warn("could not open diffuse texture", zap.String("path", m.TexturePath), zap.Error(err))
			m.Missing = append(m.Missing, m.TexturePath)
			return m, nil
		}
		return nil, fmt.Errorf("loading diffuse texture for %s: %w", path, err)
	}

	if opts.FlipVertical {
		img.VerticalFlip()
		m.Flipped = true
	}
	m.Diffuse = img

	log.Info("diffuse texture loaded",
		zap.String("path", m.TexturePath),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))
	return m, nil
}

// isMissing reports whether err comes from a file that could not be opened,
// as opposed to a file with bad contents.
func isMissing(err error) bool {
	var pe *formats.ParseError
	if errors.As(err, &pe) {
		return false
	}
	var pathErr *fs.PathError
	return errors.As(err, &pathErr)
}

// HasDiffuseTexture reports whether a usable diffuse texture was loaded.
func (m *Material) HasDiffuseTexture() bool {
	return m != nil && m.Diffuse != nil
}

// DiffuseTextureData returns width*height*3 bytes, R,G,B per pixel, or nil without a texture.
func (m *Material) DiffuseTextureData() []byte {
	if !m.HasDiffuseTexture() {
		return nil
	}
	return m.Diffuse.Bytes()
}

// DiffuseTextureWidth returns the texture width, or 0 without a texture.
func (m *Material) DiffuseTextureWidth() int {
	if !m.HasDiffuseTexture() {
		return 0
	}
	return m.Diffuse.Width
}

// DiffuseTextureHeight returns the texture height, or 0 without a texture.
func (m *Material) DiffuseTextureHeight() int {
	if !m.HasDiffuseTexture() {
		return 0
	}
	return m.Diffuse.Height
}
