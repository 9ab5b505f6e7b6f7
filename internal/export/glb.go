// Package export writes welded meshes as binary glTF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/meshweld/internal/logger"
	"github.com/Faultbox/meshweld/internal/mesh"
)

// ErrEmptyMesh is returned when there is no geometry to export.
var ErrEmptyMesh = errors.New("mesh has no geometry")

// Options controls the exported document.
type Options struct {
	// Generator is written to asset.generator.
	Generator string
	// EmbedTexture stores the diffuse texture as a PNG inside the binary chunk.
	EmbedTexture bool
}

// DefaultOptions returns the stock generator name with texture embedding on.
func DefaultOptions() Options {
	return Options{Generator: "meshweld", EmbedTexture: true}
}

// Document converts m into a glTF document holding one mesh, one node and one material.
// Texture coordinates are stored with V flipped to glTF's top-left origin.
func Document(m *mesh.Mesh, opts Options) (*gltf.Document, error) {
	if m == nil || m.IsEmpty() {
		return nil, ErrEmptyMesh
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = opts.Generator

	positions := make([][3]float32, len(m.Vertices))
	normals := make([][3]float32, len(m.Vertices))
	colors := make([][4]float32, len(m.Vertices))
	uvs := make([][2]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = v.Position
		normals[i] = v.Normal
		colors[i] = [4]float32{v.Color[0], v.Color[1], v.Color[2], 1}
		uvs[i] = [2]float32{v.TexCoord[0], 1 - v.TexCoord[1]}
	}

	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION:   modeler.WritePosition(doc, positions),
			gltf.NORMAL:     modeler.WriteNormal(doc, normals),
			gltf.COLOR_0:    modeler.WriteColor(doc, colors),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
		},
		Indices:  gltf.Index(modeler.WriteIndices(doc, m.IndexData())),
		Material: gltf.Index(0),
	}

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	if opts.EmbedTexture && m.HasDiffuseTexture() {
		tex, err := embedTexture(doc, m)
		if err != nil {
			return nil, err
		}
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: tex}
	}
	doc.Materials = []*gltf.Material{{
		Name:                 materialName(m),
		AlphaMode:            gltf.AlphaOpaque,
		PBRMetallicRoughness: pbr,
	}}

	doc.Meshes = []*gltf.Mesh{{Name: meshName(m.Path), Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: meshName(m.Path), Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	return doc, nil
}

// WriteGLB exports m to a .glb file at path.
func WriteGLB(m *mesh.Mesh, path string, opts Options) error {
	doc, err := Document(m, opts)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	logger.Named("export").Info("model exported",
		zap.String("source", m.Path),
		zap.String("path", path),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Bool("textured", len(doc.Images) > 0))
	return nil
}

// embedTexture encodes the diffuse texture as PNG and registers it as texture 0.
// glTF images are stored top row first, so a flipped texture is flipped back on a copy.
func embedTexture(doc *gltf.Document, m *mesh.Mesh) (int, error) {
	img := m.Material.Diffuse
	if m.Material.Flipped {
		img = img.Clone()
		img.VerticalFlip()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image()); err != nil {
		return 0, fmt.Errorf("encoding texture %s: %w", m.Material.TexturePath, err)
	}

	name := strings.TrimSuffix(filepath.Base(m.Material.TexturePath), filepath.Ext(m.Material.TexturePath))
	source, err := modeler.WriteImage(doc, name, "image/png", &buf)
	if err != nil {
		return 0, fmt.Errorf("embedding texture %s: %w", m.Material.TexturePath, err)
	}

	doc.Samplers = append(doc.Samplers, &gltf.Sampler{
		MagFilter: gltf.MagLinear,
		MinFilter: gltf.MinLinear,
		WrapS:     gltf.WrapRepeat,
		WrapT:     gltf.WrapRepeat,
	})
	doc.Textures = append(doc.Textures, &gltf.Texture{
		Sampler: gltf.Index(len(doc.Samplers) - 1),
		Source:  gltf.Index(source),
	})
	return len(doc.Textures) - 1, nil
}

func meshName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func materialName(m *mesh.Mesh) string {
	if m.Material != nil && m.Material.MTL != nil && m.Material.MTL.Name != "" {
		return m.Material.MTL.Name
	}
	return "default"
}
