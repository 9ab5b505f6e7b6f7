// Package mesh welds OBJ face references into GPU-ready vertex and index buffers.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshweld/internal/material"
	"github.com/Faultbox/meshweld/pkg/formats"
)

// Layout of one vertex in the flattened attribute buffer.
const (
	Stride         = 11
	PositionOffset = 0
	ColorOffset    = 3
	NormalOffset   = 6
	TexCoordOffset = 9
)

// Vertex is one welded vertex. Color is normalized to 0-1.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// IndexedTriangle holds three indices into the vertex list in authored winding order.
type IndexedTriangle [3]uint32

// OptionalIndex is a pool index that may be absent.
type OptionalIndex struct {
	Index int
	Valid bool
}

// VertexKey identifies a face corner by the 1-based indices it was authored with.
// Corners with equal keys share one welded vertex.
type VertexKey struct {
	Position int
	TexCoord OptionalIndex
	Normal   int
}

// keyOf converts a parsed face reference into its welding key.
func keyOf(fv formats.FaceVertex) VertexKey {
	key := VertexKey{Position: fv.Position, Normal: fv.Normal}
	if fv.HasTexCoord {
		key.TexCoord = OptionalIndex{Index: fv.TexCoord, Valid: true}
	}
	return key
}

// Bounds holds the axis-aligned bounding box of the welded vertices.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the center of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Stats summarizes a load.
type Stats struct {
	Positions int
	Normals   int
	TexCoords int
	Faces     int
	Vertices  int
	// Reused counts face corners that resolved to an already welded vertex.
	Reused int
}

// Mesh holds the welded model ready for GPU upload.
type Mesh struct {
	Path      string
	Vertices  []Vertex
	Triangles []IndexedTriangle
	Bounds    Bounds
	Stats     Stats
	// Material is nil when the model has no mtllib directive.
	Material *material.Material
	// Missing lists files that could not be opened while loading in tolerant mode.
	Missing []string
}

// VertexCount returns the number of welded vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 && len(m.Triangles) == 0
}

// VertexData flattens the vertices to x,y,z,r,g,b,nx,ny,nz,tx,ty per vertex.
func (m *Mesh) VertexData() []float32 {
	out := make([]float32, 0, len(m.Vertices)*Stride)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Color[0], v.Color[1], v.Color[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.TexCoord[0], v.TexCoord[1],
		)
	}
	return out
}

// IndexData flattens the triangles to three indices each, in declaration order.
func (m *Mesh) IndexData() []uint32 {
	out := make([]uint32, 0, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

// HasDiffuseTexture reports whether the model's material loaded a usable texture.
func (m *Mesh) HasDiffuseTexture() bool {
	return m.Material.HasDiffuseTexture()
}

// DiffuseTextureData returns the texture as R,G,B bytes, bottom row first.
func (m *Mesh) DiffuseTextureData() []byte {
	return m.Material.DiffuseTextureData()
}

// DiffuseTextureWidth returns the texture width, or 0 without a texture.
func (m *Mesh) DiffuseTextureWidth() int {
	return m.Material.DiffuseTextureWidth()
}

// DiffuseTextureHeight returns the texture height, or 0 without a texture.
func (m *Mesh) DiffuseTextureHeight() int {
	return m.Material.DiffuseTextureHeight()
}

// computeBounds returns the bounding box of vertices, zero for an empty slice.
func computeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < b.Min[i] {
				b.Min[i] = v.Position[i]
			}
			if v.Position[i] > b.Max[i] {
				b.Max[i] = v.Position[i]
			}
		}
	}
	return b
}
