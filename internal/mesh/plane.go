package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshweld/pkg/formats"
)

// PlaneY is the height of the generated ground plane.
const PlaneY = -1

// NewPlane builds a flat ground quad of the given size at y = PlaneY, spanning
// x in [-size/2, size/2] and z in [-size, 0], with normals pointing up and
// texture coordinates covering 0..1. It welds to 4 vertices and 2 triangles.
func NewPlane(size float32, color [3]uint8) *Mesh {
	b := NewBuilder("", Options{DefaultColor: color})

	half := size / 2
	b.AddPosition(mgl32.Vec3{-half, PlaneY, 0})     // bottom left
	b.AddPosition(mgl32.Vec3{half, PlaneY, 0})      // bottom right
	b.AddPosition(mgl32.Vec3{-half, PlaneY, -size}) // top left
	b.AddPosition(mgl32.Vec3{half, PlaneY, -size})  // top right
	b.AddTexCoord(mgl32.Vec2{0, 0})
	b.AddTexCoord(mgl32.Vec2{1, 0})
	b.AddTexCoord(mgl32.Vec2{0, 1})
	b.AddTexCoord(mgl32.Vec2{1, 1})
	b.AddNormal(mgl32.Vec3{0, 1, 0})

	corner := func(i int) formats.FaceVertex {
		return formats.FaceVertex{Position: i, TexCoord: i, HasTexCoord: true, Normal: 1}
	}
	// The pools above are fully populated, so welding cannot fail.
	_ = b.AddFace([3]formats.FaceVertex{corner(1), corner(2), corner(3)})
	_ = b.AddFace([3]formats.FaceVertex{corner(2), corner(4), corner(3)})

	m := b.Build()
	m.Path = "plane"
	return m
}
