package mesh

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshweld/pkg/formats"
)

const minimalTriangle = `# one triangle
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
`

// quad is two triangles sharing the 2-3 edge with identical references.
const quad = `o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
s off
f 1//1 2//1 3//1
f 1//1 3//1 4//1
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func parse(t *testing.T, src string) *Mesh {
	t.Helper()
	m, err := Parse(strings.NewReader(src), "model.obj", DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

// checkInvariants verifies stride, index range and triangle count.
func checkInvariants(t *testing.T, m *Mesh, faces int) {
	t.Helper()
	vbo := m.VertexData()
	ebo := m.IndexData()

	if len(vbo)%Stride != 0 {
		t.Errorf("vertex data length %d is not a multiple of %d", len(vbo), Stride)
	}
	count := uint32(len(vbo) / Stride)
	for i, idx := range ebo {
		if idx >= count {
			t.Errorf("index %d at %d is out of range (%d vertices)", idx, i, count)
		}
	}
	if len(ebo) != 3*faces {
		t.Errorf("expected %d indices for %d faces, got %d", 3*faces, faces, len(ebo))
	}
}

func TestParse_MinimalTriangle(t *testing.T) {
	m := parse(t, minimalTriangle)

	if m.VertexCount() != 3 {
		t.Fatalf("expected 3 vertices, got %d", m.VertexCount())
	}
	ebo := m.IndexData()
	if len(ebo) != 3 || ebo[0] != 0 || ebo[1] != 1 || ebo[2] != 2 {
		t.Errorf("expected indices [0 1 2], got %v", ebo)
	}
	for i, v := range m.Vertices {
		if v.TexCoord != (mgl32.Vec2{0, 0}) {
			t.Errorf("vertex %d: expected default texcoord (0,0), got %v", i, v.TexCoord)
		}
		if v.Normal != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("vertex %d: unexpected normal %v", i, v.Normal)
		}
	}
	checkInvariants(t, m, 1)
	if m.HasDiffuseTexture() {
		t.Error("model without mtllib should have no texture")
	}
}

func TestParse_VertexLayout(t *testing.T) {
	src := "v 1 2 3\nvn 4 5 6\nvt 0.25 0.75\nf 1/1/1 1/1/1 1/1/1\n"
	m, err := Parse(strings.NewReader(src), "model.obj", Options{DefaultColor: [3]uint8{255, 0, 51}})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	expected := []float32{1, 2, 3, 1, 0, 0.2, 4, 5, 6, 0.25, 0.75}
	vbo := m.VertexData()
	if len(vbo) != Stride {
		t.Fatalf("expected one vertex (%d floats), got %d", Stride, len(vbo))
	}
	for i := range expected {
		if !mgl32.FloatEqual(vbo[i], expected[i]) {
			t.Errorf("float %d: expected %v, got %v", i, expected[i], vbo[i])
		}
	}
	if vbo[ColorOffset] != 1 || vbo[NormalOffset] != 4 || vbo[TexCoordOffset] != 0.25 {
		t.Error("offset constants do not match the flattened layout")
	}
	if ebo := m.IndexData(); ebo[0] != 0 || ebo[1] != 0 || ebo[2] != 0 {
		t.Errorf("repeated corner should weld to index 0, got %v", ebo)
	}
}

func TestParse_SharedVertices(t *testing.T) {
	m := parse(t, quad)

	if m.VertexCount() != 4 {
		t.Fatalf("expected 4 unique vertices, got %d", m.VertexCount())
	}
	ebo := m.IndexData()
	expected := []uint32{0, 1, 2, 0, 2, 3}
	for i := range expected {
		if ebo[i] != expected[i] {
			t.Fatalf("expected indices %v, got %v", expected, ebo)
		}
	}
	if m.Stats.Reused != 2 {
		t.Errorf("expected 2 reused corners, got %d", m.Stats.Reused)
	}
	checkInvariants(t, m, 2)
}

func TestParse_WeldingDistinguishesEveryComponent(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 1
vn 0 0 1
vn 0 0 -1
f 1/1/1 2/1/1 3/1/1
f 1/1/1 2/1/1 3/1/1
f 1/2/1 2//1 3/1/2
`
	m := parse(t, src)
	ebo := m.IndexData()

	// Identical triples resolve to identical indices.
	for i := 0; i < 3; i++ {
		if ebo[i] != ebo[3+i] {
			t.Errorf("corner %d: identical reference welded to %d and %d", i, ebo[i], ebo[3+i])
		}
	}

	// Same position, different texture / missing texture / different normal.
	if ebo[6] == ebo[0] {
		t.Error("different texture index must not weld")
	}
	if ebo[7] == ebo[1] {
		t.Error("absent texture index must not weld with texture index 1")
	}
	if ebo[8] == ebo[2] {
		t.Error("different normal index must not weld")
	}
	if m.VertexCount() != 6 {
		t.Errorf("expected 6 vertices, got %d", m.VertexCount())
	}

	// Geometrically coincident but distinct.
	if m.Vertices[ebo[6]].Position != m.Vertices[ebo[0]].Position {
		t.Error("expected coincident positions")
	}
	checkInvariants(t, m, 3)
}

func TestParse_IgnoresUnknownDirectives(t *testing.T) {
	src := "# comment\nmtl junk\no object\ng group\nusemtl gold\ns 1\n" + minimalTriangle + "l 1 2\n"
	m := parse(t, src)
	if m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Errorf("expected 3 vertices and 1 triangle, got %d and %d", m.VertexCount(), m.TriangleCount())
	}
}

func TestParse_InlineComments(t *testing.T) {
	src := "v 0 0 0 # origin\nv 1 0 0\nv 0 1 0\nvn 0 0 1 #up\nf 1//1 2//1 3//1 # tri\n"
	m := parse(t, src)
	if m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Errorf("expected 3 vertices and 1 triangle, got %d and %d", m.VertexCount(), m.TriangleCount())
	}
	checkInvariants(t, m, 1)

	// A comment does not hide a missing reference.
	_, err := Parse(strings.NewReader(minimalTriangle+"f 1//1 2//1 # 3//1\n"), "model.obj", DefaultOptions())
	if !errors.Is(err, formats.ErrUnsupportedFaceArity) {
		t.Errorf("expected ErrUnsupportedFaceArity, got %v", err)
	}
}

func TestBuilder_AddFaceFailureLeavesNoVertices(t *testing.T) {
	b := NewBuilder("", DefaultOptions())
	b.AddPosition(mgl32.Vec3{0, 0, 0})
	b.AddPosition(mgl32.Vec3{1, 0, 0})
	b.AddPosition(mgl32.Vec3{0, 1, 0})
	b.AddNormal(mgl32.Vec3{0, 0, 1})

	fv := func(p int) formats.FaceVertex { return formats.FaceVertex{Position: p, Normal: 1} }

	// Two valid corners, then one past the pool.
	err := b.AddFace([3]formats.FaceVertex{fv(1), fv(2), fv(9)})
	if !errors.Is(err, formats.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	if err := b.AddFace([3]formats.FaceVertex{fv(3), fv(2), fv(1)}); err != nil {
		t.Fatalf("AddFace after a failure: %v", err)
	}
	m := b.Build()

	if m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Fatalf("expected 3 vertices and 1 triangle, got %d and %d", m.VertexCount(), m.TriangleCount())
	}
	expected := []uint32{0, 1, 2}
	for i, idx := range m.IndexData() {
		if idx != expected[i] {
			t.Fatalf("expected indices %v, got %v", expected, m.IndexData())
		}
	}
	if m.Vertices[0].Position != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("first vertex should come from the successful face, got %v", m.Vertices[0].Position)
	}
	if m.Stats.Faces != 1 || m.Stats.Reused != 0 {
		t.Errorf("failed face must not count, got %+v", m.Stats)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected error
		line     int
		token    string
	}{
		{"malformed position", "v 0 zero 0\n", formats.ErrMalformedNumber, 1, "zero"},
		{"short normal", "v 0 0 0\nvn 0 1\n", formats.ErrMissingValue, 2, "vn"},
		{"malformed texcoord", "vt a 0\n", formats.ErrMalformedNumber, 1, "a"},
		{"quad face", minimalTriangle + "v 1 1 0\nf 1//1 2//1 3//1 4//1\n", formats.ErrUnsupportedFaceArity, 8, "f 1//1 2//1 3//1 4//1"},
		{"line face", minimalTriangle + "f 1//1 2//1\n", formats.ErrUnsupportedFaceArity, 7, "f 1//1 2//1"},
		{"missing normal", "v 0 0 0\nf 1 1 1\n", formats.ErrMalformedFaceVertex, 2, "1"},
		{"malformed index", minimalTriangle + "f 1//1 x//1 3//1\n", formats.ErrMalformedNumber, 7, "x//1"},
		{"position out of range", minimalTriangle + "f 1//1 2//1 4//1\n", formats.ErrIndexOutOfRange, 7, "1//1 2//1 4//1"},
		{"zero position", minimalTriangle + "f 0//1 2//1 3//1\n", formats.ErrIndexOutOfRange, 7, "0//1 2//1 3//1"},
		{"normal out of range", minimalTriangle + "f 1//2 2//1 3//1\n", formats.ErrIndexOutOfRange, 7, "1//2 2//1 3//1"},
		{"texcoord out of range", minimalTriangle + "f 1/1/1 2//1 3//1\n", formats.ErrIndexOutOfRange, 7, "1/1/1 2//1 3//1"},
		{"empty mtllib", "mtllib\n", formats.ErrMissingValue, 1, "mtllib"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.src), "model.obj", DefaultOptions())
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
			var pe *formats.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *formats.ParseError, got %T", err)
			}
			if pe.Line != tc.line {
				t.Errorf("expected line %d, got %d", tc.line, pe.Line)
			}
			if pe.Token != tc.token {
				t.Errorf("expected token %q, got %q", tc.token, pe.Token)
			}
			if pe.Path != "model.obj" {
				t.Errorf("expected path model.obj, got %q", pe.Path)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.obj")

	m, err := Load(path, DefaultOptions())
	if err != nil {
		t.Fatalf("tolerant load should not fail: %v", err)
	}
	if len(m.VertexData()) != 0 || len(m.IndexData()) != 0 {
		t.Error("missing model should produce empty buffers")
	}
	if !m.IsEmpty() {
		t.Error("missing model should be empty")
	}
	if len(m.Missing) != 1 || m.Missing[0] != path {
		t.Errorf("expected missing list [%s], got %v", path, m.Missing)
	}

	strict := DefaultOptions()
	strict.Strict = true
	if _, err := Load(path, strict); !IsNotFound(err) {
		t.Errorf("strict load should report not found, got %v", err)
	}
}

func TestLoad_TexturedMaterial(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tex.img"), "P3\n# 2x2\n2 2\n255\n1 2 3\n4 5 6\n7 8 9\n10 11 12\n")
	writeFile(t, filepath.Join(dir, "model.mtl"), "newmtl skin\nmap_Kd tex.img\n")
	writeFile(t, filepath.Join(dir, "model.obj"), "mtllib model.mtl\n"+minimalTriangle)

	m, err := Load(filepath.Join(dir, "model.obj"), DefaultOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !m.HasDiffuseTexture() {
		t.Fatal("expected texture to be available")
	}
	if m.DiffuseTextureWidth() != 2 || m.DiffuseTextureHeight() != 2 {
		t.Errorf("expected 2x2, got %dx%d", m.DiffuseTextureWidth(), m.DiffuseTextureHeight())
	}
	data := m.DiffuseTextureData()
	if len(data) != 12 {
		t.Fatalf("expected 12 bytes, got %d", len(data))
	}
	// Rows reversed relative to the decoded order.
	expected := []byte{7, 8, 9, 10, 11, 12, 1, 2, 3, 4, 5, 6}
	for i := range expected {
		if data[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, data)
		}
	}
	checkInvariants(t, m, 1)
}

func TestLoad_MissingMaterial(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "model.obj"), "mtllib gone.mtl\n"+minimalTriangle)

	m, err := Load(filepath.Join(dir, "model.obj"), DefaultOptions())
	if err != nil {
		t.Fatalf("missing material should not fail a tolerant load: %v", err)
	}
	if m.HasDiffuseTexture() {
		t.Error("expected untextured mesh")
	}
	if m.VertexCount() != 3 {
		t.Errorf("geometry should still load, got %d vertices", m.VertexCount())
	}
	if len(m.Missing) != 1 || !strings.HasSuffix(m.Missing[0], "gone.mtl") {
		t.Errorf("expected gone.mtl in missing list, got %v", m.Missing)
	}

	strict := DefaultOptions()
	strict.Strict = true
	_, err = Load(filepath.Join(dir, "model.obj"), strict)
	if !IsNotFound(err) {
		t.Fatalf("strict load should report not found, got %v", err)
	}
	var pe *formats.ParseError
	if !errors.As(err, &pe) || pe.Line != 1 {
		t.Errorf("expected error located at line 1, got %v", err)
	}
}

func TestLoad_MalformedMaterialAbortsModel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "model.mtl"), "Kd 1 one 1\n")
	writeFile(t, filepath.Join(dir, "model.obj"), "mtllib model.mtl\n"+minimalTriangle)

	_, err := Load(filepath.Join(dir, "model.obj"), DefaultOptions())
	if !errors.Is(err, formats.ErrMalformedNumber) {
		t.Errorf("expected malformed number from material, got %v", err)
	}
}

func TestMesh_Bounds(t *testing.T) {
	m := parse(t, "v -1 2 3\nv 4 -5 6\nv 0 0 -7\nvn 0 1 0\nf 1//1 2//1 3//1\n")

	if m.Bounds.Min != (mgl32.Vec3{-1, -5, -7}) {
		t.Errorf("unexpected min %v", m.Bounds.Min)
	}
	if m.Bounds.Max != (mgl32.Vec3{4, 2, 6}) {
		t.Errorf("unexpected max %v", m.Bounds.Max)
	}
	if m.Bounds.Size() != (mgl32.Vec3{5, 7, 13}) {
		t.Errorf("unexpected size %v", m.Bounds.Size())
	}
	if m.Bounds.Center() != (mgl32.Vec3{1.5, -1.5, -0.5}) {
		t.Errorf("unexpected center %v", m.Bounds.Center())
	}
}

func TestMesh_Stats(t *testing.T) {
	m := parse(t, quad)
	s := m.Stats
	if s.Positions != 4 || s.Normals != 1 || s.TexCoords != 0 || s.Faces != 2 || s.Vertices != 4 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestNewPlane(t *testing.T) {
	m := NewPlane(10, [3]uint8{255, 255, 255})

	if m.VertexCount() != 4 || m.TriangleCount() != 2 {
		t.Fatalf("expected 4 vertices and 2 triangles, got %d and %d", m.VertexCount(), m.TriangleCount())
	}
	expected := []uint32{0, 1, 2, 1, 3, 2}
	ebo := m.IndexData()
	for i := range expected {
		if ebo[i] != expected[i] {
			t.Fatalf("expected indices %v, got %v", expected, ebo)
		}
	}
	for i, v := range m.Vertices {
		if v.Position[1] != PlaneY {
			t.Errorf("vertex %d not on the plane: %v", i, v.Position)
		}
		if v.Normal != (mgl32.Vec3{0, 1, 0}) {
			t.Errorf("vertex %d normal should point up, got %v", i, v.Normal)
		}
		if v.Color != (mgl32.Vec3{1, 1, 1}) {
			t.Errorf("vertex %d color should be white, got %v", i, v.Color)
		}
	}
	if m.Bounds.Min != (mgl32.Vec3{-5, -1, -10}) || m.Bounds.Max != (mgl32.Vec3{5, -1, 0}) {
		t.Errorf("unexpected bounds %+v", m.Bounds)
	}
	if m.Vertices[3].TexCoord != (mgl32.Vec2{1, 1}) {
		t.Errorf("top right corner should map to (1,1), got %v", m.Vertices[3].TexCoord)
	}
	checkInvariants(t, m, 2)
}
