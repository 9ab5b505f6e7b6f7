package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// OBJ directive keywords understood by the mesh builder.
const (
	OBJPosition = "v"
	OBJNormal   = "vn"
	OBJTexCoord = "vt"
	OBJFace     = "f"
	OBJMtlLib   = "mtllib"
)

// FaceVertex is one corner of a face as authored: 1-based indices into the
// position, texture coordinate and normal pools. The texture index is optional.
type FaceVertex struct {
	Position    int
	TexCoord    int
	HasTexCoord bool
	Normal      int
}

// String formats the reference back into OBJ syntax.
func (fv FaceVertex) String() string {
	if fv.HasTexCoord {
		return fmt.Sprintf("%d/%d/%d", fv.Position, fv.TexCoord, fv.Normal)
	}
	return fmt.Sprintf("%d//%d", fv.Position, fv.Normal)
}

// ParseFaceVertex parses "p/t/n" or "p//n". Position and normal are required.
func ParseFaceVertex(s string) (FaceVertex, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return FaceVertex{}, ErrMalformedFaceVertex
	}

	var fv FaceVertex
	var err error
	if fv.Position, err = strconv.Atoi(parts[0]); err != nil {
		return FaceVertex{}, ErrMalformedNumber
	}
	if parts[1] != "" {
		if fv.TexCoord, err = strconv.Atoi(parts[1]); err != nil {
			return FaceVertex{}, ErrMalformedNumber
		}
		fv.HasTexCoord = true
	}
	if fv.Normal, err = strconv.Atoi(parts[2]); err != nil {
		return FaceVertex{}, ErrMalformedNumber
	}
	return fv, nil
}

// ParseVec3 parses the first three fields as floats.
// On failure the offending token is returned with the error.
func ParseVec3(fields []string) (mgl32.Vec3, string, error) {
	var v mgl32.Vec3
	if len(fields) < 3 {
		return v, "", ErrMissingValue
	}
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, fields[i], ErrMalformedNumber
		}
		v[i] = float32(f)
	}
	return v, "", nil
}

// ParseVec2 parses the first two fields as floats.
// On failure the offending token is returned with the error.
func ParseVec2(fields []string) (mgl32.Vec2, string, error) {
	var v mgl32.Vec2
	if len(fields) < 2 {
		return v, "", ErrMissingValue
	}
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, fields[i], ErrMalformedNumber
		}
		v[i] = float32(f)
	}
	return v, "", nil
}
