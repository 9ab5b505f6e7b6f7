package formats

import (
	"errors"
	"testing"
)

func TestParseFaceVertex(t *testing.T) {
	tests := []struct {
		input    string
		expected FaceVertex
	}{
		{"1//1", FaceVertex{Position: 1, Normal: 1}},
		{"14//194", FaceVertex{Position: 14, Normal: 194}},
		{"3/7/2", FaceVertex{Position: 3, TexCoord: 7, HasTexCoord: true, Normal: 2}},
	}

	for _, tc := range tests {
		fv, err := ParseFaceVertex(tc.input)
		if err != nil {
			t.Errorf("ParseFaceVertex(%q) failed: %v", tc.input, err)
			continue
		}
		if fv != tc.expected {
			t.Errorf("ParseFaceVertex(%q) = %+v, expected %+v", tc.input, fv, tc.expected)
		}
		if fv.String() != tc.input {
			t.Errorf("String() = %q, expected %q", fv.String(), tc.input)
		}
	}
}

func TestParseFaceVertex_Errors(t *testing.T) {
	tests := []struct {
		input    string
		expected error
	}{
		{"1", ErrMalformedFaceVertex},
		{"1/2", ErrMalformedFaceVertex},
		{"/2/3", ErrMalformedFaceVertex},
		{"1/2/", ErrMalformedFaceVertex},
		{"1/2/3/4", ErrMalformedFaceVertex},
		{"a//1", ErrMalformedNumber},
		{"1/b/1", ErrMalformedNumber},
		{"1//c", ErrMalformedNumber},
	}

	for _, tc := range tests {
		_, err := ParseFaceVertex(tc.input)
		if !errors.Is(err, tc.expected) {
			t.Errorf("ParseFaceVertex(%q) error = %v, expected %v", tc.input, err, tc.expected)
		}
	}
}

func TestParseVec3(t *testing.T) {
	v, _, err := ParseVec3([]string{"1.5", "-2", "3e1"})
	if err != nil {
		t.Fatalf("ParseVec3 failed: %v", err)
	}
	if v[0] != 1.5 || v[1] != -2 || v[2] != 30 {
		t.Errorf("unexpected vector %v", v)
	}

	_, tok, err := ParseVec3([]string{"1", "nope", "3"})
	if !errors.Is(err, ErrMalformedNumber) || tok != "nope" {
		t.Errorf("expected malformed number on 'nope', got %v (%q)", err, tok)
	}

	_, _, err = ParseVec3([]string{"1", "2"})
	if !errors.Is(err, ErrMissingValue) {
		t.Errorf("expected missing value, got %v", err)
	}
}

func TestParseVec2(t *testing.T) {
	v, _, err := ParseVec2([]string{"0.25", "0.75", "0"})
	if err != nil {
		t.Fatalf("ParseVec2 failed: %v", err)
	}
	if v[0] != 0.25 || v[1] != 0.75 {
		t.Errorf("unexpected vector %v", v)
	}

	_, _, err = ParseVec2([]string{"0.25"})
	if !errors.Is(err, ErrMissingValue) {
		t.Errorf("expected missing value, got %v", err)
	}
}
