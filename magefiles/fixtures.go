//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshweld/pkg/formats"
)

const fixtureDir = "fixtures"

// Writes a textured cube (OBJ, MTL and P3 checker texture) into fixtures/.
func Fixtures() error {
	if err := os.MkdirAll(fixtureDir, 0755); err != nil {
		return err
	}

	checker := checkerTexture(8, 8)
	if err := checker.SaveFile(filepath.Join(fixtureDir, "checker.ppm")); err != nil {
		return err
	}

	mtl := "newmtl checker\nKd 1 1 1\nmap_Kd checker.ppm\n"
	if err := os.WriteFile(filepath.Join(fixtureDir, "cube.mtl"), []byte(mtl), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(fixtureDir, "cube.obj"), []byte(cubeOBJ()), 0644); err != nil {
		return err
	}

	fmt.Printf("Wrote fixtures to %s/\n", fixtureDir)
	return nil
}

func checkerTexture(w, h int) *formats.PPM {
	img := &formats.PPM{Width: w, Height: h, MaxValue: 255, Pixels: make([]formats.Pixel, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := formats.Pixel{R: 40, G: 40, B: 40}
			if (x+y)%2 == 0 {
				px = formats.Pixel{R: 230, G: 230, B: 230}
			}
			// Mark the top-left cell so orientation is visible.
			if x == 0 && y == 0 {
				px = formats.Pixel{R: 255}
			}
			img.Set(x, y, px)
		}
	}
	return img
}

// cubeOBJ returns a unit cube with one normal per side, so each corner welds to
// three vertices: 24 vertices and 36 indices.
func cubeOBJ() string {
	var b strings.Builder
	b.WriteString("# unit cube\nmtllib cube.mtl\no cube\n")

	for _, p := range [][3]int{
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	} {
		fmt.Fprintf(&b, "v %d %d %d\n", p[0], p[1], p[2])
	}
	b.WriteString("vt 0 0\nvt 1 0\nvt 1 1\nvt 0 1\n")
	for _, n := range [][3]int{
		{0, 0, 1}, {0, 0, -1}, {1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0},
	} {
		fmt.Fprintf(&b, "vn %d %d %d\n", n[0], n[1], n[2])
	}

	b.WriteString("usemtl checker\ns off\n")
	sides := [][4]int{
		{1, 2, 3, 4}, // front
		{6, 5, 8, 7}, // back
		{2, 6, 7, 3}, // right
		{5, 1, 4, 8}, // left
		{4, 3, 7, 8}, // top
		{5, 6, 2, 1}, // bottom
	}
	for n, q := range sides {
		fmt.Fprintf(&b, "f %d/1/%d %d/2/%d %d/3/%d\n", q[0], n+1, q[1], n+1, q[2], n+1)
		fmt.Fprintf(&b, "f %d/1/%d %d/3/%d %d/4/%d\n", q[0], n+1, q[2], n+1, q[3], n+1)
	}
	return b.String()
}
