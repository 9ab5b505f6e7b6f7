package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/Faultbox/meshweld/internal/export"
	"github.com/Faultbox/meshweld/internal/mesh"
	"github.com/Faultbox/meshweld/pkg/formats"
)

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	noTexture := fs.Bool("no-texture", false, "Do not embed the diffuse texture")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool export [-no-texture] <model.obj> <out.glb>")
		os.Exit(1)
	}

	m := loadMesh(fs.Arg(0))
	opts := exportOptions()
	if *noTexture {
		opts.EmbedTexture = false
	}

	if err := export.WriteGLB(m, fs.Arg(1), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported: %s (%d vertices, %d triangles)\n", fs.Arg(1), m.VertexCount(), m.TriangleCount())
}

func cmdPlane(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool plane <size> <out.glb>")
		os.Exit(1)
	}

	size, err := strconv.ParseFloat(args[0], 32)
	if err != nil || size <= 0 {
		fmt.Fprintf(os.Stderr, "Invalid size: %s\n", args[0])
		os.Exit(1)
	}

	m := mesh.NewPlane(float32(size), cfg.Mesh.DefaultColor)
	if err := export.WriteGLB(m, args[1], exportOptions()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported: %s\n", args[1])
}

// cmdTexture writes the model's diffuse texture top row first, as authored.
func cmdTexture(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool texture <model.obj> <out.bmp|out.ppm>")
		os.Exit(1)
	}

	m := loadMesh(args[0])
	if !m.HasDiffuseTexture() {
		fmt.Fprintf(os.Stderr, "No diffuse texture in %s\n", args[0])
		os.Exit(1)
	}

	img := m.Material.Diffuse.Clone()
	if m.Material.Flipped {
		img.VerticalFlip()
	}

	if err := writeImage(img, args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Extracted: %s (%dx%d)\n", args[1], img.Width, img.Height)
}

// writeImage saves img as BMP or P3 depending on the extension of path.
func writeImage(img *formats.PPM, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".bmp") {
		return img.SaveFile(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, img.Image()); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
