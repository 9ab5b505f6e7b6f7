// meshtool is a CLI utility for welding OBJ models into GPU-ready buffers.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/meshweld/internal/config"
	"github.com/Faultbox/meshweld/internal/export"
	"github.com/Faultbox/meshweld/internal/logger"
	"github.com/Faultbox/meshweld/internal/mesh"
)

var cfg *config.Config

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "export":
		cmdExport(args)
	case "plane":
		cmdPlane(args)
	case "texture":
		cmdTexture(args)
	case "ppm":
		cmdPPM(args)
	case "watch":
		cmdWatch(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - OBJ model welding utility

Usage:
  meshtool [flags] <command> [options]

Flags:
  -config <path>     Config file (default ./meshweld.yaml)
  -debug             Enable debug logging
  -strict            Fail on missing model, material or texture files
  -log-file <path>   Also write logs to a rotating file

Commands:
  info <model.obj>                        Show mesh statistics
  dump <model.obj>                        Print vertex and index buffers
  export <model.obj> <out.glb>            Export as binary glTF
  plane <size> <out.glb>                  Export a ground plane
  texture <model.obj> <out.bmp|out.ppm>   Extract the diffuse texture
  ppm <flip|darken|lighten> <in> <out>    Transform a P3 image
  watch <model.obj> [out.glb]             Reload (and re-export) on change
  config [path]                           Write the effective config as YAML

Examples:
  meshtool info models/cube.obj
  meshtool -strict export models/cube.obj cube.glb
  meshtool ppm flip texture.ppm flipped.ppm`)
}

func meshOptions() mesh.Options {
	return mesh.Options{
		DefaultColor: cfg.Mesh.DefaultColor,
		Strict:       cfg.Mesh.Strict,
		FlipTexture:  cfg.Texture.FlipVertical,
	}
}

func exportOptions() export.Options {
	return export.Options{
		Generator:    cfg.Export.Generator,
		EmbedTexture: cfg.Export.EmbedTexture,
	}
}

func loadMesh(path string) *mesh.Mesh {
	m, err := mesh.Load(path, meshOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return m
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <model.obj>")
		os.Exit(1)
	}

	m := loadMesh(args[0])
	s := m.Stats

	fmt.Printf("Model:     %s\n", m.Path)
	fmt.Printf("Positions: %d\n", s.Positions)
	fmt.Printf("Normals:   %d\n", s.Normals)
	fmt.Printf("TexCoords: %d\n", s.TexCoords)
	fmt.Printf("Faces:     %d\n", s.Faces)
	fmt.Printf("Vertices:  %d (%d corners reused)\n", s.Vertices, s.Reused)
	fmt.Printf("Indices:   %d\n", len(m.IndexData()))
	if !m.IsEmpty() {
		size := m.Bounds.Size()
		fmt.Printf("Bounds:    min %v max %v size %.3f x %.3f x %.3f\n",
			m.Bounds.Min, m.Bounds.Max, size[0], size[1], size[2])
	}

	if m.Material != nil {
		fmt.Println()
		fmt.Printf("Material:  %s\n", m.Material.Path)
		if m.Material.MTL != nil && m.Material.MTL.Name != "" {
			fmt.Printf("Name:      %s\n", m.Material.MTL.Name)
		}
		if m.HasDiffuseTexture() {
			fmt.Printf("Texture:   %s (%dx%d)\n", m.Material.TexturePath, m.DiffuseTextureWidth(), m.DiffuseTextureHeight())
		} else {
			fmt.Println("Texture:   none")
		}
	}

	if len(m.Missing) > 0 {
		fmt.Println()
		fmt.Println("Missing files:")
		for _, p := range m.Missing {
			fmt.Printf("  %s\n", p)
		}
	}
}

func cmdDump(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool dump <model.obj>")
		os.Exit(1)
	}

	m := loadMesh(args[0])

	vbo := m.VertexData()
	fmt.Printf("# vertices: %d (stride %d)\n", m.VertexCount(), mesh.Stride)
	for i := 0; i < len(vbo); i += mesh.Stride {
		v := vbo[i : i+mesh.Stride]
		fmt.Printf("%4d  pos %8.4f %8.4f %8.4f  col %.3f %.3f %.3f  nrm %7.4f %7.4f %7.4f  uv %.4f %.4f\n",
			i/mesh.Stride, v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], v[8], v[9], v[10])
	}

	fmt.Printf("# triangles: %d\n", m.TriangleCount())
	for i, t := range m.Triangles {
		fmt.Printf("%4d  %d %d %d\n", i, t[0], t[1], t[2])
	}
}

func cmdConfig(args []string) {
	path := filepath.Join(config.ConfigDir(), "config.yaml")
	save := cfg.Save
	if len(args) > 0 {
		path = args[0]
		save = func() error { return cfg.SaveTo(path) }
	}

	if err := save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote: %s\n", path)
}
