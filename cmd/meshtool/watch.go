package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/meshweld/internal/export"
	"github.com/Faultbox/meshweld/internal/logger"
	"github.com/Faultbox/meshweld/internal/mesh"
	"github.com/Faultbox/meshweld/internal/watch"
)

func cmdWatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool watch <model.obj> [out.glb]")
		os.Exit(1)
	}
	path := args[0]
	out := ""
	if len(args) > 1 {
		out = args[1]
	}

	reload := func() ([]string, error) {
		m, err := mesh.Load(path, meshOptions())
		if err != nil {
			return nil, err
		}
		logger.Info("model loaded",
			zap.String("path", path),
			zap.Int("vertices", m.VertexCount()),
			zap.Int("triangles", m.TriangleCount()),
			zap.Bool("textured", m.HasDiffuseTexture()))

		if out != "" && !m.IsEmpty() {
			if err := export.WriteGLB(m, out, exportOptions()); err != nil {
				return nil, err
			}
		}
		return watch.Sources(m), nil
	}

	w, err := watch.New(cfg.Watch.Debounce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	sources, err := reload()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := w.Track(sources...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %d files, press Ctrl+C to stop\n", len(sources))
	if err := w.Run(ctx, reload); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
