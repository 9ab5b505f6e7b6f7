package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/meshweld/pkg/formats"
)

func cmdPPM(args []string) {
	fs := flag.NewFlagSet("ppm", flag.ExitOnError)
	times := fs.Int("n", 1, "Apply the operation N times")
	fs.Parse(args)

	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool ppm [-n N] <flip|darken|lighten> <in.ppm> <out.ppm|out.bmp>")
		os.Exit(1)
	}

	var op func(*formats.PPM)
	switch fs.Arg(0) {
	case "flip":
		op = (*formats.PPM).VerticalFlip
	case "darken":
		op = (*formats.PPM).Darken
	case "lighten":
		op = (*formats.PPM).Lighten
	default:
		fmt.Fprintf(os.Stderr, "Unknown operation: %s\n", fs.Arg(0))
		os.Exit(1)
	}

	img, err := formats.ParsePPMFile(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < *times; i++ {
		op(img)
	}

	if err := writeImage(img, fs.Arg(2)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote: %s (%dx%d, max %d)\n", fs.Arg(2), img.Width, img.Height, img.MaxValue)
}
