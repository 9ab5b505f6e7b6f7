//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the unit tests with the race detector.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Runs the unit tests and writes coverage.out.
func (Test) Cover() error {
	_, err := executeCmd("go", withArgs("test", "-coverprofile=coverage.out", "./..."), withStream())
	return err
}

// Exports the sample fixture through meshtool end to end.
func (Test) Smoke() error {
	mg.Deps(Fixtures, Build.Meshtool)

	tool := "../" + binDir + "/meshtool"
	steps := [][]string{
		{"info", "cube.obj"},
		{"export", "cube.obj", "cube.glb"},
		{"texture", "cube.obj", "cube.bmp"},
		{"ppm", "flip", "checker.ppm", "checker_flipped.ppm"},
		{"plane", "10", "plane.glb"},
	}
	for _, args := range steps {
		if _, err := executeCmd(tool, withArgs(args...), withDir(fixtureDir), withStream()); err != nil {
			return err
		}
	}
	return nil
}
