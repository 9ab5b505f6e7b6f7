//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const binDir = "bin"

type Build mg.Namespace

// Builds the meshtool binary into bin/.
func (Build) Meshtool() error {
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join(binDir, "meshtool"), "./cmd/meshtool"), withStream())
	return err
}

// Runs go vet over every package, including the magefiles.
func (Build) Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("vet", "-tags", "mage", "./magefiles"), withStream())
	return err
}

// Removes build output and generated fixtures.
func Clean() error {
	if err := os.RemoveAll(binDir); err != nil {
		return err
	}
	return os.RemoveAll(fixtureDir)
}
