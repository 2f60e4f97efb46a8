//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds the binary and runs it against fusion.toml.
func (Run) Headless() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run headless device...")
	if _, err := executeCmd("bin/fusion", withArgs("-config", "fusion.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
