//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Converts the tree in $ASSETS_DIR (default "assets") into $ASSETS_OUT (default "build/assets").
func (Run) Assets() error {
	mg.Deps(Build.Tool)

	in := envOr("ASSETS_DIR", "assets")
	out := envOr("ASSETS_OUT", "build/assets")
	fmt.Printf("Converting %s into %s...\n", in, out)
	if _, err := executeCmd("bin/assetparser", withArgs("-d", in, "-o", out), withStream()); err != nil {
		return err
	}
	return nil
}

// Watches $ASSETS_DIR and converts changed files until interrupted.
func (Run) Watch() error {
	mg.Deps(Build.Tool)

	in := envOr("ASSETS_DIR", "assets")
	out := envOr("ASSETS_OUT", "build/assets")
	if _, err := executeCmd("bin/assetparser", withArgs("-d", in, "-o", out, "--watch"), withStream()); err != nil {
		return err
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
