//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the assetparser binary into bin/.
func (Build) Tool() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/assetparser", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the test suite of every package.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
