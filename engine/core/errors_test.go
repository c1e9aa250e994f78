package core

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExternalToolError(t *testing.T) {
	err := NewExternalToolError("glslc", "a.frag", errors.New("syntax error"))
	assert.ErrorIs(t, err, ErrExternalTool)
	assert.Contains(t, err.Error(), "a.frag")
	assert.Contains(t, err.Error(), "syntax error")
}

func TestIOErrorKeepsChain(t *testing.T) {
	err := IOError(os.ErrPermission, "could not open %q", "out.img")
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "out.img")
}
