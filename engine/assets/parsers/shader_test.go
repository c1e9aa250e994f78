package parsers

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/assetparser/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompiler struct {
	words []uint32
	err   error

	gotSource string
	gotKind   ShaderKind
	gotPath   string
}

func (c *fakeCompiler) Compile(source string, kind ShaderKind, sourcePath string) ([]uint32, error) {
	c.gotSource, c.gotKind, c.gotPath = source, kind, sourcePath
	return c.words, c.err
}

func TestShaderKindFromExtension(t *testing.T) {
	tests := map[string]ShaderKind{
		"vert": ShaderKindVertex,
		"tesc": ShaderKindTessControl,
		"tese": ShaderKindTessEvaluation,
		"geom": ShaderKindGeometry,
		"frag": ShaderKindFragment,
		"comp": ShaderKindCompute,
	}
	for ext, want := range tests {
		got, err := ShaderKindFromExtension(ext)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, ext, got.Stage())
	}

	_, err := ShaderKindFromExtension("glsl")
	assert.ErrorIs(t, err, core.ErrInvalidExtension)
}

func TestShaderParserClaimsEveryKind(t *testing.T) {
	sp := NewShaderParser()
	for _, ext := range sp.InputExtensions() {
		_, err := ShaderKindFromExtension(ext)
		assert.NoError(t, err, ext)
	}
	assert.Equal(t, "spv", sp.OutputExtension())
}

func TestShaderParserWritesWords(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.frag")
	require.NoError(t, os.WriteFile(in, []byte("void main() {}"), 0o644))

	comp := &fakeCompiler{words: []uint32{0x07230203, 0x00010000}}
	sp := &ShaderParser{Compiler: comp}

	out := filepath.Join(dir, "a.spv")
	require.NoError(t, sp.Parse(in, "frag", out, core.Config{Endianness: core.BigEndian}))

	assert.Equal(t, "void main() {}", comp.gotSource)
	assert.Equal(t, ShaderKindFragment, comp.gotKind)
	assert.Equal(t, in, comp.gotPath)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07, 0x23, 0x02, 0x03, 0x00, 0x01, 0x00, 0x00}, data)
}

func TestShaderParserCompileError(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.vert")
	require.NoError(t, os.WriteFile(in, []byte("broken"), 0o644))

	sp := &ShaderParser{Compiler: &fakeCompiler{err: errors.New("a.vert:1: error: syntax error")}}
	err := sp.Parse(in, "vert", filepath.Join(dir, "a.spv"), core.Config{})
	require.ErrorIs(t, err, core.ErrExternalTool)
	assert.Contains(t, err.Error(), "syntax error")

	_, statErr := os.Stat(filepath.Join(dir, "a.spv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestShaderParserInvalidExtension(t *testing.T) {
	sp := &ShaderParser{Compiler: &fakeCompiler{}}
	err := sp.Parse("a.txt", "txt", "a.spv", core.Config{})
	assert.ErrorIs(t, err, core.ErrInvalidExtension)
}

func TestShaderParserMissingSource(t *testing.T) {
	sp := &ShaderParser{Compiler: &fakeCompiler{}}
	err := sp.Parse(filepath.Join(t.TempDir(), "nope.frag"), "frag", "a.spv", core.Config{})
	assert.ErrorIs(t, err, core.ErrIO)
}

func TestGlslcCompiler(t *testing.T) {
	if _, err := exec.LookPath("glslc"); err != nil {
		t.Skip("glslc not installed")
	}
	gc := NewGlslcCompiler()

	words, err := gc.Compile("#version 450\nvoid main() {}\n", ShaderKindCompute, "test.comp")
	require.NoError(t, err)
	require.NotEmpty(t, words)
	assert.Equal(t, uint32(0x07230203), words[0])

	_, err = gc.Compile("#version 450\nvoid main() { nope }\n", ShaderKindCompute, "broken.comp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.comp")
}

func TestGlslcCompilerMissingBinary(t *testing.T) {
	gc := &GlslcCompiler{Binary: "glslc-does-not-exist"}
	_, err := gc.Compile("void main() {}", ShaderKindVertex, "a.vert")
	assert.Error(t, err)
}

func TestBytesToBytecode(t *testing.T) {
	words, err := bytesToBytecode([]byte{0x03, 0x02, 0x23, 0x07, 1, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x07230203, 1}, words)

	_, err = bytesToBytecode([]byte{1, 2, 3})
	assert.Error(t, err)
}
