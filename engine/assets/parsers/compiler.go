package parsers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/assetparser/engine/core"
)

type cmdOptions struct {
	args  []string
	dir   string
	stdin io.Reader
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

func withDir(dir string) cmdOption {
	return func(o *cmdOptions) {
		o.dir = dir
	}
}

func withStdin(r io.Reader) cmdOption {
	return func(o *cmdOptions) {
		o.stdin = r
	}
}

// executeCmd runs command and returns its stdout. On failure the error
// carries whatever the command printed on stderr.
func executeCmd(command string, options ...cmdOption) ([]byte, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}

	core.LogDebug("Executing: %s %s", command, strings.Join(opts.args, " "))
	cmd := exec.Command(command, opts.args...)
	if opts.dir != "" {
		cmd.Dir = opts.dir
	}
	cmd.Stdin = opts.stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("error executing %s: %w", command, err)
		}
		return nil, errors.New(msg)
	}
	return stdout.Bytes(), nil
}

// GlslcCompiler compiles GLSL to SPIR-V with the glslc binary from the
// shaderc project, optimizing for performance.
type GlslcCompiler struct {
	// Binary defaults to "glslc" looked up in PATH.
	Binary string
	// Args are appended before the input, e.g. include directories.
	Args []string
}

func NewGlslcCompiler() *GlslcCompiler {
	return &GlslcCompiler{Binary: "glslc"}
}

func (gc *GlslcCompiler) Compile(source string, kind ShaderKind, sourcePath string) ([]uint32, error) {
	bin := gc.Binary
	if bin == "" {
		bin = "glslc"
	}

	args := []string{"-O", "-x", "glsl", "-fshader-stage=" + kind.Stage()}
	args = append(args, gc.Args...)
	args = append(args, "-o", "-", "-")

	// run next to the source so relative -I paths resolve like a direct invocation
	out, err := executeCmd(bin,
		withArgs(args...),
		withDir(filepath.Dir(sourcePath)),
		withStdin(strings.NewReader(source)))
	if err != nil {
		// glslc names stdin "<stdin>" in its diagnostics
		return nil, errors.New(strings.ReplaceAll(err.Error(), "<stdin>", sourcePath))
	}
	return bytesToBytecode(out)
}
