package parsers

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/assetparser/engine/core"
)

// ShaderKind is the pipeline stage a GLSL source compiles for.
type ShaderKind int

const (
	ShaderKindVertex ShaderKind = iota
	ShaderKindTessControl
	ShaderKindTessEvaluation
	ShaderKindGeometry
	ShaderKindFragment
	ShaderKindCompute
)

// Stage returns the glslc -fshader-stage name of the kind.
func (k ShaderKind) Stage() string {
	switch k {
	case ShaderKindVertex:
		return "vert"
	case ShaderKindTessControl:
		return "tesc"
	case ShaderKindTessEvaluation:
		return "tese"
	case ShaderKindGeometry:
		return "geom"
	case ShaderKindFragment:
		return "frag"
	case ShaderKindCompute:
		return "comp"
	}
	return ""
}

func (k ShaderKind) String() string {
	if s := k.Stage(); s != "" {
		return s
	}
	return fmt.Sprintf("ShaderKind(%d)", int(k))
}

func ShaderKindFromExtension(ext string) (ShaderKind, error) {
	switch ext {
	case "vert":
		return ShaderKindVertex, nil
	case "tesc":
		return ShaderKindTessControl, nil
	case "tese":
		return ShaderKindTessEvaluation, nil
	case "geom":
		return ShaderKindGeometry, nil
	case "frag":
		return ShaderKindFragment, nil
	case "comp":
		return ShaderKindCompute, nil
	}
	return 0, fmt.Errorf("%w: %q", core.ErrInvalidExtension, ext)
}

// ShaderCompiler turns shader source into SPIR-V words.
type ShaderCompiler interface {
	Compile(source string, kind ShaderKind, sourcePath string) ([]uint32, error)
}

var shaderInputExtensions = []string{"vert", "tesc", "tese", "geom", "frag", "comp"}

const shaderOutputExtension = "spv"

type ShaderParser struct {
	Compiler ShaderCompiler
}

func NewShaderParser() *ShaderParser {
	return &ShaderParser{Compiler: NewGlslcCompiler()}
}

func (sp *ShaderParser) InputExtensions() []string {
	return shaderInputExtensions
}

func (sp *ShaderParser) OutputExtension() string {
	return shaderOutputExtension
}

func (sp *ShaderParser) Parse(inputFile, inputExtension, outputFile string, cfg core.Config) error {
	kind, err := ShaderKindFromExtension(inputExtension)
	if err != nil {
		return err
	}

	source, err := os.ReadFile(inputFile)
	if err != nil {
		return core.IOError(err, "could not open file %q", inputFile)
	}

	words, err := sp.Compiler.Compile(string(source), kind, inputFile)
	if err != nil {
		return core.NewExternalToolError("shader compiler", inputFile, err)
	}

	return writeBytecode(outputFile, words, cfg.Endianness)
}
