package parsers

import (
	"os"

	"github.com/gogpu/naga"
	"github.com/spaghettifunk/assetparser/engine/core"
)

// NagaCompiler compiles WGSL to SPIR-V in process.
type NagaCompiler struct{}

func (NagaCompiler) Compile(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	return bytesToBytecode(spirvBytes)
}

// WGSLParser converts WGSL modules; the stages are declared inside the
// module, so no kind is derived from the extension.
type WGSLParser struct {
	Compiler interface {
		Compile(source string) ([]uint32, error)
	}
}

func NewWGSLParser() *WGSLParser {
	return &WGSLParser{Compiler: NagaCompiler{}}
}

func (wp *WGSLParser) InputExtensions() []string {
	return []string{"wgsl"}
}

func (wp *WGSLParser) OutputExtension() string {
	return shaderOutputExtension
}

func (wp *WGSLParser) Parse(inputFile, inputExtension, outputFile string, cfg core.Config) error {
	source, err := os.ReadFile(inputFile)
	if err != nil {
		return core.IOError(err, "could not open file %q", inputFile)
	}

	words, err := wp.Compiler.Compile(string(source))
	if err != nil {
		return core.NewExternalToolError("naga", inputFile, err)
	}

	return writeBytecode(outputFile, words, cfg.Endianness)
}
