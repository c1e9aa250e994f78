package parsers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spaghettifunk/assetparser/engine/core"
)

// Parser converts one kind of source asset into its runtime binary form.
// Implementations receive everything they need as arguments and may be
// shared across files.
type Parser interface {
	// InputExtensions lists the lower-case extensions, without the dot, claimed by the parser.
	InputExtensions() []string
	// OutputExtension is the extension, without the dot, of every file the parser writes.
	OutputExtension() string
	// Parse converts inputFile into outputFile.
	Parse(inputFile, inputExtension, outputFile string, cfg core.Config) error
}

// writeOutput streams the output through fn into a temp file next to
// outputFile and renames it into place once fn succeeded. On any failure the
// temp file is removed and outputFile is left untouched.
func writeOutput(outputFile string, fn func(bw *core.BinaryWriter) error) (err error) {
	dir := filepath.Dir(outputFile)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(outputFile), uuid.NewString()))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return core.IOError(err, "could not open file %q to write", outputFile)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	bw := core.NewBinaryWriter(f)
	if err = fn(bw); err != nil {
		if bw.Err() != nil {
			return core.IOError(err, "could not write file %q", outputFile)
		}
		return err
	}
	if err = bw.Err(); err != nil {
		return core.IOError(err, "could not write file %q", outputFile)
	}
	if err = f.Close(); err != nil {
		return core.IOError(err, "could not close file %q", outputFile)
	}
	if err = os.Rename(tmp, outputFile); err != nil {
		_ = os.Remove(tmp)
		return core.IOError(err, "could not move output into %q", outputFile)
	}
	return nil
}
