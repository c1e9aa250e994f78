package core

import (
	"errors"
	"fmt"
)

var (
	// setup
	ErrRegistrationConflict = errors.New("extension already registered")
	ErrInvalidArguments     = errors.New("invalid arguments")
	ErrInvalidConfig        = errors.New("invalid configuration")

	// paths
	ErrNotFound         = errors.New("path does not exist")
	ErrNotAFile         = errors.New("path is not a regular file")
	ErrNotADirectory    = errors.New("path is not a directory")
	ErrMissingExtension = errors.New("file does not have an extension")

	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrInvalidExtension     = errors.New("invalid extension")
	ErrInvalidFormat        = errors.New("invalid image format")
	ErrImageTooLarge        = errors.New("image dimensions exceed 65535")
	ErrOutputCollision      = errors.New("inputs share an output path")

	ErrExternalTool = errors.New("external tool failed")
	ErrIO           = errors.New("i/o failure")
)

// ExternalToolError carries the diagnostic of a decoder or compiler that
// rejected an asset.
type ExternalToolError struct {
	Tool    string
	Path    string
	Message string
}

func NewExternalToolError(tool, path string, err error) *ExternalToolError {
	return &ExternalToolError{Tool: tool, Path: path, Message: err.Error()}
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("error parsing file %q with %s - %s", e.Path, e.Tool, e.Message)
}

func (e *ExternalToolError) Is(target error) bool {
	return target == ErrExternalTool
}

// IOError wraps err so that both errors.Is(_, ErrIO) and errors.Is(_, err) hold.
func IOError(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, fmt.Sprintf(format, args...), err)
}
