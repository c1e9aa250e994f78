package assets

import (
	"path/filepath"
	"strings"
)

// Asset is a file found during enumeration, consumed once.
type Asset struct {
	Path      string
	Extension string
}

func NewAsset(path string) Asset {
	return Asset{Path: path, Extension: normalizeExtension(filepath.Ext(path))}
}

// normalizeExtension lower-cases ext and strips the leading dot.
func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// replaceExtension swaps the extension of path for ext (given without dot).
func replaceExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}
