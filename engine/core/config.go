package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigFileNames lists the configuration files recognized at the root of a
// directory conversion, in lookup order.
var ConfigFileNames = []string{"config.json", "config.toml", "config.yaml", "config.yml"}

// Config is the per-run configuration handed to every parser.
type Config struct {
	RootDir     string
	OutputDir   string
	Endianness  Endianness
	ImageFormat string
	FlipY       bool
}

// FileConfig mirrors the recognized keys of a configuration file. Unknown
// keys are ignored by every decoder.
type FileConfig struct {
	OutputDir   string `json:"outputDir" toml:"outputDir" yaml:"outputDir"`
	Endian      string `json:"endian" toml:"endian" yaml:"endian"`
	ImageFormat string `json:"imageFormat" toml:"imageFormat" yaml:"imageFormat"`
	FlipY       bool   `json:"flipY" toml:"flipY" yaml:"flipY"`
}

// IsConfigFileName reports whether name is one of ConfigFileNames.
func IsConfigFileName(name string) bool {
	for _, n := range ConfigFileNames {
		if n == name {
			return true
		}
	}
	return false
}

// FindConfigFile returns the first configuration file present in dir, or ""
// when there is none.
func FindConfigFile(dir string) (string, error) {
	for _, name := range ConfigFileNames {
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err == nil {
			if info.Mode().IsRegular() {
				return p, nil
			}
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", IOError(err, "could not stat %q", p)
		}
	}
	return "", nil
}

// LoadConfigFile decodes path according to its extension.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, IOError(err, "could not read config file %q", path)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, fc)
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).Decode(fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		return nil, fmt.Errorf("%w: unsupported config file %q", ErrInvalidConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, path, err)
	}
	return fc, nil
}

// ConfigBuilder accumulates configuration values where the first write of
// each field wins. CLI presets are applied before the config file, so the
// file can never override them.
type ConfigBuilder struct {
	cfg            Config
	outputDirSet   bool
	endianSet      bool
	imageFormatSet bool
	flipYSet       bool
}

func NewConfigBuilder(rootDir string) *ConfigBuilder {
	return &ConfigBuilder{cfg: Config{RootDir: rootDir, Endianness: LittleEndian}}
}

func (b *ConfigBuilder) SetOutputDir(dir string) {
	if b.outputDirSet || dir == "" {
		return
	}
	b.cfg.OutputDir = dir
	b.outputDirSet = true
}

func (b *ConfigBuilder) SetEndianness(e Endianness) {
	if b.endianSet {
		return
	}
	b.cfg.Endianness = e
	b.endianSet = true
}

func (b *ConfigBuilder) SetImageFormat(format string) {
	if b.imageFormatSet || format == "" {
		return
	}
	b.cfg.ImageFormat = format
	b.imageFormatSet = true
}

func (b *ConfigBuilder) SetFlipY(flip bool) {
	if b.flipYSet {
		return
	}
	b.cfg.FlipY = flip
	b.flipYSet = true
}

// Merge applies a configuration file. A relative outputDir is resolved
// against the root directory.
func (b *ConfigBuilder) Merge(fc *FileConfig) error {
	if fc == nil {
		return nil
	}
	if fc.OutputDir != "" {
		dir := fc.OutputDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(b.cfg.RootDir, dir)
		}
		b.SetOutputDir(dir)
	}
	if fc.Endian != "" {
		e, err := ParseEndianness(fc.Endian)
		if err != nil {
			return err
		}
		b.SetEndianness(e)
	}
	b.SetImageFormat(fc.ImageFormat)
	if fc.FlipY {
		b.SetFlipY(true)
	}
	return nil
}

// Build returns a copy; later builder calls do not affect it.
func (b *ConfigBuilder) Build() Config {
	return b.cfg
}
