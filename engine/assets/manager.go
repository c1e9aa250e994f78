package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/spaghettifunk/assetparser/engine/assets/parsers"
	"github.com/spaghettifunk/assetparser/engine/core"
)

// Manager owns the parser registry and drives single-file and whole-tree
// conversions. It is not safe for concurrent use; runs are sequential.
type Manager struct {
	registry map[string]parsers.Parser

	// presets set before a run; a config file never overrides them
	outputDir   string
	endianness  core.Endianness
	endianSet   bool
	imageFormat string
}

func NewManager() *Manager {
	return &Manager{
		registry: make(map[string]parsers.Parser),
	}
}

// RegisterParser adds p for every extension it claims. If any of them is
// already claimed nothing is registered.
func (m *Manager) RegisterParser(p parsers.Parser) error {
	exts := p.InputExtensions()
	keys := make([]string, 0, len(exts))
	for _, ext := range exts {
		key := normalizeExtension(ext)
		if key == "" {
			return fmt.Errorf("%w: parser %T claims an empty extension", core.ErrInvalidExtension, p)
		}
		if _, exists := m.registry[key]; exists || slices.Contains(keys, key) {
			return fmt.Errorf("%w: could not add parser %T, extension %q has already been added",
				core.ErrRegistrationConflict, p, key)
		}
		keys = append(keys, key)
	}

	for _, key := range keys {
		m.registry[key] = p
	}
	core.LogDebug("Parser %T registered for %v.", p, keys)
	return nil
}

// Extensions returns every registered extension, sorted.
func (m *Manager) Extensions() []string {
	return slices.Sorted(maps.Keys(m.registry))
}

// SetOutputDirectory records the output root used by the next conversions.
func (m *Manager) SetOutputDirectory(path string) {
	m.outputDir = path
}

func (m *Manager) SetEndianness(e core.Endianness) {
	m.endianness = e
	m.endianSet = true
}

// SetImageFormat selects the channel layout every image is remapped to.
func (m *Manager) SetImageFormat(f parsers.ImageFormat) {
	m.imageFormat = f.String()
}

func (m *Manager) parserFor(ext string) (parsers.Parser, bool) {
	p, ok := m.registry[normalizeExtension(ext)]
	return p, ok
}

func (m *Manager) newConfigBuilder(root string) *core.ConfigBuilder {
	b := core.NewConfigBuilder(root)
	b.SetOutputDir(m.outputDir)
	if m.endianSet {
		b.SetEndianness(m.endianness)
	}
	b.SetImageFormat(m.imageFormat)
	return b
}

// ParseSingleFile converts path exactly once, regardless of timestamps.
func (m *Manager) ParseSingleFile(path string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %q", core.ErrNotFound, path)
		}
		return Result{}, core.IOError(err, "could not stat %q", path)
	}
	if !info.Mode().IsRegular() {
		return Result{}, fmt.Errorf("%w: %q", core.ErrNotAFile, path)
	}

	asset := NewAsset(path)
	if asset.Extension == "" {
		return Result{}, fmt.Errorf("%w: %q", core.ErrMissingExtension, path)
	}
	parser, ok := m.parserFor(asset.Extension)
	if !ok {
		return Result{}, fmt.Errorf("%w: could not parse file %q, unsupported file extension %q",
			core.ErrUnsupportedExtension, path, asset.Extension)
	}

	cfg := m.newConfigBuilder(filepath.Dir(path)).Build()
	if err := validateConfig(cfg); err != nil {
		return Result{}, err
	}

	output := replaceExtension(path, parser.OutputExtension())
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return Result{}, core.IOError(err, "could not create directory %q", cfg.OutputDir)
		}
		output = filepath.Join(cfg.OutputDir, filepath.Base(output))
	}

	res := m.convert(asset, parser, output, cfg)
	return res, res.Err
}

// ParseDirectory converts every eligible file below root. Only an invalid
// root or configuration is returned as an error; every other failure is
// recorded in the report and traversal continues.
func (m *Manager) ParseDirectory(root string) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", core.ErrNotFound, root)
		}
		return nil, core.IOError(err, "could not stat %q", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", core.ErrNotADirectory, root)
	}
	root = filepath.Clean(root)

	clock := core.NewClock()
	clock.Start()

	cfg, err := m.loadConfig(root)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.New(), Root: root, OutputDir: cfg.OutputDir}
	core.LogInfo("Converting %q (run %s, %s endian).", root, report.RunID, cfg.Endianness)

	dirs, files, err := m.plan(root, cfg, report)
	if err != nil {
		return nil, err
	}

	// directories first: every write below must find its parent in place
	for _, dir := range dirs {
		res := DirResult{Path: dir}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			res.Err = core.IOError(err, "could not create directory %q", dir)
			core.LogError("[ERROR] %s", res.Err)
		}
		report.Directories = append(report.Directories, res)
	}

	for _, asset := range files {
		report.Files = append(report.Files, m.convertIfStale(root, asset, cfg))
	}

	clock.Stop()
	report.Elapsed = clock.Elapsed()
	core.LogInfo("Finished %q: %s.", root, report)
	return report, nil
}

func (m *Manager) loadConfig(root string) (core.Config, error) {
	b := m.newConfigBuilder(root)

	path, err := core.FindConfigFile(root)
	if err != nil {
		return core.Config{}, err
	}
	if path != "" {
		fc, err := core.LoadConfigFile(path)
		if err != nil {
			return core.Config{}, err
		}
		if err := b.Merge(fc); err != nil {
			return core.Config{}, fmt.Errorf("%s: %w", path, err)
		}
		core.LogDebug("Loaded configuration %q.", path)
	}

	cfg := b.Build()
	if err := validateConfig(cfg); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg core.Config) error {
	if cfg.ImageFormat == "" {
		return nil
	}
	if _, err := parsers.ParseImageFormat(cfg.ImageFormat); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	return nil
}

// plan enumerates root, returning the output directories to create and the
// files to convert. Entries that cannot be read are recorded in report.
func (m *Manager) plan(root string, cfg core.Config, report *Report) ([]string, []Asset, error) {
	var (
		dirs   []string
		files  []Asset
		absOut string
	)
	if cfg.OutputDir != "" {
		dirs = append(dirs, cfg.OutputDir)
		absOut, _ = filepath.Abs(cfg.OutputDir)
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			walkErr := core.IOError(err, "could not read %q", path)
			core.LogError("[ERROR] %s", walkErr)
			if d != nil && d.IsDir() {
				report.Directories = append(report.Directories, DirResult{Path: path, Err: walkErr})
				return filepath.SkipDir
			}
			report.Files = append(report.Files, Result{Input: path, Outcome: OutcomeFailed, Err: walkErr})
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if absOut != "" {
				if abs, _ := filepath.Abs(path); abs == absOut {
					// output tree nested inside the input tree
					return filepath.SkipDir
				}
			}
			if cfg.OutputDir != "" {
				rel, err := filepath.Rel(root, path)
				if err != nil {
					return err
				}
				dirs = append(dirs, filepath.Join(cfg.OutputDir, rel))
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// follow links to files; linked directories are not descended
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				core.LogDebug("Skipping link %q.", path)
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		if filepath.Dir(path) == root && core.IsConfigFileName(d.Name()) {
			return nil
		}
		asset := NewAsset(path)
		if _, ok := m.parserFor(asset.Extension); !ok {
			return nil
		}
		files = append(files, asset)
		return nil
	})
	if err != nil {
		return nil, nil, core.IOError(err, "could not enumerate %q", root)
	}
	return dirs, m.dropCollisions(root, cfg, files, report), nil
}

// dropCollisions removes every input whose output path is shared with another
// input (a.png and a.jpg both yield a.img) and records them as failed.
func (m *Manager) dropCollisions(root string, cfg core.Config, files []Asset, report *Report) []Asset {
	claims := make(map[string][]string, len(files))
	outputs := make([]string, len(files))
	for i, asset := range files {
		parser, _ := m.parserFor(asset.Extension)
		output, err := outputPath(root, cfg.OutputDir, asset, parser)
		if err != nil {
			// reported by convertIfStale
			continue
		}
		outputs[i] = output
		claims[output] = append(claims[output], asset.Path)
	}

	kept := files[:0]
	for i, asset := range files {
		inputs := claims[outputs[i]]
		if outputs[i] == "" || len(inputs) < 2 {
			kept = append(kept, asset)
			continue
		}
		err := fmt.Errorf("%w: %q is produced by %q", core.ErrOutputCollision, outputs[i], inputs)
		core.LogError("[ERROR] %s", err)
		report.Files = append(report.Files, Result{Input: asset.Path, Output: outputs[i], Outcome: OutcomeFailed, Err: err})
	}
	return kept
}

// outputPath maps an input below root to its output path.
func outputPath(root, outputDir string, asset Asset, parser parsers.Parser) (string, error) {
	path := asset.Path
	if outputDir != "" {
		rel, err := filepath.Rel(root, asset.Path)
		if err != nil {
			return "", err
		}
		path = filepath.Join(outputDir, rel)
	}
	return replaceExtension(path, parser.OutputExtension()), nil
}

func (m *Manager) convertIfStale(root string, asset Asset, cfg core.Config) Result {
	parser, _ := m.parserFor(asset.Extension)

	output, err := outputPath(root, cfg.OutputDir, asset, parser)
	if err != nil {
		err = core.IOError(err, "could not derive output path for %q", asset.Path)
		core.LogError("[ERROR] %s", err)
		return Result{Input: asset.Path, Outcome: OutcomeFailed, Err: err}
	}

	stale, err := isStale(asset.Path, output)
	if err != nil {
		core.LogError("[ERROR] %s", err)
		return Result{Input: asset.Path, Output: output, Outcome: OutcomeFailed, Err: err}
	}
	if !stale {
		core.LogInfo("File %q is up to date, skipped.", asset.Path)
		return Result{Input: asset.Path, Output: output, Outcome: OutcomeSkipped}
	}

	res := m.convert(asset, parser, output, cfg)
	if res.Err != nil {
		core.LogError("[ERROR] %s", res.Err)
	}
	return res
}

// isStale reports whether input is strictly newer than output, or output
// does not exist yet.
func isStale(input, output string) (bool, error) {
	outInfo, err := os.Stat(output)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, core.IOError(err, "could not stat %q", output)
	}
	inInfo, err := os.Stat(input)
	if err != nil {
		return false, core.IOError(err, "could not stat %q", input)
	}
	return inInfo.ModTime().After(outInfo.ModTime()), nil
}

func (m *Manager) convert(asset Asset, parser parsers.Parser, output string, cfg core.Config) Result {
	res := Result{Input: asset.Path, Output: output}
	if err := parser.Parse(asset.Path, asset.Extension, output, cfg); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	res.Outcome = OutcomeConverted
	core.LogInfo("File %q parsed successfully.", asset.Path)
	return res
}
