package main

import (
	"fmt"

	"github.com/spaghettifunk/assetparser/engine/assets"
	"github.com/spaghettifunk/assetparser/engine/assets/parsers"
	"github.com/spaghettifunk/assetparser/engine/core"
	"github.com/spf13/cobra"
)

type options struct {
	files     []string
	dirs      []string
	outputs   []string
	endian    string
	format    string
	glslc     string
	watch     bool
	verbose   bool
	endianSet bool
	formatSet bool
}

// validate enforces the flag contract: exactly one of -f/-d with exactly
// one value, and -o only together with -d.
func (o *options) validate() error {
	switch {
	case len(o.files) > 0 && len(o.dirs) > 0:
		return fmt.Errorf("%w: -f and -d are mutually exclusive", core.ErrInvalidArguments)
	case len(o.files) == 0 && len(o.dirs) == 0:
		return fmt.Errorf("%w: one of -f or -d is required", core.ErrInvalidArguments)
	case len(o.files) > 1:
		return fmt.Errorf("%w: -f takes exactly one value", core.ErrInvalidArguments)
	case len(o.dirs) > 1:
		return fmt.Errorf("%w: -d takes exactly one value", core.ErrInvalidArguments)
	case len(o.outputs) > 1:
		return fmt.Errorf("%w: -o takes exactly one value", core.ErrInvalidArguments)
	case len(o.outputs) == 1 && len(o.dirs) == 0:
		return fmt.Errorf("%w: -o can only be combined with -d", core.ErrInvalidArguments)
	case o.watch && len(o.dirs) == 0:
		return fmt.Errorf("%w: --watch can only be combined with -d", core.ErrInvalidArguments)
	}
	return nil
}

// newManager builds a manager with every built-in parser registered and the
// CLI presets applied.
func (o *options) newManager() (*assets.Manager, error) {
	m := assets.NewManager()

	shader := parsers.NewShaderParser()
	if o.glslc != "" {
		shader.Compiler = &parsers.GlslcCompiler{Binary: o.glslc}
	}
	for _, p := range []parsers.Parser{
		parsers.NewImageParser(),
		shader,
		parsers.NewWGSLParser(),
		parsers.NewFontParser(),
	} {
		if err := m.RegisterParser(p); err != nil {
			return nil, err
		}
	}

	if len(o.outputs) == 1 {
		m.SetOutputDirectory(o.outputs[0])
	}
	if o.endianSet {
		e, err := core.ParseEndianness(o.endian)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrInvalidArguments, err)
		}
		m.SetEndianness(e)
	}
	if o.formatSet {
		f, err := parsers.ParseImageFormat(o.format)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrInvalidArguments, err)
		}
		m.SetImageFormat(f)
	}
	return m, nil
}

func newRootCommand() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "assetparser (-f <file> | -d <dir> [-o <dir>])",
		Short: "Convert source assets into engine binary formats",
		Long: `assetparser converts images, GLSL/WGSL shaders and BMFont descriptors
into the binary formats loaded by the engine.

With -d the input tree is mirrored into the output directory (-o or the
outputDir key of a config.json/config.toml/config.yaml at the root) and files
whose output is newer than their input are skipped.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unexpected values %q, every flag takes exactly one value", core.ErrInvalidArguments, args)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.endianSet = cmd.Flags().Changed("endian")
			o.formatSet = cmd.Flags().Changed("format")
			return run(cmd, o)
		},
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", core.ErrInvalidArguments, err)
	})

	flags := cmd.Flags()
	flags.StringArrayVarP(&o.files, "file", "f", nil, "convert a single file")
	flags.StringArrayVarP(&o.dirs, "dir", "d", nil, "convert a directory tree")
	flags.StringArrayVarP(&o.outputs, "output", "o", nil, "output root for -d")
	flags.StringVar(&o.endian, "endian", "little", "byte order of the written files (little|big)")
	flags.StringVar(&o.format, "format", "", "channel layout images are written in (R, RG, GR, RGB, BGR, RGBA, BGRA, ARGB, ABGR)")
	flags.StringVar(&o.glslc, "glslc", "", "path to the glslc binary")
	flags.BoolVarP(&o.watch, "watch", "w", false, "keep converting the tree as files change")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, o *options) error {
	if err := o.validate(); err != nil {
		return err
	}
	if o.verbose {
		if err := core.SetLogLevel("debug"); err != nil {
			return err
		}
	}

	m, err := o.newManager()
	if err != nil {
		return err
	}

	if len(o.files) == 1 {
		_, err := m.ParseSingleFile(o.files[0])
		return err
	}

	root := o.dirs[0]
	if o.watch {
		w, err := assets.NewWatcher(m, root)
		if err != nil {
			return err
		}
		return w.Run(cmd.Context())
	}

	report, err := m.ParseDirectory(root)
	if err != nil {
		return err
	}
	if n := report.Failed() + report.DirectoryFailures(); n > 0 {
		return fmt.Errorf("%d asset(s) could not be converted", n)
	}
	return nil
}
