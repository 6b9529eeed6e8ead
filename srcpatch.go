// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"

	"rsc.io/srcpatch/patch"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "srcpatch: %v\n", err)
		os.Exit(exitStatus(err))
	}
}

type options struct {
	dir      string
	catalog  string
	list     string
	module   string
	passes   []string
	exts     []string
	walk     bool
	showDiff bool
	verbose  bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		opts   options
		logger *zap.Logger
	)
	root := &cobra.Command{
		Use:   "srcpatch [flags] [path ...]",
		Short: "Strip retired subsystems and normalize logging calls in Go source",
		Long: `Srcpatch applies a rule catalog to a list of source files, rewriting
each file in place when the rules change it. See 'go doc rsc.io/srcpatch'.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = newLogger(stderr, opts.verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(&opts, logger, stdout, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.dir, "dir", "C", ".", "run as if started in `dir`")
	pf.StringVar(&opts.catalog, "catalog", "", "read rules from YAML `file` instead of the built-in catalog")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log per-file statistics")

	f := root.Flags()
	f.StringSliceVar(&opts.passes, "passes", passNames(patch.DefaultPasses), "passes to run: legacy, calls, imports")
	f.BoolVar(&opts.walk, "walk", false, "treat arguments as directories to search (default .)")
	f.StringSliceVar(&opts.exts, "ext", []string{".go"}, "file name suffixes to patch with --walk")
	f.StringVar(&opts.list, "list", "", "read the worklist from `file`, one path per line")
	f.StringVar(&opts.module, "module", "", "module path for module-relative import rules (default from go.mod)")
	f.BoolVar(&opts.showDiff, "diff", false, "show diff instead of writing files")

	root.AddCommand(&cobra.Command{
		Use:   "catalog",
		Short: "Print the rule catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(opts.catalog)
			if err != nil {
				return err
			}
			data, err := cat.Marshal()
			if err != nil {
				return err
			}
			_, err = stdout.Write(data)
			return err
		},
	})
	return root
}

// newLogger returns a console logger writing to w.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

func runPatch(opts *options, logger *zap.Logger, stdout io.Writer, args []string) error {
	cat, err := loadCatalog(opts.catalog)
	if err != nil {
		return err
	}
	var passes []patch.Pass
	for _, name := range opts.passes {
		p, err := patch.ParsePass(name)
		if err != nil {
			return usageError(err)
		}
		passes = append(passes, p)
	}
	if len(passes) == 0 {
		return usagef("no passes selected")
	}

	module := opts.module
	if module == "" {
		if module, err = patch.ModulePath(opts.dir); err != nil {
			return err
		}
	}
	eng, err := patch.New(cat, patch.Options{Module: module, Passes: passes})
	if err != nil {
		return xerrors.Errorf("compiling rules: %w", err)
	}

	files, err := worklist(opts, cat, args)
	if err != nil {
		return err
	}
	logger.Debug("starting run",
		zap.String("dir", opts.dir),
		zap.String("module", module),
		zap.Strings("passes", opts.passes),
		zap.Int("files", len(files)))

	d := &patch.Driver{
		Engine:   eng,
		Dir:      opts.dir,
		ShowDiff: opts.showDiff,
		Stdout:   stdout,
		Logger:   logger,
	}
	_, err = d.Run(files)
	return err
}

func loadCatalog(file string) (*patch.Catalog, error) {
	if file == "" {
		return patch.DefaultCatalog(), nil
	}
	cat, err := patch.LoadCatalog(file)
	if err != nil {
		return nil, usageError(err)
	}
	return cat, nil
}

// worklist assembles the files of a run: the --list file, then the
// arguments, or with --walk the files found under the arguments. With
// none of those it falls back to the catalog's own worklist.
func worklist(opts *options, cat *patch.Catalog, args []string) ([]string, error) {
	var files []string
	if opts.list != "" {
		f, err := os.Open(opts.list)
		if err != nil {
			return nil, usageError(err)
		}
		defer f.Close()
		if files, err = patch.ReadList(f); err != nil {
			return nil, xerrors.Errorf("%s: %w", opts.list, err)
		}
	}

	if opts.walk {
		if len(opts.exts) == 0 {
			return nil, usagef("--walk needs at least one --ext")
		}
		roots := args
		if len(roots) == 0 {
			roots = []string{"."}
		}
		for _, root := range roots {
			abs := filepath.IsAbs(root)
			if !abs {
				root = filepath.Join(opts.dir, root)
			}
			found, err := patch.Walk(root, opts.exts)
			if err != nil {
				return nil, err
			}
			if abs {
				// The driver resolves only relative paths against -C.
				files = append(files, found...)
				continue
			}
			for _, p := range found {
				rel, err := filepath.Rel(opts.dir, p)
				if err != nil {
					return nil, err
				}
				files = append(files, rel)
			}
		}
	} else {
		files = append(files, args...)
	}

	if len(files) == 0 && opts.list == "" && !opts.walk {
		files = cat.Worklist
	}
	if len(files) == 0 {
		return nil, xerrors.New("no files to patch")
	}
	return files, nil
}

func passNames(passes []patch.Pass) []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = string(p)
	}
	return names
}
