// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"rsc.io/srcpatch/diff"
)

// A Status is what happened to one file of a run.
type Status int

const (
	Unchanged Status = iota
	Fixed
	Missing
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "no change"
	case Fixed:
		return "fixed"
	case Missing:
		return "missing"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// A FileResult records the outcome for one worklist entry.
type FileResult struct {
	Path   string
	Status Status
	Stats  Stats
}

// A Summary is the outcome of a run.
type Summary struct {
	Files   []FileResult
	Changed int
	Missing int
}

// A Driver runs an Engine over a worklist, one file at a time.
type Driver struct {
	Engine *Engine

	// Dir is the directory relative paths are resolved against.
	// Empty means the current directory.
	Dir string

	// ShowDiff prints a diff of each changed file to Stdout
	// instead of writing it.
	ShowDiff bool

	Stdout io.Writer
	Logger *zap.Logger
}

// Run patches the files in paths, in order. A missing file is reported
// and skipped. Any other failure to read or write a file stops the run;
// files already written stay written.
func (d *Driver) Run(paths []string) (*Summary, error) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	stdout := d.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	sum := new(Summary)
	for _, p := range paths {
		fr, err := d.file(log, stdout, p)
		if err != nil {
			fmt.Fprintf(stdout, "error     %s\n", p)
			return sum, err
		}
		sum.Files = append(sum.Files, fr)
		switch fr.Status {
		case Fixed:
			sum.Changed++
		case Missing:
			sum.Missing++
		}
		fmt.Fprintf(stdout, "%-9s %s\n", fr.Status, p)
	}
	fmt.Fprintf(stdout, "fixed %d files\n", sum.Changed)
	return sum, nil
}

func (d *Driver) file(log *zap.Logger, stdout io.Writer, p string) (FileResult, error) {
	fr := FileResult{Path: p}
	abs := p
	if d.Dir != "" && !filepath.IsAbs(p) {
		abs = filepath.Join(d.Dir, p)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("file not found", zap.String("path", p))
		fr.Status = Missing
		return fr, nil
	}
	if err != nil {
		return fr, xerrors.Errorf("reading %s: %w", p, err)
	}
	old, err := os.ReadFile(abs)
	if err != nil {
		return fr, xerrors.Errorf("reading %s: %w", p, err)
	}

	res := d.Engine.Apply(p, old)
	fr.Stats = res.Stats
	for _, w := range res.Warnings.List() {
		log.Warn(w.Msg, zap.String("path", p), zap.Int("line", w.Pos.Line))
	}
	log.Debug("applied catalog",
		zap.String("path", p),
		zap.Int("lines", res.Stats.Lines),
		zap.Int("blocks", res.Stats.Blocks),
		zap.Int("calls", res.Stats.Calls),
		zap.Bool("changed", res.Changed))
	if !res.Changed {
		fr.Status = Unchanged
		return fr, nil
	}
	fr.Status = Fixed

	if d.ShowDiff {
		out, err := diff.Diff("old/"+filepath.ToSlash(p), old, "new/"+filepath.ToSlash(p), res.Text)
		if err != nil {
			return fr, xerrors.Errorf("diffing %s: %w", p, err)
		}
		if _, err := stdout.Write(out); err != nil {
			return fr, xerrors.Errorf("writing diff of %s: %w", p, err)
		}
		return fr, nil
	}
	if err := os.WriteFile(abs, res.Text, info.Mode().Perm()); err != nil {
		return fr, xerrors.Errorf("writing %s: %w", p, err)
	}
	return fr, nil
}
