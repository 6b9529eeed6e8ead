// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"
)

// TestApply runs the default catalog over each testdata/*.txt archive.
// The archive comment holds "module path" and "passes list" lines; the
// files are in.go, the expected out.go and optionally the expected
// warnings.
func TestApply(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no test cases")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			var opts Options
			for _, line := range strings.Split(string(ar.Comment), "\n") {
				f := strings.Fields(line)
				if len(f) != 2 {
					continue
				}
				switch f[0] {
				case "module":
					opts.Module = f[1]
				case "passes":
					for _, p := range strings.Split(f[1], ",") {
						opts.Passes = append(opts.Passes, Pass(p))
					}
				}
			}
			var in, out, warnings []byte
			for _, f := range ar.Files {
				switch f.Name {
				case "in.go":
					in = f.Data
				case "out.go":
					out = f.Data
				case "warnings":
					warnings = f.Data
				default:
					t.Fatalf("unexpected file %s", f.Name)
				}
			}

			e, err := New(DefaultCatalog(), opts)
			if err != nil {
				t.Fatal(err)
			}
			res := e.Apply("in.go", in)
			if diff := cmp.Diff(string(out), string(res.Text)); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			if res.Changed != (string(in) != string(out)) {
				t.Errorf("Changed = %v", res.Changed)
			}
			var have string
			if res.Warnings.Len() > 0 {
				have = res.Warnings.Error()
			}
			if want := strings.TrimSpace(string(warnings)); have != want {
				t.Errorf("warnings:\n%s\nwant:\n%s", have, want)
			}

			again := e.Apply("in.go", res.Text)
			if again.Changed {
				t.Errorf("second Apply changed output:\n%s", again.Text)
			}
		})
	}
}

const mixedSource = `package p

func (h *Handler) Serve(id string) {
	if !h.rateLimiter.Allow(id) {
		return
	}
	h.logger.Info("served", "id", id)
}
`

func TestApplyPasses(t *testing.T) {
	tests := []struct {
		passes []Pass
		out    string
		stats  Stats
	}{
		{
			passes: []Pass{PassLegacy},
			out:    "package p\n\nfunc (h *Handler) Serve(id string) {\n\th.logger.Info(\"served\", \"id\", id)\n}\n",
			stats:  Stats{Blocks: 1},
		},
		{
			passes: []Pass{PassCalls},
			out: "package p\n\nimport \"go.uber.org/zap\"\n\nfunc (h *Handler) Serve(id string) {\n" +
				"\tif !h.rateLimiter.Allow(id) {\n\t\treturn\n\t}\n" +
				"\th.logger.Info(\"served\", zap.Int64(\"id\", id))\n}\n",
			stats: Stats{Calls: 1},
		},
		{
			passes: nil,
			out: "package p\n\nimport \"go.uber.org/zap\"\n\nfunc (h *Handler) Serve(id string) {\n" +
				"\th.logger.Info(\"served\", zap.Int64(\"id\", id))\n}\n",
			stats: Stats{Blocks: 1, Calls: 1},
		},
	}
	for _, tt := range tests {
		e, err := New(DefaultCatalog(), Options{Module: "m", Passes: tt.passes})
		if err != nil {
			t.Fatal(err)
		}
		res := e.Apply("p.go", []byte(mixedSource))
		if diff := cmp.Diff(tt.out, string(res.Text)); diff != "" {
			t.Errorf("passes %v: output mismatch (-want +got):\n%s", tt.passes, diff)
		}
		if res.Stats != tt.stats {
			t.Errorf("passes %v: stats = %+v, want %+v", tt.passes, res.Stats, tt.stats)
		}
		if !res.Changed {
			t.Errorf("passes %v: not changed", tt.passes)
		}
	}
}

func TestApplyUnknownPass(t *testing.T) {
	if _, err := New(DefaultCatalog(), Options{Module: "m", Passes: []Pass{"format"}}); err == nil {
		t.Fatal("New accepted unknown pass")
	}
}

func TestApplyNoChange(t *testing.T) {
	e, err := New(DefaultCatalog(), Options{Module: "m"})
	if err != nil {
		t.Fatal(err)
	}
	src := []byte("package p\n\nfunc f() {}\n")
	res := e.Apply("p.go", src)
	if res.Changed || string(res.Text) != string(src) || res.Warnings.Len() != 0 {
		t.Errorf("Apply changed clean source: %+v", res)
	}
}
