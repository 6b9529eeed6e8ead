// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import (
	"reflect"
	"testing"
)

var normalizeTests = []struct {
	name  string
	types FieldTypes // nil means the default table
	flat  []string
	want  []string
}{
	{
		name: "table-int",
		flat: []string{`"port"`, `8080`},
		want: []string{`zap.Int("port", 8080)`},
	},
	{
		name: "error-key",
		flat: []string{`"error"`, `err`},
		want: []string{`zap.Error(err)`},
	},
	{
		name:  "error-key-beats-table",
		types: FieldTypes{"error": KindString},
		flat:  []string{`"error"`, `err`},
		want:  []string{`zap.Error(err)`},
	},
	{
		name:  "named-error",
		types: FieldTypes{"cause": KindError},
		flat:  []string{`"cause"`, `e`},
		want:  []string{`zap.NamedError("cause", e)`},
	},
	{
		name: "table-beats-shape",
		flat: []string{`"id"`, `"abc"`, `"success"`, `1`},
		want: []string{`zap.Int64("id", "abc")`, `zap.Bool("success", 1)`},
	},
	{
		name: "shapes",
		flat: []string{
			`"retries"`, `3`,
			`"enabled"`, `true`,
			`"wait"`, `5*time.Second`,
			`"since"`, `time.Since(t0)`,
			`"ts"`, `now.UnixNano()`,
			`"n"`, `int64(x)`,
			`"who"`, `name`,
			`"label"`, `"x"`,
		},
		want: []string{
			`zap.Int("retries", 3)`,
			`zap.Bool("enabled", true)`,
			`zap.Duration("wait", 5*time.Second)`,
			`zap.Duration("since", time.Since(t0))`,
			`zap.Int64("ts", now.UnixNano())`,
			`zap.Int64("n", int64(x))`,
			`zap.String("who", name)`,
			`zap.String("label", "x")`,
		},
	},
	{
		name: "dangling-key",
		flat: []string{`"port"`, `8080`, `"extra"`},
		want: []string{`zap.Int("port", 8080)`, `"extra"`},
	},
	{
		name: "already-structured",
		flat: []string{`zap.String("a", b)`, `"port"`, `1`},
		want: []string{`zap.String("a", b)`, `zap.Int("port", 1)`},
	},
	{
		name: "non-literal-key",
		flat: []string{`key`, `v`, `"port"`, `1`},
		want: []string{`key`, `v`, `zap.Int("port", 1)`},
	},
	{
		name: "resume-after-value",
		flat: []string{`err`, `"port"`, `8080`},
		want: []string{`err`, `zap.Int("port", 8080)`},
	},
	{
		name: "resume-between-pairs",
		flat: []string{`"a"`, `x`, `fields`, `"port"`, `8080`},
		want: []string{`zap.String("a", x)`, `fields`, `zap.Int("port", 8080)`},
	},
	{
		name: "spread-value",
		flat: []string{`"port"`, `1`, `"ids"`, `ids...`},
		want: []string{`zap.Int("port", 1)`, `"ids"`, `ids...`},
	},
	{
		name: "method-result-shapes",
		flat: []string{
			`"took_ms"`, `time.Since(t0).Milliseconds()`,
			`"took_s"`, `time.Since(t0).Seconds()`,
			`"ratio"`, `0.5`,
			`"left"`, `time.Until(deadline)`,
		},
		want: []string{
			`zap.Int64("took_ms", time.Since(t0).Milliseconds())`,
			`zap.Float64("took_s", time.Since(t0).Seconds())`,
			`zap.Float64("ratio", 0.5)`,
			`zap.Duration("left", time.Until(deadline))`,
		},
	},
	{
		name: "raw-string-key",
		flat: []string{"`count`", `n`},
		want: []string{"zap.Int(`count`, n)"},
	},
	{
		name: "empty",
		flat: nil,
		want: []string{},
	},
}

func TestNormalizeCall(t *testing.T) {
	for _, tt := range normalizeTests {
		t.Run(tt.name, func(t *testing.T) {
			types := tt.types
			if types == nil {
				types = DefaultCatalog().Fields
			}
			msg, args := NormalizeCall(`"msg"`, tt.flat, types, "zap")
			if msg != `"msg"` {
				t.Errorf("message = %s, want \"msg\"", msg)
			}
			if !reflect.DeepEqual(args, tt.want) {
				t.Errorf("args:\nhave %q\nwant %q", args, tt.want)
			}
		})
	}
}

var rewriteCallsTests = []struct {
	name  string
	in    string
	out   string
	calls int
	warn  string
}{
	{
		name:  "info",
		in:    "logger.Info(\"started\", \"port\", 8080)\n",
		out:   "logger.Info(\"started\", zap.Int(\"port\", 8080))\n",
		calls: 1,
	},
	{
		name:  "error",
		in:    "h.logger.Error(\"failed\", \"error\", err)\n",
		out:   "h.logger.Error(\"failed\", zap.Error(err))\n",
		calls: 1,
	},
	{
		name:  "nested-calls",
		in:    "logger.Warn(\"slow\", \"elapsed\", time.Since(start), \"count\", len(xs))\n",
		out:   "logger.Warn(\"slow\", zap.Duration(\"elapsed\", time.Since(start)), zap.Int(\"count\", len(xs)))\n",
		calls: 1,
	},
	{
		name:  "comma-in-message",
		in:    "logger.Info(\"a, b\", \"port\", 1)\n",
		out:   "logger.Info(\"a, b\", zap.Int(\"port\", 1))\n",
		calls: 1,
	},
	{
		name: "multi-line",
		in: "logger.Info(\"request\",\n" +
			"\t\"method\", r.Method,\n" +
			"\t\"path\", r.URL.Path, // trailing\n" +
			")\n",
		out: "logger.Info(\"request\",\n" +
			"\tzap.String(\"method\", r.Method),\n" +
			"\tzap.String(\"path\", r.URL.Path), // trailing\n" +
			")\n",
		calls: 1,
	},
	{
		name: "two-calls",
		in: "logger.Info(\"a\", \"port\", 1)\n" +
			"logger.Debug(\"b\", \"count\", 2)\n",
		out: "logger.Info(\"a\", zap.Int(\"port\", 1))\n" +
			"logger.Debug(\"b\", zap.Int(\"count\", 2))\n",
		calls: 2,
	},
	{
		name: "message-only",
		in:   "logger.Info(\"hi\")\n",
		out:  "logger.Info(\"hi\")\n",
	},
	{
		name: "already-structured",
		in:   "logger.Info(\"hi\", zap.Int(\"port\", 1))\n",
		out:  "logger.Info(\"hi\", zap.Int(\"port\", 1))\n",
	},
	{
		name: "in-comment",
		in:   "// logger.Info(\"x\", \"port\", 1)\n",
		out:  "// logger.Info(\"x\", \"port\", 1)\n",
	},
	{
		name: "in-string",
		in:   "s := \"logger.Info(\\\"x\\\", \\\"port\\\", 1)\"\n",
		out:  "s := \"logger.Info(\\\"x\\\", \\\"port\\\", 1)\"\n",
	},
	{
		name: "other-receiver",
		in:   "log.Info(\"x\", \"port\", 1)\nmylogger.Info(\"x\", \"port\", 1)\n",
		out:  "log.Info(\"x\", \"port\", 1)\nmylogger.Info(\"x\", \"port\", 1)\n",
	},
	{
		name: "unbounded",
		in:   "x := 1\nlogger.Info(\"x\", \"port\", 1\n",
		out:  "x := 1\nlogger.Info(\"x\", \"port\", 1\n",
		warn: "f.go:2: cannot bound arguments of logger.Info(...)",
	},
	{
		name: "comment-in-pair",
		in: "logger.Info(\"m\", \"k\", // note\n" +
			"\t\tv, \"port\", 1)\n",
		out: "logger.Info(\"m\", \"k\", // note\n" +
			"\t\tv, zap.Int(\"port\", 1))\n",
		calls: 1,
		warn:  "f.go:1: comment inside \"k\" pair of logger.Info(...); left as is",
	},
	{
		name: "comment-only-pair",
		in:   "logger.Info(\"m\", \"k\" /* why */, v)\n",
		out:  "logger.Info(\"m\", \"k\" /* why */, v)\n",
		warn: "f.go:1: comment inside \"k\" pair of logger.Info(...); left as is",
	},
	{
		name:  "resume",
		in:    "logger.Error(\"retry\", err, \"port\", port)\n",
		out:   "logger.Error(\"retry\", err, zap.Int(\"port\", port))\n",
		calls: 1,
	},
	{
		name: "broken-string",
		in:   "logger.Info(\"x, \"port\", 1)\n",
		out:  "logger.Info(\"x, \"port\", 1)\n",
		warn: "f.go:1: cannot bound arguments of logger.Info(...)",
	},
}

func TestRewriteCalls(t *testing.T) {
	n, err := newCallNormalizer(DefaultCatalog())
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range rewriteCallsTests {
		t.Run(tt.name, func(t *testing.T) {
			var warn ErrorList
			out, calls := n.rewrite("f.go", tt.in, &warn)
			if out != tt.out {
				t.Errorf("text:\n%s\nwant:\n%s", out, tt.out)
			}
			if calls != tt.calls {
				t.Errorf("calls = %d, want %d", calls, tt.calls)
			}
			var have string
			if warn.Len() > 0 {
				have = warn.Error()
			}
			if have != tt.warn {
				t.Errorf("warnings = %q, want %q", have, tt.warn)
			}

			again, calls := n.rewrite("f.go", out, new(ErrorList))
			if again != out || calls != 0 {
				t.Errorf("second rewrite changed %d calls:\n%s", calls, again)
			}
		})
	}
}

var ensureImportTests = []struct {
	name  string
	in    string
	out   string
	added bool
}{
	{
		name:  "std-only-block",
		in:    "package p\n\nimport (\n\t\"fmt\"\n\t\"os\"\n)\n",
		out:   "package p\n\nimport (\n\t\"fmt\"\n\t\"os\"\n\n\t\"go.uber.org/zap\"\n)\n",
		added: true,
	},
	{
		name:  "third-party-group",
		in:    "package p\n\nimport (\n\t\"fmt\"\n\n\t\"example.com/x\"\n)\n",
		out:   "package p\n\nimport (\n\t\"fmt\"\n\n\t\"example.com/x\"\n\t\"go.uber.org/zap\"\n)\n",
		added: true,
	},
	{
		name: "sorted-in-group",
		in: "package p\n\nimport (\n\t\"fmt\"\n\n" +
			"\t\"github.com/a/b\"\n\t\"golang.org/x/tools\"\n\n\t\"streamgate/pkg/core\"\n)\n",
		out: "package p\n\nimport (\n\t\"fmt\"\n\n" +
			"\t\"github.com/a/b\"\n\t\"go.uber.org/zap\"\n\t\"golang.org/x/tools\"\n\n\t\"streamgate/pkg/core\"\n)\n",
		added: true,
	},
	{
		name:  "empty-block",
		in:    "package p\n\nimport (\n)\n",
		out:   "package p\n\nimport (\n\t\"go.uber.org/zap\"\n)\n",
		added: true,
	},
	{
		name:  "present",
		in:    "package p\n\nimport (\n\t\"go.uber.org/zap\"\n)\n",
		out:   "package p\n\nimport (\n\t\"go.uber.org/zap\"\n)\n",
		added: false,
	},
	{
		name:  "present-single",
		in:    "package p\n\nimport \"go.uber.org/zap\"\n",
		out:   "package p\n\nimport \"go.uber.org/zap\"\n",
		added: false,
	},
	{
		name:  "single-line",
		in:    "package p\n\nimport \"fmt\"\n\nfunc f() {}\n",
		out:   "package p\n\nimport \"fmt\"\nimport \"go.uber.org/zap\"\n\nfunc f() {}\n",
		added: true,
	},
	{
		name:  "no-imports",
		in:    "package p\n\nfunc f() {}\n",
		out:   "package p\n\nimport \"go.uber.org/zap\"\n\nfunc f() {}\n",
		added: true,
	},
	{
		name:  "crlf",
		in:    "package p\r\n\r\nimport (\r\n\t\"fmt\"\r\n)\r\n",
		out:   "package p\r\n\r\nimport (\r\n\t\"fmt\"\r\n\r\n\t\"go.uber.org/zap\"\r\n)\r\n",
		added: true,
	},
}

func TestEnsureImport(t *testing.T) {
	for _, tt := range ensureImportTests {
		t.Run(tt.name, func(t *testing.T) {
			out, added := ensureImport(tt.in, "go.uber.org/zap")
			if out != tt.out {
				t.Errorf("text:\n%s\nwant:\n%s", out, tt.out)
			}
			if added != tt.added {
				t.Errorf("added = %v, want %v", added, tt.added)
			}
		})
	}
}
