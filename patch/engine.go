// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package patch rewrites Go source text with a fixed catalog of textual
// rules: it deletes lines and brace-delimited blocks that belong to
// retired subsystems and moves loose key/value logging calls onto typed
// structured-logging fields.
//
// Nothing here parses Go. Lines are matched with regular expressions,
// blocks are measured by counting braces outside literals and comments,
// and call arguments are split on top-level commas. The output is not
// checked for validity; a catalog is expected to describe code whose
// removal does not change what the program does.
package patch

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/tools/imports"
)

// Options configure an Engine.
type Options struct {
	// Module is the module path of the code being patched. It is needed
	// only by import rules with module-relative (./) paths.
	Module string

	// Passes selects the passes to run. Nil means DefaultPasses.
	Passes []Pass
}

// An Engine applies a compiled catalog to source texts.
// It holds no per-file state and may be reused.
type Engine struct {
	passes map[Pass]bool

	erase    []namedRewriter
	deferred []namedRewriter // import rules that wait for blocks to go
	blocks   []namedBlock
	calls    *callNormalizer
	fieldImp string
}

type namedRewriter struct {
	name string
	rw   rewriter
}

type namedBlock struct {
	name string
	open func(line string) bool
}

// New compiles cat for use with opts.
func New(cat *Catalog, opts Options) (*Engine, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{passes: make(map[Pass]bool), fieldImp: cat.FieldImport}
	passes := opts.Passes
	if passes == nil {
		passes = DefaultPasses
	}
	for _, p := range passes {
		if _, err := ParsePass(string(p)); err != nil {
			return nil, err
		}
		e.passes[p] = true
	}

	// Rules of unselected passes are not compiled, so a run of the
	// calls pass alone needs no module path.
	var errs ErrorList
	if e.passes[PassLegacy] {
		for _, r := range cat.Erase {
			rw, err := compileRule(r, opts.Module)
			if err != nil {
				errs.Add(err)
				continue
			}
			if r.Kind == RuleImport && r.IfUnused {
				e.deferred = append(e.deferred, namedRewriter{r.Name, rw})
			} else {
				e.erase = append(e.erase, namedRewriter{r.Name, rw})
			}
		}
		for _, b := range cat.Blocks {
			open, err := blockOpener(b)
			if err != nil {
				errs.Add(fmt.Errorf("block %s: %v", b.Name, err))
				continue
			}
			e.blocks = append(e.blocks, namedBlock{b.Name, open})
		}
	}
	if e.passes[PassCalls] {
		calls, err := newCallNormalizer(cat)
		if err != nil {
			errs.Add(fmt.Errorf("calls: %v", err))
		}
		e.calls = calls
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

func blockOpener(b BlockRule) (func(string) bool, error) {
	var re *regexp.Regexp
	if b.Pattern != "" {
		var err error
		if re, err = regexp.Compile(b.Pattern); err != nil {
			return nil, err
		}
	}
	opens := append([]string(nil), b.Opens...)
	return func(line string) bool {
		for _, s := range opens {
			if strings.Contains(line, s) {
				return true
			}
		}
		return re != nil && re.MatchString(line)
	}, nil
}

// Stats counts what Apply did to one text.
type Stats struct {
	Lines  int // lines removed by erase rules
	Blocks int // blocks removed
	Calls  int // logging calls rewritten
}

// A Result is the outcome of applying an Engine to one text.
type Result struct {
	Text     []byte
	Changed  bool
	Stats    Stats
	Warnings ErrorList
}

// Apply runs the selected passes over src, which came from the file name.
// The stages always run in the same order: erase rules in catalog order,
// then each block rule in catalog order, then deferred import removals,
// then logging calls, then goimports.
func (e *Engine) Apply(name string, src []byte) *Result {
	res := new(Result)
	text := string(src)

	if e.passes[PassLegacy] {
		for _, r := range e.erase {
			text = e.rewrite(res, name, r, text)
		}
		for _, b := range e.blocks {
			var st StripStats
			text, st = StripBlocks(text, b.open)
			res.Stats.Blocks += st.Blocks
			if st.Unclosed > 0 {
				res.Warnings.Addf(name, st.Unclosed, "block %s never closes; dropped the rest of the file", b.name)
			}
		}
		for _, r := range e.deferred {
			text = e.rewrite(res, name, r, text)
		}
	}

	if e.passes[PassCalls] && e.calls != nil {
		var n int
		text, n = e.calls.rewrite(name, text, &res.Warnings)
		res.Stats.Calls += n
		if n > 0 && e.fieldImp != "" {
			text, _ = ensureImport(text, e.fieldImp)
		}
	}

	if e.passes[PassImports] && strings.HasSuffix(name, ".go") {
		out, err := imports.Process(name, []byte(text), &imports.Options{
			Comments:  true,
			TabIndent: true,
			TabWidth:  8,
		})
		if err != nil {
			res.Warnings.Addf(name, 0, "goimports: %v", err)
		} else {
			text = string(out)
		}
	}

	res.Text = []byte(text)
	res.Changed = text != string(src)
	return res
}

func (e *Engine) rewrite(res *Result, name string, r namedRewriter, text string) string {
	rr := r.rw.rewrite(text)
	res.Stats.Lines += rr.lines
	if rr.open > 0 {
		res.Warnings.Addf(name, rr.open, "rule %s: statement never closes; left in place", r.name)
	}
	return rr.text
}
