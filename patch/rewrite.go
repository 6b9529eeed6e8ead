// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// A rewriter is a compiled inline Rule.
type rewriter interface {
	rewrite(text string) rewriteResult
}

type rewriteResult struct {
	text  string
	lines int // lines removed

	// open is the 1-based line of a spanning match whose
	// parentheses never closed; that match was left in place.
	open int
}

// An eraser deletes each line matching re. With span set it also
// deletes the continuation lines of the match, up to the line that
// closes its parentheses.
type eraser struct {
	re       *regexp.Regexp
	span     bool
	contains string // if set, only statements containing it are erased
	unused   string // if set, erase only when this package is unreferenced
}

func (r *eraser) rewrite(text string) rewriteResult {
	if r.unused != "" && references(text, r.unused) {
		return rewriteResult{text: text}
	}

	var (
		res   rewriteResult
		out   strings.Builder
		l     lexer
		lines = splitLines(text)
	)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !l.atCode() || !r.re.MatchString(lineContent(line)) {
			l.skip(line)
			out.WriteString(line)
			continue
		}

		save := l
		end := i + 1
		depth := l.balance(line, '(', ')')
		if r.span {
			for depth > 0 && end < len(lines) {
				depth += l.balance(lines[end], '(', ')')
				end++
			}
		}
		keep := false
		switch {
		case r.span && depth > 0:
			if res.open == 0 {
				res.open = i + 1
			}
			keep = true
		case r.contains != "" && !strings.Contains(strings.Join(lines[i:end], ""), r.contains):
			keep = true
		}
		if keep {
			l = save
			l.skip(line)
			out.WriteString(line)
			continue
		}
		res.lines += end - i
		i = end - 1
	}
	res.text = out.String()
	return res
}

// references reports whether the code in text (not its comments or
// literals) refers to pkg as a qualifier, as in pkg.Name.
func references(text, pkg string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(pkg) + `\.`)
	var mask []bool
	for _, m := range re.FindAllStringIndex(text, -1) {
		if m[0] > 0 && text[m[0]-1] == '.' {
			continue // x.pkg.Name
		}
		if mask == nil {
			mask = codeMask(text)
		}
		if mask[m[0]] {
			return true
		}
	}
	return false
}

// A window replaces every match of re in the whole text.
type window struct {
	re      *regexp.Regexp
	replace string
}

func (w *window) rewrite(text string) rewriteResult {
	n := 0
	for _, m := range w.re.FindAllStringIndex(text, -1) {
		n += strings.Count(text[m[0]:m[1]], "\n")
	}
	return rewriteResult{text: w.re.ReplaceAllString(text, w.replace), lines: n}
}

// compileRule compiles r. Import paths beginning with ./ are
// resolved against module, which must then be set.
func compileRule(r Rule, module string) (rewriter, error) {
	q := regexp.QuoteMeta
	var pattern string
	e := &eraser{contains: r.Contains}
	switch r.Kind {
	case RuleImport:
		p := r.Path
		if strings.HasPrefix(p, "./") {
			if module == "" {
				return nil, fmt.Errorf("rule %s: module-relative import %s needs a module path", r.Name, p)
			}
			p = module + p[1:]
		}
		pattern = `^\s*(?:import\s+)?(?:[\w.]+\s+)?"` + q(p) + `"\s*(?://.*)?$`
		if r.IfUnused {
			e.unused = path.Base(p)
		}

	case RuleField:
		pattern = `^\s*` + q(r.Field) + `\s+` + q(r.Type) + "\\s*(?:`[^`]*`\\s*)?(?://.*)?$"

	case RuleInit:
		pattern = `^\s*` + q(r.Field) + `\s*:\s*&?` + q(r.Constructor) + `\(`
		e.span = true

	case RuleStatement:
		recv := ""
		if len(r.Receivers) > 0 {
			alts := make([]string, len(r.Receivers))
			for i, x := range r.Receivers {
				alts[i] = q(x)
			}
			recv = `(?:` + strings.Join(alts, "|") + `)\.`
		}
		pattern = `^\s*` + recv + q(r.Call)
		e.span = true

	case RuleLine:
		pattern = r.Pattern
		e.span = r.Span

	case RuleWindow:
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %v", r.Name, err)
		}
		return &window{re: re, replace: r.Replace}, nil

	default:
		return nil, fmt.Errorf("rule %s: unknown kind %q", r.Name, r.Kind)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %v", r.Name, err)
	}
	e.re = re
	return e, nil
}
