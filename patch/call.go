// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import (
	"regexp"
	"strconv"
	"strings"
)

// A Field is one typed structured logging field built from a key/value
// pair of a loose logging call.
type Field struct {
	Kind  Kind
	Key   string // key literal as written, quotes included
	Value string // value expression, verbatim
}

// Expr returns the constructor call for f using package pkg,
// as in zap.Int("port", 8080) or zap.Error(err).
func (f Field) Expr(pkg string) string {
	if f.Kind == KindError {
		if k, err := strconv.Unquote(f.Key); err == nil && k == "error" {
			return pkg + ".Error(" + f.Value + ")"
		}
		return pkg + ".NamedError(" + f.Key + ", " + f.Value + ")"
	}
	return pkg + "." + f.Kind.String() + "(" + f.Key + ", " + f.Value + ")"
}

// Infer returns the kind of field to build for key and value.
//
// The key "error" always gives an Error field. Otherwise an entry in t
// decides, and only keys missing from t fall back to the shape of the
// value text.
func (t FieldTypes) Infer(key, value string) Kind {
	if key == "error" {
		return KindError
	}
	if k, ok := t[key]; ok {
		return k
	}
	return shapeKind(value)
}

var (
	intShape      = regexp.MustCompile(`^[+-]?[0-9]+$`)
	durationShape = regexp.MustCompile(`\btime\.(?:Nanosecond|Microsecond|Millisecond|Second|Minute|Hour|Duration|Since|Until)\b`)
	int64Shape    = regexp.MustCompile(`^int64\(|\.(?:Int64|UnixNano|UnixMilli|Unix|Nanoseconds|Microseconds|Milliseconds)\(\)$`)
	float64Shape  = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+$|^float64\(|\.(?:Float64|Seconds|Minutes|Hours)\(\)$`)
)

// shapeKind guesses a field kind from the literal text of a value.
// The int64 and float64 shapes look at the outermost conversion or
// trailing method, so time.Since(t).Milliseconds() is an Int64 and not
// a Duration.
func shapeKind(value string) Kind {
	switch v := strings.TrimSpace(value); {
	case isStringLit(v):
		return KindString
	case intShape.MatchString(v):
		return KindInt
	case v == "true" || v == "false":
		return KindBool
	case int64Shape.MatchString(v):
		return KindInt64
	case float64Shape.MatchString(v):
		return KindFloat64
	case durationShape.MatchString(v):
		return KindDuration
	}
	return KindString
}

// isStringLit reports whether s is exactly one string literal.
func isStringLit(s string) bool {
	if len(s) < 2 || (s[0] != '"' && s[0] != '`') || s[len(s)-1] != s[0] {
		return false
	}
	_, err := strconv.Unquote(s)
	return err == nil
}

// A pairing replaces args[i:j] of a flat argument list with expr.
type pairing struct {
	i, j int
	expr string
}

// pairArgs walks flat, the arguments after a logging call's message,
// and pairs each string-literal key with the value that follows it.
// Anything else, such as a field already built with pkg or a variable
// holding a key, is passed over one argument at a time, and pairing
// resumes at the next string-literal key. Only a dangling final key
// ends the walk early.
func pairArgs(flat []string, types FieldTypes, pkg string) []pairing {
	var out []pairing
	for i := 0; i < len(flat); i++ {
		tok := flat[i]
		if !isStringLit(tok) {
			continue
		}
		if i+1 >= len(flat) || flat[i+1] == "" {
			break
		}
		value := flat[i+1]
		i++
		if strings.HasSuffix(value, "...") {
			// A spread slice is many values; no single field holds it.
			continue
		}
		key, _ := strconv.Unquote(tok)
		f := Field{Kind: types.Infer(key, value), Key: tok, Value: value}
		out = append(out, pairing{i - 1, i + 1, f.Expr(pkg)})
	}
	return out
}

// NormalizeCall rewrites the loose key/value arguments that follow a
// logging call's message into field expressions of package pkg. The
// message is returned unchanged. Arguments that cannot be paired keep
// their text and their place among the converted ones.
func NormalizeCall(message string, flat []string, types FieldTypes, pkg string) (string, []string) {
	out := make([]string, 0, len(flat))
	i := 0
	for _, p := range pairArgs(flat, types, pkg) {
		out = append(out, flat[i:p.i]...)
		out = append(out, p.expr)
		i = p.j
	}
	return message, append(out, flat[i:]...)
}

// A span is a half-open byte range of a text.
type span struct{ start, end int }

// splitArgs splits the argument list of the call whose opening
// parenthesis is text[open]. Each span covers one argument without
// surrounding space and comments; an empty argument has start < 0.
// It also returns the offset of the closing parenthesis. It reports
// false if the list cannot be bounded: unbalanced delimiters or an
// unterminated literal.
func splitArgs(text string, open int) (args []span, end int, ok bool) {
	var l lexer
	depth := 0
	cur := span{-1, -1}
	for i := open; i < len(text); {
		cls, size := l.next(text, i)
		if l.broken {
			return nil, 0, false
		}
		c := text[i]
		if cls == classCode {
			switch c {
			case '(', '[', '{':
				depth++
				if depth == 1 {
					i += size
					continue
				}
			case ')', ']', '}':
				depth--
				if depth == 0 {
					if c != ')' {
						return nil, 0, false
					}
					return append(args, cur), i, true
				}
			case ',':
				if depth == 1 {
					args = append(args, cur)
					cur = span{-1, -1}
					i += size
					continue
				}
			case ' ', '\t', '\n', '\r':
				i += size
				continue
			}
		}
		if cls != classComment {
			if cur.start < 0 {
				cur.start = i
			}
			cur.end = i + size
		}
		i += size
	}
	return nil, 0, false
}

// A callNormalizer rewrites every recognized logging call in a text.
type callNormalizer struct {
	head  *regexp.Regexp // matches through the call's opening parenthesis
	types FieldTypes
	pkg   string
}

func newCallNormalizer(c *Catalog) (*callNormalizer, error) {
	if len(c.Calls.Receivers) == 0 {
		return nil, nil
	}
	q := func(list []string) string {
		alts := make([]string, len(list))
		for i, s := range list {
			alts[i] = regexp.QuoteMeta(s)
		}
		return strings.Join(alts, "|")
	}
	head, err := regexp.Compile(`\b(?:` + q(c.Calls.Receivers) + `)\.(?:` + q(c.Calls.Methods) + `)\(`)
	if err != nil {
		return nil, err
	}
	return &callNormalizer{head: head, types: c.Fields, pkg: c.FieldPackage}, nil
}

// rewrite normalizes the calls in text, reporting to warn the calls
// whose arguments cannot be bounded and the pairs left alone because a
// comment sits between key and value. It returns the new text and the
// number of calls changed.
func (n *callNormalizer) rewrite(name, text string, warn *ErrorList) (string, int) {
	calls := 0
	var mask []bool
	for pos := 0; pos < len(text); {
		loc := n.head.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, open := pos+loc[0], pos+loc[1]-1
		if mask == nil {
			mask = codeMask(text)
		}
		if !mask[start] {
			pos = open + 1
			continue
		}
		args, _, ok := splitArgs(text, open)
		if !ok {
			warn.Addf(name, lineOf(text, start), "cannot bound arguments of %s...)", text[start:open+1])
			pos = open + 1
			continue
		}
		if len(args) < 2 || args[0].start < 0 {
			pos = open + 1
			continue
		}

		flat := make([]string, len(args)-1)
		for i, a := range args[1:] {
			if a.start >= 0 {
				flat[i] = text[a.start:a.end]
			}
		}
		pairs := pairArgs(flat, n.types, n.pkg)
		if len(pairs) == 0 {
			pos = open + 1
			continue
		}
		changed := false
		for k := len(pairs) - 1; k >= 0; k-- {
			p := pairs[k]
			from, to := args[p.i+1].start, args[p.j].end
			if hasComment(text[from:to]) {
				warn.Addf(name, lineOf(text, from), "comment inside %s pair of %s...); left as is", flat[p.i], text[start:open+1])
				continue
			}
			text = text[:from] + p.expr + text[to:]
			changed = true
		}
		pos = open + 1
		if !changed {
			continue
		}
		mask = nil
		calls++
	}
	return text, calls
}

// lineOf returns the 1-based line number of offset off in text.
func lineOf(text string, off int) int {
	return strings.Count(text[:off], "\n") + 1
}

var (
	importBlock = regexp.MustCompile(`(?m)^import[ \t]*\([ \t]*\r?\n`)
	importLine  = regexp.MustCompile(`(?m)^import[ \t]+(?:[\w.]+[ \t]+)?"[^"\n]*"[^\n]*\n`)
	pkgClause   = regexp.MustCompile(`(?m)^package[ \t]+\w+[^\n]*\n`)
)

// ensureImport adds an import of path to text if there is none.
// Inside an import block the new line goes in sorted position within
// the first group holding a non-standard-library path, or opens a new
// group at the end of the block.
func ensureImport(text, path string) (string, bool) {
	quoted := strconv.Quote(path)
	has := regexp.MustCompile(`(?m)^\s*(?:import\s+)?(?:[\w.]+\s+)?` + regexp.QuoteMeta(quoted))
	if has.MatchString(text) {
		return text, false
	}
	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}

	if loc := importBlock.FindStringIndex(text); loc != nil {
		line := "\t" + quoted + eol
		at, inGroup, seen := loc[1], false, false
		for _, l := range splitLines(text[loc[1]:]) {
			s := strings.TrimSpace(l)
			if strings.HasPrefix(s, ")") {
				break
			}
			if s == "" {
				if inGroup {
					break
				}
				at += len(l)
				continue
			}
			if p, ok := importPath(s); ok {
				seen = true
				if !inGroup && !isStdPath(p) {
					inGroup = true
				}
				if inGroup && p > path {
					break
				}
			}
			at += len(l)
		}
		if seen && !inGroup {
			line = eol + line
		}
		return text[:at] + line + text[at:], true
	}
	if loc := importLine.FindStringIndex(text); loc != nil {
		return text[:loc[1]] + "import " + quoted + eol + text[loc[1]:], true
	}
	if loc := pkgClause.FindStringIndex(text); loc != nil {
		return text[:loc[1]] + eol + "import " + quoted + eol + text[loc[1]:], true
	}
	return text, false
}

// importPath returns the path of the import spec on line s,
// as in `"fmt"` or `name "example.com/x" // comment`.
func importPath(s string) (string, bool) {
	if strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*") {
		return "", false
	}
	i := strings.IndexByte(s, '"')
	if i < 0 {
		return "", false
	}
	j := strings.IndexByte(s[i+1:], '"')
	if j < 0 {
		return "", false
	}
	return s[i+1 : i+1+j], true
}

// isStdPath reports whether an import path looks like the standard
// library's: no dot in its first element.
func isStdPath(path string) bool {
	elem, _, _ := strings.Cut(path, "/")
	return !strings.Contains(elem, ".")
}
