// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

// A class says what kind of text a byte belongs to.
type class int

const (
	classCode class = iota
	classLiteral
	classComment
)

type lexState int

const (
	inCode lexState = iota
	inString
	inRune
	inRaw
	inLineComment
	inBlockComment
)

// A lexer separates Go code from string, rune and raw string literals
// and comments. It knows nothing else about Go syntax; it only exists so
// that delimiter counting can skip braces and parens that are not code.
//
// The zero lexer starts in code.
type lexer struct {
	state lexState

	// broken records that an interpreted string or rune literal
	// ran into a newline, which Go does not allow.
	broken bool
}

// next classifies s[i] and reports how many bytes, starting at i,
// share that class (1 or 2).
func (l *lexer) next(s string, i int) (class, int) {
	c := s[i]
	var peek byte
	if i+1 < len(s) {
		peek = s[i+1]
	}
	switch l.state {
	case inString, inRune:
		switch {
		case c == '\\' && peek != 0 && peek != '\n':
			return classLiteral, 2
		case c == '\n':
			l.state = inCode
			l.broken = true
			return classCode, 1
		case c == '"' && l.state == inString, c == '\'' && l.state == inRune:
			l.state = inCode
		}
		return classLiteral, 1

	case inRaw:
		if c == '`' {
			l.state = inCode
		}
		return classLiteral, 1

	case inLineComment:
		if c == '\n' {
			l.state = inCode
			return classCode, 1
		}
		return classComment, 1

	case inBlockComment:
		if c == '*' && peek == '/' {
			l.state = inCode
			return classComment, 2
		}
		return classComment, 1
	}

	switch {
	case c == '"':
		l.state = inString
		return classLiteral, 1
	case c == '\'':
		l.state = inRune
		return classLiteral, 1
	case c == '`':
		l.state = inRaw
		return classLiteral, 1
	case c == '/' && peek == '/':
		l.state = inLineComment
		return classComment, 2
	case c == '/' && peek == '*':
		l.state = inBlockComment
		return classComment, 2
	}
	return classCode, 1
}

// atCode reports whether the lexer is positioned in code,
// outside any literal or comment.
func (l *lexer) atCode() bool {
	return l.state == inCode
}

// balance consumes line and returns the number of lo bytes
// minus the number of hi bytes that appear in code.
func (l *lexer) balance(line string, lo, hi byte) int {
	n := 0
	for i := 0; i < len(line); {
		cls, size := l.next(line, i)
		if cls == classCode {
			switch line[i] {
			case lo:
				n++
			case hi:
				n--
			}
		}
		i += size
	}
	return n
}

// skip consumes line without counting anything.
func (l *lexer) skip(line string) {
	for i := 0; i < len(line); {
		_, size := l.next(line, i)
		i += size
	}
}

// codeMask returns, for each byte of text, whether it is code.
func codeMask(text string) []bool {
	mask := make([]bool, len(text))
	var l lexer
	for i := 0; i < len(text); {
		cls, size := l.next(text, i)
		for j := i; j < i+size && j < len(text); j++ {
			mask[j] = cls == classCode
		}
		i += size
	}
	return mask
}

// hasComment reports whether s, which starts in code, holds a comment.
func hasComment(s string) bool {
	var l lexer
	for i := 0; i < len(s); {
		cls, size := l.next(s, i)
		if cls == classComment {
			return true
		}
		i += size
	}
	return false
}
