// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import "strings"

// StripStats describes what a StripBlocks call removed.
type StripStats struct {
	Blocks int // blocks removed
	Lines  int // lines removed, including opening and closing lines

	// Unclosed is the 1-based input line of a block opener whose
	// braces never balanced, or 0. Everything from that line to the
	// end of the input was dropped.
	Unclosed int
}

// StripBlocks removes every brace-delimited block whose opening line
// satisfies open, from the opening line through the line that brings
// the brace depth back to zero. All other lines are kept unchanged,
// line endings included.
//
// The scan is a single forward pass. open is only consulted outside a
// block being removed, so nested blocks of the same kind go with their
// parent. A block that never closes takes the rest of the input with
// it; the position of its opener is reported in the stats.
//
// Braces inside string, rune and raw string literals and inside
// comments are not counted.
func StripBlocks(text string, open func(line string) bool) (string, StripStats) {
	var (
		stats   StripStats
		out     strings.Builder
		l       lexer
		erasing bool
		depth   int
		opened  int
	)
	for n, line := range splitLines(text) {
		if erasing {
			depth += l.balance(line, '{', '}')
			stats.Lines++
			if depth <= 0 {
				erasing = false
			}
			continue
		}
		if l.atCode() && open(lineContent(line)) {
			erasing = true
			opened = n + 1
			depth = l.balance(line, '{', '}')
			stats.Blocks++
			stats.Lines++
			if depth <= 0 {
				erasing = false
			}
			continue
		}
		l.skip(line)
		out.WriteString(line)
	}
	if erasing {
		stats.Unclosed = opened
	}
	return out.String(), stats
}

// splitLines splits text after each newline.
// A final line without a newline is kept; an empty tail is not.
func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// lineContent returns line without its line ending.
func lineContent(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
