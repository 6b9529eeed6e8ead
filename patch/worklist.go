// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import (
	"bufio"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
)

// Walk returns the files under root whose names end in one of exts,
// in lexical order. Hidden directories, vendor and testdata are
// skipped. The returned paths include root as given.
func Walk(root string, exts []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		for _, ext := range exts {
			if strings.HasSuffix(path, ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ReadList reads a worklist: one path per line.
// Blank lines and # comments are ignored; a # inside quotes is kept.
func ReadList(r io.Reader) ([]string, error) {
	var list []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := trimComments(s.Text())
		if line == "" {
			continue
		}
		if q := line[0]; (q == '"' || q == '\'') && len(line) > 1 && line[len(line)-1] == q {
			line = line[1 : len(line)-1]
		}
		list = append(list, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func trimComments(line string) string {
	// Cut line at # comment, being careful not to cut inside quoted text.
	var q byte
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case q:
			q = 0
		case '\'', '"', '`':
			if q == 0 {
				q = c
			}
		case '\\':
			if q == '\'' || q == '"' {
				i++
			}
		case '#':
			if q == 0 {
				line = line[:i]
			}
		}
	}
	return strings.TrimSpace(line)
}
