// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff implements a Diff function that compares two inputs
// and renders the result in unified diff format.
package diff

import (
	"bytes"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff of old and new, headed by a
// "diff oldName newName" line. It returns nil if they are equal.
func Diff(oldName string, old []byte, newName string, new []byte) ([]byte, error) {
	if bytes.Equal(old, new) {
		return nil, nil
	}
	ud := difflib.UnifiedDiff{
		A:        lines(old),
		B:        lines(new),
		FromFile: oldName,
		ToFile:   newName,
		Context:  3,
		Eol:      "\n",
	}
	var buf bytes.Buffer
	buf.WriteString("diff " + oldName + " " + newName + "\n")
	if err := difflib.WriteUnifiedDiff(&buf, ud); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// lines splits data into lines that each end in a newline.
// A missing final newline is supplied, so the last line prints cleanly.
func lines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	list := strings.SplitAfter(string(data), "\n")
	if last := list[len(list)-1]; last == "" {
		list = list[:len(list)-1]
	} else {
		list[len(list)-1] = last + "\n"
	}
	return list
}
