// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"

	"golang.org/x/xerrors"
)

// errUsage marks a malformed invocation: a bad flag value or an
// unreadable catalog. It does not depend on the files being patched,
// so the run stops before any file is read.
type errUsage struct {
	err error
}

// usageError marks err as a usage error.
func usageError(err error) error {
	return &errUsage{err}
}

func usagef(format string, args ...interface{}) error {
	return &errUsage{xerrors.Errorf(format, args...)}
}

func (e *errUsage) Error() string {
	return "usage: " + e.err.Error()
}

func (e *errUsage) Unwrap() error {
	return e.err
}

// exitStatus returns the process exit status for a failed run:
// 2 for usage errors and 1 for everything else.
func exitStatus(err error) int {
	var u *errUsage
	if errors.As(err, &u) {
		return 2
	}
	return 1
}
