// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Srcpatch strips retired subsystems out of Go source files and moves
// loose key/value logging calls onto typed structured-logging fields.
//
// Usage:
//
//	srcpatch [-C dir] [--catalog file] [--passes list] [--diff] [path ...]
//	srcpatch [-C dir] --walk [--ext .go] [root ...]
//	srcpatch [--catalog file] catalog
//
// Srcpatch applies a rule catalog to each file of a worklist, in order,
// and writes the file back when the rules change it. It prints one line
// per file, “fixed”, “no change” or “missing”, followed by a count of
// the files it changed. The --diff flag causes srcpatch to print a diff
// of the intended changes instead.
//
// The worklist is the files named on the command line, plus those read
// from a --list file (one path per line, # comments allowed). With --walk
// the arguments are directories to search instead, skipping hidden,
// vendor and testdata directories. With no files at all, srcpatch uses
// the worklist recorded in the catalog. Relative paths are resolved
// against the -C directory. A missing file is reported and skipped; any
// other read or write failure stops the run.
//
// # Passes
//
// The catalog's rules are grouped into passes, selected with --passes
// (default legacy,calls):
//
//	legacy   delete import lines, struct fields, composite literal entries,
//	         statements and whole brace-delimited blocks that belong to the
//	         retired rate limiter, audit logger and local cache
//	calls    rewrite logger calls such as
//	             logger.Info("started", "port", 8080)
//	         into
//	             logger.Info("started", zap.Int("port", 8080))
//	imports  run goimports over the result
//
// Within a file the passes always run in that order. Blocks are measured
// by counting braces outside string literals and comments, so a brace in
// a string cannot end a block early. A block that never closes takes the
// rest of the file with it and is reported as a warning.
//
// A field's type comes from the catalog's key table when the key is
// listed there, and otherwise from the shape of the value: a quoted
// literal is a String, an integer literal an Int, true or false a Bool,
// an expression mentioning time.Second or time.Since a Duration. The key
// "error" is always an Error field.
//
// # Catalogs
//
// The built-in catalog can be printed with
//
//	srcpatch catalog > rules.yaml
//
// and an edited copy used with --catalog rules.yaml. Import paths in the
// catalog that begin with ./ are relative to the module path, which is
// read from go.mod in the -C directory unless given with --module.
package main
