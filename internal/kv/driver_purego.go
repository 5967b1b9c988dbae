//go:build purego || !sqlite_cgo
// +build purego !sqlite_cgo

package kv

// This file is compiled when building without CGO or with the purego tag.
// The pure Go driver needs no C compiler and cross-compiles cleanly, which
// matters for a tool installed with `go install`.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
