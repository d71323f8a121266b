/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version provides build version information.
package version

import "fmt"

// Version is the current version of Telestar.
// This is set at build time via ldflags:
//
//	-X github.com/friendsincode/telestar/internal/version.Version=X.Y.Z
var Version = "0.4.0"

// Commit is the VCS revision, set at build time.
var Commit = "unknown"

// String returns the version line printed by the CLI.
func String() string {
	return fmt.Sprintf("telestar %s (%s)", Version, Commit)
}
