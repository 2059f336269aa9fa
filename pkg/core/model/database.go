// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model contains the plain data types which are shared by the
// scratch database and migration packages. It has no dependency on the
// database drivers, so it may be imported by any layer.
package model

import (
	"path/filepath"
	"strings"
)

// DatabaseName derives the name of a scratch database from its file
// path. The name is the base name of path without its extension, so
// "/tmp/x/Test.mdf" and "Test.mdf" both map to "Test".
// An empty string is returned if path has no usable base name.
func DatabaseName(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	switch name {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	return name
}
