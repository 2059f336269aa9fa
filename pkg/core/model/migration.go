// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"strconv"
)

// Version identifies a migration. Migrations are applied in ascending
// Version order and reverted in descending order.
type Version uint64

// String returns the decimal representation of v. It is also the ID
// which is recorded in the applied versions table.
func (v Version) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// UnmarshalText parses a decimal version number.
func (v *Version) UnmarshalText(text []byte) error {
	n, err := strconv.ParseUint(string(text), 10, 64)
	if err != nil {
		return fmt.Errorf("version %q is not a non-negative integer", text)
	}
	*v = Version(n)
	return nil
}

// MigrationInfo describes one known migration and whether it has been
// applied to the target database.
type MigrationInfo struct {
	Version Version `json:"version"`
	Name    string  `json:"name"`
	Applied bool    `json:"applied"`
}
