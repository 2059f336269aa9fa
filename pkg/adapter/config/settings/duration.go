// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings contains value types which are shared by the
// configuration file sections.
package settings

import (
	"log/slog"
	"strings"
	"time"
)

// Duration is a specialization of the time.Duration which is read and
// written using the time.ParseDuration format, e.g., 1m30s, producing
// a more human-readable representation when marshaled.
type Duration time.Duration

// UnmarshalText reifies the encoding.TextUnmarshaler interface, so
// a byte slice (e.g., read from a YAML file) can be decoded as a
// time duration. In absence of errors, `d` receiver will be updated
// to contain the decoded duration.
func (d *Duration) UnmarshalText(data []byte) error {
	dd, err := time.ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// String encodes d according to the time.Duration string format, e.g.,
// 2h3m4s, with this difference that zero trailing values are ignored.
// That is, no 0s or 0m0s suffix may be included. A zero duration is
// encoded as 0s.
func (d Duration) String() string {
	s := time.Duration(d).String()
	if s == "0s" {
		return s
	}
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

// MarshalText implements encoding.TextMarshaler interface and
// serializes `d` duration using its String method.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogValue implements slog.LogValuer and returns a DurationValue.
func (d Duration) LogValue() slog.Value {
	return slog.DurationValue(time.Duration(d))
}
