// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr defines the error kinds which are shared between the
// core and adapter layers. Callers are expected to match them with
// errors.Is (for the sentinel values) and errors.As (for the typed
// errors) instead of comparing error strings.
package cerr

import (
	"errors"
	"fmt"
)

// ErrNotSupported indicates that an operation is deliberately not
// implemented, e.g., reverting a baseline migration.
var ErrNotSupported = errors.New("not supported")

// ErrDatabaseExists indicates that a database could not be created
// because another database with the same name exists already.
var ErrDatabaseExists = errors.New("database already exists")

// ArgumentError reports a missing or invalid argument of a function.
// Name is the parameter name as seen by the caller.
type ArgumentError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid argument %q: must not be empty", e.Name)
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Name, e.Reason)
}

// Argument returns an *ArgumentError for the name parameter which was
// not provided.
func Argument(name string) *ArgumentError {
	return &ArgumentError{Name: name}
}

// NotSupported returns an error which wraps ErrNotSupported and carries
// the given message.
func NotSupported(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrNotSupported)
}

// IsArgument reports whether err (or any error which it wraps) is an
// *ArgumentError.
func IsArgument(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}
