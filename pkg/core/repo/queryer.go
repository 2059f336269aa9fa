// Copyright (c) 2023 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo declares the database access interfaces which are used
// by the callers of the scratch database. They are implemented by the
// pkg/adapter/db/sqlserver package.
package repo

import "context"

// Queryer runs SQL statements. Statements are executed one at a time;
// a Rows must be closed before the next statement is sent.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (count int64, err error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Rows is the result set of a Queryer.Query call.
type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
	Values() ([]any, error)
}
