// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlserver

import (
	"errors"

	mssql "github.com/microsoft/go-mssqldb"
)

// ErrNumDatabaseExists is the SQL Server error number which is
// reported when a database name is already taken.
const ErrNumDatabaseExists = 1801

// ErrorNumber returns the SQL Server error number which is carried by
// err (or any error which it wraps) and true. If err was not reported
// by the DBMS, it returns false.
func ErrorNumber(err error) (int32, bool) {
	var me mssql.Error
	if errors.As(err, &me) {
		return me.Number, true
	}
	var mep *mssql.Error
	if errors.As(err, &mep) && mep != nil {
		return mep.Number, true
	}
	return 0, false
}

// IsDatabaseExists reports whether err indicates that a database could
// not be created because its name was taken.
func IsDatabaseExists(err error) bool {
	n, ok := ErrorNumber(err)
	return ok && n == ErrNumDatabaseExists
}
