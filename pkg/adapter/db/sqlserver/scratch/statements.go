// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scratch

import (
	"fmt"
	"path/filepath"

	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
)

// The database name is derived from a local file path, so it is not
// attacker controlled. It is still quoted as an identifier or literal.
func (d *Database) createStatement() string {
	q := sqlserver.QuoteName(d.name)
	if !d.dataFiles {
		return "create database " + q + ";"
	}
	logPath := filepath.Join(filepath.Dir(d.path), d.name+"_log.ldf")
	return fmt.Sprintf(
		"create database %s\n"+
			"on primary (name = %s, filename = %s)\n"+
			"log on (name = %s, filename = %s);",
		q,
		sqlserver.QuoteString(d.name), sqlserver.QuoteString(d.path),
		sqlserver.QuoteString(d.name+"_log"), sqlserver.QuoteString(logPath),
	)
}

func (d *Database) dropStatement() string {
	q := sqlserver.QuoteName(d.name)
	return fmt.Sprintf(`
if db_id(%s) is not null begin
    alter database %s set single_user with rollback immediate;
    drop database %s;
end`, sqlserver.QuoteString(d.name), q, q)
}
