// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlserver

import (
	"context"

	"github.com/momeni/scratchdb/pkg/core/repo"
	"gorm.io/gorm"
)

// Conn represents a reserved connection of a Pool.
type Conn struct {
	*gorm.DB
}

// Tx runs f in a transaction on the c connection. The transaction is
// committed if f returns nil and rolled back otherwise (including when
// f panics, in which case the panic is propagated).
func (c *Conn) Tx(ctx context.Context, f repo.TxHandler) error {
	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(ctx, &Tx{DB: tx})
	})
}

// Exec runs the sql statements and returns the number of affected rows.
// Parameters may be given with the ? or @name placeholders.
// In absence of args, sql may contain a whole T-SQL batch.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(c.DB.WithContext(ctx), sql, args...)
}

// Query runs the sql statement and returns its result set.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return query(c.DB.WithContext(ctx), sql, args...)
}

// IsConn method prevents a non-Conn object (such as a Tx) to
// mistakenly implement the Conn interface.
func (c *Conn) IsConn() {
}

// GORM returns the embedded *gorm.DB instance, configuring it
// to operate on the given ctx context.
func (c *Conn) GORM(ctx context.Context) *gorm.DB {
	return c.DB.WithContext(ctx)
}

func exec(db *gorm.DB, sql string, args ...any) (int64, error) {
	tt := db.Exec(sql, args...)
	if err := tt.Error; err != nil {
		return 0, err
	}
	return tt.RowsAffected, nil
}

func query(db *gorm.DB, sql string, args ...any) (repo.Rows, error) {
	rows, err := db.Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}
