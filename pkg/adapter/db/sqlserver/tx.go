// Copyright (c) 2023 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlserver

import (
	"context"
	"fmt"

	"github.com/momeni/scratchdb/pkg/core/repo"
	"gorm.io/gorm"
)

// Tx is the handle which migrations run on. Depending on the runner
// settings, it wraps either a real transaction or the plain session of
// the runner, so it must not be assumed that statements are atomic.
// It is unsafe to be used concurrently.
// Tx embeds the *gorm.DB, hence, may be used like GORM from within the
// migration definitions.
type Tx struct {
	*gorm.DB
}

// Exec runs the sql statements and returns the number of affected rows.
func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(tx.DB.WithContext(ctx), sql, args...)
}

// Query runs the sql statement and returns its result set.
// The Query or Exec may not be called again until the Rows is
// closed since only one ongoing statement may be used on each
// connection unless MARS is enabled in the connection string.
func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return query(tx.DB.WithContext(ctx), sql, args...)
}

// IsTx method prevents a non-Tx object (such as a Conn) to
// mistakenly implement the Tx interface.
func (tx *Tx) IsTx() {
}

// GORM returns the embedded *gorm.DB instance, configuring it
// to operate on the given ctx context (in a gorm.Session).
func (tx *Tx) GORM(ctx context.Context) *gorm.DB {
	return tx.DB.WithContext(ctx)
}

// CreateTable creates one table per given model using the GORM
// migrator of SQL Server, i.e., the DDL statements are derived from
// the struct fields and their gorm tags.
func (tx *Tx) CreateTable(ctx context.Context, models ...any) error {
	if err := tx.GORM(ctx).Migrator().CreateTable(models...); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// DropTable drops the tables of the given models (or table names).
// Missing tables are ignored.
func (tx *Tx) DropTable(ctx context.Context, models ...any) error {
	if err := tx.GORM(ctx).Migrator().DropTable(models...); err != nil {
		return fmt.Errorf("dropping tables: %w", err)
	}
	return nil
}

// HasTable reports whether the table of model (or the model table
// name) exists.
func (tx *Tx) HasTable(ctx context.Context, model any) bool {
	return tx.GORM(ctx).Migrator().HasTable(model)
}
