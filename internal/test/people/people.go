// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package people provides a one table schema for the integration tests
// of the scratch and migration packages.
package people

import (
	"context"

	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver/migration"
	"github.com/momeni/scratchdb/pkg/core/cerr"
)

// Person is the model of the Person table.
type Person struct {
	ID        int    `gorm:"column:Id;primaryKey;autoIncrement:false"`
	FirstName string `gorm:"column:FirstName;size:255;not null"`
	LastName  string `gorm:"column:LastName;size:255;not null"`
}

// TableName keeps the singular table name.
func (Person) TableName() string {
	return "Person"
}

// Baseline is the version 0 migration which creates the Person table.
// It can not be reverted.
var Baseline = &migration.Migration{
	Version: 0,
	Name:    "baseline",
	Up: func(ctx context.Context, tx *sqlserver.Tx) error {
		return tx.CreateTable(ctx, &Person{})
	},
	Down: func(context.Context, *sqlserver.Tx) error {
		return cerr.NotSupported("reverting the baseline migration")
	},
}

// Nickname is the version 1 migration which adds a nullable Nickname
// column to the Person table.
var Nickname = &migration.Migration{
	Version: 1,
	Name:    "person_nickname",
	Up: func(ctx context.Context, tx *sqlserver.Tx) error {
		_, err := tx.Exec(
			ctx, "alter table Person add Nickname nvarchar(64) null",
		)
		return err
	},
	Down: func(ctx context.Context, tx *sqlserver.Tx) error {
		_, err := tx.Exec(ctx, "alter table Person drop column Nickname")
		return err
	},
}

// Set returns the Baseline and Nickname migrations.
func Set() *migration.Set {
	return migration.MustNewSet(Nickname, Baseline)
}

// Founders are the rows which the tests insert.
var Founders = []Person{
	{ID: 1, FirstName: "George", LastName: "Washington"},
	{ID: 2, FirstName: "John", LastName: "Adams"},
}

// InsertFoundersSQL inserts Founders into the Person table.
const InsertFoundersSQL = `
insert into Person (Id, FirstName, LastName) values (1, 'George', 'Washington');
insert into Person (Id, FirstName, LastName) values (2, 'John', 'Adams');`
