// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migration_test

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver/migration"
	"github.com/momeni/scratchdb/pkg/core/cerr"
	"github.com/momeni/scratchdb/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *sqlserver.Tx) error {
	return nil
}

func versions(s *migration.Set) []model.Version {
	var vs []model.Version
	for _, m := range s.Migrations() {
		vs = append(vs, m.Version)
	}
	return vs
}

func TestNewSetOrdersByVersion(t *testing.T) {
	s, err := migration.NewSet(
		&migration.Migration{Version: 20, Name: "c", Up: noop},
		&migration.Migration{Version: 0, Name: "a", Up: noop},
		&migration.Migration{Version: 3, Name: "b", Up: noop},
	)
	require.NoError(t, err)
	assert.Equal(t, []model.Version{0, 3, 20}, versions(s))
	assert.Equal(t, 3, s.Len())
	m, ok := s.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, "b", m.Name)
	_, ok = s.Lookup(4)
	assert.False(t, ok)
	_, ok = s.Lookup(21)
	assert.False(t, ok)
}

func TestNewSetRejectsInvalidMigrations(t *testing.T) {
	_, err := migration.NewSet(
		&migration.Migration{Version: 1, Name: "a", Up: noop},
		&migration.Migration{Version: 1, Name: "b", Up: noop},
	)
	assert.ErrorContains(t, err, `version 1 is used by both "a" and "b"`)

	_, err = migration.NewSet(&migration.Migration{Version: 1, Name: "a"})
	assert.ErrorContains(t, err, "has no up function")

	_, err = migration.NewSet(nil)
	assert.Error(t, err)

	assert.Panics(t, func() {
		migration.MustNewSet(&migration.Migration{Version: 1})
	})
	empty, err := migration.NewSet()
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}

func TestLoadDir(t *testing.T) {
	fsys := fstest.MapFS{
		"migs/0002_nickname.up.sql": {
			Data: []byte("alter table Person add Nickname nvarchar(64) null;"),
		},
		"migs/0002_nickname.down.sql": {
			Data: []byte("alter table Person drop column Nickname;"),
		},
		"migs/0001_person.up.sql": {
			Data: []byte("create table Person (Id int primary key);\nGO\n"),
		},
		"migs/README.md":      {Data: []byte("ignored")},
		"migs/nested/x.sql":   {Data: []byte("ignored")},
		"other/0003_x.up.sql": {Data: []byte("ignored")},
	}
	s, err := migration.LoadDir(fsys, "migs")
	require.NoError(t, err)
	assert.Equal(t, []model.Version{1, 2}, versions(s))
	ms := s.Migrations()
	assert.Equal(t, "person", ms[0].Name)
	assert.NotNil(t, ms[0].Up)
	assert.Nil(t, ms[0].Down)
	assert.Equal(t, "nickname", ms[1].Name)
	assert.NotNil(t, ms[1].Down)
}

func TestLoadDirRejectsMalformedFiles(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"unexpected migration file": {
			"m/create_person.sql": {Data: []byte("x")},
		},
		"is named both": {
			"m/1_a.up.sql":   {Data: []byte("x")},
			"m/1_b.down.sql": {Data: []byte("x")},
		},
		"has no up function": {
			"m/1_a.down.sql": {Data: []byte("x")},
		},
		"reading migrations dir": {},
	}
	for msg, fsys := range cases {
		_, err := migration.LoadDir(fsys, "m")
		assert.ErrorContains(t, err, msg)
	}
}

func TestNewRunnerValidatesArguments(t *testing.T) {
	ctx := context.Background()
	s := migration.MustNewSet(
		&migration.Migration{Version: 0, Name: "a", Up: noop},
	)
	r, err := migration.NewRunner(ctx, nil, "sqlserver://localhost")
	assert.Nil(t, r)
	var ae *cerr.ArgumentError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "set", ae.Name)

	r, err = migration.NewRunner(ctx, s, "")
	assert.Nil(t, r)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "connString", ae.Name)

	r, err = migration.NewRunner(
		ctx, s, "sqlserver://localhost",
		migration.WithProcessorOptions(migration.ProcessorOptions{
			ProviderSwitches: "missing-equal-sign",
		}),
	)
	assert.Nil(t, r)
	assert.ErrorContains(t, err, "applying provider switches")
}

func TestLoadDirFromTestdata(t *testing.T) {
	s, err := migration.LoadDir(os.DirFS("testdata"), "people")
	require.NoError(t, err)
	assert.Equal(t, []model.Version{0, 1}, versions(s))
	ms := s.Migrations()
	assert.Equal(t, "baseline", ms[0].Name)
	assert.Nil(t, ms[0].Down)
	assert.Equal(t, "person_nickname", ms[1].Name)
	assert.NotNil(t, ms[1].Down)
}
