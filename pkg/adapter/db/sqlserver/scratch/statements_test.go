// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scratch

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
	"github.com/momeni/scratchdb/pkg/core/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var srv = sqlserver.Server{
	Host: "localhost", Port: 1433, User: "sa", Password: "pw",
}

func TestNewDerivesNameFromPath(t *testing.T) {
	d, err := New(srv, "Test.mdf")
	require.NoError(t, err)
	assert.Equal(t, "Test", d.Name())
	assert.True(t, filepath.IsAbs(d.Path()))
	assert.Equal(t, "Test.mdf", filepath.Base(d.Path()))
	assert.Equal(
		t, "sqlserver://sa:pw@localhost:1433?database=Test",
		d.ConnectionString(),
	)
	assert.Equal(
		t, "sqlserver://sa:pw@localhost:1433?database=master",
		d.MasterConnectionString(),
	)
}

func TestNewRejectsUnnamedPaths(t *testing.T) {
	for _, p := range []string{"", ".mdf", "/"} {
		_, err := New(srv, p)
		assert.True(t, cerr.IsArgument(err), "path=%q err=%v", p, err)
	}
}

func TestNewTempIsUnique(t *testing.T) {
	dir := t.TempDir()
	d1, err := NewTemp(srv, dir)
	require.NoError(t, err)
	d2, err := NewTemp(srv, dir)
	require.NoError(t, err)
	assert.NotEqual(t, d1.Name(), d2.Name())
	assert.Regexp(t, regexp.MustCompile(`^scratch_[0-9a-f]{32}$`), d1.Name())
	assert.Equal(t, dir, filepath.Dir(d1.Path()))
}

func TestStatements(t *testing.T) {
	d, err := New(srv, "/data/It's.mdf")
	require.NoError(t, err)
	assert.Equal(t, "create database [It's];", d.createStatement())
	assert.Equal(t, `
if db_id(N'It''s') is not null begin
    alter database [It's] set single_user with rollback immediate;
    drop database [It's];
end`, d.dropStatement())

	d, err = New(srv, "/data/Test.mdf", WithDataFiles())
	require.NoError(t, err)
	assert.Equal(t, "create database [Test]\n"+
		"on primary (name = N'Test', filename = N'/data/Test.mdf')\n"+
		"log on (name = N'Test_log', filename = N'/data/Test_log.ldf');",
		d.createStatement())
}

func TestExecuteRequiresHandler(t *testing.T) {
	d, err := New(srv, "Test.mdf")
	require.NoError(t, err)
	err = d.Execute(context.Background(), nil)
	assert.True(t, cerr.IsArgument(err))
}
