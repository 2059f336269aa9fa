// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migration_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/momeni/scratchdb/internal/test/dbcontainer"
	"github.com/momeni/scratchdb/internal/test/people"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver/migration"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver/scratch"
	"github.com/momeni/scratchdb/pkg/core/cerr"
	"github.com/momeni/scratchdb/pkg/core/model"
	"github.com/momeni/scratchdb/pkg/core/repo"
	"github.com/stretchr/testify/suite"
)

type RunnerTestSuite struct {
	suite.Suite

	Ctx context.Context
	Srv sqlserver.Server

	db     *scratch.Database
	runner *migration.Runner
	output []string
}

func TestRunnerTestSuite(t *testing.T) {
	ctx := context.Background()
	srv, dfrs, ok := dbcontainer.New(ctx, 3*time.Minute, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &RunnerTestSuite{Ctx: ctx, Srv: srv})
}

func (rts *RunnerTestSuite) SetupTest() {
	r := rts.Require()
	db, err := scratch.NewTemp(rts.Srv, rts.T().TempDir())
	r.NoError(err)
	r.NoError(db.Create(rts.Ctx))
	rts.db = db
	rts.output = nil
	rts.runner, err = migration.NewRunner(
		rts.Ctx, people.Set(), db.ConnectionString(),
		migration.WithOutput(func(line string) {
			rts.output = append(rts.output, line)
		}),
	)
	r.NoError(err)
}

func (rts *RunnerTestSuite) TearDownTest() {
	if rts.runner != nil {
		rts.NoError(rts.runner.Close())
	}
	rts.NoError(rts.db.Close(rts.Ctx))
}

func (rts *RunnerTestSuite) firstName(id int) string {
	var name string
	err := rts.db.Execute(rts.Ctx, func(ctx context.Context, c repo.Conn) error {
		rows, err := c.Query(
			ctx, "select FirstName from Person where Id = ?", id,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		if rows.Next() {
			if err := rows.Scan(&name); err != nil {
				return err
			}
		}
		return rows.Err()
	})
	rts.Require().NoError(err)
	return name
}

func (rts *RunnerTestSuite) TestMigrateUpCreatesQueryableSchema() {
	r := rts.Require()
	r.NoError(rts.runner.MigrateUp(rts.Ctx, 0))
	err := rts.db.Execute(rts.Ctx, func(ctx context.Context, c repo.Conn) error {
		_, err := c.Exec(ctx, people.InsertFoundersSQL)
		return err
	})
	r.NoError(err)
	rts.Equal("George", rts.firstName(1))
	rts.Equal("John", rts.firstName(2))

	infos, err := rts.runner.Status(rts.Ctx)
	r.NoError(err)
	rts.Equal([]model.MigrationInfo{
		{Version: 0, Name: "baseline", Applied: true},
		{Version: 1, Name: "person_nickname", Applied: false},
	}, infos)
	rts.Contains(rts.output, "migrating 0: baseline")
}

func (rts *RunnerTestSuite) TestMigrateUpIsIdempotent() {
	r := rts.Require()
	r.NoError(rts.runner.MigrateUpAll(rts.Ctx))
	r.NoError(rts.runner.MigrateUpAll(rts.Ctx))
	r.NoError(rts.runner.MigrateUp(rts.Ctx, 0))
	n := 0
	for _, line := range rts.output {
		if strings.HasPrefix(line, "migrating 0:") {
			n++
		}
	}
	rts.Equal(1, n, "baseline must be applied once")
}

func (rts *RunnerTestSuite) TestMigrateDownRevertsNewerVersions() {
	r := rts.Require()
	r.NoError(rts.runner.MigrateUpAll(rts.Ctx))
	err := rts.db.Execute(rts.Ctx, func(ctx context.Context, c repo.Conn) error {
		_, err := c.Exec(
			ctx,
			"insert into Person (Id, FirstName, LastName, Nickname)"+
				" values (3, 'Thomas', 'Jefferson', 'Tom')",
		)
		return err
	})
	r.NoError(err)

	r.NoError(rts.runner.MigrateDown(rts.Ctx, 0))
	infos, err := rts.runner.Status(rts.Ctx)
	r.NoError(err)
	rts.True(infos[0].Applied)
	rts.False(infos[1].Applied)
	rts.Equal("Thomas", rts.firstName(3))
	rts.Contains(rts.output, "reverting 1: person_nickname")
}

func (rts *RunnerTestSuite) TestRollingBackBaselineIsNotSupported() {
	r := rts.Require()
	r.NoError(rts.runner.MigrateUp(rts.Ctx, 0))
	err := rts.runner.RollbackLast(rts.Ctx)
	rts.ErrorIs(err, cerr.ErrNotSupported)

	infos, err := rts.runner.Status(rts.Ctx)
	r.NoError(err)
	rts.True(infos[0].Applied, "baseline must stay applied")
	rts.Equal("", rts.firstName(1), "Person table must still exist")
}

func (rts *RunnerTestSuite) TestUnknownVersion() {
	rts.Error(rts.runner.MigrateUp(rts.Ctx, 7))
	rts.Error(rts.runner.MigrateDown(rts.Ctx, 7))
}

func (rts *RunnerTestSuite) TestStatusOnBlankDatabase() {
	infos, err := rts.runner.Status(rts.Ctx)
	rts.Require().NoError(err)
	rts.Len(infos, 2)
	for _, info := range infos {
		rts.False(info.Applied)
	}
}

func (rts *RunnerTestSuite) TestRollbackImpossibleIsNotSupported() {
	r := rts.Require()
	s := migration.MustNewSet(&migration.Migration{
		Version: 5,
		Name:    "irreversible",
		Up: func(ctx context.Context, tx *sqlserver.Tx) error {
			_, err := tx.Exec(ctx, "create table Irreversible (Id int)")
			return err
		},
	})
	runner, err := migration.NewRunner(
		rts.Ctx, s, rts.db.ConnectionString(),
		migration.WithTableName("IrreversibleVersions"),
		migration.WithTransaction(true),
	)
	r.NoError(err)
	defer func() {
		rts.NoError(runner.Close())
	}()
	r.NoError(runner.MigrateUpAll(rts.Ctx))
	rts.ErrorIs(runner.RollbackLast(rts.Ctx), cerr.ErrNotSupported)
}

func (rts *RunnerTestSuite) TestMigrateDownWithoutDownIsNotSupported() {
	r := rts.Require()
	s := migration.MustNewSet(
		&migration.Migration{
			Version: 0,
			Name:    "people",
			Up: func(ctx context.Context, tx *sqlserver.Tx) error {
				return tx.CreateTable(ctx, &people.Person{})
			},
			Down: func(ctx context.Context, tx *sqlserver.Tx) error {
				return tx.DropTable(ctx, &people.Person{})
			},
		},
		&migration.Migration{
			Version: 1,
			Name:    "irreversible",
			Up: func(ctx context.Context, tx *sqlserver.Tx) error {
				_, err := tx.Exec(ctx, "create table Irreversible (Id int)")
				return err
			},
		},
	)
	runner, err := migration.NewRunner(
		rts.Ctx, s, rts.db.ConnectionString(),
		migration.WithTableName("PartialVersions"),
	)
	r.NoError(err)
	defer func() {
		rts.NoError(runner.Close())
	}()
	r.NoError(runner.MigrateUpAll(rts.Ctx))
	rts.ErrorIs(runner.MigrateDown(rts.Ctx, 0), cerr.ErrNotSupported)

	infos, err := runner.Status(rts.Ctx)
	r.NoError(err)
	rts.Equal([]model.MigrationInfo{
		{Version: 0, Name: "people", Applied: true},
		{Version: 1, Name: "irreversible", Applied: true},
	}, infos)
	rts.True(rts.hasTable(&people.Person{}))
	rts.True(rts.hasTable("Irreversible"))
}

func (rts *RunnerTestSuite) TestFailedTxKeepsTables() {
	r := rts.Require()
	r.NoError(rts.runner.MigrateUp(rts.Ctx, 0))
	errAbort := errors.New("abort")
	err := rts.db.Execute(rts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			stx, ok := tx.(*sqlserver.Tx)
			if !ok {
				return fmt.Errorf("unexpected tx type %T", tx)
			}
			if err := stx.DropTable(ctx, &people.Person{}); err != nil {
				return err
			}
			if stx.HasTable(ctx, &people.Person{}) {
				return errors.New("table Person survived the drop")
			}
			return errAbort
		})
	})
	rts.ErrorIs(err, errAbort)
	rts.True(rts.hasTable(&people.Person{}), "drop must be rolled back")
}

func (rts *RunnerTestSuite) hasTable(table any) bool {
	var found bool
	err := rts.db.Execute(rts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			found = tx.(*sqlserver.Tx).HasTable(ctx, table)
			return nil
		})
	})
	rts.Require().NoError(err)
	return found
}
