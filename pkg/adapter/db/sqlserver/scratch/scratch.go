// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scratch manages disposable SQL Server databases for tests.
// A Database is named after a file path, may be created (replacing a
// stale database with the same name), queried through short-lived
// connections, and finally dropped by its Close method.
//
//	db, err := scratch.New(srv, "Test.mdf")
//	if err != nil { ... }
//	if err = db.Create(ctx); err != nil { ... }
//	defer db.Close(ctx)
//	err = db.Execute(ctx, func(ctx context.Context, c repo.Conn) error {
//		_, err := c.Exec(ctx, "create table Person (Id int)")
//		return err
//	})
//
// Every operation opens its own connection and closes it before
// returning. A Database must not be shared between goroutines.
package scratch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
	"github.com/momeni/scratchdb/pkg/core/cerr"
	"github.com/momeni/scratchdb/pkg/core/log"
	"github.com/momeni/scratchdb/pkg/core/model"
	"github.com/momeni/scratchdb/pkg/core/repo"
)

// Database is a scratch database on a SQL Server instance.
type Database struct {
	srv       sqlserver.Server
	path      string
	name      string
	dataFiles bool
	sink      log.Sink
}

// Option customizes a Database.
type Option func(*Database)

// WithDataFiles asks Create to place the primary data file of the
// database at its path (and its log file next to it) instead of the
// default data directory of the server. The path must be reachable
// by the server process.
func WithDataFiles() Option {
	return func(d *Database) {
		d.dataFiles = true
	}
}

// WithSink sets the sink which receives the executed statements.
// By default, they are written by log.DebugSink.
func WithSink(sink log.Sink) Option {
	return func(d *Database) {
		d.sink = sink
	}
}

// New instantiates a Database for the path file path on the srv server.
// The database name is the base name of path without its extension.
// Nothing is created until the Create method is called.
func New(srv sqlserver.Server, path string, opts ...Option) (*Database, error) {
	if path == "" {
		return nil, cerr.Argument("path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", path, err)
	}
	name := model.DatabaseName(abs)
	if name == "" {
		return nil, &cerr.ArgumentError{
			Name: "path", Reason: fmt.Sprintf("%q has no base name", path),
		}
	}
	d := &Database{
		srv:  srv,
		path: abs,
		name: name,
		sink: log.DebugSink,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// NewTemp instantiates a Database with a unique file path in the dir
// directory, so concurrent tests may use distinct databases.
func NewTemp(srv sqlserver.Server, dir string, opts ...Option) (*Database, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return New(srv, filepath.Join(dir, "scratch_"+id+".mdf"), opts...)
}

// Path returns the absolute file path of d.
func (d *Database) Path() string {
	return d.path
}

// Name returns the database name which is derived from Path.
func (d *Database) Name() string {
	return d.name
}

// ConnectionString returns the connection string of d with d.Name()
// as its initial catalog.
func (d *Database) ConnectionString() string {
	return d.srv.ConnectionString(d.name)
}

// MasterConnectionString returns the administrative endpoint which is
// used for creating and dropping d.
func (d *Database) MasterConnectionString() string {
	return d.srv.MasterConnectionString()
}

// Create creates the database. If a database with the same name exists
// already, it is dropped (evicting its other connections) and the
// creation is retried once. Other errors are returned as is (wrapped).
func (d *Database) Create(ctx context.Context) error {
	stmt := d.createStatement()
	err := d.admin(ctx, stmt)
	if err == nil {
		log.Info(ctx, "created scratch database", log.Database(d.name))
		return nil
	}
	if !sqlserver.IsDatabaseExists(err) {
		return fmt.Errorf("creating database %q: %w", d.name, err)
	}
	log.Warn(
		ctx, "dropping stale scratch database",
		log.Database(d.name), log.Err("cause", err),
	)
	if err = d.drop(ctx); err != nil {
		return fmt.Errorf("dropping stale database %q: %w", d.name, err)
	}
	if err = d.admin(ctx, stmt); err != nil {
		if sqlserver.IsDatabaseExists(err) {
			return fmt.Errorf(
				"re-creating database %q: %w: %w",
				d.name, cerr.ErrDatabaseExists, err,
			)
		}
		return fmt.Errorf("re-creating database %q: %w", d.name, err)
	}
	log.Info(ctx, "re-created scratch database", log.Database(d.name))
	return nil
}

// Execute opens a new connection to d, passes it to f, and closes the
// connection afterwards, regardless of the f outcome. The error which
// is returned by f is returned as is.
func (d *Database) Execute(ctx context.Context, f repo.ConnHandler) error {
	if f == nil {
		return cerr.Argument("f")
	}
	return sqlserver.Run(ctx, d.ConnectionString(), d.sink, f)
}

// Exists reports whether a database named d.Name() is present.
func (d *Database) Exists(ctx context.Context) (exists bool, err error) {
	err = sqlserver.Run(
		ctx, d.MasterConnectionString(), d.sink,
		func(ctx context.Context, c repo.Conn) error {
			rows, err := c.Query(
				ctx,
				"select case when db_id(?) is null then 0 else 1 end",
				d.name,
			)
			if err != nil {
				return err
			}
			defer rows.Close()
			if !rows.Next() {
				return rows.Err()
			}
			var n int
			if err := rows.Scan(&n); err != nil {
				return err
			}
			exists = n == 1
			return rows.Err()
		},
	)
	if err != nil {
		return false, fmt.Errorf("checking database %q: %w", d.name, err)
	}
	return exists, nil
}

// Close drops the database after forcing it into the single user mode,
// so other connections are rolled back and evicted. It succeeds if the
// database does not exist, e.g., because Create never completed.
// Close must not be called concurrently.
func (d *Database) Close(ctx context.Context) error {
	if err := d.drop(ctx); err != nil {
		return fmt.Errorf("dropping database %q: %w", d.name, err)
	}
	log.Info(ctx, "dropped scratch database", log.Database(d.name))
	return nil
}

func (d *Database) drop(ctx context.Context) error {
	return d.admin(ctx, d.dropStatement())
}

// admin runs the stmt batch on the administrative endpoint.
func (d *Database) admin(ctx context.Context, stmt string) error {
	return sqlserver.Run(
		ctx, d.MasterConnectionString(), d.sink,
		func(ctx context.Context, c repo.Conn) error {
			_, err := c.Exec(ctx, stmt)
			return err
		},
	)
}
