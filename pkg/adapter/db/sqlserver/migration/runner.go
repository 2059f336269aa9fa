// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
	"github.com/momeni/scratchdb/pkg/core/cerr"
	"github.com/momeni/scratchdb/pkg/core/log"
	"github.com/momeni/scratchdb/pkg/core/model"
	"gorm.io/gorm"
)

// DefaultTableName is the table which records the applied versions.
const DefaultTableName = "VersionInfo"

// ProcessorOptions tunes how statements are sent to SQL Server.
// Statements are always executed immediately; there is no preview mode.
// The zero value keeps the driver defaults.
type ProcessorOptions struct {
	// Timeout bounds each runner operation. Zero means no bound other
	// than the caller context.
	Timeout time.Duration

	// ProviderSwitches are extra connection parameters, formatted as
	// semicolon separated key=value pairs (see sqlserver.WithSwitches).
	ProviderSwitches string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithOutput sets the sink of the runner announcements and executed
// statements. A nil sink keeps the default log.DebugSink.
func WithOutput(sink log.Sink) Option {
	return func(r *Runner) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// WithProcessorOptions replaces the default (zero) ProcessorOptions.
func WithProcessorOptions(po ProcessorOptions) Option {
	return func(r *Runner) {
		r.po = po
	}
}

// WithTableName sets the name of the applied versions table.
func WithTableName(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.gopts.TableName = name
		}
	}
}

// WithTransaction asks the runner to apply or revert all migrations of
// one operation in a single transaction.
func WithTransaction(enabled bool) Option {
	return func(r *Runner) {
		r.gopts.UseTransaction = enabled
	}
}

// Runner applies the migrations of a Set to one database.
// It is not safe for concurrent use.
type Runner struct {
	set   *Set
	pool  *sqlserver.Pool
	sink  log.Sink
	po    ProcessorOptions
	gopts gormigrate.Options
	migs  []*gormigrate.Migration
}

// NewRunner creates a Runner which applies the set migrations to the
// database of the connString connection string. A nil set or an empty
// connString cause a *cerr.ArgumentError and nothing is opened.
// The connection is checked before returning and must be released with
// the Close method.
func NewRunner(
	ctx context.Context, set *Set, connString string, opts ...Option,
) (*Runner, error) {
	if set == nil {
		return nil, cerr.Argument("set")
	}
	if connString == "" {
		return nil, cerr.Argument("connString")
	}
	r := &Runner{
		set:  set,
		sink: log.DebugSink,
		gopts: gormigrate.Options{
			TableName:    DefaultTableName,
			IDColumnName: "Version",
			IDColumnSize: 255,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	dsn, err := sqlserver.WithSwitches(connString, r.po.ProviderSwitches)
	if err != nil {
		return nil, fmt.Errorf("applying provider switches: %w", err)
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()
	r.pool, err = sqlserver.Open(ctx, dsn, r.sink)
	if err != nil {
		return nil, fmt.Errorf("opening processor: %w", err)
	}
	r.migs = r.wrap(set)
	return r, nil
}

// wrap converts the set migrations to gormigrate migrations which
// announce themselves on the runner sink.
func (r *Runner) wrap(set *Set) []*gormigrate.Migration {
	ms := set.Migrations()
	gms := make([]*gormigrate.Migration, 0, len(ms))
	for _, m := range ms {
		m := m
		gm := &gormigrate.Migration{
			ID: m.Version.String(),
			Migrate: func(db *gorm.DB) error {
				r.sink.Printf("migrating %d: %s", m.Version, m.Name)
				return m.Up(db.Statement.Context, &sqlserver.Tx{DB: db})
			},
		}
		if m.Down != nil {
			gm.Rollback = func(db *gorm.DB) error {
				r.sink.Printf("reverting %d: %s", m.Version, m.Name)
				return m.Down(db.Statement.Context, &sqlserver.Tx{DB: db})
			}
		}
		gms = append(gms, gm)
	}
	return gms
}

func (r *Runner) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.po.Timeout > 0 {
		return context.WithTimeout(ctx, r.po.Timeout)
	}
	return context.WithCancel(ctx)
}

// run passes a gormigrate instance bound to ctx to f.
// Reverting a migration without a Down function fails with an error
// wrapping cerr.ErrNotSupported.
func (r *Runner) run(
	ctx context.Context, f func(*gormigrate.Gormigrate) error,
) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	opts := r.gopts
	g := gormigrate.New(r.pool.GORM(ctx), &opts, r.migs)
	err := f(g)
	if errors.Is(err, gormigrate.ErrRollbackImpossible) {
		return cerr.NotSupported(err.Error())
	}
	return err
}

// MigrateUp applies the pending migrations up to and including the
// v version.
func (r *Runner) MigrateUp(ctx context.Context, v model.Version) error {
	if _, ok := r.set.Lookup(v); !ok {
		return fmt.Errorf("migrating up: unknown version %d", v)
	}
	r.sink.Printf("migrating up to %d", v)
	err := r.run(ctx, func(g *gormigrate.Gormigrate) error {
		return g.MigrateTo(v.String())
	})
	if err != nil {
		return fmt.Errorf("migrating up to %d: %w", v, err)
	}
	log.Info(ctx, "migrated up", log.Version(uint64(v)))
	return nil
}

// MigrateUpAll applies all pending migrations.
func (r *Runner) MigrateUpAll(ctx context.Context) error {
	if r.set.Len() == 0 {
		return nil
	}
	r.sink.Printf("migrating up to the latest version")
	err := r.run(ctx, func(g *gormigrate.Gormigrate) error {
		return g.Migrate()
	})
	if err != nil {
		return fmt.Errorf("migrating up: %w", err)
	}
	return nil
}

// MigrateDown reverts the applied migrations which are newer than the
// v version, so v remains the latest applied version. Reaching a
// migration without a Down function fails with an error wrapping
// cerr.ErrNotSupported.
func (r *Runner) MigrateDown(ctx context.Context, v model.Version) error {
	if _, ok := r.set.Lookup(v); !ok {
		return fmt.Errorf("migrating down: unknown version %d", v)
	}
	r.sink.Printf("migrating down to %d", v)
	err := r.run(ctx, func(g *gormigrate.Gormigrate) error {
		return g.RollbackTo(v.String())
	})
	if err != nil {
		return fmt.Errorf("migrating down to %d: %w", v, err)
	}
	log.Info(ctx, "migrated down", log.Version(uint64(v)))
	return nil
}

// RollbackLast reverts the most recently applied migration.
// Reverting a migration without a Down function fails with an error
// wrapping cerr.ErrNotSupported.
func (r *Runner) RollbackLast(ctx context.Context) error {
	err := r.run(ctx, func(g *gormigrate.Gormigrate) error {
		return g.RollbackLast()
	})
	if err != nil {
		return fmt.Errorf("rolling back: %w", err)
	}
	return nil
}

// Status lists the migrations of the set with their applied state.
func (r *Runner) Status(ctx context.Context) ([]model.MigrationInfo, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	db := r.pool.GORM(ctx)
	applied := make(map[string]bool)
	if db.Migrator().HasTable(r.gopts.TableName) {
		var ids []string
		err := db.Table(r.gopts.TableName).
			Pluck(r.gopts.IDColumnName, &ids).Error
		if err != nil {
			return nil, fmt.Errorf("reading applied versions: %w", err)
		}
		for _, id := range ids {
			applied[id] = true
		}
	}
	ms := r.set.Migrations()
	infos := make([]model.MigrationInfo, 0, len(ms))
	for _, m := range ms {
		infos = append(infos, model.MigrationInfo{
			Version: m.Version,
			Name:    m.Name,
			Applied: applied[m.Version.String()],
		})
	}
	return infos, nil
}

// Close releases the connections of r.
func (r *Runner) Close() error {
	return r.pool.Close()
}
