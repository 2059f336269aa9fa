// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver/migration"
	"github.com/momeni/scratchdb/pkg/core/log"
	"github.com/momeni/scratchdb/pkg/core/model"
	"github.com/spf13/cobra"
)

var (
	migrationsDir string
	targetVersion uint64
	downward      bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <file>",
	Short: "Apply or revert versioned migrations on a scratch database",
	Long: `Apply or revert versioned migrations on a scratch database.
The migrations are read from the --dir directory where each version has
a <version>_<name>.up.sql file and an optional <version>_<name>.down.sql
file. A file may contain several batches which are separated by GO lines.

Without --version, all pending migrations are applied. With --version N,
pending migrations up to and including N are applied. With --down, the
applied migrations which are newer than N are reverted (--version is
mandatory then). The applied versions are recorded in the table which is
named by the migration.table setting (VersionInfo by default).`,
	RunE: migrate,
	Args: cobra.ExactArgs(1),
}

func migrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	hasVersion := cmd.Flags().Changed("version")
	if downward && !hasVersion {
		return errors.New("--down requires --version")
	}
	return withRunner(ctx, args[0], func(r *migration.Runner) error {
		v := model.Version(targetVersion)
		switch {
		case downward:
			return r.MigrateDown(ctx, v)
		case hasVersion:
			return r.MigrateUp(ctx, v)
		default:
			return r.MigrateUpAll(ctx)
		}
	})
}

var statusCmd = &cobra.Command{
	Use:   "status <file>",
	Short: "Print the applied state of the migrations as JSON",
	RunE:  status,
	Args:  cobra.ExactArgs(1),
}

func status(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withRunner(ctx, args[0], func(r *migration.Runner) error {
		infos, err := r.Status(ctx)
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	})
}

// withRunner loads the migrations directory and passes a Runner which
// targets the file scratch database to f.
func withRunner(
	ctx context.Context, file string, f func(*migration.Runner) error,
) (err error) {
	set, err := migration.LoadDir(os.DirFS(migrationsDir), ".")
	if err != nil {
		return fmt.Errorf("loading %q: %w", migrationsDir, err)
	}
	db, err := cfg.NewScratch(file, log.DebugSink)
	if err != nil {
		return fmt.Errorf("cfg.NewScratch(%q): %w", file, err)
	}
	r, err := migration.NewRunner(
		ctx, set, db.ConnectionString(), cfg.RunnerOptions(log.DebugSink)...,
	)
	if err != nil {
		return fmt.Errorf("migration.NewRunner: %w", err)
	}
	defer func() {
		if err2 := r.Close(); err2 != nil && err == nil {
			err = fmt.Errorf("closing runner: %w", err2)
		}
	}()
	return f(r)
}

func init() {
	for _, c := range []*cobra.Command{migrateCmd, statusCmd} {
		c.Flags().StringVarP(
			&migrationsDir, "dir", "d", "migrations",
			"directory of the SQL migration files",
		)
		dbCmd.AddCommand(c)
	}
	migrateCmd.Flags().Uint64Var(
		&targetVersion, "version", 0, "target migration version",
	)
	migrateCmd.Flags().BoolVar(
		&downward, "down", false,
		"revert the migrations which are newer than --version",
	)
}
