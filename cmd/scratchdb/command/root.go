// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands of the scratchdb
// tool. Commands are organized using the cobra library.
// The "db" sub-command groups the scratch database actions:
//
//	./scratchdb db create Test.mdf [-c /path/of/config.yaml]
//	./scratchdb db exec Test.mdf "select 1" [--query]
//	./scratchdb db migrate Test.mdf --dir ./migrations [--version N]
//	./scratchdb db migrate Test.mdf --dir ./migrations --down --version N
//	./scratchdb db status Test.mdf --dir ./migrations
//	./scratchdb db drop Test.mdf
//
// Relative database file paths are resolved against the scratch.dir
// setting of the configuration file.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/momeni/scratchdb/pkg/adapter/config"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
	"github.com/momeni/scratchdb/pkg/core/log"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool

	// cfg is loaded before any sub-command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scratchdb",
	Short: "Disposable SQL Server databases for migration tests",
	Long: `Disposable SQL Server databases for migration tests.
A scratch database is named after a file path, so the same path always
refers to the same database. Creating it replaces any stale database
with the same name, and dropping it evicts other connections first.
Versioned migrations may be applied to (or reverted from) a scratch
database using SQL files which are named like 0001_name.up.sql and
0001_name.down.sql.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

func loadConfig(cmd *cobra.Command, _ []string) (err error) {
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{AddSource: verbose, Level: level},
	)))
	log.Debug(
		cmd.Context(), "loaded config",
		slog.String("path", cfgPath),
		slog.String("server", cfg.SQLServer().Redacted(sqlserver.MasterDatabase)),
		log.Valuer("timeout", cfg.Migration.Timeout),
	)
	return nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. The process exits
// with a non-zero code if the command fails.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false,
		"log executed statements and migration output",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		cfgPath = "configs/scratchdb.yaml"
	}
}
