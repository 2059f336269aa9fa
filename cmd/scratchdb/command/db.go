// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"fmt"

	"github.com/momeni/scratchdb/pkg/core/log"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Scratch database actions",
	Long: `Scratch database actions can be chosen by sub-commands.
Each action takes the scratch database file path as its first argument.
The database name is the base name of that path without its extension.`,
}

var createCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create a scratch database, replacing a stale one",
	RunE:  create,
	Args:  cobra.ExactArgs(1),
}

func create(cmd *cobra.Command, args []string) error {
	db, err := cfg.NewScratch(args[0], log.DebugSink)
	if err != nil {
		return fmt.Errorf("cfg.NewScratch(%q): %w", args[0], err)
	}
	if err = db.Create(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", db.Name(), db.Path())
	return nil
}

var dropCmd = &cobra.Command{
	Use:   "drop <file>",
	Short: "Drop a scratch database, evicting its connections",
	RunE:  drop,
	Args:  cobra.ExactArgs(1),
}

func drop(cmd *cobra.Command, args []string) error {
	db, err := cfg.NewScratch(args[0], log.DebugSink)
	if err != nil {
		return fmt.Errorf("cfg.NewScratch(%q): %w", args[0], err)
	}
	if err = db.Close(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", db.Name())
	return nil
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(createCmd, dropCmd)
}
