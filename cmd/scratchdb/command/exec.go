// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/momeni/scratchdb/pkg/core/log"
	"github.com/momeni/scratchdb/pkg/core/repo"
	"github.com/spf13/cobra"
)

var queryMode bool

var execCmd = &cobra.Command{
	Use:   "exec <file> <sql>",
	Short: "Run a T-SQL batch against a scratch database",
	Long: `Run a T-SQL batch against a scratch database in a new connection.
By default, the number of affected rows is printed. With --query, the
result set rows are printed as JSON arrays, one row per line.`,
	RunE: execSQL,
	Args: cobra.ExactArgs(2),
}

func execSQL(cmd *cobra.Command, args []string) error {
	db, err := cfg.NewScratch(args[0], log.DebugSink)
	if err != nil {
		return fmt.Errorf("cfg.NewScratch(%q): %w", args[0], err)
	}
	sql := args[1]
	out := cmd.OutOrStdout()
	return db.Execute(cmd.Context(), func(ctx context.Context, c repo.Conn) error {
		if !queryMode {
			n, err := c.Exec(ctx, sql)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d rows affected\n", n)
			return nil
		}
		rows, err := c.Query(ctx, sql)
		if err != nil {
			return err
		}
		defer rows.Close()
		return printRows(out, rows)
	})
}

func printRows(w io.Writer, rows repo.Rows) error {
	enc := json.NewEncoder(w)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = fmt.Sprintf("0x%X", b)
			}
		}
		if err = enc.Encode(vals); err != nil {
			return err
		}
	}
	return rows.Err()
}

func init() {
	execCmd.Flags().BoolVarP(
		&queryMode, "query", "q", false, "print the result set rows",
	)
	dbCmd.AddCommand(execCmd)
}
