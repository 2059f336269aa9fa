// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migration

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
	"github.com/momeni/scratchdb/pkg/core/model"
)

// fileName matches names like 0001_create_person.up.sql.
var fileName = regexp.MustCompile(`^(\d+)_([^.]+)\.(up|down)\.sql$`)

// LoadDir reads the SQL migration files of the dir directory in fsys.
// Files are named <version>_<name>.up.sql or <version>_<name>.down.sql
// and a down file is optional. Other .sql files are rejected, while
// non-SQL files and sub-directories are ignored.
//
// A file may contain several T-SQL batches which are separated by
// lines having a sole GO keyword. They are executed one by one.
func LoadDir(fsys fs.FS, dir string) (*Set, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations dir: %w", err)
	}
	byVer := make(map[model.Version]*Migration)
	var order []*Migration
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		m := fileName.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("unexpected migration file %q", e.Name())
		}
		var v model.Version
		if err := v.UnmarshalText([]byte(m[1])); err != nil {
			return nil, fmt.Errorf("file %q: %w", e.Name(), err)
		}
		b, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", e.Name(), err)
		}
		mig, ok := byVer[v]
		switch {
		case !ok:
			mig = &Migration{Version: v, Name: m[2]}
			byVer[v] = mig
			order = append(order, mig)
		case mig.Name != m[2]:
			return nil, fmt.Errorf(
				"version %d is named both %q and %q", v, mig.Name, m[2],
			)
		}
		f := batches(splitBatches(string(b)))
		if m[3] == "up" {
			mig.Up = f
		} else {
			mig.Down = f
		}
	}
	return NewSet(order...)
}

// batches returns a MigrateFunc which executes each batch in order.
func batches(bs []string) MigrateFunc {
	return func(ctx context.Context, tx *sqlserver.Tx) error {
		for i, b := range bs {
			if _, err := tx.Exec(ctx, b); err != nil {
				return fmt.Errorf("batch #%d: %w", i+1, err)
			}
		}
		return nil
	}
}

// splitBatches splits script on the GO separator lines, dropping the
// blank batches.
func splitBatches(script string) []string {
	var bs []string
	var sb strings.Builder
	flush := func() {
		if b := strings.TrimSpace(sb.String()); b != "" {
			bs = append(bs, b)
		}
		sb.Reset()
	}
	sc := bufio.NewScanner(strings.NewReader(script))
	sc.Buffer(make([]byte, 0, 64*1024), len(script)+1)
	for sc.Scan() {
		line := sc.Text()
		if strings.EqualFold(strings.TrimSpace(line), "go") {
			flush()
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	flush()
	return bs
}
