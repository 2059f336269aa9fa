// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package migration configures the gormigrate library in order to apply
// versioned schema migrations to a SQL Server database.
//
// Migrations are defined as Go values (see Migration) or loaded from
// a directory of SQL files (see LoadDir) and are grouped in a Set.
// NewRunner binds a Set to a connection string and returns a Runner
// which applies or reverts them. Ordering, bookkeeping of the applied
// versions, and the transaction handling are left to gormigrate.
package migration

import (
	"context"
	"fmt"
	"sort"

	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
	"github.com/momeni/scratchdb/pkg/core/model"
)

// MigrateFunc changes the schema using the tx handle.
type MigrateFunc func(ctx context.Context, tx *sqlserver.Tx) error

// Migration is one versioned schema change. Up is mandatory, while
// a nil Down means that the migration can not be reverted.
type Migration struct {
	Version model.Version
	Name    string
	Up      MigrateFunc
	Down    MigrateFunc
}

// Set is an immutable collection of migrations which are ordered by
// their versions.
type Set struct {
	ms []*Migration
}

// NewSet validates the given migrations and returns them as a Set.
// Each migration must have an Up function and a distinct version.
func NewSet(ms ...*Migration) (*Set, error) {
	sorted := make([]*Migration, 0, len(ms))
	seen := make(map[model.Version]string, len(ms))
	for i, m := range ms {
		switch {
		case m == nil:
			return nil, fmt.Errorf("migration #%d is nil", i)
		case m.Up == nil:
			return nil, fmt.Errorf(
				"migration %d (%s) has no up function", m.Version, m.Name,
			)
		}
		if name, dup := seen[m.Version]; dup {
			return nil, fmt.Errorf(
				"version %d is used by both %q and %q",
				m.Version, name, m.Name,
			)
		}
		seen[m.Version] = m.Name
		sorted = append(sorted, m)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})
	return &Set{ms: sorted}, nil
}

// MustNewSet is like NewSet but panics in case of errors. It is meant
// for package level variables.
func MustNewSet(ms ...*Migration) *Set {
	s, err := NewSet(ms...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of migrations in s.
func (s *Set) Len() int {
	return len(s.ms)
}

// Migrations returns the migrations of s in ascending version order.
func (s *Set) Migrations() []*Migration {
	return append([]*Migration(nil), s.ms...)
}

// Lookup finds the migration with the v version.
func (s *Set) Lookup(v model.Version) (*Migration, bool) {
	i := sort.Search(len(s.ms), func(i int) bool {
		return s.ms[i].Version >= v
	})
	if i < len(s.ms) && s.ms[i].Version == v {
		return s.ms[i], true
	}
	return nil, false
}
