// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlserver

import (
	"context"
	"fmt"

	"github.com/momeni/scratchdb/pkg/core/log"
	"github.com/momeni/scratchdb/pkg/core/repo"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

// Pool wraps a GORM database handle which is bound to one connection
// string. The underlying database/sql pool is kept with its defaults.
type Pool struct {
	*gorm.DB
}

// Open creates a Pool for the dsn connection string and checks that
// a connection can be established. Executed statements are written to
// sink (nil means log.DebugSink).
func Open(ctx context.Context, dsn string, sink log.Sink) (*Pool, error) {
	gdb, err := gorm.Open(sqlserver.Open(dsn), &gorm.Config{
		Logger: NewLogger(sink),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}
	pool := &Pool{DB: gdb}
	err = pool.Conn(ctx, NoOpConnHandler)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	return pool, nil
}

// Run opens a Pool for dsn, runs f on one of its connections, and
// closes the Pool before returning, so no connection outlives the
// call. Errors of f are returned as is.
func Run(
	ctx context.Context, dsn string, sink log.Sink, f repo.ConnHandler,
) (err error) {
	p, err := Open(ctx, dsn, sink)
	if err != nil {
		return err
	}
	defer func() {
		if err2 := p.Close(); err2 != nil && err == nil {
			err = fmt.Errorf("closing pool: %w", err2)
		}
	}()
	return p.Conn(ctx, f)
}

// NoOpConnHandler is a ConnHandler which does nothing.
func NoOpConnHandler(context.Context, repo.Conn) error {
	return nil
}

// Conn reserves a connection and passes it to f.
func (p *Pool) Conn(ctx context.Context, f repo.ConnHandler) error {
	return p.DB.WithContext(ctx).Connection(func(c *gorm.DB) error {
		cc := &Conn{DB: c}
		return f(ctx, cc)
	})
}

// Close closes all idle connections of the pool.
func (p *Pool) Close() error {
	db, err := p.DB.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// GORM returns the wrapped *gorm.DB bound to ctx.
func (p *Pool) GORM(ctx context.Context) *gorm.DB {
	return p.DB.WithContext(ctx)
}
