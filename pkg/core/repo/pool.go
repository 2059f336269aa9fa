// Copyright (c) 2023 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// ConnHandler is a unit of work which runs on a single connection.
// The connection is owned by the caller of the handler and must not be
// retained after the handler returns.
type ConnHandler func(context.Context, Conn) error

// Pool hands out connections to ConnHandler callbacks.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
	Close() error
}
