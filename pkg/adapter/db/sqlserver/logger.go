// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlserver

import (
	"time"

	"github.com/momeni/scratchdb/pkg/core/log"
	"gorm.io/gorm/logger"
)

// NewLogger returns a GORM logger which writes every executed statement
// to the sink. A nil sink means log.DebugSink.
func NewLogger(sink log.Sink) logger.Interface {
	if sink == nil {
		sink = log.DebugSink
	}
	return logger.New(sink, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Info,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
		// Set to false in order to log with replaced vars
		ParameterizedQueries: true,
	})
}
