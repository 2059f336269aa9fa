// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"context"
	"fmt"
)

// Sink receives one human-readable output line per call.
// A Sink is not required to be safe for concurrent use.
type Sink func(line string)

// DebugSink is the default Sink. It forwards each line to the default
// slog logger at the debug level.
func DebugSink(line string) {
	Debug(context.Background(), line)
}

// Printf formats its arguments with fmt.Sprintf and passes the result
// to s. It makes a Sink usable where a Printf-style writer is expected
// (e.g., as a GORM logger.Writer). A nil s falls back to DebugSink.
func (s Sink) Printf(format string, args ...any) {
	if s == nil {
		s = DebugSink
	}
	s(fmt.Sprintf(format, args...))
}
