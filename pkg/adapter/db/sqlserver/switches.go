// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlserver

import (
	"fmt"
	"net/url"
	"strings"
)

// WithSwitches merges the provider specific switches into the dsn
// connection string. Switches are semicolon separated key=value pairs,
// e.g., "app name=scratchdb;connection timeout=5". A URL dsn (with the
// sqlserver scheme) takes them as query parameters, overriding existing
// ones, while an ADO style dsn gets them appended as is.
func WithSwitches(dsn, switches string) (string, error) {
	switches = strings.Trim(strings.TrimSpace(switches), ";")
	if switches == "" {
		return dsn, nil
	}
	if !strings.HasPrefix(dsn, "sqlserver://") {
		return strings.TrimRight(dsn, ";") + ";" + switches, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing dsn: %w", err)
	}
	q := u.Query()
	for _, kv := range strings.Split(switches, ";") {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return "", fmt.Errorf("malformed switch %q", kv)
		}
		q.Set(k, strings.TrimSpace(v))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
