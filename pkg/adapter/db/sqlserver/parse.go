// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlserver

import (
	"fmt"
	"strings"

	"github.com/microsoft/go-mssqldb/msdsn"
)

// boundKeys are the connection string keys (and their ADO synonyms)
// which are represented by the Server fields, or which select a
// database catalog, so they must not be kept in Server.Params.
var boundKeys = map[string]bool{
	"server":              true,
	"data source":         true,
	"address":             true,
	"addr":                true,
	"network address":     true,
	"port":                true,
	"user id":             true,
	"uid":                 true,
	"user":                true,
	"password":            true,
	"pwd":                 true,
	"database":            true,
	"initial catalog":     true,
	"integrated security": true,
	"trusted_connection":  true,
}

// ParseServer is the inverse of Server.ConnectionString. It accepts all
// connection string formats of the go-mssqldb driver, namely the
// sqlserver://[user[:password]@]host[:port][/instance][?params] URL,
// the ADO form (e.g., Server=host\instance;User Id=sa;Password=...)
// and the odbc: prefixed form.
// The database parameter is dropped because a Server is not bound to
// a database catalog. A connection string without a user, or with the
// integrated security switch, is taken as an integrated authentication
// setting.
func ParseServer(dsn string) (Server, error) {
	cfg, err := msdsn.Parse(dsn)
	if err != nil {
		return Server{}, fmt.Errorf("parsing dsn: %w", err)
	}
	host, _, _ := strings.Cut(cfg.Parameters["server"], `\`)
	if strings.TrimSpace(host) == "" {
		return Server{}, fmt.Errorf("missing host in %q", mask(dsn, cfg))
	}
	s := Server{
		Host:     cfg.Host,
		Port:     int(cfg.Port),
		Instance: cfg.Instance,
		User:     cfg.User,
		Password: cfg.Password,
	}
	s.Integrated = s.User == "" || isTrue(cfg.Parameters["integrated security"]) ||
		isTrue(cfg.Parameters["trusted_connection"])
	if s.Integrated {
		s.User, s.Password = "", ""
	}
	for k, v := range cfg.Parameters {
		if boundKeys[strings.ToLower(k)] {
			continue
		}
		if s.Params == nil {
			s.Params = make(map[string]string)
		}
		s.Params[k] = v
	}
	return s, nil
}

// mask replaces the password of cfg in dsn, so it may be logged.
func mask(dsn string, cfg msdsn.Config) string {
	if cfg.Password == "" {
		return dsn
	}
	return strings.ReplaceAll(dsn, cfg.Password, "xxxxx")
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "sspi":
		return true
	}
	return false
}
