// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sqlserver is the SQL Server adapter. It renders connection
// strings, opens GORM connection pools using the gorm.io/driver/sqlserver
// dialect (which in turn uses github.com/microsoft/go-mssqldb), and
// implements the repo.Pool, repo.Conn, and repo.Tx interfaces.
//
// The scratch sub-package manages disposable databases and the
// migration sub-package wires the gormigrate runner.
package sqlserver

import (
	"net"
	"net/url"
	"strconv"
)

// MasterDatabase is the catalog of the administrative endpoint.
const MasterDatabase = "master"

// Server describes how a SQL Server instance may be reached.
//
// Two connection string formats are rendered. When Instance is set,
// the named instance format sqlserver://host/instance is used and the
// SQL Server Browser service resolves its port, hence, Port is ignored.
// Otherwise, the local instance format sqlserver://host:port is used
// (Port may be zero in order to use the default 1433 port).
//
// With Integrated set, User and Password are omitted and the driver
// authenticates with the identity of the current process (SSPI on
// Windows, Kerberos elsewhere).
type Server struct {
	Host       string
	Port       int
	Instance   string
	User       string
	Password   string
	Integrated bool

	// Params holds extra connection parameters like encrypt=disable
	// or TrustServerCertificate=true.
	Params map[string]string
}

// ConnectionString returns the connection string of the database
// catalog on the s server.
func (s Server) ConnectionString(database string) string {
	q := url.Values{}
	for k, v := range s.Params {
		q.Set(k, v)
	}
	if database != "" {
		q.Set("database", database)
	}
	u := url.URL{
		Scheme:   "sqlserver",
		Host:     s.Host,
		RawQuery: q.Encode(),
	}
	switch {
	case s.Instance != "":
		u.Path = "/" + s.Instance
	case s.Port != 0:
		u.Host = net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	}
	if !s.Integrated && s.User != "" {
		u.User = url.UserPassword(s.User, s.Password)
	}
	return u.String()
}

// MasterConnectionString returns the connection string of the
// administrative endpoint, used for creating and dropping databases.
func (s Server) MasterConnectionString() string {
	return s.ConnectionString(MasterDatabase)
}

// Redacted returns the connection string of the database catalog with
// its password masked, so it may be logged.
func (s Server) Redacted(database string) string {
	s.Password = "xxxxx"
	return s.ConnectionString(database)
}
