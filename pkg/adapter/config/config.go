// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the scratchdb command to instantiate
// the scratch databases and migration runners using those loaded
// settings. The parsed and validated settings are passed to their
// ultimate components as a series of individual params (for the
// mandatory items) and a series of functional options (for the
// optional items), so the Config struct itself is only known by the
// command layer.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/momeni/scratchdb/pkg/adapter/config/settings"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver/migration"
	"github.com/momeni/scratchdb/pkg/adapter/db/sqlserver/scratch"
	"github.com/momeni/scratchdb/pkg/core/log"
	"gopkg.in/yaml.v3"
)

// Config contains all settings of the scratchdb command.
type Config struct {
	Server    Server    `yaml:"server"`
	Scratch   Scratch   `yaml:"scratch"`
	Migration Migration `yaml:"migration"`
	Log       Log       `yaml:"log"`
}

// Server contains the SQL Server connection settings.
// See sqlserver.Server for the meaning of each field.
type Server struct {
	Host       string            `yaml:"host" validate:"required,hostname_rfc1123|ip"`
	Port       int               `yaml:"port,omitempty" validate:"gte=0,lte=65535"`
	Instance   string            `yaml:"instance,omitempty" validate:"excludesall=/\\"`
	User       string            `yaml:"user,omitempty" validate:"required_without=Integrated"`
	Password   string            `yaml:"password,omitempty"`
	Integrated bool              `yaml:"integrated,omitempty"`
	Params     map[string]string `yaml:"params,omitempty"`
}

// Scratch contains the scratch database settings.
type Scratch struct {
	// Dir is where the scratch database file paths are resolved. It
	// defaults to the scratchdb directory in the temp directory.
	Dir string `yaml:"dir,omitempty"`

	// DataFiles asks to keep the data files at the scratch paths
	// (instead of the server default data directory).
	DataFiles bool `yaml:"data-files,omitempty"`
}

// Migration contains the migration runner settings.
type Migration struct {
	Table         string            `yaml:"table,omitempty" validate:"omitempty,max=128"`
	Timeout       settings.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
	Switches      string            `yaml:"switches,omitempty"`
	Transactional bool              `yaml:"transactional,omitempty"`
}

// Log contains the logging settings.
type Log struct {
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads, parses, normalizes, and validates the configuration file
// at path. Unknown settings are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse is like Load, but takes the configuration file contents.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	c.normalize()
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return c, nil
}

func (c *Config) normalize() {
	if c.Scratch.Dir == "" {
		c.Scratch.Dir = filepath.Join(os.TempDir(), "scratchdb")
	}
	if c.Migration.Table == "" {
		c.Migration.Table = migration.DefaultTableName
	}
}

// SQLServer returns the server connection settings.
func (c *Config) SQLServer() sqlserver.Server {
	s := c.Server
	return sqlserver.Server{
		Host:       s.Host,
		Port:       s.Port,
		Instance:   s.Instance,
		User:       s.User,
		Password:   s.Password,
		Integrated: s.Integrated,
		Params:     s.Params,
	}
}

// ScratchPath resolves file relative to the Scratch.Dir directory.
// Absolute paths are returned as is.
func (c *Config) ScratchPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.Scratch.Dir, file)
}

// NewScratch instantiates the scratch database of the file path (see
// the ScratchPath method).
func (c *Config) NewScratch(file string, sink log.Sink) (*scratch.Database, error) {
	opts := []scratch.Option{scratch.WithSink(sink)}
	if c.Scratch.DataFiles {
		opts = append(opts, scratch.WithDataFiles())
	}
	return scratch.New(c.SQLServer(), c.ScratchPath(file), opts...)
}

// RunnerOptions returns the migration runner options which reflect the
// Migration settings, writing the runner output to sink.
func (c *Config) RunnerOptions(sink log.Sink) []migration.Option {
	m := c.Migration
	return []migration.Option{
		migration.WithOutput(sink),
		migration.WithTableName(m.Table),
		migration.WithTransaction(m.Transactional),
		migration.WithProcessorOptions(migration.ProcessorOptions{
			Timeout:          time.Duration(m.Timeout),
			ProviderSwitches: m.Switches,
		}),
	}
}

// Level returns the configured logging level (info by default).
func (c *Config) Level() slog.Level {
	l, _ := log.ParseLevel(c.Log.Level) // validated by Parse
	return l
}
