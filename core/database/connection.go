// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package database holds the PostgreSQL connection details supplied by
// the db relation. The charm never opens a connection itself; these
// values are only forwarded to the maas CLI.
package database

import (
	"github.com/juju/errors"
)

// Connection describes the PostgreSQL master the region controller
// should use.
type Connection struct {
	Host     string
	Name     string
	User     string
	Password string
}

// Validate returns an error if any required field is missing.
func (c Connection) Validate() error {
	if c.Host == "" {
		return errors.NotValidf("empty database host")
	}
	if c.Name == "" {
		return errors.NotValidf("empty database name")
	}
	if c.User == "" {
		return errors.NotValidf("empty database user")
	}
	if c.Password == "" {
		return errors.NotValidf("empty database password")
	}
	return nil
}
