// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hookenv is the charm's view of the Juju hook environment.
// While a hook runs, juju places hook tools (config-get, status-set,
// relation-get, ...) on PATH and sets JUJU_* environment variables;
// this package wraps both behind a Context interface so hook logic
// stays testable without a live unit agent.
package hookenv

import (
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/names/v5"
)

var logger = loggo.GetLogger("maasregion.hookenv")

// Status is a workload status the charm can report. The values mirror
// the statuses juju models for workloads.
type Status string

const (
	StatusMaintenance Status = "maintenance"
	StatusBlocked     Status = "blocked"
	StatusWaiting     Status = "waiting"
	StatusActive      Status = "active"
)

// Settings are the key/value pairs held in one side of a relation's
// databag. Relation settings are always strings on the wire.
type Settings map[string]string

// Context gives hook code access to the unit's hook environment.
type Context interface {
	// UnitName returns the name of the local unit.
	UnitName() string

	// HookName returns the name of the hook being run.
	HookName() string

	// RelationId returns the id of the relation the current hook runs
	// for, or "" outside relation hooks.
	RelationId() string

	// RemoteUnit returns the remote unit triggering the current
	// relation hook, or "" outside relation hooks.
	RemoteUnit() string

	// Config returns the charm's current, validated configuration.
	Config() (Config, error)

	// SetStatus reports workload status to the controller.
	SetStatus(status Status, message string) error

	// PrivateAddress returns the unit's private network address.
	PrivateAddress() (string, error)

	// RelationIds returns the ids of all established relations on the
	// named endpoint.
	RelationIds(endpoint string) ([]string, error)

	// RemoteUnits returns the remote units present on the given
	// relation.
	RemoteUnits(relationId string) ([]string, error)

	// RelationGet returns the settings published by unit on the given
	// relation.
	RelationGet(relationId, unit string) (Settings, error)

	// RelationSet publishes settings on the local unit's side of the
	// given relation.
	RelationSet(relationId string, settings Settings) error

	// OpenPort opens a port for the given protocol.
	OpenPort(port int, protocol string) error

	// SetApplicationVersion reports the workload version displayed in
	// juju status.
	SetApplicationVersion(version string) error
}

// ApplicationName returns the application the local unit belongs to.
func ApplicationName(ctx Context) (string, error) {
	app, err := names.UnitApplication(ctx.UnitName())
	if err != nil {
		return "", errors.Trace(err)
	}
	return app, nil
}
