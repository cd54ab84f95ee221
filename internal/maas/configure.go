// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package maas

import (
	"strings"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/utils/v4"

	"github.com/canonical/maas-region-charm/core/database"
	"github.com/canonical/maas-region-charm/core/snap"
)

// Configurator moves the snap between operating modes with the maas
// CLI, serialising invocations through the machine snap lock.
type Configurator struct {
	store ConfigStore
	clock clock.Clock
}

// NewConfigurator returns a Configurator reading current state from
// store.
func NewConfigurator(store ConfigStore, clk clock.Clock) *Configurator {
	return &Configurator{store: store, clock: clk}
}

// Configure resolves the next operating mode for target and applies it
// with `maas config`.
func (c *Configurator) Configure(target snap.Target, db *database.Connection, maasURL string) error {
	return c.run(target, db, maasURL, []string{"config"})
}

// Initialise performs first-time initialisation of the snap for
// target with `maas init`. The admin account is created out of band,
// so initialisation must not prompt for one.
func (c *Configurator) Initialise(target snap.Target, db *database.Connection, maasURL string) error {
	return c.run(target, db, maasURL, []string{"init", "--force", "--skip-admin"})
}

func (c *Configurator) run(target snap.Target, db *database.Connection, maasURL string, command []string) error {
	releaser, err := acquireLock(c.clock)
	if err != nil {
		return errors.Trace(err)
	}
	defer releaser.Release()

	current, err := CurrentMode(c.store)
	if err != nil {
		return errors.Trace(err)
	}
	next, err := snap.Resolve(target, current)
	if err != nil {
		return errors.Trace(err)
	}
	args, err := BuildArgs(next, db, maasURL, c.store)
	if err != nil {
		return errors.Trace(err)
	}

	full := append(command, args...)
	logger.Debugf("running %s %s", Command, redactedCommandLine(full))
	if _, err := runCommand(Command, full...); err != nil {
		return errors.Annotatef(err, "changing snap mode from %q to %q", current, next)
	}
	logger.Infof("snap mode changed from %q to %q", current, next)
	return nil
}

// redactedCommandLine renders args for logging with sensitive values
// masked.
func redactedCommandLine(args []string) string {
	quoted := make([]string, len(args))
	redactNext := false
	for i, arg := range args {
		if redactNext {
			arg = "*****"
			redactNext = false
		}
		if arg == "--secret" || arg == "--database-pass" {
			redactNext = true
		}
		quoted[i] = utils.ShQuote(arg)
	}
	return strings.Join(quoted, " ")
}
