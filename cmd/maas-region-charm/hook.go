// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/canonical/maas-region-charm/internal/charm"
)

// hookCommand runs a single charm hook.
type hookCommand struct {
	cmd.CommandBase
	hook string
}

const hookDoc = `
Run the named charm hook in the current Juju hook environment. The
hook tools (config-get, status-set, relation-get, ...) must be on
PATH, which is the case whenever juju executes the charm.
`

// Info is part of the cmd.Command interface.
func (c *hookCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "hook",
		Args:    "<hook-name>",
		Purpose: "run a charm hook",
		Doc:     hookDoc,
	}
}

// SetFlags is part of the cmd.Command interface.
func (c *hookCommand) SetFlags(f *gnuflag.FlagSet) {
	c.CommandBase.SetFlags(f)
}

// Init is part of the cmd.Command interface.
func (c *hookCommand) Init(args []string) error {
	if c.hook != "" {
		// Invoked through a hook symlink.
		return cmd.CheckEmpty(args)
	}
	if len(args) < 1 {
		return errors.New("no hook name specified")
	}
	c.hook = args[0]
	return cmd.CheckEmpty(args[1:])
}

// Run is part of the cmd.Command interface.
func (c *hookCommand) Run(ctx *cmd.Context) error {
	return errors.Trace(charm.NewDefault().Run(c.hook))
}
