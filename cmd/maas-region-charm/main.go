// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// The maas-region-charm binary implements every hook of the
// maas-region charm. The charm's hooks/ directory holds symlinks named
// after each hook pointing at this executable; it can also be invoked
// directly as `maas-region-charm hook <name>`.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/juju/cmd/v4"
	"github.com/juju/loggo/v2"

	"github.com/canonical/maas-region-charm/internal/charm"
)

var logger = loggo.GetLogger("maasregion.cmd")

const (
	// exitErr is returned when the command is invoked in an invalid
	// way.
	exitErr = 2
	// exitPanic is returned when we exit due to an unhandled panic.
	exitPanic = 3
)

func main() {
	os.Exit(Main(os.Args))
}

// Main is not redundant with main(), because it provides an entry
// point for testing with arbitrary command line arguments.
func Main(args []string) int {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			logger.Criticalf("Unhandled panic: \n%v\n%s", r, buf)
			os.Exit(exitPanic)
		}
	}()

	if err := configureLogging(); err != nil {
		cmd.WriteError(os.Stderr, err)
		return exitErr
	}
	ctx, err := cmd.DefaultContext()
	if err != nil {
		cmd.WriteError(os.Stderr, err)
		return exitErr
	}

	// Hooks are symlinks named after the hook, pointing here.
	hookName := filepath.Base(args[0])
	if charm.IsHook(hookName) {
		return cmd.Main(&hookCommand{hook: hookName}, ctx, nil)
	}

	super := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name: "maas-region-charm",
		Doc:  "Manage the maas snap as a region controller on this unit.",
	})
	super.Register(&hookCommand{})
	return cmd.Main(super, ctx, args[1:])
}

func configureLogging() error {
	level := os.Getenv("CHARM_LOG_LEVEL")
	if level == "" {
		level = "INFO"
	}
	return loggo.ConfigureLoggers(fmt.Sprintf("<root>=%s", level))
}
