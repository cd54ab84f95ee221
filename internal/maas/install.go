// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package maas

import (
	"regexp"
	"strings"

	"github.com/juju/errors"
)

const (
	// snapCommand is a path to the snapd CLI, or a name resolvable on
	// PATH.
	snapCommand = "snap"

	defaultChannel = "stable"
)

// snapNameRe is derived from the name validation snapcraft applies,
// without testing for "--".
var snapNameRe = regexp.MustCompile("^[a-z0-9][a-z0-9-]{0,39}[^-]$")

// InstallSnap installs the named snap from the given channel, or from
// stable when channel is empty.
func InstallSnap(name, channel string) error {
	if !snapNameRe.MatchString(name) {
		return errors.NotValidf("snap name %q", name)
	}
	if channel == "" {
		channel = defaultChannel
	}
	if _, err := runCommand(snapCommand, "install", "--channel="+channel, name); err != nil {
		return errors.Annotatef(err, "installing snap %q from channel %q", name, channel)
	}
	return nil
}

// SnapVersion returns the installed version of the named snap, parsed
// from `snap list <name>` output.
func SnapVersion(name string) (string, error) {
	if !snapNameRe.MatchString(name) {
		return "", errors.NotValidf("snap name %q", name)
	}
	out, err := runCommand(snapCommand, "list", name)
	if err != nil {
		return "", errors.Annotatef(err, "listing snap %q", name)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return "", errors.NotFoundf("snap %q", name)
	}
	// Name Version Rev Tracking Publisher Notes
	fields := strings.Fields(lines[1])
	if len(fields) < 2 || fields[0] != name {
		return "", errors.Errorf("unexpected snap list output %q", lines[1])
	}
	return fields[1], nil
}
