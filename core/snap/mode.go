// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package snap models the operating mode of the maas snap and the
// transitions the region charm is allowed to make over it.
package snap

import (
	"fmt"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
)

// Mode is the operating mode of the maas snap on this machine. The snap
// can act as a region controller, a rack controller, both, or neither.
// The two roles are independently composable on one host.
type Mode string

const (
	ModeNone       Mode = "none"
	ModeRack       Mode = "rack"
	ModeRegion     Mode = "region"
	ModeRegionRack Mode = "region+rack"
)

// ErrUnknownMode reports an operating mode outside the recognized set,
// typically from a snap that is newer than this charm.
const ErrUnknownMode = errors.ConstError("unknown operating mode")

var validModes = set.NewStrings(
	string(ModeNone),
	string(ModeRack),
	string(ModeRegion),
	string(ModeRegionRack),
)

// String is part of fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// Validate returns an error satisfying ErrUnknownMode if m is not one
// of the four recognized modes.
func (m Mode) Validate() error {
	if !validModes.Contains(string(m)) {
		return fmt.Errorf("unknown operating mode %q%w", string(m), errors.Hide(ErrUnknownMode))
	}
	return nil
}

// HasRegion reports whether m includes the region controller role.
func (m Mode) HasRegion() bool {
	return m == ModeRegion || m == ModeRegionRack
}

// HasRack reports whether m includes the rack controller role.
func (m Mode) HasRack() bool {
	return m == ModeRack || m == ModeRegionRack
}

// Target names a requested change to the region dimension of the
// operating mode.
type Target string

const (
	// TargetActivateRegion asks for the region role to be enabled.
	TargetActivateRegion Target = "activate-region"

	// TargetDeactivate asks for the region role to be disabled.
	TargetDeactivate Target = "deactivate"
)

// Resolve returns the mode the snap should change to so that current
// satisfies target. Only the region role is ever toggled; the rack
// role, if present, is always preserved. The rack role is managed by
// the maas-rack charm, which may be colocated on the same machine.
func Resolve(target Target, current Mode) (Mode, error) {
	if err := current.Validate(); err != nil {
		return "", errors.Trace(err)
	}
	switch target {
	case TargetDeactivate:
		if current.HasRack() {
			return ModeRack, nil
		}
		return ModeNone, nil
	case TargetActivateRegion:
		if current.HasRack() {
			return ModeRegionRack, nil
		}
		return ModeRegion, nil
	}
	return "", errors.NotValidf("mode target %q", target)
}
