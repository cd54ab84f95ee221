// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package maas

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/mutex/v2"
)

// lockName is shared with the maas-rack charm. When both charms are
// placed on the same machine they must not step over each other when
// running commands in the snap.
const lockName = "maas-charm"

var acquireMutex = mutex.Acquire

// acquireLock takes the machine-wide snap lock, blocking until it is
// free. The caller must release the returned releaser on all paths.
func acquireLock(clk clock.Clock) (mutex.Releaser, error) {
	releaser, err := acquireMutex(mutex.Spec{
		Name:  lockName,
		Clock: clk,
		Delay: 250 * time.Millisecond,
	})
	if err != nil {
		return nil, errors.Annotate(err, "acquiring snap lock")
	}
	return releaser, nil
}
