// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package maas

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/canonical/maas-region-charm/core/database"
	"github.com/canonical/maas-region-charm/core/snap"
)

// DefaultURL is the well-known URL of a region API serving on the
// local machine, used whenever maas-url is not configured.
const DefaultURL = "http://localhost:5240/MAAS"

// ErrMissingDatabase reports a region mode change attempted without a
// database connection to hand to the snap.
const ErrMissingDatabase = errors.ConstError("no database connection")

// ControllerURL returns the configured region API URL, or the
// localhost default when maasURL is unset.
func ControllerURL(maasURL string) string {
	if maasURL != "" {
		return maasURL
	}
	return DefaultURL
}

// IsLocalURL reports whether url is the localhost default, which is
// only reachable from this machine.
func IsLocalURL(url string) bool {
	return url == DefaultURL
}

// BuildArgs assembles the argument list handed to `maas config` or
// `maas init` to move the snap into mode. Flag/value adjacency is
// significant; the list is emitted in a fixed order with --maas-url
// appearing exactly once even when both roles need it.
//
// The region role requires db; its absence fails with
// ErrMissingDatabase before any command is built. The rack role pulls
// the shared secret and advertised URL from the store; a secret that
// is discoverable nowhere degrades to an empty token with a warning,
// matching what the snap accepts from a not-yet-enrolled rack.
func BuildArgs(mode snap.Mode, db *database.Connection, maasURL string, store ConfigStore) ([]string, error) {
	if err := mode.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	args := []string{"--mode", mode.String()}
	urlSet := false
	if mode.HasRegion() {
		if db == nil {
			return nil, fmt.Errorf("mode %q%w", mode, errors.Hide(ErrMissingDatabase))
		}
		if err := db.Validate(); err != nil {
			return nil, errors.Trace(err)
		}
		args = append(args,
			"--database-host", db.Host,
			"--database-name", db.Name,
			"--database-user", db.User,
			"--database-pass", db.Password,
			"--maas-url", ControllerURL(maasURL),
		)
		urlSet = true
	}
	if mode.HasRack() {
		values, err := store.Values("secret", "maas_url")
		if err != nil {
			return nil, errors.Trace(err)
		}
		if !urlSet {
			args = append(args, "--maas-url", values["maas_url"])
		}
		secret, ok := values["secret"]
		if !ok {
			logger.Warningf("no shared secret in snap config or %s", secretPath)
		}
		args = append(args, "--secret", secret)
	}
	return args, nil
}
