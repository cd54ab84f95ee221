// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hookenv

import (
	"github.com/juju/errors"
	"github.com/juju/schema"
)

// Config is the charm's validated configuration.
type Config struct {
	// MAASURL is the externally reachable URL of the region API.
	// Empty means the localhost default applies.
	MAASURL string

	// SnapChannel is the channel the maas snap is installed from.
	SnapChannel string
}

var configChecker = schema.FieldMap(schema.Fields{
	"maas-url":     schema.String(),
	"snap-channel": schema.String(),
}, schema.Defaults{
	"maas-url":     "",
	"snap-channel": "stable",
})

// validateConfig coerces the raw attribute map reported by config-get
// into a Config. Unknown attributes are ignored; wrongly typed ones
// are fatal.
func validateConfig(raw map[string]interface{}) (Config, error) {
	coerced, err := configChecker.Coerce(raw, nil)
	if err != nil {
		return Config{}, errors.Annotate(err, "invalid charm configuration")
	}
	attrs := coerced.(map[string]interface{})
	return Config{
		MAASURL:     attrs["maas-url"].(string),
		SnapChannel: attrs["snap-channel"].(string),
	}, nil
}
