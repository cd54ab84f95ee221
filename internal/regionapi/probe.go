// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package regionapi checks a region controller's API over HTTP. The
// version endpoint is served anonymously, so availability can be
// established without an API key.
package regionapi

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/gomaasapi/v2"
	"github.com/juju/loggo/v2"
	"github.com/juju/retry"
)

// apiVersion is the stable version of the MAAS API.
const apiVersion = "2.0"

var logger = loggo.GetLogger("maasregion.regionapi")

// Capabilities asks the region API at baseURL for its advertised
// capabilities.
func Capabilities(baseURL string) (set.Strings, error) {
	caps := set.NewStrings()
	client, err := gomaasapi.NewAnonymousClient(baseURL, apiVersion)
	if err != nil {
		return caps, errors.Trace(err)
	}
	version := gomaasapi.NewMAAS(*client).GetSubObject("version/")
	result, err := version.CallGet("", nil)
	if err != nil {
		return caps, errors.Trace(err)
	}
	info, err := result.GetMap()
	if err != nil {
		return caps, errors.Trace(err)
	}
	capsObj, ok := info["capabilities"]
	if !ok {
		return caps, nil
	}
	items, err := capsObj.GetArray()
	if err != nil {
		return caps, errors.Trace(err)
	}
	for _, item := range items {
		value, err := item.GetString()
		if err != nil {
			return set.NewStrings(), errors.Trace(err)
		}
		caps.Add(value)
	}
	return caps, nil
}

// WaitAvailable blocks until the region API at baseURL answers its
// version endpoint, or the wait budget runs out. A region that has
// just been initialised takes a little while to start serving.
func WaitAvailable(baseURL string, clk clock.Clock) error {
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			_, err := Capabilities(baseURL)
			return err
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("region API at %s not ready (attempt %d): %v", baseURL, attempt, err)
		},
		Attempts: 10,
		Delay:    3 * time.Second,
		Clock:    clk,
	})
	return errors.Annotatef(err, "waiting for region API at %s", baseURL)
}
