// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package maas drives the maas snap's CLI: reading its live
// configuration, assembling mode-change argument lists and applying
// them under the machine-wide snap lock.
package maas

import (
	"os"
	"os/exec"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/canonical/maas-region-charm/core/snap"
)

const (
	// Command is the snap-provided CLI used for all configuration.
	Command = "maas"

	// secretPath is where the snap keeps the shared secret used for
	// rack/region RPC trust.
	secretPath = "/var/snap/maas/current/var/lib/maas/secret"
)

var logger = loggo.GetLogger("maasregion.maas")

// ConfigStore reads live configuration values from the running snap.
// Values are read fresh on every call and never cached; the rack charm
// may change them between hooks.
type ConfigStore interface {
	// Values returns the current value for each requested key. Keys
	// the snap does not report are omitted from the result.
	Values(keys ...string) (map[string]string, error)
}

// CLIStore reads configuration through the maas CLI's parsable output.
// A missing secret falls back to the snap's secret file, the secondary
// source the rack role writes to before the config reports it.
type CLIStore struct {
	secretPath string
}

// NewCLIStore returns a ConfigStore backed by the maas CLI.
func NewCLIStore() *CLIStore {
	return &CLIStore{secretPath: secretPath}
}

// Values is part of ConfigStore.
func (s *CLIStore) Values(keys ...string) (map[string]string, error) {
	out, err := runCommand(Command, "config",
		"--show",
		"--show-database-password",
		"--show-secret",
		"--parsable",
	)
	if err != nil {
		return nil, errors.Annotate(err, "reading snap configuration")
	}
	current := parseShowOutput(out)
	values := make(map[string]string)
	for _, key := range keys {
		if value, ok := current[key]; ok {
			values[key] = value
			continue
		}
		if key == "secret" {
			if secret, ok := s.readSecretFile(); ok {
				values[key] = secret
			}
		}
	}
	return values, nil
}

// parseShowOutput parses the key=value lines printed by
// `maas config --parsable`. The first occurrence of a key wins and
// values may themselves contain "=".
func parseShowOutput(out string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if _, ok := values[parts[0]]; !ok {
			values[parts[0]] = parts[1]
		}
	}
	return values
}

func (s *CLIStore) readSecretFile() (string, bool) {
	data, err := os.ReadFile(s.secretPath)
	if err != nil {
		return "", false
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", false
	}
	return secret, true
}

// CurrentMode returns the snap's live operating mode. An unrecognized
// or missing mode is fatal; the charm cannot safely guess a next mode
// from a value it does not understand.
func CurrentMode(store ConfigStore) (snap.Mode, error) {
	values, err := store.Values("mode")
	if err != nil {
		return "", errors.Trace(err)
	}
	mode := snap.Mode(values["mode"])
	if err := mode.Validate(); err != nil {
		return "", errors.Trace(err)
	}
	return mode, nil
}

func runCommand(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return "", errors.Annotatef(err, "exec %q failed: %s", name, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
