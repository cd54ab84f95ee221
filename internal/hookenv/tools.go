// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hookenv

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/juju/errors"
	goyaml "gopkg.in/yaml.v2"
)

// toolContext implements Context by shelling out to the hook tools.
type toolContext struct{}

// NewContext returns a Context backed by the hook tools juju puts on
// PATH for the duration of a hook.
func NewContext() Context {
	return &toolContext{}
}

func runTool(tool string, args ...string) (string, error) {
	return runToolInput("", tool, args...)
}

func runToolInput(input, tool string, args ...string) (string, error) {
	command := exec.Command(tool, args...)
	if input != "" {
		command.Stdin = strings.NewReader(input)
	}
	out, err := command.CombinedOutput()
	if err != nil {
		return "", errors.Annotatef(err, "%s failed: %s", tool, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func (*toolContext) UnitName() string {
	return os.Getenv("JUJU_UNIT_NAME")
}

func (*toolContext) HookName() string {
	return os.Getenv("JUJU_HOOK_NAME")
}

func (*toolContext) RelationId() string {
	return os.Getenv("JUJU_RELATION_ID")
}

func (*toolContext) RemoteUnit() string {
	return os.Getenv("JUJU_REMOTE_UNIT")
}

func (*toolContext) Config() (Config, error) {
	out, err := runTool("config-get", "--format=yaml")
	if err != nil {
		return Config{}, errors.Trace(err)
	}
	var raw map[interface{}]interface{}
	if err := goyaml.Unmarshal([]byte(out), &raw); err != nil {
		return Config{}, errors.Annotate(err, "cannot parse config-get output")
	}
	attrs := make(map[string]interface{})
	for k, v := range raw {
		if v == nil {
			// Unset option without a default.
			continue
		}
		key, ok := k.(string)
		if !ok {
			return Config{}, errors.Errorf("non-string configuration key %v", k)
		}
		attrs[key] = v
	}
	return validateConfig(attrs)
}

func (*toolContext) SetStatus(status Status, message string) error {
	logger.Debugf("status %s: %s", status, message)
	args := []string{string(status)}
	if message != "" {
		args = append(args, message)
	}
	_, err := runTool("status-set", args...)
	return errors.Trace(err)
}

func (*toolContext) PrivateAddress() (string, error) {
	out, err := runTool("unit-get", "private-address")
	if err != nil {
		return "", errors.Trace(err)
	}
	return strings.TrimSpace(out), nil
}

func (*toolContext) RelationIds(endpoint string) ([]string, error) {
	out, err := runTool("relation-ids", "--format=yaml", endpoint)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var ids []string
	if err := goyaml.Unmarshal([]byte(out), &ids); err != nil {
		return nil, errors.Annotate(err, "cannot parse relation-ids output")
	}
	return ids, nil
}

func (*toolContext) RemoteUnits(relationId string) ([]string, error) {
	out, err := runTool("relation-list", "--format=yaml", "-r", relationId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var units []string
	if err := goyaml.Unmarshal([]byte(out), &units); err != nil {
		return nil, errors.Annotate(err, "cannot parse relation-list output")
	}
	return units, nil
}

func (*toolContext) RelationGet(relationId, unit string) (Settings, error) {
	out, err := runTool("relation-get", "--format=yaml", "-r", relationId, "-", unit)
	if err != nil {
		return nil, errors.Trace(err)
	}
	settings := make(Settings)
	if err := goyaml.Unmarshal([]byte(out), &settings); err != nil {
		return nil, errors.Annotate(err, "cannot parse relation-get output")
	}
	return settings, nil
}

// RelationSet feeds the settings through stdin so secrets never appear
// in process listings.
func (*toolContext) RelationSet(relationId string, settings Settings) error {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var doc strings.Builder
	for _, key := range keys {
		data, err := goyaml.Marshal(map[string]string{key: settings[key]})
		if err != nil {
			return errors.Trace(err)
		}
		doc.Write(data)
	}
	_, err := runToolInput(doc.String(), "relation-set", "-r", relationId, "--file", "-")
	return errors.Trace(err)
}

func (*toolContext) OpenPort(port int, protocol string) error {
	_, err := runTool("open-port", fmt.Sprintf("%d/%s", port, protocol))
	return errors.Trace(err)
}

func (*toolContext) SetApplicationVersion(version string) error {
	_, err := runTool("application-version-set", version)
	return errors.Trace(err)
}
