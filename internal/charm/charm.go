// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package charm holds the hook handlers for the maas-region charm.
// The reactive framework's persisted flags are deliberately absent:
// every handler observes the state it needs fresh, from the snap's
// live configuration and the relation databags, so hooks stay
// idempotent and the charm keeps no state of its own.
package charm

import (
	"fmt"
	"strconv"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/canonical/maas-region-charm/core/database"
	"github.com/canonical/maas-region-charm/core/snap"
	"github.com/canonical/maas-region-charm/internal/hookenv"
	"github.com/canonical/maas-region-charm/internal/maas"
	"github.com/canonical/maas-region-charm/internal/regionapi"
)

const (
	snapName   = "maas"
	regionPort = 5240

	// Endpoint names from metadata.yaml.
	dbEndpoint   = "db"
	rpcEndpoint  = "rpc"
	httpEndpoint = "http"
)

var logger = loggo.GetLogger("maasregion.charm")

// Configurator is the subset of maas.Configurator the handlers use.
type Configurator interface {
	Configure(target snap.Target, db *database.Connection, maasURL string) error
	Initialise(target snap.Target, db *database.Connection, maasURL string) error
}

// APIProber checks whether the region API answers at a URL.
type APIProber func(baseURL string) error

// Charm reacts to unit lifecycle events by reconfiguring the maas
// snap.
type Charm struct {
	ctx    hookenv.Context
	store  maas.ConfigStore
	config Configurator
	probe  APIProber
}

// New returns a Charm using the given collaborators.
func New(ctx hookenv.Context, store maas.ConfigStore, config Configurator, probe APIProber) *Charm {
	return &Charm{ctx: ctx, store: store, config: config, probe: probe}
}

// NewDefault returns a Charm wired to the real hook environment, the
// CLI-backed config store and the region API.
func NewDefault() *Charm {
	store := maas.NewCLIStore()
	return New(
		hookenv.NewContext(),
		store,
		maas.NewConfigurator(store, clock.WallClock),
		func(baseURL string) error {
			return regionapi.WaitAvailable(baseURL, clock.WallClock)
		},
	)
}

var hookNames = set.NewStrings(
	"install",
	"config-changed",
	"update-status",
	"stop",
	"db-relation-joined",
	"db-relation-changed",
	"db-relation-departed",
	"db-relation-broken",
	"rpc-relation-joined",
	"rpc-relation-changed",
	"http-relation-joined",
	"http-relation-changed",
)

// IsHook reports whether name is a hook this charm implements.
func IsHook(name string) bool {
	return hookNames.Contains(name)
}

// Run dispatches the named hook to its handler. Hooks the charm does
// not implement are a successful no-op, as juju treats missing hooks.
func (c *Charm) Run(name string) error {
	app, err := hookenv.ApplicationName(c.ctx)
	if err != nil {
		return errors.Trace(err)
	}
	if !IsHook(name) {
		logger.Debugf("%s has no handler for hook %q", app, name)
		return nil
	}
	logger.Infof("%s running hook %q", c.ctx.UnitName(), name)
	switch name {
	case "install":
		return c.Install()
	case "config-changed":
		return c.ConfigChanged()
	case "update-status":
		return c.UpdateStatus()
	case "stop":
		return c.Stop()
	case "db-relation-joined", "db-relation-changed":
		return c.DBChanged()
	case "db-relation-departed", "db-relation-broken":
		return c.DBBroken()
	case "rpc-relation-joined", "rpc-relation-changed":
		return c.RPCJoined()
	case "http-relation-joined", "http-relation-changed":
		return c.HTTPJoined()
	}
	return nil
}

// Install installs the maas snap from the configured channel and
// reports its version. The unit stays blocked until PostgreSQL is
// related.
func (c *Charm) Install() error {
	cfg, err := c.ctx.Config()
	if err != nil {
		return errors.Trace(err)
	}
	if err := c.ctx.SetStatus(hookenv.StatusMaintenance, "Installing maas snap"); err != nil {
		return errors.Trace(err)
	}
	if err := maas.InstallSnap(snapName, cfg.SnapChannel); err != nil {
		return errors.Trace(err)
	}
	if version, err := maas.SnapVersion(snapName); err != nil {
		logger.Warningf("cannot determine snap version: %v", err)
	} else if err := c.ctx.SetApplicationVersion(version); err != nil {
		return errors.Trace(err)
	}
	if err := c.ctx.OpenPort(regionPort, "tcp"); err != nil {
		return errors.Trace(err)
	}
	return c.missingPostgreSQL()
}

// ConfigChanged reapplies region configuration so a changed maas-url
// reaches the snap.
func (c *Charm) ConfigChanged() error {
	inited, err := c.initialised()
	if err != nil {
		return errors.Trace(err)
	}
	if !inited {
		return c.missingPostgreSQL()
	}
	db, err := c.dbMaster()
	if err != nil {
		return errors.Trace(err)
	}
	if db == nil {
		return c.missingPostgreSQL()
	}
	cfg, err := c.ctx.Config()
	if err != nil {
		return errors.Trace(err)
	}
	if err := c.ctx.SetStatus(hookenv.StatusMaintenance, "Re-configuring controller"); err != nil {
		return errors.Trace(err)
	}
	if err := c.config.Configure(snap.TargetActivateRegion, db, cfg.MAASURL); err != nil {
		return errors.Trace(err)
	}
	return c.ctx.SetStatus(hookenv.StatusActive, "")
}

// DBChanged initialises the snap against the relation's master
// database the first time one is available, and reconfigures the
// connection on subsequent changes.
func (c *Charm) DBChanged() error {
	db, err := c.dbMaster()
	if err != nil {
		return errors.Trace(err)
	}
	if db == nil {
		return c.ctx.SetStatus(hookenv.StatusWaiting, "Waiting for database master")
	}
	cfg, err := c.ctx.Config()
	if err != nil {
		return errors.Trace(err)
	}
	inited, err := c.initialised()
	if err != nil {
		return errors.Trace(err)
	}
	if inited {
		if err := c.ctx.SetStatus(hookenv.StatusMaintenance, "Configuring connection to database"); err != nil {
			return errors.Trace(err)
		}
		if err := c.config.Configure(snap.TargetActivateRegion, db, cfg.MAASURL); err != nil {
			return errors.Trace(err)
		}
	} else {
		if err := c.ctx.SetStatus(hookenv.StatusMaintenance, "Initializing connection to database"); err != nil {
			return errors.Trace(err)
		}
		if err := c.config.Initialise(snap.TargetActivateRegion, db, cfg.MAASURL); err != nil {
			return errors.Trace(err)
		}
		if err := c.probe(maas.ControllerURL(cfg.MAASURL)); err != nil {
			logger.Warningf("region API not answering yet: %v", err)
		}
		// Racks that related before the controller was initialised
		// were told to wait; they get the real secret now.
		if err := c.publishRPCRelations(); err != nil {
			return errors.Trace(err)
		}
	}
	return c.ctx.SetStatus(hookenv.StatusActive, "Running")
}

// DBBroken handles units leaving the database relation. The region
// role only turns off once no master remains; a departing replica
// leaves the controller running, repointed at the remaining master.
func (c *Charm) DBBroken() error {
	inited, err := c.initialised()
	if err != nil {
		return errors.Trace(err)
	}
	if !inited {
		return c.missingPostgreSQL()
	}
	db, err := c.dbMaster()
	if err != nil {
		return errors.Trace(err)
	}
	if db != nil {
		cfg, err := c.ctx.Config()
		if err != nil {
			return errors.Trace(err)
		}
		if err := c.ctx.SetStatus(hookenv.StatusMaintenance, "Configuring connection to database"); err != nil {
			return errors.Trace(err)
		}
		if err := c.config.Configure(snap.TargetActivateRegion, db, cfg.MAASURL); err != nil {
			return errors.Trace(err)
		}
		return c.ctx.SetStatus(hookenv.StatusActive, "Running")
	}
	if err := c.ctx.SetStatus(hookenv.StatusMaintenance, "Turning off controller"); err != nil {
		return errors.Trace(err)
	}
	if err := c.config.Configure(snap.TargetDeactivate, nil, ""); err != nil {
		return errors.Trace(err)
	}
	return c.missingPostgreSQL()
}

// UpdateStatus reconciles the reported status with what the snap and
// the region API actually look like right now.
func (c *Charm) UpdateStatus() error {
	inited, err := c.initialised()
	if err != nil {
		return errors.Trace(err)
	}
	if !inited {
		ids, err := c.ctx.RelationIds(dbEndpoint)
		if err != nil {
			return errors.Trace(err)
		}
		if len(ids) == 0 {
			return c.missingPostgreSQL()
		}
		return c.ctx.SetStatus(hookenv.StatusWaiting, "Waiting for database master")
	}
	cfg, err := c.ctx.Config()
	if err != nil {
		return errors.Trace(err)
	}
	if err := c.probe(maas.ControllerURL(cfg.MAASURL)); err != nil {
		logger.Warningf("region API probe failed: %v", err)
		return c.ctx.SetStatus(hookenv.StatusMaintenance, "Region API not responding")
	}
	return c.ctx.SetStatus(hookenv.StatusActive, "Running")
}

// Stop turns off the region role so a departing unit does not keep
// serving the API.
func (c *Charm) Stop() error {
	inited, err := c.initialised()
	if err != nil || !inited {
		return errors.Trace(err)
	}
	return errors.Trace(c.config.Configure(snap.TargetDeactivate, nil, ""))
}

// RPCJoined advertises the region API URL and the shared secret to a
// joining rack controller. Before the controller is initialised there
// is no secret worth sending, so the handler waits; DBChanged
// republishes once initialisation completes.
func (c *Charm) RPCJoined() error {
	inited, err := c.initialised()
	if err != nil {
		return errors.Trace(err)
	}
	if !inited {
		return c.ctx.SetStatus(hookenv.StatusWaiting, "Waiting for controller initialization")
	}
	settings, err := c.rpcSettings()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.ctx.RelationSet(c.ctx.RelationId(), settings))
}

// rpcSettings assembles the databag a rack controller enlists with. A
// maas-url left at the localhost default is useless to a remote peer,
// so the unit's own address is substituted.
func (c *Charm) rpcSettings() (hookenv.Settings, error) {
	cfg, err := c.ctx.Config()
	if err != nil {
		return nil, errors.Trace(err)
	}
	url := maas.ControllerURL(cfg.MAASURL)
	if maas.IsLocalURL(url) {
		addr, err := c.ctx.PrivateAddress()
		if err != nil {
			return nil, errors.Trace(err)
		}
		url = fmt.Sprintf("http://%s:%d/MAAS", addr, regionPort)
	}
	values, err := c.store.Values("secret")
	if err != nil {
		return nil, errors.Trace(err)
	}
	return hookenv.Settings{
		"maas_url": url,
		"secret":   values["secret"],
	}, nil
}

// publishRPCRelations re-advertises the connection details on every
// rpc relation, catching up racks that joined too early.
func (c *Charm) publishRPCRelations() error {
	ids, err := c.ctx.RelationIds(rpcEndpoint)
	if err != nil {
		return errors.Trace(err)
	}
	if len(ids) == 0 {
		return nil
	}
	settings, err := c.rpcSettings()
	if err != nil {
		return errors.Trace(err)
	}
	for _, id := range ids {
		if err := c.ctx.RelationSet(id, settings); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// HTTPJoined publishes the API endpoint for reverse proxies and load
// balancers.
func (c *Charm) HTTPJoined() error {
	addr, err := c.ctx.PrivateAddress()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.ctx.RelationSet(c.ctx.RelationId(), hookenv.Settings{
		"hostname": addr,
		"port":     strconv.Itoa(regionPort),
	}))
}

func (c *Charm) missingPostgreSQL() error {
	return c.ctx.SetStatus(hookenv.StatusBlocked, "Waiting on relation to PostgreSQL")
}

// initialised reports whether the snap currently carries the region
// role. The snap's live mode is the source of truth, read fresh each
// hook; there is no cached flag to go stale.
func (c *Charm) initialised() (bool, error) {
	mode, err := maas.CurrentMode(c.store)
	if err != nil {
		return false, errors.Trace(err)
	}
	return mode.HasRegion(), nil
}

// dbMaster returns the master connection details published on the db
// relation, or nil when no master is available yet.
func (c *Charm) dbMaster() (*database.Connection, error) {
	ids, err := c.ctx.RelationIds(dbEndpoint)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, id := range ids {
		units, err := c.ctx.RemoteUnits(id)
		if err != nil {
			return nil, errors.Trace(err)
		}
		for _, unit := range units {
			settings, err := c.ctx.RelationGet(id, unit)
			if err != nil {
				return nil, errors.Trace(err)
			}
			if conn := connectionFromSettings(settings); conn != nil {
				return conn, nil
			}
		}
	}
	return nil, nil
}

func connectionFromSettings(settings hookenv.Settings) *database.Connection {
	name := settings["database"]
	if name == "" {
		name = settings["dbname"]
	}
	conn := &database.Connection{
		Host:     settings["host"],
		Name:     name,
		User:     settings["user"],
		Password: settings["password"],
	}
	if conn.Validate() != nil {
		return nil
	}
	return conn
}
