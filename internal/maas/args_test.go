// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package maas_test

import (
	"github.com/juju/errors"
	jujutesting "github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/maas-region-charm/core/database"
	"github.com/canonical/maas-region-charm/core/snap"
	"github.com/canonical/maas-region-charm/internal/maas"
)

// stubStore serves canned snap configuration values.
type stubStore struct {
	stub   *jujutesting.Stub
	values map[string]string
}

func (s *stubStore) Values(keys ...string) (map[string]string, error) {
	s.stub.AddCall("Values", keys)
	if err := s.stub.NextErr(); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, key := range keys {
		if value, ok := s.values[key]; ok {
			out[key] = value
		}
	}
	return out, nil
}

type argsSuite struct {
	jujutesting.IsolationSuite

	stub  *jujutesting.Stub
	store *stubStore
}

var _ = gc.Suite(&argsSuite{})

func (s *argsSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.stub = &jujutesting.Stub{}
	s.store = &stubStore{stub: s.stub, values: map[string]string{}}
}

var testConn = &database.Connection{
	Host:     "db1",
	Name:     "maasdb",
	User:     "maas",
	Password: "pw",
}

func (s *argsSuite) TestModeNone(c *gc.C) {
	args, err := maas.BuildArgs(snap.ModeNone, nil, "", s.store)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(args, jc.DeepEquals, []string{"--mode", "none"})
	s.stub.CheckNoCalls(c)
}

func (s *argsSuite) TestRegionDefaultURL(c *gc.C) {
	args, err := maas.BuildArgs(snap.ModeRegion, testConn, "", s.store)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(args, jc.DeepEquals, []string{
		"--mode", "region",
		"--database-host", "db1",
		"--database-name", "maasdb",
		"--database-user", "maas",
		"--database-pass", "pw",
		"--maas-url", "http://localhost:5240/MAAS",
	})
	s.stub.CheckNoCalls(c)
}

func (s *argsSuite) TestRegionConfiguredURL(c *gc.C) {
	args, err := maas.BuildArgs(snap.ModeRegion, testConn, "http://maas.example.com:5240/MAAS", s.store)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(args[len(args)-2:], jc.DeepEquals, []string{"--maas-url", "http://maas.example.com:5240/MAAS"})
}

func (s *argsSuite) TestRegionMissingDatabase(c *gc.C) {
	_, err := maas.BuildArgs(snap.ModeRegion, nil, "", s.store)
	c.Assert(err, jc.ErrorIs, maas.ErrMissingDatabase)
	c.Assert(err, gc.ErrorMatches, `mode "region"`)
}

func (s *argsSuite) TestRegionRackMissingDatabase(c *gc.C) {
	_, err := maas.BuildArgs(snap.ModeRegionRack, nil, "", s.store)
	c.Assert(err, jc.ErrorIs, maas.ErrMissingDatabase)
	s.stub.CheckNoCalls(c)
}

func (s *argsSuite) TestRegionInvalidDatabase(c *gc.C) {
	_, err := maas.BuildArgs(snap.ModeRegion, &database.Connection{Host: "db1"}, "", s.store)
	c.Assert(err, gc.ErrorMatches, "empty database name not valid")
}

func (s *argsSuite) TestRack(c *gc.C) {
	s.store.values = map[string]string{
		"secret":   "s3cr3t",
		"maas_url": "http://10.0.0.5:5240/MAAS",
	}
	args, err := maas.BuildArgs(snap.ModeRack, nil, "", s.store)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(args, jc.DeepEquals, []string{
		"--mode", "rack",
		"--maas-url", "http://10.0.0.5:5240/MAAS",
		"--secret", "s3cr3t",
	})
	s.stub.CheckCalls(c, []jujutesting.StubCall{
		{FuncName: "Values", Args: []interface{}{[]string{"secret", "maas_url"}}},
	})
}

func (s *argsSuite) TestRackMissingSecret(c *gc.C) {
	s.store.values = map[string]string{
		"maas_url": "http://10.0.0.5:5240/MAAS",
	}
	args, err := maas.BuildArgs(snap.ModeRack, nil, "", s.store)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(args, jc.DeepEquals, []string{
		"--mode", "rack",
		"--maas-url", "http://10.0.0.5:5240/MAAS",
		"--secret", "",
	})
}

// TestRegionRackURLOnce checks that --maas-url is emitted exactly once
// even though the database and rack branches both want it.
func (s *argsSuite) TestRegionRackURLOnce(c *gc.C) {
	s.store.values = map[string]string{
		"secret":   "s3cr3t",
		"maas_url": "http://10.0.0.5:5240/MAAS",
	}
	args, err := maas.BuildArgs(snap.ModeRegionRack, testConn, "", s.store)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(args, jc.DeepEquals, []string{
		"--mode", "region+rack",
		"--database-host", "db1",
		"--database-name", "maasdb",
		"--database-user", "maas",
		"--database-pass", "pw",
		"--maas-url", "http://localhost:5240/MAAS",
		"--secret", "s3cr3t",
	})
	urls := 0
	for _, arg := range args {
		if arg == "--maas-url" {
			urls++
		}
	}
	c.Assert(urls, gc.Equals, 1)
}

func (s *argsSuite) TestUnknownMode(c *gc.C) {
	_, err := maas.BuildArgs(snap.Mode("bogus"), nil, "", s.store)
	c.Assert(err, jc.ErrorIs, snap.ErrUnknownMode)
}

func (s *argsSuite) TestStoreError(c *gc.C) {
	s.stub.SetErrors(errors.New("boom"))
	_, err := maas.BuildArgs(snap.ModeRack, nil, "", s.store)
	c.Assert(err, gc.ErrorMatches, "boom")
}

func (s *argsSuite) TestControllerURL(c *gc.C) {
	c.Check(maas.ControllerURL(""), gc.Equals, "http://localhost:5240/MAAS")
	c.Check(maas.ControllerURL("http://maas.example.com/MAAS"), gc.Equals, "http://maas.example.com/MAAS")
	c.Check(maas.IsLocalURL(maas.ControllerURL("")), jc.IsTrue)
	c.Check(maas.IsLocalURL("http://10.0.0.5:5240/MAAS"), jc.IsFalse)
}
