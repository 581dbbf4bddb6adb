// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wigggles/opentxs-sub024/client"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/message"
	"github.com/wigggles/opentxs-sub024/nym"
	"github.com/wigggles/opentxs-sub024/server"
	"github.com/wigggles/opentxs-sub024/settings"
)

const (
	testPassword = "notary password"
	testTimeout  = 30 * time.Second
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func testConfiguration(dir string) server.Configuration {
	return server.Configuration{
		DataDirectory: dir,
		Name:          "test notary",
		Host:          "127.0.0.1",
		Port:          7085,
		Terms:         "testing only",
		KeyType:       crypto.ED25519,
		KDF:           crypto.FastKDF,
		UnlockTimeout: time.Minute,
	}
}

// newServer - an unstarted notary over a data directory
func newServer(t *testing.T, e *crypto.Engine, dir string) *server.Server {
	s, err := settings.New(filepath.Join(dir, "notary.toml"))
	if nil != err {
		t.Fatalf("settings error: %s", err)
	}
	serverSettings, err := settings.LoadServer(s, message.Names())
	if nil != err {
		t.Fatalf("load settings error: %s", err)
	}
	return server.New(testConfiguration(dir), serverSettings, e, keypair.StaticPassword(testPassword), nil)
}

// runningServer - initialised notary in a fresh directory
//
// the returned function shuts it down and removes the directory
func runningServer(t *testing.T, e *crypto.Engine) (*server.Server, func()) {
	dir, remove := fixtures.TempDirectory("server")
	s := newServer(t, e, dir)
	if err := s.Init(); nil != err {
		remove()
		t.Fatalf("init error: %s", err)
	}
	return s, func() {
		s.Shutdown()
		remove()
	}
}

func newNym(t *testing.T, e *crypto.Engine, alias string) *nym.Nym {
	masterKey, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword("password"), time.Minute)
	if nil != err {
		t.Fatalf("create master key error: %s", err)
	}
	n, err := nym.Create(e, masterKey, crypto.ED25519, alias)
	if nil != err {
		t.Fatalf("create nym error: %s", err)
	}
	return n
}

// newClient - a nym connected in process, registered and holding
// transaction numbers
func newClient(t *testing.T, e *crypto.Engine, s *server.Server, alias string, numbers int) *client.Client {
	c, err := client.New(e, newNym(t, e, alias), client.NewLocalTransport(s, testTimeout))
	if nil != err {
		t.Fatalf("%s: client error: %s", alias, err)
	}
	if _, err := c.Register(); nil != err {
		t.Fatalf("%s: register error: %s", alias, err)
	}
	if numbers > 0 {
		if _, err := c.GetTransactionNumbers(numbers); nil != err {
			t.Fatalf("%s: numbers error: %s", alias, err)
		}
	}
	return c
}

// issueInstrument - the issuer's definition and account
func issueInstrument(t *testing.T, issuer *client.Client) (identifier.Identifier, identifier.Identifier) {
	_, definition, issuerAccount, err := issuer.IssueInstrument("Test Dollars", "TDX", "currency", "redeemable in tests")
	if nil != err {
		t.Fatalf("issue error: %s", err)
	}
	return definition.InstrumentDefinitionID(), issuerAccount
}

func newAccount(t *testing.T, c *client.Client, instrumentID identifier.Identifier) identifier.Identifier {
	_, accountID, err := c.RegisterAccount(instrumentID)
	if nil != err {
		t.Fatalf("register account error: %s", err)
	}
	return accountID
}

func balance(t *testing.T, c *client.Client, accountID identifier.Identifier) int64 {
	_, data, err := c.Account(accountID)
	if nil != err {
		t.Fatalf("account data error: %s", err)
	}
	return data.Account.Balance()
}
