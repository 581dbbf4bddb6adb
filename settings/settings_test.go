// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settings_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/background"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/settings"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func newSettings(t *testing.T) (*settings.Settings, func()) {
	dir, cleanup := fixtures.TempDirectory("settings")
	s, err := settings.New(filepath.Join(dir, "server.toml"))
	if nil != err {
		cleanup()
		t.Fatalf("new settings error: %s", err)
	}
	return s, cleanup
}

func TestMissingKeys(t *testing.T) {
	s, cleanup := newSettings(t)
	defer cleanup()

	_, exists := s.CheckStr("misc", "name")
	assert.False(t, exists, "missing string")
	_, exists = s.CheckLong("misc", "count")
	assert.False(t, exists, "missing long")
	_, exists = s.CheckBool("misc", "flag")
	assert.False(t, exists, "missing bool")
}

func TestSetAndCheck(t *testing.T) {
	s, cleanup := newSettings(t)
	defer cleanup()

	assert.True(t, s.SetStr("misc", "name", "alpha"), "first set")
	assert.False(t, s.SetStr("misc", "name", "alpha"), "unchanged set")
	assert.True(t, s.SetLong("misc", "count", 42), "set long")
	assert.True(t, s.SetBool("misc", "flag", true), "set bool")

	name, exists := s.CheckStr("misc", "name")
	assert.True(t, exists, "name exists")
	assert.Equal(t, "alpha", name, "name")

	count, exists := s.CheckLong("misc", "count")
	assert.True(t, exists, "count exists")
	assert.Equal(t, int64(42), count, "count")

	flag, exists := s.CheckBool("misc", "flag")
	assert.True(t, exists, "flag exists")
	assert.True(t, flag, "flag")
}

func TestCheckSetWritesDefaultOnce(t *testing.T) {
	s, cleanup := newSettings(t)
	defer cleanup()

	value, wrote := s.CheckSetLong("cron", "refill_amount", 20)
	assert.True(t, wrote, "default written")
	assert.Equal(t, int64(20), value, "default value")

	value, wrote = s.CheckSetLong("cron", "refill_amount", 99)
	assert.False(t, wrote, "existing kept")
	assert.Equal(t, int64(20), value, "existing value")

	str, wrote := s.CheckSetStr("misc", "name", "beta")
	assert.True(t, wrote, "string default")
	assert.Equal(t, "beta", str, "string value")

	flag, wrote := s.CheckSetBool("misc", "flag", true)
	assert.True(t, wrote, "bool default")
	assert.True(t, flag, "bool value")
}

func TestSaveAndReload(t *testing.T) {
	s, cleanup := newSettings(t)
	defer cleanup()

	s.SetLong("ledger", "max_box_size", 77)
	s.SetStr("permissions", "override_nym", "abc")
	assert.Nil(t, s.Save(), "save")

	s.SetLong("ledger", "max_box_size", 5)
	assert.Nil(t, s.Reload(), "reload")

	size, exists := s.CheckLong("ledger", "max_box_size")
	assert.True(t, exists, "size exists")
	assert.Equal(t, int64(77), size, "unsaved change discarded")

	other, err := settings.New(s.FilePath())
	assert.Nil(t, err, "second open")
	nym, exists := other.CheckStr("permissions", "override_nym")
	assert.True(t, exists, "override exists")
	assert.Equal(t, "abc", nym, "override value")
}

func TestReloadBadFile(t *testing.T) {
	s, cleanup := newSettings(t)
	defer cleanup()

	err := ioutil.WriteFile(s.FilePath(), []byte("this = [is not toml"), 0600)
	assert.Nil(t, err, "write")
	assert.NotNil(t, s.Reload(), "bad file")
}

func TestLoadServerDefaults(t *testing.T) {
	s, cleanup := newSettings(t)
	defer cleanup()

	server, err := settings.LoadServer(s, []string{"pingNotary", "registerNym"})
	assert.Nil(t, err, "load")
	assert.Equal(t, settings.DefaultRefillAmount, server.RefillAmount, "refill")
	assert.Equal(t, settings.DefaultMaximumItemsPerNym, server.MaximumItemsPerNym, "items")
	assert.Equal(t, settings.DefaultHeartbeat, server.Heartbeat, "heartbeat")
	assert.Equal(t, settings.DefaultMaximumBoxSize, server.MaximumBoxSize, "box size")
	assert.Equal(t, settings.DefaultScriptTimeout, server.ScriptTimeout, "script timeout")
	assert.True(t, server.ScriptEnabled, "script enabled")
	assert.True(t, server.IsAllowed("pingNotary", "anyone"), "allowed")
	assert.False(t, server.IsAllowed("unknown", "anyone"), "unknown command")

	_, err = os.Stat(s.FilePath())
	assert.Nil(t, err, "defaults saved")
}

func TestLoadServerPermissions(t *testing.T) {
	s, cleanup := newSettings(t)
	defer cleanup()

	s.SetBool(settings.SectionPermissions, "cmd_registerNym", false)
	s.SetStr(settings.SectionPermissions, "override_nym", "admin")
	s.SetLong(settings.SectionCron, "refill_amount", -3)

	server, err := settings.LoadServer(s, []string{"pingNotary", "registerNym"})
	assert.Nil(t, err, "load")
	assert.Equal(t, settings.DefaultRefillAmount, server.RefillAmount, "non positive replaced")
	assert.True(t, server.IsAllowed("pingNotary", "user"), "ping allowed")
	assert.False(t, server.IsAllowed("registerNym", "user"), "register refused")
	assert.True(t, server.IsAllowed("registerNym", "admin"), "override nym")
}

func TestLoadServerAdminOnly(t *testing.T) {
	s, cleanup := newSettings(t)
	defer cleanup()

	s.SetBool(settings.SectionPermissions, "admin_only", true)
	s.SetStr(settings.SectionPermissions, "override_nym", "admin")

	server, err := settings.LoadServer(s, []string{"pingNotary"})
	assert.Nil(t, err, "load")
	assert.False(t, server.IsAllowed("pingNotary", "user"), "user refused")
	assert.True(t, server.IsAllowed("pingNotary", "admin"), "admin allowed")
}

func TestWatcherReloads(t *testing.T) {
	s, cleanup := newSettings(t)
	defer cleanup()

	s.SetLong("misc", "count", 1)
	assert.Nil(t, s.Save(), "save")

	changed := make(chan int64, 10)
	w, err := settings.NewWatcher(s, func(s *settings.Settings) {
		count, _ := s.CheckLong("misc", "count")
		changed <- count
	})
	assert.Nil(t, err, "new watcher")

	processes := background.Start(background.Processes{w}, nil)
	defer processes.Stop()

	other, err := settings.New(s.FilePath())
	assert.Nil(t, err, "second open")
	other.SetLong("misc", "count", 2)
	assert.Nil(t, other.Save(), "second save")

	timeout := time.After(5 * time.Second)
	for {
		select {
		case count := <-changed:
			if 2 == count {
				return
			}
		case <-timeout:
			t.Fatal("no reload seen")
		}
	}
}
