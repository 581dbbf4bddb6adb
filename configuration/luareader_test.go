// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/configuration"
	"github.com/wigggles/opentxs-sub024/fault"
)

const luaConfiguration = `
local M = {}
M.data_directory = arg["home"] .. "/notary"
M.pidfile = "notary.pid"
M.client_rpc = {
    maximum_connections = 7,
    listen = { "127.0.0.1:7085", "[::1]:7085" },
}
return M
`

type rpcConfiguration struct {
	MaximumConnections int      `gluamapper:"maximum_connections"`
	Listen             []string `gluamapper:"listen"`
}

type testConfiguration struct {
	DataDirectory string           `gluamapper:"data_directory"`
	PidFile       string           `gluamapper:"pidfile"`
	ClientRPC     rpcConfiguration `gluamapper:"client_rpc"`
}

func TestParseConfigurationFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "opentxs-configuration")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "otserver.conf")
	err = ioutil.WriteFile(fileName, []byte(luaConfiguration), 0600)
	assert.Nil(t, err, "write configuration")

	config := testConfiguration{}
	err = configuration.ParseConfigurationFile(fileName, &config, map[string]string{"home": "/srv"})
	assert.Nil(t, err, "parse")

	assert.Equal(t, "/srv/notary", config.DataDirectory, "data directory")
	assert.Equal(t, "notary.pid", config.PidFile, "pid file")
	assert.Equal(t, 7, config.ClientRPC.MaximumConnections, "connections")
	assert.Equal(t, []string{"127.0.0.1:7085", "[::1]:7085"}, config.ClientRPC.Listen, "listen")
}

func TestParseConfigurationFileNotStruct(t *testing.T) {
	var n int
	err := configuration.ParseConfigurationFile("none.conf", &n, nil)
	assert.Equal(t, fault.InvalidStructPointer, err, "wrong error")
}
