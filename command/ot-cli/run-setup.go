// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/nym"
)

func runSetup(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	connect := c.String("connect")
	if "" == connect {
		return fmt.Errorf("connect is required")
	}
	fingerprint := c.String("fingerprint")
	if "" == fingerprint {
		return fmt.Errorf("fingerprint is required")
	}
	alias := c.String("alias")
	if "" == alias {
		return fmt.Errorf("alias is required")
	}
	keyType, err := crypto.KeyTypeFromString(c.String("key-type"))
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "config: %s\n", m.file)
		fmt.Fprintf(m.e, "connect: %s\n", connect)
		fmt.Fprintf(m.e, "alias: %s\n", alias)
		fmt.Fprintf(m.e, "key type: %s\n", keyType)
	}

	// Create the folder hierarchy for configuration if not existing
	configDir := filepath.Dir(m.file)
	if err := os.MkdirAll(configDir, 0o750); nil != err {
		return err
	}

	engine := crypto.NewEngine()
	masterKey, err := keypair.CreateCachedKey(engine, crypto.DefaultKDF, passwordCallback(c.GlobalString("password")), unlockTimeout)
	if nil != err {
		return err
	}
	sender, err := nym.Create(engine, masterKey, keyType, alias)
	if nil != err {
		return err
	}
	bundle, err := sender.PrivateBundle()
	if nil != err {
		return err
	}

	m.config = &Configuration{
		Connect:     connect,
		Fingerprint: fingerprint,
		Alias:       alias,
		MasterKey:   masterKey.Serialize(),
		Nym:         bundle,
		Accounts:    make(map[string]string),
		Contacts:    make(map[string]string),
	}
	m.save = true

	return printJson(m.w, struct {
		Alias string `json:"alias"`
		NymID string `json:"nym_id"`
	}{
		Alias: alias,
		NymID: sender.ID().String(),
	})
}

func runInfo(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	config := m.config

	return printJson(m.w, struct {
		Connect    string            `json:"connect"`
		Alias      string            `json:"alias"`
		Registered bool              `json:"registered"`
		Available  int               `json:"available_numbers"`
		Issued     int               `json:"issued_numbers"`
		Accounts   map[string]string `json:"accounts"`
		Contacts   map[string]string `json:"contacts"`
	}{
		Connect:    config.Connect,
		Alias:      config.Alias,
		Registered: config.State.Registered,
		Available:  len(config.State.Available),
		Issued:     len(config.State.Issued),
		Accounts:   config.Accounts,
		Contacts:   config.Contacts,
	})
}
