// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli"

	"github.com/wigggles/opentxs-sub024/client"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/nym"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultChequeValidity = 30 * 24 * time.Hour
	unlockTimeout         = 5 * time.Minute
)

// session - an unlocked nym connected to its notary
type session struct {
	m      *metadata
	client *client.Client
}

// connect - unlock the nym, reach the notary and restore saved numbers
func connect(c *cli.Context) (*session, error) {
	m := c.App.Metadata["config"].(*metadata)
	config := m.config

	engine := crypto.NewEngine()
	masterKey, err := keypair.ParseCachedKey(engine, config.MasterKey, passwordCallback(c.GlobalString("password")), unlockTimeout)
	if nil != err {
		return nil, err
	}
	sender, err := nym.ParsePrivate(engine, config.Nym, masterKey, nil)
	if nil != err {
		return nil, err
	}

	transport, err := client.NewRPCTransport(config.Connect, config.Fingerprint, c.GlobalDuration("timeout"))
	if nil != err {
		return nil, err
	}
	otc, err := client.New(engine, sender, transport)
	if nil != err {
		transport.Close()
		return nil, err
	}
	if err := otc.Restore(config.State); nil != err {
		otc.Close()
		return nil, err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "notary: %s\n", otc.NotaryID())
		fmt.Fprintf(m.e, "nym: %s\n", sender.ID())
	}
	return &session{m: m, client: otc}, nil
}

// close - keep the numbers for the next run
func (s *session) close() {
	s.m.config.State = s.client.State()
	s.m.save = true
	s.client.Close()
}

// check - a result other than a valid reply is an error
func check(result client.SendResult, err error) error {
	if nil != err {
		return err
	}
	switch result {
	case client.ValidReply, client.Unnecessary:
		return nil
	default:
		return fmt.Errorf("notary: %s", result)
	}
}

func accountID(m *metadata, name string) (identifier.Identifier, error) {
	if "" == name {
		return identifier.Identifier{}, fmt.Errorf("account is required")
	}
	return identifier.FromString(lookup(m.config.Accounts, name))
}

func nymID(m *metadata, name string) (identifier.Identifier, error) {
	if "" == name {
		return identifier.Identifier{}, fmt.Errorf("nym is required")
	}
	return identifier.FromString(lookup(m.config.Contacts, name))
}

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
