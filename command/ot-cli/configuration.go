// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/wigggles/opentxs-sub024/client"
)

// Configuration - one nym on one notary
//
// the nym bundle and master key are both encrypted under the
// master key password
type Configuration struct {
	Connect     string            `json:"connect"`
	Fingerprint string            `json:"fingerprint"`
	Alias       string            `json:"alias"`
	MasterKey   string            `json:"master_key"`
	Nym         string            `json:"nym"`
	State       client.State      `json:"state"`
	Accounts    map[string]string `json:"accounts"`
	Contacts    map[string]string `json:"contacts"`
}

func getConfiguration(fileName string) (*Configuration, error) {
	fileName, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}

	f, err := os.Open(fileName)
	if nil != err {
		return nil, err
	}
	defer f.Close()

	options := &Configuration{}
	dec := json.NewDecoder(f)
	if err := dec.Decode(options); nil != err {
		return nil, err
	}
	if nil == options.Accounts {
		options.Accounts = make(map[string]string)
	}
	if nil == options.Contacts {
		options.Contacts = make(map[string]string)
	}
	return options, nil
}

// save - write through a temporary file so a failure keeps the old copy
func saveConfiguration(fileName string, options *Configuration) error {
	data, err := json.MarshalIndent(options, "", "  ")
	if nil != err {
		return err
	}
	tempName := fileName + ".new"
	if err := ioutil.WriteFile(tempName, data, 0600); nil != err {
		return err
	}
	return os.Rename(tempName, fileName)
}

// lookup - an alias from the map or the identifier itself
func lookup(names map[string]string, name string) string {
	if id, ok := names[name]; ok {
		return id
	}
	return name
}
