// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/wigggles/opentxs-sub024/configuration"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/rpc/listeners"
	"github.com/wigggles/opentxs-sub024/server"
	"github.com/wigggles/opentxs-sub024/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultSettingsFile    = "notary.toml"
	defaultKeyFile         = "rpc.key"
	defaultCertificateFile = "rpc.crt"

	defaultNotaryName    = "notary"
	defaultNotaryPort    = 7085
	defaultKeyType       = "ed25519"
	defaultUnlockSeconds = 300

	defaultLogDirectory = "log"
	defaultLogFile      = "otserver.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients = 10
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// NotaryType - the published notary contract
type NotaryType struct {
	Name    string `gluamapper:"name" json:"name"`
	Host    string `gluamapper:"host" json:"host"`
	Port    int    `gluamapper:"port" json:"port"`
	Terms   string `gluamapper:"terms" json:"terms"`
	KeyType string `gluamapper:"key_type" json:"key_type"`
}

// Configuration - the daemon configuration file
type Configuration struct {
	DataDirectory string `gluamapper:"data_directory" json:"data_directory"`
	SettingsFile  string `gluamapper:"settings_file" json:"settings_file"`
	PasswordFile  string `gluamapper:"password_file" json:"password_file"`
	UnlockTimeout int    `gluamapper:"unlock_timeout" json:"unlock_timeout"`

	Notary    NotaryType                  `gluamapper:"notary" json:"notary"`
	ClientRPC listeners.RPCConfiguration `gluamapper:"client_rpc" json:"client_rpc"`
	Logging   logger.Configuration        `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		SettingsFile:  defaultSettingsFile,
		UnlockTimeout: defaultUnlockSeconds,

		Notary: NotaryType{
			Name:    defaultNotaryName,
			Host:    "127.0.0.1",
			Port:    defaultNotaryPort,
			KeyType: defaultKeyType,
		},

		ClientRPC: listeners.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	if _, err := crypto.KeyTypeFromString(options.Notary.KeyType); nil != err {
		return nil, err
	}
	if options.UnlockTimeout <= 0 {
		options.UnlockTimeout = defaultUnlockSeconds
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fault.InvalidDirectory
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fault.InvalidDirectory
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.SettingsFile,
		&options.ClientRPC.Certificate,
		&options.ClientRPC.PrivateKey,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PasswordFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	if !util.IsPlainName(options.Logging.File) {
		return nil, fault.NotPlainName
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Logging.Directory,
	} {
		*d = util.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

// serverConfiguration - the notary part of the configuration
func (c *Configuration) serverConfiguration() server.Configuration {
	keyType, _ := crypto.KeyTypeFromString(c.Notary.KeyType)
	return server.Configuration{
		DataDirectory: c.DataDirectory,
		Name:          c.Notary.Name,
		Host:          c.Notary.Host,
		Port:          c.Notary.Port,
		Terms:         c.Notary.Terms,
		KeyType:       keyType,
		UnlockTimeout: time.Duration(c.UnlockTimeout) * time.Second,
	}
}
