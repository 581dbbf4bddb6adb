// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/wigggles/opentxs-sub024/background"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/message"
	"github.com/wigggles/opentxs-sub024/mode"
	"github.com/wigggles/opentxs-sub024/rpc"
	"github.com/wigggles/opentxs-sub024/server"
	"github.com/wigggles/opentxs-sub024/settings"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile, environment())
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// set the initial system mode - before any background tasks are started
	err = mode.Initialise()
	if nil != err {
		log.Criticalf("mode initialise error: %s", err)
		exitwithstatus.Message("mode initialise error: %s", err)
	}
	defer mode.Finalise()

	engine := crypto.NewEngine()

	// runtime settings, rewritten with defaults on first start
	log.Infof("settings: %q", theConfiguration.SettingsFile)
	runtimeSettings, err := settings.New(theConfiguration.SettingsFile)
	if nil != err {
		log.Criticalf("settings error: %s", err)
		exitwithstatus.Message("settings error: %s", err)
	}
	serverSettings, err := settings.LoadServer(runtimeSettings, message.Names())
	if nil != err {
		log.Criticalf("settings error: %s", err)
		exitwithstatus.Message("settings error: %s", err)
	}

	password, err := passwordSource(theConfiguration.PasswordFile)
	if nil != err {
		log.Criticalf("password error: %s", err)
		exitwithstatus.Message("password error: %s", err)
	}

	notary := server.New(theConfiguration.serverConfiguration(), serverSettings, engine, password, nil)

	log.Infof("data directory: %q", theConfiguration.DataDirectory)
	err = notary.Init()
	if nil != err {
		log.Criticalf("notary initialise error: %s", err)
		exitwithstatus.Message("notary initialise error: %s", err)
	}
	defer notary.Shutdown()

	// these commands need the unlocked notary
	if len(arguments) > 0 && processNotaryCommand(arguments, notary) {
		return
	}

	notary.Start()

	// reload permissions and limits when the settings file changes
	watcher, err := settings.NewWatcher(runtimeSettings, func(s *settings.Settings) {
		reloaded, err := settings.LoadServer(s, message.Names())
		if nil != err {
			log.Errorf("settings reload error: %s", err)
			return
		}
		notary.UpdateSettings(reloaded)
	})
	if nil != err {
		log.Criticalf("settings watcher error: %s", err)
		exitwithstatus.Message("settings watcher error: %s", err)
	}
	processes := background.Start(background.Processes{watcher}, nil)
	defer processes.Stop()

	// start up the rpc background processes
	err = rpc.Initialise(&theConfiguration.ClientRPC, notary, version)
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}
	defer rpc.Finalise()

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nnotary: %s\n", notary.NotaryID())
		fmt.Printf("Waiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	mode.Set(mode.Normal)

	// turn Signals into channel messages
	// SIGHUP toggles maintenance, client requests are refused until
	// the next SIGHUP
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range ch {
		log.Infof("received signal: %v", sig)
		if syscall.SIGHUP != sig {
			if 0 == len(options["quiet"]) {
				fmt.Printf("\nreceived signal: %v\n", sig)
				fmt.Printf("\nshutting down…\n")
			}
			break
		}
		if mode.Is(mode.Maintenance) {
			mode.Set(mode.Normal)
		} else {
			mode.Set(mode.Maintenance)
		}
	}

	log.Info("shutting down…")
	mode.Set(mode.Stopped)
}

// variables available to the configuration script
func environment() map[string]string {
	variables := make(map[string]string)
	for _, name := range []string{"HOME", "USER", "OT_NOTARY_HOST", "OT_NOTARY_PORT"} {
		if value, ok := os.LookupEnv(name); ok {
			variables[name] = value
		}
	}
	return variables
}
