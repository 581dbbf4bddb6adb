// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/wigggles/opentxs-sub024/util"
)

type metadata struct {
	file    string
	config  *Configuration
	save    bool
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "ot-cli"
	app.Usage = "client for an Open-Transactions notary"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "config, c",
			Value: "",
			Usage: " configuration `FILE` [$XDG_CONFIG_HOME/ot-cli/ot-cli.json]",
		},
		cli.StringFlag{
			Name:  "password, p",
			Value: "",
			Usage: " master key `PASSWORD`",
		},
		cli.DurationFlag{
			Name:  "timeout, t",
			Value: defaultTimeout,
			Usage: " notary reply `TIMEOUT`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "setup",
			Usage:     "create a nym and save the notary connection",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "connect, C",
					Value: "",
					Usage: "*notary host/IP and port, `HOST:PORT`",
				},
				cli.StringFlag{
					Name:  "fingerprint, f",
					Value: "",
					Usage: "*notary certificate fingerprint `HEX`",
				},
				cli.StringFlag{
					Name:  "alias, a",
					Value: "",
					Usage: "*nym alias `NAME`",
				},
				cli.StringFlag{
					Name:  "key-type, k",
					Value: "ed25519",
					Usage: " signing key `TYPE` [ed25519|secp256k1]",
				},
			},
			Action: runSetup,
		},
		{
			Name:   "info",
			Usage:  "display the nym and notary",
			Action: runInfo,
		},
		{
			Name:   "register",
			Usage:  "register the nym on the notary",
			Action: runRegister,
		},
		{
			Name:   "unregister",
			Usage:  "remove the nym from the notary",
			Action: runUnregister,
		},
		{
			Name:      "numbers",
			Usage:     "request transaction numbers",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, n",
					Value: 10,
					Usage: " numbers to request `COUNT`",
				},
			},
			Action: runNumbers,
		},
		{
			Name:      "issue",
			Usage:     "issue an instrument definition",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "name, N",
					Value: "",
					Usage: "*instrument `NAME`",
				},
				cli.StringFlag{
					Name:  "symbol, s",
					Value: "",
					Usage: "*instrument `SYMBOL`",
				},
				cli.StringFlag{
					Name:  "unit, u",
					Value: "currency",
					Usage: " unit `TYPE` [currency|shares]",
				},
				cli.StringFlag{
					Name:  "terms, T",
					Value: "",
					Usage: " terms `TEXT`",
				},
				cli.StringFlag{
					Name:  "alias, a",
					Value: "",
					Usage: " alias for the issuer account `NAME`",
				},
			},
			Action: runIssue,
		},
		{
			Name:      "create-account",
			Usage:     "create an asset account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "instrument, i",
					Value: "",
					Usage: "*instrument definition `ID`",
				},
				cli.StringFlag{
					Name:  "alias, a",
					Value: "",
					Usage: " account alias `NAME`",
				},
			},
			Action: runCreateAccount,
		},
		{
			Name:      "delete-account",
			Usage:     "delete an empty asset account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, A",
					Value: "",
					Usage: "*account `ALIAS_OR_ID`",
				},
			},
			Action: runDeleteAccount,
		},
		{
			Name:      "account",
			Usage:     "display balance, inbox and outbox",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, A",
					Value: "",
					Usage: "*account `ALIAS_OR_ID`",
				},
			},
			Action: runAccount,
		},
		{
			Name:      "transfer",
			Usage:     "transfer between asset accounts",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "from, F",
					Value: "",
					Usage: "*source account `ALIAS_OR_ID`",
				},
				cli.StringFlag{
					Name:  "to, T",
					Value: "",
					Usage: "*destination account `ID`",
				},
				cli.Int64Flag{
					Name:  "amount, m",
					Value: 0,
					Usage: "*amount to transfer `NUMBER`",
				},
				cli.StringFlag{
					Name:  "note, N",
					Value: "",
					Usage: " note `TEXT`",
				},
			},
			Action: runTransfer,
		},
		{
			Name:      "process-inbox",
			Usage:     "accept everything in an account inbox",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, A",
					Value: "",
					Usage: "*account `ALIAS_OR_ID`",
				},
				cli.BoolFlag{
					Name:  "reject, r",
					Usage: " reject pending transfers instead",
				},
			},
			Action: runProcessInbox,
		},
		{
			Name:      "cheque",
			Usage:     "write a cheque to a file",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "from, F",
					Value: "",
					Usage: "*drawer account `ALIAS_OR_ID`",
				},
				cli.StringFlag{
					Name:  "recipient, r",
					Value: "",
					Usage: " recipient nym `CONTACT_OR_ID`",
				},
				cli.Int64Flag{
					Name:  "amount, m",
					Value: 0,
					Usage: "*amount `NUMBER`",
				},
				cli.DurationFlag{
					Name:  "valid, V",
					Value: defaultChequeValidity,
					Usage: " validity `DURATION`",
				},
				cli.StringFlag{
					Name:  "memo, M",
					Value: "",
					Usage: " memo `TEXT`",
				},
				cli.StringFlag{
					Name:  "file, o",
					Value: "",
					Usage: "*output `FILE`",
				},
				cli.BoolFlag{
					Name:  "send, s",
					Usage: " also deliver to the recipient's nymbox",
				},
			},
			Action: runCheque,
		},
		{
			Name:      "deposit",
			Usage:     "deposit a cheque from a file",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, A",
					Value: "",
					Usage: "*account `ALIAS_OR_ID`",
				},
				cli.StringFlag{
					Name:  "file, i",
					Value: "",
					Usage: "*cheque `FILE`",
				},
			},
			Action: runDeposit,
		},
		{
			Name:      "contact",
			Usage:     "check a nym and remember it",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "nym, n",
					Value: "",
					Usage: "*nym `ID`",
				},
				cli.StringFlag{
					Name:  "alias, a",
					Value: "",
					Usage: " contact alias `NAME`",
				},
			},
			Action: runContact,
		},
		{
			Name:      "message",
			Usage:     "send a message to another nym",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "recipient, r",
					Value: "",
					Usage: "*recipient nym `CONTACT_OR_ID`",
				},
				cli.StringFlag{
					Name:  "text, T",
					Value: "",
					Usage: "*message `TEXT`",
				},
			},
			Action: runMessage,
		},
		{
			Name:   "nymbox",
			Usage:  "process the nymbox, display any messages",
			Action: runNymbox,
		},
		{
			Name:  "version",
			Usage: "display ot-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// read the configuration
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress reading config file if certain commands
		command := c.Args().Get(0)
		if "version" == command || "help" == command || "" == command {
			return nil
		}

		file := c.GlobalString("config")
		if "" == file {
			p := os.Getenv("XDG_CONFIG_HOME")
			if "" == p {
				return fmt.Errorf("XDG_CONFIG_HOME environment is not set")
			}
			file = filepath.Join(p, app.Name, app.Name+".json")
		}

		if verbose {
			fmt.Fprintf(e, "file: %q\n", file)
		}

		// the client library logs to a file beside the configuration
		if err := initialiseLogging(filepath.Dir(file), verbose); nil != err {
			return err
		}

		m := &metadata{
			file:    file,
			verbose: verbose,
			e:       e,
			w:       w,
		}

		if "setup" == command {
			// do not run setup if there is an existing configuration
			if util.EnsureFileExists(file) {
				return fmt.Errorf("not overwriting existing configuration: %q", file)
			}
		} else {
			if verbose {
				fmt.Fprintf(e, "reading config file: %s\n", file)
			}
			configuration, err := getConfiguration(file)
			if nil != err {
				return err
			}
			m.config = configuration
		}
		c.App.Metadata["config"] = m

		return nil
	}

	// update the configuration if required
	app.After = func(c *cli.Context) error {
		e := c.App.ErrWriter
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok {
			return nil
		}
		defer logger.Finalise()
		if m.save {
			if m.verbose {
				fmt.Fprintf(e, "updating config file: %s\n", m.file)
			}
			err := saveConfiguration(m.file, m.config)
			if nil != err {
				return err
			}
		}
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func initialiseLogging(dir string, verbose bool) error {
	level := "warn"
	if verbose {
		level = "info"
	}
	if err := util.EnsureDirectory(dir); nil != err {
		return err
	}
	return logger.Initialise(logger.Configuration{
		Directory: dir,
		File:      "ot-cli.log",
		Size:      1024 * 1024,
		Count:     5,
		Levels: map[string]string{
			logger.DefaultTag: level,
		},
	})
}
