// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/keypair"
)

const minimumPasswordLength = 8

// password from the command line or the terminal
func passwordCallback(password string) keypair.PasswordCallback {
	if "" != password {
		return keypair.StaticPassword(password)
	}
	return keypair.CallbackFunc(promptPassword)
}

func promptPassword(reason string, confirm bool) ([]byte, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if nil != err {
		return nil, err
	}
	defer tty.Close()

	fd := int(tty.Fd())
	fmt.Fprintf(tty, "ot-cli: %s: ", reason)
	password, err := terminal.ReadPassword(fd)
	fmt.Fprintln(tty)
	if nil != err {
		return nil, err
	}
	if !confirm {
		return password, nil
	}
	if len(password) < minimumPasswordLength {
		return nil, fault.PasswordTooShort
	}

	fmt.Fprint(tty, "ot-cli: verify password: ")
	verify, err := terminal.ReadPassword(fd)
	fmt.Fprintln(tty)
	if nil != err {
		return nil, err
	}
	if !bytes.Equal(password, verify) {
		return nil, fault.PasswordMismatch
	}
	return password, nil
}
