// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/keypair"
)

// passwordSource - the notary master key password
//
// a password file suits a supervised daemon, otherwise prompt on
// the controlling terminal
func passwordSource(passwordFile string) (keypair.PasswordCallback, error) {
	if "" == passwordFile {
		return keypair.CallbackFunc(promptPassword), nil
	}
	data, err := ioutil.ReadFile(passwordFile)
	if nil != err {
		return nil, err
	}
	password := bytes.TrimRight(data, "\r\n")
	if 0 == len(password) {
		return nil, fault.PasswordMismatch
	}
	return keypair.StaticPassword(password), nil
}

func promptPassword(reason string, confirm bool) ([]byte, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if nil != err {
		return nil, err
	}
	defer tty.Close()

	fd := int(tty.Fd())
	fmt.Fprintf(tty, "%s: ", reason)
	password, err := terminal.ReadPassword(fd)
	fmt.Fprintln(tty)
	if nil != err {
		return nil, err
	}
	if !confirm {
		return password, nil
	}

	fmt.Fprint(tty, "confirm password: ")
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
