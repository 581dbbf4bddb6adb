// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keypair

import (
	"github.com/wigggles/opentxs-sub024/fault"
)

// PasswordCallback - source of the master password
//
// confirm is true when a new password is being set and the
// implementation should ask twice
type PasswordCallback interface {
	Password(reason string, confirm bool) ([]byte, error)
}

// CallbackFunc - adapt a function to PasswordCallback
type CallbackFunc func(reason string, confirm bool) ([]byte, error)

// Password - call the function
func (f CallbackFunc) Password(reason string, confirm bool) ([]byte, error) {
	return f(reason, confirm)
}

// StaticPassword - programmatic password, used by daemons started
// with a password file and by tests
type StaticPassword []byte

// Password - return a copy of the password
func (p StaticPassword) Password(reason string, confirm bool) ([]byte, error) {
	if 0 == len(p) {
		return nil, fault.PasswordDeclined
	}
	b := make([]byte, len(p))
	copy(b, p)
	return b, nil
}

// Declined - a callback that always refuses
var Declined = CallbackFunc(func(reason string, confirm bool) ([]byte, error) {
	return nil, fault.PasswordDeclined
})

// zero - erase sensitive bytes
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
