// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identifier - the primary key of every notary entity
//
// an identifier is a SHA3-256 digest; its text form is base58
package identifier

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
)

// Length - number of bytes in an identifier
const Length = 32

// number of random bytes digested for a fresh identifier
const randomSeedLength = 100

// Identifier - type for a digest
type Identifier [Length]byte

// Zero - the empty identifier
var Zero Identifier

// FromData - digest of some data
func FromData(data []byte) Identifier {
	return sha3.Sum256(data)
}

// Random - identifier for assigned ID entities such as accounts
func Random(engine *crypto.Engine) (Identifier, error) {
	seed, err := engine.Random(randomSeedLength)
	if nil != err {
		return Zero, err
	}
	return FromData(seed), nil
}

// FromBytes - copy exactly Length bytes into an identifier
func FromBytes(b []byte) (Identifier, error) {
	id := Identifier{}
	if Length != len(b) {
		return id, fault.CannotDecodeIdentifier
	}
	copy(id[:], b)
	return id, nil
}

// FromString - parse the base58 text form
func FromString(s string) (Identifier, error) {
	id := Identifier{}
	err := id.UnmarshalText([]byte(s))
	return id, err
}

// MustFromString - parse or panic, for constants and tests
func MustFromString(s string) Identifier {
	id, err := FromString(s)
	if nil != err {
		panic(fmt.Sprintf("identifier: %q: %s", s, err))
	}
	return id
}

// IsZero - true for the empty identifier
func (id Identifier) IsZero() bool {
	return Zero == id
}

// Compare - ordering for sorted lock acquisition and lists
func (id Identifier) Compare(other Identifier) int {
	return bytes.Compare(id[:], other[:])
}

// Bytes - copy of the raw digest
func (id Identifier) Bytes() []byte {
	b := make([]byte, Length)
	copy(b, id[:])
	return b
}

// String - convert a binary identifier to base58 for use as a
// file name or in a message
func (id Identifier) String() string {
	if id.IsZero() {
		return ""
	}
	return base58.Encode(id[:])
}

// GoString - for %#v
func (id Identifier) GoString() string {
	return "<identifier:" + id.String() + ">"
}

// MarshalText - convert identifier to text
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText - convert text into an identifier
//
// an empty string is the zero identifier
func (id *Identifier) UnmarshalText(s []byte) error {
	if 0 == len(s) {
		*id = Zero
		return nil
	}
	b, err := base58.Decode(string(s))
	if nil != err {
		return fault.CannotDecodeIdentifier
	}
	if Length != len(b) {
		return fault.CannotDecodeIdentifier
	}
	copy(id[:], b)
	return nil
}

// Scan - for sql
func (id *Identifier) Scan(src interface{}) error {
	switch s := src.(type) {
	case string:
		return id.UnmarshalText([]byte(s))
	case []byte:
		return id.UnmarshalText(s)
	default:
		return fault.CannotDecodeIdentifier
	}
}

// Value - for sql
func (id Identifier) Value() (driver.Value, error) {
	return id.String(), nil
}
