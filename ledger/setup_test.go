// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"os"
	"testing"
	"time"

	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/nym"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func newNym(t *testing.T, alias string) *nym.Nym {
	e := crypto.NewEngine()
	masterKey, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword("password"), time.Minute)
	if nil != err {
		t.Fatalf("create master key error: %s", err)
	}
	n, err := nym.Create(e, masterKey, crypto.ED25519, alias)
	if nil != err {
		t.Fatalf("create nym error: %s", err)
	}
	return n
}
