// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account_test

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/account"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/nym"
	"github.com/wigggles/opentxs-sub024/storage"
)

var (
	notaryID     = identifier.FromData([]byte("notary"))
	instrumentID = identifier.FromData([]byte("silver"))
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

type setup struct {
	engine  *crypto.Engine
	folders *storage.Folders
	server  *nym.Nym
	owner   *nym.Nym
}

func newSetup(t *testing.T) (*setup, func()) {
	dir, cleanup := fixtures.TempDirectory("account")
	folders, err := storage.NewFolders(dir)
	if nil != err {
		t.Fatalf("folders error: %s", err)
	}
	e := crypto.NewEngine()
	masterKey, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword("password"), time.Minute)
	if nil != err {
		t.Fatalf("create master key error: %s", err)
	}
	server, err := nym.Create(e, masterKey, crypto.ED25519, "server")
	if nil != err {
		t.Fatalf("create nym error: %s", err)
	}
	owner, err := nym.Create(e, masterKey, crypto.ED25519, "owner")
	if nil != err {
		t.Fatalf("create nym error: %s", err)
	}
	return &setup{
		engine:  e,
		folders: folders,
		server:  server,
		owner:   owner,
	}, cleanup
}

func TestGenerateNewAccount(t *testing.T) {
	s, cleanup := newSetup(t)
	defer cleanup()

	a, err := account.GenerateNewAccount(s.engine, s.folders, s.server, s.owner.ID(), notaryID, instrumentID, account.Simple)
	assert.Nil(t, err, "generate")
	assert.Equal(t, int64(0), a.Balance(), "zero balance")
	assert.False(t, a.ID.IsZero(), "id")
	assert.Nil(t, a.VerifyOwner(s.owner.ID()), "owner")
	assert.Equal(t, fault.AccountOwnerMismatch, a.VerifyOwner(s.server.ID()), "not owner")

	loaded, err := account.LoadAccount(s.folders, a.ID, notaryID)
	assert.Nil(t, err, "load")
	assert.Equal(t, a.NymID, loaded.NymID, "owner")
	assert.Equal(t, a.InstrumentID, loaded.InstrumentID, "instrument")
	assert.Equal(t, a.InboxHash(), loaded.InboxHash(), "inbox hash")
	assert.Nil(t, loaded.Contract.VerifySignature(s.server, s.server.ID()), "server signature")

	inbox, err := loaded.LoadInbox(s.folders)
	assert.Nil(t, err, "inbox")
	assert.Equal(t, 0, inbox.Count(), "empty inbox")
	outbox, err := loaded.LoadOutbox(s.folders)
	assert.Nil(t, err, "outbox")
	assert.Equal(t, loaded.OutboxHash(), outbox.Hash(), "outbox hash")

	_, err = account.LoadAccount(s.folders, a.ID, identifier.FromData([]byte("other")))
	assert.Equal(t, fault.NotaryMismatch, err, "other notary")

	_, err = account.GenerateNewAccount(s.engine, s.folders, s.server, s.owner.ID(), notaryID, instrumentID, "bogus")
	assert.Equal(t, fault.InvalidAccountType, err, "bad type")
}

func TestDebitCredit(t *testing.T) {
	s, cleanup := newSetup(t)
	defer cleanup()

	a, err := account.GenerateNewAccount(s.engine, s.folders, s.server, s.owner.ID(), notaryID, instrumentID, account.Simple)
	assert.Nil(t, err, "generate")

	assert.Equal(t, fault.InsufficientFunds, a.Debit(1), "overdraw")
	assert.Equal(t, int64(0), a.Balance(), "unchanged after failure")
	assert.Nil(t, a.Credit(100), "credit")
	assert.Nil(t, a.Debit(40), "debit")
	assert.Equal(t, int64(60), a.Balance(), "balance")
	assert.Equal(t, fault.InvalidAmount, a.Debit(0), "zero")
	assert.Equal(t, fault.InvalidAmount, a.Credit(-5), "negative")
	assert.Equal(t, fault.InvalidAmount, a.Credit(math.MaxInt64), "overflow")

	assert.Nil(t, a.Save(s.folders, s.server), "save")
	loaded, err := account.LoadAccount(s.folders, a.ID, notaryID)
	assert.Nil(t, err, "load")
	assert.Equal(t, int64(60), loaded.Balance(), "saved balance")
	assert.Equal(t, a.BalanceDate(), loaded.BalanceDate(), "balance date")

	issuer, err := account.GenerateNewAccount(s.engine, s.folders, s.server, s.owner.ID(), notaryID, instrumentID, account.Issuer)
	assert.Nil(t, err, "issuer")
	assert.True(t, issuer.IsAllowedToGoNegative(), "issuer may go negative")
	assert.Nil(t, issuer.Debit(1000), "issue")
	assert.Equal(t, int64(-1000), issuer.Balance(), "negative balance")
	assert.Equal(t, fault.InvalidAmount, issuer.Debit(math.MaxInt64), "underflow")
}

func TestMarkForDeletion(t *testing.T) {
	s, cleanup := newSetup(t)
	defer cleanup()

	a, err := account.GenerateNewAccount(s.engine, s.folders, s.server, s.owner.ID(), notaryID, instrumentID, account.Simple)
	assert.Nil(t, err, "generate")
	assert.False(t, a.IsMarkedForDeletion(), "fresh")
	a.MarkForDeletion()
	assert.Nil(t, a.Save(s.folders, s.server), "save")

	loaded, err := account.LoadAccount(s.folders, a.ID, notaryID)
	assert.Nil(t, err, "load")
	assert.True(t, loaded.IsMarkedForDeletion(), "marked")
	assert.Contains(t, loaded.DisplayStatistics(), a.ID.String(), "statistics")
}

func TestSaveBoxOwnerCheck(t *testing.T) {
	s, cleanup := newSetup(t)
	defer cleanup()

	a, err := account.GenerateNewAccount(s.engine, s.folders, s.server, s.owner.ID(), notaryID, instrumentID, account.Simple)
	assert.Nil(t, err, "generate")

	foreign := ledger.New(ledger.Inbox, s.server.ID(), a.ID, notaryID)
	assert.Equal(t, fault.AccountOwnerMismatch, a.SaveInbox(s.folders, foreign, s.server), "foreign inbox")

	outbox := ledger.New(ledger.Outbox, s.owner.ID(), a.ID, notaryID)
	assert.Equal(t, fault.InvalidLedgerType, a.SaveInbox(s.folders, outbox, s.server), "outbox as inbox")
}

func TestRecords(t *testing.T) {
	s, cleanup := newSetup(t)
	defer cleanup()

	records := account.NewRecords(s.folders)
	ids := []identifier.Identifier{}
	for i := 0; i < 3; i += 1 {
		a, err := account.GenerateNewAccount(s.engine, s.folders, s.server, s.owner.ID(), notaryID, instrumentID, account.Simple)
		assert.Nil(t, err, "generate")
		assert.Nil(t, records.AddAccountRecord(a), "add")
		assert.Nil(t, records.AddAccountRecord(a), "add twice")
		ids = append(ids, a.ID)
	}

	visited := 0
	err := records.VisitAccountRecords(instrumentID, func(r account.Record) error {
		visited += 1
		assert.Equal(t, s.owner.ID(), r.NymID, "owner")
		return nil
	})
	assert.Nil(t, err, "visit")
	assert.Equal(t, 3, visited, "visited")

	assert.Nil(t, records.EraseAccountRecord(instrumentID, ids[0]), "erase")
	assert.Equal(t, fault.AccountRecordNotFound, records.EraseAccountRecord(instrumentID, ids[0]), "erase twice")

	err = records.VisitAccountRecords(instrumentID, func(r account.Record) error {
		return fault.InvalidCount
	})
	assert.Equal(t, fault.InvalidCount, err, "visitor error stops")

	visited = 0
	err = records.VisitAccountRecords(identifier.FromData([]byte("gold")), func(r account.Record) error {
		visited += 1
		return nil
	})
	assert.Nil(t, err, "visit empty")
	assert.Equal(t, 0, visited, "nothing indexed")
}

func TestVoucherList(t *testing.T) {
	s, cleanup := newSetup(t)
	defer cleanup()

	_, err := account.LoadList(s.engine, s.folders, account.Simple, notaryID, s.server.ID())
	assert.Equal(t, fault.InvalidAccountType, err, "simple is not internal")

	list, err := account.LoadList(s.engine, s.folders, account.Voucher, notaryID, s.server.ID())
	assert.Nil(t, err, "load list")

	a, created, err := list.GetOrRegisterAccount(s.server, instrumentID)
	assert.Nil(t, err, "register")
	assert.True(t, created, "created")
	assert.Equal(t, account.Voucher, a.Type, "type")
	assert.Equal(t, s.server.ID(), a.NymID, "owned by notary")

	again, created, err := list.GetOrRegisterAccount(s.server, instrumentID)
	assert.Nil(t, err, "get")
	assert.False(t, created, "existing")
	assert.Equal(t, a.ID, again.ID, "same account")

	reloaded, err := account.LoadList(s.engine, s.folders, account.Voucher, notaryID, s.server.ID())
	assert.Nil(t, err, "reload list")
	assert.Equal(t, 1, reloaded.Count(), "count")
}
