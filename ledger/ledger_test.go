// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/storage"
)

var (
	notaryID  = identifier.FromData([]byte("notary"))
	accountID = identifier.FromData([]byte("account"))
)

func TestReplyTypes(t *testing.T) {
	assert.Equal(t, ledger.TxAtTransfer, ledger.TxTransfer.ReplyType(), "transfer")
	assert.Equal(t, ledger.TxAtProcessInbox, ledger.TxProcessInbox.ReplyType(), "process inbox")
	assert.Equal(t, ledger.TxAtTransfer, ledger.TxAtTransfer.ReplyType(), "already a reply")
	assert.True(t, ledger.TxAtDeposit.IsReply(), "reply")
	assert.False(t, ledger.TxDeposit.IsReply(), "request")
	assert.Equal(t, ledger.ItemAtAcceptPending, ledger.ItemAcceptPending.ReplyType(), "item")
	assert.True(t, ledger.TxChequeReceipt.IsReceipt(), "receipt")
	assert.False(t, ledger.TxPending.IsReceipt(), "pending")
}

func TestNumbers(t *testing.T) {
	n, err := ledger.ParseNumbers(ledger.FormatNumbers([]int64{5, 3, 9}))
	assert.Nil(t, err, "parse")
	assert.Equal(t, []int64{5, 3, 9}, n, "numbers")
	assert.Equal(t, []int64{3, 5, 9}, ledger.SortNumbers(n), "sorted")

	n, err = ledger.ParseNumbers("")
	assert.Nil(t, err, "parse empty")
	assert.Equal(t, 0, len(n), "empty")

	_, err = ledger.ParseNumbers("1,x")
	assert.Equal(t, fault.InvalidCount, err, "bad numbers")
	_, err = ledger.ParseNumbers("0")
	assert.Equal(t, fault.InvalidCount, err, "zero")
}

func TestTransactionRoundTrip(t *testing.T) {
	owner := newNym(t, "owner")

	tx := ledger.NewTransaction(ledger.TxTransfer, notaryID, owner.ID(), accountID, 42)
	item := ledger.NewItem(ledger.ItemTransfer, accountID)
	item.Amount = 100
	item.DestinationAccountID = identifier.FromData([]byte("other"))
	item.Note = "for lunch"
	tx.AddItem(item)
	tx.AddItem(ledger.BalanceStatement(accountID, -100, []int64{42, 43}))
	assert.Nil(t, tx.Sign(owner), "sign")

	parsed, err := ledger.ParseTransaction(tx.Contract.RawFile())
	assert.Nil(t, err, "parse")
	assert.Equal(t, tx.Number, parsed.Number, "number")
	assert.Equal(t, tx.Date, parsed.Date, "date")
	assert.Equal(t, int64(100), parsed.Amount(), "amount")
	assert.Equal(t, tx.ReceiptHash(), parsed.ReceiptHash(), "receipt hash")

	transfer, ok := parsed.Item(ledger.ItemTransfer)
	assert.True(t, ok, "transfer item")
	assert.Equal(t, "for lunch", transfer.Note, "note")
	assert.Equal(t, item.DestinationAccountID, transfer.DestinationAccountID, "destination")

	statement, ok := parsed.Item(ledger.ItemBalanceStatement)
	assert.True(t, ok, "statement")
	assert.Equal(t, int64(-100), statement.Amount, "statement amount")
	assert.Equal(t, []int64{42, 43}, statement.Numbers, "statement numbers")

	assert.Nil(t, parsed.Contract.VerifySignature(owner, owner.ID()), "signature")

	reply := transfer.Reply(true)
	assert.Equal(t, ledger.ItemAtTransfer, reply.Type, "reply type")
	assert.True(t, reply.IsAcknowledged(), "acknowledged")
	assert.False(t, transfer.Reply(false).IsAcknowledged(), "rejected")
}

func TestLedgerSaveLoad(t *testing.T) {
	dir, cleanup := fixtures.TempDirectory("ledger")
	defer cleanup()
	folders, err := storage.NewFolders(dir)
	assert.Nil(t, err, "folders")

	server := newNym(t, "server")
	owner := newNym(t, "owner")

	inbox := ledger.New(ledger.Inbox, owner.ID(), accountID, notaryID)
	emptyHash := inbox.Hash()

	pending := ledger.NewTransaction(ledger.TxPending, notaryID, owner.ID(), accountID, 7)
	pending.InReferenceTo = 6
	item := ledger.NewItem(ledger.ItemTransfer, accountID)
	item.Amount = 25
	pending.AddItem(item)

	assert.Equal(t, fault.ContractNotSigned, inbox.AddTransaction(pending), "unsigned")
	assert.Nil(t, pending.Sign(server), "sign pending")
	assert.Nil(t, inbox.AddTransaction(pending), "add")
	assert.Equal(t, fault.DuplicateTransaction, inbox.AddTransaction(pending), "duplicate")
	assert.NotEqual(t, emptyHash, inbox.Hash(), "hash changes")

	assert.Nil(t, inbox.SaveLedger(folders, server), "save")

	loaded, err := ledger.LoadLedger(folders, ledger.Inbox, owner.ID(), accountID, notaryID)
	assert.Nil(t, err, "load")
	assert.Equal(t, 1, loaded.Count(), "count")
	assert.Equal(t, inbox.Hash(), loaded.Hash(), "hash")
	assert.Nil(t, loaded.Contract.VerifySignature(server, server.ID()), "server signature")

	e, ok := loaded.EntryByReference(6)
	assert.True(t, ok, "by reference")
	assert.Equal(t, int64(25), e.Amount, "entry amount")

	_, ok = loaded.Transaction(7)
	assert.False(t, ok, "only abbreviated after load")
	full, err := loaded.LoadBoxReceipt(folders, 7)
	assert.Nil(t, err, "box receipt")
	assert.Equal(t, pending.ReceiptHash(), full.ReceiptHash(), "receipt hash")

	_, err = ledger.LoadLedger(folders, ledger.Inbox, server.ID(), accountID, notaryID)
	assert.Equal(t, fault.LedgerOwnerMismatch, err, "wrong owner")

	assert.True(t, loaded.RemoveTransaction(7), "remove")
	assert.False(t, loaded.RemoveTransaction(7), "remove again")
	assert.Nil(t, loaded.SaveLedger(folders, server), "save after remove")

	_, err = loaded.LoadBoxReceipt(folders, 7)
	assert.Equal(t, fault.TransactionNotFound, err, "entry removed")
	assert.Equal(t, fault.FileNotFound, loaded.DeleteBoxReceipt(folders, 7), "receipt deleted")
}

func TestSaveLedgerReceiptAlreadyGone(t *testing.T) {
	dir, cleanup := fixtures.TempDirectory("ledger")
	defer cleanup()
	folders, err := storage.NewFolders(dir)
	assert.Nil(t, err, "folders")

	server := newNym(t, "server")
	owner := newNym(t, "owner")

	outbox := ledger.New(ledger.Outbox, owner.ID(), accountID, notaryID)
	pending := ledger.NewTransaction(ledger.TxPending, notaryID, owner.ID(), accountID, 9)
	pending.AddItem(ledger.NewItem(ledger.ItemTransfer, accountID))
	assert.Nil(t, pending.Sign(server), "sign pending")
	assert.Nil(t, outbox.AddTransaction(pending), "add")
	assert.Nil(t, outbox.SaveLedger(folders, server), "save")

	assert.Nil(t, outbox.DeleteBoxReceipt(folders, 9), "receipt removed early")
	assert.True(t, outbox.RemoveTransaction(9), "remove")
	assert.Nil(t, outbox.SaveLedger(folders, server), "save without receipt")

	loaded, err := ledger.LoadLedger(folders, ledger.Outbox, owner.ID(), accountID, notaryID)
	assert.Nil(t, err, "load")
	assert.Equal(t, 0, loaded.Count(), "entry still present")
}

func TestBoxReceiptMismatch(t *testing.T) {
	server := newNym(t, "server")
	owner := newNym(t, "owner")

	inbox := ledger.New(ledger.Inbox, owner.ID(), accountID, notaryID)
	tx := ledger.NewTransaction(ledger.TxChequeReceipt, notaryID, owner.ID(), accountID, 9)
	assert.Nil(t, tx.Sign(server), "sign")
	assert.Nil(t, inbox.AddTransaction(tx), "add")

	other := ledger.NewTransaction(ledger.TxChequeReceipt, notaryID, owner.ID(), accountID, 9)
	other.InReferenceTo = 3
	assert.Nil(t, other.Sign(server), "sign other")
	assert.Equal(t, fault.BoxReceiptHashMismatch, inbox.VerifyBoxReceipt(other), "mismatch")
	assert.Nil(t, inbox.VerifyBoxReceipt(tx), "match")
}

func TestNymboxAndMessageLedger(t *testing.T) {
	dir, cleanup := fixtures.TempDirectory("ledger")
	defer cleanup()
	folders, err := storage.NewFolders(dir)
	assert.Nil(t, err, "folders")

	server := newNym(t, "server")
	owner := newNym(t, "owner")

	nymbox, err := ledger.LoadOrCreate(folders, ledger.Nymbox, owner.ID(), identifier.Zero, notaryID)
	assert.Nil(t, err, "load or create")
	assert.Equal(t, owner.ID(), nymbox.AccountID, "nymbox account is nym")
	assert.Nil(t, nymbox.SaveLedger(folders, server), "save")

	_, err = ledger.LoadLedger(folders, ledger.Nymbox, owner.ID(), identifier.Zero, notaryID)
	assert.Nil(t, err, "load nymbox")

	m := ledger.New(ledger.Message, owner.ID(), accountID, notaryID)
	assert.Equal(t, fault.InvalidLedgerType, m.SaveLedger(folders, server), "message ledger is not stored")
	assert.Nil(t, m.Sign(owner), "sign message ledger")
	parsed, err := ledger.ParseLedger(m.Contract.RawFile())
	assert.Nil(t, err, "parse")
	assert.Equal(t, ledger.Message, parsed.Type, "type")
}
