// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"github.com/wigggles/opentxs-sub024/account"
	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
)

// receipt item for each receipt transaction type
var receiptItems = map[ledger.TransactionType]ledger.ItemType{
	ledger.TxMarketReceipt:   ledger.ItemMarketReceipt,
	ledger.TxPaymentReceipt:  ledger.ItemPaymentReceipt,
	ledger.TxTransferReceipt: ledger.ItemTransferReceipt,
	ledger.TxChequeReceipt:   ledger.ItemChequeReceipt,
	ledger.TxVoucherReceipt:  ledger.ItemVoucherReceipt,
	ledger.TxFinalReceipt:    ledger.ItemFinalReceipt,
}

// newReceipt - notary issued receipt carrying one acknowledged item
func (s *Server) newReceipt(txType ledger.TransactionType, nymID identifier.Identifier, accountID identifier.Identifier, number int64, amount int64) *ledger.Transaction {
	t := ledger.NewTransaction(txType, s.notaryID, nymID, accountID, number)
	itemType, ok := receiptItems[txType]
	if !ok {
		itemType = ledger.ItemNotice
	}
	item := ledger.NewItem(itemType, accountID)
	item.Status = ledger.StatusAcknowledgement
	item.Amount = amount
	t.AddItem(item)
	return t
}

// addToBox - sign and box a transaction, the box is saved by the caller
func (s *Server) addToBox(box *ledger.Ledger, t *ledger.Transaction) error {
	if box.Count() >= s.currentSettings().MaximumBoxSize {
		s.log.Warnf("%s: %s  is full", box.Type, box.AccountID)
		return fault.BoxFull
	}
	if err := t.Sign(s.notary); nil != err {
		return err
	}
	return box.AddTransaction(t)
}

// deliverToNymbox - box a transaction in a nymbox and save it
func (s *Server) deliverToNymbox(nymID identifier.Identifier, t *ledger.Transaction) error {
	unlock := s.locks.nymboxes.lock(nymID)
	defer unlock()

	nymbox, err := ledger.LoadOrCreate(s.folders, ledger.Nymbox, nymID, nymID, s.notaryID)
	if nil != err {
		return err
	}
	if err := s.addToBox(nymbox, t); nil != err {
		return err
	}
	return nymbox.SaveLedger(s.folders, s.notary)
}

// nymboxHash - current hash of a nym's nymbox, zero if it has none
func (s *Server) nymboxHash(nymID identifier.Identifier) identifier.Identifier {
	unlock := s.locks.nymboxes.lock(nymID)
	defer unlock()

	nymbox, err := ledger.LoadLedger(s.folders, ledger.Nymbox, nymID, nymID, s.notaryID)
	if nil != err {
		return identifier.Zero
	}
	return nymbox.Hash()
}

// saveAccountAndInbox - store a changed inbox, then the account
// holding its hash
func (s *Server) saveAccountAndInbox(a *account.Account, inbox *ledger.Ledger) error {
	if nil != inbox {
		if err := a.SaveInbox(s.folders, inbox, s.notary); nil != err {
			return err
		}
	}
	return a.Save(s.folders, s.notary)
}

// loadOwnedAccount - an account of the nym that is still open
func (s *Server) loadOwnedAccount(accountID identifier.Identifier, nymID identifier.Identifier) (*account.Account, error) {
	if accountID.IsZero() {
		return nil, fault.MissingParameters
	}
	a, err := account.LoadAccount(s.folders, accountID, s.notaryID)
	if nil != err {
		return nil, err
	}
	if err := a.VerifyOwner(nymID); nil != err {
		return nil, err
	}
	if a.IsMarkedForDeletion() {
		return nil, fault.AccountMarkedForDeletion
	}
	return a, nil
}

// payload helpers, raw files travel armored inside messages

func encodePayload(raw []byte) string {
	return armor.EncodeData(armor.LabelPayload, raw)
}

func decodePayload(text string) ([]byte, error) {
	if "" == text {
		return nil, fault.MissingParameters
	}
	return armor.DecodeData(text, armor.LabelPayload)
}
