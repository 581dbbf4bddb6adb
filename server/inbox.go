// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"github.com/wigggles/opentxs-sub024/account"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/message"
	"github.com/wigggles/opentxs-sub024/nym"
	"github.com/wigggles/opentxs-sub024/transactor"
)

// receipt types each inbox item may answer
var inboxItems = map[ledger.ItemType][]ledger.TransactionType{
	ledger.ItemAcceptPending:      {ledger.TxPending},
	ledger.ItemRejectPending:      {ledger.TxPending},
	ledger.ItemAcceptItemReceipt:  {ledger.TxTransferReceipt, ledger.TxChequeReceipt, ledger.TxVoucherReceipt},
	ledger.ItemAcceptCronReceipt:  {ledger.TxMarketReceipt, ledger.TxPaymentReceipt},
	ledger.ItemDisputeCronReceipt: {ledger.TxMarketReceipt, ledger.TxPaymentReceipt},
	ledger.ItemAcceptFinalReceipt: {ledger.TxFinalReceipt},
}

// the sender side of a pending transfer being settled
type counterparty struct {
	account *account.Account
	inbox   *ledger.Ledger
	outbox  *ledger.Ledger
}

// processInbox - settle pending transfers and clear receipts
//
// the whole request is checked against the balance statement before
// any account, box or number changes
func (s *Server) processInbox(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	t, err := s.parseRequestTransaction(request, sender, ledger.TxProcessInbox)
	if nil != err {
		return nil, err
	}
	if err := s.transactor.VerifyAvailable(t.NymID, t.Number); nil != err {
		return nil, err
	}

	others, err := s.pendingSources(t)
	if nil != err {
		return nil, err
	}

	unlock := s.locks.accounts.lock(append(others, t.AccountID)...)
	defer unlock()

	a, err := s.loadOwnedAccount(t.AccountID, t.NymID)
	if nil != err {
		return nil, err
	}
	inbox, err := a.LoadInbox(s.folders)
	if nil != err {
		return nil, err
	}
	parties := make(map[identifier.Identifier]*counterparty)
	for _, id := range others {
		other, err := account.LoadAccount(s.folders, id, s.notaryID)
		if nil != err {
			return nil, err
		}
		otherInbox, err := other.LoadInbox(s.folders)
		if nil != err {
			return nil, err
		}
		otherOutbox, err := other.LoadOutbox(s.folders)
		if nil != err {
			return nil, err
		}
		parties[id] = &counterparty{account: other, inbox: otherInbox, outbox: otherOutbox}
	}

	result := s.replyTo(t)
	closing := []int64{}
	seen := make(map[int64]struct{})
	type settlement struct {
		receipt  *ledger.Transaction
		accepted bool
	}
	settlements := []settlement{}
	remove := []int64{}

	for _, item := range t.Items {
		allowed, ok := inboxItems[item.Type]
		if !ok {
			switch item.Type {
			case ledger.ItemBalanceStatement, ledger.ItemTransactionStatement:
				continue
			}
			return nil, fault.InvalidItemType
		}
		if _, ok := seen[item.InReferenceTo]; ok {
			return nil, fault.DuplicateTransaction
		}
		seen[item.InReferenceTo] = struct{}{}

		entry, ok := inbox.Entry(item.InReferenceTo)
		if !ok {
			return nil, fault.ReceiptNotFound
		}
		if !entryIs(entry.Type, allowed) {
			return nil, fault.InvalidItemType
		}
		receipt, err := inbox.LoadBoxReceipt(s.folders, entry.Number)
		if nil != err {
			return nil, err
		}

		switch item.Type {
		case ledger.ItemAcceptPending, ledger.ItemRejectPending:
			if _, ok := parties[receipt.AccountID]; !ok {
				return nil, fault.ReceiptNotFound
			}
			accepted := ledger.ItemAcceptPending == item.Type
			if accepted {
				if err := a.Credit(receipt.Amount()); nil != err {
					return nil, err
				}
			}
			settlements = append(settlements, settlement{receipt: receipt, accepted: accepted})

		case ledger.ItemAcceptItemReceipt:
			if ledger.TxVoucherReceipt != entry.Type {
				closing = s.closeIfOutstanding(closing, t.NymID, receipt.InReferenceTo)
			}

		case ledger.ItemAcceptFinalReceipt:
			closing = s.closeIfOutstanding(closing, t.NymID, receipt.ClosingNumber)

		case ledger.ItemDisputeCronReceipt:
			s.log.Warnf("disputed: %d  account: %s  nym: %s", entry.Number, t.AccountID, t.NymID)
			result.AddItem(item.Reply(false))
			continue
		}
		remove = append(remove, entry.Number)
		result.AddItem(item.Reply(true))
	}
	if 0 == len(result.Items) {
		return nil, fault.MissingParameters
	}

	balance := a.Balance()
	statement, err := s.verifyStatement(t, &balance, append(closing, t.Number)...)
	if nil != err {
		return nil, err
	}

	for _, n := range remove {
		inbox.RemoveTransaction(n)
	}
	for _, settled := range settlements {
		p := parties[settled.receipt.AccountID]
		amount := settled.receipt.Amount()
		p.outbox.RemoveTransaction(settled.receipt.Number)
		if !settled.accepted {
			if err := p.account.Credit(amount); nil != err {
				return nil, err
			}
		}
		number, err := s.transactor.IssueNextTransactionNumber()
		if nil != err {
			return nil, err
		}
		delta := int64(0)
		if !settled.accepted {
			delta = amount
		}
		receipt := s.newReceipt(ledger.TxTransferReceipt, p.account.NymID, p.account.ID, number, delta)
		receipt.InReferenceTo = settled.receipt.Number
		receipt.Cancelled = !settled.accepted
		receipt.Items[0].DestinationAccountID = t.AccountID
		if err := s.addToBox(p.inbox, receipt); nil != err {
			return nil, err
		}
	}

	if err := s.transactor.Consume(t.NymID, t.Number); nil != err {
		return nil, err
	}
	if err := s.transactor.Close(t.NymID, append(closing, t.Number)...); nil != err {
		if e := s.transactor.Restore(t.NymID, t.Number); nil != e {
			s.log.Errorf("restore number: %d  error: %s", t.Number, e)
		}
		return nil, err
	}

	if err := s.saveAccountAndInbox(a, inbox); nil != err {
		s.log.Errorf("process inbox: %s  save error: %s", t.AccountID, err)
		return nil, err
	}
	for id, p := range parties {
		if err := p.account.SaveOutbox(s.folders, p.outbox, s.notary); nil != err {
			s.log.Errorf("process inbox: %s  save sender: %s  error: %s", t.AccountID, id, err)
			return nil, err
		}
		if err := s.saveAccountAndInbox(p.account, p.inbox); nil != err {
			s.log.Errorf("process inbox: %s  save sender: %s  error: %s", t.AccountID, id, err)
			return nil, err
		}
	}

	result.AddItem(statement.Reply(true))
	reply, err := s.transactionReply(request, result)
	if nil != err {
		return nil, err
	}
	reply.AccountID = t.AccountID
	reply.InboxHash = inbox.Hash()
	return reply, nil
}

func entryIs(txType ledger.TransactionType, allowed []ledger.TransactionType) bool {
	for _, a := range allowed {
		if a == txType {
			return true
		}
	}
	return false
}

func (s *Server) closeIfOutstanding(closing []int64, nymID identifier.Identifier, n int64) []int64 {
	if n > 0 && transactor.Outstanding == s.transactor.State(nymID, n) {
		for _, c := range closing {
			if c == n {
				return closing
			}
		}
		return append(closing, n)
	}
	return closing
}

// pendingSources - the sending accounts of pending transfers the
// request settles, read under the account's own lock
func (s *Server) pendingSources(t *ledger.Transaction) ([]identifier.Identifier, error) {
	unlock := s.locks.accounts.lock(t.AccountID)
	defer unlock()

	a, err := s.loadOwnedAccount(t.AccountID, t.NymID)
	if nil != err {
		return nil, err
	}
	inbox, err := a.LoadInbox(s.folders)
	if nil != err {
		return nil, err
	}
	result := []identifier.Identifier{}
	seen := make(map[identifier.Identifier]struct{})
	for _, item := range t.Items {
		if ledger.ItemAcceptPending != item.Type && ledger.ItemRejectPending != item.Type {
			continue
		}
		receipt, err := inbox.LoadBoxReceipt(s.folders, item.InReferenceTo)
		if nil != err {
			return nil, err
		}
		if _, ok := seen[receipt.AccountID]; ok {
			continue
		}
		seen[receipt.AccountID] = struct{}{}
		result = append(result, receipt.AccountID)
	}
	return result, nil
}
