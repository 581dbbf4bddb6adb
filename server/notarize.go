// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"math"
	"time"

	"github.com/wigggles/opentxs-sub024/account"
	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/message"
	"github.com/wigggles/opentxs-sub024/nym"
	"github.com/wigggles/opentxs-sub024/storage"
	"github.com/wigggles/opentxs-sub024/transactor"
)

// notarizeTransaction - one signed transaction against the sender's
// account
//
// all checks run before any number moves or any file is written
func (s *Server) notarizeTransaction(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	t, err := s.parseRequestTransaction(request, sender,
		ledger.TxTransfer,
		ledger.TxDeposit,
		ledger.TxWithdrawal,
		ledger.TxPayDividend,
		ledger.TxMarketOffer,
		ledger.TxPaymentPlan,
		ledger.TxSmartContract,
		ledger.TxCancelCronItem,
	)
	if nil != err {
		return nil, err
	}
	if err := s.transactor.VerifyAvailable(t.NymID, t.Number); nil != err {
		return nil, err
	}

	var result *ledger.Transaction
	switch t.Type {
	case ledger.TxTransfer:
		result, err = s.transfer(t)
	case ledger.TxDeposit:
		result, err = s.deposit(t)
	case ledger.TxWithdrawal:
		result, err = s.withdrawVoucher(t)
	case ledger.TxPayDividend:
		result, err = s.payDividend(t)
	case ledger.TxMarketOffer:
		result, err = s.marketOffer(t, sender)
	case ledger.TxPaymentPlan:
		result, err = s.paymentPlan(t, sender)
	case ledger.TxSmartContract:
		result, err = s.smartContract(t)
	case ledger.TxCancelCronItem:
		result, err = s.cancelCronItem(t)
	}
	if nil != err {
		return nil, err
	}
	s.log.Infof("%s: %d  nym: %s  account: %s", t.Type, t.Number, t.NymID, t.AccountID)
	return s.transactionReply(request, result)
}

// replyTo - empty reply transaction
func (s *Server) replyTo(t *ledger.Transaction) *ledger.Transaction {
	result := ledger.NewTransaction(t.Type.ReplyType(), s.notaryID, t.NymID, t.AccountID, t.Number)
	result.InReferenceTo = t.Number
	return result
}

// verifyStatement - the owner agrees on the balance and on the
// numbers they hold once the transaction completes
//
// a nil balance asks for a transaction statement
func (s *Server) verifyStatement(t *ledger.Transaction, balance *int64, closed ...int64) (*ledger.Item, error) {
	itemType := ledger.ItemTransactionStatement
	if nil != balance {
		itemType = ledger.ItemBalanceStatement
	}
	item, ok := t.Item(itemType)
	if !ok {
		return nil, fault.MissingParameters
	}
	if nil != balance && item.Amount != *balance {
		s.log.Warnf("balance statement: %d  expected: %d  account: %s", item.Amount, *balance, t.AccountID)
		return nil, fault.BalanceMismatch
	}

	gone := make(map[int64]struct{})
	for _, n := range closed {
		gone[n] = struct{}{}
	}
	expected := []int64{}
	for _, n := range s.transactor.NumbersForNym(t.NymID).Issued() {
		if _, ok := gone[n]; !ok {
			expected = append(expected, n)
		}
	}
	if !sameNumbers(expected, item.Numbers) {
		return nil, fault.StatementMismatch
	}
	return item, nil
}

func sameNumbers(a []int64, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	a = ledger.SortNumbers(a)
	b = ledger.SortNumbers(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// useNumber - available straight to closed
func (s *Server) useNumber(nymID identifier.Identifier, n int64) error {
	if err := s.transactor.Consume(nymID, n); nil != err {
		return err
	}
	return s.transactor.Close(nymID, n)
}

// transfer - debit now, the pending entry waits in the recipient's
// inbox; the number stays outstanding until the transfer receipt is
// accepted
func (s *Server) transfer(t *ledger.Transaction) (*ledger.Transaction, error) {
	item, ok := t.Item(ledger.ItemTransfer)
	if !ok {
		return nil, fault.MissingParameters
	}
	if item.Amount <= 0 {
		return nil, fault.InvalidAmount
	}
	if item.AccountID != t.AccountID {
		return nil, fault.IdentifierMismatch
	}
	destination := item.DestinationAccountID
	if destination.IsZero() {
		return nil, fault.MissingParameters
	}
	if destination == t.AccountID {
		return nil, fault.SameAccount
	}

	unlock := s.locks.accounts.lock(t.AccountID, destination)
	defer unlock()

	from, err := s.loadOwnedAccount(t.AccountID, t.NymID)
	if nil != err {
		return nil, err
	}
	to, err := account.LoadAccount(s.folders, destination, s.notaryID)
	if nil != err {
		return nil, err
	}
	if to.IsMarkedForDeletion() {
		return nil, fault.AccountMarkedForDeletion
	}
	if from.InstrumentID != to.InstrumentID {
		return nil, fault.AssetMismatch
	}
	outbox, err := from.LoadOutbox(s.folders)
	if nil != err {
		return nil, err
	}
	inbox, err := to.LoadInbox(s.folders)
	if nil != err {
		return nil, err
	}

	if err := from.Debit(item.Amount); nil != err {
		return nil, err
	}
	balance := from.Balance()
	statement, err := s.verifyStatement(t, &balance)
	if nil != err {
		return nil, err
	}

	if err := s.addToBox(outbox, s.pending(t, item)); nil != err {
		return nil, err
	}
	if err := s.addToBox(inbox, s.pending(t, item)); nil != err {
		return nil, err
	}
	saved, err := s.transferSnapshot(from, to)
	if nil != err {
		return nil, err
	}
	if err := s.transactor.Consume(t.NymID, t.Number); nil != err {
		return nil, err
	}

	err = from.SaveOutbox(s.folders, outbox, s.notary)
	if nil == err {
		err = from.Save(s.folders, s.notary)
	}
	if nil == err {
		err = s.saveAccountAndInbox(to, inbox)
	}
	if nil != err {
		s.log.Errorf("transfer: %d  from: %s  to: %s  error: %s", t.Number, from.ID, to.ID, err)
		if e := saved.restore(); nil != e {
			s.log.Criticalf("transfer: %d  restore files error: %s", t.Number, e)
		}
		if e := s.transactor.Restore(t.NymID, t.Number); nil != e {
			s.log.Criticalf("transfer: %d  restore number error: %s", t.Number, e)
		}
		return nil, err
	}

	result := s.replyTo(t)
	result.AddItem(item.Reply(true))
	result.AddItem(statement.Reply(true))
	return result, nil
}

// transferSnapshot - the files a transfer rewrites
func (s *Server) transferSnapshot(from *account.Account, to *account.Account) (*snapshot, error) {
	saved := newSnapshot(s.folders)
	outboxFolder, err := ledger.Outbox.Folder()
	if nil != err {
		return nil, err
	}
	inboxFolder, err := ledger.Inbox.Folder()
	if nil != err {
		return nil, err
	}
	files := []struct {
		folder string
		name   string
	}{
		{outboxFolder, from.ID.String()},
		{storage.Accounts, from.ID.String()},
		{inboxFolder, to.ID.String()},
		{storage.Accounts, to.ID.String()},
	}
	for _, f := range files {
		if err := saved.add(f.folder, f.name); nil != err {
			return nil, err
		}
	}
	return saved, nil
}

func (s *Server) pending(t *ledger.Transaction, item *ledger.Item) *ledger.Transaction {
	p := ledger.NewTransaction(ledger.TxPending, s.notaryID, t.NymID, t.AccountID, t.Number)
	p.InReferenceTo = t.Number
	i := ledger.NewItem(ledger.ItemTransfer, t.AccountID)
	i.Status = ledger.StatusAcknowledgement
	i.Amount = item.Amount
	i.DestinationAccountID = item.DestinationAccountID
	i.Note = item.Note
	p.AddItem(i)
	return p
}

// deposit - cash a cheque or a voucher into the sender's account
func (s *Server) deposit(t *ledger.Transaction) (*ledger.Transaction, error) {
	item, ok := t.Item(ledger.ItemDepositCheque)
	if !ok {
		return nil, fault.MissingParameters
	}
	if item.AccountID != t.AccountID {
		return nil, fault.IdentifierMismatch
	}
	raw, err := armor.DecodeData(item.Attachment, armor.LabelInstrument)
	if nil != err {
		return nil, err
	}
	cheque, err := contract.ParseCheque(raw)
	if nil != err {
		return nil, err
	}
	if cheque.NotaryID != s.notaryID {
		return nil, fault.NotaryMismatch
	}
	if cheque.Amount <= 0 {
		return nil, fault.InvalidAmount
	}
	if !cheque.IsValidAt(time.Now().UTC()) {
		return nil, fault.ExpiredInstrument
	}
	if cheque.HasRecipient() && cheque.RecipientNymID != t.NymID {
		return nil, fault.IdentifierMismatch
	}
	if cheque.SenderAccountID == t.AccountID {
		return nil, fault.SameAccount
	}

	var statement *ledger.Item
	if cheque.Voucher {
		statement, err = s.depositVoucher(t, cheque)
	} else {
		statement, err = s.depositCheque(t, item, cheque)
	}
	if nil != err {
		return nil, err
	}

	result := s.replyTo(t)
	result.AddItem(item.Reply(true))
	result.AddItem(statement.Reply(true))
	return result, nil
}

// depositCheque - the drawer's number goes outstanding and a cheque
// receipt in their inbox closes it
func (s *Server) depositCheque(t *ledger.Transaction, item *ledger.Item, cheque *contract.Cheque) (*ledger.Item, error) {
	drawer, err := s.loadNym(cheque.SenderNymID)
	if nil != err {
		return nil, err
	}
	if err := cheque.Contract.VerifySignature(drawer, cheque.SenderNymID); nil != err {
		return nil, err
	}
	if err := s.transactor.VerifyAvailable(cheque.SenderNymID, cheque.TransactionNumber); nil != err {
		return nil, err
	}

	unlock := s.locks.accounts.lock(t.AccountID, cheque.SenderAccountID)
	defer unlock()

	depositor, err := s.loadOwnedAccount(t.AccountID, t.NymID)
	if nil != err {
		return nil, err
	}
	from, err := s.loadOwnedAccount(cheque.SenderAccountID, cheque.SenderNymID)
	if nil != err {
		return nil, err
	}
	if from.InstrumentID != cheque.InstrumentID || depositor.InstrumentID != cheque.InstrumentID {
		return nil, fault.AssetMismatch
	}
	drawerInbox, err := from.LoadInbox(s.folders)
	if nil != err {
		return nil, err
	}

	if err := from.Debit(cheque.Amount); nil != err {
		return nil, err
	}
	if err := depositor.Credit(cheque.Amount); nil != err {
		return nil, err
	}
	balance := depositor.Balance()
	statement, err := s.verifyStatement(t, &balance, t.Number)
	if nil != err {
		return nil, err
	}

	number, err := s.transactor.IssueNextTransactionNumber()
	if nil != err {
		return nil, err
	}
	receipt := s.newReceipt(ledger.TxChequeReceipt, cheque.SenderNymID, from.ID, number, -cheque.Amount)
	receipt.InReferenceTo = cheque.TransactionNumber
	receipt.Items[0].Attachment = item.Attachment
	if err := s.addToBox(drawerInbox, receipt); nil != err {
		return nil, err
	}

	if err := s.transactor.Consume(cheque.SenderNymID, cheque.TransactionNumber); nil != err {
		return nil, err
	}
	if err := s.useNumber(t.NymID, t.Number); nil != err {
		if e := s.transactor.Restore(cheque.SenderNymID, cheque.TransactionNumber); nil != e {
			s.log.Errorf("restore cheque number: %d  error: %s", cheque.TransactionNumber, e)
		}
		return nil, err
	}

	if err := s.saveAccountAndInbox(from, drawerInbox); nil != err {
		s.log.Errorf("cheque: %d  save drawer: %s  error: %s", cheque.TransactionNumber, from.ID, err)
		return nil, err
	}
	if err := depositor.Save(s.folders, s.notary); nil != err {
		s.log.Errorf("cheque: %d  save depositor: %s  error: %s", cheque.TransactionNumber, depositor.ID, err)
		return nil, err
	}
	return statement, nil
}

// depositVoucher - pay from the voucher reserve and close the
// remitter's number, the remitter is told through their nymbox
func (s *Server) depositVoucher(t *ledger.Transaction, voucher *contract.Cheque) (*ledger.Item, error) {
	if voucher.SenderNymID != s.notary.ID() {
		return nil, fault.IdentifierMismatch
	}
	if err := voucher.Contract.VerifySignature(s.notary, s.notary.ID()); nil != err {
		return nil, err
	}
	reserve, _, err := s.vouchers.GetOrRegisterAccount(s.notary, voucher.InstrumentID)
	if nil != err {
		return nil, err
	}
	if reserve.ID != voucher.SenderAccountID {
		return nil, fault.IdentifierMismatch
	}
	if err := s.transactor.VerifyOutstanding(voucher.RemitterNymID, voucher.TransactionNumber); nil != err {
		return nil, err
	}

	statement, err := func() (*ledger.Item, error) {
		unlock := s.locks.accounts.lock(t.AccountID, reserve.ID)
		defer unlock()

		reserve, err := account.LoadAccount(s.folders, reserve.ID, s.notaryID)
		if nil != err {
			return nil, err
		}
		depositor, err := s.loadOwnedAccount(t.AccountID, t.NymID)
		if nil != err {
			return nil, err
		}
		if depositor.InstrumentID != voucher.InstrumentID {
			return nil, fault.AssetMismatch
		}
		if err := reserve.Debit(voucher.Amount); nil != err {
			return nil, err
		}
		if err := depositor.Credit(voucher.Amount); nil != err {
			return nil, err
		}
		balance := depositor.Balance()
		statement, err := s.verifyStatement(t, &balance, t.Number)
		if nil != err {
			return nil, err
		}

		if err := s.transactor.Close(voucher.RemitterNymID, voucher.TransactionNumber); nil != err {
			return nil, err
		}
		if err := s.useNumber(t.NymID, t.Number); nil != err {
			return nil, err
		}
		if err := reserve.Save(s.folders, s.notary); nil != err {
			return nil, err
		}
		if err := depositor.Save(s.folders, s.notary); nil != err {
			return nil, err
		}
		return statement, nil
	}()
	if nil != err {
		return nil, err
	}

	number, err := s.transactor.IssueNextTransactionNumber()
	if nil == err {
		notice := s.newReceipt(ledger.TxVoucherReceipt, voucher.RemitterNymID, voucher.RemitterNymID, number, voucher.Amount)
		notice.InReferenceTo = voucher.TransactionNumber
		err = s.deliverToNymbox(voucher.RemitterNymID, notice)
	}
	if nil != err {
		s.log.Errorf("voucher receipt: %d  remitter: %s  error: %s", voucher.TransactionNumber, voucher.RemitterNymID, err)
	}
	return statement, nil
}

// withdrawVoucher - move funds to the voucher reserve and return a
// notary signed voucher built from the sender's draft
//
// the draft's number stays outstanding until the voucher is deposited
func (s *Server) withdrawVoucher(t *ledger.Transaction) (*ledger.Transaction, error) {
	item, ok := t.Item(ledger.ItemWithdrawVoucher)
	if !ok {
		return nil, fault.MissingParameters
	}
	if item.AccountID != t.AccountID {
		return nil, fault.IdentifierMismatch
	}
	raw, err := armor.DecodeData(item.Attachment, armor.LabelInstrument)
	if nil != err {
		return nil, err
	}
	draft, err := contract.ParseCheque(raw)
	if nil != err {
		return nil, err
	}
	switch {
	case draft.Amount <= 0:
		return nil, fault.InvalidAmount
	case draft.NotaryID != s.notaryID:
		return nil, fault.NotaryMismatch
	case draft.RemitterNymID != t.NymID || draft.RemitterAccountID != t.AccountID:
		return nil, fault.IdentifierMismatch
	case draft.TransactionNumber == t.Number:
		return nil, fault.DuplicateTransaction
	}
	if err := s.transactor.VerifyAvailable(t.NymID, draft.TransactionNumber); nil != err {
		return nil, err
	}

	reserve, _, err := s.vouchers.GetOrRegisterAccount(s.notary, draft.InstrumentID)
	if nil != err {
		return nil, err
	}

	unlock := s.locks.accounts.lock(t.AccountID, reserve.ID)
	defer unlock()

	reserve, err = account.LoadAccount(s.folders, reserve.ID, s.notaryID)
	if nil != err {
		return nil, err
	}
	a, err := s.loadOwnedAccount(t.AccountID, t.NymID)
	if nil != err {
		return nil, err
	}
	if a.InstrumentID != draft.InstrumentID {
		return nil, fault.AssetMismatch
	}
	if err := a.Debit(draft.Amount); nil != err {
		return nil, err
	}
	if err := reserve.Credit(draft.Amount); nil != err {
		return nil, err
	}
	balance := a.Balance()
	statement, err := s.verifyStatement(t, &balance, t.Number)
	if nil != err {
		return nil, err
	}

	voucher := contract.NewCheque()
	voucher.NotaryID = s.notaryID
	voucher.InstrumentID = draft.InstrumentID
	voucher.SenderAccountID = reserve.ID
	voucher.SenderNymID = s.notary.ID()
	voucher.RecipientNymID = draft.RecipientNymID
	voucher.RemitterNymID = t.NymID
	voucher.RemitterAccountID = t.AccountID
	voucher.Amount = draft.Amount
	voucher.TransactionNumber = draft.TransactionNumber
	voucher.ValidFrom = draft.ValidFrom
	voucher.ValidTo = draft.ValidTo
	voucher.Memo = draft.Memo
	voucher.Voucher = true
	if err := voucher.Create(s.notary); nil != err {
		return nil, err
	}

	if err := s.transactor.Consume(t.NymID, t.Number, draft.TransactionNumber); nil != err {
		return nil, err
	}
	if err := s.transactor.Close(t.NymID, t.Number); nil != err {
		return nil, err
	}
	if err := reserve.Save(s.folders, s.notary); nil != err {
		return nil, err
	}
	if err := a.Save(s.folders, s.notary); nil != err {
		return nil, err
	}

	reply := item.Reply(true)
	reply.Attachment = armor.EncodeData(armor.LabelInstrument, voucher.Contract.RawFile())
	result := s.replyTo(t)
	result.AddItem(reply)
	result.AddItem(statement.Reply(true))
	return result, nil
}

type shareholder struct {
	nymID  identifier.Identifier
	amount int64
}

// payDividend - pay every holder of a share instrument an amount per
// share, each holder receives a voucher in their nymbox
//
// the item attachment names the share instrument definition; holder
// balances are read without locking their accounts
func (s *Server) payDividend(t *ledger.Transaction) (*ledger.Transaction, error) {
	item, ok := t.Item(ledger.ItemPayDividend)
	if !ok {
		return nil, fault.MissingParameters
	}
	perShare := item.Amount
	if perShare <= 0 {
		return nil, fault.InvalidAmount
	}
	sharesID, err := identifier.FromString(item.Attachment)
	if nil != err {
		return nil, err
	}
	if sharesID.IsZero() {
		return nil, fault.MissingParameters
	}

	payer, err := s.loadOwnedAccount(t.AccountID, t.NymID)
	if nil != err {
		return nil, err
	}
	if payer.InstrumentID == sharesID {
		return nil, fault.AssetMismatch
	}

	holders := []shareholder{}
	total := int64(0)
	err = s.records.VisitAccountRecords(sharesID, func(r account.Record) error {
		a, err := account.LoadAccount(s.folders, r.AccountID, s.notaryID)
		if nil != err {
			return err
		}
		if account.Simple != a.Type || a.IsMarkedForDeletion() || a.Balance() <= 0 {
			return nil
		}
		if a.Balance() > math.MaxInt64/perShare {
			return fault.InvalidAmount
		}
		amount := a.Balance() * perShare
		if total > math.MaxInt64-amount {
			return fault.InvalidAmount
		}
		total += amount
		holders = append(holders, shareholder{nymID: a.NymID, amount: amount})
		return nil
	})
	if nil != err {
		return nil, err
	}
	if 0 == len(holders) {
		return nil, fault.NoShareholders
	}

	reserve, _, err := s.vouchers.GetOrRegisterAccount(s.notary, payer.InstrumentID)
	if nil != err {
		return nil, err
	}

	statement, numbers, err := func() (*ledger.Item, []int64, error) {
		unlock := s.locks.accounts.lock(t.AccountID, reserve.ID)
		defer unlock()

		reserve, err := account.LoadAccount(s.folders, reserve.ID, s.notaryID)
		if nil != err {
			return nil, nil, err
		}
		payer, err := s.loadOwnedAccount(t.AccountID, t.NymID)
		if nil != err {
			return nil, nil, err
		}
		if err := payer.Debit(total); nil != err {
			return nil, nil, err
		}
		if err := reserve.Credit(total); nil != err {
			return nil, nil, err
		}
		balance := payer.Balance()
		statement, err := s.verifyStatement(t, &balance, t.Number)
		if nil != err {
			return nil, nil, err
		}
		if err := s.useNumber(t.NymID, t.Number); nil != err {
			return nil, nil, err
		}
		numbers, err := s.voucherNumbers(t.NymID, len(holders))
		if nil != err {
			return nil, nil, err
		}
		if err := reserve.Save(s.folders, s.notary); nil != err {
			return nil, nil, err
		}
		if err := payer.Save(s.folders, s.notary); nil != err {
			return nil, nil, err
		}
		return statement, numbers, nil
	}()
	if nil != err {
		return nil, err
	}

	for i, h := range holders {
		voucher := contract.NewCheque()
		voucher.NotaryID = s.notaryID
		voucher.InstrumentID = payer.InstrumentID
		voucher.SenderAccountID = reserve.ID
		voucher.SenderNymID = s.notary.ID()
		voucher.RecipientNymID = h.nymID
		voucher.RemitterNymID = t.NymID
		voucher.RemitterAccountID = t.AccountID
		voucher.Amount = h.amount
		voucher.TransactionNumber = numbers[i]
		voucher.ValidFrom = time.Now().UTC().Truncate(time.Second)
		voucher.Memo = item.Note
		voucher.Voucher = true
		err := voucher.Create(s.notary)
		if nil == err {
			text := armor.EncodeData(armor.LabelInstrument, voucher.Contract.RawFile())
			_, err = s.DropMessageToNymbox(t.NymID, h.nymID, ledger.TxInstrumentNotice, []byte(text))
		}
		if nil != err {
			s.log.Errorf("dividend voucher: %d  holder: %s  error: %s", numbers[i], h.nymID, err)
		}
	}

	reply := item.Reply(true)
	reply.Numbers = numbers
	result := s.replyTo(t)
	result.AddItem(reply)
	result.AddItem(statement.Reply(true))
	return result, nil
}

// voucherNumbers - fresh numbers held outstanding by the remitter,
// one per dividend voucher
func (s *Server) voucherNumbers(nymID identifier.Identifier, count int) ([]int64, error) {
	result := make([]int64, 0, count)
	for len(result) < count {
		n := count - len(result)
		if n > transactor.MaximumIssue {
			n = transactor.MaximumIssue
		}
		numbers, err := s.transactor.IssueNumbersToNym(nymID, n)
		if nil != err {
			return nil, err
		}
		if err := s.transactor.AcceptTentative(nymID, numbers); nil != err {
			return nil, err
		}
		if err := s.transactor.Consume(nymID, numbers...); nil != err {
			return nil, err
		}
		result = append(result, numbers...)
	}
	return result, nil
}
