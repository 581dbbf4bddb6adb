// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/storage"
)

// Type - which box a ledger is
type Type string

// ledger types
const (
	Nymbox       Type = "nymbox"
	Inbox        Type = "inbox"
	Outbox       Type = "outbox"
	PaymentInbox Type = "paymentInbox"
	RecordBox    Type = "recordBox"
	ExpiredBox   Type = "expiredBox"
	Message      Type = "message"
)

var ledgerFolders = map[Type]string{
	Nymbox:       storage.Nymbox,
	Inbox:        storage.Inbox,
	Outbox:       storage.Outbox,
	PaymentInbox: storage.PaymentInbox,
	RecordBox:    storage.RecordBox,
	ExpiredBox:   storage.ExpiredBox,
}

// Folder - storage folder of a box, message ledgers are never stored
func (t Type) Folder() (string, error) {
	f, ok := ledgerFolders[t]
	if !ok {
		return "", fault.InvalidLedgerType
	}
	return f, nil
}

// IsValid - a known ledger type
func (t Type) IsValid() bool {
	_, ok := ledgerFolders[t]
	return ok || Message == t
}

// TransactionType - kind of transaction
type TransactionType string

// transaction types
const (
	// receipts and notices placed in boxes
	TxMessage          TransactionType = "message"
	TxNotice           TransactionType = "notice"
	TxReplyNotice      TransactionType = "replyNotice"
	TxSuccessNotice    TransactionType = "successNotice"
	TxInstrumentNotice TransactionType = "instrumentNotice"
	TxInstrumentReject TransactionType = "instrumentRejection"
	TxFinalReceipt     TransactionType = "finalReceipt"
	TxMarketReceipt    TransactionType = "marketReceipt"
	TxPaymentReceipt   TransactionType = "paymentReceipt"
	TxTransferReceipt  TransactionType = "transferReceipt"
	TxChequeReceipt    TransactionType = "chequeReceipt"
	TxVoucherReceipt   TransactionType = "voucherReceipt"
	TxPending          TransactionType = "pending"
	TxBlank            TransactionType = "blank"

	// requests and their replies
	TxProcessNymbox    TransactionType = "processNymbox"
	TxAtProcessNymbox  TransactionType = "atProcessNymbox"
	TxProcessInbox     TransactionType = "processInbox"
	TxAtProcessInbox   TransactionType = "atProcessInbox"
	TxTransfer         TransactionType = "transfer"
	TxAtTransfer       TransactionType = "atTransfer"
	TxDeposit          TransactionType = "deposit"
	TxAtDeposit        TransactionType = "atDeposit"
	TxWithdrawal       TransactionType = "withdrawal"
	TxAtWithdrawal     TransactionType = "atWithdrawal"
	TxMarketOffer      TransactionType = "marketOffer"
	TxAtMarketOffer    TransactionType = "atMarketOffer"
	TxPaymentPlan      TransactionType = "paymentPlan"
	TxAtPaymentPlan    TransactionType = "atPaymentPlan"
	TxSmartContract    TransactionType = "smartContract"
	TxAtSmartContract  TransactionType = "atSmartContract"
	TxCancelCronItem   TransactionType = "cancelCronItem"
	TxAtCancelCronItem TransactionType = "atCancelCronItem"
	TxPayDividend      TransactionType = "payDividend"
	TxAtPayDividend    TransactionType = "atPayDividend"
)

// IsReply - true for the @ form of a request
func (t TransactionType) IsReply() bool {
	return len(t) > 2 && 'a' == t[0] && 't' == t[1] && t[2] >= 'A' && t[2] <= 'Z'
}

// ReplyType - the @ form of a request
func (t TransactionType) ReplyType() TransactionType {
	if t.IsReply() || 0 == len(t) {
		return t
	}
	return TransactionType("at" + string(t[0]-'a'+'A') + string(t[1:]))
}

// IsReceipt - types that close a cron item or transfer when accepted
func (t TransactionType) IsReceipt() bool {
	switch t {
	case TxFinalReceipt, TxMarketReceipt, TxPaymentReceipt, TxTransferReceipt, TxChequeReceipt, TxVoucherReceipt:
		return true
	default:
		return false
	}
}

// ItemType - kind of item within a transaction
type ItemType string

// item types
const (
	ItemTransfer               ItemType = "transfer"
	ItemAtTransfer             ItemType = "atTransfer"
	ItemAcceptTransaction      ItemType = "acceptTransaction"
	ItemAtAcceptTransaction    ItemType = "atAcceptTransaction"
	ItemAcceptMessage          ItemType = "acceptMessage"
	ItemAtAcceptMessage        ItemType = "atAcceptMessage"
	ItemAcceptNotice           ItemType = "acceptNotice"
	ItemAtAcceptNotice         ItemType = "atAcceptNotice"
	ItemAcceptPending          ItemType = "acceptPending"
	ItemAtAcceptPending        ItemType = "atAcceptPending"
	ItemRejectPending          ItemType = "rejectPending"
	ItemAtRejectPending        ItemType = "atRejectPending"
	ItemAcceptCronReceipt      ItemType = "acceptCronReceipt"
	ItemAtAcceptCronReceipt    ItemType = "atAcceptCronReceipt"
	ItemAcceptItemReceipt      ItemType = "acceptItemReceipt"
	ItemAtAcceptItemReceipt    ItemType = "atAcceptItemReceipt"
	ItemDisputeCronReceipt     ItemType = "disputeCronReceipt"
	ItemAtDisputeCronReceipt   ItemType = "atDisputeCronReceipt"
	ItemAcceptFinalReceipt     ItemType = "acceptFinalReceipt"
	ItemAtAcceptFinalReceipt   ItemType = "atAcceptFinalReceipt"
	ItemDepositCheque          ItemType = "depositCheque"
	ItemAtDepositCheque        ItemType = "atDepositCheque"
	ItemWithdrawVoucher        ItemType = "withdrawVoucher"
	ItemAtWithdrawVoucher      ItemType = "atWithdrawVoucher"
	ItemPayDividend            ItemType = "payDividend"
	ItemAtPayDividend          ItemType = "atPayDividend"
	ItemMarketOffer            ItemType = "marketOffer"
	ItemAtMarketOffer          ItemType = "atMarketOffer"
	ItemPaymentPlan            ItemType = "paymentPlan"
	ItemAtPaymentPlan          ItemType = "atPaymentPlan"
	ItemSmartContract          ItemType = "smartContract"
	ItemAtSmartContract        ItemType = "atSmartContract"
	ItemCancelCronItem         ItemType = "cancelCronItem"
	ItemAtCancelCronItem       ItemType = "atCancelCronItem"
	ItemBalanceStatement       ItemType = "balanceStatement"
	ItemAtBalanceStatement     ItemType = "atBalanceStatement"
	ItemTransactionStatement   ItemType = "transactionStatement"
	ItemAtTransactionStatement ItemType = "atTransactionStatement"
	ItemChequeReceipt          ItemType = "chequeReceipt"
	ItemVoucherReceipt         ItemType = "voucherReceipt"
	ItemMarketReceipt          ItemType = "marketReceipt"
	ItemPaymentReceipt         ItemType = "paymentReceipt"
	ItemTransferReceipt        ItemType = "transferReceipt"
	ItemFinalReceipt           ItemType = "finalReceipt"
	ItemNotice                 ItemType = "notice"
)

// ReplyType - the @ form of a request item
func (t ItemType) ReplyType() ItemType {
	return ItemType(TransactionType(t).ReplyType())
}

// ItemStatus - request or the notary's answer
type ItemStatus string

// item status values
const (
	StatusRequest         ItemStatus = "request"
	StatusAcknowledgement ItemStatus = "acknowledgement"
	StatusRejection       ItemStatus = "rejection"
)
