// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/wigggles/opentxs-sub024/identifier"
)

// Item - one instruction or answer within a transaction
//
// Numbers lists transaction numbers for statements and for items
// naming several receipts
type Item struct {
	Type                 ItemType
	Status               ItemStatus
	Amount               int64
	AccountID            identifier.Identifier
	DestinationAccountID identifier.Identifier
	InReferenceTo        int64
	Numbers              []int64
	Note                 string
	Attachment           string
}

// NewItem - request item
func NewItem(itemType ItemType, accountID identifier.Identifier) *Item {
	return &Item{
		Type:      itemType,
		Status:    StatusRequest,
		AccountID: accountID,
	}
}

// Reply - the notary's answer to a request item
func (i *Item) Reply(accepted bool) *Item {
	status := StatusRejection
	if accepted {
		status = StatusAcknowledgement
	}
	return &Item{
		Type:                 i.Type.ReplyType(),
		Status:               status,
		Amount:               i.Amount,
		AccountID:            i.AccountID,
		DestinationAccountID: i.DestinationAccountID,
		InReferenceTo:        i.InReferenceTo,
	}
}

// IsAcknowledged - true for an accepted reply
func (i *Item) IsAcknowledged() bool {
	return StatusAcknowledgement == i.Status
}

// BalanceStatement - the balance the owner expects after the
// transaction, together with the numbers they still hold
func BalanceStatement(accountID identifier.Identifier, expected int64, numbers []int64) *Item {
	return &Item{
		Type:      ItemBalanceStatement,
		Status:    StatusRequest,
		AccountID: accountID,
		Amount:    expected,
		Numbers:   append([]int64{}, numbers...),
	}
}

// TransactionStatement - the numbers the owner expects to hold after
// a transaction without balance change
func TransactionStatement(accountID identifier.Identifier, numbers []int64) *Item {
	return &Item{
		Type:      ItemTransactionStatement,
		Status:    StatusRequest,
		AccountID: accountID,
		Numbers:   append([]int64{}, numbers...),
	}
}
