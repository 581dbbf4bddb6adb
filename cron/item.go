// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cron

import (
	"time"

	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
)

// Item - a recurring instrument advanced on each tick
type Item interface {
	// Kind - selects the decoder used when cron is reloaded
	Kind() string

	// Number - the opening transaction number, unique across cron
	Number() int64

	// Originator - the nym whose item cap applies
	Originator() identifier.Identifier

	// CanCancel - whether the nym may cancel the item
	CanCancel(nymID identifier.Identifier) bool

	// Process - advance the item, false means it has finished
	Process(ctx Context) (bool, error)

	// Closings - the numbers the final receipts will close
	Closings() []Closing

	// Marshal - the persistent form given back to the decoder
	Marshal() ([]byte, error)
}

// Finisher - optional hook run as an item leaves cron
type Finisher interface {
	Finish()
}

// Decoder - rebuild an item from its persistent form
type Decoder func(data []byte) (Item, error)

// Context - the notary services used by items
type Context interface {
	Now() time.Time
	NotaryID() identifier.Identifier
	MoveFunds(movement Movement) error
	FinalReceipt(final Final) error
}

// Side - one account touched by a movement
type Side struct {
	NymID         identifier.Identifier
	AccountID     identifier.Identifier
	InReferenceTo int64
	ClosingNumber int64
}

// Move - debit From and credit To by Amount
type Move struct {
	From   Side
	To     Side
	Amount int64
}

// Movement - a group of moves applied all-or-nothing
//
// every touched account receives a receipt of ReceiptType
type Movement struct {
	Item        Item
	ReceiptType ledger.TransactionType
	Moves       []Move
	Note        string
}

// Closing - a party's numbers closed by a final receipt
type Closing struct {
	NymID         identifier.Identifier
	AccountID     identifier.Identifier
	OpeningNumber int64
	ClosingNumber int64
}

// Final - notice that an item has left cron
type Final struct {
	Item      Item
	Cancelled bool
	Closings  []Closing
}
