// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - asset accounts held at a notary
//
// An account is a contract signed by the notary. Its identifier is
// assigned at creation; the balance only changes through Debit and
// Credit. Every account has an inbox and an outbox.
package account

import (
	"encoding/xml"
	"fmt"
	"math"
	"time"

	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/storage"
)

// Type - account type
type Type string

// account types
const (
	Simple    Type = "simple"
	Issuer    Type = "issuer"
	Basket    Type = "basket"
	BasketSub Type = "basketsub"
	Mint      Type = "mint"
	Voucher   Type = "voucher"
	Stash     Type = "stash"
)

// IsValid - a known account type
func (t Type) IsValid() bool {
	switch t {
	case Simple, Issuer, Basket, BasketSub, Mint, Voucher, Stash:
		return true
	default:
		return false
	}
}

// IsInternal - accounts owned by the notary itself
func (t Type) IsInternal() bool {
	switch t {
	case BasketSub, Mint, Voucher, Stash:
		return true
	default:
		return false
	}
}

// Account - balance of one instrument held by one nym
type Account struct {
	Contract     *contract.Contract
	ID           identifier.Identifier
	NymID        identifier.Identifier
	NotaryID     identifier.Identifier
	InstrumentID identifier.Identifier
	Type         Type
	StashNumber  int64

	balance           int64
	balanceDate       time.Time
	markedForDeletion bool
	inboxHash         identifier.Identifier
	outboxHash        identifier.Identifier
}

type accountBody struct {
	XMLName           xml.Name    `xml:"account"`
	Version           int         `xml:"version,attr"`
	Type              string      `xml:"type,attr"`
	AccountID         string      `xml:"accountID,attr"`
	NymID             string      `xml:"nymID,attr"`
	NotaryID          string      `xml:"notaryID,attr"`
	InstrumentID      string      `xml:"instrumentDefinitionID,attr"`
	StashNumber       int64       `xml:"stashTransNum,attr,omitempty"`
	MarkedForDeletion bool        `xml:"markedForDeletion,attr,omitempty"`
	InboxHash         string      `xml:"inboxHash,attr,omitempty"`
	OutboxHash        string      `xml:"outboxHash,attr,omitempty"`
	Balance           balanceBody `xml:"balance"`
}

type balanceBody struct {
	Date   int64 `xml:"date,attr"`
	Amount int64 `xml:"amount,attr"`
}

// GenerateNewAccount - create, sign and save an empty account
//
// the identifier is the digest of random data; an empty inbox and
// outbox are saved with it
func GenerateNewAccount(engine *crypto.Engine, folders *storage.Folders, server contract.Signer, nymID identifier.Identifier, notaryID identifier.Identifier, instrumentID identifier.Identifier, accountType Type) (*Account, error) {
	if !accountType.IsValid() {
		return nil, fault.InvalidAccountType
	}
	id, err := identifier.Random(engine)
	if nil != err {
		return nil, err
	}
	a := &Account{
		Contract:     contract.New(contract.KindAccount, contract.Assigned),
		ID:           id,
		NymID:        nymID,
		NotaryID:     notaryID,
		InstrumentID: instrumentID,
		Type:         accountType,
		balanceDate:  time.Now().UTC().Truncate(time.Second),
	}

	inbox := ledger.New(ledger.Inbox, nymID, id, notaryID)
	if err := a.SaveInbox(folders, inbox, server); nil != err {
		return nil, err
	}
	outbox := ledger.New(ledger.Outbox, nymID, id, notaryID)
	if err := a.SaveOutbox(folders, outbox, server); nil != err {
		return nil, err
	}
	if err := a.Save(folders, server); nil != err {
		return nil, err
	}
	return a, nil
}

// Balance - current balance
func (a *Account) Balance() int64 {
	return a.balance
}

// BalanceDate - time of the last balance change
func (a *Account) BalanceDate() time.Time {
	return a.balanceDate
}

// IsAllowedToGoNegative - issuer and basket accounts may hold a
// negative balance
func (a *Account) IsAllowedToGoNegative() bool {
	return Issuer == a.Type || Basket == a.Type
}

// Debit - remove an amount
func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return fault.InvalidAmount
	}
	if a.balance < math.MinInt64+amount {
		return fault.InvalidAmount
	}
	return a.adjust(a.balance - amount)
}

// Credit - add an amount
func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return fault.InvalidAmount
	}
	if a.balance > math.MaxInt64-amount {
		return fault.InvalidAmount
	}
	return a.adjust(a.balance + amount)
}

// a change that lowers a balance below zero needs permission; a
// change towards zero is always allowed
func (a *Account) adjust(newBalance int64) error {
	if newBalance < 0 && newBalance < a.balance && !a.IsAllowedToGoNegative() {
		return fault.InsufficientFunds
	}
	a.balance = newBalance
	a.balanceDate = time.Now().UTC().Truncate(time.Second)
	return nil
}

// VerifyOwner - the account belongs to the nym
func (a *Account) VerifyOwner(nymID identifier.Identifier) error {
	if a.NymID != nymID {
		return fault.AccountOwnerMismatch
	}
	return nil
}

// MarkForDeletion - flag the account, no further transactions allowed
func (a *Account) MarkForDeletion() {
	a.markedForDeletion = true
}

// IsMarkedForDeletion - flag state
func (a *Account) IsMarkedForDeletion() bool {
	return a.markedForDeletion
}

// InboxHash - hash of the inbox when last saved
func (a *Account) InboxHash() identifier.Identifier {
	return a.inboxHash
}

// OutboxHash - hash of the outbox when last saved
func (a *Account) OutboxHash() identifier.Identifier {
	return a.outboxHash
}

// DisplayStatistics - one line summary for logs and the CLI
func (a *Account) DisplayStatistics() string {
	return fmt.Sprintf("account: %s  type: %s  owner: %s  instrument: %s  balance: %d  date: %s",
		a.ID, a.Type, a.NymID, a.InstrumentID, a.balance, a.balanceDate.Format(time.RFC3339))
}

// ContractID - for contract.Identified
func (a *Account) ContractID() identifier.Identifier {
	return a.ID
}

// ContractKind - for contract.Contents
func (a *Account) ContractKind() contract.Kind {
	return contract.KindAccount
}

// UpdateContents - for contract.Contents
func (a *Account) UpdateContents() ([]byte, error) {
	body := accountBody{
		Version:           contract.DocumentVersion,
		Type:              string(a.Type),
		AccountID:         a.ID.String(),
		NymID:             a.NymID.String(),
		NotaryID:          a.NotaryID.String(),
		InstrumentID:      a.InstrumentID.String(),
		StashNumber:       a.StashNumber,
		MarkedForDeletion: a.markedForDeletion,
		InboxHash:         a.inboxHash.String(),
		OutboxHash:        a.outboxHash.String(),
		Balance: balanceBody{
			Date:   a.balanceDate.Unix(),
			Amount: a.balance,
		},
	}
	return contract.MarshalBody(body)
}

// ParseContents - for contract.Contents
func (a *Account) ParseContents(unsigned []byte) error {
	body := accountBody{}
	if err := contract.UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := contract.CheckVersion(body.Version); nil != err {
		return err
	}
	if !Type(body.Type).IsValid() {
		return fault.InvalidAccountType
	}
	texts := []string{body.AccountID, body.NymID, body.NotaryID, body.InstrumentID, body.InboxHash, body.OutboxHash}
	ids := make([]identifier.Identifier, len(texts))
	for i, s := range texts {
		id, err := identifier.FromString(s)
		if nil != err {
			return err
		}
		ids[i] = id
	}
	if ids[0].IsZero() {
		return fault.InvalidContents
	}
	a.Type = Type(body.Type)
	a.ID = ids[0]
	a.NymID = ids[1]
	a.NotaryID = ids[2]
	a.InstrumentID = ids[3]
	a.inboxHash = ids[4]
	a.outboxHash = ids[5]
	a.StashNumber = body.StashNumber
	a.markedForDeletion = body.MarkedForDeletion
	a.balance = body.Balance.Amount
	a.balanceDate = time.Unix(body.Balance.Date, 0).UTC()
	return nil
}

// Save - sign with the notary and store
func (a *Account) Save(folders *storage.Folders, server contract.Signer) error {
	if err := a.Contract.CreateContract(a, server, "sign account"); nil != err {
		return err
	}
	return a.Contract.SaveContract(folders, storage.Accounts, a.ID.String())
}

// LoadAccount - read an account and check its identifier and notary
func LoadAccount(folders *storage.Folders, id identifier.Identifier, notaryID identifier.Identifier) (*Account, error) {
	a := &Account{}
	c, err := contract.LoadContract(folders, id, contract.Assigned, a, storage.Accounts, id.String())
	if nil != err {
		return nil, err
	}
	a.Contract = c
	if a.NotaryID != notaryID {
		return nil, fault.NotaryMismatch
	}
	return a, nil
}

// ParseAccount - account from a raw file received from a notary
//
// the caller checks the notary signature
func ParseAccount(raw []byte, id identifier.Identifier) (*Account, error) {
	a := &Account{}
	c, err := contract.ParseAndVerify(raw, contract.Assigned, a, id)
	if nil != err {
		return nil, err
	}
	a.Contract = c
	return a, nil
}

// LoadInbox - the inbox of the account
func (a *Account) LoadInbox(folders *storage.Folders) (*ledger.Ledger, error) {
	return ledger.LoadLedger(folders, ledger.Inbox, a.NymID, a.ID, a.NotaryID)
}

// LoadOutbox - the outbox of the account
func (a *Account) LoadOutbox(folders *storage.Folders) (*ledger.Ledger, error) {
	return ledger.LoadLedger(folders, ledger.Outbox, a.NymID, a.ID, a.NotaryID)
}

// SaveInbox - store the inbox and remember its hash
//
// the account itself must be saved afterwards
func (a *Account) SaveInbox(folders *storage.Folders, inbox *ledger.Ledger, server contract.Signer) error {
	if err := a.checkBox(inbox, ledger.Inbox); nil != err {
		return err
	}
	if err := inbox.SaveLedger(folders, server); nil != err {
		return err
	}
	a.inboxHash = inbox.Hash()
	return nil
}

// SaveOutbox - store the outbox and remember its hash
func (a *Account) SaveOutbox(folders *storage.Folders, outbox *ledger.Ledger, server contract.Signer) error {
	if err := a.checkBox(outbox, ledger.Outbox); nil != err {
		return err
	}
	if err := outbox.SaveLedger(folders, server); nil != err {
		return err
	}
	a.outboxHash = outbox.Hash()
	return nil
}

func (a *Account) checkBox(box *ledger.Ledger, boxType ledger.Type) error {
	if boxType != box.Type {
		return fault.InvalidLedgerType
	}
	if a.ID != box.AccountID || a.NymID != box.NymID || a.NotaryID != box.NotaryID {
		return fault.AccountOwnerMismatch
	}
	return nil
}
