// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/xml"
	"sort"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/storage"
)

// Entry - the abbreviated form of a boxed transaction
type Entry struct {
	Number        int64
	Type          TransactionType
	InReferenceTo int64
	ClosingNumber int64
	Amount        int64
	Date          time.Time
	ReceiptHash   identifier.Identifier
}

// Ledger - a box of transactions owned by a nym or an account
//
// only abbreviated entries are serialized; full transactions are
// kept as separate box receipts
type Ledger struct {
	Contract  *contract.Contract
	Type      Type
	NymID     identifier.Identifier
	AccountID identifier.Identifier
	NotaryID  identifier.Identifier

	entries map[int64]Entry
	full    map[int64]*Transaction
	unsaved map[int64]struct{}
	removed map[int64]struct{}
}

type ledgerBody struct {
	XMLName   xml.Name    `xml:"ledger"`
	Version   int         `xml:"version,attr"`
	Type      string      `xml:"type,attr"`
	NymID     string      `xml:"nymID,attr"`
	AccountID string      `xml:"accountID,attr"`
	NotaryID  string      `xml:"notaryID,attr"`
	Entries   []entryBody `xml:"transaction"`
}

type entryBody struct {
	Number        int64  `xml:"number,attr"`
	Type          string `xml:"type,attr"`
	InReferenceTo int64  `xml:"inReferenceTo,attr"`
	ClosingNumber int64  `xml:"closingNumber,attr,omitempty"`
	Amount        int64  `xml:"amount,attr"`
	Date          int64  `xml:"date,attr"`
	ReceiptHash   string `xml:"receiptHash,attr"`
}

// New - empty box
//
// a nymbox uses the nym ID as its account ID
func New(ledgerType Type, nymID identifier.Identifier, accountID identifier.Identifier, notaryID identifier.Identifier) *Ledger {
	if Nymbox == ledgerType {
		accountID = nymID
	}
	return &Ledger{
		Contract:  contract.New(contract.KindLedger, contract.Assigned),
		Type:      ledgerType,
		NymID:     nymID,
		AccountID: accountID,
		NotaryID:  notaryID,
		entries:   make(map[int64]Entry),
		full:      make(map[int64]*Transaction),
		unsaved:   make(map[int64]struct{}),
		removed:   make(map[int64]struct{}),
	}
}

// ContractID - for contract.Identified
func (l *Ledger) ContractID() identifier.Identifier {
	return l.AccountID
}

// ContractKind - for contract.Contents
func (l *Ledger) ContractKind() contract.Kind {
	return contract.KindLedger
}

// UpdateContents - for contract.Contents
func (l *Ledger) UpdateContents() ([]byte, error) {
	body := ledgerBody{
		Version:   contract.DocumentVersion,
		Type:      string(l.Type),
		NymID:     l.NymID.String(),
		AccountID: l.AccountID.String(),
		NotaryID:  l.NotaryID.String(),
	}
	for _, e := range l.Entries() {
		body.Entries = append(body.Entries, entryBody{
			Number:        e.Number,
			Type:          string(e.Type),
			InReferenceTo: e.InReferenceTo,
			ClosingNumber: e.ClosingNumber,
			Amount:        e.Amount,
			Date:          e.Date.Unix(),
			ReceiptHash:   e.ReceiptHash.String(),
		})
	}
	return contract.MarshalBody(body)
}

// ParseContents - for contract.Contents
func (l *Ledger) ParseContents(unsigned []byte) error {
	body := ledgerBody{}
	if err := contract.UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := contract.CheckVersion(body.Version); nil != err {
		return err
	}
	if !Type(body.Type).IsValid() {
		return fault.InvalidLedgerType
	}
	ids, err := parseIdentifiers(body.NymID, body.AccountID, body.NotaryID)
	if nil != err {
		return err
	}
	entries := make(map[int64]Entry)
	for _, eb := range body.Entries {
		hash, err := identifier.FromString(eb.ReceiptHash)
		if nil != err {
			return err
		}
		if _, ok := entries[eb.Number]; ok {
			return fault.DuplicateTransaction
		}
		entries[eb.Number] = Entry{
			Number:        eb.Number,
			Type:          TransactionType(eb.Type),
			InReferenceTo: eb.InReferenceTo,
			ClosingNumber: eb.ClosingNumber,
			Amount:        eb.Amount,
			Date:          time.Unix(eb.Date, 0).UTC(),
			ReceiptHash:   hash,
		}
	}
	l.Type = Type(body.Type)
	l.NymID = ids[0]
	l.AccountID = ids[1]
	l.NotaryID = ids[2]
	l.entries = entries
	l.full = make(map[int64]*Transaction)
	l.unsaved = make(map[int64]struct{})
	l.removed = make(map[int64]struct{})
	return nil
}

// AddTransaction - box a signed transaction
func (l *Ledger) AddTransaction(t *Transaction) error {
	if !t.Contract.IsSigned() {
		return fault.ContractNotSigned
	}
	if _, ok := l.entries[t.Number]; ok {
		return fault.DuplicateTransaction
	}
	l.entries[t.Number] = Entry{
		Number:        t.Number,
		Type:          t.Type,
		InReferenceTo: t.InReferenceTo,
		ClosingNumber: t.ClosingNumber,
		Amount:        t.Amount(),
		Date:          t.Date,
		ReceiptHash:   t.ReceiptHash(),
	}
	l.full[t.Number] = t
	l.unsaved[t.Number] = struct{}{}
	delete(l.removed, t.Number)
	return nil
}

// RemoveTransaction - drop an entry, its box receipt is deleted when
// the ledger is saved
func (l *Ledger) RemoveTransaction(number int64) bool {
	if _, ok := l.entries[number]; !ok {
		return false
	}
	delete(l.entries, number)
	delete(l.full, number)
	if _, ok := l.unsaved[number]; ok {
		delete(l.unsaved, number)
	} else {
		l.removed[number] = struct{}{}
	}
	return true
}

// Entry - abbreviated entry by transaction number
func (l *Ledger) Entry(number int64) (Entry, bool) {
	e, ok := l.entries[number]
	return e, ok
}

// Entries - all entries ordered by number
func (l *Ledger) Entries() []Entry {
	result := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result
}

// EntryByReference - first entry referring to a number
func (l *Ledger) EntryByReference(number int64) (Entry, bool) {
	for _, e := range l.Entries() {
		if number == e.InReferenceTo {
			return e, true
		}
	}
	return Entry{}, false
}

// Transaction - full transaction if held in memory
func (l *Ledger) Transaction(number int64) (*Transaction, bool) {
	t, ok := l.full[number]
	return t, ok
}

// Count - number of entries
func (l *Ledger) Count() int {
	return len(l.entries)
}

// Hash - digest of the current abbreviated content
//
// clients send the hash they saw so that a changed box is detected
func (l *Ledger) Hash() identifier.Identifier {
	unsigned, err := l.UpdateContents()
	if nil != err {
		fault.PanicWithError("ledger: hash", err)
	}
	return identifier.FromData(unsigned)
}

// Sign - regenerate the body and sign
func (l *Ledger) Sign(signer contract.Signer) error {
	return l.Contract.CreateContract(l, signer, "sign ledger")
}

// SaveLedger - sign, store new box receipts and then the ledger
func (l *Ledger) SaveLedger(folders *storage.Folders, signer contract.Signer) error {
	folder, err := l.Type.Folder()
	if nil != err {
		return err
	}
	for number := range l.unsaved {
		if err := l.SaveBoxReceipt(folders, l.full[number]); nil != err {
			return err
		}
	}
	if err := l.Sign(signer); nil != err {
		return err
	}
	if err := l.Contract.SaveContract(folders, folder, l.AccountID.String()); nil != err {
		return err
	}
	l.unsaved = make(map[int64]struct{})
	for number := range l.removed {
		if err := l.DeleteBoxReceipt(folders, number); nil != err {
			logger.New("ledger").Errorf("%s: %s  delete box receipt: %d  error: %s", l.Type, l.AccountID, number, err)
		}
	}
	l.removed = make(map[int64]struct{})
	return nil
}

// LoadLedger - read a box and check that it belongs to the owner
func LoadLedger(folders *storage.Folders, ledgerType Type, nymID identifier.Identifier, accountID identifier.Identifier, notaryID identifier.Identifier) (*Ledger, error) {
	if Nymbox == ledgerType {
		accountID = nymID
	}
	folder, err := ledgerType.Folder()
	if nil != err {
		return nil, err
	}
	l := New(ledgerType, nymID, accountID, notaryID)
	c, err := contract.LoadContract(folders, accountID, contract.Assigned, l, folder, accountID.String())
	if nil != err {
		return nil, err
	}
	l.Contract = c
	if ledgerType != l.Type || nymID != l.NymID || accountID != l.AccountID || notaryID != l.NotaryID {
		return nil, fault.LedgerOwnerMismatch
	}
	return l, nil
}

// LoadOrCreate - LoadLedger, an absent box gives an empty one
func LoadOrCreate(folders *storage.Folders, ledgerType Type, nymID identifier.Identifier, accountID identifier.Identifier, notaryID identifier.Identifier) (*Ledger, error) {
	l, err := LoadLedger(folders, ledgerType, nymID, accountID, notaryID)
	if fault.FileNotFound == err {
		return New(ledgerType, nymID, accountID, notaryID), nil
	}
	return l, err
}

// ParseLedger - ledger from its raw file, e.g. inside a message
func ParseLedger(raw []byte) (*Ledger, error) {
	l := &Ledger{}
	c, err := contract.Parse(raw, contract.Assigned, l)
	if nil != err {
		return nil, err
	}
	l.Contract = c
	return l, nil
}

// AttachTransaction - hold a full transaction for an existing entry,
// e.g. one sent inside a message ledger
func (l *Ledger) AttachTransaction(t *Transaction) error {
	if err := l.VerifyBoxReceipt(t); nil != err {
		return err
	}
	l.full[t.Number] = t
	return nil
}
