// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/xml"
	"time"

	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
)

// Transaction - a signed set of items with one transaction number
//
// the identifier is the digest of the body and doubles as the box
// receipt hash
type Transaction struct {
	Contract      *contract.Contract
	Type          TransactionType
	NotaryID      identifier.Identifier
	NymID         identifier.Identifier
	AccountID     identifier.Identifier
	Number        int64
	InReferenceTo int64
	ClosingNumber int64
	RequestNumber int64
	Date          time.Time
	Cancelled     bool
	Items         []*Item
	Reference     string
}

type transactionBody struct {
	XMLName       xml.Name   `xml:"transaction"`
	Version       int        `xml:"version,attr"`
	Type          string     `xml:"type,attr"`
	NotaryID      string     `xml:"notaryID,attr"`
	NymID         string     `xml:"nymID,attr"`
	AccountID     string     `xml:"accountID,attr"`
	Number        int64      `xml:"number,attr"`
	InReferenceTo int64      `xml:"inReferenceTo,attr"`
	ClosingNumber int64      `xml:"closingNumber,attr,omitempty"`
	RequestNumber int64      `xml:"requestNumber,attr,omitempty"`
	Date          int64      `xml:"date,attr"`
	Cancelled     bool       `xml:"cancelled,attr,omitempty"`
	Items         []itemBody `xml:"item"`
	Reference     string     `xml:"reference,omitempty"`
}

type itemBody struct {
	Type                 string `xml:"type,attr"`
	Status               string `xml:"status,attr"`
	Amount               int64  `xml:"amount,attr"`
	AccountID            string `xml:"accountID,attr"`
	DestinationAccountID string `xml:"toAccountID,attr,omitempty"`
	InReferenceTo        int64  `xml:"inReferenceTo,attr,omitempty"`
	Numbers              string `xml:"numbers,attr,omitempty"`
	Note                 string `xml:"note,omitempty"`
	Attachment           string `xml:"attachment,omitempty"`
}

// NewTransaction - empty transaction of a type
func NewTransaction(txType TransactionType, notaryID identifier.Identifier, nymID identifier.Identifier, accountID identifier.Identifier, number int64) *Transaction {
	return &Transaction{
		Contract:  contract.New(contract.KindTransaction, contract.HashOfContents),
		Type:      txType,
		NotaryID:  notaryID,
		NymID:     nymID,
		AccountID: accountID,
		Number:    number,
		Date:      time.Now().UTC().Truncate(time.Second),
	}
}

// AddItem - append an item
func (t *Transaction) AddItem(item *Item) {
	t.Items = append(t.Items, item)
}

// Item - first item of a type
func (t *Transaction) Item(itemType ItemType) (*Item, bool) {
	for _, i := range t.Items {
		if itemType == i.Type {
			return i, true
		}
	}
	return nil, false
}

// ItemsOfType - all items of a type
func (t *Transaction) ItemsOfType(itemType ItemType) []*Item {
	result := []*Item{}
	for _, i := range t.Items {
		if itemType == i.Type {
			result = append(result, i)
		}
	}
	return result
}

// Amount - the amount of the first item, used by box entries
func (t *Transaction) Amount() int64 {
	if 0 == len(t.Items) {
		return 0
	}
	return t.Items[0].Amount
}

// IsAcknowledged - true if every item of a reply is acknowledged
func (t *Transaction) IsAcknowledged() bool {
	if 0 == len(t.Items) {
		return false
	}
	for _, i := range t.Items {
		if !i.IsAcknowledged() {
			return false
		}
	}
	return true
}

// ReceiptHash - digest of the body
func (t *Transaction) ReceiptHash() identifier.Identifier {
	return t.Contract.ID()
}

// Sign - regenerate the body and sign
func (t *Transaction) Sign(signer contract.Signer) error {
	return t.Contract.CreateContract(t, signer, "sign transaction")
}

// ContractKind - for contract.Contents
func (t *Transaction) ContractKind() contract.Kind {
	return contract.KindTransaction
}

// UpdateContents - for contract.Contents
func (t *Transaction) UpdateContents() ([]byte, error) {
	if "" == t.Type {
		return nil, fault.InvalidTransactionType
	}
	body := transactionBody{
		Version:       contract.DocumentVersion,
		Type:          string(t.Type),
		NotaryID:      t.NotaryID.String(),
		NymID:         t.NymID.String(),
		AccountID:     t.AccountID.String(),
		Number:        t.Number,
		InReferenceTo: t.InReferenceTo,
		ClosingNumber: t.ClosingNumber,
		RequestNumber: t.RequestNumber,
		Date:          t.Date.Unix(),
		Cancelled:     t.Cancelled,
		Reference:     t.Reference,
	}
	for _, i := range t.Items {
		body.Items = append(body.Items, itemBody{
			Type:                 string(i.Type),
			Status:               string(i.Status),
			Amount:               i.Amount,
			AccountID:            i.AccountID.String(),
			DestinationAccountID: i.DestinationAccountID.String(),
			InReferenceTo:        i.InReferenceTo,
			Numbers:              FormatNumbers(i.Numbers),
			Note:                 i.Note,
			Attachment:           i.Attachment,
		})
	}
	return contract.MarshalBody(body)
}

// ParseContents - for contract.Contents
func (t *Transaction) ParseContents(unsigned []byte) error {
	body := transactionBody{}
	if err := contract.UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := contract.CheckVersion(body.Version); nil != err {
		return err
	}
	if "" == body.Type {
		return fault.InvalidTransactionType
	}
	ids, err := parseIdentifiers(body.NotaryID, body.NymID, body.AccountID)
	if nil != err {
		return err
	}

	items := make([]*Item, 0, len(body.Items))
	for _, ib := range body.Items {
		accounts, err := parseIdentifiers(ib.AccountID, ib.DestinationAccountID)
		if nil != err {
			return err
		}
		numbers, err := ParseNumbers(ib.Numbers)
		if nil != err {
			return err
		}
		switch ItemStatus(ib.Status) {
		case StatusRequest, StatusAcknowledgement, StatusRejection:
		default:
			return fault.InvalidItemType
		}
		items = append(items, &Item{
			Type:                 ItemType(ib.Type),
			Status:               ItemStatus(ib.Status),
			Amount:               ib.Amount,
			AccountID:            accounts[0],
			DestinationAccountID: accounts[1],
			InReferenceTo:        ib.InReferenceTo,
			Numbers:              numbers,
			Note:                 ib.Note,
			Attachment:           ib.Attachment,
		})
	}

	t.Type = TransactionType(body.Type)
	t.NotaryID = ids[0]
	t.NymID = ids[1]
	t.AccountID = ids[2]
	t.Number = body.Number
	t.InReferenceTo = body.InReferenceTo
	t.ClosingNumber = body.ClosingNumber
	t.RequestNumber = body.RequestNumber
	t.Date = time.Unix(body.Date, 0).UTC()
	t.Cancelled = body.Cancelled
	t.Items = items
	t.Reference = body.Reference
	return nil
}

// ParseTransaction - transaction from its raw file
func ParseTransaction(raw []byte) (*Transaction, error) {
	t := &Transaction{}
	c, err := contract.Parse(raw, contract.HashOfContents, t)
	if nil != err {
		return nil, err
	}
	t.Contract = c
	return t, nil
}

func parseIdentifiers(texts ...string) ([]identifier.Identifier, error) {
	result := make([]identifier.Identifier, len(texts))
	for i, s := range texts {
		id, err := identifier.FromString(s)
		if nil != err {
			return nil, err
		}
		result[i] = id
	}
	return result, nil
}
