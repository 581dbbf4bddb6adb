// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"encoding/xml"
	"time"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
)

// Cheque - a signed order to pay from the drawer's account
//
// a voucher is a cheque drawn by the notary on one of its voucher
// accounts, the remitter being the nym that purchased it
type Cheque struct {
	Contract          *Contract
	NotaryID          identifier.Identifier
	InstrumentID      identifier.Identifier
	SenderAccountID   identifier.Identifier
	SenderNymID       identifier.Identifier
	RecipientNymID    identifier.Identifier
	RemitterNymID     identifier.Identifier
	RemitterAccountID identifier.Identifier
	Amount            int64
	TransactionNumber int64
	ValidFrom         time.Time
	ValidTo           time.Time
	Memo              string
	Voucher           bool
}

type chequeBody struct {
	XMLName           xml.Name `xml:"cheque"`
	Version           int      `xml:"version,attr"`
	NotaryID          string   `xml:"notaryID,attr"`
	InstrumentID      string   `xml:"instrumentDefinitionID,attr"`
	SenderAccountID   string   `xml:"senderAcctID,attr"`
	SenderNymID       string   `xml:"senderNymID,attr"`
	RecipientNymID    string   `xml:"recipientNymID,attr,omitempty"`
	RemitterNymID     string   `xml:"remitterNymID,attr,omitempty"`
	RemitterAccountID string   `xml:"remitterAcctID,attr,omitempty"`
	Amount            int64    `xml:"amount,attr"`
	TransactionNumber int64    `xml:"transactionNum,attr"`
	ValidFrom         int64    `xml:"validFrom,attr"`
	ValidTo           int64    `xml:"validTo,attr"`
	Voucher           bool     `xml:"voucher,attr"`
	Memo              string   `xml:"memo,omitempty"`
}

// NewCheque - empty cheque
func NewCheque() *Cheque {
	return &Cheque{
		Contract: New(KindCheque, HashOfContents),
	}
}

// ContractKind - for Contents
func (c *Cheque) ContractKind() Kind {
	return KindCheque
}

// UpdateContents - for Contents
func (c *Cheque) UpdateContents() ([]byte, error) {
	if c.Amount <= 0 || c.TransactionNumber <= 0 {
		return nil, fault.InvalidAmount
	}
	return MarshalBody(chequeBody{
		Version:           DocumentVersion,
		NotaryID:          c.NotaryID.String(),
		InstrumentID:      c.InstrumentID.String(),
		SenderAccountID:   c.SenderAccountID.String(),
		SenderNymID:       c.SenderNymID.String(),
		RecipientNymID:    c.RecipientNymID.String(),
		RemitterNymID:     c.RemitterNymID.String(),
		RemitterAccountID: c.RemitterAccountID.String(),
		Amount:            c.Amount,
		TransactionNumber: c.TransactionNumber,
		ValidFrom:         c.ValidFrom.Unix(),
		ValidTo:           c.ValidTo.Unix(),
		Voucher:           c.Voucher,
		Memo:              c.Memo,
	})
}

// ParseContents - for Contents
func (c *Cheque) ParseContents(unsigned []byte) error {
	body := chequeBody{}
	if err := UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := CheckVersion(body.Version); nil != err {
		return err
	}

	ids := []struct {
		text   string
		target *identifier.Identifier
	}{
		{body.NotaryID, &c.NotaryID},
		{body.InstrumentID, &c.InstrumentID},
		{body.SenderAccountID, &c.SenderAccountID},
		{body.SenderNymID, &c.SenderNymID},
		{body.RecipientNymID, &c.RecipientNymID},
		{body.RemitterNymID, &c.RemitterNymID},
		{body.RemitterAccountID, &c.RemitterAccountID},
	}
	for _, item := range ids {
		id, err := identifier.FromString(item.text)
		if nil != err {
			return err
		}
		*item.target = id
	}
	if body.Amount <= 0 || body.TransactionNumber <= 0 {
		return fault.InvalidAmount
	}
	c.Amount = body.Amount
	c.TransactionNumber = body.TransactionNumber
	c.ValidFrom = time.Unix(body.ValidFrom, 0).UTC()
	c.ValidTo = time.Unix(body.ValidTo, 0).UTC()
	c.Voucher = body.Voucher
	c.Memo = body.Memo
	return nil
}

// Create - fill the body and sign with the drawer (the notary for a voucher)
func (c *Cheque) Create(drawer Signer) error {
	return c.Contract.CreateContract(c, drawer, "sign cheque")
}

// HasRecipient - false for a bearer cheque
func (c *Cheque) HasRecipient() bool {
	return !c.RecipientNymID.IsZero()
}

// IsValidAt - inside the validity window
func (c *Cheque) IsValidAt(now time.Time) bool {
	if now.Before(c.ValidFrom) {
		return false
	}
	if !c.ValidTo.IsZero() && c.ValidTo.Unix() > 0 && now.After(c.ValidTo) {
		return false
	}
	return true
}

// ParseCheque - parse, signature is checked by the depositing notary
func ParseCheque(raw []byte) (*Cheque, error) {
	c := &Cheque{}
	d, err := Parse(raw, HashOfContents, c)
	if nil != err {
		return nil, err
	}
	c.Contract = d
	return c, nil
}
