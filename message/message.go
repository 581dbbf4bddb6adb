// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package message - signed requests between a nym and a notary
//
// every request carries the request number of the sending nym; the
// notary answers with the @ form of the command, a success flag and
// the request it answers
package message

import (
	"encoding/xml"
	"time"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
)

// Message - one request or reply
type Message struct {
	Contract          *contract.Contract
	Command           Command
	NymID             identifier.Identifier
	NotaryID          identifier.Identifier
	RequestNumber     int64
	Success           bool
	AccountID         identifier.Identifier
	InstrumentID      identifier.Identifier
	RecipientNymID    identifier.Identifier
	TransactionNumber int64
	BoxType           ledger.Type
	Depth             int64
	Numbers           []int64
	NymboxHash        identifier.Identifier
	InboxHash         identifier.Identifier
	OutboxHash        identifier.Identifier
	Date              time.Time
	Payload           string
	InReferenceTo     string
	Note              string
}

type messageBody struct {
	XMLName           xml.Name `xml:"notaryMessage"`
	Version           int      `xml:"version,attr"`
	Command           string   `xml:"command,attr"`
	NymID             string   `xml:"nymID,attr"`
	NotaryID          string   `xml:"notaryID,attr"`
	RequestNumber     int64    `xml:"requestNum,attr"`
	Success           bool     `xml:"success,attr"`
	AccountID         string   `xml:"acctID,attr"`
	InstrumentID      string   `xml:"instrumentDefinitionID,attr"`
	RecipientNymID    string   `xml:"nymID2,attr"`
	TransactionNumber int64    `xml:"transactionNum,attr,omitempty"`
	BoxType           string   `xml:"boxType,attr,omitempty"`
	Depth             int64    `xml:"depth,attr,omitempty"`
	Numbers           string   `xml:"numbers,attr,omitempty"`
	NymboxHash        string   `xml:"nymboxHash,attr"`
	InboxHash         string   `xml:"inboxHash,attr"`
	OutboxHash        string   `xml:"outboxHash,attr"`
	Date              int64    `xml:"date,attr"`
	Payload           string   `xml:"payload,omitempty"`
	InReferenceTo     string   `xml:"inReferenceTo,omitempty"`
	Note              string   `xml:"note,omitempty"`
}

// New - unsigned request
func New(command Command, nymID identifier.Identifier, notaryID identifier.Identifier, requestNumber int64) *Message {
	return &Message{
		Contract:      contract.New(contract.KindMessage, contract.HashOfContents),
		Command:       command,
		NymID:         nymID,
		NotaryID:      notaryID,
		RequestNumber: requestNumber,
		Date:          time.Now().UTC().Truncate(time.Second),
	}
}

// NewReply - unsigned reply to a request
//
// the signed request is kept in InReferenceTo
func NewReply(request *Message, success bool) *Message {
	reply := New(request.Command.Reply(), request.NymID, request.NotaryID, request.RequestNumber)
	reply.Success = success
	reply.AccountID = request.AccountID
	reply.InstrumentID = request.InstrumentID
	reply.RecipientNymID = request.RecipientNymID
	reply.TransactionNumber = request.TransactionNumber
	reply.BoxType = request.BoxType
	if nil != request.Contract && request.Contract.IsSigned() {
		reply.InReferenceTo = armor.EncodeData(armor.LabelReference, request.Contract.RawFile())
	}
	return reply
}

// ContractKind - for contract.Contents
func (m *Message) ContractKind() contract.Kind {
	return contract.KindMessage
}

// UpdateContents - for contract.Contents
func (m *Message) UpdateContents() ([]byte, error) {
	if !m.Command.IsValid() {
		return nil, fault.InvalidCommand
	}
	return contract.MarshalBody(messageBody{
		Version:           contract.DocumentVersion,
		Command:           string(m.Command),
		NymID:             m.NymID.String(),
		NotaryID:          m.NotaryID.String(),
		RequestNumber:     m.RequestNumber,
		Success:           m.Success,
		AccountID:         m.AccountID.String(),
		InstrumentID:      m.InstrumentID.String(),
		RecipientNymID:    m.RecipientNymID.String(),
		TransactionNumber: m.TransactionNumber,
		BoxType:           string(m.BoxType),
		Depth:             m.Depth,
		Numbers:           ledger.FormatNumbers(m.Numbers),
		NymboxHash:        m.NymboxHash.String(),
		InboxHash:         m.InboxHash.String(),
		OutboxHash:        m.OutboxHash.String(),
		Date:              m.Date.Unix(),
		Payload:           m.Payload,
		InReferenceTo:     m.InReferenceTo,
		Note:              m.Note,
	})
}

// ParseContents - for contract.Contents
func (m *Message) ParseContents(unsigned []byte) error {
	body := messageBody{}
	if err := contract.UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := contract.CheckVersion(body.Version); nil != err {
		return err
	}
	command := Command(body.Command)
	if !command.IsValid() {
		return fault.InvalidCommand
	}
	if "" != body.BoxType && !ledger.Type(body.BoxType).IsValid() {
		return fault.InvalidLedgerType
	}
	numbers, err := ledger.ParseNumbers(body.Numbers)
	if nil != err {
		return err
	}

	ids := []struct {
		text   string
		target *identifier.Identifier
	}{
		{body.NymID, &m.NymID},
		{body.NotaryID, &m.NotaryID},
		{body.AccountID, &m.AccountID},
		{body.InstrumentID, &m.InstrumentID},
		{body.RecipientNymID, &m.RecipientNymID},
		{body.NymboxHash, &m.NymboxHash},
		{body.InboxHash, &m.InboxHash},
		{body.OutboxHash, &m.OutboxHash},
	}
	for _, item := range ids {
		id, err := identifier.FromString(item.text)
		if nil != err {
			return err
		}
		*item.target = id
	}

	m.Command = command
	m.RequestNumber = body.RequestNumber
	m.Success = body.Success
	m.TransactionNumber = body.TransactionNumber
	m.BoxType = ledger.Type(body.BoxType)
	m.Depth = body.Depth
	m.Numbers = numbers
	m.Date = time.Unix(body.Date, 0).UTC()
	m.Payload = body.Payload
	m.InReferenceTo = body.InReferenceTo
	m.Note = body.Note
	return nil
}

// Sign - fill the body and sign with the sender
func (m *Message) Sign(signer contract.Signer) error {
	return m.Contract.CreateContract(m, signer, "sign message")
}

// Verify - signed by the nym named in the message
func (m *Message) Verify(verifier contract.Verifier) error {
	return m.Contract.VerifySignature(verifier, m.NymID)
}

// Armored - the signed message as armored text
func (m *Message) Armored() (string, error) {
	if !m.Contract.IsSigned() {
		return "", fault.ContractNotSigned
	}
	return armor.EncodeData(armor.LabelMessage, m.Contract.RawFile()), nil
}

// Parse - message from armored text, the signature is not checked
func Parse(text string) (*Message, error) {
	raw, err := armor.DecodeData(text, armor.LabelMessage)
	if nil != err {
		return nil, err
	}
	return ParseRaw(raw)
}

// ParseRaw - message from its raw file
func ParseRaw(raw []byte) (*Message, error) {
	m := &Message{}
	c, err := contract.Parse(raw, contract.HashOfContents, m)
	if nil != err {
		return nil, err
	}
	m.Contract = c
	return m, nil
}

// Request - the request a reply answers
func (m *Message) Request() (*Message, error) {
	if "" == m.InReferenceTo {
		return nil, fault.MissingParameters
	}
	raw, err := armor.DecodeData(m.InReferenceTo, armor.LabelReference)
	if nil != err {
		return nil, err
	}
	return ParseRaw(raw)
}
