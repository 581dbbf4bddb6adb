// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package paymentplan - recurring payments between two accounts
//
// The recipient proposes a plan and signs it, the sender confirms it
// with a second signature and submits it to the notary. Once in cron
// an optional initial payment is taken after its delay and recurring
// payments follow every period until the plan length or the maximum
// number of payments is reached. Failed payments are counted and the
// schedule moves on.
package paymentplan

import (
	"encoding/xml"
	"time"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/cron"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
)

// ItemKind - cron decoder key for payment plans
const ItemKind = "paymentPlan"

// Plan - the agreement and its progress
type Plan struct {
	Contract               *contract.Contract
	NotaryID               identifier.Identifier
	InstrumentID           identifier.Identifier
	SenderNymID            identifier.Identifier
	SenderAccountID        identifier.Identifier
	RecipientNymID         identifier.Identifier
	RecipientAccountID     identifier.Identifier
	TransactionNumber      int64
	SenderClosingNumber    int64
	RecipientOpeningNumber int64
	RecipientClosingNumber int64
	CreationDate           time.Time
	ValidFrom              time.Time
	ValidTo                time.Time
	Consideration          string

	InitialAmount int64
	InitialDelay  time.Duration

	PaymentAmount   int64
	PaymentDelay    time.Duration
	PaymentPeriod   time.Duration
	PlanLength      time.Duration
	MaximumPayments int

	state progress
}

type progress struct {
	InitialDone     bool  `xml:"initialDone,attr"`
	InitialFailures int   `xml:"initialFailures,attr"`
	Attempts        int   `xml:"attempts,attr"`
	PaymentsDone    int   `xml:"paymentsDone,attr"`
	PaymentsFailed  int   `xml:"paymentsFailed,attr"`
	LastPayment     int64 `xml:"lastPayment,attr"`
	LastFailure     int64 `xml:"lastFailure,attr"`
}

type initialBody struct {
	Amount int64 `xml:"amount,attr"`
	Delay  int64 `xml:"delaySeconds,attr"`
}

type recurringBody struct {
	Amount          int64 `xml:"amount,attr"`
	Delay           int64 `xml:"delaySeconds,attr"`
	Period          int64 `xml:"periodSeconds,attr"`
	Length          int64 `xml:"lengthSeconds,attr"`
	MaximumPayments int   `xml:"maxPayments,attr"`
}

type planBody struct {
	XMLName                xml.Name       `xml:"paymentPlan"`
	Version                int            `xml:"version,attr"`
	NotaryID               string         `xml:"notaryID,attr"`
	InstrumentID           string         `xml:"instrumentDefinitionID,attr"`
	SenderNymID            string         `xml:"senderNymID,attr"`
	SenderAccountID        string         `xml:"senderAcctID,attr"`
	RecipientNymID         string         `xml:"recipientNymID,attr"`
	RecipientAccountID     string         `xml:"recipientAcctID,attr"`
	TransactionNumber      int64          `xml:"transactionNum,attr"`
	SenderClosingNumber    int64          `xml:"senderClosingNum,attr"`
	RecipientOpeningNumber int64          `xml:"recipientOpeningNum,attr"`
	RecipientClosingNumber int64          `xml:"recipientClosingNum,attr"`
	CreationDate           int64          `xml:"creationDate,attr"`
	ValidFrom              int64          `xml:"validFrom,attr"`
	ValidTo                int64          `xml:"validTo,attr"`
	Consideration          string         `xml:"consideration,omitempty"`
	Initial                *initialBody   `xml:"initialPayment,omitempty"`
	Recurring              *recurringBody `xml:"recurringPayment,omitempty"`
}

// New - empty plan
func New() *Plan {
	return &Plan{
		Contract: contract.New(contract.KindCronItem, contract.HashOfContents),
	}
}

// ContractKind - for contract.Contents
func (p *Plan) ContractKind() contract.Kind {
	return contract.KindCronItem
}

// UpdateContents - for contract.Contents
func (p *Plan) UpdateContents() ([]byte, error) {
	if err := p.Validate(); nil != err {
		return nil, err
	}
	body := planBody{
		Version:                contract.DocumentVersion,
		NotaryID:               p.NotaryID.String(),
		InstrumentID:           p.InstrumentID.String(),
		SenderNymID:            p.SenderNymID.String(),
		SenderAccountID:        p.SenderAccountID.String(),
		RecipientNymID:         p.RecipientNymID.String(),
		RecipientAccountID:     p.RecipientAccountID.String(),
		TransactionNumber:      p.TransactionNumber,
		SenderClosingNumber:    p.SenderClosingNumber,
		RecipientOpeningNumber: p.RecipientOpeningNumber,
		RecipientClosingNumber: p.RecipientClosingNumber,
		CreationDate:           p.CreationDate.Unix(),
		ValidFrom:              p.ValidFrom.Unix(),
		ValidTo:                0,
		Consideration:          p.Consideration,
	}
	if !p.ValidTo.IsZero() {
		body.ValidTo = p.ValidTo.Unix()
	}
	if p.InitialAmount > 0 {
		body.Initial = &initialBody{
			Amount: p.InitialAmount,
			Delay:  int64(p.InitialDelay / time.Second),
		}
	}
	if p.PaymentAmount > 0 {
		body.Recurring = &recurringBody{
			Amount:          p.PaymentAmount,
			Delay:           int64(p.PaymentDelay / time.Second),
			Period:          int64(p.PaymentPeriod / time.Second),
			Length:          int64(p.PlanLength / time.Second),
			MaximumPayments: p.MaximumPayments,
		}
	}
	return contract.MarshalBody(body)
}

// ParseContents - for contract.Contents
func (p *Plan) ParseContents(unsigned []byte) error {
	body := planBody{}
	if err := contract.UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := contract.CheckVersion(body.Version); nil != err {
		return err
	}
	ids := []struct {
		text   string
		target *identifier.Identifier
	}{
		{body.NotaryID, &p.NotaryID},
		{body.InstrumentID, &p.InstrumentID},
		{body.SenderNymID, &p.SenderNymID},
		{body.SenderAccountID, &p.SenderAccountID},
		{body.RecipientNymID, &p.RecipientNymID},
		{body.RecipientAccountID, &p.RecipientAccountID},
	}
	for _, item := range ids {
		id, err := identifier.FromString(item.text)
		if nil != err {
			return err
		}
		*item.target = id
	}
	p.TransactionNumber = body.TransactionNumber
	p.SenderClosingNumber = body.SenderClosingNumber
	p.RecipientOpeningNumber = body.RecipientOpeningNumber
	p.RecipientClosingNumber = body.RecipientClosingNumber
	p.CreationDate = time.Unix(body.CreationDate, 0).UTC()
	p.ValidFrom = time.Unix(body.ValidFrom, 0).UTC()
	p.ValidTo = time.Time{}
	if body.ValidTo > 0 {
		p.ValidTo = time.Unix(body.ValidTo, 0).UTC()
	}
	p.Consideration = body.Consideration
	if nil != body.Initial {
		p.InitialAmount = body.Initial.Amount
		p.InitialDelay = time.Duration(body.Initial.Delay) * time.Second
	}
	if nil != body.Recurring {
		p.PaymentAmount = body.Recurring.Amount
		p.PaymentDelay = time.Duration(body.Recurring.Delay) * time.Second
		p.PaymentPeriod = time.Duration(body.Recurring.Period) * time.Second
		p.PlanLength = time.Duration(body.Recurring.Length) * time.Second
		p.MaximumPayments = body.Recurring.MaximumPayments
	}
	return p.Validate()
}

// Validate - the terms are self consistent
func (p *Plan) Validate() error {
	numbers := []int64{
		p.TransactionNumber,
		p.SenderClosingNumber,
		p.RecipientOpeningNumber,
		p.RecipientClosingNumber,
	}
	seen := make(map[int64]struct{})
	for _, n := range numbers {
		if n <= 0 {
			return fault.InvalidPaymentPlan
		}
		if _, ok := seen[n]; ok {
			return fault.InvalidPaymentPlan
		}
		seen[n] = struct{}{}
	}
	switch {
	case p.SenderAccountID == p.RecipientAccountID:
	case p.SenderNymID.IsZero() || p.RecipientNymID.IsZero():
	case p.InitialAmount < 0 || p.PaymentAmount < 0:
	case 0 == p.InitialAmount && 0 == p.PaymentAmount:
	case p.InitialDelay < 0 || p.PaymentDelay < 0 || p.PlanLength < 0 || p.MaximumPayments < 0:
	case p.PaymentAmount > 0 && p.PaymentPeriod < time.Second:
	default:
		return nil
	}
	return fault.InvalidPaymentPlan
}

// Propose - fill the body and sign by the recipient
func (p *Plan) Propose(recipient contract.Signer) error {
	return p.Contract.CreateContract(p, recipient, "propose payment plan")
}

// Confirm - countersign by the sender
func (p *Plan) Confirm(sender contract.Signer) error {
	return p.Contract.SignContract(sender, "confirm payment plan")
}

// VerifyParties - both nyms signed the plan
func (p *Plan) VerifyParties(sender contract.Verifier, recipient contract.Verifier) error {
	if err := p.Contract.VerifySignature(sender, p.SenderNymID); nil != err {
		return err
	}
	return p.Contract.VerifySignature(recipient, p.RecipientNymID)
}

// Parse - read a plan, signatures are checked by the notary
func Parse(raw []byte) (*Plan, error) {
	p := &Plan{}
	c, err := contract.Parse(raw, contract.HashOfContents, p)
	if nil != err {
		return nil, err
	}
	p.Contract = c
	return p, nil
}

// Kind - for cron.Item
func (p *Plan) Kind() string {
	return ItemKind
}

// Number - for cron.Item
func (p *Plan) Number() int64 {
	return p.TransactionNumber
}

// Originator - for cron.Item
func (p *Plan) Originator() identifier.Identifier {
	return p.SenderNymID
}

// CanCancel - either party may end the plan
func (p *Plan) CanCancel(nymID identifier.Identifier) bool {
	return nymID == p.SenderNymID || nymID == p.RecipientNymID
}

// Closings - for cron.Item
func (p *Plan) Closings() []cron.Closing {
	return []cron.Closing{
		{
			NymID:         p.SenderNymID,
			AccountID:     p.SenderAccountID,
			OpeningNumber: p.TransactionNumber,
			ClosingNumber: p.SenderClosingNumber,
		},
		{
			NymID:         p.RecipientNymID,
			AccountID:     p.RecipientAccountID,
			OpeningNumber: p.RecipientOpeningNumber,
			ClosingNumber: p.RecipientClosingNumber,
		},
	}
}

// PaymentsDone - successful recurring payments
func (p *Plan) PaymentsDone() int {
	return p.state.PaymentsDone
}

// PaymentsFailed - recurring payments that could not be made
func (p *Plan) PaymentsFailed() int {
	return p.state.PaymentsFailed
}

// InitialPaymentDone - the initial payment was made
func (p *Plan) InitialPaymentDone() bool {
	return p.state.InitialDone
}

// InitialFailures - attempts at the initial payment that failed
func (p *Plan) InitialFailures() int {
	return p.state.InitialFailures
}

// Process - for cron.Item
//
// at most one recurring payment is made per tick
func (p *Plan) Process(ctx cron.Context) (bool, error) {
	now := ctx.Now()
	if now.Before(p.ValidFrom) {
		return true, nil
	}
	if !p.ValidTo.IsZero() && now.After(p.ValidTo) {
		return false, nil
	}

	var failure error
	if p.InitialAmount > 0 && !p.state.InitialDone && !now.Before(p.CreationDate.Add(p.InitialDelay)) {
		if err := p.pay(ctx, p.InitialAmount, "initial payment"); nil == err {
			p.state.InitialDone = true
		} else {
			p.state.InitialFailures += 1
			failure = err
		}
	}

	if p.PaymentAmount > 0 && !p.recurringFinished(now) {
		due := p.CreationDate.Add(p.PaymentDelay).Add(time.Duration(p.state.Attempts) * p.PaymentPeriod)
		if !now.Before(due) {
			p.state.Attempts += 1
			if err := p.pay(ctx, p.PaymentAmount, "recurring payment"); nil == err {
				p.state.PaymentsDone += 1
				p.state.LastPayment = now.Unix()
			} else {
				p.state.PaymentsFailed += 1
				p.state.LastFailure = now.Unix()
				failure = err
			}
		}
	}

	initialPending := p.InitialAmount > 0 && !p.state.InitialDone
	recurringPending := p.PaymentAmount > 0 && !p.recurringFinished(now)
	return initialPending || recurringPending, failure
}

func (p *Plan) recurringFinished(now time.Time) bool {
	if p.MaximumPayments > 0 && p.state.Attempts >= p.MaximumPayments {
		return true
	}
	if p.PlanLength > 0 && now.After(p.CreationDate.Add(p.PaymentDelay).Add(p.PlanLength)) {
		return true
	}
	return false
}

func (p *Plan) pay(ctx cron.Context, amount int64, note string) error {
	return ctx.MoveFunds(cron.Movement{
		Item:        p,
		ReceiptType: ledger.TxPaymentReceipt,
		Moves: []cron.Move{
			{
				From: cron.Side{
					NymID:         p.SenderNymID,
					AccountID:     p.SenderAccountID,
					InReferenceTo: p.TransactionNumber,
					ClosingNumber: p.SenderClosingNumber,
				},
				To: cron.Side{
					NymID:         p.RecipientNymID,
					AccountID:     p.RecipientAccountID,
					InReferenceTo: p.RecipientOpeningNumber,
					ClosingNumber: p.RecipientClosingNumber,
				},
				Amount: amount,
			},
		},
		Note: note,
	})
}

type planState struct {
	XMLName xml.Name `xml:"paymentPlanState"`
	progress
	Plan string `xml:"plan"`
}

// Marshal - for cron.Item
func (p *Plan) Marshal() ([]byte, error) {
	return xml.Marshal(planState{
		progress: p.state,
		Plan:     armor.EncodeData(armor.LabelCronItem, p.Contract.RawFile()),
	})
}

// Decode - cron decoder for plans
func Decode(data []byte) (cron.Item, error) {
	state := planState{}
	if err := xml.Unmarshal(data, &state); nil != err {
		return nil, fault.InvalidContents
	}
	raw, err := armor.DecodeData(state.Plan, armor.LabelCronItem)
	if nil != err {
		return nil, err
	}
	p, err := Parse(raw)
	if nil != err {
		return nil, err
	}
	p.state = state.progress
	return p, nil
}
