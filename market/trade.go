// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"encoding/xml"
	"time"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/cron"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
)

// ItemKind - cron decoder key for trades
const ItemKind = "trade"

// StopSign - trigger direction of a stop order
type StopSign string

// stop signs
const (
	NoStop    StopSign = ""
	StopBelow StopSign = "<"
	StopAbove StopSign = ">"
)

// Trade - a market offer placed in cron
//
// quantities are in asset units and are multiples of Scale; prices
// are in currency units per Scale asset units, zero being a market
// order which never rests in the book
type Trade struct {
	Contract              *contract.Contract
	NotaryID              identifier.Identifier
	NymID                 identifier.Identifier
	InstrumentID          identifier.Identifier
	CurrencyID            identifier.Identifier
	AssetAccountID        identifier.Identifier
	CurrencyAccountID     identifier.Identifier
	Scale                 int64
	Selling               bool
	PriceLimit            int64
	TotalAssets           int64
	MinimumIncrement      int64
	TransactionNumber     int64
	AssetClosingNumber    int64
	CurrencyClosingNumber int64
	StopSign              StopSign
	StopPrice             int64
	ValidFrom             time.Time
	ValidTo               time.Time

	// notary state, guarded by the book lock
	book          *Book
	finishedSoFar int64
	tradesAlready int64
	stopActivated bool
}

type tradeBody struct {
	XMLName               xml.Name `xml:"trade"`
	Version               int      `xml:"version,attr"`
	NotaryID              string   `xml:"notaryID,attr"`
	NymID                 string   `xml:"nymID,attr"`
	InstrumentID          string   `xml:"instrumentDefinitionID,attr"`
	CurrencyID            string   `xml:"currencyTypeID,attr"`
	AssetAccountID        string   `xml:"assetAcctID,attr"`
	CurrencyAccountID     string   `xml:"currencyAcctID,attr"`
	Scale                 int64    `xml:"marketScale,attr"`
	Selling               bool     `xml:"selling,attr"`
	PriceLimit            int64    `xml:"priceLimit,attr"`
	TotalAssets           int64    `xml:"totalAssetsOnOffer,attr"`
	MinimumIncrement      int64    `xml:"minimumIncrement,attr"`
	TransactionNumber     int64    `xml:"transactionNum,attr"`
	AssetClosingNumber    int64    `xml:"assetClosingNum,attr"`
	CurrencyClosingNumber int64    `xml:"currencyClosingNum,attr"`
	StopSign              string   `xml:"stopSign,attr,omitempty"`
	StopPrice             int64    `xml:"stopPrice,attr,omitempty"`
	ValidFrom             int64    `xml:"validFrom,attr"`
	ValidTo               int64    `xml:"validTo,attr"`
}

// NewTrade - empty trade
func NewTrade() *Trade {
	return &Trade{
		Contract: contract.New(contract.KindCronItem, contract.HashOfContents),
	}
}

// ContractKind - for contract.Contents
func (t *Trade) ContractKind() contract.Kind {
	return contract.KindCronItem
}

// UpdateContents - for contract.Contents
func (t *Trade) UpdateContents() ([]byte, error) {
	if err := t.Validate(); nil != err {
		return nil, err
	}
	return contract.MarshalBody(tradeBody{
		Version:               contract.DocumentVersion,
		NotaryID:              t.NotaryID.String(),
		NymID:                 t.NymID.String(),
		InstrumentID:          t.InstrumentID.String(),
		CurrencyID:            t.CurrencyID.String(),
		AssetAccountID:        t.AssetAccountID.String(),
		CurrencyAccountID:     t.CurrencyAccountID.String(),
		Scale:                 t.Scale,
		Selling:               t.Selling,
		PriceLimit:            t.PriceLimit,
		TotalAssets:           t.TotalAssets,
		MinimumIncrement:      t.MinimumIncrement,
		TransactionNumber:     t.TransactionNumber,
		AssetClosingNumber:    t.AssetClosingNumber,
		CurrencyClosingNumber: t.CurrencyClosingNumber,
		StopSign:              string(t.StopSign),
		StopPrice:             t.StopPrice,
		ValidFrom:             t.ValidFrom.Unix(),
		ValidTo:               unixOrZero(t.ValidTo),
	})
}

// ParseContents - for contract.Contents
func (t *Trade) ParseContents(unsigned []byte) error {
	body := tradeBody{}
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
		{body.NotaryID, &t.NotaryID},
		{body.NymID, &t.NymID},
		{body.InstrumentID, &t.InstrumentID},
		{body.CurrencyID, &t.CurrencyID},
		{body.AssetAccountID, &t.AssetAccountID},
		{body.CurrencyAccountID, &t.CurrencyAccountID},
	}
	for _, item := range ids {
		id, err := identifier.FromString(item.text)
		if nil != err {
			return err
		}
		*item.target = id
	}
	t.Scale = body.Scale
	t.Selling = body.Selling
	t.PriceLimit = body.PriceLimit
	t.TotalAssets = body.TotalAssets
	t.MinimumIncrement = body.MinimumIncrement
	t.TransactionNumber = body.TransactionNumber
	t.AssetClosingNumber = body.AssetClosingNumber
	t.CurrencyClosingNumber = body.CurrencyClosingNumber
	t.StopSign = StopSign(body.StopSign)
	t.StopPrice = body.StopPrice
	t.ValidFrom = time.Unix(body.ValidFrom, 0).UTC()
	t.ValidTo = timeOrZero(body.ValidTo)
	return t.Validate()
}

// Validate - offer terms are self consistent
func (t *Trade) Validate() error {
	switch {
	case t.Scale <= 0:
	case t.MinimumIncrement <= 0 || 0 != t.MinimumIncrement%t.Scale:
	case t.TotalAssets < t.MinimumIncrement || 0 != t.TotalAssets%t.Scale:
	case t.PriceLimit < 0:
	case t.InstrumentID == t.CurrencyID:
	case t.AssetAccountID == t.CurrencyAccountID:
	case t.TransactionNumber <= 0 || t.AssetClosingNumber <= 0 || t.CurrencyClosingNumber <= 0:
	case NoStop != t.StopSign && StopBelow != t.StopSign && StopAbove != t.StopSign:
	case NoStop != t.StopSign && t.StopPrice <= 0:
	default:
		return nil
	}
	return fault.InvalidOffer
}

// Create - fill the body and sign by the offering nym
func (t *Trade) Create(signer contract.Signer) error {
	return t.Contract.CreateContract(t, signer, "sign market offer")
}

// ParseTrade - parse, the signature is checked by the notary
func ParseTrade(raw []byte) (*Trade, error) {
	t := &Trade{}
	c, err := contract.Parse(raw, contract.HashOfContents, t)
	if nil != err {
		return nil, err
	}
	t.Contract = c
	return t, nil
}

// MarketID - the book the trade belongs to
func (t *Trade) MarketID() identifier.Identifier {
	return MarketID(t.InstrumentID, t.CurrencyID, t.Scale)
}

// IsMarketOrder - no price limit
func (t *Trade) IsMarketOrder() bool {
	return 0 == t.PriceLimit
}

// IsStopOrder - waits for a trigger price
func (t *Trade) IsStopOrder() bool {
	return NoStop != t.StopSign
}

// remaining - assets still to trade
func (t *Trade) remaining() int64 {
	return t.TotalAssets - t.finishedSoFar
}

// done - nothing left that a trade could fill
func (t *Trade) done() bool {
	return t.remaining() < t.MinimumIncrement
}

// FinishedSoFar - assets traded
func (t *Trade) FinishedSoFar() int64 {
	if nil != t.book {
		t.book.Lock()
		defer t.book.Unlock()
	}
	return t.finishedSoFar
}

// TradesAlready - number of fills
func (t *Trade) TradesAlready() int64 {
	if nil != t.book {
		t.book.Lock()
		defer t.book.Unlock()
	}
	return t.tradesAlready
}

// Attach - the book that processes the trade
func (t *Trade) Attach(book *Book) {
	t.book = book
}

// Kind - for cron.Item
func (t *Trade) Kind() string {
	return ItemKind
}

// Number - for cron.Item
func (t *Trade) Number() int64 {
	return t.TransactionNumber
}

// Originator - for cron.Item
func (t *Trade) Originator() identifier.Identifier {
	return t.NymID
}

// CanCancel - for cron.Item
func (t *Trade) CanCancel(nymID identifier.Identifier) bool {
	return nymID == t.NymID
}

// Closings - for cron.Item
func (t *Trade) Closings() []cron.Closing {
	return []cron.Closing{
		{
			NymID:         t.NymID,
			AccountID:     t.AssetAccountID,
			OpeningNumber: t.TransactionNumber,
			ClosingNumber: t.AssetClosingNumber,
		},
		{
			NymID:         t.NymID,
			AccountID:     t.CurrencyAccountID,
			OpeningNumber: t.TransactionNumber,
			ClosingNumber: t.CurrencyClosingNumber,
		},
	}
}

// Process - for cron.Item
func (t *Trade) Process(ctx cron.Context) (bool, error) {
	if nil == t.book {
		return false, fault.NotInitialised
	}
	now := ctx.Now()
	if now.Before(t.ValidFrom) {
		return true, nil
	}
	if !t.ValidTo.IsZero() && now.After(t.ValidTo) {
		return false, nil
	}
	return t.book.processTrade(ctx, t)
}

// Finish - for cron.Finisher
func (t *Trade) Finish() {
	if nil != t.book {
		t.book.remove(t)
	}
}

type tradeState struct {
	XMLName       xml.Name `xml:"tradeState"`
	FinishedSoFar int64    `xml:"finishedSoFar,attr"`
	TradesAlready int64    `xml:"tradesAlready,attr"`
	StopActivated bool     `xml:"stopActivated,attr"`
	Offer         string   `xml:"offer"`
}

// Marshal - for cron.Item
func (t *Trade) Marshal() ([]byte, error) {
	if nil != t.book {
		t.book.Lock()
		defer t.book.Unlock()
	}
	return xml.Marshal(tradeState{
		FinishedSoFar: t.finishedSoFar,
		TradesAlready: t.tradesAlready,
		StopActivated: t.stopActivated,
		Offer:         armor.EncodeData(armor.LabelCronItem, t.Contract.RawFile()),
	})
}

func unmarshalTrade(data []byte) (*Trade, error) {
	state := tradeState{}
	if err := xml.Unmarshal(data, &state); nil != err {
		return nil, fault.InvalidContents
	}
	raw, err := armor.DecodeData(state.Offer, armor.LabelCronItem)
	if nil != err {
		return nil, err
	}
	t, err := ParseTrade(raw)
	if nil != err {
		return nil, err
	}
	if state.FinishedSoFar < 0 || state.FinishedSoFar > t.TotalAssets {
		return nil, fault.InvalidOffer
	}
	t.finishedSoFar = state.FinishedSoFar
	t.tradesAlready = state.TradesAlready
	t.stopActivated = state.StopActivated
	return t, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(seconds int64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0).UTC()
}
