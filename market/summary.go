// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"encoding/xml"
	"sort"
	"time"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/storage"
)

// Summary - public view of a market
type Summary struct {
	MarketID      identifier.Identifier `xml:"marketID,attr"`
	InstrumentID  identifier.Identifier `xml:"instrumentDefinitionID,attr"`
	CurrencyID    identifier.Identifier `xml:"currencyID,attr"`
	Scale         int64                 `xml:"scale,attr"`
	Bids          int                   `xml:"numberBids,attr"`
	Asks          int                   `xml:"numberAsks,attr"`
	LastSalePrice int64                 `xml:"lastSalePrice,attr"`
	LastSaleDate  int64                 `xml:"lastSaleDate,attr"`
}

// OfferSummary - public view of a resting offer
type OfferSummary struct {
	TransactionNumber int64 `xml:"transactionNum,attr"`
	Selling           bool  `xml:"selling,attr"`
	Price             int64 `xml:"priceLimit,attr"`
	Available         int64 `xml:"availableAssets,attr"`
	MinimumIncrement  int64 `xml:"minimumIncrement,attr"`
	Date              int64 `xml:"date,attr"`
}

func (m *Market) summary() Summary {
	s := Summary{
		MarketID:      m.ID,
		InstrumentID:  m.InstrumentID,
		CurrencyID:    m.CurrencyID,
		Scale:         m.Scale,
		Bids:          len(m.bids),
		Asks:          len(m.asks),
		LastSalePrice: m.lastSalePrice,
	}
	if !m.lastSaleDate.IsZero() {
		s.LastSaleDate = m.lastSaleDate.Unix()
	}
	return s
}

// Markets - every known market ordered by identifier
func (b *Book) Markets() []Summary {
	b.Lock()
	defer b.Unlock()

	result := make([]Summary, 0, len(b.markets))
	for _, m := range b.markets {
		result = append(result, m.summary())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MarketID.Compare(result[j].MarketID) < 0
	})
	return result
}

// Market - statistics of one market
func (b *Book) Market(marketID identifier.Identifier) (Summary, error) {
	b.Lock()
	defer b.Unlock()

	m, ok := b.markets[marketID]
	if !ok {
		return Summary{}, fault.MarketNotFound
	}
	return m.summary(), nil
}

// Offers - best bids then best asks, at most depth of each, zero for all
func (b *Book) Offers(marketID identifier.Identifier, depth int) ([]OfferSummary, error) {
	b.Lock()
	defer b.Unlock()

	m, ok := b.markets[marketID]
	if !ok {
		return nil, fault.MarketNotFound
	}
	result := make([]OfferSummary, 0, len(m.bids)+len(m.asks))
	for _, list := range [][]*Trade{m.bids, m.asks} {
		for i, t := range list {
			if depth > 0 && i >= depth {
				break
			}
			result = append(result, OfferSummary{
				TransactionNumber: t.TransactionNumber,
				Selling:           t.Selling,
				Price:             t.PriceLimit,
				Available:         t.remaining(),
				MinimumIncrement:  t.MinimumIncrement,
				Date:              t.ValidFrom.Unix(),
			})
		}
	}
	return result, nil
}

// RecentSales - latest fills, oldest first
func (b *Book) RecentSales(marketID identifier.Identifier) ([]Sale, error) {
	b.Lock()
	defer b.Unlock()

	m, ok := b.markets[marketID]
	if !ok {
		return nil, fault.MarketNotFound
	}
	return append([]Sale{}, m.recent...), nil
}

type saleBody struct {
	Date     int64 `xml:"date,attr"`
	Price    int64 `xml:"price,attr"`
	Quantity int64 `xml:"quantity,attr"`
}

type statisticsBody struct {
	XMLName       xml.Name   `xml:"market"`
	InstrumentID  string     `xml:"instrumentDefinitionID,attr"`
	CurrencyID    string     `xml:"currencyID,attr"`
	Scale         int64      `xml:"scale,attr"`
	LastSalePrice int64      `xml:"lastSalePrice,attr"`
	LastSaleDate  int64      `xml:"lastSaleDate,attr"`
	Sales         []saleBody `xml:"sale"`
}

// must hold lock
func (b *Book) saveStatistics(m *Market) error {
	body := statisticsBody{
		InstrumentID:  m.InstrumentID.String(),
		CurrencyID:    m.CurrencyID.String(),
		Scale:         m.Scale,
		LastSalePrice: m.lastSalePrice,
		LastSaleDate:  m.lastSaleDate.Unix(),
	}
	for _, s := range m.recent {
		body.Sales = append(body.Sales, saleBody{
			Date:     s.Date.Unix(),
			Price:    s.Price,
			Quantity: s.Quantity,
		})
	}
	data, err := xml.MarshalIndent(body, "", " ")
	if nil != err {
		return err
	}
	return b.folders.Save(data, storage.Markets, m.ID.String())
}

// must hold lock
func (b *Book) loadStatistics(m *Market) error {
	data, err := b.folders.Load(storage.Markets, m.ID.String())
	if nil != err {
		return err
	}
	body := statisticsBody{}
	if err := xml.Unmarshal(data, &body); nil != err {
		return fault.InvalidContents
	}
	if body.Scale != m.Scale || body.InstrumentID != m.InstrumentID.String() || body.CurrencyID != m.CurrencyID.String() {
		return fault.IdentifierMismatch
	}
	m.lastSalePrice = body.LastSalePrice
	if 0 != body.LastSaleDate {
		m.lastSaleDate = time.Unix(body.LastSaleDate, 0).UTC()
	}
	for _, s := range body.Sales {
		m.recent = append(m.recent, Sale{
			Date:     time.Unix(s.Date, 0).UTC(),
			Price:    s.Price,
			Quantity: s.Quantity,
		})
	}
	return nil
}

// LoadMarkets - make every persisted market visible before any
// trade touches it
func (b *Book) LoadMarkets() error {
	names, err := b.folders.List(storage.Markets)
	if nil != err {
		return err
	}
	b.Lock()
	defer b.Unlock()
	for _, name := range names {
		id, err := identifier.FromString(name)
		if nil != err {
			continue
		}
		if _, ok := b.markets[id]; ok {
			continue
		}
		data, err := b.folders.Load(storage.Markets, name)
		if nil != err {
			return err
		}
		body := statisticsBody{}
		if err := xml.Unmarshal(data, &body); nil != err {
			b.log.Errorf("market file: %q  error: %s", name, err)
			continue
		}
		instrumentID, err1 := identifier.FromString(body.InstrumentID)
		currencyID, err2 := identifier.FromString(body.CurrencyID)
		if nil != err1 || nil != err2 || id != MarketID(instrumentID, currencyID, body.Scale) {
			b.log.Errorf("market file: %q  identifier mismatch", name)
			continue
		}
		m := &Market{
			ID:           id,
			InstrumentID: instrumentID,
			CurrencyID:   currencyID,
			Scale:        body.Scale,
		}
		if err := b.loadStatistics(m); nil != err {
			b.log.Errorf("market file: %q  error: %s", name, err)
			continue
		}
		b.markets[id] = m
	}
	return nil
}
