// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package market - order books matched on each cron tick
//
// A book exists per instrument definition, currency and scale. An
// incoming trade is matched against resting offers at the resting
// offer's price; limit orders that are not completely filled rest in
// the book until they are filled, expire or are cancelled.
package market

import (
	"encoding/binary"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/wigggles/opentxs-sub024/cron"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/storage"
)

// number of recent sales kept per market
const recentSales = 20

// Sale - one fill
type Sale struct {
	Date     time.Time
	Price    int64
	Quantity int64
}

// Market - one order book
type Market struct {
	ID            identifier.Identifier
	InstrumentID  identifier.Identifier
	CurrencyID    identifier.Identifier
	Scale         int64
	bids          []*Trade
	asks          []*Trade
	lastSalePrice int64
	lastSaleDate  time.Time
	recent        []Sale
}

// MarketID - identifier of the book
func MarketID(instrumentID identifier.Identifier, currencyID identifier.Identifier, scale int64) identifier.Identifier {
	data := make([]byte, 0, 2*identifier.Length+8)
	data = append(data, instrumentID[:]...)
	data = append(data, currencyID[:]...)
	s := make([]byte, 8)
	binary.BigEndian.PutUint64(s, uint64(scale))
	return identifier.FromData(append(data, s...))
}

// Book - every market on the notary
type Book struct {
	sync.Mutex
	log     *logger.L
	folders *storage.Folders
	markets map[identifier.Identifier]*Market
}

// NewBook - empty book, persisted market statistics are read as
// markets are first used
func NewBook(folders *storage.Folders) *Book {
	return &Book{
		log:     logger.New("market"),
		folders: folders,
		markets: make(map[identifier.Identifier]*Market),
	}
}

// Decoder - cron decoder binding reloaded trades to the book
func (b *Book) Decoder() cron.Decoder {
	return func(data []byte) (cron.Item, error) {
		t, err := unmarshalTrade(data)
		if nil != err {
			return nil, err
		}
		t.Attach(b)
		return t, nil
	}
}

// must hold lock
func (b *Book) marketFor(t *Trade) *Market {
	id := t.MarketID()
	m, ok := b.markets[id]
	if ok {
		return m
	}
	m = &Market{
		ID:           id,
		InstrumentID: t.InstrumentID,
		CurrencyID:   t.CurrencyID,
		Scale:        t.Scale,
	}
	if err := b.loadStatistics(m); nil != err && fault.FileNotFound != err {
		b.log.Errorf("market: %s  statistics error: %s", id, err)
	}
	b.markets[id] = m
	return m
}

func (b *Book) processTrade(ctx cron.Context, t *Trade) (bool, error) {
	b.Lock()
	defer b.Unlock()

	m := b.marketFor(t)

	if t.IsStopOrder() && !t.stopActivated {
		last := m.lastSalePrice
		switch {
		case 0 == last:
			return true, nil
		case StopBelow == t.StopSign && last < t.StopPrice:
		case StopAbove == t.StopSign && last > t.StopPrice:
		default:
			return true, nil
		}
		t.stopActivated = true
		b.log.Infof("stop order: %d  activated at: %d", t.TransactionNumber, last)
	}

	if !t.IsMarketOrder() {
		m.insert(t)
	}

	err := b.match(ctx, m, t)

	if t.done() || t.IsMarketOrder() {
		m.delete(t)
		return false, err
	}
	return true, err
}

// match - fill t against the opposite side
func (b *Book) match(ctx cron.Context, m *Market, t *Trade) error {
	counters := m.asks
	if t.Selling {
		counters = m.bids
	}
	candidates := append([]*Trade{}, counters...)

	for _, c := range candidates {
		if t.done() {
			break
		}
		if c == t || c.done() {
			continue
		}
		if !crosses(t, c) {
			break
		}

		increment := t.MinimumIncrement
		if c.MinimumIncrement > increment {
			increment = c.MinimumIncrement
		}
		quantity := t.remaining()
		if c.remaining() < quantity {
			quantity = c.remaining()
		}
		quantity -= quantity % increment
		if 0 == quantity {
			continue
		}

		price := c.PriceLimit
		units := quantity / m.Scale
		if price > math.MaxInt64/units {
			b.log.Warnf("trade: %d  against: %d  payment overflows", t.TransactionNumber, c.TransactionNumber)
			continue
		}
		payment := units * price

		seller, buyer := t, c
		if !t.Selling {
			seller, buyer = c, t
		}
		movement := cron.Movement{
			Item:        t,
			ReceiptType: ledger.TxMarketReceipt,
			Moves: []cron.Move{
				{
					From:   side(seller, seller.AssetAccountID, seller.AssetClosingNumber),
					To:     side(buyer, buyer.AssetAccountID, buyer.AssetClosingNumber),
					Amount: quantity,
				},
				{
					From:   side(buyer, buyer.CurrencyAccountID, buyer.CurrencyClosingNumber),
					To:     side(seller, seller.CurrencyAccountID, seller.CurrencyClosingNumber),
					Amount: payment,
				},
			},
		}
		if err := ctx.MoveFunds(movement); nil != err {
			b.log.Warnf("trade: %d  against: %d  error: %s", t.TransactionNumber, c.TransactionNumber, err)
			if !fault.IsErrPolicy(err) {
				return err
			}
			continue
		}

		t.finishedSoFar += quantity
		c.finishedSoFar += quantity
		t.tradesAlready += 1
		c.tradesAlready += 1
		m.recordSale(Sale{
			Date:     ctx.Now().UTC(),
			Price:    price,
			Quantity: quantity,
		})
		if c.done() {
			m.delete(c)
		}
		b.log.Infof("market: %s  filled: %d at: %d  trades: %d/%d", m.ID, quantity, price, t.TransactionNumber, c.TransactionNumber)
		if err := b.saveStatistics(m); nil != err {
			b.log.Errorf("market: %s  save statistics error: %s", m.ID, err)
		}
	}
	return nil
}

// crosses - c is the resting side, candidates are in price order so
// the first failure ends the scan
func crosses(t *Trade, c *Trade) bool {
	if t.IsMarketOrder() {
		return true
	}
	if t.Selling {
		return c.PriceLimit >= t.PriceLimit
	}
	return c.PriceLimit <= t.PriceLimit
}

func side(t *Trade, accountID identifier.Identifier, closing int64) cron.Side {
	return cron.Side{
		NymID:         t.NymID,
		AccountID:     accountID,
		InReferenceTo: t.TransactionNumber,
		ClosingNumber: closing,
	}
}

func (b *Book) remove(t *Trade) {
	b.Lock()
	defer b.Unlock()
	if m, ok := b.markets[t.MarketID()]; ok {
		m.delete(t)
	}
}

// insert - keep bids highest first and asks lowest first, ties by age
func (m *Market) insert(t *Trade) {
	list := &m.asks
	if !t.Selling {
		list = &m.bids
	}
	for _, existing := range *list {
		if existing == t {
			return
		}
	}
	*list = append(*list, t)
	sort.SliceStable(*list, func(i, j int) bool {
		a, b := (*list)[i], (*list)[j]
		if a.PriceLimit == b.PriceLimit {
			return a.TransactionNumber < b.TransactionNumber
		}
		if t.Selling {
			return a.PriceLimit < b.PriceLimit
		}
		return a.PriceLimit > b.PriceLimit
	})
}

func (m *Market) delete(t *Trade) {
	for _, list := range []*[]*Trade{&m.bids, &m.asks} {
		for i, existing := range *list {
			if existing == t {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return
			}
		}
	}
}

func (m *Market) recordSale(s Sale) {
	m.lastSalePrice = s.Price
	m.lastSaleDate = s.Date
	m.recent = append(m.recent, s)
	if len(m.recent) > recentSales {
		m.recent = m.recent[len(m.recent)-recentSales:]
	}
}
