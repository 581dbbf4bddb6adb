// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cron - the scheduler for market offers, payment plans and
// smart contracts
//
// Each tick first refills the local transaction number pool from the
// transactor, then advances every active item in number order. A
// tick whose refill fails is skipped.
package cron

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/storage"
)

// defaults
const (
	DefaultRefillAmount       = 20
	DefaultMaximumItemsPerNym = 10
	DefaultHeartbeat          = 10 * time.Second
)

// Issuer - source of fresh transaction numbers
type Issuer interface {
	IssueNextTransactionNumber() (int64, error)
}

// Configuration - cron policy
type Configuration struct {
	RefillAmount       int
	MaximumItemsPerNym int
	Heartbeat          time.Duration
}

type entry struct {
	item      Item
	cancelled bool
}

// Cron - the active item set and its number pool
type Cron struct {
	sync.Mutex
	log       *logger.L
	db        *storage.Database
	folders   *storage.Folders
	issuer    Issuer
	config    Configuration
	decoders  map[string]Decoder
	items     map[int64]*entry
	activated bool

	// the pool has its own lock, items draw numbers during a tick
	poolLock sync.Mutex
}

// New - inactive cron
func New(db *storage.Database, folders *storage.Folders, issuer Issuer, config Configuration) *Cron {
	if config.RefillAmount <= 0 {
		config.RefillAmount = DefaultRefillAmount
	}
	if config.MaximumItemsPerNym <= 0 {
		config.MaximumItemsPerNym = DefaultMaximumItemsPerNym
	}
	if config.Heartbeat <= 0 {
		config.Heartbeat = DefaultHeartbeat
	}
	return &Cron{
		log:      logger.New("cron"),
		db:       db,
		folders:  folders,
		issuer:   issuer,
		config:   config,
		decoders: make(map[string]Decoder),
		items:    make(map[int64]*entry),
	}
}

// RegisterDecoder - decoder for persisted items of a kind
//
// must be called before ActivateCron
func (c *Cron) RegisterDecoder(kind string, decoder Decoder) {
	c.Lock()
	defer c.Unlock()
	c.decoders[kind] = decoder
}

// ActivateCron - load persisted items and start accepting ticks
//
// calling it again has no effect
func (c *Cron) ActivateCron() error {
	c.Lock()
	defer c.Unlock()

	if c.activated {
		return nil
	}
	if err := c.loadItems(); nil != err {
		return err
	}
	c.activated = true
	c.log.Infof("activated with: %d items", len(c.items))
	return nil
}

// IsActivated - ticks are being accepted
func (c *Cron) IsActivated() bool {
	c.Lock()
	defer c.Unlock()
	return c.activated
}

// AddItem - activate a new item
//
// fails without side effects when the number is in use or the
// originator already has the maximum number of items
func (c *Cron) AddItem(item Item) error {
	c.Lock()
	defer c.Unlock()

	if !c.activated {
		return fault.CronNotActivated
	}
	if _, ok := c.items[item.Number()]; ok {
		return fault.CronItemAlreadyActive
	}
	if c.countFor(item.Originator()) >= c.config.MaximumItemsPerNym {
		c.log.Warnf("nym: %s  has reached the item limit: %d", item.Originator(), c.config.MaximumItemsPerNym)
		return fault.CronItemLimitExceeded
	}
	e := &entry{item: item}
	if err := c.saveItem(e); nil != err {
		return err
	}
	c.items[item.Number()] = e
	c.log.Infof("added: %s  number: %d  nym: %s", item.Kind(), item.Number(), item.Originator())
	return nil
}

// CancelItem - mark an item to be removed on the next tick
func (c *Cron) CancelItem(number int64, nymID identifier.Identifier) error {
	c.Lock()
	defer c.Unlock()

	e, ok := c.items[number]
	if !ok {
		return fault.CronItemNotFound
	}
	if !e.item.CanCancel(nymID) {
		return fault.CommandNotAllowed
	}
	if e.cancelled {
		return nil
	}
	e.cancelled = true
	if err := c.saveItem(e); nil != err {
		e.cancelled = false
		return err
	}
	c.log.Infof("cancelled: %d  by: %s", number, nymID)
	return nil
}

// Item - an active item by number
func (c *Cron) Item(number int64) (Item, bool) {
	c.Lock()
	defer c.Unlock()
	e, ok := c.items[number]
	if !ok {
		return nil, false
	}
	return e.item, true
}

// IsCancelled - the item is waiting for removal
func (c *Cron) IsCancelled(number int64) bool {
	c.Lock()
	defer c.Unlock()
	e, ok := c.items[number]
	return ok && e.cancelled
}

// Count - number of active items
func (c *Cron) Count() int {
	c.Lock()
	defer c.Unlock()
	return len(c.items)
}

// CountForNym - active items originated by a nym
func (c *Cron) CountForNym(nymID identifier.Identifier) int {
	c.Lock()
	defer c.Unlock()
	return c.countFor(nymID)
}

func (c *Cron) countFor(nymID identifier.Identifier) int {
	n := 0
	for _, e := range c.items {
		if nymID == e.item.Originator() {
			n += 1
		}
	}
	return n
}

// ProcessCron - one tick
func (c *Cron) ProcessCron(ctx Context) error {
	c.Lock()
	defer c.Unlock()

	if !c.activated {
		return fault.CronNotActivated
	}

	if err := c.refill(); nil != err {
		c.log.Warnf("refill failed, tick skipped: %s", err)
		return err
	}

	c.processCronItems(ctx)
	return nil
}

func (c *Cron) processCronItems(ctx Context) {
	numbers := make([]int64, 0, len(c.items))
	for n := range c.items {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	for _, n := range numbers {
		e := c.items[n]
		if e.cancelled {
			c.remove(ctx, e)
			continue
		}
		more, err := e.item.Process(ctx)
		if nil != err {
			c.log.Errorf("process: %s  number: %d  error: %s", e.item.Kind(), n, err)
		}
		if !more {
			c.remove(ctx, e)
			continue
		}
		if err := c.saveItem(e); nil != err {
			c.log.Errorf("save: %d  error: %s", n, err)
		}
	}
}

func (c *Cron) remove(ctx Context, e *entry) {
	n := e.item.Number()
	if f, ok := e.item.(Finisher); ok {
		f.Finish()
	}
	final := Final{
		Item:      e.item,
		Cancelled: e.cancelled,
		Closings:  e.item.Closings(),
	}
	if err := ctx.FinalReceipt(final); nil != err {
		c.log.Errorf("final receipt: %d  error: %s", n, err)
	}
	delete(c.items, n)
	if err := c.folders.Erase(storage.Cron, itemFileName(n)); nil != err && fault.FileNotFound != err {
		c.log.Errorf("erase: %d  error: %s", n, err)
	}
	c.log.Infof("removed: %s  number: %d  cancelled: %t", e.item.Kind(), n, e.cancelled)
}

func itemFileName(n int64) string {
	return strconv.FormatInt(n, 10) + ".item"
}
