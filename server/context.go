// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"time"

	"github.com/wigggles/opentxs-sub024/account"
	"github.com/wigggles/opentxs-sub024/cron"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
)

// notaryContext - the services cron items use during a tick
//
// receipt numbers come from the cron pool, the caller holds the cron
// lock
type notaryContext struct {
	server *Server
}

func (s *Server) cronContext() *notaryContext {
	return &notaryContext{
		server: s,
	}
}

// Now - for cron.Context
func (c *notaryContext) Now() time.Time {
	return time.Now().UTC()
}

// NotaryID - for cron.Context
func (c *notaryContext) NotaryID() identifier.Identifier {
	return c.server.notaryID
}

type touched struct {
	side    cron.Side
	delta   int64
	account *account.Account
	inbox   *ledger.Ledger
}

// MoveFunds - for cron.Context
//
// every move is checked and applied in memory before anything is
// stored; each touched account gets one receipt with its net change
func (c *notaryContext) MoveFunds(movement cron.Movement) error {
	s := c.server
	if 0 == len(movement.Moves) {
		return fault.InvalidCount
	}

	sides := make(map[identifier.Identifier]*touched)
	order := []identifier.Identifier{}
	note := func(side cron.Side, delta int64) error {
		if t, ok := sides[side.AccountID]; ok {
			if t.side.NymID != side.NymID {
				return fault.AccountOwnerMismatch
			}
			t.delta += delta
			return nil
		}
		sides[side.AccountID] = &touched{
			side:  side,
			delta: delta,
		}
		order = append(order, side.AccountID)
		return nil
	}
	for _, m := range movement.Moves {
		if m.Amount <= 0 {
			return fault.InvalidAmount
		}
		if err := note(m.From, -m.Amount); nil != err {
			return err
		}
		if err := note(m.To, m.Amount); nil != err {
			return err
		}
	}

	unlock := s.locks.accounts.lock(order...)
	defer unlock()

	for _, id := range order {
		t := sides[id]
		a, err := s.loadOwnedAccount(id, t.side.NymID)
		if nil != err {
			return err
		}
		inbox, err := a.LoadInbox(s.folders)
		if nil != err {
			return err
		}
		if inbox.Count() >= s.currentSettings().MaximumBoxSize {
			return fault.BoxFull
		}
		t.account = a
		t.inbox = inbox
	}

	for _, m := range movement.Moves {
		from := sides[m.From.AccountID].account
		to := sides[m.To.AccountID].account
		if from.InstrumentID != to.InstrumentID {
			return fault.AssetMismatch
		}
		if err := from.Debit(m.Amount); nil != err {
			return err
		}
		if err := to.Credit(m.Amount); nil != err {
			return err
		}
	}

	numbers := make([]int64, len(order))
	for i, id := range order {
		n, err := s.cron.TakeNumber()
		if nil != err {
			s.log.Errorf("receipt number for: %s  error: %s", id, err)
			return err
		}
		numbers[i] = n
	}

	for i, id := range order {
		t := sides[id]
		receipt := s.newReceipt(movement.ReceiptType, t.side.NymID, id, numbers[i], t.delta)
		receipt.InReferenceTo = t.side.InReferenceTo
		receipt.ClosingNumber = t.side.ClosingNumber
		receipt.Items[0].Note = movement.Note
		if err := s.addToBox(t.inbox, receipt); nil != err {
			return err
		}
	}

	for _, id := range order {
		t := sides[id]
		if err := s.saveAccountAndInbox(t.account, t.inbox); nil != err {
			s.log.Errorf("save account: %s  error: %s", id, err)
			return err
		}
	}
	return nil
}

// FinalReceipt - for cron.Context
//
// each closing account gets a final receipt naming its closing
// number; each party's nymbox gets one naming the opening number
func (c *notaryContext) FinalReceipt(final cron.Final) error {
	s := c.server
	var firstErr error
	record := func(err error) {
		if nil != err && nil == firstErr {
			firstErr = err
		}
	}

	type opening struct {
		nymID  identifier.Identifier
		number int64
	}
	notified := make(map[opening]struct{})

	for _, closing := range final.Closings {
		record(c.finalReceipt(closing, final.Cancelled))

		o := opening{nymID: closing.NymID, number: closing.OpeningNumber}
		if _, ok := notified[o]; ok {
			continue
		}
		notified[o] = struct{}{}

		n, err := s.cron.TakeNumber()
		if nil != err {
			record(err)
			continue
		}
		notice := s.newReceipt(ledger.TxFinalReceipt, closing.NymID, closing.NymID, n, 0)
		notice.InReferenceTo = closing.OpeningNumber
		notice.Cancelled = final.Cancelled
		record(s.deliverToNymbox(closing.NymID, notice))
	}
	return firstErr
}

func (c *notaryContext) finalReceipt(closing cron.Closing, cancelled bool) error {
	s := c.server

	unlock := s.locks.accounts.lock(closing.AccountID)
	defer unlock()

	a, err := account.LoadAccount(s.folders, closing.AccountID, s.notaryID)
	if nil != err {
		return err
	}
	if err := a.VerifyOwner(closing.NymID); nil != err {
		return err
	}
	inbox, err := a.LoadInbox(s.folders)
	if nil != err {
		return err
	}
	n, err := s.cron.TakeNumber()
	if nil != err {
		return err
	}
	receipt := s.newReceipt(ledger.TxFinalReceipt, closing.NymID, closing.AccountID, n, 0)
	receipt.InReferenceTo = closing.OpeningNumber
	receipt.ClosingNumber = closing.ClosingNumber
	receipt.Cancelled = cancelled
	if err := s.addToBox(inbox, receipt); nil != err {
		return err
	}
	return s.saveAccountAndInbox(a, inbox)
}
