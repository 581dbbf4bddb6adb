// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/cron"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/market"
	"github.com/wigggles/opentxs-sub024/nym"
	"github.com/wigggles/opentxs-sub024/paymentplan"
	"github.com/wigggles/opentxs-sub024/smartcontract"
)

// party numbers consumed when a cron item is activated
type consumption struct {
	nymID   identifier.Identifier
	numbers []int64
}

// cronAttachment - the armored item carried by a request item
func cronAttachment(t *ledger.Transaction, itemType ledger.ItemType) (*ledger.Item, []byte, error) {
	item, ok := t.Item(itemType)
	if !ok {
		return nil, nil, fault.MissingParameters
	}
	raw, err := armor.DecodeData(item.Attachment, armor.LabelCronItem)
	if nil != err {
		return nil, nil, err
	}
	return item, raw, nil
}

// checkAccounts - each account is open, owned and of the instrument
//
// account locks are held only while reading
func (s *Server) checkAccounts(owners map[identifier.Identifier]identifier.Identifier, instruments map[identifier.Identifier]identifier.Identifier) error {
	ids := make([]identifier.Identifier, 0, len(owners))
	for id := range owners {
		ids = append(ids, id)
	}
	unlock := s.locks.accounts.lock(ids...)
	defer unlock()

	for id, nymID := range owners {
		a, err := s.loadOwnedAccount(id, nymID)
		if nil != err {
			return err
		}
		if expected, ok := instruments[id]; ok && expected != a.InstrumentID {
			return fault.AssetMismatch
		}
	}
	return nil
}

// activate - consume every party's numbers then hand the item to
// cron, the numbers are restored if cron refuses it
//
// must not hold account locks
func (s *Server) activate(item cron.Item, parties []consumption) error {
	for _, p := range parties {
		for _, n := range p.numbers {
			if err := s.transactor.VerifyAvailable(p.nymID, n); nil != err {
				return err
			}
		}
	}

	restore := func(done []consumption) {
		for _, p := range done {
			if err := s.transactor.Restore(p.nymID, p.numbers...); nil != err {
				s.log.Errorf("restore numbers: %v  nym: %s  error: %s", p.numbers, p.nymID, err)
			}
		}
	}
	for i, p := range parties {
		if err := s.transactor.Consume(p.nymID, p.numbers...); nil != err {
			restore(parties[:i])
			return err
		}
	}
	if err := s.cron.AddItem(item); nil != err {
		restore(parties)
		return err
	}
	return nil
}

func (s *Server) cronReply(t *ledger.Transaction, item *ledger.Item, statement *ledger.Item) *ledger.Transaction {
	result := s.replyTo(t)
	result.AddItem(item.Reply(true))
	result.AddItem(statement.Reply(true))
	return result
}

// marketOffer - a signed trade entering the book through cron
func (s *Server) marketOffer(t *ledger.Transaction, sender *nym.Nym) (*ledger.Transaction, error) {
	item, raw, err := cronAttachment(t, ledger.ItemMarketOffer)
	if nil != err {
		return nil, err
	}
	trade, err := market.ParseTrade(raw)
	if nil != err {
		return nil, err
	}
	if err := trade.Contract.VerifySignature(sender, t.NymID); nil != err {
		return nil, err
	}
	switch {
	case trade.NymID != t.NymID:
		return nil, fault.IdentifierMismatch
	case trade.NotaryID != s.notaryID:
		return nil, fault.NotaryMismatch
	case trade.TransactionNumber != t.Number || trade.AssetAccountID != t.AccountID:
		return nil, fault.IdentifierMismatch
	}

	err = s.checkAccounts(
		map[identifier.Identifier]identifier.Identifier{
			trade.AssetAccountID:    t.NymID,
			trade.CurrencyAccountID: t.NymID,
		},
		map[identifier.Identifier]identifier.Identifier{
			trade.AssetAccountID:    trade.InstrumentID,
			trade.CurrencyAccountID: trade.CurrencyID,
		},
	)
	if nil != err {
		return nil, err
	}
	statement, err := s.verifyStatement(t, nil)
	if nil != err {
		return nil, err
	}

	trade.Attach(s.book)
	err = s.activate(trade, []consumption{
		{
			nymID:   t.NymID,
			numbers: []int64{trade.TransactionNumber, trade.AssetClosingNumber, trade.CurrencyClosingNumber},
		},
	})
	if nil != err {
		return nil, err
	}
	return s.cronReply(t, item, statement), nil
}

// paymentPlan - a plan proposed by the recipient and confirmed by the
// sender, who submits it
func (s *Server) paymentPlan(t *ledger.Transaction, sender *nym.Nym) (*ledger.Transaction, error) {
	item, raw, err := cronAttachment(t, ledger.ItemPaymentPlan)
	if nil != err {
		return nil, err
	}
	plan, err := paymentplan.Parse(raw)
	if nil != err {
		return nil, err
	}
	switch {
	case plan.SenderNymID != t.NymID:
		return nil, fault.IdentifierMismatch
	case plan.NotaryID != s.notaryID:
		return nil, fault.NotaryMismatch
	case plan.TransactionNumber != t.Number || plan.SenderAccountID != t.AccountID:
		return nil, fault.IdentifierMismatch
	}
	recipient, err := s.loadNym(plan.RecipientNymID)
	if nil != err {
		return nil, err
	}
	if err := plan.VerifyParties(sender, recipient); nil != err {
		return nil, err
	}

	err = s.checkAccounts(
		map[identifier.Identifier]identifier.Identifier{
			plan.SenderAccountID:    plan.SenderNymID,
			plan.RecipientAccountID: plan.RecipientNymID,
		},
		map[identifier.Identifier]identifier.Identifier{
			plan.SenderAccountID:    plan.InstrumentID,
			plan.RecipientAccountID: plan.InstrumentID,
		},
	)
	if nil != err {
		return nil, err
	}
	statement, err := s.verifyStatement(t, nil)
	if nil != err {
		return nil, err
	}

	err = s.activate(plan, []consumption{
		{
			nymID:   plan.SenderNymID,
			numbers: []int64{plan.TransactionNumber, plan.SenderClosingNumber},
		},
		{
			nymID:   plan.RecipientNymID,
			numbers: []int64{plan.RecipientOpeningNumber, plan.RecipientClosingNumber},
		},
	})
	if nil != err {
		return nil, err
	}
	return s.cronReply(t, item, statement), nil
}

// smartContract - a contract signed by every party, activated by one
// of them
func (s *Server) smartContract(t *ledger.Transaction) (*ledger.Transaction, error) {
	item, raw, err := cronAttachment(t, ledger.ItemSmartContract)
	if nil != err {
		return nil, err
	}
	sc, err := smartcontract.Parse(raw, s.scripts)
	if nil != err {
		return nil, err
	}
	switch {
	case sc.NotaryID != s.notaryID:
		return nil, fault.NotaryMismatch
	case sc.Originator() != t.NymID || sc.Number() != t.Number:
		return nil, fault.IdentifierMismatch
	}
	err = sc.VerifyParties(func(nymID identifier.Identifier) (contract.Verifier, error) {
		n, err := s.loadNym(nymID)
		if nil != err {
			return nil, err
		}
		return n, nil
	})
	if nil != err {
		return nil, err
	}

	numbers := make(map[identifier.Identifier][]int64)
	order := []identifier.Identifier{}
	add := func(nymID identifier.Identifier, n int64) {
		if _, ok := numbers[nymID]; !ok {
			order = append(order, nymID)
		}
		numbers[nymID] = append(numbers[nymID], n)
	}
	for _, p := range sc.Parties {
		add(p.NymID, p.OpeningNumber)
	}
	owners := make(map[identifier.Identifier]identifier.Identifier)
	instruments := make(map[identifier.Identifier]identifier.Identifier)
	for _, a := range sc.Accounts {
		p, err := sc.Party(a.Party)
		if nil != err {
			return nil, err
		}
		if _, ok := owners[a.AccountID]; ok {
			return nil, fault.InvalidSmartContract
		}
		owners[a.AccountID] = p.NymID
		if !a.InstrumentID.IsZero() {
			instruments[a.AccountID] = a.InstrumentID
		}
		add(p.NymID, a.ClosingNumber)
	}

	if err := s.checkAccounts(owners, instruments); nil != err {
		return nil, err
	}
	statement, err := s.verifyStatement(t, nil)
	if nil != err {
		return nil, err
	}

	parties := make([]consumption, 0, len(order))
	for _, nymID := range order {
		parties = append(parties, consumption{nymID: nymID, numbers: numbers[nymID]})
	}
	if err := s.activate(sc, parties); nil != err {
		return nil, err
	}
	return s.cronReply(t, item, statement), nil
}

// cancelCronItem - the item leaves cron on the next tick
func (s *Server) cancelCronItem(t *ledger.Transaction) (*ledger.Transaction, error) {
	item, ok := t.Item(ledger.ItemCancelCronItem)
	if !ok {
		return nil, fault.MissingParameters
	}
	statement, err := s.verifyStatement(t, nil, t.Number)
	if nil != err {
		return nil, err
	}
	if err := s.transactor.Consume(t.NymID, t.Number); nil != err {
		return nil, err
	}
	if err := s.cron.CancelItem(item.InReferenceTo, t.NymID); nil != err {
		if e := s.transactor.Restore(t.NymID, t.Number); nil != e {
			s.log.Errorf("restore number: %d  error: %s", t.Number, e)
		}
		return nil, err
	}
	if err := s.transactor.Close(t.NymID, t.Number); nil != err {
		s.log.Errorf("close number: %d  error: %s", t.Number, err)
	}
	return s.cronReply(t, item, statement), nil
}
