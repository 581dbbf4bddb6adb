// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"encoding/xml"

	"github.com/patrickmn/go-cache"

	"github.com/wigggles/opentxs-sub024/account"
	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/market"
	"github.com/wigggles/opentxs-sub024/message"
	"github.com/wigggles/opentxs-sub024/nym"
	"github.com/wigggles/opentxs-sub024/storage"
	"github.com/wigggles/opentxs-sub024/transactor"
)

// headers naming the parts of an account data payload
const (
	partHeader  = "Kind"
	partAccount = "account"
	partInbox   = "inbox"
	partOutbox  = "outbox"
)

func (s *Server) pingNotary(request *message.Message) (*message.Message, error) {
	return message.NewReply(request, true), nil
}

// registerNym - store the public nym and start tracking it
//
// registering again succeeds without change
func (s *Server) registerNym(request *message.Message) (*message.Message, error) {
	if "" == request.Payload {
		return nil, fault.MissingParameters
	}
	n, err := nym.ParsePublic(s.engine, request.Payload, s.urlVerifier)
	if nil != err {
		return nil, err
	}
	if n.ID() != request.NymID {
		return nil, fault.IdentifierMismatch
	}
	if err := request.Verify(n); nil != err {
		return nil, err
	}
	if !s.currentSettings().IsAllowed(string(request.Command), request.NymID.String()) {
		return nil, fault.CommandNotAllowed
	}

	unlock := s.locks.contexts.lock(request.NymID)
	defer unlock()

	if !s.transactor.IsRegistered(request.NymID) {
		if err := n.SavePublic(s.folders); nil != err {
			return nil, err
		}
		if err := s.createNymbox(n); nil != err {
			return nil, err
		}
		if err := s.transactor.RegisterNym(request.NymID); nil != err {
			return nil, err
		}
		s.nyms.Set(n.ID().String(), n, cache.DefaultExpiration)
		s.log.Infof("registered nym: %s", n.ID())
	}

	current, err := s.transactor.RequestNumber(request.NymID)
	if nil != err {
		return nil, err
	}
	reply := message.NewReply(request, true)
	reply.RequestNumber = current
	return reply, nil
}

func (s *Server) createNymbox(n *nym.Nym) error {
	unlock := s.locks.nymboxes.lock(n.ID())
	defer unlock()

	nymbox, err := ledger.LoadOrCreate(s.folders, ledger.Nymbox, n.ID(), n.ID(), s.notaryID)
	if nil != err {
		return err
	}
	return nymbox.SaveLedger(s.folders, s.notary)
}

func (s *Server) unregisterNym(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	if err := s.transactor.UnregisterNym(request.NymID); nil != err {
		return nil, err
	}

	unlock := s.locks.nymboxes.lock(request.NymID)
	err := s.folders.Erase(storage.Nymbox, request.NymID.String())
	unlock()
	if nil != err && fault.FileNotFound != err {
		s.log.Errorf("erase nymbox: %s  error: %s", request.NymID, err)
	}
	s.nyms.Delete(request.NymID.String())
	s.log.Infof("unregistered nym: %s", request.NymID)
	return message.NewReply(request, true), nil
}

// checkNym - the public form of another nym
func (s *Server) checkNym(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	target, err := s.loadNym(request.RecipientNymID)
	if nil != err {
		return nil, err
	}
	bundle, err := target.PublicBundle()
	if nil != err {
		return nil, err
	}
	reply := message.NewReply(request, true)
	reply.Payload = bundle
	return reply, nil
}

func (s *Server) getRequestNumber(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	current, err := s.transactor.RequestNumber(request.NymID)
	if nil != err {
		return nil, err
	}
	reply := message.NewReply(request, true)
	reply.RequestNumber = current
	return reply, nil
}

// getTransactionNumbers - tentative numbers delivered in a blank
// nymbox entry, they become available once the nym accepts them
func (s *Server) getTransactionNumbers(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	count := int(request.Depth)
	if count <= 0 {
		count = 1
	}
	if count > transactor.MaximumIssue {
		return nil, fault.InvalidCount
	}

	numbers, err := s.transactor.IssueNumbersToNym(request.NymID, count)
	if nil != err {
		return nil, err
	}
	number, err := s.transactor.IssueNextTransactionNumber()
	if nil == err {
		blank := s.newReceipt(ledger.TxBlank, request.NymID, request.NymID, number, 0)
		blank.Items[0].Numbers = numbers
		err = s.deliverToNymbox(request.NymID, blank)
	}
	if nil != err {
		if e := s.transactor.RejectTentative(request.NymID, numbers); nil != e {
			s.log.Errorf("withdraw tentative numbers: %v  error: %s", numbers, e)
		}
		return nil, err
	}

	reply := message.NewReply(request, true)
	reply.TransactionNumber = number
	reply.Numbers = numbers
	return reply, nil
}

// getNymbox - the abbreviated nymbox
func (s *Server) getNymbox(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	unlock := s.locks.nymboxes.lock(request.NymID)
	defer unlock()

	nymbox, err := ledger.LoadOrCreate(s.folders, ledger.Nymbox, request.NymID, request.NymID, s.notaryID)
	if nil != err {
		return nil, err
	}
	if !nymbox.Contract.IsSigned() {
		if err := nymbox.Sign(s.notary); nil != err {
			return nil, err
		}
	}
	reply := message.NewReply(request, true)
	reply.Payload = encodePayload(nymbox.Contract.RawFile())
	reply.NymboxHash = nymbox.Hash()
	return reply, nil
}

// getBoxReceipt - the full form of one boxed transaction
func (s *Server) getBoxReceipt(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	var box *ledger.Ledger
	switch request.BoxType {
	case ledger.Nymbox:
		unlock := s.locks.nymboxes.lock(request.NymID)
		defer unlock()
		b, err := ledger.LoadLedger(s.folders, ledger.Nymbox, request.NymID, request.NymID, s.notaryID)
		if nil != err {
			return nil, err
		}
		box = b

	case ledger.Inbox, ledger.Outbox:
		unlock := s.locks.accounts.lock(request.AccountID)
		defer unlock()
		a, err := account.LoadAccount(s.folders, request.AccountID, s.notaryID)
		if nil != err {
			return nil, err
		}
		if err := a.VerifyOwner(request.NymID); nil != err {
			return nil, err
		}
		if ledger.Inbox == request.BoxType {
			box, err = a.LoadInbox(s.folders)
		} else {
			box, err = a.LoadOutbox(s.folders)
		}
		if nil != err {
			return nil, err
		}

	default:
		return nil, fault.InvalidLedgerType
	}

	t, err := box.LoadBoxReceipt(s.folders, request.TransactionNumber)
	if nil != err {
		return nil, err
	}
	reply := message.NewReply(request, true)
	reply.Payload = encodePayload(t.Contract.RawFile())
	return reply, nil
}

// registerInstrumentDefinition - store an issuer signed definition and
// open its issuer account
func (s *Server) registerInstrumentDefinition(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	raw, err := decodePayload(request.Payload)
	if nil != err {
		return nil, err
	}
	definition, err := contract.ParseAssetContract(raw, request.InstrumentID, sender)
	if nil != err {
		return nil, err
	}
	if definition.IssuerNymID != request.NymID {
		return nil, fault.IdentifierMismatch
	}
	if definition.NotaryID != s.notaryID {
		return nil, fault.NotaryMismatch
	}
	instrumentID := definition.InstrumentDefinitionID()
	if s.folders.Exists(storage.Contracts, instrumentID.String()) {
		return nil, fault.InstrumentDefinitionExists
	}
	if err := definition.Contract.SaveContract(s.folders, storage.Contracts, instrumentID.String()); nil != err {
		return nil, err
	}

	issuer, err := account.GenerateNewAccount(s.engine, s.folders, s.notary, request.NymID, s.notaryID, instrumentID, account.Issuer)
	if nil != err {
		s.eraseInstrumentDefinition(instrumentID)
		return nil, err
	}
	if err := s.records.AddAccountRecord(issuer); nil != err {
		return nil, err
	}
	s.log.Infof("instrument definition: %s  issuer: %s  account: %s", instrumentID, request.NymID, issuer.ID)

	reply := message.NewReply(request, true)
	reply.InstrumentID = instrumentID
	reply.AccountID = issuer.ID
	reply.Payload = encodePayload(issuer.Contract.RawFile())
	return reply, nil
}

// eraseInstrumentDefinition - drop a definition left without an issuer
// account so that it can be registered again
func (s *Server) eraseInstrumentDefinition(instrumentID identifier.Identifier) {
	if err := s.folders.Erase(storage.Contracts, instrumentID.String()); nil != err {
		s.log.Errorf("erase instrument definition: %s  error: %s", instrumentID, err)
	}
}

func (s *Server) getInstrumentDefinition(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	definition, err := s.loadInstrumentDefinition(request)
	if nil != err {
		return nil, err
	}
	reply := message.NewReply(request, true)
	reply.Payload = encodePayload(definition.Contract.RawFile())
	return reply, nil
}

// loadInstrumentDefinition - a stored asset contract whose raw file
// still hashes to the requested identifier
//
// the notary contract shares the folder and is not an instrument
func (s *Server) loadInstrumentDefinition(request *message.Message) (*contract.AssetContract, error) {
	if request.InstrumentID.IsZero() {
		return nil, fault.MissingParameters
	}
	if request.InstrumentID == s.notaryID {
		return nil, fault.InstrumentDefinitionMissing
	}
	raw, err := s.folders.Load(storage.Contracts, request.InstrumentID.String())
	if fault.FileNotFound == err {
		return nil, fault.InstrumentDefinitionMissing
	}
	if nil != err {
		return nil, err
	}
	definition, err := contract.ParseAssetContract(raw, request.InstrumentID, nil)
	if fault.ContractKindMismatch == err {
		return nil, fault.InstrumentDefinitionMissing
	}
	if nil != err {
		s.log.Errorf("instrument definition: %s  error: %s", request.InstrumentID, err)
		return nil, err
	}
	return definition, nil
}

// registerAccount - a new simple account for a known instrument
func (s *Server) registerAccount(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	if _, err := s.loadInstrumentDefinition(request); nil != err {
		return nil, err
	}
	a, err := account.GenerateNewAccount(s.engine, s.folders, s.notary, request.NymID, s.notaryID, request.InstrumentID, account.Simple)
	if nil != err {
		return nil, err
	}
	if err := s.records.AddAccountRecord(a); nil != err {
		return nil, err
	}
	s.log.Infof("account: %s  nym: %s  instrument: %s", a.ID, request.NymID, request.InstrumentID)

	reply := message.NewReply(request, true)
	reply.AccountID = a.ID
	reply.Payload = encodePayload(a.Contract.RawFile())
	return reply, nil
}

// deleteAssetAccount - mark an empty simple account for deletion
func (s *Server) deleteAssetAccount(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	unlock := s.locks.accounts.lock(request.AccountID)
	defer unlock()

	a, err := s.loadOwnedAccount(request.AccountID, request.NymID)
	if nil != err {
		return nil, err
	}
	if account.Simple != a.Type {
		return nil, fault.InvalidAccountType
	}
	inbox, err := a.LoadInbox(s.folders)
	if nil != err {
		return nil, err
	}
	outbox, err := a.LoadOutbox(s.folders)
	if nil != err {
		return nil, err
	}
	if 0 != a.Balance() || 0 != inbox.Count() || 0 != outbox.Count() {
		return nil, fault.AccountNotEmpty
	}

	a.MarkForDeletion()
	if err := a.Save(s.folders, s.notary); nil != err {
		return nil, err
	}
	if err := s.records.EraseAccountRecord(a.InstrumentID, a.ID); nil != err && fault.AccountRecordNotFound != err {
		return nil, err
	}
	s.log.Infof("account: %s  marked for deletion", a.ID)
	return message.NewReply(request, true), nil
}

// getAccountData - the account with its inbox and outbox
func (s *Server) getAccountData(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	unlock := s.locks.accounts.lock(request.AccountID)
	defer unlock()

	a, err := account.LoadAccount(s.folders, request.AccountID, s.notaryID)
	if nil != err {
		return nil, err
	}
	if err := a.VerifyOwner(request.NymID); nil != err {
		return nil, err
	}
	inbox, err := a.LoadInbox(s.folders)
	if nil != err {
		return nil, err
	}
	outbox, err := a.LoadOutbox(s.folders)
	if nil != err {
		return nil, err
	}

	reply := message.NewReply(request, true)
	reply.Payload = armor.Encode(armor.LabelPayload, map[string]string{partHeader: partAccount}, a.Contract.RawFile()) +
		armor.Encode(armor.LabelPayload, map[string]string{partHeader: partInbox}, inbox.Contract.RawFile()) +
		armor.Encode(armor.LabelPayload, map[string]string{partHeader: partOutbox}, outbox.Contract.RawFile())
	reply.InboxHash = inbox.Hash()
	reply.OutboxHash = outbox.Hash()
	return reply, nil
}

func (s *Server) sendNymMessage(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	return s.sendToNym(request, ledger.TxMessage)
}

func (s *Server) sendNymInstrument(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	return s.sendToNym(request, ledger.TxInstrumentNotice)
}

func (s *Server) sendToNym(request *message.Message, txType ledger.TransactionType) (*message.Message, error) {
	payload, err := decodePayload(request.Payload)
	if nil != err {
		return nil, err
	}
	if !s.transactor.IsRegistered(request.RecipientNymID) {
		return nil, fault.NymNotRegistered
	}
	number, err := s.DropMessageToNymbox(request.NymID, request.RecipientNymID, txType, payload)
	if nil != err {
		return nil, err
	}
	reply := message.NewReply(request, true)
	reply.TransactionNumber = number
	return reply, nil
}

type marketListBody struct {
	XMLName xml.Name         `xml:"marketList"`
	Markets []market.Summary `xml:"market"`
}

type offerListBody struct {
	XMLName xml.Name              `xml:"offerList"`
	Market  market.Summary        `xml:"market"`
	Offers  []market.OfferSummary `xml:"offer"`
}

type tradeListBody struct {
	XMLName xml.Name       `xml:"tradeList"`
	Market  market.Summary `xml:"market"`
	Trades  []tradeBody    `xml:"trade"`
}

type tradeBody struct {
	Date     int64 `xml:"date,attr"`
	Price    int64 `xml:"price,attr"`
	Quantity int64 `xml:"quantity,attr"`
}

func (s *Server) getMarketList(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	return marketReply(request, marketListBody{Markets: s.book.Markets()})
}

// getMarketOffers - the instrument field carries the market ID
func (s *Server) getMarketOffers(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	summary, err := s.book.Market(request.InstrumentID)
	if nil != err {
		return nil, err
	}
	offers, err := s.book.Offers(request.InstrumentID, int(request.Depth))
	if nil != err {
		return nil, err
	}
	return marketReply(request, offerListBody{Market: summary, Offers: offers})
}

func (s *Server) getMarketRecentTrades(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	summary, err := s.book.Market(request.InstrumentID)
	if nil != err {
		return nil, err
	}
	sales, err := s.book.RecentSales(request.InstrumentID)
	if nil != err {
		return nil, err
	}
	body := tradeListBody{Market: summary}
	for _, sale := range sales {
		body.Trades = append(body.Trades, tradeBody{
			Date:     sale.Date.Unix(),
			Price:    sale.Price,
			Quantity: sale.Quantity,
		})
	}
	return marketReply(request, body)
}

func marketReply(request *message.Message, body interface{}) (*message.Message, error) {
	data, err := contract.MarshalBody(body)
	if nil != err {
		return nil, err
	}
	reply := message.NewReply(request, true)
	reply.Payload = encodePayload(data)
	return reply, nil
}
