// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/message"
	"github.com/wigggles/opentxs-sub024/nym"
	"github.com/wigggles/opentxs-sub024/transactor"
)

// DropMessageToNymbox - seal a payload to the recipient and box it in
// their nymbox under a fresh transaction number
//
// txType is TxMessage or TxInstrumentNotice; nothing is stored unless
// every step succeeds
func (s *Server) DropMessageToNymbox(senderID identifier.Identifier, recipientID identifier.Identifier, txType ledger.TransactionType, payload []byte) (int64, error) {
	switch txType {
	case ledger.TxMessage, ledger.TxInstrumentNotice:
	default:
		return 0, fault.InvalidTransactionType
	}
	if 0 == len(payload) {
		return 0, fault.EmptyContent
	}

	recipient, err := s.loadNym(recipientID)
	if nil != err {
		return 0, err
	}
	envelope, err := recipient.Seal(payload)
	if nil != err {
		s.log.Errorf("seal to: %s  error: %s", recipientID, err)
		return 0, err
	}
	number, err := s.transactor.IssueNextTransactionNumber()
	if nil != err {
		return 0, err
	}

	t := s.newReceipt(txType, recipientID, recipientID, number, 0)
	t.Items[0].Note = senderID.String()
	t.Reference = envelope
	if err := s.deliverToNymbox(recipientID, t); nil != err {
		s.log.Errorf("deliver: %d  to: %s  error: %s", number, recipientID, err)
		return 0, err
	}
	s.log.Infof("%s: %d  from: %s  to: %s", txType, number, senderID, recipientID)
	return number, nil
}

// parseRequestTransaction - the transaction inside a request payload,
// signed by the sender for this notary
func (s *Server) parseRequestTransaction(request *message.Message, sender *nym.Nym, allowed ...ledger.TransactionType) (*ledger.Transaction, error) {
	raw, err := decodePayload(request.Payload)
	if nil != err {
		return nil, err
	}
	t, err := ledger.ParseTransaction(raw)
	if nil != err {
		return nil, err
	}
	if err := t.Contract.VerifySignature(sender, request.NymID); nil != err {
		return nil, err
	}
	if t.NymID != request.NymID {
		return nil, fault.IdentifierMismatch
	}
	if t.NotaryID != s.notaryID {
		return nil, fault.NotaryMismatch
	}
	for _, a := range allowed {
		if a == t.Type {
			return t, nil
		}
	}
	return nil, fault.InvalidTransactionType
}

// transactionReply - sign a reply transaction into a message reply
func (s *Server) transactionReply(request *message.Message, t *ledger.Transaction) (*message.Message, error) {
	if err := t.Sign(s.notary); nil != err {
		return nil, err
	}
	reply := message.NewReply(request, true)
	reply.TransactionNumber = t.Number
	reply.Payload = encodePayload(t.Contract.RawFile())
	return reply, nil
}

// processNymbox - accept delivered numbers, messages and notices
//
// every item must match an entry or nothing changes
func (s *Server) processNymbox(request *message.Message, sender *nym.Nym) (*message.Message, error) {
	t, err := s.parseRequestTransaction(request, sender, ledger.TxProcessNymbox)
	if nil != err {
		return nil, err
	}
	if 0 == len(t.Items) {
		return nil, fault.MissingParameters
	}
	nymID := request.NymID

	unlock := s.locks.nymboxes.lock(nymID)
	defer unlock()

	nymbox, err := ledger.LoadLedger(s.folders, ledger.Nymbox, nymID, nymID, s.notaryID)
	if nil != err {
		return nil, err
	}

	accepted := []int64{}
	closing := []int64{}
	seen := make(map[int64]struct{})
	for _, item := range t.Items {
		if _, ok := seen[item.InReferenceTo]; ok {
			return nil, fault.DuplicateTransaction
		}
		seen[item.InReferenceTo] = struct{}{}

		entry, ok := nymbox.Entry(item.InReferenceTo)
		if !ok {
			return nil, fault.ReceiptNotFound
		}
		switch item.Type {
		case ledger.ItemAcceptTransaction:
			if ledger.TxBlank != entry.Type {
				return nil, fault.InvalidItemType
			}
			blank, err := nymbox.LoadBoxReceipt(s.folders, entry.Number)
			if nil != err {
				return nil, err
			}
			accepted = append(accepted, blank.Items[0].Numbers...)

		case ledger.ItemAcceptMessage:
			if ledger.TxMessage != entry.Type && ledger.TxInstrumentNotice != entry.Type {
				return nil, fault.InvalidItemType
			}

		case ledger.ItemAcceptNotice:
			switch entry.Type {
			case ledger.TxBlank, ledger.TxMessage, ledger.TxInstrumentNotice:
				return nil, fault.InvalidItemType
			case ledger.TxFinalReceipt:
				if transactor.Outstanding == s.transactor.State(nymID, entry.InReferenceTo) {
					closing = append(closing, entry.InReferenceTo)
				}
			}

		default:
			return nil, fault.InvalidItemType
		}
	}

	if len(accepted) > 0 {
		if err := s.transactor.AcceptTentative(nymID, accepted); nil != err {
			return nil, err
		}
	}

	result := ledger.NewTransaction(ledger.TxAtProcessNymbox, s.notaryID, nymID, nymID, t.Number)
	result.InReferenceTo = t.Number
	for _, item := range t.Items {
		nymbox.RemoveTransaction(item.InReferenceTo)
		result.AddItem(item.Reply(true))
	}
	if err := nymbox.SaveLedger(s.folders, s.notary); nil != err {
		s.log.Errorf("save nymbox: %s  error: %s", nymID, err)
		if len(accepted) > 0 {
			if e := s.transactor.ReturnTentative(nymID, accepted); nil != e {
				s.log.Criticalf("return tentative: %v  nym: %s  error: %s", accepted, nymID, e)
			}
		}
		return nil, err
	}

	if len(closing) > 0 {
		if err := s.transactor.Close(nymID, closing...); nil != err {
			s.log.Warnf("close opening numbers: %v  nym: %s  error: %s", closing, nymID, err)
		}
	}

	reply, err := s.transactionReply(request, result)
	if nil != err {
		return nil, err
	}
	reply.NymboxHash = nymbox.Hash()
	return reply, nil
}
