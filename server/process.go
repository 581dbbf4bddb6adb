// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/message"
	"github.com/wigggles/opentxs-sub024/nym"
)

// handler - process one verified request under the nym's context lock
type handler func(s *Server, request *message.Message, sender *nym.Nym) (*message.Message, error)

var handlers map[message.Command]handler

func init() {
	handlers = map[message.Command]handler{
		message.UnregisterNym:                (*Server).unregisterNym,
		message.CheckNym:                     (*Server).checkNym,
		message.GetRequestNumber:             (*Server).getRequestNumber,
		message.GetTransactionNumbers:        (*Server).getTransactionNumbers,
		message.GetNymbox:                    (*Server).getNymbox,
		message.GetBoxReceipt:                (*Server).getBoxReceipt,
		message.ProcessNymbox:                (*Server).processNymbox,
		message.RegisterInstrumentDefinition: (*Server).registerInstrumentDefinition,
		message.GetInstrumentDefinition:      (*Server).getInstrumentDefinition,
		message.RegisterAccount:              (*Server).registerAccount,
		message.DeleteAssetAccount:           (*Server).deleteAssetAccount,
		message.GetAccountData:               (*Server).getAccountData,
		message.NotarizeTransaction:          (*Server).notarizeTransaction,
		message.ProcessInbox:                 (*Server).processInbox,
		message.SendNymMessage:               (*Server).sendNymMessage,
		message.SendNymInstrument:            (*Server).sendNymInstrument,
		message.GetMarketList:                (*Server).getMarketList,
		message.GetMarketOffers:              (*Server).getMarketOffers,
		message.GetMarketRecentTrades:        (*Server).getMarketRecentTrades,
	}
}

// ProcessMessage - armored signed request in, armored signed reply out
//
// an error is only returned when no reply can be produced; a refused
// request gives a reply with Success false and the reason in Note
func (s *Server) ProcessMessage(text string) (string, error) {
	if !s.IsRunning() {
		return "", fault.ServerShutdown
	}
	request, err := message.Parse(text)
	if nil != err {
		s.log.Warnf("unparsable request: %s", err)
		return "", err
	}

	reply, err := s.dispatch(request)
	if nil != err {
		s.logRefusal(request, err)
		reply = message.NewReply(request, false)
		reply.Note = err.Error()
	}
	if reply.NymboxHash.IsZero() && s.transactor.IsRegistered(request.NymID) {
		reply.NymboxHash = s.nymboxHash(request.NymID)
	}
	if err := reply.Sign(s.notary); nil != err {
		s.log.Errorf("sign reply: %s  error: %s", reply.Command, err)
		return "", err
	}
	return reply.Armored()
}

func (s *Server) logRefusal(request *message.Message, err error) {
	switch {
	case fault.IsErrIntegrity(err), fault.IsErrCrypto(err), fault.IsErrRecord(err), fault.IsErrProcess(err):
		s.log.Errorf("%s from: %s  error: %s", request.Command, request.NymID, err)
	case fault.IsErrPolicy(err):
		s.log.Warnf("%s from: %s  refused: %s", request.Command, request.NymID, err)
	default:
		s.log.Infof("%s from: %s  failed: %s", request.Command, request.NymID, err)
	}
}

// dispatch - the checks every request passes before its handler
//
// order: command, notary, sender signature, registration,
// permission, request number
func (s *Server) dispatch(request *message.Message) (*message.Message, error) {
	if request.Command.IsReply() {
		return nil, fault.InvalidCommand
	}
	if request.NotaryID != s.notaryID {
		return nil, fault.NotaryMismatch
	}

	switch request.Command {
	case message.PingNotary:
		return s.pingNotary(request)
	case message.RegisterNym:
		return s.registerNym(request)
	}

	h, ok := handlers[request.Command]
	if !ok {
		return nil, fault.InvalidCommand
	}

	sender, err := s.loadNym(request.NymID)
	if nil != err {
		return nil, err
	}
	if err := request.Verify(sender); nil != err {
		return nil, err
	}
	if !s.transactor.IsRegistered(request.NymID) {
		return nil, fault.NymNotRegistered
	}
	if !s.currentSettings().IsAllowed(string(request.Command), request.NymID.String()) {
		return nil, fault.CommandNotAllowed
	}

	unlock := s.locks.contexts.lock(request.NymID)
	defer unlock()

	if request.Command.NeedsRequestNumber() {
		if err := s.transactor.VerifyRequestNumber(request.NymID, request.RequestNumber); nil != err {
			return nil, err
		}
		if _, err := s.transactor.IncrementRequestNumber(request.NymID); nil != err {
			return nil, err
		}
	}
	return h(s, request, sender)
}
