// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"github.com/bitmark-inc/logger"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/message"
	"github.com/wigggles/opentxs-sub024/nym"
)

// Client - one nym talking to one notary
//
// a Client is not safe for concurrent use; the numbers it holds are
// its view of the notary's records and are refreshed by Register and
// ProcessNymbox
type Client struct {
	log       *logger.L
	engine    *crypto.Engine
	nym       *nym.Nym
	transport Transport
	contract  *contract.ServerContract
	verifier  contract.Verifier
	notaryID  identifier.Identifier

	requestNumber int64
	registered    bool
	available     []int64
	issued        map[int64]struct{}
}

// New - fetch and verify the notary contract
func New(engine *crypto.Engine, sender *nym.Nym, transport Transport) (*Client, error) {
	if nil == sender {
		return nil, fault.MissingParameters
	}
	info, err := transport.Info()
	if nil != err {
		return nil, err
	}
	notaryID, err := identifier.FromString(info.NotaryID)
	if nil != err {
		return nil, err
	}
	raw, err := armor.DecodeData(info.Contract, armor.LabelContract)
	if nil != err {
		return nil, err
	}
	serverContract, err := contract.ParseServerContract(engine, raw, notaryID)
	if nil != err {
		return nil, err
	}

	log := logger.New("client")
	log.Infof("notary: %s  nym: %s  version: %s", notaryID, serverContract.NymID, info.Version)
	return &Client{
		log:       log,
		engine:    engine,
		nym:       sender,
		transport: transport,
		contract:  serverContract,
		verifier:  serverContract.Verifier(engine),
		notaryID:  notaryID,
		issued:    make(map[int64]struct{}),
	}, nil
}

// NotaryID - the notary this client talks to
func (c *Client) NotaryID() identifier.Identifier {
	return c.notaryID
}

// Nym - the sender
func (c *Client) Nym() *nym.Nym {
	return c.nym
}

// Available - transaction numbers not yet used
func (c *Client) Available() []int64 {
	return append([]int64{}, c.available...)
}

// Issued - every number the notary holds against the nym
func (c *Client) Issued() []int64 {
	result := make([]int64, 0, len(c.issued))
	for n := range c.issued {
		result = append(result, n)
	}
	return ledger.SortNumbers(result)
}

// Close - release the transport
func (c *Client) Close() error {
	return c.transport.Close()
}

// NewRequest - unsigned request carrying the current request number
func (c *Client) NewRequest(command message.Command) *message.Message {
	return message.New(command, c.nym.ID(), c.notaryID, c.requestNumber)
}

// Send - sign a request and wait for the notary's signed reply
//
// a reply is valid only when it is signed by the notary nym and
// answers this request; a valid reply may still be a refusal
func (c *Client) Send(request *message.Message) (SendResult, *message.Message, error) {
	if err := request.Sign(c.nym); nil != err {
		return Error, nil, err
	}
	text, err := request.Armored()
	if nil != err {
		return Error, nil, err
	}

	replyText, err := c.transport.Process(text)
	switch {
	case fault.RequestTimedOut == err:
		return Timeout, nil, err
	case fault.ServerShutdown == err:
		return Shutdown, nil, err
	case nil != err:
		return Error, nil, err
	}

	reply, err := message.Parse(replyText)
	if nil != err {
		c.log.Warnf("%s: unparsable reply: %s", request.Command, err)
		return InvalidReply, nil, err
	}
	if err := reply.Contract.VerifySignature(c.verifier, c.contract.NymID); nil != err {
		c.log.Warnf("%s: reply signature: %s", request.Command, err)
		return InvalidReply, nil, err
	}
	if reply.Command != request.Command.Reply() || reply.NymID != request.NymID || reply.NotaryID != c.notaryID {
		return InvalidReply, nil, fault.InvalidReply
	}
	if request.Command.NeedsRequestNumber() && reply.RequestNumber != request.RequestNumber {
		return InvalidReply, nil, fault.InvalidReply
	}
	return ValidReply, reply, nil
}

// call - Send then keep the request number in step
//
// a refusal is returned as a Refusal error with a valid reply
func (c *Client) call(request *message.Message) (SendResult, *message.Message, error) {
	result, reply, err := c.Send(request)
	if ValidReply != result {
		return result, nil, err
	}
	if request.Command.NeedsRequestNumber() {
		if reply.Success {
			c.requestNumber += 1
		} else if _, e := c.RequestNumber(); nil != e {
			c.log.Warnf("resynchronise request number error: %s", e)
		}
	}
	if !reply.Success {
		c.log.Infof("%s refused: %s", request.Command, reply.Note)
		return ValidReply, reply, Refusal(reply.Note)
	}
	return ValidReply, reply, nil
}

// transaction - sign a transaction and send it as a request payload
func (c *Client) transaction(command message.Command, t *ledger.Transaction) (SendResult, *ledger.Transaction, error) {
	if err := t.Sign(c.nym); nil != err {
		return Error, nil, err
	}
	request := c.NewRequest(command)
	request.AccountID = t.AccountID
	request.TransactionNumber = t.Number
	request.Payload = armor.EncodeData(armor.LabelPayload, t.Contract.RawFile())

	result, reply, err := c.call(request)
	if nil != err {
		return result, nil, err
	}
	replyTransaction, err := c.signedTransaction(reply.Payload)
	if nil != err {
		return InvalidReply, nil, err
	}
	if replyTransaction.Type != t.Type.ReplyType() || replyTransaction.InReferenceTo != t.Number {
		return InvalidReply, nil, fault.InvalidReply
	}
	return ValidReply, replyTransaction, nil
}

// signedTransaction - a notary signed transaction from a payload
func (c *Client) signedTransaction(payload string) (*ledger.Transaction, error) {
	raw, err := armor.DecodeData(payload, armor.LabelPayload)
	if nil != err {
		return nil, err
	}
	t, err := ledger.ParseTransaction(raw)
	if nil != err {
		return nil, err
	}
	if err := t.Contract.VerifySignature(c.verifier, c.contract.NymID); nil != err {
		return nil, err
	}
	return t, nil
}

// signedLedger - a notary signed box from raw bytes
func (c *Client) signedLedger(raw []byte) (*ledger.Ledger, error) {
	l, err := ledger.ParseLedger(raw)
	if nil != err {
		return nil, err
	}
	if err := l.Contract.VerifySignature(c.verifier, c.contract.NymID); nil != err {
		return nil, err
	}
	return l, nil
}

// takeNumber - the lowest available number
func (c *Client) takeNumber() (int64, error) {
	if 0 == len(c.available) {
		return 0, fault.NoTransactionNumbers
	}
	n := c.available[0]
	c.available = c.available[1:]
	return n, nil
}

// returnNumber - a number the notary did not use
func (c *Client) returnNumber(n int64) {
	c.available = ledger.SortNumbers(append(c.available, n))
}

func (c *Client) addNumbers(numbers []int64) {
	for _, n := range numbers {
		if _, ok := c.issued[n]; ok {
			continue
		}
		c.issued[n] = struct{}{}
		c.available = append(c.available, n)
	}
	c.available = ledger.SortNumbers(c.available)
}

func (c *Client) closeNumbers(numbers ...int64) {
	for _, n := range numbers {
		delete(c.issued, n)
	}
}

// issuedExcept - the statement numbers once some are closed
func (c *Client) issuedExcept(closed ...int64) []int64 {
	gone := make(map[int64]struct{})
	for _, n := range closed {
		gone[n] = struct{}{}
	}
	result := []int64{}
	for _, n := range c.Issued() {
		if _, ok := gone[n]; !ok {
			result = append(result, n)
		}
	}
	return result
}
