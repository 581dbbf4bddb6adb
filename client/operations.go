// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"time"

	"github.com/wigggles/opentxs-sub024/account"
	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/message"
	"github.com/wigggles/opentxs-sub024/nym"
)

// headers naming the parts of an account data payload
const (
	partHeader  = "Kind"
	partAccount = "account"
	partInbox   = "inbox"
	partOutbox  = "outbox"
)

// Delivery - a message or instrument opened from the nymbox
type Delivery struct {
	Number      int64
	Type        ledger.TransactionType
	SenderNymID identifier.Identifier
	Payload     []byte
}

// AccountData - an account with its boxes, all signed by the notary
type AccountData struct {
	Account *account.Account
	Inbox   *ledger.Ledger
	Outbox  *ledger.Ledger
}

// Ping - check the notary is answering
func (c *Client) Ping() (SendResult, error) {
	result, _, err := c.call(c.NewRequest(message.PingNotary))
	return result, err
}

// Register - publish the nym and adopt the notary's request number
func (c *Client) Register() (SendResult, error) {
	if c.registered {
		return Unnecessary, nil
	}
	bundle, err := c.nym.PublicBundle()
	if nil != err {
		return Error, err
	}
	request := c.NewRequest(message.RegisterNym)
	request.Payload = bundle

	result, reply, err := c.call(request)
	if nil != err {
		return result, err
	}
	c.registered = true
	c.requestNumber = reply.RequestNumber
	c.log.Infof("registered: %s  request number: %d", c.nym.ID(), c.requestNumber)
	return ValidReply, nil
}

// Unregister - remove the nym from the notary, every number is lost
func (c *Client) Unregister() (SendResult, error) {
	result, _, err := c.call(c.NewRequest(message.UnregisterNym))
	if nil != err {
		return result, err
	}
	c.registered = false
	c.available = nil
	c.issued = make(map[int64]struct{})
	return ValidReply, nil
}

// RequestNumber - fetch the notary's request number for this nym
func (c *Client) RequestNumber() (SendResult, error) {
	result, reply, err := c.call(c.NewRequest(message.GetRequestNumber))
	if nil != err {
		return result, err
	}
	c.requestNumber = reply.RequestNumber
	c.registered = true
	return ValidReply, nil
}

// CheckNym - the public form of another registered nym
func (c *Client) CheckNym(nymID identifier.Identifier) (SendResult, *nym.Nym, error) {
	request := c.NewRequest(message.CheckNym)
	request.RecipientNymID = nymID

	result, reply, err := c.call(request)
	if nil != err {
		return result, nil, err
	}
	n, err := nym.ParsePublic(c.engine, reply.Payload, nil)
	if nil != err {
		return InvalidReply, nil, err
	}
	if n.ID() != nymID {
		return InvalidReply, nil, fault.IdentifierMismatch
	}
	return ValidReply, n, nil
}

// CanMessage - whether a message to the recipient could be sent now
func (c *Client) CanMessage(recipientID identifier.Identifier) Messagability {
	switch {
	case nil == c.nym:
		return MissingSender
	case !c.nym.HasPrivateKeys() || !c.nym.HasCapability(nym.CanSign):
		return InvalidSender
	case recipientID.IsZero():
		return MissingRecipient
	case !c.registered:
		return Unregistered
	}
	if _, _, err := c.CheckNym(recipientID); nil != err {
		return MissingRecipient
	}
	return Ready
}

// GetTransactionNumbers - ask for numbers then accept them
func (c *Client) GetTransactionNumbers(count int) (SendResult, error) {
	request := c.NewRequest(message.GetTransactionNumbers)
	request.Depth = int64(count)
	result, _, err := c.call(request)
	if nil != err {
		return result, err
	}
	result, _, err = c.ProcessNymbox()
	return result, err
}

// Nymbox - the abbreviated nymbox
func (c *Client) Nymbox() (SendResult, *ledger.Ledger, error) {
	result, reply, err := c.call(c.NewRequest(message.GetNymbox))
	if nil != err {
		return result, nil, err
	}
	raw, err := armor.DecodeData(reply.Payload, armor.LabelPayload)
	if nil != err {
		return InvalidReply, nil, err
	}
	box, err := c.signedLedger(raw)
	if nil != err {
		return InvalidReply, nil, err
	}
	return ValidReply, box, nil
}

// BoxReceipt - the full form of one boxed transaction
//
// accountID is ignored for the nymbox
func (c *Client) BoxReceipt(boxType ledger.Type, accountID identifier.Identifier, number int64) (SendResult, *ledger.Transaction, error) {
	request := c.NewRequest(message.GetBoxReceipt)
	request.BoxType = boxType
	request.AccountID = accountID
	request.TransactionNumber = number

	result, reply, err := c.call(request)
	if nil != err {
		return result, nil, err
	}
	t, err := c.signedTransaction(reply.Payload)
	if nil != err {
		return InvalidReply, nil, err
	}
	if t.Number != number {
		return InvalidReply, nil, fault.InvalidReply
	}
	return ValidReply, t, nil
}

// ProcessNymbox - accept everything in the nymbox
//
// blanks add their numbers, messages are opened and returned, final
// receipts close the number that opened the cron item
func (c *Client) ProcessNymbox() (SendResult, []Delivery, error) {
	result, box, err := c.Nymbox()
	if nil != err {
		return result, nil, err
	}
	entries := box.Entries()
	if 0 == len(entries) {
		return Unnecessary, nil, nil
	}

	id := c.nym.ID()
	t := ledger.NewTransaction(ledger.TxProcessNymbox, c.notaryID, id, id, c.requestNumber)
	numbers := []int64{}
	closing := []int64{}
	deliveries := []Delivery{}

	for _, e := range entries {
		var item *ledger.Item
		switch e.Type {
		case ledger.TxBlank:
			result, receipt, err := c.boxReceipt(box, e.Number)
			if nil != err {
				return result, nil, err
			}
			if 0 == len(receipt.Items) {
				return InvalidReply, nil, fault.InvalidReply
			}
			numbers = append(numbers, receipt.Items[0].Numbers...)
			item = ledger.NewItem(ledger.ItemAcceptTransaction, id)

		case ledger.TxMessage, ledger.TxInstrumentNotice:
			result, receipt, err := c.boxReceipt(box, e.Number)
			if nil != err {
				return result, nil, err
			}
			payload, err := c.nym.Open(receipt.Reference, "open nymbox delivery")
			if nil != err {
				return Error, nil, err
			}
			d := Delivery{
				Number:  e.Number,
				Type:    e.Type,
				Payload: payload,
			}
			if len(receipt.Items) > 0 {
				if sender, err := identifier.FromString(receipt.Items[0].Note); nil == err {
					d.SenderNymID = sender
				}
			}
			deliveries = append(deliveries, d)
			item = ledger.NewItem(ledger.ItemAcceptMessage, id)

		default:
			if ledger.TxFinalReceipt == e.Type {
				closing = append(closing, e.InReferenceTo)
			}
			item = ledger.NewItem(ledger.ItemAcceptNotice, id)
		}
		item.InReferenceTo = e.Number
		t.AddItem(item)
	}

	result, _, err = c.transaction(message.ProcessNymbox, t)
	if nil != err {
		return result, nil, err
	}
	c.addNumbers(numbers)
	c.closeNumbers(closing...)
	c.log.Infof("nymbox: %d entries  numbers: %v", len(entries), numbers)
	return ValidReply, deliveries, nil
}

// boxReceipt - fetch a receipt and match it against its box entry
func (c *Client) boxReceipt(box *ledger.Ledger, number int64) (SendResult, *ledger.Transaction, error) {
	result, receipt, err := c.BoxReceipt(box.Type, box.AccountID, number)
	if nil != err {
		return result, nil, err
	}
	if err := box.VerifyBoxReceipt(receipt); nil != err {
		return InvalidReply, nil, err
	}
	return ValidReply, receipt, nil
}

// IssueInstrument - sign and register a new instrument definition
//
// returns the definition together with the issuer account ID
func (c *Client) IssueInstrument(name string, symbol string, unit contract.UnitType, terms string) (SendResult, *contract.AssetContract, identifier.Identifier, error) {
	definition := contract.NewAssetContract()
	definition.Name = name
	definition.Symbol = symbol
	definition.Unit = unit
	definition.Terms = terms
	definition.IssuerNymID = c.nym.ID()
	definition.NotaryID = c.notaryID
	if err := definition.Create(c.nym); nil != err {
		return Error, nil, identifier.Identifier{}, err
	}

	request := c.NewRequest(message.RegisterInstrumentDefinition)
	request.InstrumentID = definition.InstrumentDefinitionID()
	request.Payload = armor.EncodeData(armor.LabelPayload, definition.Contract.RawFile())

	result, reply, err := c.call(request)
	if nil != err {
		return result, nil, identifier.Identifier{}, err
	}
	if reply.InstrumentID != request.InstrumentID || reply.AccountID.IsZero() {
		return InvalidReply, nil, identifier.Identifier{}, fault.InvalidReply
	}
	return ValidReply, definition, reply.AccountID, nil
}

// RegisterAccount - open a simple account for an instrument
func (c *Client) RegisterAccount(instrumentID identifier.Identifier) (SendResult, identifier.Identifier, error) {
	request := c.NewRequest(message.RegisterAccount)
	request.InstrumentID = instrumentID

	result, reply, err := c.call(request)
	if nil != err {
		return result, identifier.Identifier{}, err
	}
	if reply.AccountID.IsZero() {
		return InvalidReply, identifier.Identifier{}, fault.InvalidReply
	}
	return ValidReply, reply.AccountID, nil
}

// DeleteAccount - close an empty simple account
func (c *Client) DeleteAccount(accountID identifier.Identifier) (SendResult, error) {
	request := c.NewRequest(message.DeleteAssetAccount)
	request.AccountID = accountID
	result, _, err := c.call(request)
	return result, err
}

// Account - the account with its inbox and outbox
func (c *Client) Account(accountID identifier.Identifier) (SendResult, *AccountData, error) {
	request := c.NewRequest(message.GetAccountData)
	request.AccountID = accountID

	result, reply, err := c.call(request)
	if nil != err {
		return result, nil, err
	}

	data := &AccountData{}
	text := reply.Payload
	for 0 != len(text) {
		block, rest, err := armor.Decode(text)
		if fault.CannotDecodeArmor == err {
			break
		}
		if nil != err {
			return InvalidReply, nil, err
		}
		text = rest

		switch block.Headers[partHeader] {
		case partAccount:
			a, err := account.ParseAccount(block.Data, accountID)
			if nil != err {
				return InvalidReply, nil, err
			}
			if err := a.Contract.VerifySignature(c.verifier, c.contract.NymID); nil != err {
				return InvalidReply, nil, err
			}
			data.Account = a
		case partInbox:
			if data.Inbox, err = c.signedLedger(block.Data); nil != err {
				return InvalidReply, nil, err
			}
		case partOutbox:
			if data.Outbox, err = c.signedLedger(block.Data); nil != err {
				return InvalidReply, nil, err
			}
		}
	}
	if nil == data.Account || nil == data.Inbox || nil == data.Outbox {
		return InvalidReply, nil, fault.InvalidReply
	}
	return ValidReply, data, nil
}

// notarize - send a transaction built on a fresh number
//
// a refused number was not used and goes back to the available list
func (c *Client) notarize(command message.Command, t *ledger.Transaction) (SendResult, *ledger.Transaction, error) {
	result, reply, err := c.transaction(command, t)
	if nil != err {
		if ValidReply == result {
			c.returnNumber(t.Number)
		}
		return result, nil, err
	}
	return ValidReply, reply, nil
}

// Transfer - move funds to another account of the same instrument
//
// the transaction number stays issued until the transfer receipt is
// accepted from the inbox
func (c *Client) Transfer(from identifier.Identifier, to identifier.Identifier, amount int64, note string) (SendResult, int64, error) {
	if amount <= 0 {
		return Error, 0, fault.InvalidAmount
	}
	result, data, err := c.Account(from)
	if nil != err {
		return result, 0, err
	}
	number, err := c.takeNumber()
	if nil != err {
		return Error, 0, err
	}

	t := ledger.NewTransaction(ledger.TxTransfer, c.notaryID, c.nym.ID(), from, number)
	item := ledger.NewItem(ledger.ItemTransfer, from)
	item.Amount = amount
	item.DestinationAccountID = to
	item.Note = note
	t.AddItem(item)
	t.AddItem(ledger.BalanceStatement(from, data.Account.Balance()-amount, c.issuedExcept()))

	result, _, err = c.notarize(message.NotarizeTransaction, t)
	if nil != err {
		return result, 0, err
	}
	c.log.Infof("transfer: %d  amount: %d  from: %s  to: %s", number, amount, from, to)
	return ValidReply, number, nil
}

// ProcessInbox - accept every pending transfer and receipt
func (c *Client) ProcessInbox(accountID identifier.Identifier) (SendResult, error) {
	return c.SettleInbox(accountID, func(ledger.Entry) bool { return true })
}

// SettleInbox - accept or reject each pending transfer, receipts are
// always accepted
func (c *Client) SettleInbox(accountID identifier.Identifier, accept func(ledger.Entry) bool) (SendResult, error) {
	result, data, err := c.Account(accountID)
	if nil != err {
		return result, err
	}
	entries := data.Inbox.Entries()
	if 0 == len(entries) {
		return Unnecessary, nil
	}
	number, err := c.takeNumber()
	if nil != err {
		return Error, err
	}

	t := ledger.NewTransaction(ledger.TxProcessInbox, c.notaryID, c.nym.ID(), accountID, number)
	balance := data.Account.Balance()
	closing := []int64{}
	for _, e := range entries {
		var item *ledger.Item
		switch e.Type {
		case ledger.TxPending:
			if !accept(e) {
				item = ledger.NewItem(ledger.ItemRejectPending, accountID)
				break
			}
			balance += e.Amount
			item = ledger.NewItem(ledger.ItemAcceptPending, accountID)
		case ledger.TxTransferReceipt, ledger.TxChequeReceipt:
			closing = c.closeIfIssued(closing, e.InReferenceTo)
			item = ledger.NewItem(ledger.ItemAcceptItemReceipt, accountID)
		case ledger.TxVoucherReceipt:
			item = ledger.NewItem(ledger.ItemAcceptItemReceipt, accountID)
		case ledger.TxMarketReceipt, ledger.TxPaymentReceipt:
			item = ledger.NewItem(ledger.ItemAcceptCronReceipt, accountID)
		case ledger.TxFinalReceipt:
			closing = c.closeIfIssued(closing, e.ClosingNumber)
			item = ledger.NewItem(ledger.ItemAcceptFinalReceipt, accountID)
		default:
			continue
		}
		item.InReferenceTo = e.Number
		item.Amount = e.Amount
		t.AddItem(item)
	}
	t.AddItem(ledger.BalanceStatement(accountID, balance, c.issuedExcept(append(closing, number)...)))

	result, _, err = c.notarize(message.ProcessInbox, t)
	if nil != err {
		return result, err
	}
	c.closeNumbers(append(closing, number)...)
	return ValidReply, nil
}

func (c *Client) closeIfIssued(closing []int64, n int64) []int64 {
	if _, ok := c.issued[n]; !ok {
		return closing
	}
	for _, already := range closing {
		if already == n {
			return closing
		}
	}
	return append(closing, n)
}

// WriteCheque - sign a cheque drawn on one of the nym's accounts
//
// a zero recipient makes a bearer cheque; the number stays issued
// until the cheque receipt is accepted
func (c *Client) WriteCheque(from identifier.Identifier, recipientNymID identifier.Identifier, amount int64, validity time.Duration, memo string) (*contract.Cheque, error) {
	if amount <= 0 {
		return nil, fault.InvalidAmount
	}
	_, data, err := c.Account(from)
	if nil != err {
		return nil, err
	}
	number, err := c.takeNumber()
	if nil != err {
		return nil, err
	}

	now := time.Now().UTC()
	cheque := contract.NewCheque()
	cheque.NotaryID = c.notaryID
	cheque.InstrumentID = data.Account.InstrumentID
	cheque.SenderAccountID = from
	cheque.SenderNymID = c.nym.ID()
	cheque.RecipientNymID = recipientNymID
	cheque.Amount = amount
	cheque.TransactionNumber = number
	cheque.ValidFrom = now
	cheque.ValidTo = now.Add(validity)
	cheque.Memo = memo
	if err := cheque.Create(c.nym); nil != err {
		c.returnNumber(number)
		return nil, err
	}
	return cheque, nil
}

// DepositCheque - cash a cheque or voucher into an account
func (c *Client) DepositCheque(accountID identifier.Identifier, cheque *contract.Cheque) (SendResult, error) {
	if nil == cheque {
		return Error, fault.MissingParameters
	}
	result, data, err := c.Account(accountID)
	if nil != err {
		return result, err
	}
	number, err := c.takeNumber()
	if nil != err {
		return Error, err
	}

	t := ledger.NewTransaction(ledger.TxDeposit, c.notaryID, c.nym.ID(), accountID, number)
	item := ledger.NewItem(ledger.ItemDepositCheque, accountID)
	item.Amount = cheque.Amount
	item.Attachment = armor.EncodeData(armor.LabelInstrument, cheque.Contract.RawFile())
	t.AddItem(item)
	t.AddItem(ledger.BalanceStatement(accountID, data.Account.Balance()+cheque.Amount, c.issuedExcept(number)))

	result, _, err = c.notarize(message.NotarizeTransaction, t)
	if nil != err {
		return result, err
	}
	c.closeNumbers(number)
	c.log.Infof("deposit cheque: %d  amount: %d  account: %s", cheque.TransactionNumber, cheque.Amount, accountID)
	return ValidReply, nil
}

// SendMessage - a text message sealed to the recipient by the notary
func (c *Client) SendMessage(recipientID identifier.Identifier, text string) (SendResult, int64, error) {
	return c.sendToNym(message.SendNymMessage, recipientID, []byte(text))
}

// SendInstrument - deliver a signed instrument to another nym
func (c *Client) SendInstrument(recipientID identifier.Identifier, cheque *contract.Cheque) (SendResult, int64, error) {
	if nil == cheque {
		return Error, 0, fault.MissingParameters
	}
	return c.sendToNym(message.SendNymInstrument, recipientID, cheque.Contract.RawFile())
}

func (c *Client) sendToNym(command message.Command, recipientID identifier.Identifier, payload []byte) (SendResult, int64, error) {
	if Ready != c.CanMessage(recipientID) {
		return Error, 0, fault.NymNotRegistered
	}
	request := c.NewRequest(command)
	request.RecipientNymID = recipientID
	request.Payload = armor.EncodeData(armor.LabelPayload, payload)

	result, reply, err := c.call(request)
	if nil != err {
		return result, 0, err
	}
	return ValidReply, reply.TransactionNumber, nil
}
