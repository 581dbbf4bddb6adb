// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/urfave/cli"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
)

func runRegister(c *cli.Context) error {
	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	result, err := s.client.Register()
	if err := check(result, err); nil != err {
		return err
	}
	return printJson(s.m.w, struct {
		Result string `json:"result"`
		NymID  string `json:"nym_id"`
	}{
		Result: result.String(),
		NymID:  s.client.Nym().ID().String(),
	})
}

func runUnregister(c *cli.Context) error {
	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	return check(s.client.Unregister())
}

func runNumbers(c *cli.Context) error {
	count := c.Int("count")
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}

	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	if err := check(s.client.GetTransactionNumbers(count)); nil != err {
		return err
	}
	return printJson(s.m.w, struct {
		Available []int64 `json:"available"`
	}{
		Available: s.client.Available(),
	})
}

func runIssue(c *cli.Context) error {
	name := c.String("name")
	symbol := c.String("symbol")
	if "" == name || "" == symbol {
		return fmt.Errorf("name and symbol are required")
	}

	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	result, definition, issuerAccount, err := s.client.IssueInstrument(name, symbol, contract.UnitType(c.String("unit")), c.String("terms"))
	if err := check(result, err); nil != err {
		return err
	}
	if alias := c.String("alias"); "" != alias {
		s.m.config.Accounts[alias] = issuerAccount.String()
	}
	return printJson(s.m.w, struct {
		InstrumentID string `json:"instrument_id"`
		AccountID    string `json:"issuer_account_id"`
	}{
		InstrumentID: definition.InstrumentDefinitionID().String(),
		AccountID:    issuerAccount.String(),
	})
}

func runCreateAccount(c *cli.Context) error {
	instrument := c.String("instrument")
	if "" == instrument {
		return fmt.Errorf("instrument is required")
	}

	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	instrumentID, err := identifier.FromString(instrument)
	if nil != err {
		return err
	}
	result, id, err := s.client.RegisterAccount(instrumentID)
	if err := check(result, err); nil != err {
		return err
	}
	if alias := c.String("alias"); "" != alias {
		s.m.config.Accounts[alias] = id.String()
	}
	return printJson(s.m.w, struct {
		AccountID string `json:"account_id"`
	}{
		AccountID: id.String(),
	})
}

func runDeleteAccount(c *cli.Context) error {
	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	id, err := accountID(s.m, c.String("account"))
	if nil != err {
		return err
	}
	if err := check(s.client.DeleteAccount(id)); nil != err {
		return err
	}
	for alias, value := range s.m.config.Accounts {
		if value == id.String() {
			delete(s.m.config.Accounts, alias)
		}
	}
	return nil
}

type entryInfo struct {
	Number        int64     `json:"number"`
	Type          string    `json:"type"`
	InReferenceTo int64     `json:"in_reference_to,omitempty"`
	Amount        int64     `json:"amount"`
	Date          time.Time `json:"date"`
}

func entries(box *ledger.Ledger) []entryInfo {
	result := []entryInfo{}
	if nil == box {
		return result
	}
	for _, e := range box.Entries() {
		result = append(result, entryInfo{
			Number:        e.Number,
			Type:          string(e.Type),
			InReferenceTo: e.InReferenceTo,
			Amount:        e.Amount,
			Date:          e.Date,
		})
	}
	return result
}

func runAccount(c *cli.Context) error {
	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	id, err := accountID(s.m, c.String("account"))
	if nil != err {
		return err
	}
	result, data, err := s.client.Account(id)
	if err := check(result, err); nil != err {
		return err
	}
	return printJson(s.m.w, struct {
		AccountID    string      `json:"account_id"`
		InstrumentID string      `json:"instrument_id"`
		Type         string      `json:"type"`
		Balance      int64       `json:"balance"`
		Inbox        []entryInfo `json:"inbox"`
		Outbox       []entryInfo `json:"outbox"`
	}{
		AccountID:    data.Account.ID.String(),
		InstrumentID: data.Account.InstrumentID.String(),
		Type:         string(data.Account.Type),
		Balance:      data.Account.Balance(),
		Inbox:        entries(data.Inbox),
		Outbox:       entries(data.Outbox),
	})
}

func runTransfer(c *cli.Context) error {
	amount := c.Int64("amount")
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	from, err := accountID(s.m, c.String("from"))
	if nil != err {
		return err
	}
	to, err := accountID(s.m, c.String("to"))
	if nil != err {
		return err
	}
	result, number, err := s.client.Transfer(from, to, amount, c.String("note"))
	if err := check(result, err); nil != err {
		return err
	}
	return printJson(s.m.w, struct {
		TransactionNumber int64 `json:"transaction_number"`
	}{
		TransactionNumber: number,
	})
}

func runProcessInbox(c *cli.Context) error {
	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	id, err := accountID(s.m, c.String("account"))
	if nil != err {
		return err
	}
	reject := c.Bool("reject")
	result, err := s.client.SettleInbox(id, func(e ledger.Entry) bool {
		if s.m.verbose {
			fmt.Fprintf(s.m.e, "pending: %d  amount: %d  reject: %t\n", e.Number, e.Amount, reject)
		}
		return !reject
	})
	if err := check(result, err); nil != err {
		return err
	}
	fmt.Fprintf(s.m.w, "%s\n", result)
	return nil
}

func runCheque(c *cli.Context) error {
	amount := c.Int64("amount")
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	file := c.String("file")
	if "" == file {
		return fmt.Errorf("file is required")
	}

	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	from, err := accountID(s.m, c.String("from"))
	if nil != err {
		return err
	}
	recipientID := identifier.Identifier{}
	if recipient := c.String("recipient"); "" != recipient {
		recipientID, err = nymID(s.m, recipient)
		if nil != err {
			return err
		}
	}
	cheque, err := s.client.WriteCheque(from, recipientID, amount, c.Duration("valid"), c.String("memo"))
	if nil != err {
		return err
	}
	if c.Bool("send") {
		if recipientID.IsZero() {
			return fmt.Errorf("recipient is required to send a cheque")
		}
		result, _, err := s.client.SendInstrument(recipientID, cheque)
		if err := check(result, err); nil != err {
			return err
		}
	}

	text := armor.EncodeData(armor.LabelInstrument, cheque.Contract.RawFile())
	if err := ioutil.WriteFile(file, []byte(text), 0600); nil != err {
		return err
	}
	return printJson(s.m.w, struct {
		TransactionNumber int64     `json:"transaction_number"`
		ValidTo           time.Time `json:"valid_to"`
		File              string    `json:"file"`
	}{
		TransactionNumber: cheque.TransactionNumber,
		ValidTo:           cheque.ValidTo,
		File:              file,
	})
}

func runDeposit(c *cli.Context) error {
	file := c.String("file")
	if "" == file {
		return fmt.Errorf("file is required")
	}
	text, err := ioutil.ReadFile(file)
	if nil != err {
		return err
	}
	raw, err := armor.DecodeData(string(text), armor.LabelInstrument)
	if nil != err {
		return err
	}
	cheque, err := contract.ParseCheque(raw)
	if nil != err {
		return err
	}

	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	id, err := accountID(s.m, c.String("account"))
	if nil != err {
		return err
	}
	result, err := s.client.DepositCheque(id, cheque)
	if err := check(result, err); nil != err {
		return err
	}
	fmt.Fprintf(s.m.w, "%s\n", result)
	return nil
}

func runContact(c *cli.Context) error {
	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	id, err := nymID(s.m, c.String("nym"))
	if nil != err {
		return err
	}
	result, contact, err := s.client.CheckNym(id)
	if err := check(result, err); nil != err {
		return err
	}
	alias := c.String("alias")
	if "" == alias {
		alias = contact.Alias()
	}
	if "" != alias {
		s.m.config.Contacts[alias] = id.String()
	}
	return printJson(s.m.w, struct {
		Alias      string `json:"alias"`
		NymID      string `json:"nym_id"`
		Messagable string `json:"messagable"`
	}{
		Alias:      alias,
		NymID:      id.String(),
		Messagable: s.client.CanMessage(id).String(),
	})
}

func runMessage(c *cli.Context) error {
	text := c.String("text")
	if "" == text {
		return fmt.Errorf("text is required")
	}

	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	recipientID, err := nymID(s.m, c.String("recipient"))
	if nil != err {
		return err
	}
	result, number, err := s.client.SendMessage(recipientID, text)
	if err := check(result, err); nil != err {
		return err
	}
	return printJson(s.m.w, struct {
		TransactionNumber int64 `json:"transaction_number"`
	}{
		TransactionNumber: number,
	})
}

type deliveryInfo struct {
	Number int64  `json:"number"`
	Type   string `json:"type"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

func runNymbox(c *cli.Context) error {
	s, err := connect(c)
	if nil != err {
		return err
	}
	defer s.close()

	result, deliveries, err := s.client.ProcessNymbox()
	if err := check(result, err); nil != err {
		return err
	}
	items := []deliveryInfo{}
	for _, d := range deliveries {
		item := deliveryInfo{
			Number: d.Number,
			Type:   string(d.Type),
			Sender: d.SenderNymID.String(),
			Text:   string(d.Payload),
		}
		if ledger.TxInstrumentNotice == d.Type {
			item.Text = armor.EncodeData(armor.LabelInstrument, d.Payload)
		}
		items = append(items, item)
	}
	return printJson(s.m.w, items)
}
