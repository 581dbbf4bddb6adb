// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

// Command - name of a request, replies carry the @ form
type Command string

// all requests
const (
	PingNotary                   Command = "pingNotary"
	RegisterNym                  Command = "registerNym"
	UnregisterNym                Command = "unregisterNym"
	CheckNym                     Command = "checkNym"
	GetRequestNumber             Command = "getRequestNumber"
	GetTransactionNumbers        Command = "getTransactionNumbers"
	GetNymbox                    Command = "getNymbox"
	GetBoxReceipt                Command = "getBoxReceipt"
	ProcessNymbox                Command = "processNymbox"
	RegisterInstrumentDefinition Command = "registerInstrumentDefinition"
	GetInstrumentDefinition      Command = "getInstrumentDefinition"
	RegisterAccount              Command = "registerAccount"
	DeleteAssetAccount           Command = "deleteAssetAccount"
	GetAccountData               Command = "getAccountData"
	NotarizeTransaction          Command = "notarizeTransaction"
	ProcessInbox                 Command = "processInbox"
	SendNymMessage               Command = "sendNymMessage"
	SendNymInstrument            Command = "sendNymInstrument"
	GetMarketList                Command = "getMarketList"
	GetMarketOffers              Command = "getMarketOffers"
	GetMarketRecentTrades        Command = "getMarketRecentTrades"
)

// Commands - every request, in a fixed order
var Commands = []Command{
	PingNotary,
	RegisterNym,
	UnregisterNym,
	CheckNym,
	GetRequestNumber,
	GetTransactionNumbers,
	GetNymbox,
	GetBoxReceipt,
	ProcessNymbox,
	RegisterInstrumentDefinition,
	GetInstrumentDefinition,
	RegisterAccount,
	DeleteAssetAccount,
	GetAccountData,
	NotarizeTransaction,
	ProcessInbox,
	SendNymMessage,
	SendNymInstrument,
	GetMarketList,
	GetMarketOffers,
	GetMarketRecentTrades,
}

// Names - command names as strings, for settings
func Names() []string {
	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = string(c)
	}
	return names
}

// IsReply - starts with @
func (c Command) IsReply() bool {
	return len(c) > 1 && '@' == c[0]
}

// Reply - the @ form
func (c Command) Reply() Command {
	if c.IsReply() {
		return c
	}
	return "@" + c
}

// Request - the command a reply answers
func (c Command) Request() Command {
	if c.IsReply() {
		return c[1:]
	}
	return c
}

// IsValid - a known request or reply
func (c Command) IsValid() bool {
	request := c.Request()
	for _, known := range Commands {
		if request == known {
			return true
		}
	}
	return false
}

// NeedsRequestNumber - the notary checks and increments the request
// number, false for the few requests a nym sends before it has one
func (c Command) NeedsRequestNumber() bool {
	switch c.Request() {
	case PingNotary, RegisterNym, GetRequestNumber:
		return false
	default:
		return true
	}
}
