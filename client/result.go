// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

// SendResult - outcome of sending one message to the notary
type SendResult int

// possible send results
const (
	Error SendResult = iota
	Timeout
	InvalidReply
	Unnecessary
	ValidReply
	Shutdown
)

func (r SendResult) String() string {
	switch r {
	case Error:
		return "error"
	case Timeout:
		return "timeout"
	case InvalidReply:
		return "invalid reply"
	case Unnecessary:
		return "unnecessary"
	case ValidReply:
		return "valid reply"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Messagability - whether one nym can message another
type Messagability int

// possible messagability values
const (
	InvalidSender Messagability = iota
	MissingSender
	MissingRecipient
	Unregistered
	Ready
)

func (m Messagability) String() string {
	switch m {
	case InvalidSender:
		return "invalid sender"
	case MissingSender:
		return "missing sender"
	case MissingRecipient:
		return "missing recipient"
	case Unregistered:
		return "unregistered"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Refusal - the reason a notary gave for a negative reply
type Refusal string

func (r Refusal) Error() string {
	return string(r)
}
