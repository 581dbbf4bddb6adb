// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/ledger"
)

// State - the parts of a client worth keeping between runs
type State struct {
	RequestNumber int64   `json:"request_number"`
	Registered    bool    `json:"registered"`
	Available     []int64 `json:"available"`
	Issued        []int64 `json:"issued"`
}

// State - snapshot of the numbers held
func (c *Client) State() State {
	return State{
		RequestNumber: c.requestNumber,
		Registered:    c.registered,
		Available:     c.Available(),
		Issued:        c.Issued(),
	}
}

// Restore - adopt a saved snapshot
//
// every available number must also be issued
func (c *Client) Restore(state State) error {
	issued := make(map[int64]struct{}, len(state.Issued))
	for _, n := range state.Issued {
		issued[n] = struct{}{}
	}
	for _, n := range state.Available {
		if _, ok := issued[n]; !ok {
			return fault.NumberNotAvailable
		}
	}
	c.requestNumber = state.RequestNumber
	c.registered = state.Registered
	c.issued = issued
	c.available = ledger.SortNumbers(append([]int64{}, state.Available...))
	return nil
}
