// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/background"
)

type ticker struct {
	sync.Mutex
	count    int
	finished bool
}

func (state *ticker) Run(args interface{}, shutdown <-chan struct{}) {
	delay := args.(time.Duration)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(delay):
			state.Lock()
			state.count += 1
			state.Unlock()
		}
	}

	state.Lock()
	state.finished = true
	state.Unlock()
}

func TestBackground(t *testing.T) {
	p1 := &ticker{}
	p2 := &ticker{}

	processes := background.Processes{p1, p2}

	bg := background.Start(processes, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	bg.Stop()

	for i, p := range []*ticker{p1, p2} {
		p.Lock()
		assert.True(t, p.finished, "process %d did not finish", i)
		assert.NotZero(t, p.count, "process %d never ran", i)
		p.Unlock()
	}
}

func TestStopTwice(t *testing.T) {
	p := &ticker{}
	bg := background.Start(background.Processes{p}, time.Millisecond)
	bg.Stop()
	bg.Stop()

	var none *background.T
	none.Stop()

	assert.True(t, p.finished, "process did not finish")
}
