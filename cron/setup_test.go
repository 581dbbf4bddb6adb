// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cron_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wigggles/opentxs-sub024/cron"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/storage"
)

const counterKind = "counter"

var (
	alice = identifier.FromData([]byte("alice"))
	bob   = identifier.FromData([]byte("bob"))
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

// counter finishes after limit ticks, zero never finishes
type counter struct {
	sync.Mutex
	number   int64
	nymID    identifier.Identifier
	ticks    int
	limit    int
	finished bool
}

func (c *counter) Kind() string                      { return counterKind }
func (c *counter) Number() int64                     { return c.number }
func (c *counter) Originator() identifier.Identifier { return c.nymID }

func (c *counter) CanCancel(nymID identifier.Identifier) bool {
	return nymID == c.nymID
}

func (c *counter) Process(ctx cron.Context) (bool, error) {
	c.Lock()
	defer c.Unlock()
	c.ticks += 1
	return 0 == c.limit || c.ticks < c.limit, nil
}

func (c *counter) Ticks() int {
	c.Lock()
	defer c.Unlock()
	return c.ticks
}

func (c *counter) Closings() []cron.Closing {
	return []cron.Closing{
		{NymID: c.nymID, OpeningNumber: c.number},
	}
}

func (c *counter) Finish() {
	c.finished = true
}

func (c *counter) Marshal() ([]byte, error) {
	c.Lock()
	defer c.Unlock()
	return []byte(fmt.Sprintf("%d %s %d %d", c.number, c.nymID, c.ticks, c.limit)), nil
}

func decodeCounter(data []byte) (cron.Item, error) {
	c := &counter{}
	nym := ""
	_, err := fmt.Sscanf(string(data), "%d %s %d %d", &c.number, &nym, &c.ticks, &c.limit)
	if nil != err {
		return nil, err
	}
	c.nymID, err = identifier.FromString(nym)
	if nil != err {
		return nil, err
	}
	return c, nil
}

type environment struct {
	dir     string
	db      *storage.Database
	folders *storage.Folders
	remove  func()
}

func setup(t *testing.T) *environment {
	dir, remove := fixtures.TempDirectory("cron")
	db, err := storage.Open(filepath.Join(dir, "numbers.leveldb"))
	if nil != err {
		remove()
		t.Fatalf("open error: %s", err)
	}
	folders, err := storage.NewFolders(filepath.Join(dir, "data"))
	if nil != err {
		db.Close()
		remove()
		t.Fatalf("folders error: %s", err)
	}
	return &environment{
		dir:     dir,
		db:      db,
		folders: folders,
		remove:  remove,
	}
}

func (e *environment) done() {
	e.db.Close()
	e.remove()
}

func (e *environment) newCron(issuer cron.Issuer, config cron.Configuration) *cron.Cron {
	c := cron.New(e.db, e.folders, issuer, config)
	c.RegisterDecoder(counterKind, decodeCounter)
	return c
}

// issuer handing out sequential numbers
type sequence struct {
	sync.Mutex
	last int64
	fail error
}

func (s *sequence) IssueNextTransactionNumber() (int64, error) {
	s.Lock()
	defer s.Unlock()
	if nil != s.fail {
		return 0, s.fail
	}
	s.last += 1
	return s.last, nil
}
