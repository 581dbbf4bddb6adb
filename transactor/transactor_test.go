// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactor_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/storage"
	"github.com/wigggles/opentxs-sub024/transactor"
)

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

func openTransactor(t *testing.T) (*transactor.Transactor, func()) {
	dir, remove := fixtures.TempDirectory("transactor")
	name := filepath.Join(dir, "numbers.leveldb")
	db, err := storage.Open(name)
	if nil != err {
		remove()
		t.Fatalf("open error: %s", err)
	}
	return transactor.New(db), func() {
		db.Close()
		remove()
	}
}

func TestIssueNextTransactionNumber(t *testing.T) {
	tr, done := openTransactor(t)
	defer done()

	n1, err := tr.IssueNextTransactionNumber()
	assert.Nil(t, err, "issue")
	n2, err := tr.IssueNextTransactionNumber()
	assert.Nil(t, err, "issue")
	assert.Equal(t, n1+1, n2, "sequential")
	assert.Equal(t, n2, tr.LastIssued(), "last issued")
}

func TestIssuedNumbersSurviveRestart(t *testing.T) {
	dir, remove := fixtures.TempDirectory("transactor")
	defer remove()
	name := filepath.Join(dir, "numbers.leveldb")

	db, err := storage.Open(name)
	assert.Nil(t, err, "open")
	tr := transactor.New(db)
	last, err := tr.IssueNextTransactionNumber()
	assert.Nil(t, err, "issue")
	db.Close()

	db, err = storage.Open(name)
	assert.Nil(t, err, "reopen")
	defer db.Close()
	tr = transactor.New(db)
	next, err := tr.IssueNextTransactionNumber()
	assert.Nil(t, err, "issue after restart")
	assert.True(t, next > last, "never reissued")
}

func TestNumberLifecycle(t *testing.T) {
	tr, done := openTransactor(t)
	defer done()

	_, err := tr.IssueNumbersToNym(alice, 3)
	assert.Equal(t, fault.NymNotRegistered, err, "unregistered")

	assert.Nil(t, tr.RegisterNym(alice), "register")
	assert.Equal(t, fault.NymAlreadyRegistered, tr.RegisterNym(alice), "register twice")

	numbers, err := tr.IssueNumbersToNym(alice, 3)
	assert.Nil(t, err, "issue")
	assert.Equal(t, 3, len(numbers), "count")
	for _, n := range numbers {
		assert.Equal(t, transactor.Tentative, tr.State(alice, n), "tentative: %d", n)
	}
	assert.Equal(t, fault.NumberNotAvailable, tr.VerifyAvailable(alice, numbers[0]), "not yet available")

	assert.Nil(t, tr.AcceptTentative(alice, numbers), "accept")
	assert.Equal(t, fault.NumberNotTentative, tr.AcceptTentative(alice, numbers), "accept twice")
	assert.Nil(t, tr.VerifyAvailable(alice, numbers[0]), "available")
	assert.Equal(t, fault.NumberNotAvailable, tr.VerifyAvailable(bob, numbers[0]), "not bob's")

	assert.Nil(t, tr.Consume(alice, numbers[0]), "consume")
	assert.Equal(t, fault.NumberNotAvailable, tr.Consume(alice, numbers[0]), "no reuse")
	assert.Equal(t, transactor.Outstanding, tr.State(alice, numbers[0]), "outstanding")
	assert.Nil(t, tr.VerifyOutstanding(alice, numbers[0]), "verify outstanding")

	held := tr.NumbersForNym(alice)
	assert.Equal(t, []int64{numbers[1], numbers[2]}, held.Available, "available set")
	assert.Equal(t, []int64{numbers[0]}, held.Outstanding, "outstanding set")
	assert.Equal(t, 0, len(held.Tentative), "tentative set")
	assert.Equal(t, 3, len(held.Issued()), "issued")

	assert.Nil(t, tr.Close(alice, numbers[0]), "close")
	assert.Equal(t, fault.NumberNotOutstanding, tr.Close(alice, numbers[0]), "close twice")
	assert.Equal(t, transactor.Unknown, tr.State(alice, numbers[0]), "closed")

	assert.Nil(t, tr.Release(alice, numbers[1]), "release")
	assert.Equal(t, transactor.Unknown, tr.State(alice, numbers[1]), "released")
}

func TestMoveIsAllOrNothing(t *testing.T) {
	tr, done := openTransactor(t)
	defer done()

	assert.Nil(t, tr.RegisterNym(alice), "register")
	numbers, err := tr.IssueNumbersToNym(alice, 2)
	assert.Nil(t, err, "issue")

	err = tr.AcceptTentative(alice, []int64{numbers[0], numbers[1] + 100})
	assert.Equal(t, fault.NumberNotTentative, err, "one bad number")
	assert.Equal(t, transactor.Tentative, tr.State(alice, numbers[0]), "unchanged")

	assert.Equal(t, fault.DuplicateTransaction, tr.AcceptTentative(alice, []int64{numbers[0], numbers[0]}), "duplicate")
	assert.Equal(t, fault.InvalidCount, tr.AcceptTentative(alice, nil), "empty")

	_, err = tr.IssueNumbersToNym(alice, 0)
	assert.Equal(t, fault.InvalidCount, err, "zero count")
	_, err = tr.IssueNumbersToNym(alice, transactor.MaximumIssue+1)
	assert.Equal(t, fault.InvalidCount, err, "too many")
}

func TestReturnTentative(t *testing.T) {
	tr, done := openTransactor(t)
	defer done()

	assert.Nil(t, tr.RegisterNym(alice), "register")
	numbers, err := tr.IssueNumbersToNym(alice, 2)
	assert.Nil(t, err, "issue")

	assert.Equal(t, fault.NumberNotAvailable, tr.ReturnTentative(alice, numbers), "not yet accepted")
	assert.Nil(t, tr.AcceptTentative(alice, numbers), "accept")
	assert.Nil(t, tr.ReturnTentative(alice, numbers), "return")
	for _, n := range numbers {
		assert.Equal(t, transactor.Tentative, tr.State(alice, n), "tentative again: %d", n)
	}
	assert.Nil(t, tr.AcceptTentative(alice, numbers), "accept again")
}

func TestConcurrentIssue(t *testing.T) {
	tr, done := openTransactor(t)
	defer done()

	assert.Nil(t, tr.RegisterNym(alice), "register alice")
	assert.Nil(t, tr.RegisterNym(bob), "register bob")

	const rounds = 20
	results := make(chan []int64, 2*rounds)
	wg := sync.WaitGroup{}
	for _, nymID := range []identifier.Identifier{alice, bob} {
		wg.Add(1)
		go func(nymID identifier.Identifier) {
			defer wg.Done()
			for i := 0; i < rounds; i += 1 {
				numbers, err := tr.IssueNumbersToNym(nymID, 2)
				if nil == err {
					results <- numbers
				}
			}
		}(nymID)
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]struct{})
	for numbers := range results {
		for _, n := range numbers {
			_, duplicate := seen[n]
			assert.False(t, duplicate, "duplicate: %d", n)
			seen[n] = struct{}{}
		}
	}
	assert.Equal(t, 4*rounds, len(seen), "all issued")
}

func TestRequestNumbers(t *testing.T) {
	tr, done := openTransactor(t)
	defer done()

	_, err := tr.RequestNumber(alice)
	assert.Equal(t, fault.NymNotRegistered, err, "unregistered")

	assert.Nil(t, tr.RegisterNym(alice), "register")
	n, err := tr.RequestNumber(alice)
	assert.Nil(t, err, "request number")
	assert.Equal(t, int64(transactor.FirstRequestNumber), n, "first")

	assert.Nil(t, tr.VerifyRequestNumber(alice, n), "verify")
	next, err := tr.IncrementRequestNumber(alice)
	assert.Nil(t, err, "increment")
	assert.Equal(t, n+1, next, "incremented")
	assert.Equal(t, fault.InvalidRequestNumber, tr.VerifyRequestNumber(alice, n), "replay")

	numbers, err := tr.IssueNumbersToNym(alice, 1)
	assert.Nil(t, err, "issue")
	assert.Nil(t, tr.UnregisterNym(alice), "unregister")
	assert.False(t, tr.IsRegistered(alice), "not registered")
	assert.Equal(t, transactor.Unknown, tr.State(alice, numbers[0]), "numbers forgotten")
	assert.Equal(t, fault.NymNotRegistered, tr.UnregisterNym(alice), "unregister twice")
}
