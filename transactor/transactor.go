// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transactor - the only issuer of transaction and request
// numbers
//
// Numbers are persisted before they are handed out. Per nym every
// issued number moves through
//
//   tentative -> available -> outstanding -> closed
//
// where tentative numbers sit in the nymbox until the nym accepts
// them and closed numbers are simply forgotten.
package transactor

import (
	"encoding/binary"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/storage"
)

// State - lifecycle position of a number held by a nym
type State int

// number states
const (
	Unknown State = iota
	Tentative
	Available
	Outstanding
)

// String - name of the state
func (s State) String() string {
	switch s {
	case Tentative:
		return "tentative"
	case Available:
		return "available"
	case Outstanding:
		return "outstanding"
	default:
		return "unknown"
	}
}

// MaximumIssue - largest batch handed to a nym at once
const MaximumIssue = 100

var transactionCounterKey = []byte("transaction")

// Transactor - number issue and tracking
type Transactor struct {
	sync.Mutex
	log  *logger.L
	db   *storage.Database
	pool *storage.Pools
}

// New - transactor on an open database
func New(db *storage.Database) *Transactor {
	return &Transactor{
		log:  logger.New("transactor"),
		db:   db,
		pool: &db.Pool,
	}
}

func numberKey(nymID identifier.Identifier, n int64) []byte {
	key := make([]byte, identifier.Length+8)
	copy(key, nymID[:])
	binary.BigEndian.PutUint64(key[identifier.Length:], uint64(n))
	return key
}

// LastIssued - highest number issued so far
func (t *Transactor) LastIssued() int64 {
	n, _ := t.pool.Counters.GetN(transactionCounterKey)
	return int64(n)
}

// IssueNextTransactionNumber - a fresh number for the notary's own
// use, persisted before returning
func (t *Transactor) IssueNextTransactionNumber() (int64, error) {
	t.Lock()
	defer t.Unlock()

	n := t.LastIssued() + 1
	if err := t.pool.Counters.PutN(transactionCounterKey, uint64(n)); nil != err {
		t.log.Errorf("persist counter: %d  error: %s", n, err)
		return 0, err
	}
	t.log.Debugf("issued: %d", n)
	return n, nil
}

// IssueNumbersToNym - a batch of new tentative numbers for a nym
//
// the counter and the tentative set are written in one batch
func (t *Transactor) IssueNumbersToNym(nymID identifier.Identifier, count int) ([]int64, error) {
	if count <= 0 || count > MaximumIssue {
		return nil, fault.InvalidCount
	}
	t.Lock()
	defer t.Unlock()

	if !t.isRegistered(nymID) {
		return nil, fault.NymNotRegistered
	}

	first := t.LastIssued() + 1
	numbers := make([]int64, count)
	batch := t.db.NewBatch()
	for i := 0; i < count; i += 1 {
		numbers[i] = first + int64(i)
		batch.PutN(t.pool.Tentative, numberKey(nymID, numbers[i]), 1)
	}
	batch.PutN(t.pool.Counters, transactionCounterKey, uint64(numbers[count-1]))
	if err := t.db.Commit(batch); nil != err {
		t.log.Errorf("issue to: %s  error: %s", nymID, err)
		return nil, err
	}
	t.log.Infof("issued: %d numbers from: %d to: %s", count, first, nymID)
	return numbers, nil
}

// AcceptTentative - the nym took delivery of the numbers
//
// all numbers must be tentative or nothing changes
func (t *Transactor) AcceptTentative(nymID identifier.Identifier, numbers []int64) error {
	return t.move(nymID, numbers, t.pool.Tentative, t.pool.Available, fault.NumberNotTentative)
}

// ReturnTentative - undo an accept whose delivery could not be recorded
func (t *Transactor) ReturnTentative(nymID identifier.Identifier, numbers []int64) error {
	return t.move(nymID, numbers, t.pool.Available, t.pool.Tentative, fault.NumberNotAvailable)
}

// RejectTentative - the nym refused the numbers
func (t *Transactor) RejectTentative(nymID identifier.Identifier, numbers []int64) error {
	return t.move(nymID, numbers, t.pool.Tentative, nil, fault.NumberNotTentative)
}

// VerifyAvailable - the nym may start a transaction with the number
func (t *Transactor) VerifyAvailable(nymID identifier.Identifier, n int64) error {
	if !t.pool.Available.Has(numberKey(nymID, n)) {
		return fault.NumberNotAvailable
	}
	return nil
}

// VerifyOutstanding - the number is in use by an open transaction
func (t *Transactor) VerifyOutstanding(nymID identifier.Identifier, n int64) error {
	if !t.pool.Outstanding.Has(numberKey(nymID, n)) {
		return fault.NumberNotOutstanding
	}
	return nil
}

// Consume - available to outstanding, the number cannot be reused
func (t *Transactor) Consume(nymID identifier.Identifier, numbers ...int64) error {
	return t.move(nymID, numbers, t.pool.Available, t.pool.Outstanding, fault.NumberNotAvailable)
}

// Close - the transaction using the number is finished
func (t *Transactor) Close(nymID identifier.Identifier, numbers ...int64) error {
	return t.move(nymID, numbers, t.pool.Outstanding, nil, fault.NumberNotOutstanding)
}

// Release - an unused available number is given up
func (t *Transactor) Release(nymID identifier.Identifier, numbers ...int64) error {
	return t.move(nymID, numbers, t.pool.Available, nil, fault.NumberNotAvailable)
}

// Restore - outstanding back to available, for a transaction whose
// numbers were consumed but which could not be activated
func (t *Transactor) Restore(nymID identifier.Identifier, numbers ...int64) error {
	return t.move(nymID, numbers, t.pool.Outstanding, t.pool.Available, fault.NumberNotOutstanding)
}

func (t *Transactor) move(nymID identifier.Identifier, numbers []int64, from *storage.PoolHandle, to *storage.PoolHandle, missing error) error {
	if 0 == len(numbers) {
		return fault.InvalidCount
	}
	t.Lock()
	defer t.Unlock()

	batch := t.db.NewBatch()
	seen := make(map[int64]struct{})
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			return fault.DuplicateTransaction
		}
		seen[n] = struct{}{}
		key := numberKey(nymID, n)
		if !from.Has(key) {
			return missing
		}
		batch.Delete(from, key)
		if nil != to {
			batch.PutN(to, key, 1)
		}
	}
	return t.db.Commit(batch)
}

// State - where a number stands for a nym
func (t *Transactor) State(nymID identifier.Identifier, n int64) State {
	key := numberKey(nymID, n)
	switch {
	case t.pool.Tentative.Has(key):
		return Tentative
	case t.pool.Available.Has(key):
		return Available
	case t.pool.Outstanding.Has(key):
		return Outstanding
	default:
		return Unknown
	}
}

// Numbers - the sets held by a nym
type Numbers struct {
	Tentative   []int64
	Available   []int64
	Outstanding []int64
}

// NumbersForNym - every number a nym holds, each set ascending
func (t *Transactor) NumbersForNym(nymID identifier.Identifier) Numbers {
	return Numbers{
		Tentative:   fetchNumbers(t.pool.Tentative, nymID),
		Available:   fetchNumbers(t.pool.Available, nymID),
		Outstanding: fetchNumbers(t.pool.Outstanding, nymID),
	}
}

// Issued - available and outstanding numbers, the set a balance
// statement must list
func (n Numbers) Issued() []int64 {
	result := append([]int64{}, n.Available...)
	result = append(result, n.Outstanding...)
	return result
}

func fetchNumbers(pool *storage.PoolHandle, nymID identifier.Identifier) []int64 {
	elements := pool.Fetch(nymID[:])
	result := make([]int64, 0, len(elements))
	for _, e := range elements {
		if 8 != len(e.Key) {
			continue
		}
		result = append(result, int64(binary.BigEndian.Uint64(e.Key)))
	}
	return result
}
