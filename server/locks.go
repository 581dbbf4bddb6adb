// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"sort"
	"sync"

	"github.com/wigggles/opentxs-sub024/identifier"
)

// lockTable - one mutex per identifier, created on demand
type lockTable struct {
	sync.Mutex
	locks map[identifier.Identifier]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{
		locks: make(map[identifier.Identifier]*sync.Mutex),
	}
}

func (t *lockTable) get(id identifier.Identifier) *sync.Mutex {
	t.Lock()
	defer t.Unlock()
	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	return l
}

// lock - lock a set of identifiers in ascending order
//
// duplicates and zero identifiers are ignored; the returned function
// unlocks in reverse order
func (t *lockTable) lock(ids ...identifier.Identifier) func() {
	unique := make([]identifier.Identifier, 0, len(ids))
	seen := make(map[identifier.Identifier]struct{})
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Compare(unique[j]) < 0
	})

	held := make([]*sync.Mutex, len(unique))
	for i, id := range unique {
		held[i] = t.get(id)
		held[i].Lock()
	}
	return func() {
		for i := len(held) - 1; i >= 0; i -= 1 {
			held[i].Unlock()
		}
	}
}

// locks used by the notary
//
// order: nym context, then accounts, then nymboxes; cron ticks take
// accounts and nymboxes only and no cron call is made while account
// or nymbox locks are held
type locks struct {
	contexts *lockTable
	accounts *lockTable
	nymboxes *lockTable
}

func newLocks() *locks {
	return &locks{
		contexts: newLockTable(),
		accounts: newLockTable(),
		nymboxes: newLockTable(),
	}
}
