// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/storage"
)

func openDatabase(t *testing.T) (*storage.Database, string, func()) {
	dir, remove := fixtures.TempDirectory("storage")
	name := filepath.Join(dir, "test.leveldb")
	db, err := storage.Open(name)
	if nil != err {
		remove()
		t.Fatalf("open error: %s", err)
	}
	return db, name, func() {
		db.Close()
		remove()
	}
}

func TestPoolPutGet(t *testing.T) {
	db, _, done := openDatabase(t)
	defer done()

	p := db.Pool.TestData

	assert.Nil(t, p.Get([]byte("missing")), "missing key")
	assert.False(t, p.Has([]byte("missing")), "missing key exists")

	assert.Nil(t, p.Put([]byte("key-one"), []byte("data-one")), "put")
	assert.Equal(t, []byte("data-one"), p.Get([]byte("key-one")), "get")
	assert.True(t, p.Has([]byte("key-one")), "has")

	// pools are separate
	assert.Nil(t, db.Pool.Counters.Get([]byte("key-one")), "leak between pools")

	assert.Nil(t, p.Delete([]byte("key-one")), "delete")
	assert.False(t, p.Has([]byte("key-one")), "exists after delete")
}

func TestPoolNumbers(t *testing.T) {
	db, _, done := openDatabase(t)
	defer done()

	p := db.Pool.Counters
	_, found := p.GetN([]byte("next"))
	assert.False(t, found, "found before put")

	assert.Nil(t, p.PutN([]byte("next"), 12345), "put")
	n, found := p.GetN([]byte("next"))
	assert.True(t, found, "not found")
	assert.Equal(t, uint64(12345), n, "value")
}

func TestPoolFetch(t *testing.T) {
	db, _, done := openDatabase(t)
	defer done()

	p := db.Pool.Available
	b := db.NewBatch()
	b.Put(p, []byte("alice-1"), []byte{})
	b.Put(p, []byte("alice-2"), []byte{})
	b.Put(p, []byte("bob-1"), []byte{})
	assert.Equal(t, 3, b.Len(), "batch length")
	assert.Nil(t, db.Commit(b), "commit")
	assert.Equal(t, 0, b.Len(), "batch not reset")

	alice := p.Fetch([]byte("alice-"))
	assert.Equal(t, 2, len(alice), "alice count")
	assert.Equal(t, []byte("1"), alice[0].Key, "first key")
	assert.Equal(t, []byte("2"), alice[1].Key, "second key")

	all := p.Fetch(nil)
	assert.Equal(t, 3, len(all), "all count")

	b.Delete(p, []byte("alice-1"))
	assert.Nil(t, db.Commit(b), "commit delete")
	assert.Equal(t, 1, len(p.Fetch([]byte("alice-"))), "after delete")
}

func TestReopen(t *testing.T) {
	db, name, done := openDatabase(t)
	defer done()

	assert.Nil(t, db.Pool.Counters.PutN([]byte("counter"), 99), "put")
	db.Close()

	assert.Equal(t, fault.DatabaseClosed, db.Pool.Counters.Put([]byte("x"), []byte("y")), "write after close")

	db2, err := storage.Open(name)
	assert.Nil(t, err, "reopen")
	defer db2.Close()

	n, found := db2.Pool.Counters.GetN([]byte("counter"))
	assert.True(t, found, "not durable")
	assert.Equal(t, uint64(99), n, "value")
}
