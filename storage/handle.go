// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/wigggles/opentxs-sub024/fault"
)

// every write waits for the data to reach the disk
var syncWrite = &ldb_opt.WriteOptions{
	Sync: true,
}

// PoolHandle - access to a single prefixed pool
type PoolHandle struct {
	prefix   byte
	limit    []byte
	database *Database
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) error {
	p.database.RLock()
	defer p.database.RUnlock()
	if nil == p.database.db {
		return fault.DatabaseClosed
	}
	return p.database.db.Put(p.prefixKey(key), value, syncWrite)
}

// PutN - store a big endian uint64
func (p *PoolHandle) PutN(key []byte, n uint64) error {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	return p.Put(key, buffer)
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) error {
	p.database.RLock()
	defer p.database.RUnlock()
	if nil == p.database.db {
		return fault.DatabaseClosed
	}
	return p.database.db.Delete(p.prefixKey(key), syncWrite)
}

// Get - read a value for a given key
//
// returns nil if not found; read errors are fatal
func (p *PoolHandle) Get(key []byte) []byte {
	p.database.RLock()
	defer p.database.RUnlock()
	if nil == p.database.db {
		return nil
	}
	value, err := p.database.db.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	fault.PanicIfError("pool.Get", err)
	return value
}

// GetN - read a record and decode first 8 bytes as big endian uint64
//
// second parameter is false if record was not found
// panics if not 8 (or more) bytes in the record
func (p *PoolHandle) GetN(key []byte) (uint64, bool) {
	buffer := p.Get(key)
	if nil == buffer {
		return 0, false
	}
	if len(buffer) < 8 {
		fault.Panicf("pool.GetN truncated record for: %x: %s", key, buffer)
	}
	n := binary.BigEndian.Uint64(buffer[:8])
	return n, true
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	p.database.RLock()
	defer p.database.RUnlock()
	if nil == p.database.db {
		return false
	}
	value, err := p.database.db.Has(p.prefixKey(key), nil)
	fault.PanicIfError("pool.Has", err)
	return value
}

// Fetch - all elements whose key starts with keyPrefix
//
// the returned keys have keyPrefix removed
func (p *PoolHandle) Fetch(keyPrefix []byte) []Element {
	start := p.prefixKey(keyPrefix)
	r := &ldb_util.Range{
		Start: start,
		Limit: p.limit,
	}
	if 0 != len(keyPrefix) {
		r = ldb_util.BytesPrefix(start)
	}

	p.database.RLock()
	defer p.database.RUnlock()
	if nil == p.database.db {
		return nil
	}

	iter := p.database.db.NewIterator(r, nil)
	result := make([]Element, 0)
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-len(start))
		copy(dataKey, key[len(start):])

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		result = append(result, Element{
			Key:   dataKey,
			Value: dataValue,
		})
	}
	iter.Release()
	fault.PanicIfError("pool.Fetch", iter.Error())
	return result
}

// Batch - a group of writes committed atomically by Database.Commit
type Batch struct {
	batch *leveldb.Batch
}

// Put - queue a write
func (b *Batch) Put(p *PoolHandle, key []byte, value []byte) {
	b.batch.Put(p.prefixKey(key), value)
}

// PutN - queue a big endian uint64 write
func (b *Batch) PutN(p *PoolHandle, key []byte, n uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	b.Put(p, key, buffer)
}

// Delete - queue a delete
func (b *Batch) Delete(p *PoolHandle, key []byte) {
	b.batch.Delete(p.prefixKey(key))
}

// Len - number of queued operations
func (b *Batch) Len() int {
	return b.batch.Len()
}
