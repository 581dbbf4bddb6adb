// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/wigggles/opentxs-sub024/fault"
)

// Pools - the set of exported pools
//
// note all must be exported (i.e. initial capital) or initialisation will fail
type Pools struct {
	Counters       *PoolHandle `prefix:"G"`
	RequestNumbers *PoolHandle `prefix:"R"`
	Tentative      *PoolHandle `prefix:"T"`
	Available      *PoolHandle `prefix:"A"`
	Outstanding    *PoolHandle `prefix:"O"`
	Registered     *PoolHandle `prefix:"N"`
	CronNumbers    *PoolHandle `prefix:"C"`
	TestData       *PoolHandle `prefix:"Z"`
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// Database - an open LevelDB with its pools
type Database struct {
	sync.RWMutex
	log  *logger.L
	db   *leveldb.DB
	Pool Pools
}

// Open - open up the database connection
//
// this must be called before any pool is accessed
func Open(name string) (*Database, error) {
	log := logger.New("storage")

	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		log.Errorf("open: %q  error: %s", name, err)
		return nil, err
	}

	d := &Database{
		log: log,
		db:  db,
	}

	ok := false
	defer func() {
		if !ok {
			db.Close()
		}
	}()

	version, err := d.getVersion()
	if nil != err {
		return nil, err
	}
	switch version {
	case 0:
		if err := d.putVersion(currentDBVersion); nil != err {
			return nil, err
		}
	case currentDBVersion:
	default:
		log.Criticalf("database version: %d  current version: %d", version, currentDBVersion)
		return nil, fault.DatabaseVersion
	}

	if err := d.setupPools(); nil != err {
		return nil, err
	}

	log.Infof("opened: %q", name)
	ok = true // prevent db close
	return d, nil
}

// scan each field of the pools struct, assigning a handle to each
func (d *Database) setupPools() error {
	poolType := reflect.TypeOf(d.Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&d.Pool).Elem()

	for i := 0; i < poolType.NumField(); i += 1 {
		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			d.log.Criticalf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
			return fault.InvalidPoolTag
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix:   prefix,
			limit:    limit,
			database: d,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}
	return nil
}

// Close - close the database connection
func (d *Database) Close() {
	d.Lock()
	defer d.Unlock()
	if nil != d.db {
		d.db.Close()
		d.db = nil
		d.log.Info("closed")
		d.log.Flush()
	}
}

func (d *Database) getVersion() (int, error) {
	versionValue, err := d.db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	} else if nil != err {
		return 0, err
	}

	if 4 != len(versionValue) {
		return 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	return int(binary.BigEndian.Uint32(versionValue)), nil
}

func (d *Database) putVersion(version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return d.db.Put(versionKey, currentVersion, syncWrite)
}

// NewBatch - start a set of writes that are committed together
func (d *Database) NewBatch() *Batch {
	return &Batch{
		batch: new(leveldb.Batch),
	}
}

// Commit - durably write all the batched operations
func (d *Database) Commit(b *Batch) error {
	d.RLock()
	defer d.RUnlock()
	if nil == d.db {
		return fault.DatabaseClosed
	}
	if 0 == b.batch.Len() {
		return nil
	}
	err := d.db.Write(b.batch, syncWrite)
	if nil != err {
		d.log.Errorf("commit error: %s", err)
		return err
	}
	b.batch.Reset()
	return nil
}
