// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cron

import (
	"encoding/binary"

	"github.com/wigggles/opentxs-sub024/fault"
)

func numberKey(n int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(n))
	return key
}

// PoolSize - numbers available for receipts
func (c *Cron) PoolSize() int {
	c.poolLock.Lock()
	defer c.poolLock.Unlock()
	return len(c.db.Pool.CronNumbers.Fetch(nil))
}

// refill - top the pool up to the refill amount
//
// each number is stored before the next is requested so a failure
// keeps everything obtained so far
func (c *Cron) refill() error {
	c.poolLock.Lock()
	defer c.poolLock.Unlock()

	pool := c.db.Pool.CronNumbers
	count := len(pool.Fetch(nil))
	if count >= c.config.RefillAmount {
		return nil
	}
	for i := count; i < c.config.RefillAmount; i += 1 {
		n, err := c.issuer.IssueNextTransactionNumber()
		if nil != err {
			return err
		}
		if err := pool.PutN(numberKey(n), 1); nil != err {
			return err
		}
	}
	c.log.Debugf("refilled: %d numbers", c.config.RefillAmount-count)
	return nil
}

// TakeNumber - remove the lowest number from the pool
//
// used by the notary for receipts produced during a tick
func (c *Cron) TakeNumber() (int64, error) {
	c.poolLock.Lock()
	defer c.poolLock.Unlock()

	pool := c.db.Pool.CronNumbers
	elements := pool.Fetch(nil)
	if 0 == len(elements) || 8 != len(elements[0].Key) {
		return 0, fault.CronNumbersExhausted
	}
	key := elements[0].Key
	if err := pool.Delete(key); nil != err {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(key)), nil
}
