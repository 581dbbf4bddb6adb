// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactor

import (
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/storage"
)

// FirstRequestNumber - request number of a freshly registered nym
const FirstRequestNumber = 1

// RegisterNym - start tracking a nym
func (t *Transactor) RegisterNym(nymID identifier.Identifier) error {
	t.Lock()
	defer t.Unlock()

	if t.isRegistered(nymID) {
		return fault.NymAlreadyRegistered
	}
	batch := t.db.NewBatch()
	batch.PutN(t.pool.Registered, nymID[:], 1)
	batch.PutN(t.pool.RequestNumbers, nymID[:], FirstRequestNumber)
	if err := t.db.Commit(batch); nil != err {
		return err
	}
	t.log.Infof("registered: %s", nymID)
	return nil
}

// UnregisterNym - stop tracking a nym and forget its numbers
func (t *Transactor) UnregisterNym(nymID identifier.Identifier) error {
	t.Lock()
	defer t.Unlock()

	if !t.isRegistered(nymID) {
		return fault.NymNotRegistered
	}
	batch := t.db.NewBatch()
	batch.Delete(t.pool.Registered, nymID[:])
	batch.Delete(t.pool.RequestNumbers, nymID[:])
	for _, pool := range []*storage.PoolHandle{t.pool.Tentative, t.pool.Available, t.pool.Outstanding} {
		for _, n := range fetchNumbers(pool, nymID) {
			batch.Delete(pool, numberKey(nymID, n))
		}
	}
	if err := t.db.Commit(batch); nil != err {
		return err
	}
	t.log.Infof("unregistered: %s", nymID)
	return nil
}

// IsRegistered - true if the nym is known
func (t *Transactor) IsRegistered(nymID identifier.Identifier) bool {
	t.Lock()
	defer t.Unlock()
	return t.isRegistered(nymID)
}

func (t *Transactor) isRegistered(nymID identifier.Identifier) bool {
	return t.pool.Registered.Has(nymID[:])
}

// RequestNumber - the number the nym's next message must carry
func (t *Transactor) RequestNumber(nymID identifier.Identifier) (int64, error) {
	n, ok := t.pool.RequestNumbers.GetN(nymID[:])
	if !ok {
		return 0, fault.NymNotRegistered
	}
	return int64(n), nil
}

// VerifyRequestNumber - replay protection
func (t *Transactor) VerifyRequestNumber(nymID identifier.Identifier, n int64) error {
	current, err := t.RequestNumber(nymID)
	if nil != err {
		return err
	}
	if current != n {
		return fault.InvalidRequestNumber
	}
	return nil
}

// IncrementRequestNumber - advance after a processed message
func (t *Transactor) IncrementRequestNumber(nymID identifier.Identifier) (int64, error) {
	t.Lock()
	defer t.Unlock()

	n, ok := t.pool.RequestNumbers.GetN(nymID[:])
	if !ok {
		return 0, fault.NymNotRegistered
	}
	n += 1
	if err := t.pool.RequestNumbers.PutN(nymID[:], n); nil != err {
		return 0, err
	}
	return int64(n), nil
}
