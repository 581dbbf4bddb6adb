// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/wigggles/opentxs-sub024/fault"
)

var (
	errCryptoOne    = fault.CryptoError("crypto one")
	errExistsOne    = fault.ExistsError("exists one")
	errIntegrityOne = fault.IntegrityError("integrity one")
	errInvalidOne   = fault.InvalidError("invalid one")
	errLengthOne    = fault.LengthError("length one")
	errNotFoundOne  = fault.NotFoundError("not found one")
	errPolicyOne    = fault.PolicyError("policy one")
	errProcessOne   = fault.ProcessError("process one")
	errRecordOne    = fault.RecordError("record one")
)

// test that the various errors can be subclassed
func TestClasses(t *testing.T) {
	errorList := []struct {
		err       error
		crypto    bool
		exists    bool
		integrity bool
		invalid   bool
		length    bool
		notFound  bool
		policy    bool
		process   bool
		record    bool
	}{
		{errCryptoOne, true, false, false, false, false, false, false, false, false},
		{errExistsOne, false, true, false, false, false, false, false, false, false},
		{errIntegrityOne, false, false, true, false, false, false, false, false, false},
		{errInvalidOne, false, false, false, true, false, false, false, false, false},
		{errLengthOne, false, false, false, false, true, false, false, false, false},
		{errNotFoundOne, false, false, false, false, false, true, false, false, false},
		{errPolicyOne, false, false, false, false, false, false, true, false, false},
		{errProcessOne, false, false, false, false, false, false, false, true, false},
		{errRecordOne, false, false, false, false, false, false, false, false, true},
		{fault.InvalidSignature, false, false, true, false, false, false, false, false, false},
		{fault.InsufficientFunds, false, false, false, false, false, false, true, false, false},
		{fault.DecryptionFailed, true, false, false, false, false, false, false, false, false},
	}

	for i, e := range errorList {
		err := e.err
		if fault.IsErrCrypto(err) != e.crypto {
			t.Errorf("%d: expected 'crypto' == %v for err = %v", i, e.crypto, err)
		}
		if fault.IsErrExists(err) != e.exists {
			t.Errorf("%d: expected 'exists' == %v for err = %v", i, e.exists, err)
		}
		if fault.IsErrIntegrity(err) != e.integrity {
			t.Errorf("%d: expected 'integrity' == %v for err = %v", i, e.integrity, err)
		}
		if fault.IsErrInvalid(err) != e.invalid {
			t.Errorf("%d: expected 'invalid' == %v for err = %v", i, e.invalid, err)
		}
		if fault.IsErrLength(err) != e.length {
			t.Errorf("%d: expected 'length' == %v for err = %v", i, e.length, err)
		}
		if fault.IsErrNotFound(err) != e.notFound {
			t.Errorf("%d: expected 'not found' == %v for err = %v", i, e.notFound, err)
		}
		if fault.IsErrPolicy(err) != e.policy {
			t.Errorf("%d: expected 'policy' == %v for err = %v", i, e.policy, err)
		}
		if fault.IsErrProcess(err) != e.process {
			t.Errorf("%d: expected 'process' == %v for err = %v", i, e.process, err)
		}
		if fault.IsErrRecord(err) != e.record {
			t.Errorf("%d: expected 'record' == %v for err = %v", i, e.record, err)
		}
	}
}

func TestPanicIfError(t *testing.T) {
	fault.PanicIfError("no error", nil)

	defer func() {
		if r := recover(); nil == r {
			t.Error("expected panic")
		}
	}()
	fault.PanicIfError("with error", fault.PersistenceFailed)
}
