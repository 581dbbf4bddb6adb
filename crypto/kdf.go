// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"golang.org/x/crypto/argon2"

	"github.com/wigggles/opentxs-sub024/fault"
)

// KDFParameters - argon2id cost settings
type KDFParameters struct {
	Time      uint32
	Memory    uint32 // KiB
	Threads   uint8
	KeyLength uint32
}

// SaltSize - recommended salt length
const SaltSize = 16

// DefaultKDF - settings for interactive unlock
var DefaultKDF = KDFParameters{
	Time:      4,
	Memory:    64 * 1024,
	Threads:   2,
	KeyLength: SymmetricKeySize,
}

// FastKDF - low cost settings, only used for tests
var FastKDF = KDFParameters{
	Time:      1,
	Memory:    1024,
	Threads:   1,
	KeyLength: SymmetricKeySize,
}

// DeriveKey - stretch a password into a symmetric key
//
// intentionally slow; callers must not hold shared locks while this runs
func DeriveKey(password []byte, salt []byte, parameters KDFParameters) ([]byte, error) {
	if 0 == len(password) {
		return nil, fault.KeyDerivationFailed
	}
	if len(salt) < 8 {
		return nil, fault.KeyDerivationFailed
	}
	if 0 == parameters.Time || 0 == parameters.Memory || 0 == parameters.Threads || 0 == parameters.KeyLength {
		return nil, fault.KeyDerivationFailed
	}
	return argon2.IDKey(password, salt, parameters.Time, parameters.Memory, parameters.Threads, parameters.KeyLength), nil
}
