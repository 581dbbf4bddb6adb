// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/wigggles/opentxs-sub024/fault"
)

// HashType - supported digest algorithms
type HashType int

// all supported hashes
const (
	HashNone HashType = iota
	SHA256
	SHA512
	SHA3_256
	BLAKE2B256
	BLAKE2B512
)

var hashNames = map[HashType]string{
	SHA256:     "SHA256",
	SHA512:     "SHA512",
	SHA3_256:   "SHA3-256",
	BLAKE2B256: "BLAKE2B-256",
	BLAKE2B512: "BLAKE2B-512",
}

// String - name of the hash
func (h HashType) String() string {
	if s, ok := hashNames[h]; ok {
		return s
	}
	return "*unknown*"
}

// HashTypeFromString - reverse of String
func HashTypeFromString(s string) (HashType, error) {
	for k, v := range hashNames {
		if strings.EqualFold(v, s) {
			return k, nil
		}
	}
	return HashNone, fault.UnsupportedHashType
}

// Size - byte length of the digest
func (h HashType) Size() int {
	switch h {
	case SHA256, SHA3_256, BLAKE2B256:
		return 32
	case SHA512, BLAKE2B512:
		return 64
	default:
		return 0
	}
}

func (h HashType) newHash() (hash.Hash, error) {
	switch h {
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	case SHA3_256:
		return sha3.New256(), nil
	case BLAKE2B256:
		return blake2b.New256(nil)
	case BLAKE2B512:
		return blake2b.New512(nil)
	default:
		return nil, fault.UnsupportedHashType
	}
}

// Digest - compute a digest
//
// deterministic; only fails on an unsupported hash type
func Digest(hashType HashType, input []byte) ([]byte, error) {
	h, err := hashType.newHash()
	if nil != err {
		return nil, err
	}
	h.Write(input)
	return h.Sum(nil), nil
}

// HMAC - keyed digest
func HMAC(hashType HashType, key []byte, data []byte) ([]byte, error) {
	if _, err := hashType.newHash(); nil != err {
		return nil, err
	}
	mac := hmac.New(func() hash.Hash {
		h, _ := hashType.newHash()
		return h
	}, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

// VerifyHMAC - constant time comparison of a received HMAC
func VerifyHMAC(hashType HashType, key []byte, data []byte, expected []byte) bool {
	actual, err := HMAC(hashType, key, data)
	if nil != err {
		return false
	}
	return hmac.Equal(actual, expected)
}
