// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/wigggles/opentxs-sub024/fault"
)

// SymmetricMode - authenticated encryption algorithms
type SymmetricMode int

// supported modes
const (
	ChaCha20Poly1305 SymmetricMode = iota
	AES256GCM
)

// SymmetricKeySize - key length for all modes
const SymmetricKeySize = 32

// String - name of the mode
func (m SymmetricMode) String() string {
	switch m {
	case ChaCha20Poly1305:
		return "chacha20-poly1305"
	case AES256GCM:
		return "aes-256-gcm"
	default:
		return "*unknown*"
	}
}

// SymmetricModeFromString - reverse of String
func SymmetricModeFromString(s string) (SymmetricMode, error) {
	switch s {
	case "chacha20-poly1305":
		return ChaCha20Poly1305, nil
	case "aes-256-gcm":
		return AES256GCM, nil
	default:
		return ChaCha20Poly1305, fault.InvalidKeyType
	}
}

func (m SymmetricMode) aead(key []byte) (cipher.AEAD, error) {
	if SymmetricKeySize != len(key) {
		return nil, fault.InvalidKeyLength
	}
	switch m {
	case ChaCha20Poly1305:
		return chacha20poly1305.New(key)
	case AES256GCM:
		block, err := aes.NewCipher(key)
		if nil != err {
			return nil, err
		}
		return cipher.NewGCM(block)
	default:
		return nil, fault.InvalidKeyType
	}
}

// NonceSize - the iv length required by the mode
func (m SymmetricMode) NonceSize() int {
	switch m {
	case ChaCha20Poly1305:
		return chacha20poly1305.NonceSize
	case AES256GCM:
		return 12
	default:
		return 0
	}
}

// Encrypt - authenticated encryption of plaintext
func Encrypt(mode SymmetricMode, key []byte, iv []byte, plaintext []byte, additional []byte) ([]byte, error) {
	a, err := mode.aead(key)
	if nil != err {
		return nil, err
	}
	if a.NonceSize() != len(iv) {
		return nil, fault.InvalidNonceLength
	}
	return a.Seal(nil, iv, plaintext, additional), nil
}

// Decrypt - reverse of Encrypt
//
// a tag mismatch is reported as fault.DecryptionFailed
func Decrypt(mode SymmetricMode, key []byte, iv []byte, ciphertext []byte, additional []byte) ([]byte, error) {
	a, err := mode.aead(key)
	if nil != err {
		return nil, err
	}
	if a.NonceSize() != len(iv) {
		return nil, fault.InvalidNonceLength
	}
	plaintext, err := a.Open(nil, iv, ciphertext, additional)
	if nil != err {
		return nil, fault.DecryptionFailed
	}
	return plaintext, nil
}
