// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
)

func TestEncryptDecrypt(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, crypto.SymmetricKeySize)
	plaintext := []byte("the quick brown fox")
	aad := []byte("header")

	for _, mode := range []crypto.SymmetricMode{crypto.ChaCha20Poly1305, crypto.AES256GCM} {
		iv := bytes.Repeat([]byte{0x07}, mode.NonceSize())

		ciphertext, err := crypto.Encrypt(mode, key, iv, plaintext, aad)
		assert.Nil(t, err, "%s: encrypt", mode)
		assert.NotEqual(t, plaintext, ciphertext[:len(plaintext)], "%s: not encrypted", mode)

		decrypted, err := crypto.Decrypt(mode, key, iv, ciphertext, aad)
		assert.Nil(t, err, "%s: decrypt", mode)
		assert.Equal(t, plaintext, decrypted, "%s: round trip", mode)

		ciphertext[0] ^= 0x80
		_, err = crypto.Decrypt(mode, key, iv, ciphertext, aad)
		assert.Equal(t, fault.DecryptionFailed, err, "%s: tampered ciphertext", mode)
		ciphertext[0] ^= 0x80

		_, err = crypto.Decrypt(mode, key, iv, ciphertext, []byte("other"))
		assert.Equal(t, fault.DecryptionFailed, err, "%s: wrong additional data", mode)

		back, err := crypto.SymmetricModeFromString(mode.String())
		assert.Nil(t, err, "%s: from string", mode)
		assert.Equal(t, mode, back, "%s: mode round trip", mode)
	}
}

func TestEncryptBadParameters(t *testing.T) {
	_, err := crypto.Encrypt(crypto.ChaCha20Poly1305, []byte("short"), make([]byte, 12), []byte("x"), nil)
	assert.Equal(t, fault.InvalidKeyLength, err, "short key")

	key := make([]byte, crypto.SymmetricKeySize)
	_, err = crypto.Encrypt(crypto.ChaCha20Poly1305, key, make([]byte, 3), []byte("x"), nil)
	assert.Equal(t, fault.InvalidNonceLength, err, "short nonce")
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("0123456789abcdef")

	k1, err := crypto.DeriveKey([]byte("password"), salt, crypto.FastKDF)
	assert.Nil(t, err, "derive")
	assert.Equal(t, crypto.SymmetricKeySize, len(k1), "key length")

	k2, _ := crypto.DeriveKey([]byte("password"), salt, crypto.FastKDF)
	assert.Equal(t, k1, k2, "not deterministic")

	k3, _ := crypto.DeriveKey([]byte("Password"), salt, crypto.FastKDF)
	assert.NotEqual(t, k1, k3, "different password same key")

	_, err = crypto.DeriveKey(nil, salt, crypto.FastKDF)
	assert.Equal(t, fault.KeyDerivationFailed, err, "empty password")
}
