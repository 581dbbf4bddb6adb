// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"io"

	"golang.org/x/crypto/nacl/box"

	"github.com/wigggles/opentxs-sub024/fault"
)

// envelope layout: ephemeral public key | nonce | box
const (
	curve25519KeySize = 32
	envelopeNonceSize = 24
	envelopeOverhead  = curve25519KeySize + envelopeNonceSize + box.Overhead
)

type curve25519Sealer struct{}

func (curve25519Sealer) KeyType() KeyType {
	return CURVE25519
}

func (curve25519Sealer) Generate(random io.Reader) ([]byte, []byte, error) {
	publicKey, privateKey, err := box.GenerateKey(random)
	if nil != err {
		return nil, nil, err
	}
	return publicKey[:], privateKey[:], nil
}

func (curve25519Sealer) Seal(random io.Reader, publicKey []byte, plaintext []byte) ([]byte, error) {
	if curve25519KeySize != len(publicKey) {
		return nil, fault.InvalidKeyLength
	}
	var recipient [curve25519KeySize]byte
	copy(recipient[:], publicKey)

	ephemeralPublic, ephemeralPrivate, err := box.GenerateKey(random)
	if nil != err {
		return nil, err
	}

	var nonce [envelopeNonceSize]byte
	if _, err := io.ReadFull(random, nonce[:]); nil != err {
		return nil, err
	}

	sealed := make([]byte, 0, envelopeOverhead+len(plaintext))
	sealed = append(sealed, ephemeralPublic[:]...)
	sealed = append(sealed, nonce[:]...)
	return box.Seal(sealed, plaintext, &nonce, &recipient, ephemeralPrivate), nil
}

func (curve25519Sealer) Open(privateKey []byte, sealed []byte) ([]byte, error) {
	if curve25519KeySize != len(privateKey) {
		return nil, fault.InvalidKeyLength
	}
	if len(sealed) < envelopeOverhead {
		return nil, fault.EnvelopeTooShort
	}
	var recipient [curve25519KeySize]byte
	copy(recipient[:], privateKey)

	var ephemeral [curve25519KeySize]byte
	copy(ephemeral[:], sealed[:curve25519KeySize])

	var nonce [envelopeNonceSize]byte
	copy(nonce[:], sealed[curve25519KeySize:curve25519KeySize+envelopeNonceSize])

	plaintext, ok := box.Open(nil, sealed[curve25519KeySize+envelopeNonceSize:], &nonce, &ephemeral, &recipient)
	if !ok {
		return nil, fault.DecryptionFailed
	}
	return plaintext, nil
}
