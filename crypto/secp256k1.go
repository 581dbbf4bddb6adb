// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/sha256"
	"io"

	"github.com/btcsuite/btcd/btcec"

	"github.com/wigggles/opentxs-sub024/fault"
)

// secp256k1 signatures are DER encoded over a SHA256 of the message
type secp256k1Signer struct{}

const secp256k1PrivateKeySize = 32

func (secp256k1Signer) KeyType() KeyType {
	return SECP256K1
}

func (secp256k1Signer) Generate(random io.Reader) ([]byte, []byte, error) {
	seed := make([]byte, secp256k1PrivateKeySize)
	for {
		if _, err := io.ReadFull(random, seed); nil != err {
			return nil, nil, err
		}
		privateKey, publicKey := btcec.PrivKeyFromBytes(btcec.S256(), seed)
		if 0 == privateKey.D.Sign() {
			continue
		}
		return publicKey.SerializeCompressed(), privateKey.Serialize(), nil
	}
}

func (secp256k1Signer) PublicFromPrivate(privateKey []byte) ([]byte, error) {
	if secp256k1PrivateKeySize != len(privateKey) {
		return nil, fault.InvalidKeyLength
	}
	_, publicKey := btcec.PrivKeyFromBytes(btcec.S256(), privateKey)
	return publicKey.SerializeCompressed(), nil
}

func (secp256k1Signer) Sign(privateKey []byte, message []byte) ([]byte, error) {
	if secp256k1PrivateKeySize != len(privateKey) {
		return nil, fault.InvalidKeyLength
	}
	key, _ := btcec.PrivKeyFromBytes(btcec.S256(), privateKey)
	hash := sha256.Sum256(message)
	signature, err := key.Sign(hash[:])
	if nil != err {
		return nil, err
	}
	return signature.Serialize(), nil
}

func (secp256k1Signer) Verify(publicKey []byte, message []byte, signature []byte) bool {
	key, err := btcec.ParsePubKey(publicKey, btcec.S256())
	if nil != err {
		return false
	}
	sig, err := btcec.ParseDERSignature(signature, btcec.S256())
	if nil != err {
		return false
	}
	hash := sha256.Sum256(message)
	return sig.Verify(hash[:], key)
}
