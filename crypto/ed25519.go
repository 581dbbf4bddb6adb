// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"io"

	"golang.org/x/crypto/ed25519"

	"github.com/wigggles/opentxs-sub024/fault"
)

type ed25519Signer struct{}

func (ed25519Signer) KeyType() KeyType {
	return ED25519
}

func (ed25519Signer) Generate(random io.Reader) ([]byte, []byte, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(random)
	if nil != err {
		return nil, nil, err
	}
	return publicKey, privateKey, nil
}

func (ed25519Signer) PublicFromPrivate(privateKey []byte) ([]byte, error) {
	if ed25519.PrivateKeySize != len(privateKey) {
		return nil, fault.InvalidKeyLength
	}
	return []byte(ed25519.PrivateKey(privateKey).Public().(ed25519.PublicKey)), nil
}

func (ed25519Signer) Sign(privateKey []byte, message []byte) ([]byte, error) {
	if ed25519.PrivateKeySize != len(privateKey) {
		return nil, fault.InvalidKeyLength
	}
	return ed25519.Sign(privateKey, message), nil
}

func (ed25519Signer) Verify(publicKey []byte, message []byte, signature []byte) bool {
	if ed25519.PublicKeySize != len(publicKey) || ed25519.SignatureSize != len(signature) {
		return false
	}
	return ed25519.Verify(publicKey, message, signature)
}
