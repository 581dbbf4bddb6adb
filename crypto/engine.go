// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/wigggles/opentxs-sub024/fault"
)

// KeyType - asymmetric key algorithms
type KeyType int

// all key types
const (
	KeyNone KeyType = iota
	ED25519
	SECP256K1
	CURVE25519
)

// String - name of the key type
func (k KeyType) String() string {
	switch k {
	case ED25519:
		return "ed25519"
	case SECP256K1:
		return "secp256k1"
	case CURVE25519:
		return "curve25519"
	default:
		return "*unknown*"
	}
}

// KeyTypeFromString - reverse of String
func KeyTypeFromString(s string) (KeyType, error) {
	switch s {
	case "ed25519":
		return ED25519, nil
	case "secp256k1":
		return SECP256K1, nil
	case "curve25519":
		return CURVE25519, nil
	default:
		return KeyNone, fault.UnsupportedKeyType
	}
}

// Signer - provider of a signature algorithm
type Signer interface {
	KeyType() KeyType
	Generate(random io.Reader) (publicKey []byte, privateKey []byte, err error)
	PublicFromPrivate(privateKey []byte) ([]byte, error)
	Sign(privateKey []byte, message []byte) ([]byte, error)
	Verify(publicKey []byte, message []byte, signature []byte) bool
}

// Sealer - provider of public key encryption
type Sealer interface {
	KeyType() KeyType
	Generate(random io.Reader) (publicKey []byte, privateKey []byte, err error)
	Seal(random io.Reader, publicKey []byte, plaintext []byte) ([]byte, error)
	Open(privateKey []byte, sealed []byte) ([]byte, error)
}

// Engine - registry of asymmetric backends and the randomness source
type Engine struct {
	sync.RWMutex
	signers map[KeyType]Signer
	sealers map[KeyType]Sealer
	random  io.Reader
}

// NewEngine - engine with the default backends registered
func NewEngine() *Engine {
	e := &Engine{
		signers: make(map[KeyType]Signer),
		sealers: make(map[KeyType]Sealer),
		random:  rand.Reader,
	}
	e.RegisterSigner(ed25519Signer{})
	e.RegisterSigner(secp256k1Signer{})
	e.RegisterSealer(curve25519Sealer{})
	return e
}

// RegisterSigner - add or replace a signature backend
func (e *Engine) RegisterSigner(s Signer) {
	e.Lock()
	e.signers[s.KeyType()] = s
	e.Unlock()
}

// RegisterSealer - add or replace an encryption backend
func (e *Engine) RegisterSealer(s Sealer) {
	e.Lock()
	e.sealers[s.KeyType()] = s
	e.Unlock()
}

// SetRandom - substitute the randomness source
func (e *Engine) SetRandom(r io.Reader) {
	e.Lock()
	e.random = r
	e.Unlock()
}

// Signer - fetch the backend for a key type
func (e *Engine) Signer(keyType KeyType) (Signer, error) {
	e.RLock()
	defer e.RUnlock()
	s, ok := e.signers[keyType]
	if !ok {
		return nil, fault.UnsupportedKeyType
	}
	return s, nil
}

// Sealer - fetch the backend for a key type
func (e *Engine) Sealer(keyType KeyType) (Sealer, error) {
	e.RLock()
	defer e.RUnlock()
	s, ok := e.sealers[keyType]
	if !ok {
		return nil, fault.UnsupportedKeyType
	}
	return s, nil
}

// Reader - the randomness source
func (e *Engine) Reader() io.Reader {
	e.RLock()
	defer e.RUnlock()
	return e.random
}

// Random - n bytes from the randomness source
func (e *Engine) Random(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fault.InvalidCount
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(e.Reader(), b); nil != err {
		return nil, err
	}
	return b, nil
}

// SealEnvelope - encrypt to a public key using the registered sealer
func (e *Engine) SealEnvelope(keyType KeyType, publicKey []byte, plaintext []byte) ([]byte, error) {
	s, err := e.Sealer(keyType)
	if nil != err {
		return nil, err
	}
	return s.Seal(e.Reader(), publicKey, plaintext)
}

// OpenEnvelope - reverse of SealEnvelope
func (e *Engine) OpenEnvelope(keyType KeyType, privateKey []byte, sealed []byte) ([]byte, error) {
	s, err := e.Sealer(keyType)
	if nil != err {
		return nil, err
	}
	return s.Open(privateKey, sealed)
}
