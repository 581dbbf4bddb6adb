// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keypair

import (
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
)

// Role - purpose of a key within a credential
type Role int

// key roles
const (
	Authentication Role = iota
	Encryption
	Signing
)

// Roles - all roles in serialization order
var Roles = []Role{Authentication, Encryption, Signing}

// String - short name used in serialized credentials
func (r Role) String() string {
	switch r {
	case Authentication:
		return "auth"
	case Encryption:
		return "encr"
	case Signing:
		return "sign"
	default:
		return "*unknown*"
	}
}

// RoleFromString - reverse of String
func RoleFromString(s string) (Role, error) {
	switch s {
	case "auth":
		return Authentication, nil
	case "encr":
		return Encryption, nil
	case "sign":
		return Signing, nil
	default:
		return Signing, fault.InvalidKeyType
	}
}

// Keypair - one public key and optionally its encrypted private key
type Keypair struct {
	role      Role
	keyType   crypto.KeyType
	publicKey []byte
	private   string
	engine    *crypto.Engine
	master    *CachedKey
}

// Generate - new keypair of the given type, private half encrypted
// under the master key
func Generate(engine *crypto.Engine, keyType crypto.KeyType, role Role, master *CachedKey) (*Keypair, error) {
	if nil == engine || nil == master {
		return nil, fault.MissingParameters
	}

	var publicKey, privateKey []byte
	var err error

	switch role {
	case Encryption:
		s, e := engine.Sealer(keyType)
		if nil != e {
			return nil, e
		}
		publicKey, privateKey, err = s.Generate(engine.Reader())
	case Authentication, Signing:
		s, e := engine.Signer(keyType)
		if nil != e {
			return nil, e
		}
		publicKey, privateKey, err = s.Generate(engine.Reader())
	default:
		return nil, fault.InvalidKeyType
	}
	if nil != err {
		return nil, err
	}
	defer zero(privateKey)

	private, err := master.Encrypt(privateKey, "protect new "+role.String()+" key")
	if nil != err {
		return nil, err
	}

	return &Keypair{
		role:      role,
		keyType:   keyType,
		publicKey: publicKey,
		private:   private,
		engine:    engine,
		master:    master,
	}, nil
}

// NewPublic - keypair holding only a public key, e.g. a key loaded
// from another party's credential
func NewPublic(engine *crypto.Engine, keyType crypto.KeyType, role Role, publicKey []byte) *Keypair {
	return &Keypair{
		role:      role,
		keyType:   keyType,
		publicKey: copyBytes(publicKey),
		engine:    engine,
	}
}

// Role - the role of this key
func (k *Keypair) Role() Role {
	return k.role
}

// KeyType - the algorithm of this key
func (k *Keypair) KeyType() crypto.KeyType {
	return k.keyType
}

// PublicKey - copy of the public key bytes
func (k *Keypair) PublicKey() []byte {
	return copyBytes(k.publicKey)
}

// SetPrivateKey - attach an armored encrypted private key
//
// the key remains encrypted; it is only decrypted when used
func (k *Keypair) SetPrivateKey(armored string, master *CachedKey) error {
	if nil == master {
		return fault.MissingParameters
	}
	if !isPrivateKeyArmor(armored) {
		return fault.CannotDecodeArmor
	}
	k.private = armored
	k.master = master
	return nil
}

// PrivateKey - the armored encrypted private key, empty if public only
func (k *Keypair) PrivateKey() string {
	return k.private
}

// HasPrivateKey - true if the private half is available
func (k *Keypair) HasPrivateKey() bool {
	return "" != k.private && nil != k.master
}

// with the decrypted private key for the duration of f
func (k *Keypair) withPrivate(reason string, f func(privateKey []byte) error) error {
	if !k.HasPrivateKey() {
		return fault.MissingPrivateKey
	}
	privateKey, err := k.master.Decrypt(k.private, reason)
	if nil != err {
		return err
	}
	defer zero(privateKey)
	return f(privateKey)
}

// Sign - sign a message with a signing or authentication key
func (k *Keypair) Sign(message []byte, reason string) ([]byte, error) {
	if Encryption == k.role {
		return nil, fault.InvalidKeyType
	}
	s, err := k.engine.Signer(k.keyType)
	if nil != err {
		return nil, err
	}
	var signature []byte
	err = k.withPrivate(reason, func(privateKey []byte) error {
		signature, err = s.Sign(privateKey, message)
		return err
	})
	return signature, err
}

// Verify - check a signature against the public key
func (k *Keypair) Verify(message []byte, signature []byte) bool {
	if Encryption == k.role {
		return false
	}
	s, err := k.engine.Signer(k.keyType)
	if nil != err {
		return false
	}
	return s.Verify(k.publicKey, message, signature)
}

// Seal - encrypt to this key
func (k *Keypair) Seal(plaintext []byte) ([]byte, error) {
	if Encryption != k.role {
		return nil, fault.InvalidKeyType
	}
	return k.engine.SealEnvelope(k.keyType, k.publicKey, plaintext)
}

// Open - decrypt an envelope sealed to this key
func (k *Keypair) Open(sealed []byte, reason string) ([]byte, error) {
	if Encryption != k.role {
		return nil, fault.InvalidKeyType
	}
	var plaintext []byte
	err := k.withPrivate(reason, func(privateKey []byte) error {
		var e error
		plaintext, e = k.engine.OpenEnvelope(k.keyType, privateKey, sealed)
		return e
	})
	return plaintext, err
}
