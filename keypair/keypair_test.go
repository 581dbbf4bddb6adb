// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keypair_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/keypair"
)

func newMaster(t *testing.T, e *crypto.Engine) *keypair.CachedKey {
	master, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword(testPassword), time.Minute)
	if nil != err {
		t.Fatalf("create master key error: %s", err)
	}
	return master
}

func TestSignVerify(t *testing.T) {
	e := crypto.NewEngine()
	master := newMaster(t, e)

	for _, keyType := range []crypto.KeyType{crypto.ED25519, crypto.SECP256K1} {
		k, err := keypair.Generate(e, keyType, keypair.Signing, master)
		assert.Nil(t, err, "%s: generate", keyType)
		assert.True(t, k.HasPrivateKey(), "%s: private key", keyType)
		assert.Equal(t, keypair.Signing, k.Role(), "%s: role", keyType)

		signature, err := k.Sign([]byte("message"), "test")
		assert.Nil(t, err, "%s: sign", keyType)
		assert.True(t, k.Verify([]byte("message"), signature), "%s: verify", keyType)

		public := keypair.NewPublic(e, keyType, keypair.Signing, k.PublicKey())
		assert.False(t, public.HasPrivateKey(), "%s: public only", keyType)
		assert.True(t, public.Verify([]byte("message"), signature), "%s: verify with public", keyType)

		_, err = public.Sign([]byte("message"), "test")
		assert.Equal(t, fault.MissingPrivateKey, err, "%s: sign without private key", keyType)
	}
}

func TestSealOpen(t *testing.T) {
	e := crypto.NewEngine()
	master := newMaster(t, e)

	k, err := keypair.Generate(e, crypto.CURVE25519, keypair.Encryption, master)
	assert.Nil(t, err, "generate")

	public := keypair.NewPublic(e, crypto.CURVE25519, keypair.Encryption, k.PublicKey())
	sealed, err := public.Seal([]byte("secret"))
	assert.Nil(t, err, "seal")

	opened, err := k.Open(sealed, "test")
	assert.Nil(t, err, "open")
	assert.Equal(t, []byte("secret"), opened, "round trip")

	_, err = k.Sign([]byte("x"), "test")
	assert.Equal(t, fault.InvalidKeyType, err, "encryption key cannot sign")
}

func TestSetPrivateKey(t *testing.T) {
	e := crypto.NewEngine()
	master := newMaster(t, e)

	k, err := keypair.Generate(e, crypto.ED25519, keypair.Authentication, master)
	assert.Nil(t, err, "generate")

	restored := keypair.NewPublic(e, crypto.ED25519, keypair.Authentication, k.PublicKey())
	assert.Nil(t, restored.SetPrivateKey(k.PrivateKey(), master), "set private key")

	signature, err := restored.Sign([]byte("authenticate"), "test")
	assert.Nil(t, err, "sign")
	assert.True(t, k.Verify([]byte("authenticate"), signature), "verify")

	assert.Equal(t, fault.CannotDecodeArmor, restored.SetPrivateKey("plain text", master), "not armored")
	assert.Equal(t, fault.MissingParameters, restored.SetPrivateKey(k.PrivateKey(), nil), "no master")
}

func TestRoleNames(t *testing.T) {
	for _, r := range keypair.Roles {
		back, err := keypair.RoleFromString(r.String())
		assert.Nil(t, err, "%s: from string", r)
		assert.Equal(t, r, back, "%s: round trip", r)
	}
	_, err := keypair.RoleFromString("other")
	assert.Equal(t, fault.InvalidKeyType, err, "bad role")
}
