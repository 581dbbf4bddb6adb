// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credential_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/credential"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/mocks"
	"github.com/wigggles/opentxs-sub024/storage"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func newMasterKey(t *testing.T, e *crypto.Engine) *keypair.CachedKey {
	master, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword("password"), time.Minute)
	if nil != err {
		t.Fatalf("create master key error: %s", err)
	}
	return master
}

func TestSourceRoundTrip(t *testing.T) {
	s := credential.PubKeySource(crypto.ED25519, []byte{1, 2, 3, 4})
	parsed, err := credential.ParseSource(s.String())
	assert.Nil(t, err, "parse pubkey source")
	assert.Equal(t, s, parsed, "pubkey source")
	assert.Equal(t, s.NymID(), parsed.NymID(), "nym id")

	u := credential.URLSource("https://example.com/nym")
	parsed, err = credential.ParseSource(u.String())
	assert.Nil(t, err, "parse url source")
	assert.Equal(t, u, parsed, "url source")

	for _, bad := range []string{"", "pubkey", "pubkey:ed25519:", "url:", "dns:x"} {
		_, err := credential.ParseSource(bad)
		assert.Equal(t, fault.InvalidSource, err, "bad source: %q", bad)
	}
}

func TestMasterAndChild(t *testing.T) {
	e := crypto.NewEngine()
	masterKey := newMasterKey(t, e)

	for _, keyType := range []crypto.KeyType{crypto.ED25519, crypto.SECP256K1} {
		master, err := credential.NewMaster(e, masterKey, keyType, "")
		assert.Nil(t, err, "%s: new master", keyType)
		assert.Equal(t, credential.MasterSigned, master.State(), "%s: master state", keyType)
		assert.Equal(t, master.Source().NymID(), master.NymID(), "%s: nym id", keyType)
		assert.Nil(t, master.Verify(nil, nil), "%s: verify master", keyType)

		child, err := credential.NewChild(e, masterKey, keyType, master)
		assert.Nil(t, err, "%s: new child", keyType)
		assert.Equal(t, credential.MasterSigned, child.State(), "%s: child state", keyType)
		assert.Equal(t, master.ID(), child.MasterID(), "%s: master id", keyType)
		assert.Nil(t, child.Verify(master, nil), "%s: verify child", keyType)

		assert.Equal(t, fault.CredentialAlreadySigned, child.SelfSign(), "%s: re-sign", keyType)
		assert.Equal(t, fault.CredentialAlreadySigned, child.SignByMaster(master), "%s: re-sign by master", keyType)
	}
}

func TestChildOfOtherMaster(t *testing.T) {
	e := crypto.NewEngine()
	masterKey := newMasterKey(t, e)

	m1, err := credential.NewMaster(e, masterKey, crypto.ED25519, "")
	assert.Nil(t, err, "master 1")
	m2, err := credential.NewMaster(e, masterKey, crypto.ED25519, "")
	assert.Nil(t, err, "master 2")

	child, err := credential.NewChild(e, masterKey, crypto.ED25519, m1)
	assert.Nil(t, err, "child")
	assert.Equal(t, fault.CredentialInvalidSource, child.Verify(m2, nil), "wrong master")

	_, err = credential.NewChild(e, masterKey, crypto.ED25519, child)
	assert.Equal(t, fault.InvalidCredentialType, err, "child as master")
}

func TestTamperedMasterSignature(t *testing.T) {
	e := crypto.NewEngine()
	masterKey := newMasterKey(t, e)

	master, err := credential.NewMaster(e, masterKey, crypto.ED25519, "")
	assert.Nil(t, err, "master")
	child, err := credential.NewChild(e, masterKey, crypto.ED25519, master)
	assert.Nil(t, err, "child")

	text := string(child.RawFile())
	marker := "-----BEGIN " + string(contract.KindCredential) + " SIGNATURE-----"

	// locate the armored block carrying the master role
	var block *armor.Block
	start, end := 0, 0
	for offset := 0; nil == block; {
		n := strings.Index(text[offset:], marker)
		if !assert.True(t, n >= 0, "no master signature block") {
			return
		}
		b, rest, err := armor.Decode(text[offset+n:])
		if !assert.Nil(t, err, "decode signature block") {
			return
		}
		if string(contract.RoleMaster) == b.Headers["Role"] {
			block = b
			start = offset + n
			end = len(text) - len(rest)
		}
		offset = len(text) - len(rest)
	}

	parsed, err := credential.Parse(e, []byte(text))
	assert.Nil(t, err, "parse untouched")
	assert.Nil(t, parsed.VerifySignedByMaster(master), "untouched signature")

	for bit := 0; bit < 8*len(block.Data); bit += 37 {
		data := append([]byte{}, block.Data...)
		data[bit/8] ^= 1 << uint(bit%8)
		tampered := text[:start] + armor.Encode(block.Label, block.Headers, data) + text[end:]

		c, err := credential.Parse(e, []byte(tampered))
		if !assert.Nil(t, err, "bit: %d  parse", bit) {
			continue
		}
		assert.Equal(t, fault.CredentialMasterSignature, c.VerifySignedByMaster(master), "bit: %d  accepted", bit)
	}
}

func TestURLSource(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	e := crypto.NewEngine()
	masterKey := newMasterKey(t, e)

	master, err := credential.NewMaster(e, masterKey, crypto.ED25519, "https://example.com/nym")
	assert.Nil(t, err, "url master")
	assert.Equal(t, fault.URLSourceUnverified, master.Verify(nil, nil), "no url verifier")

	verifier := mocks.NewMockURLVerifier(ctl)
	verifier.EXPECT().VerifyURLSource("https://example.com/nym", master.ID()).Return(nil).Times(1)
	assert.Nil(t, master.Verify(nil, verifier), "url verified")

	verifier.EXPECT().VerifyURLSource("https://example.com/nym", master.ID()).Return(fault.CredentialInvalidSource).Times(1)
	assert.Equal(t, fault.CredentialInvalidSource, master.Verify(nil, verifier), "url rejected")
}

func TestContactAndVerification(t *testing.T) {
	e := crypto.NewEngine()
	masterKey := newMasterKey(t, e)

	master, err := credential.NewMaster(e, masterKey, crypto.ED25519, "")
	assert.Nil(t, err, "master")

	claims := []credential.Claim{
		{Section: "identifier", Type: "email", Value: "alice@example.com"},
	}
	contact, err := credential.NewContact(master, claims)
	assert.Nil(t, err, "contact")
	assert.Equal(t, credential.MasterSigned, contact.State(), "contact state")
	assert.Nil(t, contact.Verify(master, nil), "verify contact")
	assert.Equal(t, fault.InvalidCredentialType, contact.SelfSign(), "contact self sign")

	v, err := credential.NewVerification(master, []credential.Verification{
		{ClaimID: credential.ClaimID(master.NymID(), claims[0]), Valid: true, Start: 1, End: 2},
	})
	assert.Nil(t, err, "verification")
	assert.Nil(t, v.Verify(master, nil), "verify verification")

	parsed, err := credential.Parse(e, contact.RawFile())
	assert.Nil(t, err, "parse contact")
	assert.Equal(t, claims, parsed.Claims(), "claims")
	assert.Equal(t, contact.ID(), parsed.ID(), "contact id")

	_, err = credential.NewContact(master, nil)
	assert.Equal(t, fault.MissingParameters, err, "no claims")
}

func TestParseAndPersist(t *testing.T) {
	dir, cleanup := fixtures.TempDirectory("credential")
	defer cleanup()
	folders, err := storage.NewFolders(dir)
	assert.Nil(t, err, "folders")

	e := crypto.NewEngine()
	masterKey := newMasterKey(t, e)

	master, err := credential.NewMaster(e, masterKey, crypto.ED25519, "")
	assert.Nil(t, err, "master")
	child, err := credential.NewChild(e, masterKey, crypto.ED25519, master)
	assert.Nil(t, err, "child")

	assert.Nil(t, master.Persist(folders), "persist master")
	assert.Nil(t, child.Persist(folders), "persist child")
	assert.Equal(t, credential.Persisted, child.State(), "persisted")

	loadedMaster, err := credential.Load(e, folders, master.NymID(), master.ID())
	assert.Nil(t, err, "load master")
	loadedChild, err := credential.Load(e, folders, child.NymID(), child.ID())
	assert.Nil(t, err, "load child")
	assert.Equal(t, credential.Persisted, loadedChild.State(), "loaded state")
	assert.False(t, loadedChild.HasPrivateKey(keypair.Signing), "public only")
	assert.Nil(t, loadedChild.Verify(loadedMaster, nil), "verify loaded")

	_, err = credential.Load(e, folders, master.NymID(), identifier.FromData([]byte("missing")))
	assert.Equal(t, fault.FileNotFound, err, "missing credential")
}

func TestSetSerialize(t *testing.T) {
	e := crypto.NewEngine()
	masterKey := newMasterKey(t, e)

	s, err := credential.NewSet(e, masterKey, crypto.ED25519, "")
	assert.Nil(t, err, "new set")
	assert.Equal(t, 1, len(s.Children()), "children")
	_, err = s.AddContact([]credential.Claim{{Section: "name", Type: "alias", Value: "alice"}})
	assert.Nil(t, err, "add contact")
	assert.Nil(t, s.Verify(nil), "verify set")

	public, err := s.PublicSerialize()
	assert.Nil(t, err, "public serialize")
	p, err := credential.ParseSet(e, public, nil)
	assert.Nil(t, err, "parse public")
	assert.Equal(t, s.MasterID(), p.MasterID(), "master id")
	assert.Nil(t, p.Verify(nil), "verify parsed")
	_, err = p.SigningCredential(keypair.Signing)
	assert.Equal(t, fault.CredentialChildNotFound, err, "public set cannot sign")

	private, err := s.PrivateSerialize()
	assert.Nil(t, err, "private serialize")
	q, err := credential.ParseSet(e, private, masterKey)
	assert.Nil(t, err, "parse private")
	c, err := q.SigningCredential(keypair.Signing)
	assert.Nil(t, err, "private set can sign")
	assert.Equal(t, s.Children()[0].ID(), c.ID(), "signing child")

	enc, err := q.EncryptionCredential()
	assert.Nil(t, err, "encryption child")
	assert.NotNil(t, enc.Key(keypair.Encryption), "encryption key")
}
