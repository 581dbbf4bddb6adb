// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract_test

import (
	"os"
	"testing"
	"time"

	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

// single key signer standing in for a nym
type testSigner struct {
	nymID        identifier.Identifier
	credentialID identifier.Identifier
	key          *keypair.Keypair
}

func newTestSigner(t *testing.T, e *crypto.Engine, name string) *testSigner {
	master, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword("password"), time.Minute)
	if nil != err {
		t.Fatalf("create master key error: %s", err)
	}
	key, err := keypair.Generate(e, crypto.ED25519, keypair.Signing, master)
	if nil != err {
		t.Fatalf("generate key error: %s", err)
	}
	return &testSigner{
		nymID:        identifier.FromData([]byte(name)),
		credentialID: identifier.FromData(key.PublicKey()),
		key:          key,
	}
}

func (s *testSigner) SignContract(role contract.SignatureRole, data []byte, reason string) (contract.Signature, error) {
	signature, err := s.key.Sign(data, reason)
	if nil != err {
		return contract.Signature{}, err
	}
	return contract.Signature{
		Role:         role,
		NymID:        s.nymID,
		CredentialID: s.credentialID,
		Data:         signature,
	}, nil
}

func (s *testSigner) VerifyContract(signature contract.Signature, data []byte) error {
	if signature.NymID != s.nymID || !s.key.Verify(data, signature.Data) {
		return fault.InvalidSignature
	}
	return nil
}

// free text document
type note struct {
	text string
	id   identifier.Identifier
}

func (n *note) ContractKind() contract.Kind {
	return contract.KindMessage
}

func (n *note) UpdateContents() ([]byte, error) {
	return []byte(n.text), nil
}

func (n *note) ParseContents(unsigned []byte) error {
	n.text = string(unsigned)
	return nil
}

func (n *note) ContractID() identifier.Identifier {
	return n.id
}
