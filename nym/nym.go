// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package nym - pseudonymous identities
//
// A nym is identified by the digest of its source and holds one or
// more credential sets. It signs documents with the keys of its
// child credentials and receives envelopes sealed to their
// encryption keys.
package nym

import (
	"encoding/xml"
	"sort"
	"sync"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/credential"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
)

// Capability - what the nym can do with the keys it holds
type Capability int

// capabilities
const (
	CanSign Capability = iota
	CanAuthenticate
	CanEncrypt
)

// envelope headers
const (
	headerNym        = "Nym"
	headerCredential = "Credential"
)

// Nym - an identity and its credential sets
type Nym struct {
	sync.RWMutex

	engine    *crypto.Engine
	id        identifier.Identifier
	source    credential.Source
	alias     string
	sets      map[identifier.Identifier]*credential.Set
	masterKey *keypair.CachedKey
}

// Create - new nym rooted in its master signing key
func Create(engine *crypto.Engine, masterKey *keypair.CachedKey, keyType crypto.KeyType, alias string) (*Nym, error) {
	return CreateWithURL(engine, masterKey, keyType, alias, "")
}

// CreateWithURL - new nym rooted in a URL, the empty URL gives a key
// rooted nym
func CreateWithURL(engine *crypto.Engine, masterKey *keypair.CachedKey, keyType crypto.KeyType, alias string, url string) (*Nym, error) {
	if nil == engine || nil == masterKey {
		return nil, fault.MissingParameters
	}
	set, err := credential.NewSet(engine, masterKey, keyType, url)
	if nil != err {
		return nil, err
	}
	n := &Nym{
		engine:    engine,
		id:        set.NymID(),
		source:    set.Master().Source(),
		alias:     alias,
		sets:      make(map[identifier.Identifier]*credential.Set),
		masterKey: masterKey,
	}
	n.sets[set.MasterID()] = set
	return n, nil
}

// ID - the nym ID
func (n *Nym) ID() identifier.Identifier {
	return n.id
}

// Source - the root of the identity
func (n *Nym) Source() credential.Source {
	return n.source
}

// Alias - local display name
func (n *Nym) Alias() string {
	n.RLock()
	defer n.RUnlock()
	return n.alias
}

// SetAlias - change the local display name
func (n *Nym) SetAlias(alias string) {
	n.Lock()
	n.alias = alias
	n.Unlock()
}

// Sets - credential sets sorted by master ID
func (n *Nym) Sets() []*credential.Set {
	n.RLock()
	defer n.RUnlock()
	return n.sortedSets()
}

func (n *Nym) sortedSets() []*credential.Set {
	result := make([]*credential.Set, 0, len(n.sets))
	for _, s := range n.sets {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MasterID().Compare(result[j].MasterID()) < 0
	})
	return result
}

// HasCapability - true if some child credential holds the needed key
func (n *Nym) HasCapability(c Capability) bool {
	n.RLock()
	defer n.RUnlock()

	for _, s := range n.sets {
		for _, child := range s.Children() {
			switch c {
			case CanSign:
				if child.HasPrivateKey(keypair.Signing) {
					return true
				}
			case CanAuthenticate:
				if child.HasPrivateKey(keypair.Authentication) {
					return true
				}
			case CanEncrypt:
				if child.HasPrivateKey(keypair.Encryption) {
					return true
				}
			}
		}
	}
	return false
}

// HasPrivateKeys - true for a nym loaded from its private form
func (n *Nym) HasPrivateKeys() bool {
	return n.HasCapability(CanSign)
}

// AddChild - another child credential in the first set
func (n *Nym) AddChild(keyType crypto.KeyType) (*credential.Credential, error) {
	n.Lock()
	defer n.Unlock()
	if nil == n.masterKey {
		return nil, fault.MissingPrivateKey
	}
	sets := n.sortedSets()
	return sets[0].AddChild(n.engine, n.masterKey, keyType)
}

// AddClaims - contact credential in the first set
func (n *Nym) AddClaims(claims []credential.Claim) (*credential.Credential, error) {
	n.Lock()
	defer n.Unlock()
	if nil == n.masterKey {
		return nil, fault.MissingPrivateKey
	}
	sets := n.sortedSets()
	return sets[0].AddContact(claims)
}

// Credential - any credential of the nym
func (n *Nym) Credential(id identifier.Identifier) (*credential.Credential, bool) {
	n.RLock()
	defer n.RUnlock()
	for _, s := range n.sets {
		if c, ok := s.Credential(id); ok {
			return c, true
		}
	}
	return nil, false
}

// signing credential for a contract role
func (n *Nym) signingCredential(role contract.SignatureRole) (*credential.Credential, error) {
	r := keypair.Signing
	if contract.RoleAuth == role {
		r = keypair.Authentication
	}
	for _, s := range n.sortedSets() {
		if c, err := s.SigningCredential(r); nil == err {
			return c, nil
		}
	}
	return nil, fault.NymCannotSign
}

// SigningCredential - the child credential used for RoleSign
func (n *Nym) SigningCredential() (*credential.Credential, error) {
	n.RLock()
	defer n.RUnlock()
	return n.signingCredential(contract.RoleSign)
}

// SignContract - for contract.Signer
func (n *Nym) SignContract(role contract.SignatureRole, data []byte, reason string) (contract.Signature, error) {
	n.RLock()
	defer n.RUnlock()
	switch role {
	case contract.RoleSign, contract.RoleAuth:
	default:
		return contract.Signature{}, fault.InvalidSignature
	}
	c, err := n.signingCredential(role)
	if nil != err {
		return contract.Signature{}, err
	}
	return c.SignContract(role, data, reason)
}

// VerifyContract - for contract.Verifier
//
// only child credentials sign documents
func (n *Nym) VerifyContract(signature contract.Signature, data []byte) error {
	if signature.NymID != n.id {
		return fault.InvalidSignature
	}
	c, ok := n.Credential(signature.CredentialID)
	if !ok || credential.KindChild != c.Kind() {
		return fault.InvalidSignature
	}
	return c.VerifyContract(signature, data)
}

// Sign - sign a document body, for callers without a contract
func (n *Nym) Sign(data []byte, reason string) (contract.Signature, error) {
	return n.SignContract(contract.RoleSign, data, reason)
}

// Verify - check a signature made by Sign
func (n *Nym) Verify(signature contract.Signature, data []byte) bool {
	return nil == n.VerifyContract(signature, data)
}

// Seal - envelope only this nym can open
func (n *Nym) Seal(plaintext []byte) (string, error) {
	n.RLock()
	defer n.RUnlock()

	for _, s := range n.sortedSets() {
		c, err := s.EncryptionCredential()
		if nil != err {
			continue
		}
		sealed, err := c.Key(keypair.Encryption).Seal(plaintext)
		if nil != err {
			return "", err
		}
		headers := map[string]string{
			headerNym:        n.id.String(),
			headerCredential: c.ID().String(),
		}
		return armor.Encode(armor.LabelEnvelope, headers, sealed), nil
	}
	return "", fault.CredentialChildNotFound
}

// Open - reverse of Seal using the private encryption key
func (n *Nym) Open(envelope string, reason string) ([]byte, error) {
	b, err := armor.DecodeLabel(envelope, armor.LabelEnvelope)
	if nil != err {
		return nil, err
	}
	if b.Headers[headerNym] != n.id.String() {
		return nil, fault.NymNotFound
	}
	id, err := identifier.FromString(b.Headers[headerCredential])
	if nil != err {
		return nil, err
	}
	c, ok := n.Credential(id)
	if !ok || !c.HasPrivateKey(keypair.Encryption) {
		return nil, fault.MissingPrivateKey
	}
	return c.Key(keypair.Encryption).Open(b.Data, reason)
}

// VerifyPseudonym - the complete check of the identity
func (n *Nym) VerifyPseudonym(urlVerifier credential.URLVerifier) error {
	n.RLock()
	defer n.RUnlock()

	if n.source.NymID() != n.id {
		return fault.CredentialNymMismatch
	}
	if 0 == len(n.sets) {
		return fault.CredentialChildNotFound
	}
	for _, s := range n.sortedSets() {
		if s.NymID() != n.id {
			return fault.CredentialNymMismatch
		}
		if err := s.Verify(urlVerifier); nil != err {
			return err
		}
	}
	return nil
}

type nymBody struct {
	XMLName xml.Name `xml:"nym"`
	Version int      `xml:"version,attr"`
	NymID   string   `xml:"nymID,attr"`
	Alias   string   `xml:"alias,attr,omitempty"`
	Source  string   `xml:"source"`
	Sets    []string `xml:"credentialSet"`
}
