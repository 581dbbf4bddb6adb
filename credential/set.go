// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credential

import (
	"encoding/xml"
	"sort"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/storage"
)

// Set - the authority formed by one master and the credentials it
// signed
//
// the set owns all of its credentials
type Set struct {
	master        *Credential
	children      map[identifier.Identifier]*Credential
	contacts      map[identifier.Identifier]*Credential
	verifications map[identifier.Identifier]*Credential
}

// NewSet - master plus one child credential
func NewSet(engine *crypto.Engine, masterKey *keypair.CachedKey, keyType crypto.KeyType, url string) (*Set, error) {
	master, err := NewMaster(engine, masterKey, keyType, url)
	if nil != err {
		return nil, err
	}
	s := newSet(master)
	if _, err := s.AddChild(engine, masterKey, keyType); nil != err {
		return nil, err
	}
	return s, nil
}

func newSet(master *Credential) *Set {
	return &Set{
		master:        master,
		children:      make(map[identifier.Identifier]*Credential),
		contacts:      make(map[identifier.Identifier]*Credential),
		verifications: make(map[identifier.Identifier]*Credential),
	}
}

// Master - the master credential
func (s *Set) Master() *Credential {
	return s.master
}

// MasterID - identifier of the master credential
func (s *Set) MasterID() identifier.Identifier {
	return s.master.ID()
}

// NymID - the nym of the set
func (s *Set) NymID() identifier.Identifier {
	return s.master.NymID()
}

// AddChild - new child credential signed by the master
func (s *Set) AddChild(engine *crypto.Engine, masterKey *keypair.CachedKey, keyType crypto.KeyType) (*Credential, error) {
	child, err := NewChild(engine, masterKey, keyType, s.master)
	if nil != err {
		return nil, err
	}
	s.children[child.ID()] = child
	return child, nil
}

// AddContact - new contact credential
func (s *Set) AddContact(claims []Claim) (*Credential, error) {
	c, err := NewContact(s.master, claims)
	if nil != err {
		return nil, err
	}
	s.contacts[c.ID()] = c
	return c, nil
}

// AddVerification - new verification credential
func (s *Set) AddVerification(verifications []Verification) (*Credential, error) {
	c, err := NewVerification(s.master, verifications)
	if nil != err {
		return nil, err
	}
	s.verifications[c.ID()] = c
	return c, nil
}

// Credential - any credential of the set by ID
func (s *Set) Credential(id identifier.Identifier) (*Credential, bool) {
	if id == s.master.ID() {
		return s.master, true
	}
	for _, m := range []map[identifier.Identifier]*Credential{s.children, s.contacts, s.verifications} {
		if c, ok := m[id]; ok {
			return c, true
		}
	}
	return nil, false
}

// Children - child credentials sorted by ID
func (s *Set) Children() []*Credential {
	return sorted(s.children)
}

// Contacts - contact credentials sorted by ID
func (s *Set) Contacts() []*Credential {
	return sorted(s.contacts)
}

// all credentials, master first
func (s *Set) all() []*Credential {
	result := []*Credential{s.master}
	result = append(result, sorted(s.children)...)
	result = append(result, sorted(s.contacts)...)
	return append(result, sorted(s.verifications)...)
}

func sorted(m map[identifier.Identifier]*Credential) []*Credential {
	result := make([]*Credential, 0, len(m))
	for _, c := range m {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID().Compare(result[j].ID()) < 0
	})
	return result
}

// SigningCredential - first child able to sign with a role
func (s *Set) SigningCredential(role keypair.Role) (*Credential, error) {
	for _, c := range sorted(s.children) {
		if c.HasPrivateKey(role) {
			return c, nil
		}
	}
	return nil, fault.CredentialChildNotFound
}

// EncryptionCredential - first child carrying an encryption key
func (s *Set) EncryptionCredential() (*Credential, error) {
	for _, c := range sorted(s.children) {
		if nil != c.Key(keypair.Encryption) {
			return c, nil
		}
	}
	return nil, fault.CredentialChildNotFound
}

// Verify - every credential of the set, master first
//
// any failure makes the whole set untrusted
func (s *Set) Verify(urlVerifier URLVerifier) error {
	if err := s.master.Verify(nil, urlVerifier); nil != err {
		return err
	}
	for _, c := range s.all()[1:] {
		if c.NymID() != s.master.NymID() {
			return fault.CredentialNymMismatch
		}
		if err := c.Verify(s.master, urlVerifier); nil != err {
			return err
		}
	}
	return nil
}

// Persist - save the public form of every credential
func (s *Set) Persist(folders *storage.Folders) error {
	for _, c := range s.all() {
		if err := c.Persist(folders); nil != err {
			return err
		}
	}
	return nil
}

type setBody struct {
	XMLName     xml.Name        `xml:"credentialSet"`
	MasterID    string          `xml:"masterID,attr"`
	Credentials []setMemberBody `xml:"credential"`
}

type setMemberBody struct {
	ID          string           `xml:"id,attr"`
	Raw         string           `xml:"raw"`
	PrivateKeys []privateKeyBody `xml:"privateKey"`
}

type privateKeyBody struct {
	Role  string `xml:"role,attr"`
	Value string `xml:",chardata"`
}

// PublicSerialize - all public credentials of the set
func (s *Set) PublicSerialize() ([]byte, error) {
	return s.serialize(false)
}

// PrivateSerialize - as PublicSerialize plus the encrypted private keys
func (s *Set) PrivateSerialize() ([]byte, error) {
	return s.serialize(true)
}

func (s *Set) serialize(private bool) ([]byte, error) {
	body := setBody{
		MasterID: s.master.ID().String(),
	}
	for _, c := range s.all() {
		member := setMemberBody{
			ID:  c.ID().String(),
			Raw: armor.EncodeData(armor.LabelPayload, c.RawFile()),
		}
		if private {
			keys := c.PrivateKeys()
			for _, role := range keypair.Roles {
				if armored, ok := keys[role]; ok {
					member.PrivateKeys = append(member.PrivateKeys, privateKeyBody{
						Role:  role.String(),
						Value: armored,
					})
				}
			}
		}
		body.Credentials = append(body.Credentials, member)
	}
	return xml.MarshalIndent(body, "", " ")
}

// ParseSet - reverse of PublicSerialize or PrivateSerialize
//
// private keys are attached when masterKey is not nil; the set is
// not verified
func ParseSet(engine *crypto.Engine, data []byte, masterKey *keypair.CachedKey) (*Set, error) {
	body := setBody{}
	if err := xml.Unmarshal(data, &body); nil != err {
		return nil, fault.InvalidContents
	}
	masterID, err := identifier.FromString(body.MasterID)
	if nil != err {
		return nil, err
	}

	var s *Set
	others := make([]*Credential, 0, len(body.Credentials))
	for _, member := range body.Credentials {
		raw, err := armor.DecodeData(member.Raw, armor.LabelPayload)
		if nil != err {
			return nil, err
		}
		c, err := Parse(engine, raw)
		if nil != err {
			return nil, err
		}
		if member.ID != c.ID().String() {
			return nil, fault.IdentifierMismatch
		}
		if nil != masterKey && 0 != len(member.PrivateKeys) {
			keys := make(map[keypair.Role]string)
			for _, pk := range member.PrivateKeys {
				role, err := keypair.RoleFromString(pk.Role)
				if nil != err {
					return nil, err
				}
				keys[role] = pk.Value
			}
			if err := c.SetPrivateKeys(keys, masterKey); nil != err {
				return nil, err
			}
		}
		if KindMaster == c.Kind() {
			if nil != s || c.ID() != masterID {
				return nil, fault.CredentialInvalidSource
			}
			s = newSet(c)
			continue
		}
		others = append(others, c)
	}
	if nil == s {
		return nil, fault.CredentialInvalidSource
	}
	for _, c := range others {
		if err := s.adopt(c); nil != err {
			return nil, err
		}
	}
	return s, nil
}

// take ownership of a parsed credential
func (s *Set) adopt(c *Credential) error {
	if c.MasterID() != s.master.ID() {
		return fault.CredentialInvalidSource
	}
	switch c.Kind() {
	case KindChild:
		s.children[c.ID()] = c
	case KindContact:
		s.contacts[c.ID()] = c
	case KindVerification:
		s.verifications[c.ID()] = c
	default:
		return fault.InvalidCredentialType
	}
	return nil
}
