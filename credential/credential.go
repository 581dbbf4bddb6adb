// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credential

import (
	"bytes"

	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/storage"
)

// Kind - the role of a credential within its set
type Kind string

// credential kinds
const (
	KindMaster       Kind = "master"
	KindChild        Kind = "child"
	KindContact      Kind = "contact"
	KindVerification Kind = "verification"
)

// State - signing progress
type State int

// credential states
const (
	Unsigned State = iota
	SelfSigned
	MasterSigned
	Persisted
)

// String - name of the state
func (s State) String() string {
	switch s {
	case Unsigned:
		return "unsigned"
	case SelfSigned:
		return "self-signed"
	case MasterSigned:
		return "master-signed"
	case Persisted:
		return "persisted"
	default:
		return "*unknown*"
	}
}

// Claim - a statement about the nym held by a contact credential
type Claim struct {
	Section string
	Type    string
	Value   string
}

// Verification - an opinion about a claim of another nym
type Verification struct {
	ClaimID identifier.Identifier
	Valid   bool
	Start   int64
	End     int64
}

// ClaimID - identifier of a claim made by a nym
func ClaimID(nymID identifier.Identifier, claim Claim) identifier.Identifier {
	data := append(nymID.Bytes(), []byte("\x00"+claim.Section+"\x00"+claim.Type+"\x00"+claim.Value)...)
	return identifier.FromData(data)
}

// Credential - one signed credential
type Credential struct {
	engine        *crypto.Engine
	document      *contract.Contract
	kind          Kind
	state         State
	nymID         identifier.Identifier
	source        Source
	masterID      identifier.Identifier
	keys          map[keypair.Role]*keypair.Keypair
	claims        []Claim
	verifications []Verification
}

// keys carried by master and child credentials
func generateKeys(engine *crypto.Engine, masterKey *keypair.CachedKey, keyType crypto.KeyType) (map[keypair.Role]*keypair.Keypair, error) {
	switch keyType {
	case crypto.ED25519, crypto.SECP256K1:
	default:
		return nil, fault.UnsupportedKeyType
	}
	keys := make(map[keypair.Role]*keypair.Keypair)
	for _, role := range keypair.Roles {
		t := keyType
		if keypair.Encryption == role {
			t = crypto.CURVE25519
		}
		k, err := keypair.Generate(engine, t, role, masterKey)
		if nil != err {
			return nil, err
		}
		keys[role] = k
	}
	return keys, nil
}

// NewMaster - create and sign a master credential
//
// an empty url gives a source rooted in the master signing key
func NewMaster(engine *crypto.Engine, masterKey *keypair.CachedKey, keyType crypto.KeyType, url string) (*Credential, error) {
	keys, err := generateKeys(engine, masterKey, keyType)
	if nil != err {
		return nil, err
	}
	source := URLSource(url)
	if "" == url {
		sign := keys[keypair.Signing]
		source = PubKeySource(sign.KeyType(), sign.PublicKey())
	}
	c := &Credential{
		engine:   engine,
		document: contract.New(contract.KindCredential, contract.HashOfContents),
		kind:     KindMaster,
		nymID:    source.NymID(),
		source:   source,
		keys:     keys,
	}
	if err := c.document.UpdateContents(c); nil != err {
		return nil, err
	}
	if err := c.SelfSign(); nil != err {
		return nil, err
	}
	if err := c.SignByMaster(c); nil != err {
		return nil, err
	}
	return c, nil
}

// NewChild - create a child credential signed by its master
func NewChild(engine *crypto.Engine, masterKey *keypair.CachedKey, keyType crypto.KeyType, master *Credential) (*Credential, error) {
	if nil == master || KindMaster != master.kind {
		return nil, fault.InvalidCredentialType
	}
	keys, err := generateKeys(engine, masterKey, keyType)
	if nil != err {
		return nil, err
	}
	c := &Credential{
		engine:   engine,
		document: contract.New(contract.KindCredential, contract.HashOfContents),
		kind:     KindChild,
		nymID:    master.nymID,
		source:   master.source,
		masterID: master.ID(),
		keys:     keys,
	}
	if err := c.document.UpdateContents(c); nil != err {
		return nil, err
	}
	if err := c.SelfSign(); nil != err {
		return nil, err
	}
	if err := c.SignByMaster(master); nil != err {
		return nil, err
	}
	return c, nil
}

// NewContact - claims about the nym, signed by the master
func NewContact(master *Credential, claims []Claim) (*Credential, error) {
	if 0 == len(claims) {
		return nil, fault.MissingParameters
	}
	c, err := newClaimCredential(master, KindContact)
	if nil != err {
		return nil, err
	}
	c.claims = append([]Claim{}, claims...)
	if err := c.finishClaims(master); nil != err {
		return nil, err
	}
	return c, nil
}

// NewVerification - opinions on claims of other nyms, signed by the
// master
func NewVerification(master *Credential, verifications []Verification) (*Credential, error) {
	if 0 == len(verifications) {
		return nil, fault.MissingParameters
	}
	c, err := newClaimCredential(master, KindVerification)
	if nil != err {
		return nil, err
	}
	c.verifications = append([]Verification{}, verifications...)
	if err := c.finishClaims(master); nil != err {
		return nil, err
	}
	return c, nil
}

func newClaimCredential(master *Credential, kind Kind) (*Credential, error) {
	if nil == master || KindMaster != master.kind {
		return nil, fault.InvalidCredentialType
	}
	return &Credential{
		engine:   master.engine,
		document: contract.New(contract.KindCredential, contract.HashOfContents),
		kind:     kind,
		nymID:    master.nymID,
		source:   master.source,
		masterID: master.ID(),
		keys:     make(map[keypair.Role]*keypair.Keypair),
	}, nil
}

func (c *Credential) finishClaims(master *Credential) error {
	if err := c.document.UpdateContents(c); nil != err {
		return err
	}
	return c.SignByMaster(master)
}

// ID - digest of the public content
func (c *Credential) ID() identifier.Identifier {
	return c.document.ID()
}

// Kind - master, child, contact or verification
func (c *Credential) Kind() Kind {
	return c.kind
}

// State - signing progress
func (c *Credential) State() State {
	return c.state
}

// NymID - the nym this credential belongs to
func (c *Credential) NymID() identifier.Identifier {
	return c.nymID
}

// Source - the nym source
func (c *Credential) Source() Source {
	return c.source
}

// MasterID - identifier of the signing master, own ID for a master
func (c *Credential) MasterID() identifier.Identifier {
	if KindMaster == c.kind {
		return c.ID()
	}
	return c.masterID
}

// Key - keypair of a role, nil if absent
func (c *Credential) Key(role keypair.Role) *keypair.Keypair {
	return c.keys[role]
}

// HasPrivateKey - true if the private half of a role is present
func (c *Credential) HasPrivateKey(role keypair.Role) bool {
	k := c.keys[role]
	return nil != k && k.HasPrivateKey()
}

// Claims - copy of the contact claims
func (c *Credential) Claims() []Claim {
	return append([]Claim{}, c.claims...)
}

// Verifications - copy of the verification items
func (c *Credential) Verifications() []Verification {
	return append([]Verification{}, c.verifications...)
}

// RawFile - the signed public form
func (c *Credential) RawFile() []byte {
	return c.document.RawFile()
}

// SelfSign - sign with the credential's own signing key
func (c *Credential) SelfSign() error {
	switch c.kind {
	case KindMaster, KindChild:
	default:
		return fault.InvalidCredentialType
	}
	if Unsigned != c.state {
		return fault.CredentialAlreadySigned
	}
	if err := c.document.SignWithRole(c, contract.RoleSelf, "self sign credential"); nil != err {
		return err
	}
	c.state = SelfSigned
	return nil
}

// SignByMaster - add the master signature
//
// master and child credentials must be self signed first, a master
// signs itself
func (c *Credential) SignByMaster(master *Credential) error {
	switch c.state {
	case MasterSigned, Persisted:
		return fault.CredentialAlreadySigned
	case Unsigned:
		if KindMaster == c.kind || KindChild == c.kind {
			return fault.CredentialWrongState
		}
	}
	if nil == master || KindMaster != master.kind || master.nymID != c.nymID {
		return fault.CredentialNymMismatch
	}
	if KindMaster != c.kind && c.masterID != master.ID() {
		return fault.CredentialNymMismatch
	}
	if err := c.document.SignWithRole(master, contract.RoleMaster, "master sign credential"); nil != err {
		return err
	}
	c.state = MasterSigned
	return nil
}

// Persist - save the public form
func (c *Credential) Persist(folders *storage.Folders) error {
	if MasterSigned != c.state && Persisted != c.state {
		return fault.CredentialNotPersistable
	}
	if err := c.document.SaveContract(folders, storage.Credentials, c.nymID.String(), c.ID().String()); nil != err {
		return err
	}
	c.state = Persisted
	return nil
}

// SignContract - sign on behalf of the nym
//
// authentication signatures use the auth key, all other roles the
// signing key
func (c *Credential) SignContract(role contract.SignatureRole, data []byte, reason string) (contract.Signature, error) {
	k := c.keyForRole(role)
	if nil == k {
		return contract.Signature{}, fault.NymCannotSign
	}
	signature, err := k.Sign(data, reason)
	if nil != err {
		return contract.Signature{}, err
	}
	return contract.Signature{
		Role:         role,
		NymID:        c.nymID,
		CredentialID: c.ID(),
		Data:         signature,
	}, nil
}

// VerifyContract - check a signature made by this credential
func (c *Credential) VerifyContract(signature contract.Signature, data []byte) error {
	if signature.NymID != c.nymID || signature.CredentialID != c.ID() {
		return fault.InvalidSignature
	}
	k := c.keyForRole(signature.Role)
	if nil == k || !k.Verify(data, signature.Data) {
		return fault.InvalidSignature
	}
	return nil
}

func (c *Credential) keyForRole(role contract.SignatureRole) *keypair.Keypair {
	if contract.RoleAuth == role {
		return c.keys[keypair.Authentication]
	}
	return c.keys[keypair.Signing]
}

// Verify - the full check of one credential
//
// master is ignored for a master credential; urlVerifier is only
// consulted for URL sources
func (c *Credential) Verify(master *Credential, urlVerifier URLVerifier) error {
	if KindMaster == c.kind {
		master = c
	}
	if err := c.VerifyNymID(); nil != err {
		return err
	}
	if err := c.VerifyAgainstSource(master, urlVerifier); nil != err {
		return err
	}
	if err := c.VerifySignedByMaster(master); nil != err {
		return err
	}
	return c.VerifySelfSignature()
}

// VerifyNymID - the nym ID is the digest of the source
func (c *Credential) VerifyNymID() error {
	if !c.source.IsValid() || c.source.NymID() != c.nymID {
		return fault.CredentialNymMismatch
	}
	return nil
}

// VerifyAgainstSource - the master is vouched for by the source and
// every other credential belongs to that master
func (c *Credential) VerifyAgainstSource(master *Credential, urlVerifier URLVerifier) error {
	if KindMaster != c.kind {
		if nil == master || KindMaster != master.kind {
			return fault.CredentialInvalidSource
		}
		if c.masterID != master.ID() || c.nymID != master.nymID || c.source.String() != master.source.String() {
			return fault.CredentialInvalidSource
		}
		return nil
	}

	switch c.source.Type {
	case SourcePubKey:
		sign := c.keys[keypair.Signing]
		if nil == sign || sign.KeyType() != c.source.KeyType {
			return fault.CredentialInvalidSource
		}
		if !bytes.Equal(sign.PublicKey(), c.source.PublicKey) {
			return fault.CredentialInvalidSource
		}
		return nil
	case SourceURL:
		if nil == urlVerifier {
			return fault.URLSourceUnverified
		}
		return urlVerifier.VerifyURLSource(c.source.URL, c.ID())
	default:
		return fault.CredentialInvalidSource
	}
}

// VerifySignedByMaster - the master signature is present and valid
func (c *Credential) VerifySignedByMaster(master *Credential) error {
	if nil == master {
		return fault.CredentialMasterSignature
	}
	s, ok := c.document.SignatureByRole(contract.RoleMaster)
	if !ok || s.CredentialID != master.ID() {
		return fault.CredentialMasterSignature
	}
	if err := master.VerifyContract(s, c.document.Unsigned()); nil != err {
		return fault.CredentialMasterSignature
	}
	return nil
}

// VerifySelfSignature - master and child credentials sign themselves
func (c *Credential) VerifySelfSignature() error {
	if KindMaster != c.kind && KindChild != c.kind {
		return nil
	}
	s, ok := c.document.SignatureByRole(contract.RoleSelf)
	if !ok {
		return fault.CredentialSelfSignature
	}
	if err := c.VerifyContract(s, c.document.Unsigned()); nil != err {
		return fault.CredentialSelfSignature
	}
	return nil
}

// PrivateKeys - armored encrypted private keys by role
func (c *Credential) PrivateKeys() map[keypair.Role]string {
	result := make(map[keypair.Role]string)
	for role, k := range c.keys {
		if k.HasPrivateKey() {
			result[role] = k.PrivateKey()
		}
	}
	return result
}

// SetPrivateKeys - attach private keys loaded from a wallet
func (c *Credential) SetPrivateKeys(keys map[keypair.Role]string, masterKey *keypair.CachedKey) error {
	for role, armored := range keys {
		k := c.keys[role]
		if nil == k {
			return fault.InvalidKeyType
		}
		if err := k.SetPrivateKey(armored, masterKey); nil != err {
			return err
		}
	}
	return nil
}

// Parse - public credential from its raw file
func Parse(engine *crypto.Engine, raw []byte) (*Credential, error) {
	c := &Credential{
		engine: engine,
		keys:   make(map[keypair.Role]*keypair.Keypair),
	}
	d, err := contract.Parse(raw, contract.HashOfContents, c)
	if nil != err {
		return nil, err
	}
	c.document = d
	c.state = Unsigned
	if _, ok := d.SignatureByRole(contract.RoleSelf); ok {
		c.state = SelfSigned
	}
	if _, ok := d.SignatureByRole(contract.RoleMaster); ok {
		c.state = MasterSigned
	}
	return c, nil
}

// Load - read a persisted credential and check its identifier
func Load(engine *crypto.Engine, folders *storage.Folders, nymID identifier.Identifier, credentialID identifier.Identifier) (*Credential, error) {
	raw, err := folders.Load(storage.Credentials, nymID.String(), credentialID.String())
	if nil != err {
		return nil, err
	}
	c, err := Parse(engine, raw)
	if nil != err {
		return nil, err
	}
	if err := c.document.VerifyContractID(credentialID); nil != err {
		return nil, err
	}
	if MasterSigned == c.state {
		c.state = Persisted
	}
	return c, nil
}
