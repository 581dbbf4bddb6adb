// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"bytes"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
)

// Kind - the document type written in the raw file markers
type Kind string

// all document kinds
const (
	KindAccount              Kind = "ACCOUNT"
	KindCheque               Kind = "CHEQUE"
	KindCredential           Kind = "CREDENTIAL"
	KindCronItem             Kind = "CRON ITEM"
	KindInstrumentDefinition Kind = "INSTRUMENT DEFINITION"
	KindLedger               Kind = "LEDGER"
	KindMainFile             Kind = "NOTARY MAIN FILE"
	KindMessage              Kind = "MESSAGE"
	KindNotary               Kind = "NOTARY CONTRACT"
	KindTransaction          Kind = "TRANSACTION"
)

// IDMode - how the identifier is bound to the document
type IDMode int

// identifier modes
const (
	HashOfRawFile IDMode = iota
	HashOfContents
	Assigned
)

// SignatureRole - which key produced a signature
type SignatureRole string

// signature roles
const (
	RoleSign   SignatureRole = "sign"
	RoleAuth   SignatureRole = "auth"
	RoleSelf   SignatureRole = "self"
	RoleMaster SignatureRole = "master"
)

// Signature - one signature over the unsigned body
type Signature struct {
	Role         SignatureRole
	NymID        identifier.Identifier
	CredentialID identifier.Identifier
	Data         []byte
}

// Signer - anything able to sign a body, normally a Nym
type Signer interface {
	SignContract(role SignatureRole, data []byte, reason string) (Signature, error)
}

// Verifier - anything able to check a signature, normally a Nym
type Verifier interface {
	VerifyContract(signature Signature, data []byte) error
}

// Contents - a concrete document type
//
// UpdateContents must regenerate the body from the current members
// and must be deterministic
type Contents interface {
	ContractKind() Kind
	UpdateContents() ([]byte, error)
	ParseContents(unsigned []byte) error
}

// Identified - contents carrying an assigned identifier
type Identified interface {
	ContractID() identifier.Identifier
}

// Contract - the signable document
type Contract struct {
	kind       Kind
	mode       IDMode
	unsigned   []byte
	signatures []Signature
	id         identifier.Identifier
}

// New - empty document of a kind
func New(kind Kind, mode IDMode) *Contract {
	return &Contract{
		kind: kind,
		mode: mode,
	}
}

// Kind - the document kind
func (c *Contract) Kind() Kind {
	return c.kind
}

// Mode - the identifier binding
func (c *Contract) Mode() IDMode {
	return c.mode
}

// Unsigned - copy of the unsigned body
func (c *Contract) Unsigned() []byte {
	return append([]byte{}, c.unsigned...)
}

// Signatures - copy of the signature list
func (c *Contract) Signatures() []Signature {
	return append([]Signature{}, c.signatures...)
}

// IsSigned - true if at least one signature is present
func (c *Contract) IsSigned() bool {
	return 0 != len(c.signatures)
}

// SetID - set the identifier of an assigned mode document
func (c *Contract) SetID(id identifier.Identifier) {
	c.id = id
}

// ID - the identifier as last calculated or assigned
func (c *Contract) ID() identifier.Identifier {
	if Assigned != c.mode {
		return c.CalculateID()
	}
	return c.id
}

// CalculateID - recompute the identifier from the document
func (c *Contract) CalculateID() identifier.Identifier {
	switch c.mode {
	case HashOfRawFile:
		return identifier.FromData(c.RawFile())
	case HashOfContents:
		return identifier.FromData(c.unsigned)
	default:
		return c.id
	}
}

// VerifyContractID - the core integrity check
//
// a mismatch means the document must not be trusted
func (c *Contract) VerifyContractID(expected identifier.Identifier) error {
	if expected.IsZero() {
		return fault.ContractIDMismatch
	}
	if expected != c.CalculateID() {
		return fault.ContractIDMismatch
	}
	return nil
}

// UpdateContents - regenerate the body from the contents
//
// signatures are released when the body changes
func (c *Contract) UpdateContents(contents Contents) error {
	if c.kind != contents.ContractKind() {
		return fault.ContractKindMismatch
	}
	unsigned, err := contents.UpdateContents()
	if nil != err {
		return err
	}
	if 0 == len(unsigned) {
		return fault.EmptyContent
	}
	if !bytes.Equal(unsigned, c.unsigned) {
		c.unsigned = unsigned
		c.signatures = nil
	}
	if identified, ok := contents.(Identified); ok && Assigned == c.mode {
		c.id = identified.ContractID()
	}
	return nil
}

// CreateContract - regenerate the body and sign it
func (c *Contract) CreateContract(contents Contents, signer Signer, reason string) error {
	c.signatures = nil
	if err := c.UpdateContents(contents); nil != err {
		return err
	}
	return c.SignContract(signer, reason)
}

// SignContract - append a signature made with the signer's signing key
func (c *Contract) SignContract(signer Signer, reason string) error {
	return c.SignWithRole(signer, RoleSign, reason)
}

// SignContractAuthent - append a signature made with the signer's
// authentication key
func (c *Contract) SignContractAuthent(signer Signer, reason string) error {
	return c.SignWithRole(signer, RoleAuth, reason)
}

// SignWithRole - append a signature of a specific role
func (c *Contract) SignWithRole(signer Signer, role SignatureRole, reason string) error {
	if 0 == len(c.unsigned) {
		return fault.EmptyContent
	}
	s, err := signer.SignContract(role, c.unsigned, reason)
	if nil != err {
		return err
	}
	s.Role = role
	c.signatures = append(c.signatures, s)
	return nil
}

// ReleaseSignatures - drop all signatures
func (c *Contract) ReleaseSignatures() {
	c.signatures = nil
}

// SignatureByRole - first signature of a role
func (c *Contract) SignatureByRole(role SignatureRole) (Signature, bool) {
	for _, s := range c.signatures {
		if role == s.Role {
			return s, true
		}
	}
	return Signature{}, false
}

// VerifyWithRole - check the first signature of a role
func (c *Contract) VerifyWithRole(verifier Verifier, role SignatureRole) error {
	s, ok := c.SignatureByRole(role)
	if !ok {
		return fault.SignatureRoleMissing
	}
	return verifier.VerifyContract(s, c.unsigned)
}

// VerifySignature - check that the nym signed the document
//
// succeeds if any signing or authentication signature attributed to
// the nym is valid
func (c *Contract) VerifySignature(verifier Verifier, nymID identifier.Identifier) error {
	if !c.IsSigned() {
		return fault.ContractNotSigned
	}
	err := error(fault.SignatureNotFound)
	for _, s := range c.signatures {
		if nymID != s.NymID {
			continue
		}
		if RoleSign != s.Role && RoleAuth != s.Role {
			continue
		}
		e := verifier.VerifyContract(s, c.unsigned)
		if nil == e {
			return nil
		}
		err = e
	}
	return err
}
