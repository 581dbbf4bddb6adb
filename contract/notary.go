// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"encoding/xml"

	"github.com/mr-tron/base58"

	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
)

// ServerContract - the public identity of a notary
//
// the contract embeds the notary signing key so that it can verify
// its own signature without any other document; the notary ID is the
// digest of the signed raw file
type ServerContract struct {
	Contract     *Contract
	Name         string
	NymID        identifier.Identifier
	Host         string
	Port         int
	KeyType      crypto.KeyType
	SigningKey   []byte
	CredentialID identifier.Identifier
	Terms        string
}

type notaryBody struct {
	XMLName    xml.Name      `xml:"notaryContract"`
	Version    int           `xml:"version,attr"`
	Name       string        `xml:"name,attr"`
	NymID      string        `xml:"nymID,attr"`
	Host       string        `xml:"transport>host"`
	Port       int           `xml:"transport>port"`
	SigningKey notaryKeyBody `xml:"signingKey"`
	Terms      string        `xml:"terms"`
}

type notaryKeyBody struct {
	KeyType      string `xml:"keyType,attr"`
	CredentialID string `xml:"credentialID,attr"`
	Value        string `xml:",chardata"`
}

// NewServerContract - empty notary contract
func NewServerContract() *ServerContract {
	return &ServerContract{
		Contract: New(KindNotary, HashOfRawFile),
	}
}

// ContractKind - for Contents
func (s *ServerContract) ContractKind() Kind {
	return KindNotary
}

// UpdateContents - for Contents
func (s *ServerContract) UpdateContents() ([]byte, error) {
	body := notaryBody{
		Version: DocumentVersion,
		Name:    s.Name,
		NymID:   s.NymID.String(),
		Host:    s.Host,
		Port:    s.Port,
		SigningKey: notaryKeyBody{
			KeyType:      s.KeyType.String(),
			CredentialID: s.CredentialID.String(),
			Value:        base58.Encode(s.SigningKey),
		},
		Terms: s.Terms,
	}
	return MarshalBody(body)
}

// ParseContents - for Contents
func (s *ServerContract) ParseContents(unsigned []byte) error {
	body := notaryBody{}
	if err := UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := CheckVersion(body.Version); nil != err {
		return err
	}
	nymID, err := identifier.FromString(body.NymID)
	if nil != err {
		return err
	}
	credentialID, err := identifier.FromString(body.SigningKey.CredentialID)
	if nil != err {
		return err
	}
	keyType, err := crypto.KeyTypeFromString(body.SigningKey.KeyType)
	if nil != err {
		return err
	}
	key, err := base58.Decode(body.SigningKey.Value)
	if nil != err || 0 == len(key) {
		return fault.InvalidContents
	}
	s.Name = body.Name
	s.NymID = nymID
	s.Host = body.Host
	s.Port = body.Port
	s.KeyType = keyType
	s.SigningKey = key
	s.CredentialID = credentialID
	s.Terms = body.Terms
	return nil
}

// NotaryID - the identifier of the notary
func (s *ServerContract) NotaryID() identifier.Identifier {
	return s.Contract.CalculateID()
}

// Create - fill the body and sign with the notary nym
func (s *ServerContract) Create(signer Signer) error {
	return s.Contract.CreateContract(s, signer, "sign notary contract")
}

// VerifySelf - check the signature with the embedded key
func (s *ServerContract) VerifySelf(engine *crypto.Engine) error {
	return s.Contract.VerifySignature(s.Verifier(engine), s.NymID)
}

// Verifier - checks anything the notary nym signs, using only the
// embedded key
func (s *ServerContract) Verifier(engine *crypto.Engine) Verifier {
	return &embeddedKey{
		nymID:        s.NymID,
		credentialID: s.CredentialID,
		key:          keypair.NewPublic(engine, s.KeyType, keypair.Signing, s.SigningKey),
	}
}

// ParseServerContract - parse and verify identifier and signature
func ParseServerContract(engine *crypto.Engine, raw []byte, expected identifier.Identifier) (*ServerContract, error) {
	s := &ServerContract{}
	c, err := ParseAndVerify(raw, HashOfRawFile, s, expected)
	if nil != err {
		return nil, err
	}
	s.Contract = c
	if err := s.VerifySelf(engine); nil != err {
		return nil, err
	}
	return s, nil
}

// verification with a single known public key
type embeddedKey struct {
	nymID        identifier.Identifier
	credentialID identifier.Identifier
	key          *keypair.Keypair
}

func (e *embeddedKey) VerifyContract(signature Signature, data []byte) error {
	if e.nymID != signature.NymID || e.credentialID != signature.CredentialID {
		return fault.InvalidSignature
	}
	if !e.key.Verify(data, signature.Data) {
		return fault.InvalidSignature
	}
	return nil
}
