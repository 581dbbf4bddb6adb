// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"encoding/xml"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
)

// UnitType - what an instrument definition denominates
type UnitType string

// unit types
const (
	UnitCurrency UnitType = "currency"
	UnitShares   UnitType = "shares"
)

// AssetContract - an instrument definition issued by a nym
//
// its identifier is the digest of the signed raw file
type AssetContract struct {
	Contract    *Contract
	Name        string
	Symbol      string
	IssuerNymID identifier.Identifier
	NotaryID    identifier.Identifier
	Unit        UnitType
	Terms       string
}

type instrumentBody struct {
	XMLName     xml.Name `xml:"instrumentDefinition"`
	Version     int      `xml:"version,attr"`
	Name        string   `xml:"name,attr"`
	Symbol      string   `xml:"symbol,attr"`
	IssuerNymID string   `xml:"issuerNymID,attr"`
	NotaryID    string   `xml:"notaryID,attr"`
	Unit        string   `xml:"unitType,attr"`
	Terms       string   `xml:"terms"`
}

// NewAssetContract - empty instrument definition
func NewAssetContract() *AssetContract {
	return &AssetContract{
		Contract: New(KindInstrumentDefinition, HashOfRawFile),
	}
}

// ContractKind - for Contents
func (a *AssetContract) ContractKind() Kind {
	return KindInstrumentDefinition
}

// UpdateContents - for Contents
func (a *AssetContract) UpdateContents() ([]byte, error) {
	switch a.Unit {
	case UnitCurrency, UnitShares:
	default:
		return nil, fault.InvalidContents
	}
	return MarshalBody(instrumentBody{
		Version:     DocumentVersion,
		Name:        a.Name,
		Symbol:      a.Symbol,
		IssuerNymID: a.IssuerNymID.String(),
		NotaryID:    a.NotaryID.String(),
		Unit:        string(a.Unit),
		Terms:       a.Terms,
	})
}

// ParseContents - for Contents
func (a *AssetContract) ParseContents(unsigned []byte) error {
	body := instrumentBody{}
	if err := UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := CheckVersion(body.Version); nil != err {
		return err
	}
	issuer, err := identifier.FromString(body.IssuerNymID)
	if nil != err {
		return err
	}
	notary, err := identifier.FromString(body.NotaryID)
	if nil != err {
		return err
	}
	switch UnitType(body.Unit) {
	case UnitCurrency, UnitShares:
	default:
		return fault.InvalidContents
	}
	a.Name = body.Name
	a.Symbol = body.Symbol
	a.IssuerNymID = issuer
	a.NotaryID = notary
	a.Unit = UnitType(body.Unit)
	a.Terms = body.Terms
	return nil
}

// InstrumentDefinitionID - the identifier of the definition
func (a *AssetContract) InstrumentDefinitionID() identifier.Identifier {
	return a.Contract.CalculateID()
}

// Create - fill the body and sign with the issuer
func (a *AssetContract) Create(issuer Signer) error {
	return a.Contract.CreateContract(a, issuer, "sign instrument definition")
}

// ParseAssetContract - parse, verify identifier and issuer signature
func ParseAssetContract(raw []byte, expected identifier.Identifier, issuer Verifier) (*AssetContract, error) {
	a := &AssetContract{}
	c, err := ParseAndVerify(raw, HashOfRawFile, a, expected)
	if nil != err {
		return nil, err
	}
	a.Contract = c
	if nil != issuer {
		if err := c.VerifySignature(issuer, a.IssuerNymID); nil != err {
			return nil, err
		}
	}
	return a, nil
}
