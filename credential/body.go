// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credential

import (
	"encoding/xml"

	"github.com/mr-tron/base58"

	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
)

type credentialBody struct {
	XMLName       xml.Name           `xml:"credential"`
	Version       int                `xml:"version,attr"`
	Kind          string             `xml:"kind,attr"`
	NymID         string             `xml:"nymID,attr"`
	MasterID      string             `xml:"masterID,attr,omitempty"`
	Source        string             `xml:"source"`
	Keys          []keyBody          `xml:"publicKey"`
	Claims        []claimBody        `xml:"claim"`
	Verifications []verificationBody `xml:"verification"`
}

type keyBody struct {
	Role    string `xml:"role,attr"`
	KeyType string `xml:"keyType,attr"`
	Value   string `xml:",chardata"`
}

type claimBody struct {
	Section string `xml:"section,attr"`
	Type    string `xml:"type,attr"`
	Value   string `xml:",chardata"`
}

type verificationBody struct {
	ClaimID string `xml:"claimID,attr"`
	Valid   bool   `xml:"valid,attr"`
	Start   int64  `xml:"start,attr"`
	End     int64  `xml:"end,attr"`
}

// ContractKind - for contract.Contents
func (c *Credential) ContractKind() contract.Kind {
	return contract.KindCredential
}

// UpdateContents - for contract.Contents
//
// the content is frozen once any signature exists
func (c *Credential) UpdateContents() ([]byte, error) {
	if Unsigned != c.state {
		return c.document.Unsigned(), nil
	}
	body := credentialBody{
		Version: contract.DocumentVersion,
		Kind:    string(c.kind),
		NymID:   c.nymID.String(),
		Source:  c.source.String(),
	}
	if KindMaster != c.kind {
		body.MasterID = c.masterID.String()
	}
	for _, role := range keypair.Roles {
		k := c.keys[role]
		if nil == k {
			continue
		}
		body.Keys = append(body.Keys, keyBody{
			Role:    role.String(),
			KeyType: k.KeyType().String(),
			Value:   base58.Encode(k.PublicKey()),
		})
	}
	for _, claim := range c.claims {
		body.Claims = append(body.Claims, claimBody{
			Section: claim.Section,
			Type:    claim.Type,
			Value:   claim.Value,
		})
	}
	for _, v := range c.verifications {
		body.Verifications = append(body.Verifications, verificationBody{
			ClaimID: v.ClaimID.String(),
			Valid:   v.Valid,
			Start:   v.Start,
			End:     v.End,
		})
	}
	return contract.MarshalBody(body)
}

// ParseContents - for contract.Contents
func (c *Credential) ParseContents(unsigned []byte) error {
	body := credentialBody{}
	if err := contract.UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := contract.CheckVersion(body.Version); nil != err {
		return err
	}

	kind := Kind(body.Kind)
	switch kind {
	case KindMaster, KindChild, KindContact, KindVerification:
	default:
		return fault.InvalidCredentialType
	}
	nymID, err := identifier.FromString(body.NymID)
	if nil != err {
		return err
	}
	masterID, err := identifier.FromString(body.MasterID)
	if nil != err {
		return err
	}
	if (KindMaster == kind) != masterID.IsZero() {
		return fault.InvalidContents
	}
	source, err := ParseSource(body.Source)
	if nil != err {
		return err
	}

	keys := make(map[keypair.Role]*keypair.Keypair)
	for _, kb := range body.Keys {
		role, err := keypair.RoleFromString(kb.Role)
		if nil != err {
			return err
		}
		keyType, err := crypto.KeyTypeFromString(kb.KeyType)
		if nil != err {
			return err
		}
		public, err := base58.Decode(kb.Value)
		if nil != err || 0 == len(public) {
			return fault.InvalidContents
		}
		if _, ok := keys[role]; ok {
			return fault.InvalidContents
		}
		keys[role] = keypair.NewPublic(c.engine, keyType, role, public)
	}
	if KindMaster == kind || KindChild == kind {
		if len(keypair.Roles) != len(keys) {
			return fault.InvalidContents
		}
	}

	claims := make([]Claim, 0, len(body.Claims))
	for _, cb := range body.Claims {
		claims = append(claims, Claim{
			Section: cb.Section,
			Type:    cb.Type,
			Value:   cb.Value,
		})
	}
	verifications := make([]Verification, 0, len(body.Verifications))
	for _, vb := range body.Verifications {
		claimID, err := identifier.FromString(vb.ClaimID)
		if nil != err {
			return err
		}
		verifications = append(verifications, Verification{
			ClaimID: claimID,
			Valid:   vb.Valid,
			Start:   vb.Start,
			End:     vb.End,
		})
	}

	c.kind = kind
	c.nymID = nymID
	c.masterID = masterID
	c.source = source
	c.keys = keys
	c.claims = claims
	c.verifications = verifications
	return nil
}
