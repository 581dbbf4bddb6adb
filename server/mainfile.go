// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"encoding/xml"

	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/identifier"
)

const mainFileName = "notaryServer.xml"

// MainFile - the persisted identity of the notary
//
// it names the notary contract and nym and holds the serialized
// master key protecting the notary's private keys
type MainFile struct {
	Contract  *contract.Contract
	NotaryID  identifier.Identifier
	NymID     identifier.Identifier
	CachedKey string
}

type mainFileBody struct {
	XMLName   xml.Name `xml:"notaryServer"`
	Version   int      `xml:"version,attr"`
	NotaryID  string   `xml:"notaryID,attr"`
	NymID     string   `xml:"serverNymID,attr"`
	CachedKey string   `xml:"cachedKey"`
}

func newMainFile() *MainFile {
	return &MainFile{
		Contract: contract.New(contract.KindMainFile, contract.HashOfContents),
	}
}

// ContractKind - for contract.Contents
func (m *MainFile) ContractKind() contract.Kind {
	return contract.KindMainFile
}

// UpdateContents - for contract.Contents
func (m *MainFile) UpdateContents() ([]byte, error) {
	return contract.MarshalBody(mainFileBody{
		Version:   contract.DocumentVersion,
		NotaryID:  m.NotaryID.String(),
		NymID:     m.NymID.String(),
		CachedKey: m.CachedKey,
	})
}

// ParseContents - for contract.Contents
func (m *MainFile) ParseContents(unsigned []byte) error {
	body := mainFileBody{}
	if err := contract.UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := contract.CheckVersion(body.Version); nil != err {
		return err
	}
	notaryID, err := identifier.FromString(body.NotaryID)
	if nil != err {
		return err
	}
	nymID, err := identifier.FromString(body.NymID)
	if nil != err {
		return err
	}
	m.NotaryID = notaryID
	m.NymID = nymID
	m.CachedKey = body.CachedKey
	return nil
}

func parseMainFile(raw []byte) (*MainFile, error) {
	m := &MainFile{}
	c, err := contract.Parse(raw, contract.HashOfContents, m)
	if nil != err {
		return nil, err
	}
	m.Contract = c
	return m, nil
}
