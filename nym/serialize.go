// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nym

import (
	"encoding/xml"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/credential"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/storage"
)

const privateSuffix = ".private"

// PublicBundle - armored public form, as sent to a notary
func (n *Nym) PublicBundle() (string, error) {
	return n.bundle(false)
}

// PrivateBundle - armored form including encrypted private keys
func (n *Nym) PrivateBundle() (string, error) {
	if nil == n.masterKey {
		return "", fault.MissingPrivateKey
	}
	return n.bundle(true)
}

func (n *Nym) bundle(private bool) (string, error) {
	n.RLock()
	defer n.RUnlock()

	body := nymBody{
		Version: contract.DocumentVersion,
		NymID:   n.id.String(),
		Alias:   n.alias,
		Source:  n.source.String(),
	}
	for _, s := range n.sortedSets() {
		var data []byte
		var err error
		if private {
			data, err = s.PrivateSerialize()
		} else {
			data, err = s.PublicSerialize()
		}
		if nil != err {
			return "", err
		}
		body.Sets = append(body.Sets, armor.EncodeData(armor.LabelPayload, data))
	}
	b, err := xml.MarshalIndent(body, "", " ")
	if nil != err {
		return "", err
	}
	label := armor.LabelNym
	if private {
		label = armor.LabelPrivateNym
	}
	return armor.Encode(label, map[string]string{headerNym: n.id.String()}, b), nil
}

// ParsePublic - nym from its public bundle
//
// the result is verified; a URL sourced nym needs a verifier
func ParsePublic(engine *crypto.Engine, bundle string, urlVerifier credential.URLVerifier) (*Nym, error) {
	return parse(engine, bundle, armor.LabelNym, nil, urlVerifier)
}

// ParsePrivate - nym from its private bundle, keys protected by
// masterKey
func ParsePrivate(engine *crypto.Engine, bundle string, masterKey *keypair.CachedKey, urlVerifier credential.URLVerifier) (*Nym, error) {
	if nil == masterKey {
		return nil, fault.MissingParameters
	}
	return parse(engine, bundle, armor.LabelPrivateNym, masterKey, urlVerifier)
}

func parse(engine *crypto.Engine, bundle string, label string, masterKey *keypair.CachedKey, urlVerifier credential.URLVerifier) (*Nym, error) {
	data, err := armor.DecodeData(bundle, label)
	if nil != err {
		return nil, err
	}
	body := nymBody{}
	if err := xml.Unmarshal(data, &body); nil != err {
		return nil, fault.InvalidContents
	}
	if err := contract.CheckVersion(body.Version); nil != err {
		return nil, err
	}
	id, err := identifier.FromString(body.NymID)
	if nil != err {
		return nil, err
	}
	source, err := credential.ParseSource(body.Source)
	if nil != err {
		return nil, err
	}

	n := &Nym{
		engine:    engine,
		id:        id,
		source:    source,
		alias:     body.Alias,
		sets:      make(map[identifier.Identifier]*credential.Set),
		masterKey: masterKey,
	}
	for _, armored := range body.Sets {
		setData, err := armor.DecodeData(armored, armor.LabelPayload)
		if nil != err {
			return nil, err
		}
		s, err := credential.ParseSet(engine, setData, masterKey)
		if nil != err {
			return nil, err
		}
		n.sets[s.MasterID()] = s
	}
	if err := n.VerifyPseudonym(urlVerifier); nil != err {
		return nil, err
	}
	return n, nil
}

// SavePublic - store the public bundle and its credentials
func (n *Nym) SavePublic(folders *storage.Folders) error {
	for _, s := range n.Sets() {
		if err := s.Persist(folders); nil != err {
			return err
		}
	}
	bundle, err := n.PublicBundle()
	if nil != err {
		return err
	}
	return folders.Save([]byte(bundle), storage.Nyms, n.id.String())
}

// LoadPublic - read and verify a stored public nym
func LoadPublic(engine *crypto.Engine, folders *storage.Folders, id identifier.Identifier, urlVerifier credential.URLVerifier) (*Nym, error) {
	data, err := folders.Load(storage.Nyms, id.String())
	if nil != err {
		return nil, err
	}
	n, err := ParsePublic(engine, string(data), urlVerifier)
	if nil != err {
		return nil, err
	}
	if n.id != id {
		return nil, fault.IdentifierMismatch
	}
	return n, nil
}

// SavePrivate - store the private bundle next to the public one
func (n *Nym) SavePrivate(folders *storage.Folders) error {
	bundle, err := n.PrivateBundle()
	if nil != err {
		return err
	}
	if err := n.SavePublic(folders); nil != err {
		return err
	}
	return folders.Save([]byte(bundle), storage.Nyms, n.id.String()+privateSuffix)
}

// LoadPrivate - read a stored private nym
func LoadPrivate(engine *crypto.Engine, folders *storage.Folders, id identifier.Identifier, masterKey *keypair.CachedKey, urlVerifier credential.URLVerifier) (*Nym, error) {
	data, err := folders.Load(storage.Nyms, id.String()+privateSuffix)
	if nil != err {
		return nil, err
	}
	n, err := ParsePrivate(engine, string(data), masterKey, urlVerifier)
	if nil != err {
		return nil, err
	}
	if n.id != id {
		return nil, fault.IdentifierMismatch
	}
	return n, nil
}
