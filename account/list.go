// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"encoding/xml"
	"sort"
	"sync"

	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/storage"
)

const listSuffix = ".list"

// List - notary owned accounts of one type, one per instrument
// definition, created on first use
type List struct {
	sync.Mutex
	engine      *crypto.Engine
	folders     *storage.Folders
	accountType Type
	notaryID    identifier.Identifier
	serverNymID identifier.Identifier
	accounts    map[identifier.Identifier]identifier.Identifier
}

type listBody struct {
	XMLName  xml.Name        `xml:"accountList"`
	Type     string          `xml:"type,attr"`
	Accounts []listEntryBody `xml:"account"`
}

type listEntryBody struct {
	InstrumentID string `xml:"instrumentDefinitionID,attr"`
	AccountID    string `xml:"accountID,attr"`
}

// LoadList - restore or start a list
func LoadList(engine *crypto.Engine, folders *storage.Folders, accountType Type, notaryID identifier.Identifier, serverNymID identifier.Identifier) (*List, error) {
	if !accountType.IsInternal() {
		return nil, fault.InvalidAccountType
	}
	l := &List{
		engine:      engine,
		folders:     folders,
		accountType: accountType,
		notaryID:    notaryID,
		serverNymID: serverNymID,
		accounts:    make(map[identifier.Identifier]identifier.Identifier),
	}
	data, err := folders.Load(storage.Accounts, string(accountType)+listSuffix)
	if fault.FileNotFound == err {
		return l, nil
	} else if nil != err {
		return nil, err
	}
	body := listBody{}
	if err := xml.Unmarshal(data, &body); nil != err || body.Type != string(accountType) {
		return nil, fault.InvalidContents
	}
	for _, e := range body.Accounts {
		instrumentID, err := identifier.FromString(e.InstrumentID)
		if nil != err {
			return nil, err
		}
		accountID, err := identifier.FromString(e.AccountID)
		if nil != err {
			return nil, err
		}
		l.accounts[instrumentID] = accountID
	}
	return l, nil
}

// Count - number of accounts in the list
func (l *List) Count() int {
	l.Lock()
	defer l.Unlock()
	return len(l.accounts)
}

// GetOrRegisterAccount - the account for an instrument definition,
// created and saved if absent
func (l *List) GetOrRegisterAccount(server contract.Signer, instrumentID identifier.Identifier) (*Account, bool, error) {
	l.Lock()
	defer l.Unlock()

	if accountID, ok := l.accounts[instrumentID]; ok {
		a, err := LoadAccount(l.folders, accountID, l.notaryID)
		if nil != err {
			return nil, false, err
		}
		if a.InstrumentID != instrumentID || a.Type != l.accountType {
			return nil, false, fault.IdentifierMismatch
		}
		return a, false, nil
	}

	a, err := GenerateNewAccount(l.engine, l.folders, server, l.serverNymID, l.notaryID, instrumentID, l.accountType)
	if nil != err {
		return nil, false, err
	}
	l.accounts[instrumentID] = a.ID
	if err := l.save(); nil != err {
		delete(l.accounts, instrumentID)
		return nil, false, err
	}
	return a, true, nil
}

func (l *List) save() error {
	body := listBody{
		Type: string(l.accountType),
	}
	for instrumentID, accountID := range l.accounts {
		body.Accounts = append(body.Accounts, listEntryBody{
			InstrumentID: instrumentID.String(),
			AccountID:    accountID.String(),
		})
	}
	sort.Slice(body.Accounts, func(i, j int) bool {
		return body.Accounts[i].InstrumentID < body.Accounts[j].InstrumentID
	})
	data, err := xml.MarshalIndent(body, "", " ")
	if nil != err {
		return err
	}
	return l.folders.Save(data, storage.Accounts, string(l.accountType)+listSuffix)
}
