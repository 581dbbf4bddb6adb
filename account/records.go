// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"encoding/xml"
	"sort"
	"sync"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/storage"
)

const recordSuffix = ".a"

// Records - per instrument definition index of the accounts held
// at the notary
type Records struct {
	sync.Mutex
	folders *storage.Folders
}

// Record - one indexed account
type Record struct {
	AccountID identifier.Identifier
	NymID     identifier.Identifier
}

type recordsBody struct {
	XMLName      xml.Name     `xml:"accountRecords"`
	InstrumentID string       `xml:"instrumentDefinitionID,attr"`
	Accounts     []recordBody `xml:"account"`
}

type recordBody struct {
	AccountID string `xml:"accountID,attr"`
	NymID     string `xml:"nymID,attr"`
}

// NewRecords - index stored in the accounts folder
func NewRecords(folders *storage.Folders) *Records {
	return &Records{
		folders: folders,
	}
}

// AddAccountRecord - index an account, adding twice is harmless
func (r *Records) AddAccountRecord(a *Account) error {
	r.Lock()
	defer r.Unlock()

	records, err := r.load(a.InstrumentID)
	if nil != err {
		return err
	}
	records[a.ID] = a.NymID
	return r.save(a.InstrumentID, records)
}

// EraseAccountRecord - remove an account from the index
func (r *Records) EraseAccountRecord(instrumentID identifier.Identifier, accountID identifier.Identifier) error {
	r.Lock()
	defer r.Unlock()

	records, err := r.load(instrumentID)
	if nil != err {
		return err
	}
	if _, ok := records[accountID]; !ok {
		return fault.AccountRecordNotFound
	}
	delete(records, accountID)
	return r.save(instrumentID, records)
}

// VisitAccountRecords - call the visitor for each indexed account in
// ascending account ID order, stopping at the first error
func (r *Records) VisitAccountRecords(instrumentID identifier.Identifier, visitor func(Record) error) error {
	r.Lock()
	records, err := r.load(instrumentID)
	r.Unlock()
	if nil != err {
		return err
	}
	for _, record := range sortRecords(records) {
		if err := visitor(record); nil != err {
			return err
		}
	}
	return nil
}

func (r *Records) load(instrumentID identifier.Identifier) (map[identifier.Identifier]identifier.Identifier, error) {
	records := make(map[identifier.Identifier]identifier.Identifier)
	data, err := r.folders.Load(storage.Accounts, instrumentID.String()+recordSuffix)
	if fault.FileNotFound == err {
		return records, nil
	} else if nil != err {
		return nil, err
	}

	body := recordsBody{}
	if err := xml.Unmarshal(data, &body); nil != err {
		return nil, fault.InvalidContents
	}
	if body.InstrumentID != instrumentID.String() {
		return nil, fault.IdentifierMismatch
	}
	for _, rb := range body.Accounts {
		accountID, err := identifier.FromString(rb.AccountID)
		if nil != err {
			return nil, err
		}
		nymID, err := identifier.FromString(rb.NymID)
		if nil != err {
			return nil, err
		}
		records[accountID] = nymID
	}
	return records, nil
}

func (r *Records) save(instrumentID identifier.Identifier, records map[identifier.Identifier]identifier.Identifier) error {
	body := recordsBody{
		InstrumentID: instrumentID.String(),
	}
	for _, record := range sortRecords(records) {
		body.Accounts = append(body.Accounts, recordBody{
			AccountID: record.AccountID.String(),
			NymID:     record.NymID.String(),
		})
	}
	data, err := xml.MarshalIndent(body, "", " ")
	if nil != err {
		return err
	}
	return r.folders.Save(data, storage.Accounts, instrumentID.String()+recordSuffix)
}

func sortRecords(records map[identifier.Identifier]identifier.Identifier) []Record {
	result := make([]Record, 0, len(records))
	for accountID, nymID := range records {
		result = append(result, Record{AccountID: accountID, NymID: nymID})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AccountID.Compare(result[j].AccountID) < 0
	})
	return result
}
