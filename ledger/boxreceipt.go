// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"strconv"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/storage"
)

const (
	receiptDirectorySuffix = ".r"
	receiptFileSuffix      = ".rct"
)

func (l *Ledger) receiptPath(number int64) (string, string, string, error) {
	folder, err := l.Type.Folder()
	if nil != err {
		return "", "", "", err
	}
	return folder, l.AccountID.String() + receiptDirectorySuffix, strconv.FormatInt(number, 10) + receiptFileSuffix, nil
}

// SaveBoxReceipt - store the full form of a boxed transaction
func (l *Ledger) SaveBoxReceipt(folders *storage.Folders, t *Transaction) error {
	if nil == t {
		return fault.TransactionNotFound
	}
	folder, directory, file, err := l.receiptPath(t.Number)
	if nil != err {
		return err
	}
	return t.Contract.SaveContract(folders, folder, directory, file)
}

// LoadBoxReceipt - read the full form of an entry and check it
// against the receipt hash
func (l *Ledger) LoadBoxReceipt(folders *storage.Folders, number int64) (*Transaction, error) {
	if t, ok := l.full[number]; ok {
		return t, nil
	}
	if _, ok := l.entries[number]; !ok {
		return nil, fault.TransactionNotFound
	}
	folder, directory, file, err := l.receiptPath(number)
	if nil != err {
		return nil, err
	}
	raw, err := folders.Load(folder, directory, file)
	if fault.FileNotFound == err {
		return nil, fault.BoxReceiptNotFound
	} else if nil != err {
		return nil, err
	}
	t, err := ParseTransaction(raw)
	if nil != err {
		return nil, err
	}
	if err := l.VerifyBoxReceipt(t); nil != err {
		return nil, err
	}
	l.full[number] = t
	return t, nil
}

// LoadBoxReceipts - full forms of every entry
func (l *Ledger) LoadBoxReceipts(folders *storage.Folders) error {
	for _, e := range l.Entries() {
		if _, err := l.LoadBoxReceipt(folders, e.Number); nil != err {
			return err
		}
	}
	return nil
}

// VerifyBoxReceipt - the full transaction matches its entry
func (l *Ledger) VerifyBoxReceipt(t *Transaction) error {
	e, ok := l.entries[t.Number]
	if !ok {
		return fault.TransactionNotFound
	}
	if e.ReceiptHash != t.ReceiptHash() || e.Type != t.Type || e.InReferenceTo != t.InReferenceTo {
		return fault.BoxReceiptHashMismatch
	}
	return nil
}

// DeleteBoxReceipt - remove the full form of a transaction
func (l *Ledger) DeleteBoxReceipt(folders *storage.Folders, number int64) error {
	folder, directory, file, err := l.receiptPath(number)
	if nil != err {
		return err
	}
	return folders.Erase(folder, directory, file)
}
