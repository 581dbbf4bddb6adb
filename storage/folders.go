// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/util"
)

// folder names under the data directory
const (
	Accounts     = "accounts"
	Contracts    = "contracts"
	Credentials  = "credentials"
	Cron         = "cron"
	ExpiredBox   = "expiredbox"
	Inbox        = "inbox"
	Markets      = "markets"
	Nymbox       = "nymbox"
	Nyms         = "nyms"
	Outbox       = "outbox"
	PaymentInbox = "paymentinbox"
	Receipts     = "receipts"
	RecordBox    = "recordbox"
)

var allFolders = []string{
	Accounts,
	Contracts,
	Credentials,
	Cron,
	ExpiredBox,
	Inbox,
	Markets,
	Nymbox,
	Nyms,
	Outbox,
	PaymentInbox,
	Receipts,
	RecordBox,
}

const temporarySuffix = ".tmp"

// Folders - the file layout below one data directory
type Folders struct {
	dataDirectory string
}

// NewFolders - create the folder tree if necessary
func NewFolders(dataDirectory string) (*Folders, error) {
	dataDirectory, err := filepath.Abs(filepath.Clean(dataDirectory))
	if nil != err {
		return nil, err
	}
	for _, folder := range allFolders {
		if err := util.EnsureDirectory(filepath.Join(dataDirectory, folder)); nil != err {
			return nil, err
		}
	}
	return &Folders{
		dataDirectory: dataDirectory,
	}, nil
}

// DataDirectory - the root of the tree
func (f *Folders) DataDirectory() string {
	return f.dataDirectory
}

// Path - full path of a file
func (f *Folders) Path(folder string, names ...string) (string, error) {
	elements := make([]string, 0, len(names)+2)
	elements = append(elements, f.dataDirectory, folder)
	for _, n := range names {
		if !util.IsPlainName(n) || strings.HasPrefix(n, ".") {
			return "", fault.InvalidFileName
		}
		elements = append(elements, n)
	}
	return filepath.Join(elements...), nil
}

// Save - atomically replace the file contents
//
// data is written to a temporary file, flushed and then renamed
func (f *Folders) Save(data []byte, folder string, names ...string) error {
	path, err := f.Path(folder, names...)
	if nil != err {
		return err
	}
	if err := util.EnsureDirectory(filepath.Dir(path)); nil != err {
		return err
	}

	temporary := path + temporarySuffix
	fh, err := os.OpenFile(temporary, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if nil != err {
		return err
	}
	_, err = fh.Write(data)
	if nil == err {
		err = fh.Sync()
	}
	if closeErr := fh.Close(); nil == err {
		err = closeErr
	}
	if nil != err {
		_ = os.Remove(temporary)
		return err
	}
	return os.Rename(temporary, path)
}

// Load - read a whole file
func (f *Folders) Load(folder string, names ...string) ([]byte, error) {
	path, err := f.Path(folder, names...)
	if nil != err {
		return nil, err
	}
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fault.FileNotFound
	}
	return data, err
}

// Exists - true if the file is present
func (f *Folders) Exists(folder string, names ...string) bool {
	path, err := f.Path(folder, names...)
	if nil != err {
		return false
	}
	return util.EnsureFileExists(path)
}

// Erase - remove a file or an empty directory
func (f *Folders) Erase(folder string, names ...string) error {
	path, err := f.Path(folder, names...)
	if nil != err {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return fault.FileNotFound
	}
	return err
}

// List - sorted names of the entries of a directory
//
// temporary files from interrupted saves are skipped
func (f *Folders) List(folder string, names ...string) ([]string, error) {
	path, err := f.Path(folder, names...)
	if nil != err {
		return nil, err
	}
	infos, err := ioutil.ReadDir(path)
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if nil != err {
		return nil, err
	}
	result := make([]string, 0, len(infos))
	for _, info := range infos {
		if strings.HasSuffix(info.Name(), temporarySuffix) {
			continue
		}
		result = append(result, info.Name())
	}
	sort.Strings(result)
	return result, nil
}
