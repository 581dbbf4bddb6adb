// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"bytes"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/storage"
)

type savedFile struct {
	folder  string
	name    string
	data    []byte
	existed bool
}

// snapshot - previous content of the files a notarization rewrites
//
// a failed save part way through a sequence puts every file back so
// that no account is left debited without its boxes
type snapshot struct {
	folders *storage.Folders
	files   []savedFile
}

func newSnapshot(folders *storage.Folders) *snapshot {
	return &snapshot{
		folders: folders,
	}
}

// add - remember a file before it is rewritten
func (s *snapshot) add(folder string, name string) error {
	data, err := s.folders.Load(folder, name)
	switch {
	case fault.FileNotFound == err:
		s.files = append(s.files, savedFile{folder: folder, name: name})
	case nil != err:
		return err
	default:
		s.files = append(s.files, savedFile{folder: folder, name: name, data: data, existed: true})
	}
	return nil
}

// restore - put back every remembered file that changed, the first
// error is returned
func (s *snapshot) restore() error {
	var first error
	for i := len(s.files) - 1; i >= 0; i -= 1 {
		f := s.files[i]
		current, err := s.folders.Load(f.folder, f.name)
		switch {
		case fault.FileNotFound == err && !f.existed:
			continue
		case nil == err && f.existed && bytes.Equal(current, f.data):
			continue
		}
		if f.existed {
			err = s.folders.Save(f.data, f.folder, f.name)
		} else {
			err = s.folders.Erase(f.folder, f.name)
		}
		if nil != err && nil == first {
			first = err
		}
	}
	return first
}
