// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"bytes"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/storage"
)

// Parse - raw file into a contract and its contents
//
// the kind must match the contents and the body must parse; the
// identifier is not checked, see LoadContract
func Parse(raw []byte, mode IDMode, contents Contents) (*Contract, error) {
	c, err := ParseRawFile(raw, mode)
	if nil != err {
		return nil, err
	}
	if c.kind != contents.ContractKind() {
		return nil, fault.ContractKindMismatch
	}
	if err := contents.ParseContents(c.unsigned); nil != err {
		return nil, err
	}
	if identified, ok := contents.(Identified); ok && Assigned == mode {
		c.id = identified.ContractID()
	}
	return c, nil
}

// ParseAndVerify - Parse followed by VerifyContractID
func ParseAndVerify(raw []byte, mode IDMode, contents Contents, expected identifier.Identifier) (*Contract, error) {
	c, err := Parse(raw, mode, contents)
	if nil != err {
		return nil, err
	}
	if err := c.VerifyContractID(expected); nil != err {
		return nil, err
	}
	return c, nil
}

// LoadContract - read a raw file, parse it and verify its identifier
//
// an identifier mismatch is an integrity failure; the caller must
// treat the document as corrupt
func LoadContract(folders *storage.Folders, expected identifier.Identifier, mode IDMode, contents Contents, folder string, names ...string) (*Contract, error) {
	raw, err := folders.Load(folder, names...)
	if nil != err {
		return nil, err
	}
	return ParseAndVerify(raw, mode, contents, expected)
}

// SaveContract - write the raw file
//
// the file is read back and compared; a mismatch is unrecoverable
func (c *Contract) SaveContract(folders *storage.Folders, folder string, names ...string) error {
	if !c.IsSigned() {
		return fault.ContractNotSigned
	}
	raw := c.RawFile()
	if err := folders.Save(raw, folder, names...); nil != err {
		return err
	}
	check, err := folders.Load(folder, names...)
	if nil != err || !bytes.Equal(raw, check) {
		fault.Panicf("contract: %s: reload of saved file failed: %v", c.kind, err)
	}
	return nil
}
