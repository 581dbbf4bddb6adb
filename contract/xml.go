// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"encoding/xml"

	"github.com/wigggles/opentxs-sub024/fault"
)

// DocumentVersion - the body format written by this package
const DocumentVersion = 1

// MarshalBody - deterministic indented XML for a body
func MarshalBody(v interface{}) ([]byte, error) {
	b, err := xml.MarshalIndent(v, "", " ")
	if nil != err {
		return nil, err
	}
	return append(b, '\n'), nil
}

// UnmarshalBody - reverse of MarshalBody
func UnmarshalBody(unsigned []byte, v interface{}) error {
	if 0 == len(unsigned) {
		return fault.EmptyContent
	}
	if err := xml.Unmarshal(unsigned, v); nil != err {
		return fault.InvalidContents
	}
	return nil
}

// CheckVersion - reject bodies written by a newer format
func CheckVersion(version int) error {
	if version < 1 || version > DocumentVersion {
		return fault.UnsupportedVersion
	}
	return nil
}
