// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package armor - ASCII armoring of binary payloads
//
//   -----BEGIN <LABEL>-----
//   Key: Value
//
//   base64 (64 columns)
//   -----END <LABEL>-----
package armor

import (
	"bytes"
	"encoding/pem"
	"strings"

	"github.com/wigggles/opentxs-sub024/fault"
)

// well known labels
const (
	LabelEnvelope     = "OT ENVELOPE"
	LabelPrivateKey   = "OT ENCRYPTED PRIVATE KEY"
	LabelMasterKey    = "OT MASTER KEY"
	LabelMessage      = "OT MESSAGE"
	LabelPayload      = "OT ARMORED PAYLOAD"
	LabelNym          = "OT NYM"
	LabelPrivateNym   = "OT PRIVATE NYM"
	LabelCronItem     = "OT CRON ITEM"
	LabelInstrument   = "OT INSTRUMENT"
	LabelReference    = "OT REFERENCE"
	LabelContract     = "OT NOTARY CONTRACT"
)

// Block - one armored item
type Block struct {
	Label   string
	Headers map[string]string
	Data    []byte
}

// Encode - produce armored text
func Encode(label string, headers map[string]string, data []byte) string {
	b := &pem.Block{
		Type:    label,
		Headers: headers,
		Bytes:   data,
	}
	return string(pem.EncodeToMemory(b))
}

// EncodeData - armor without headers
func EncodeData(label string, data []byte) string {
	return Encode(label, nil, data)
}

// Decode - parse the first armored block in the text
//
// returns the remaining text after the block
func Decode(text string) (*Block, string, error) {
	b, rest := pem.Decode([]byte(text))
	if nil == b {
		return nil, text, fault.CannotDecodeArmor
	}
	return &Block{
		Label:   b.Type,
		Headers: b.Headers,
		Data:    b.Bytes,
	}, string(rest), nil
}

// DecodeLabel - parse a single block which must carry the given label
func DecodeLabel(text string, label string) (*Block, error) {
	b, _, err := Decode(text)
	if nil != err {
		return nil, err
	}
	if label != b.Label {
		return nil, fault.CannotDecodeArmor
	}
	return b, nil
}

// DecodeData - the payload of a single block with the given label
func DecodeData(text string, label string) ([]byte, error) {
	b, err := DecodeLabel(text, label)
	if nil != err {
		return nil, err
	}
	return b.Data, nil
}

// IsArmored - quick check for the begin marker
func IsArmored(text string) bool {
	return strings.HasPrefix(strings.TrimLeft(text, " \t\r\n"), "-----BEGIN ")
}

// Compact - single line form for embedding in XML attributes
//
// the armor lines are joined with '|' so that they survive
// attribute value normalisation
func Compact(text string) string {
	return strings.Replace(strings.TrimRight(text, "\n"), "\n", "|", -1)
}

// Expand - reverse of Compact
func Expand(compact string) string {
	if "" == compact {
		return ""
	}
	var buffer bytes.Buffer
	buffer.WriteString(strings.Replace(compact, "|", "\n", -1))
	buffer.WriteByte('\n')
	return buffer.String()
}
