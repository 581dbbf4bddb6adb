// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"bytes"
	"strings"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
)

const (
	markerDashes     = "-----"
	beginSigned      = "-----BEGIN SIGNED "
	endSigned        = "-----END SIGNED "
	signatureSuffix  = " SIGNATURE"
	hashHeader       = "Hash"
	hashHeaderValue  = "SHA3-256"
	headerCredential = "Credential"
	headerNym        = "Nym"
	headerRole       = "Role"
)

// escape body lines that could be mistaken for markers
func escape(body []byte) []byte {
	lines := bytes.Split(body, []byte("\n"))
	for i, line := range lines {
		if bytes.HasPrefix(line, []byte("-")) {
			lines[i] = append([]byte("- "), line...)
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

func unescape(body []byte) []byte {
	lines := bytes.Split(body, []byte("\n"))
	for i, line := range lines {
		if bytes.HasPrefix(line, []byte("- ")) {
			lines[i] = line[2:]
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

// RawFile - the complete signed document
func (c *Contract) RawFile() []byte {
	buffer := bytes.Buffer{}
	buffer.WriteString(beginSigned + string(c.kind) + markerDashes + "\n")
	buffer.WriteString(hashHeader + ": " + hashHeaderValue + "\n")
	buffer.WriteString("\n")
	buffer.Write(escape(c.unsigned))
	buffer.WriteString("\n")

	for _, s := range c.signatures {
		headers := map[string]string{
			headerRole: string(s.Role),
			headerNym:  s.NymID.String(),
		}
		if !s.CredentialID.IsZero() {
			headers[headerCredential] = s.CredentialID.String()
		}
		buffer.WriteString(armor.Encode(string(c.kind)+signatureSuffix, headers, s.Data))
	}
	buffer.WriteString(endSigned + string(c.kind) + markerDashes + "\n")
	return buffer.Bytes()
}

// ParseRawFile - split a raw file into body and signatures
func ParseRawFile(raw []byte, mode IDMode) (*Contract, error) {
	text := strings.Replace(string(raw), "\r\n", "\n", -1)

	// begin marker
	n := strings.Index(text, "\n")
	if n < 0 {
		return nil, fault.InvalidRawFile
	}
	first := text[:n]
	if !strings.HasPrefix(first, beginSigned) || !strings.HasSuffix(first, markerDashes) {
		return nil, fault.InvalidRawFile
	}
	kind := Kind(strings.TrimSuffix(strings.TrimPrefix(first, beginSigned), markerDashes))
	if "" == kind {
		return nil, fault.InvalidRawFile
	}
	text = text[n+1:]

	// headers up to a blank line
	hashSeen := false
	for {
		n = strings.Index(text, "\n")
		if n < 0 {
			return nil, fault.InvalidRawFile
		}
		line := text[:n]
		text = text[n+1:]
		if "" == line {
			break
		}
		kv := strings.SplitN(line, ":", 2)
		if 2 != len(kv) {
			return nil, fault.InvalidRawFile
		}
		if hashHeader == strings.TrimSpace(kv[0]) {
			if hashHeaderValue != strings.TrimSpace(kv[1]) {
				return nil, fault.UnsupportedHashType
			}
			hashSeen = true
		}
	}
	if !hashSeen {
		return nil, fault.InvalidRawFile
	}

	// body ends at the first marker line
	end := 0
	for {
		if strings.HasPrefix(text[end:], markerDashes) {
			break
		}
		n = strings.Index(text[end:], "\n")
		if n < 0 {
			return nil, fault.InvalidRawFile
		}
		end += n + 1
	}
	if 0 == end {
		return nil, fault.InvalidRawFile
	}
	body := text[:end-1] // remove separator newline
	text = text[end:]

	c := &Contract{
		kind:     kind,
		mode:     mode,
		unsigned: unescape([]byte(body)),
	}

	// signatures then the end marker
	trailer := endSigned + string(kind) + markerDashes
	for !strings.HasPrefix(text, trailer) {
		b, rest, err := armor.Decode(text)
		if nil != err {
			return nil, fault.InvalidRawFile
		}
		if string(kind)+signatureSuffix != b.Label {
			return nil, fault.InvalidRawFile
		}
		s := Signature{
			Role: SignatureRole(b.Headers[headerRole]),
			Data: b.Data,
		}
		if s.NymID, err = identifier.FromString(b.Headers[headerNym]); nil != err {
			return nil, err
		}
		if s.CredentialID, err = identifier.FromString(b.Headers[headerCredential]); nil != err {
			return nil, err
		}
		c.signatures = append(c.signatures, s)
		text = rest
	}
	if "" != strings.TrimSpace(strings.TrimPrefix(text, trailer)) {
		return nil, fault.InvalidRawFile
	}
	return c, nil
}
