// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credential

import (
	"strings"

	"github.com/mr-tron/base58"

	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
)

// SourceType - how a nym ID is rooted
type SourceType string

// source types
const (
	SourcePubKey SourceType = "pubkey"
	SourceURL    SourceType = "url"
)

// Source - the root of a nym identity
type Source struct {
	Type      SourceType
	KeyType   crypto.KeyType
	PublicKey []byte
	URL       string
}

// URLVerifier - confirms that a URL source vouches for a master
// credential
type URLVerifier interface {
	VerifyURLSource(url string, masterID identifier.Identifier) error
}

// PubKeySource - source rooted in the master signing key
func PubKeySource(keyType crypto.KeyType, publicKey []byte) Source {
	return Source{
		Type:      SourcePubKey,
		KeyType:   keyType,
		PublicKey: append([]byte{}, publicKey...),
	}
}

// URLSource - source rooted in an external URL
func URLSource(url string) Source {
	return Source{
		Type: SourceURL,
		URL:  url,
	}
}

// String - canonical text form, the nym ID is its digest
func (s Source) String() string {
	switch s.Type {
	case SourcePubKey:
		return string(SourcePubKey) + ":" + s.KeyType.String() + ":" + base58.Encode(s.PublicKey)
	case SourceURL:
		return string(SourceURL) + ":" + s.URL
	default:
		return ""
	}
}

// NymID - the identifier derived from the source
func (s Source) NymID() identifier.Identifier {
	return identifier.FromData([]byte(s.String()))
}

// IsValid - structurally complete
func (s Source) IsValid() bool {
	switch s.Type {
	case SourcePubKey:
		return crypto.KeyNone != s.KeyType && 0 != len(s.PublicKey)
	case SourceURL:
		return "" != s.URL
	default:
		return false
	}
}

// ParseSource - reverse of String
func ParseSource(text string) (Source, error) {
	parts := strings.SplitN(text, ":", 2)
	if 2 != len(parts) {
		return Source{}, fault.InvalidSource
	}
	switch SourceType(parts[0]) {
	case SourcePubKey:
		kv := strings.SplitN(parts[1], ":", 2)
		if 2 != len(kv) {
			return Source{}, fault.InvalidSource
		}
		keyType, err := crypto.KeyTypeFromString(kv[0])
		if nil != err {
			return Source{}, fault.InvalidSource
		}
		key, err := base58.Decode(kv[1])
		if nil != err || 0 == len(key) {
			return Source{}, fault.InvalidSource
		}
		return PubKeySource(keyType, key), nil
	case SourceURL:
		if "" == parts[1] {
			return Source{}, fault.InvalidSource
		}
		return URLSource(parts[1]), nil
	default:
		return Source{}, fault.InvalidSource
	}
}
