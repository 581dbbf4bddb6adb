// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identifier_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
)

func TestFromData(t *testing.T) {
	id1 := identifier.FromData([]byte("hello"))
	id2 := identifier.FromData([]byte("hello"))
	id3 := identifier.FromData([]byte("Hello"))

	assert.Equal(t, id1, id2, "not deterministic")
	assert.NotEqual(t, id1, id3, "collision")
	assert.False(t, id1.IsZero(), "zero")
	assert.True(t, identifier.Zero.IsZero(), "zero is not zero")
}

func TestTextRoundTrip(t *testing.T) {
	id := identifier.FromData([]byte("round trip"))

	s := id.String()
	assert.NotEqual(t, "", s, "empty text")

	back, err := identifier.FromString(s)
	assert.Nil(t, err, "parse")
	assert.Equal(t, id, back, "round trip")

	assert.Equal(t, "<identifier:"+s+">", fmt.Sprintf("%#v", id), "go string")

	zero, err := identifier.FromString("")
	assert.Nil(t, err, "parse empty")
	assert.True(t, zero.IsZero(), "empty is zero")
	assert.Equal(t, "", identifier.Zero.String(), "zero text")

	_, err = identifier.FromString("0OIl")
	assert.Equal(t, fault.CannotDecodeIdentifier, err, "invalid base58")

	_, err = identifier.FromString("2NEpo7TZRRrLZSi2U")
	assert.Equal(t, fault.CannotDecodeIdentifier, err, "wrong length")
}

func TestRandom(t *testing.T) {
	e := crypto.NewEngine()
	seen := make(map[identifier.Identifier]struct{})
	for i := 0; i < 100; i += 1 {
		id, err := identifier.Random(e)
		assert.Nil(t, err, "random")
		_, ok := seen[id]
		assert.False(t, ok, "duplicate random identifier")
		seen[id] = struct{}{}
	}
}

func TestCompareAndBytes(t *testing.T) {
	a, _ := identifier.FromBytes(bytes.Repeat([]byte{1}, identifier.Length))
	b, _ := identifier.FromBytes(bytes.Repeat([]byte{2}, identifier.Length))

	assert.Equal(t, -1, a.Compare(b), "a < b")
	assert.Equal(t, 1, b.Compare(a), "b > a")
	assert.Equal(t, 0, a.Compare(a), "a == a")

	raw := a.Bytes()
	raw[0] = 9
	assert.Equal(t, byte(1), a[0], "Bytes must copy")

	_, err := identifier.FromBytes([]byte{1, 2, 3})
	assert.Equal(t, fault.CannotDecodeIdentifier, err, "short bytes")
}
