// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crypto - hashing, symmetric and asymmetric primitives
//
// hashes, HMAC, AEAD and key derivation are plain functions; the
// asymmetric providers are registered on an Engine value which is
// created by the owner of a data directory and passed down to the
// key, credential and nym layers
package crypto
