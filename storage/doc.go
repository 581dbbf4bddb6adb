// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// two kinds of storage are provided:
//
// Folders: signed contract files (accounts, ledgers, nyms, box
// receipts ...) stored one per file under the data directory, the file
// name being the base58 identifier of the entity.
//
// Database: a LevelDB database split into a series of pools.  Each
// pool is defined by a prefix byte that is obtained from the prefix
// tag in the struct defining the available pools.  All writes are
// synchronous so that a returned nil error means the data is durable.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++     = concatenation of byte data
// 3. number = big endian uint64 (8 bytes)
// 4. nym    = 32 byte nym identifier
//
// Counters:
//
//   G ++ name          - global counters
//                        data: number
//
// Per nym numbers:
//
//   R ++ nym           - next expected request number
//                        data: number
//   T ++ nym ++ number - issued, not yet accepted (tentative)
//   A ++ nym ++ number - accepted, available for use
//   O ++ nym ++ number - consumed, awaiting closing
//   N ++ nym           - registered nyms
//                        data: registration time (unix, number)
//
// Cron:
//
//   C ++ number        - transaction numbers owned by cron
//
// Testing:
//   Z ++ key           - testing data
package storage
