// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package contract - signable documents
//
// every persisted entity of the notary is a Contract: an unsigned XML
// body produced by the entity (its Contents), a list of signatures
// over that body, and an identifier bound to the document in one of
// three ways:
//
//   HashOfRawFile   the digest of the complete signed raw file
//                   (notary contracts, instrument definitions)
//   HashOfContents  the digest of the unsigned body (credentials,
//                   cheques)
//   Assigned        an identifier embedded in the body (accounts,
//                   ledgers, transactions, messages)
//
// raw file layout:
//
//   -----BEGIN SIGNED <KIND>-----
//   Hash: SHA3-256
//
//   <body, lines starting with '-' are escaped as "- -">
//   -----BEGIN <KIND> SIGNATURE-----
//   Credential: <id>
//   Nym: <id>
//   Role: sign
//
//   <base64 signature>
//   -----END <KIND> SIGNATURE-----
//   -----END SIGNED <KIND>-----
package contract
