// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package credential - the keys behind a nym
//
// A nym is rooted in a source, either a public key or a URL. The
// master credential is tied to the source and signs every other
// credential of its set. Child credentials carry the keys actually
// used for day to day signing, authentication and encryption.
// Contact and verification credentials carry claims and are signed
// by the master alone.
//
// A credential moves through the states
//
//   Unsigned -> SelfSigned -> MasterSigned -> Persisted
//
// and its public content cannot change once signed. Verification
// checks, in order: the nym ID against the source, the master against
// the source, the master signature and finally the self signature.
package credential
