// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keypair - asymmetric keys with password protected private halves
//
// private key material is only ever held encrypted under the master
// secret of a CachedKey; it is decrypted for the duration of a single
// sign or open operation
package keypair
