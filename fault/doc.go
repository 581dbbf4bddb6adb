// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches.
//
// The classes follow the three failure families of the notary:
// integrity (an object must not be trusted), policy (a request is
// refused without side effects) and resource/crypto (logged, the
// caller may retry with different input).
package fault
