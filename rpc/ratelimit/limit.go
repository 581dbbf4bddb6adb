// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ratelimit

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/wigggles/opentxs-sub024/fault"
)

// MaximumDelay - longest a request waits for its turn
const MaximumDelay = 5 * time.Second

// Limit - wait for a token
//
// a request that would wait longer than MaximumDelay is refused and
// gives its reservation back
func Limit(limiter *rate.Limiter) error {
	r := limiter.Reserve()
	if !r.OK() {
		return fault.RateLimiting
	}
	delay := r.Delay()
	if delay > MaximumDelay {
		r.Cancel()
		return fault.RateLimiting
	}
	time.Sleep(delay)
	return nil
}
