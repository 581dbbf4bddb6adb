// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/wigggles/opentxs-sub024/counter"
	"github.com/wigggles/opentxs-sub024/rpc/notary"
)

// Create - RPC server with every receiver registered
func Create(log *logger.L, version string, processor notary.Processor, requestRate float64, requestBurst int, rpcCount *counter.Counter) *rpc.Server {
	start := time.Now().UTC()

	server := rpc.NewServer()

	_ = server.Register(notary.New(log, processor, start, version, requestRate, requestBurst, rpcCount))

	return server
}
