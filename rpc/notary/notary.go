// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/counter"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/mode"
	"github.com/wigggles/opentxs-sub024/rpc/ratelimit"
)

const (
	rateLimitNotary = 200
	rateBurstNotary = 100

	// largest armored request accepted
	maximumRequestSize = 4 * 1024 * 1024
)

// Processor - the notary behind the RPC front end
type Processor interface {
	ProcessMessage(text string) (string, error)
	IsRunning() bool
	NotaryID() identifier.Identifier
	NotaryNymID() identifier.Identifier
	ServerContract() *contract.ServerContract
}

// Notary - type for RPC calls
type Notary struct {
	Log       *logger.L
	Limiter   *rate.Limiter
	Start     time.Time
	Version   string
	processor Processor
	counter   *counter.Counter
}

// New - RPC receiver, zero rate values take the defaults
func New(log *logger.L, processor Processor, start time.Time, version string, requestRate float64, requestBurst int, counter *counter.Counter) *Notary {
	if requestRate <= 0 {
		requestRate = rateLimitNotary
	}
	if requestBurst <= 0 {
		requestBurst = rateBurstNotary
	}
	return &Notary{
		Log:       log,
		Limiter:   rate.NewLimiter(rate.Limit(requestRate), requestBurst),
		Start:     start,
		Version:   version,
		processor: processor,
		counter:   counter,
	}
}

// ---

// ProcessArguments - one armored signed message
type ProcessArguments struct {
	Message string `json:"message"`
}

// ProcessReply - the armored signed reply
type ProcessReply struct {
	Message string `json:"message"`
}

// Process - hand a client message to the notary
//
// refusals travel inside the signed reply, an RPC error means no
// reply could be produced
func (n *Notary) Process(arguments *ProcessArguments, reply *ProcessReply) error {
	if err := ratelimit.Limit(n.Limiter); nil != err {
		return err
	}
	if "" == arguments.Message {
		return fault.MissingParameters
	}
	if len(arguments.Message) > maximumRequestSize {
		return fault.RequestTooLarge
	}
	if mode.Is(mode.Maintenance) {
		return fault.NotaryMaintenance
	}
	if !n.processor.IsRunning() {
		return fault.ServerShutdown
	}

	result, err := n.processor.ProcessMessage(arguments.Message)
	if nil != err {
		n.Log.Warnf("process error: %s", err)
		return err
	}
	reply.Message = result
	return nil
}

// ---

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	NotaryID    string `json:"notaryID"`
	NotaryNymID string `json:"notaryNymID"`
	Contract    string `json:"contract"`
	RPCs        uint64 `json:"rpcs"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Mode        string `json:"mode"`
}

// Info - the notary contract and some state, enough for a client to
// verify replies
func (n *Notary) Info(_ *InfoArguments, reply *InfoReply) error {
	if err := ratelimit.Limit(n.Limiter); nil != err {
		return err
	}
	if !n.processor.IsRunning() {
		return fault.ServerShutdown
	}
	serverContract := n.processor.ServerContract()
	if nil == serverContract {
		return fault.NotaryContractMissing
	}

	reply.NotaryID = n.processor.NotaryID().String()
	reply.NotaryNymID = n.processor.NotaryNymID().String()
	reply.Contract = armor.EncodeData(armor.LabelContract, serverContract.Contract.RawFile())
	reply.RPCs = n.counter.Uint64()
	reply.Version = n.Version
	reply.Uptime = time.Since(n.Start).String()
	reply.Mode = mode.String()
	return nil
}
