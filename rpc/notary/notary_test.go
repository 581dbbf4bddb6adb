// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary_test

import (
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/counter"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/mocks"
	"github.com/wigggles/opentxs-sub024/mode"
	"github.com/wigggles/opentxs-sub024/rpc/notary"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func newNotary(p notary.Processor, count *counter.Counter) *notary.Notary {
	return notary.New(logger.New(fixtures.LogCategory), p, time.Now(), "1.0", 0, 0, count)
}

func TestProcess(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	p.EXPECT().IsRunning().Return(true).Times(1)
	p.EXPECT().ProcessMessage("request").Return("reply", nil).Times(1)

	count := counter.Counter(0)
	n := newNotary(p, &count)

	var reply notary.ProcessReply
	err := n.Process(&notary.ProcessArguments{Message: "request"}, &reply)
	assert.Nil(t, err, "wrong Process")
	assert.Equal(t, "reply", reply.Message, "wrong reply")
}

func TestProcessError(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	p.EXPECT().IsRunning().Return(true).Times(1)
	p.EXPECT().ProcessMessage("junk").Return("", fault.CannotDecodeArmor).Times(1)

	count := counter.Counter(0)
	n := newNotary(p, &count)

	var reply notary.ProcessReply
	err := n.Process(&notary.ProcessArguments{Message: "junk"}, &reply)
	assert.Equal(t, fault.CannotDecodeArmor, err, "wrong error")
	assert.Equal(t, "", reply.Message, "no reply")
}

func TestProcessWhenEmpty(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	count := counter.Counter(0)
	n := newNotary(p, &count)

	var reply notary.ProcessReply
	err := n.Process(&notary.ProcessArguments{}, &reply)
	assert.Equal(t, fault.MissingParameters, err, "wrong error")
}

func TestProcessWhenStopped(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	p.EXPECT().IsRunning().Return(false).Times(1)

	count := counter.Counter(0)
	n := newNotary(p, &count)

	var reply notary.ProcessReply
	err := n.Process(&notary.ProcessArguments{Message: "request"}, &reply)
	assert.Equal(t, fault.ServerShutdown, err, "wrong error")
}

func TestProcessInMaintenance(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	assert.Nil(t, mode.Initialise(), "mode initialise")
	defer mode.Finalise()
	mode.Set(mode.Maintenance)

	p := mocks.NewMockProcessor(ctl)

	count := counter.Counter(0)
	n := newNotary(p, &count)

	var reply notary.ProcessReply
	err := n.Process(&notary.ProcessArguments{Message: "request"}, &reply)
	assert.Equal(t, fault.NotaryMaintenance, err, "wrong error")

	mode.Set(mode.Normal)
	p.EXPECT().IsRunning().Return(true).Times(1)
	p.EXPECT().ProcessMessage("request").Return("reply", nil).Times(1)
	err = n.Process(&notary.ProcessArguments{Message: "request"}, &reply)
	assert.Nil(t, err, "normal mode")
	assert.Equal(t, "reply", reply.Message, "wrong reply")
}

func TestInfo(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	notaryID := identifier.FromData([]byte("notary"))
	nymID := identifier.FromData([]byte("nym"))
	sc := contract.NewServerContract()

	p := mocks.NewMockProcessor(ctl)
	p.EXPECT().IsRunning().Return(true).Times(1)
	p.EXPECT().ServerContract().Return(sc).Times(1)
	p.EXPECT().NotaryID().Return(notaryID).Times(1)
	p.EXPECT().NotaryNymID().Return(nymID).Times(1)

	count := counter.Counter(3)
	n := newNotary(p, &count)

	var reply notary.InfoReply
	err := n.Info(&notary.InfoArguments{}, &reply)
	assert.Nil(t, err, "wrong Info")
	assert.Equal(t, notaryID.String(), reply.NotaryID, "wrong notary")
	assert.Equal(t, nymID.String(), reply.NotaryNymID, "wrong nym")
	assert.Equal(t, armor.EncodeData(armor.LabelContract, sc.Contract.RawFile()), reply.Contract, "wrong contract")
	assert.Equal(t, uint64(3), reply.RPCs, "wrong rpc count")
	assert.Equal(t, "1.0", reply.Version, "wrong version")
}

func TestInfoWithoutContract(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	p.EXPECT().IsRunning().Return(true).Times(1)
	p.EXPECT().ServerContract().Return(nil).Times(1)

	count := counter.Counter(0)
	n := newNotary(p, &count)

	var reply notary.InfoReply
	err := n.Info(&notary.InfoArguments{}, &reply)
	assert.Equal(t, fault.NotaryContractMissing, err, "wrong error")
}
