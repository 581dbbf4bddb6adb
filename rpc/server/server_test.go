// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server_test

import (
	"fmt"
	"math/rand"
	"net"
	"net/rpc"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/counter"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/mocks"
	"github.com/wigggles/opentxs-sub024/rpc/notary"
	"github.com/wigggles/opentxs-sub024/rpc/server"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

// make sure the notary receiver is registered under its name
func TestNotaryRegistered(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	p.EXPECT().IsRunning().Return(false).Times(2)

	c := counter.Counter(0)
	r := server.Create(logger.New(fixtures.LogCategory), "1.0", p, 0, 0, &c)

	port := fmt.Sprintf("127.0.0.1:%d", rand.Intn(30000)+30000)
	l, err := net.Listen("tcp", port)
	if nil != err {
		t.Fatalf("listen error: %s", err)
	}
	defer l.Close()
	go r.Accept(l)

	conn, err := net.Dial("tcp", port)
	if nil != err {
		t.Fatalf("dial error: %s", err)
	}
	client := rpc.NewClient(conn)
	defer client.Close()

	var reply notary.ProcessReply
	err = client.Call("Notary.Process", &notary.ProcessArguments{Message: "request"}, &reply)
	assert.NotNil(t, err, "wrong Notary.Process")
	assert.Equal(t, fault.ServerShutdown.Error(), err.Error(), "wrong reply")

	var info notary.InfoReply
	err = client.Call("Notary.Info", &notary.InfoArguments{}, &info)
	assert.NotNil(t, err, "wrong Notary.Info")
	assert.Equal(t, fault.ServerShutdown.Error(), err.Error(), "wrong info reply")
}
