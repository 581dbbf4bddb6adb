// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc_test

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/mocks"
	"github.com/wigggles/opentxs-sub024/rpc"
	"github.com/wigggles/opentxs-sub024/rpc/certificate"
	"github.com/wigggles/opentxs-sub024/rpc/listeners"
	"github.com/wigggles/opentxs-sub024/rpc/notary"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func TestInitialiseFinalise(t *testing.T) {
	dir, remove := fixtures.TempDirectory("rpc")
	defer remove()

	con := listeners.RPCConfiguration{
		MaximumConnections: 2,
		Listen:             []string{fmt.Sprintf("127.0.0.1:%d", rand.Intn(30000)+30000)},
		Certificate:        filepath.Join(dir, "rpc.crt"),
		PrivateKey:         filepath.Join(dir, "rpc.key"),
	}
	if err := certificate.Generate("test", con.Certificate, con.PrivateKey, nil); nil != err {
		t.Fatalf("generate certificate error: %s", err)
	}

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	p.EXPECT().IsRunning().Return(true).Times(1)
	p.EXPECT().ProcessMessage("request").Return("reply", nil).Times(1)

	err := rpc.Initialise(&con, p, "1.0")
	assert.Nil(t, err, "initialise")

	err = rpc.Initialise(&con, p, "1.0")
	assert.Equal(t, fault.AlreadyInitialised, err, "second initialise")

	conn, err := tls.Dial("tcp", con.Listen[0], &tls.Config{InsecureSkipVerify: true})
	if nil != err {
		t.Fatalf("dial error: %s", err)
	}
	client := jsonrpc.NewClient(conn)
	var reply notary.ProcessReply
	err = client.Call("Notary.Process", &notary.ProcessArguments{Message: "request"}, &reply)
	assert.Nil(t, err, "process")
	assert.Equal(t, "reply", reply.Message, "reply")
	client.Close()

	assert.Nil(t, rpc.Finalise(), "finalise")
	assert.Equal(t, fault.NotInitialised, rpc.Finalise(), "second finalise")
}

func TestInitialiseMissingCertificate(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	con := listeners.RPCConfiguration{
		MaximumConnections: 2,
		Listen:             []string{"127.0.0.1:2150"},
		Certificate:        "/does/not/exist.crt",
		PrivateKey:         "/does/not/exist.key",
	}
	err := rpc.Initialise(&con, mocks.NewMockProcessor(ctl), "1.0")
	assert.NotNil(t, err, "missing certificate")
}
