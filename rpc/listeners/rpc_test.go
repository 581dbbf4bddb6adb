// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners_test

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/counter"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/rpc/certificate"
	"github.com/wigggles/opentxs-sub024/rpc/listeners"
)

type Add struct{}
type AddArg struct {
	A, B int
}

func (a Add) Add(arg *AddArg, reply *int) error {
	*reply = arg.A + arg.B
	return nil
}

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func serverTLS(t *testing.T) (*tls.Config, [32]byte) {
	dir, remove := fixtures.TempDirectory("listeners")
	defer remove()

	certificateFile := filepath.Join(dir, "rpc.crt")
	keyFile := filepath.Join(dir, "rpc.key")
	if err := certificate.Generate("test", certificateFile, keyFile, []string{"127.0.0.1"}); nil != err {
		t.Fatalf("generate certificate error: %s", err)
	}
	tlsConfig, fin, err := certificate.Load(logger.New(fixtures.LogCategory), "test", certificateFile, keyFile)
	if nil != err {
		t.Fatalf("load certificate error: %s", err)
	}
	return tlsConfig, fin
}

func addServer(t *testing.T) *rpc.Server {
	s := rpc.NewServer()
	if err := s.Register(Add{}); nil != err {
		t.Fatalf("register with error: %s", err)
	}
	return s
}

func call(address string) (int, error) {
	c, err := tls.Dial("tcp", address, &tls.Config{InsecureSkipVerify: true})
	if nil != err {
		return 0, err
	}
	client := jsonrpc.NewClient(c)
	defer client.Close()

	reply := 0
	err = client.Call("Add.Add", &AddArg{A: 2, B: 5}, &reply)
	return reply, err
}

func TestRpcListenerServe(t *testing.T) {
	port := rand.Intn(30000) + 30000
	listen := fmt.Sprintf("127.0.0.1:%d", port)
	con := listeners.RPCConfiguration{
		MaximumConnections: 5,
		Listen:             []string{listen},
	}
	count := counter.Counter(0)
	tlsConfig, fin := serverTLS(t)

	l, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, addServer(t), tlsConfig, fin)
	assert.Nil(t, err, "wrong NewRPC")

	err = l.Serve()
	assert.Nil(t, err, "wrong Serve")
	defer l.Stop()

	reply, err := call(listen)
	assert.Nil(t, err, "wrong client Call")
	assert.Equal(t, 7, reply, "wrong result")
}

func TestRpcListenerConnectionLimit(t *testing.T) {
	port := rand.Intn(30000) + 30000
	listen := fmt.Sprintf("127.0.0.1:%d", port)
	con := listeners.RPCConfiguration{
		MaximumConnections: 1,
		Listen:             []string{listen},
	}
	count := counter.Counter(0)
	tlsConfig, fin := serverTLS(t)

	l, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, addServer(t), tlsConfig, fin)
	assert.Nil(t, err, "wrong NewRPC")
	assert.Nil(t, l.Serve(), "wrong Serve")
	defer l.Stop()

	first, err := tls.Dial("tcp", listen, &tls.Config{InsecureSkipVerify: true})
	if nil != err {
		t.Fatalf("dial with error: %s", err)
	}
	client := jsonrpc.NewClient(first)
	defer client.Close()
	reply := 0
	err = client.Call("Add.Add", &AddArg{A: 1, B: 1}, &reply)
	assert.Nil(t, err, "first connection")
	assert.Equal(t, uint64(1), count.Uint64(), "one connection held")

	_, err = call(listen)
	assert.NotNil(t, err, "second connection refused")
}

func TestRpcListenerWhenMaxConnectionCountTooSmall(t *testing.T) {
	con := listeners.RPCConfiguration{
		MaximumConnections: 0,
		Listen:             []string{"127.0.0.1:1234"},
	}
	count := counter.Counter(0)

	_, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, rpc.NewServer(), &tls.Config{}, [32]byte{})
	assert.Equal(t, fault.MissingParameters, err, "wrong error")
}

func TestRpcListenerWhenEmptyListen(t *testing.T) {
	con := listeners.RPCConfiguration{
		MaximumConnections: 1,
		Listen:             []string{},
	}
	count := counter.Counter(0)

	_, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, rpc.NewServer(), &tls.Config{}, [32]byte{})
	assert.Equal(t, fault.MissingParameters, err, "wrong error")
}

func TestRpcListenerWhenInvalidAddress(t *testing.T) {
	count := counter.Counter(0)
	for _, listen := range []string{"abc:1234", "", "[zz]:1234"} {
		con := listeners.RPCConfiguration{
			MaximumConnections: 1,
			Listen:             []string{listen},
		}
		_, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, rpc.NewServer(), &tls.Config{}, [32]byte{})
		assert.Equal(t, fault.InvalidIpAddress, err, "address: %q", listen)
	}
}

func TestRpcListenerWildcardAddress(t *testing.T) {
	con := listeners.RPCConfiguration{
		MaximumConnections: 1,
		Listen:             []string{"*:2150"},
	}
	count := counter.Counter(0)

	_, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, rpc.NewServer(), &tls.Config{}, [32]byte{})
	assert.Nil(t, err, "wildcard")
	assert.Equal(t, "*:2150", con.Listen[0], "configuration unchanged")
}
