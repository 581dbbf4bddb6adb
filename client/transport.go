// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/wigggles/opentxs-sub024/counter"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/rpc/certificate"
	"github.com/wigggles/opentxs-sub024/rpc/notary"
)

// DefaultTimeout - longest wait for one reply
const DefaultTimeout = 30 * time.Second

// Transport - carries armored messages to a notary
type Transport interface {
	Process(request string) (string, error)
	Info() (*notary.InfoReply, error)
	Close() error
}

// errors the notary sends back by text
var remoteErrors = map[string]error{
	fault.ServerShutdown.Error(): fault.ServerShutdown,
	fault.RateLimiting.Error():   fault.RateLimiting,
}

type rpcTransport struct {
	sync.Mutex
	log       *logger.L
	address   string
	tlsConfig *tls.Config
	timeout   time.Duration
	client    *rpc.Client
}

// NewRPCTransport - JSON-RPC over TLS
//
// fingerprint is the hex SHA3-256 of the notary certificate; the
// certificate is not checked against any authority
func NewRPCTransport(address string, fingerprint string, timeout time.Duration) (Transport, error) {
	expected, err := hex.DecodeString(fingerprint)
	if nil != err || 32 != len(expected) {
		return nil, fault.CertificateMismatch
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pin := func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if 0 == len(rawCerts) {
			return fault.CertificateMismatch
		}
		actual := certificate.Fingerprint(rawCerts[0])
		if !bytes.Equal(actual[:], expected) {
			return fault.CertificateMismatch
		}
		return nil
	}
	return &rpcTransport{
		log:     logger.New("client"),
		address: address,
		tlsConfig: &tls.Config{
			InsecureSkipVerify:    true,
			VerifyPeerCertificate: pin,
		},
		timeout: timeout,
	}, nil
}

func (r *rpcTransport) Process(request string) (string, error) {
	var reply notary.ProcessReply
	if err := r.call("Notary.Process", &notary.ProcessArguments{Message: request}, &reply); nil != err {
		return "", err
	}
	return reply.Message, nil
}

func (r *rpcTransport) Info() (*notary.InfoReply, error) {
	reply := &notary.InfoReply{}
	if err := r.call("Notary.Info", &notary.InfoArguments{}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

func (r *rpcTransport) Close() error {
	r.Lock()
	defer r.Unlock()
	return r.drop()
}

// call - one request on the shared connection, dialled on demand
//
// a timed out or broken connection is dropped
func (r *rpcTransport) call(method string, arguments interface{}, reply interface{}) error {
	r.Lock()
	defer r.Unlock()

	if nil == r.client {
		conn, err := tls.Dial("tcp", r.address, r.tlsConfig)
		if nil != err {
			r.log.Errorf("dial: %s  error: %s", r.address, err)
			return err
		}
		r.client = jsonrpc.NewClient(conn)
	}

	call := r.client.Go(method, arguments, reply, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
	case <-time.After(r.timeout):
		r.log.Warnf("%s: %s  timed out", method, r.address)
		_ = r.drop()
		return fault.RequestTimedOut
	}

	switch err := call.Error.(type) {
	case nil:
		return nil
	case rpc.ServerError:
		if e, ok := remoteErrors[string(err)]; ok {
			return e
		}
		return err
	default:
		_ = r.drop()
		return err
	}
}

func (r *rpcTransport) drop() error {
	if nil == r.client {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

// local transport
type localTransport struct {
	notary  *notary.Notary
	timeout time.Duration
}

// NewLocalTransport - call a notary in the same process, through the
// same receiver the RPC server uses
func NewLocalTransport(processor notary.Processor, timeout time.Duration) Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	count := counter.Counter(0)
	return &localTransport{
		notary:  notary.New(logger.New("client"), processor, time.Now(), "local", 0, 0, &count),
		timeout: timeout,
	}
}

func (l *localTransport) Process(request string) (string, error) {
	type result struct {
		reply string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		var reply notary.ProcessReply
		err := l.notary.Process(&notary.ProcessArguments{Message: request}, &reply)
		done <- result{reply: reply.Message, err: err}
	}()
	select {
	case r := <-done:
		return r.reply, r.err
	case <-time.After(l.timeout):
		return "", fault.RequestTimedOut
	}
}

func (l *localTransport) Info() (*notary.InfoReply, error) {
	reply := &notary.InfoReply{}
	if err := l.notary.Info(&notary.InfoArguments{}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

func (l *localTransport) Close() error {
	return nil
}
