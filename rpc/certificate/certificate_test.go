// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate_test

import (
	"crypto/tls"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/sha3"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/rpc/certificate"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func TestGenerateAndGet(t *testing.T) {
	dir, remove := fixtures.TempDirectory("certificate")
	defer remove()

	certificateFile := filepath.Join(dir, "rpc.crt")
	keyFile := filepath.Join(dir, "rpc.key")

	err := certificate.Generate("test", certificateFile, keyFile, []string{"127.0.0.1"})
	assert.Nil(t, err, "generate")

	cer, _ := ioutil.ReadFile(certificateFile)
	key, _ := ioutil.ReadFile(keyFile)

	tlsConfig, fingerprint, err := certificate.Get(logger.New(fixtures.LogCategory), "test", string(cer), string(key))
	assert.Nil(t, err, "wrong Get")

	pair, _ := tls.X509KeyPair(cer, key)
	assert.Equal(t, sha3.Sum256(pair.Certificate[0]), fingerprint, "wrong fingerprint")
	assert.Equal(t, pair, tlsConfig.Certificates[0], "wrong config")

	_, loaded, err := certificate.Load(logger.New(fixtures.LogCategory), "test", certificateFile, keyFile)
	assert.Nil(t, err, "load")
	assert.Equal(t, fingerprint, loaded, "loaded fingerprint")
}

func TestGenerateKeepsExisting(t *testing.T) {
	dir, remove := fixtures.TempDirectory("certificate")
	defer remove()

	certificateFile := filepath.Join(dir, "rpc.crt")
	keyFile := filepath.Join(dir, "rpc.key")

	_ = ioutil.WriteFile(certificateFile, []byte("existing"), 0600)
	err := certificate.Generate("test", certificateFile, keyFile, nil)
	assert.Equal(t, fault.CertificateFileAlreadyExists, err, "certificate exists")

	_ = os.Remove(certificateFile)
	_ = ioutil.WriteFile(keyFile, []byte("existing"), 0600)
	err = certificate.Generate("test", certificateFile, keyFile, nil)
	assert.Equal(t, fault.KeyFileAlreadyExists, err, "key exists")

	data, _ := ioutil.ReadFile(keyFile)
	assert.Equal(t, "existing", string(data), "key untouched")
}

func TestGetInvalid(t *testing.T) {
	_, _, err := certificate.Get(logger.New(fixtures.LogCategory), "test", "junk", "junk")
	assert.NotNil(t, err, "invalid pair")
}
