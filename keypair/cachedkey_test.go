// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keypair_test

import (
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/mocks"
)

var testPassword = []byte("correct horse battery staple")

func newPassword() []byte {
	return append([]byte{}, testPassword...)
}

func TestCachedKeyUnlockUsesCache(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	callback := mocks.NewMockPasswordCallback(ctl)
	callback.EXPECT().Password(gomock.Any(), true).Return(newPassword(), nil).Times(1)

	e := crypto.NewEngine()
	master, err := keypair.CreateCachedKey(e, crypto.FastKDF, callback, time.Minute)
	assert.Nil(t, err, "create")
	assert.True(t, master.IsUnlocked(), "unlocked after create")

	// cached: no further callback
	s1, err := master.Unlock("first")
	assert.Nil(t, err, "unlock")
	s2, err := master.Unlock("second")
	assert.Nil(t, err, "unlock")
	assert.Equal(t, s1, s2, "secret changed")

	// locked: callback once more
	callback.EXPECT().Password("after lock", false).Return(newPassword(), nil).Times(1)
	master.Lock()
	assert.False(t, master.IsUnlocked(), "locked")

	s3, err := master.Unlock("after lock")
	assert.Nil(t, err, "unlock after lock")
	assert.Equal(t, s1, s3, "secret changed after lock")
}

func TestCachedKeyWrongPassword(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	e := crypto.NewEngine()
	master, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword(testPassword), time.Minute)
	assert.Nil(t, err, "create")

	callback := mocks.NewMockPasswordCallback(ctl)
	callback.EXPECT().Password(gomock.Any(), false).Return([]byte("wrong"), nil).Times(1)

	restored, err := keypair.ParseCachedKey(e, master.Serialize(), callback, time.Minute)
	assert.Nil(t, err, "parse")

	_, err = restored.Unlock("wrong password")
	assert.Equal(t, fault.WrongPassword, err, "wrong password")
	assert.True(t, fault.IsErrCrypto(err), "error class")
}

func TestCachedKeyDeclined(t *testing.T) {
	e := crypto.NewEngine()
	master, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword(testPassword), time.Minute)
	assert.Nil(t, err, "create")

	restored, err := keypair.ParseCachedKey(e, master.Serialize(), keypair.Declined, time.Minute)
	assert.Nil(t, err, "parse")

	_, err = restored.Unlock("declined")
	assert.Equal(t, fault.PasswordDeclined, err, "declined")
}

func TestCachedKeySerializeRoundTrip(t *testing.T) {
	e := crypto.NewEngine()
	master, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword(testPassword), time.Minute)
	assert.Nil(t, err, "create")

	ciphertext, err := master.Encrypt([]byte("private key bytes"), "test")
	assert.Nil(t, err, "encrypt")

	restored, err := keypair.ParseCachedKey(e, master.Serialize(), keypair.StaticPassword(testPassword), time.Minute)
	assert.Nil(t, err, "parse")

	plaintext, err := restored.Decrypt(ciphertext, "test")
	assert.Nil(t, err, "decrypt")
	assert.Equal(t, []byte("private key bytes"), plaintext, "round trip")

	_, err = keypair.ParseCachedKey(e, "garbage", keypair.StaticPassword(testPassword), time.Minute)
	assert.Equal(t, fault.CannotDecodeArmor, err, "garbage")
}

func TestCachedKeyChangePassword(t *testing.T) {
	e := crypto.NewEngine()
	master, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword(testPassword), time.Minute)
	assert.Nil(t, err, "create")

	ciphertext, err := master.Encrypt([]byte("data"), "test")
	assert.Nil(t, err, "encrypt")

	err = master.ChangePassword(keypair.StaticPassword("new password"))
	assert.Nil(t, err, "change password")

	old, _ := keypair.ParseCachedKey(e, master.Serialize(), keypair.StaticPassword(testPassword), time.Minute)
	_, err = old.Decrypt(ciphertext, "old")
	assert.Equal(t, fault.WrongPassword, err, "old password still works")

	renewed, _ := keypair.ParseCachedKey(e, master.Serialize(), keypair.StaticPassword("new password"), time.Minute)
	plaintext, err := renewed.Decrypt(ciphertext, "new")
	assert.Nil(t, err, "new password")
	assert.Equal(t, []byte("data"), plaintext, "data")
}

func TestCachedKeyConcurrentUnlock(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	e := crypto.NewEngine()
	master, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword(testPassword), time.Minute)
	assert.Nil(t, err, "create")

	callback := mocks.NewMockPasswordCallback(ctl)
	callback.EXPECT().Password(gomock.Any(), false).Return(newPassword(), nil).Times(1)

	restored, err := keypair.ParseCachedKey(e, master.Serialize(), callback, time.Minute)
	assert.Nil(t, err, "parse")

	wg := sync.WaitGroup{}
	for i := 0; i < 20; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := restored.Unlock("concurrent")
			assert.Nil(t, err, "unlock")
		}()
	}
	wg.Wait()
}
