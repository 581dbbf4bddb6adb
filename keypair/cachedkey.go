// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keypair

import (
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
)

const (
	masterSecretSize = crypto.SymmetricKeySize
	secretCacheKey   = "master"

	// DefaultUnlockTimeout - how long an unlocked master stays usable
	DefaultUnlockTimeout = 5 * time.Minute
)

// armor headers
const (
	headerMode    = "Mode"
	headerSalt    = "Salt"
	headerNonce   = "Nonce"
	headerTime    = "Time"
	headerMemory  = "Memory"
	headerThreads = "Threads"
)

// CachedKey - the master key protecting all private keys of a wallet
// or notary
//
// a random secret is encrypted by a key derived from the password;
// once unlocked the secret is held in an expiring cache so that tight
// signing loops do not re-run the key derivation
type CachedKey struct {
	mutex      sync.Mutex
	engine     *crypto.Engine
	mode       crypto.SymmetricMode
	parameters crypto.KDFParameters
	salt       []byte
	nonce      []byte
	encrypted  []byte
	callback   PasswordCallback
	timeout    time.Duration
	cache      *cache.Cache
}

// CreateCachedKey - a fresh master secret protected by the password
// obtained from the callback
func CreateCachedKey(engine *crypto.Engine, parameters crypto.KDFParameters, callback PasswordCallback, timeout time.Duration) (*CachedKey, error) {
	if nil == engine || nil == callback {
		return nil, fault.MissingParameters
	}

	c := newCachedKey(engine, callback, timeout)
	c.parameters = parameters

	secret, err := engine.Random(masterSecretSize)
	if nil != err {
		return nil, err
	}
	defer zero(secret)

	password, err := callback.Password("create master key", true)
	if nil != err {
		return nil, err
	}
	defer zero(password)

	if err := c.protect(secret, password); nil != err {
		return nil, err
	}

	c.cache.Set(secretCacheKey, copyBytes(secret), cache.DefaultExpiration)
	return c, nil
}

// ParseCachedKey - restore a master key from its serialized form
func ParseCachedKey(engine *crypto.Engine, text string, callback PasswordCallback, timeout time.Duration) (*CachedKey, error) {
	if nil == engine || nil == callback {
		return nil, fault.MissingParameters
	}
	b, err := armor.DecodeLabel(text, armor.LabelMasterKey)
	if nil != err {
		return nil, err
	}

	c := newCachedKey(engine, callback, timeout)
	c.encrypted = b.Data

	if c.mode, err = crypto.SymmetricModeFromString(b.Headers[headerMode]); nil != err {
		return nil, err
	}
	if c.salt, err = hex.DecodeString(b.Headers[headerSalt]); nil != err {
		return nil, fault.CannotDecodeArmor
	}
	if c.nonce, err = hex.DecodeString(b.Headers[headerNonce]); nil != err {
		return nil, fault.CannotDecodeArmor
	}
	t, err := strconv.ParseUint(b.Headers[headerTime], 10, 32)
	if nil != err {
		return nil, fault.CannotDecodeArmor
	}
	m, err := strconv.ParseUint(b.Headers[headerMemory], 10, 32)
	if nil != err {
		return nil, fault.CannotDecodeArmor
	}
	p, err := strconv.ParseUint(b.Headers[headerThreads], 10, 8)
	if nil != err {
		return nil, fault.CannotDecodeArmor
	}
	c.parameters = crypto.KDFParameters{
		Time:      uint32(t),
		Memory:    uint32(m),
		Threads:   uint8(p),
		KeyLength: crypto.SymmetricKeySize,
	}
	return c, nil
}

func newCachedKey(engine *crypto.Engine, callback PasswordCallback, timeout time.Duration) *CachedKey {
	if timeout <= 0 {
		timeout = DefaultUnlockTimeout
	}
	return &CachedKey{
		engine:   engine,
		mode:     crypto.ChaCha20Poly1305,
		callback: callback,
		timeout:  timeout,
		cache:    cache.New(timeout, timeout),
	}
}

// encrypt the secret under a key derived from the password
//
// caller must hold the lock or own c exclusively
func (c *CachedKey) protect(secret []byte, password []byte) error {
	salt, err := c.engine.Random(crypto.SaltSize)
	if nil != err {
		return err
	}
	nonce, err := c.engine.Random(c.mode.NonceSize())
	if nil != err {
		return err
	}
	key, err := crypto.DeriveKey(password, salt, c.parameters)
	if nil != err {
		return err
	}
	defer zero(key)

	encrypted, err := crypto.Encrypt(c.mode, key, nonce, secret, salt)
	if nil != err {
		return err
	}
	c.salt = salt
	c.nonce = nonce
	c.encrypted = encrypted
	return nil
}

// Serialize - armored text form, safe to store on disk
func (c *CachedKey) Serialize() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	headers := map[string]string{
		headerMode:    c.mode.String(),
		headerSalt:    hex.EncodeToString(c.salt),
		headerNonce:   hex.EncodeToString(c.nonce),
		headerTime:    strconv.FormatUint(uint64(c.parameters.Time), 10),
		headerMemory:  strconv.FormatUint(uint64(c.parameters.Memory), 10),
		headerThreads: strconv.FormatUint(uint64(c.parameters.Threads), 10),
	}
	return armor.Encode(armor.LabelMasterKey, headers, c.encrypted)
}

// Unlock - obtain the master secret
//
// the cached secret is used if still valid, otherwise the password
// callback is consulted; the returned slice is a copy the caller
// should erase after use
func (c *CachedKey) Unlock(reason string) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if s, ok := c.cache.Get(secretCacheKey); ok {
		return copyBytes(s.([]byte)), nil
	}

	password, err := c.callback.Password(reason, false)
	if nil != err {
		return nil, err
	}
	defer zero(password)

	key, err := crypto.DeriveKey(password, c.salt, c.parameters)
	if nil != err {
		return nil, err
	}
	defer zero(key)

	secret, err := crypto.Decrypt(c.mode, key, c.nonce, c.encrypted, c.salt)
	if nil != err {
		return nil, fault.WrongPassword
	}

	c.cache.Set(secretCacheKey, secret, cache.DefaultExpiration)
	return copyBytes(secret), nil
}

// IsUnlocked - true while the secret is cached
func (c *CachedKey) IsUnlocked() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, ok := c.cache.Get(secretCacheKey)
	return ok
}

// Lock - drop the cached secret
func (c *CachedKey) Lock() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if s, ok := c.cache.Get(secretCacheKey); ok {
		zero(s.([]byte))
	}
	c.cache.Flush()
}

// ChangePassword - re-protect the master secret with a new password
//
// the current password is required unless the secret is cached
func (c *CachedKey) ChangePassword(newPassword PasswordCallback) error {
	secret, err := c.Unlock("change master password")
	if nil != err {
		return err
	}
	defer zero(secret)

	password, err := newPassword.Password("new master password", true)
	if nil != err {
		return err
	}
	defer zero(password)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.protect(secret, password); nil != err {
		return err
	}
	c.callback = newPassword
	return nil
}

// Encrypt - protect data under the master secret
func (c *CachedKey) Encrypt(plaintext []byte, reason string) (string, error) {
	secret, err := c.Unlock(reason)
	if nil != err {
		return "", err
	}
	defer zero(secret)

	nonce, err := c.engine.Random(c.mode.NonceSize())
	if nil != err {
		return "", err
	}
	ciphertext, err := crypto.Encrypt(c.mode, secret, nonce, plaintext, nil)
	if nil != err {
		return "", err
	}
	headers := map[string]string{
		headerMode:  c.mode.String(),
		headerNonce: hex.EncodeToString(nonce),
	}
	return armor.Encode(armor.LabelPrivateKey, headers, ciphertext), nil
}

// Decrypt - reverse of Encrypt
func (c *CachedKey) Decrypt(text string, reason string) ([]byte, error) {
	b, err := armor.DecodeLabel(text, armor.LabelPrivateKey)
	if nil != err {
		return nil, err
	}
	mode, err := crypto.SymmetricModeFromString(b.Headers[headerMode])
	if nil != err {
		return nil, err
	}
	nonce, err := hex.DecodeString(b.Headers[headerNonce])
	if nil != err {
		return nil, fault.CannotDecodeArmor
	}

	secret, err := c.Unlock(reason)
	if nil != err {
		return nil, err
	}
	defer zero(secret)

	return crypto.Decrypt(mode, secret, nonce, b.Data, nil)
}

func copyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

func isPrivateKeyArmor(text string) bool {
	_, err := armor.DecodeLabel(text, armor.LabelPrivateKey)
	return nil == err
}
