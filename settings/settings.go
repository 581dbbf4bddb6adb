// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package settings - typed key/value store for notary settings
//
// Keys live in sections and every read reports whether the key was
// present. The CheckSet calls write a default for a missing key and
// report that they did. The backing file is TOML.
package settings

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/spf13/viper"

	"github.com/wigggles/opentxs-sub024/fault"
)

// Settings - one settings file
type Settings struct {
	sync.Mutex
	log      *logger.L
	v        *viper.Viper
	filePath string
}

// New - open a settings file, a missing file starts empty
func New(fileName string) (*Settings, error) {
	filePath, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}
	s := &Settings{
		log:      logger.New("settings"),
		filePath: filePath,
	}
	if err := s.Reload(); nil != err {
		return nil, err
	}
	return s, nil
}

// FilePath - absolute path of the backing file
func (s *Settings) FilePath() string {
	return s.filePath
}

func newViper(filePath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(filePath)
	v.SetConfigType("toml")
	return v
}

// Reload - discard unsaved changes and read the file again
func (s *Settings) Reload() error {
	v := newViper(s.filePath)
	if _, err := os.Stat(s.filePath); nil == err {
		if err := v.ReadInConfig(); nil != err {
			s.log.Errorf("read: %q  error: %s", s.filePath, err)
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	s.Lock()
	s.v = v
	s.Unlock()
	s.log.Debugf("loaded: %q", s.filePath)
	return nil
}

// Save - write all values to the file
func (s *Settings) Save() error {
	s.Lock()
	defer s.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); nil != err {
		return err
	}
	if err := s.v.WriteConfigAs(s.filePath); nil != err {
		s.log.Errorf("write: %q  error: %s", s.filePath, err)
		return fault.PersistenceFailed
	}
	return nil
}

func key(section string, name string) string {
	return strings.ToLower(section) + "." + strings.ToLower(name)
}

// CheckStr - string value and whether it exists
func (s *Settings) CheckStr(section string, name string) (string, bool) {
	s.Lock()
	defer s.Unlock()
	k := key(section, name)
	if !s.v.IsSet(k) {
		return "", false
	}
	return s.v.GetString(k), true
}

// CheckLong - integer value and whether it exists
func (s *Settings) CheckLong(section string, name string) (int64, bool) {
	s.Lock()
	defer s.Unlock()
	k := key(section, name)
	if !s.v.IsSet(k) {
		return 0, false
	}
	return s.v.GetInt64(k), true
}

// CheckBool - boolean value and whether it exists
func (s *Settings) CheckBool(section string, name string) (bool, bool) {
	s.Lock()
	defer s.Unlock()
	k := key(section, name)
	if !s.v.IsSet(k) {
		return false, false
	}
	return s.v.GetBool(k), true
}

// SetStr - store a string, returns true if the value changed
func (s *Settings) SetStr(section string, name string, value string) bool {
	old, exists := s.CheckStr(section, name)
	s.set(section, name, value)
	return !exists || old != value
}

// SetLong - store an integer, returns true if the value changed
func (s *Settings) SetLong(section string, name string, value int64) bool {
	old, exists := s.CheckLong(section, name)
	s.set(section, name, value)
	return !exists || old != value
}

// SetBool - store a boolean, returns true if the value changed
func (s *Settings) SetBool(section string, name string, value bool) bool {
	old, exists := s.CheckBool(section, name)
	s.set(section, name, value)
	return !exists || old != value
}

func (s *Settings) set(section string, name string, value interface{}) {
	s.Lock()
	defer s.Unlock()
	s.v.Set(key(section, name), value)
}

// CheckSetStr - existing value, or store the default
//
// the flag is true when the default was stored
func (s *Settings) CheckSetStr(section string, name string, defaultValue string) (string, bool) {
	if value, exists := s.CheckStr(section, name); exists {
		return value, false
	}
	s.set(section, name, defaultValue)
	return defaultValue, true
}

// CheckSetLong - existing value, or store the default
func (s *Settings) CheckSetLong(section string, name string, defaultValue int64) (int64, bool) {
	if value, exists := s.CheckLong(section, name); exists {
		return value, false
	}
	s.set(section, name, defaultValue)
	return defaultValue, true
}

// CheckSetBool - existing value, or store the default
func (s *Settings) CheckSetBool(section string, name string, defaultValue bool) (bool, bool) {
	if value, exists := s.CheckBool(section, name); exists {
		return value, false
	}
	s.set(section, name, defaultValue)
	return defaultValue, true
}
