// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settings

import (
	"time"
)

// section names
const (
	SectionCron        = "cron"
	SectionLedger      = "ledger"
	SectionScript      = "script"
	SectionPermissions = "permissions"
)

// defaults
const (
	DefaultRefillAmount       = 20
	DefaultMaximumItemsPerNym = 10
	DefaultHeartbeat          = 10 * time.Second
	DefaultMaximumBoxSize     = 1000
	DefaultScriptTimeout      = 2 * time.Second
)

// Server - notary wide settings
type Server struct {
	RefillAmount       int
	MaximumItemsPerNym int
	Heartbeat          time.Duration
	MaximumBoxSize     int
	ScriptEnabled      bool
	ScriptTimeout      time.Duration
	OverrideNymID      string

	// command name → allowed
	permissions map[string]bool
}

// LoadServer - read server settings storing defaults for missing keys
//
// the file is saved if any default was written
func LoadServer(s *Settings, commands []string) (*Server, error) {
	dirty := false
	mark := func(wrote bool) {
		dirty = dirty || wrote
	}

	refill, wrote := s.CheckSetLong(SectionCron, "refill_amount", DefaultRefillAmount)
	mark(wrote)
	maximum, wrote := s.CheckSetLong(SectionCron, "max_items_per_nym", DefaultMaximumItemsPerNym)
	mark(wrote)
	heartbeat, wrote := s.CheckSetLong(SectionCron, "heartbeat_seconds", int64(DefaultHeartbeat/time.Second))
	mark(wrote)
	boxSize, wrote := s.CheckSetLong(SectionLedger, "max_box_size", DefaultMaximumBoxSize)
	mark(wrote)
	scriptEnabled, wrote := s.CheckSetBool(SectionScript, "enabled", true)
	mark(wrote)
	scriptTimeout, wrote := s.CheckSetLong(SectionScript, "timeout_ms", int64(DefaultScriptTimeout/time.Millisecond))
	mark(wrote)
	override, wrote := s.CheckSetStr(SectionPermissions, "override_nym", "")
	mark(wrote)

	server := &Server{
		RefillAmount:       positive(refill, DefaultRefillAmount),
		MaximumItemsPerNym: positive(maximum, DefaultMaximumItemsPerNym),
		Heartbeat:          time.Duration(positive(heartbeat, int64(DefaultHeartbeat/time.Second))) * time.Second,
		MaximumBoxSize:     positive(boxSize, DefaultMaximumBoxSize),
		ScriptEnabled:      scriptEnabled,
		ScriptTimeout:      time.Duration(positive(scriptTimeout, int64(DefaultScriptTimeout/time.Millisecond))) * time.Millisecond,
		OverrideNymID:      override,
		permissions:        make(map[string]bool),
	}

	enabled, wrote := s.CheckSetBool(SectionPermissions, "admin_only", false)
	mark(wrote)
	for _, command := range commands {
		allowed, wrote := s.CheckSetBool(SectionPermissions, "cmd_"+command, true)
		mark(wrote)
		server.permissions[command] = allowed && !enabled
	}

	if dirty {
		if err := s.Save(); nil != err {
			return nil, err
		}
	}
	return server, nil
}

func positive(value int64, defaultValue int64) int {
	if value <= 0 {
		return int(defaultValue)
	}
	return int(value)
}

// IsAllowed - whether a nym may run a command
//
// the override nym may run anything, unknown commands are refused
func (s *Server) IsAllowed(command string, nymID string) bool {
	if "" != s.OverrideNymID && nymID == s.OverrideNymID {
		return true
	}
	return s.permissions[command]
}
