// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package script - interpreters for smart contract clauses
//
// The notary runs clauses through an Engine. The default NullEngine
// refuses to run anything; the Lua engine runs clauses in a sandbox
// holding only the base, string, math and table libraries.
package script

import (
	"github.com/wigggles/opentxs-sub024/fault"
)

// Value - a script value: int64, string, bool or nil
type Value interface{}

// Function - a Go callback published to scripts
type Function func(arguments []Value) (Value, error)

// Party - a party to a contract as seen by scripts
type Party struct {
	Name  string
	NymID string
}

// Account - a contract account as seen by scripts
type Account struct {
	Name         string
	AccountID    string
	InstrumentID string
}

// Engine - a clause interpreter
type Engine interface {
	BindVariable(name string, value Value) error
	Variable(name string) (Value, error)
	BindParty(party Party) error
	BindAccount(account Account) error
	BindFunction(name string, f Function) error
	Evaluate(code string) (Value, error)
	EvaluateInto(code string, result interface{}) error
	Close()
}

// NullEngine - accepts bindings, runs nothing
type NullEngine struct{}

// BindVariable - for Engine
func (NullEngine) BindVariable(string, Value) error { return nil }

// Variable - for Engine
func (NullEngine) Variable(string) (Value, error) { return nil, fault.ScriptUnavailable }

// BindParty - for Engine
func (NullEngine) BindParty(Party) error { return nil }

// BindAccount - for Engine
func (NullEngine) BindAccount(Account) error { return nil }

// BindFunction - for Engine
func (NullEngine) BindFunction(string, Function) error { return nil }

// Evaluate - for Engine
func (NullEngine) Evaluate(string) (Value, error) { return nil, fault.ScriptUnavailable }

// EvaluateInto - for Engine
func (NullEngine) EvaluateInto(string, interface{}) error { return fault.ScriptUnavailable }

// Close - for Engine
func (NullEngine) Close() {}

// Factory - creates a fresh engine for each clause run
type Factory func() Engine

// NullFactory - engines that run nothing
func NullFactory() Engine {
	return NullEngine{}
}

// AsInt64 - numeric script value
func AsInt64(v Value) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// AsString - string script value
func AsString(v Value) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsBool - boolean script value, nil counts as false
func AsBool(v Value) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case nil:
		return false, true
	default:
		return false, false
	}
}
