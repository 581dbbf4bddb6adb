// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package smartcontract

import (
	"strconv"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/script"
)

// HookCronProcess - clauses run on every cron tick
const HookCronProcess = "cron_process"

// VariableType - the script type of a variable
type VariableType string

// variable types
const (
	TypeInteger VariableType = "integer"
	TypeString  VariableType = "string"
	TypeBool    VariableType = "bool"
)

// Access - who may change a variable
type Access string

// access levels, constants cannot be set by clauses; a change to an
// important variable is reported to every party
const (
	Constant   Access = "constant"
	Persistent Access = "persistent"
	Important  Access = "important"
)

// Party - a signer of the contract
type Party struct {
	Name          string
	NymID         identifier.Identifier
	OpeningNumber int64
}

// Account - an account a party brings to the contract
type Account struct {
	Name          string
	Party         string
	AccountID     identifier.Identifier
	InstrumentID  identifier.Identifier
	ClosingNumber int64
}

// Variable - bylaw state visible to clauses
type Variable struct {
	Name   string
	Type   VariableType
	Access Access
	Value  script.Value
}

// Clause - script code
type Clause struct {
	Name string
	Code string
}

// Hook - run a clause on an event
type Hook struct {
	Name   string
	Clause string
}

// conform - the value converted to the variable's type
func conform(t VariableType, value script.Value) (script.Value, error) {
	switch t {
	case TypeInteger:
		if n, ok := script.AsInt64(value); ok {
			return n, nil
		}
	case TypeString:
		if s, ok := script.AsString(value); ok {
			return s, nil
		}
	case TypeBool:
		if b, ok := script.AsBool(value); ok {
			return b, nil
		}
	}
	return nil, fault.VariableTypeMismatch
}

func formatValue(t VariableType, value script.Value) string {
	switch t {
	case TypeInteger:
		n, _ := script.AsInt64(value)
		return strconv.FormatInt(n, 10)
	case TypeBool:
		b, _ := script.AsBool(value)
		return strconv.FormatBool(b)
	default:
		s, _ := script.AsString(value)
		return s
	}
}

func parseValue(t VariableType, text string) (script.Value, error) {
	switch t {
	case TypeInteger:
		n, err := strconv.ParseInt(text, 10, 64)
		if nil != err {
			return nil, fault.VariableTypeMismatch
		}
		return n, nil
	case TypeBool:
		b, err := strconv.ParseBool(text)
		if nil != err {
			return nil, fault.VariableTypeMismatch
		}
		return b, nil
	case TypeString:
		return text, nil
	default:
		return nil, fault.VariableTypeMismatch
	}
}
