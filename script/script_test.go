// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/script"
)

func TestNullEngine(t *testing.T) {
	e := script.NullFactory()
	defer e.Close()

	assert.Nil(t, e.BindVariable("x", int64(1)), "bind")
	_, err := e.Evaluate("return 1")
	assert.Equal(t, fault.ScriptUnavailable, err, "evaluate")
}

func TestEvaluateArithmetic(t *testing.T) {
	e := script.NewLua(time.Second)
	defer e.Close()

	assert.Nil(t, e.BindVariable("amount", int64(40)), "bind")
	v, err := e.Evaluate("return amount * 2 + 2")
	assert.Nil(t, err, "evaluate")
	assert.Equal(t, int64(82), v, "result")

	v, err = e.Evaluate("return string.upper('abc')")
	assert.Nil(t, err, "evaluate")
	assert.Equal(t, "ABC", v, "string library")
}

func TestVariableReadBack(t *testing.T) {
	e := script.NewLua(time.Second)
	defer e.Close()

	assert.Nil(t, e.BindVariable("counter", int64(1)), "bind")
	_, err := e.Evaluate("counter = counter + 1")
	assert.Nil(t, err, "evaluate")

	v, err := e.Variable("counter")
	assert.Nil(t, err, "variable")
	assert.Equal(t, int64(2), v, "counter")
}

func TestSandbox(t *testing.T) {
	e := script.NewLua(time.Second)
	defer e.Close()

	for _, code := range []string{
		"return os.time()",
		"return io.read()",
		"dofile('/etc/passwd')",
		"return load('return 1')()",
		"return require('os')",
	} {
		_, err := e.Evaluate(code)
		assert.Equal(t, fault.ScriptFailed, err, code)
	}
}

func TestTimeout(t *testing.T) {
	e := script.NewLua(50 * time.Millisecond)
	defer e.Close()

	_, err := e.Evaluate("while true do end")
	assert.Equal(t, fault.ScriptFailed, err, "runaway script")
}

func TestBindFunction(t *testing.T) {
	e := script.NewLua(time.Second)
	defer e.Close()

	calls := 0
	err := e.BindFunction("add", func(arguments []script.Value) (script.Value, error) {
		calls += 1
		total := int64(0)
		for _, a := range arguments {
			n, ok := script.AsInt64(a)
			if !ok {
				return nil, errors.New("not a number")
			}
			total += n
		}
		return total, nil
	})
	assert.Nil(t, err, "bind function")

	v, err := e.Evaluate("return add(1, 2, 3)")
	assert.Nil(t, err, "evaluate")
	assert.Equal(t, int64(6), v, "sum")
	assert.Equal(t, 1, calls, "calls")

	_, err = e.Evaluate("return add('x')")
	assert.Equal(t, fault.ScriptFailed, err, "callback error")
}

func TestBindPartyAndAccount(t *testing.T) {
	e := script.NewLua(time.Second)
	defer e.Close()

	assert.Nil(t, e.BindParty(script.Party{Name: "buyer", NymID: "n1"}), "party")
	assert.Nil(t, e.BindAccount(script.Account{Name: "escrow", AccountID: "a1", InstrumentID: "i1"}), "account")

	v, err := e.Evaluate("return buyer.nym .. ':' .. escrow.id .. ':' .. escrow.instrument")
	assert.Nil(t, err, "evaluate")
	assert.Equal(t, "n1:a1:i1", v, "fields")
}

func TestEvaluateInto(t *testing.T) {
	e := script.NewLua(time.Second)
	defer e.Close()

	type result struct {
		Name  string `gluamapper:"name"`
		Count int    `gluamapper:"count"`
	}
	r := result{}
	err := e.EvaluateInto("return { name = 'x', count = 3 }", &r)
	assert.Nil(t, err, "evaluate into")
	assert.Equal(t, result{Name: "x", Count: 3}, r, "mapped")

	err = e.EvaluateInto("return 1", &r)
	assert.Equal(t, fault.ScriptFailed, err, "not a table")

	err = e.EvaluateInto("return {}", r)
	assert.Equal(t, fault.InvalidStructPointer, err, "not a pointer")
}

func TestSyntaxError(t *testing.T) {
	e := script.NewLua(time.Second)
	defer e.Close()

	_, err := e.Evaluate("return (")
	assert.Equal(t, fault.ScriptFailed, err, "syntax")
}
