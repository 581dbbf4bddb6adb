// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"context"
	"reflect"
	"time"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/wigggles/opentxs-sub024/fault"
)

// DefaultTimeout - longest a single evaluation may run
const DefaultTimeout = 2 * time.Second

// base library functions that reach outside the sandbox
var unsafeGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
	"collectgarbage",
	"print",
}

// LuaEngine - sandboxed Lua interpreter
type LuaEngine struct {
	state   *lua.LState
	timeout time.Duration
}

// NewLua - fresh sandbox
func NewLua(timeout time.Duration) *LuaEngine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
		{lua.TabLibName, lua.OpenTable},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return &LuaEngine{
		state:   L,
		timeout: timeout,
	}
}

// LuaFactory - Factory producing Lua engines
func LuaFactory(timeout time.Duration) Factory {
	return func() Engine {
		return NewLua(timeout)
	}
}

// BindVariable - publish a global
func (e *LuaEngine) BindVariable(name string, value Value) error {
	v, err := toLua(value)
	if nil != err {
		return err
	}
	e.state.SetGlobal(name, v)
	return nil
}

// Variable - read back a global
func (e *LuaEngine) Variable(name string) (Value, error) {
	return fromLua(e.state.GetGlobal(name))
}

// BindParty - publish a party table under its name
func (e *LuaEngine) BindParty(party Party) error {
	t := e.state.NewTable()
	t.RawSetString("name", lua.LString(party.Name))
	t.RawSetString("nym", lua.LString(party.NymID))
	e.state.SetGlobal(party.Name, t)
	return nil
}

// BindAccount - publish an account table under its name
func (e *LuaEngine) BindAccount(account Account) error {
	t := e.state.NewTable()
	t.RawSetString("name", lua.LString(account.Name))
	t.RawSetString("id", lua.LString(account.AccountID))
	t.RawSetString("instrument", lua.LString(account.InstrumentID))
	e.state.SetGlobal(account.Name, t)
	return nil
}

// BindFunction - publish a Go callback
//
// a callback error aborts the evaluation
func (e *LuaEngine) BindFunction(name string, f Function) error {
	e.state.SetGlobal(name, e.state.NewFunction(func(L *lua.LState) int {
		count := L.GetTop()
		arguments := make([]Value, 0, count)
		for i := 1; i <= count; i += 1 {
			v, err := fromLua(L.Get(i))
			if nil != err {
				L.RaiseError("%s: argument %d: %s", name, i, err)
				return 0
			}
			arguments = append(arguments, v)
		}
		result, err := f(arguments)
		if nil != err {
			L.RaiseError("%s: %s", name, err)
			return 0
		}
		v, err := toLua(result)
		if nil != err {
			L.RaiseError("%s: result: %s", name, err)
			return 0
		}
		L.Push(v)
		return 1
	}))
	return nil
}

// run code and return its first result
func (e *LuaEngine) run(code string) (lua.LValue, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	e.state.SetContext(ctx)
	defer e.state.RemoveContext()

	top := e.state.GetTop()
	fn, err := e.state.LoadString(code)
	if nil != err {
		return nil, fault.ScriptFailed
	}
	e.state.Push(fn)
	if err := e.state.PCall(0, 1, nil); nil != err {
		e.state.SetTop(top)
		return nil, fault.ScriptFailed
	}
	v := e.state.Get(-1)
	e.state.SetTop(top)
	return v, nil
}

// Evaluate - run a chunk, its return value is the result
func (e *LuaEngine) Evaluate(code string) (Value, error) {
	v, err := e.run(code)
	if nil != err {
		return nil, err
	}
	return fromLua(v)
}

// EvaluateInto - run a chunk returning a table and map the table
// onto a structure
func (e *LuaEngine) EvaluateInto(code string, result interface{}) error {
	rv := reflect.ValueOf(result)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fault.InvalidStructPointer
	}
	v, err := e.run(code)
	if nil != err {
		return err
	}
	table, ok := v.(*lua.LTable)
	if !ok {
		return fault.ScriptFailed
	}
	mapper := gluamapper.Mapper{
		Option: gluamapper.Option{
			NameFunc: func(s string) string {
				return s
			},
			TagName: "gluamapper",
		},
	}
	return mapper.Map(table, result)
}

// Close - release the interpreter
func (e *LuaEngine) Close() {
	e.state.Close()
}

func toLua(value Value) (lua.LValue, error) {
	switch v := value.(type) {
	case nil:
		return lua.LNil, nil
	case int64:
		return lua.LNumber(v), nil
	case int:
		return lua.LNumber(v), nil
	case string:
		return lua.LString(v), nil
	case bool:
		return lua.LBool(v), nil
	default:
		return nil, fault.InvalidContents
	}
}

func fromLua(value lua.LValue) (Value, error) {
	switch v := value.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f), nil
		}
		return f, nil
	case lua.LString:
		return string(v), nil
	case lua.LBool:
		return bool(v), nil
	default:
		return nil, fault.InvalidContents
	}
}
