// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package smartcontract_test

import (
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/cron"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/mocks"
	"github.com/wigggles/opentxs-sub024/nym"
	"github.com/wigggles/opentxs-sub024/script"
	"github.com/wigggles/opentxs-sub024/smartcontract"
)

var (
	created = time.Unix(1600000000, 0).UTC()
	dollars = identifier.FromData([]byte("dollars"))
)

const escrow = `
local count = get_variable("count") + 1
set_variable("count", count)
if count >= 3 then
  if move_funds("buyer_account", "seller_account", get_variable("price")) then
    deactivate_contract()
  end
end
`

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func newNym(t *testing.T, alias string) *nym.Nym {
	e := crypto.NewEngine()
	masterKey, err := keypair.CreateCachedKey(e, crypto.FastKDF, keypair.StaticPassword("password"), time.Minute)
	if nil != err {
		t.Fatalf("create master key error: %s", err)
	}
	n, err := nym.Create(e, masterKey, crypto.ED25519, alias)
	if nil != err {
		t.Fatalf("create nym error: %s", err)
	}
	return n
}

func newContract(engines script.Factory, buyer identifier.Identifier, seller identifier.Identifier, code string) *smartcontract.SmartContract {
	s := smartcontract.New(engines)
	s.NotaryID = identifier.FromData([]byte("notary"))
	s.ActivatorParty = "buyer"
	s.CreationDate = created
	s.ValidFrom = created
	s.Parties = []smartcontract.Party{
		{Name: "buyer", NymID: buyer, OpeningNumber: 10},
		{Name: "seller", NymID: seller, OpeningNumber: 20},
	}
	s.Accounts = []smartcontract.Account{
		{
			Name:          "buyer_account",
			Party:         "buyer",
			AccountID:     identifier.FromData([]byte("buyer account")),
			InstrumentID:  dollars,
			ClosingNumber: 11,
		},
		{
			Name:          "seller_account",
			Party:         "seller",
			AccountID:     identifier.FromData([]byte("seller account")),
			InstrumentID:  dollars,
			ClosingNumber: 21,
		},
	}
	s.Variables = []smartcontract.Variable{
		{Name: "count", Type: smartcontract.TypeInteger, Access: smartcontract.Persistent, Value: int64(0)},
		{Name: "price", Type: smartcontract.TypeInteger, Access: smartcontract.Constant, Value: int64(250)},
		{Name: "memo", Type: smartcontract.TypeString, Access: smartcontract.Important, Value: "widgets"},
	}
	s.Clauses = []smartcontract.Clause{
		{Name: "tick", Code: code},
	}
	s.Hooks = []smartcontract.Hook{
		{Name: smartcontract.HookCronProcess, Clause: "tick"},
	}
	return s
}

func at(ctl *gomock.Controller, now time.Time) *mocks.MockContext {
	ctx := mocks.NewMockContext(ctl)
	ctx.EXPECT().Now().Return(now).AnyTimes()
	return ctx
}

func TestValidate(t *testing.T) {
	buyer := identifier.FromData([]byte("buyer"))
	seller := identifier.FromData([]byte("seller"))

	s := newContract(nil, buyer, seller, escrow)
	assert.Nil(t, s.Validate(), "valid")

	s.ActivatorParty = "nobody"
	assert.Equal(t, fault.InvalidSmartContract, s.Validate(), "unknown activator")

	s = newContract(nil, buyer, seller, escrow)
	s.Accounts[1].ClosingNumber = 10
	assert.Equal(t, fault.InvalidSmartContract, s.Validate(), "reused number")

	s = newContract(nil, buyer, seller, escrow)
	s.Hooks[0].Clause = "missing"
	assert.Equal(t, fault.ClauseNotFound, s.Validate(), "hook to missing clause")

	s = newContract(nil, buyer, seller, escrow)
	s.Variables[0].Value = "zero"
	assert.Equal(t, fault.VariableTypeMismatch, s.Validate(), "bad variable value")
}

func TestSignedByAllParties(t *testing.T) {
	buyer := newNym(t, "buyer")
	seller := newNym(t, "seller")
	nyms := map[identifier.Identifier]*nym.Nym{
		buyer.ID():  buyer,
		seller.ID(): seller,
	}
	lookup := func(id identifier.Identifier) (contract.Verifier, error) {
		n, ok := nyms[id]
		if !ok {
			return nil, fault.NymNotFound
		}
		return n, nil
	}

	s := newContract(nil, buyer.ID(), seller.ID(), escrow)
	assert.Nil(t, s.Create(buyer), "create")
	assert.NotNil(t, s.VerifyParties(lookup), "seller missing")
	assert.Nil(t, s.SignByParty(seller), "seller signs")
	assert.Nil(t, s.VerifyParties(lookup), "all signed")

	parsed, err := smartcontract.Parse(s.Contract.RawFile(), nil)
	assert.Nil(t, err, "parse")
	assert.Nil(t, parsed.VerifyParties(lookup), "parsed signatures")
	assert.Equal(t, int64(10), parsed.Number(), "activator number")
	assert.Equal(t, buyer.ID(), parsed.Originator(), "originator")
	assert.Equal(t, 2, len(parsed.Closings()), "closings")
	assert.True(t, parsed.CanCancel(seller.ID()), "party may cancel")
}

func TestCronProcessHook(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	buyer := identifier.FromData([]byte("buyer"))
	seller := identifier.FromData([]byte("seller"))
	s := newContract(script.LuaFactory(time.Second), buyer, seller, escrow)

	ctx := at(ctl, created)
	ctx.EXPECT().MoveFunds(gomock.Any()).DoAndReturn(func(m cron.Movement) error {
		assert.Equal(t, 1, len(m.Moves), "moves")
		move := m.Moves[0]
		assert.Equal(t, int64(250), move.Amount, "amount")
		assert.Equal(t, buyer, move.From.NymID, "from nym")
		assert.Equal(t, int64(10), move.From.InReferenceTo, "buyer opening")
		assert.Equal(t, int64(21), move.To.ClosingNumber, "seller closing")
		return nil
	})

	for i := 1; i <= 2; i += 1 {
		more, err := s.Process(ctx)
		assert.Nil(t, err, "tick")
		assert.True(t, more, "active")
	}
	more, err := s.Process(ctx)
	assert.Nil(t, err, "tick 3")
	assert.False(t, more, "deactivated")
	assert.True(t, s.IsDeactivated(), "deactivated flag")

	v, err := s.Variable("count")
	assert.Nil(t, err, "variable")
	assert.Equal(t, int64(3), v.Value, "count")
}

func TestMoveFundsFailureIsReported(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	code := `
if not move_funds("buyer_account", "seller_account", 5) then
  set_variable("memo", "unpaid")
end
`
	s := newContract(script.LuaFactory(time.Second), identifier.FromData([]byte("b")), identifier.FromData([]byte("s")), code)
	ctx := at(ctl, created)
	ctx.EXPECT().MoveFunds(gomock.Any()).Return(fault.InsufficientFunds)

	more, err := s.Process(ctx)
	assert.Nil(t, err, "script continues")
	assert.True(t, more, "active")
	v, _ := s.Variable("memo")
	assert.Equal(t, "unpaid", v.Value, "memo")
}

func TestConstantCannotBeSet(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	s := newContract(script.LuaFactory(time.Second), identifier.FromData([]byte("b")), identifier.FromData([]byte("s")), `set_variable("price", 1)`)
	_, err := s.Process(at(ctl, created))
	assert.Equal(t, fault.ScriptFailed, err, "constant")

	v, _ := s.Variable("price")
	assert.Equal(t, int64(250), v.Value, "unchanged")
	assert.Equal(t, fault.VariableIsConstant, s.SetVariable("price", int64(1)), "direct set")
	assert.Equal(t, fault.VariableTypeMismatch, s.SetVariable("count", "x"), "type")
	assert.Equal(t, fault.VariableNotFound, s.SetVariable("nothing", int64(1)), "missing")
}

func TestCurrentTime(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	code := `set_variable("count", get_current_time())`
	s := newContract(script.LuaFactory(time.Second), identifier.FromData([]byte("b")), identifier.FromData([]byte("s")), code)
	_, err := s.Process(at(ctl, created))
	assert.Nil(t, err, "process")
	v, _ := s.Variable("count")
	assert.Equal(t, created.Unix(), v.Value, "time")
}

func TestNullEngine(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	s := newContract(nil, identifier.FromData([]byte("b")), identifier.FromData([]byte("s")), escrow)
	more, err := s.Process(at(ctl, created))
	assert.Equal(t, fault.ScriptUnavailable, err, "no engine")
	assert.True(t, more, "still active")
}

func TestDecoderKeepsState(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	buyer := newNym(t, "buyer")
	engines := script.LuaFactory(time.Second)
	s := newContract(engines, buyer.ID(), identifier.FromData([]byte("s")), escrow)
	assert.Nil(t, s.Create(buyer), "create")
	id := s.Contract.ID()

	_, err := s.Process(at(ctl, created))
	assert.Nil(t, err, "process")

	data, err := s.Marshal()
	assert.Nil(t, err, "marshal")
	item, err := smartcontract.Decoder(engines)(data)
	assert.Nil(t, err, "decode")

	decoded := item.(*smartcontract.SmartContract)
	assert.Equal(t, id, decoded.Contract.ID(), "signed body unchanged")
	assert.Nil(t, decoded.Contract.VerifySignature(buyer, buyer.ID()), "signature still valid")
	v, _ := decoded.Variable("count")
	assert.Equal(t, int64(1), v.Value, "variable state")
}
