// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package smartcontract

import (
	"encoding/xml"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/cron"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/ledger"
	"github.com/wigggles/opentxs-sub024/script"
)

// Kind - for cron.Item
func (s *SmartContract) Kind() string {
	return ItemKind
}

// Number - the activator's opening number
func (s *SmartContract) Number() int64 {
	p, err := s.Party(s.ActivatorParty)
	if nil != err {
		return 0
	}
	return p.OpeningNumber
}

// Originator - the activating party's nym
func (s *SmartContract) Originator() identifier.Identifier {
	p, err := s.Party(s.ActivatorParty)
	if nil != err {
		return identifier.Zero
	}
	return p.NymID
}

// CanCancel - any party may end the contract
func (s *SmartContract) CanCancel(nymID identifier.Identifier) bool {
	for _, p := range s.Parties {
		if nymID == p.NymID {
			return true
		}
	}
	return false
}

// Closings - each account's closing number plus the opening number
// of its party
func (s *SmartContract) Closings() []cron.Closing {
	result := make([]cron.Closing, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		p, err := s.Party(a.Party)
		if nil != err {
			continue
		}
		result = append(result, cron.Closing{
			NymID:         p.NymID,
			AccountID:     a.AccountID,
			OpeningNumber: p.OpeningNumber,
			ClosingNumber: a.ClosingNumber,
		})
	}
	return result
}

// Process - run the cron_process clauses
func (s *SmartContract) Process(ctx cron.Context) (bool, error) {
	now := ctx.Now()
	if now.Before(s.ValidFrom) {
		return true, nil
	}
	if !s.ValidTo.IsZero() && now.After(s.ValidTo) {
		return false, nil
	}
	for _, h := range s.Hooks {
		if HookCronProcess != h.Name {
			continue
		}
		if err := s.RunClause(ctx, h.Clause); nil != err {
			return !s.deactivated, err
		}
		if s.deactivated {
			break
		}
	}
	return !s.deactivated, nil
}

func (s *SmartContract) clause(name string) (Clause, error) {
	for _, c := range s.Clauses {
		if name == c.Name {
			return c, nil
		}
	}
	return Clause{}, fault.ClauseNotFound
}

// RunClause - evaluate one clause in a fresh engine
func (s *SmartContract) RunClause(ctx cron.Context, name string) error {
	c, err := s.clause(name)
	if nil != err {
		return err
	}
	e := s.engines()
	defer e.Close()

	if err := s.bind(ctx, e); nil != err {
		return err
	}
	_, err = e.Evaluate(c.Code)
	return err
}

func (s *SmartContract) bind(ctx cron.Context, e script.Engine) error {
	for _, v := range s.Variables {
		if err := e.BindVariable(v.Name, v.Value); nil != err {
			return err
		}
	}
	for _, p := range s.Parties {
		if err := e.BindParty(script.Party{Name: p.Name, NymID: p.NymID.String()}); nil != err {
			return err
		}
	}
	for _, a := range s.Accounts {
		err := e.BindAccount(script.Account{
			Name:         a.Name,
			AccountID:    a.AccountID.String(),
			InstrumentID: a.InstrumentID.String(),
		})
		if nil != err {
			return err
		}
	}

	callbacks := map[string]script.Function{
		"move_funds": func(arguments []script.Value) (script.Value, error) {
			if 3 != len(arguments) {
				return nil, fault.MissingParameters
			}
			from, ok1 := script.AsString(arguments[0])
			to, ok2 := script.AsString(arguments[1])
			amount, ok3 := script.AsInt64(arguments[2])
			if !ok1 || !ok2 || !ok3 {
				return nil, fault.VariableTypeMismatch
			}
			err := s.moveFunds(ctx, from, to, amount)
			if nil != err && !fault.IsErrPolicy(err) && fault.InvalidAmount != err {
				return nil, err
			}
			return nil == err, nil
		},
		"deactivate_contract": func([]script.Value) (script.Value, error) {
			s.deactivated = true
			return nil, nil
		},
		"get_current_time": func([]script.Value) (script.Value, error) {
			return ctx.Now().Unix(), nil
		},
		"get_variable": func(arguments []script.Value) (script.Value, error) {
			if 1 != len(arguments) {
				return nil, fault.MissingParameters
			}
			name, ok := script.AsString(arguments[0])
			if !ok {
				return nil, fault.VariableTypeMismatch
			}
			v, err := s.Variable(name)
			if nil != err {
				return nil, err
			}
			return v.Value, nil
		},
		"set_variable": func(arguments []script.Value) (script.Value, error) {
			if 2 != len(arguments) {
				return nil, fault.MissingParameters
			}
			name, ok := script.AsString(arguments[0])
			if !ok {
				return nil, fault.VariableTypeMismatch
			}
			return nil, s.SetVariable(name, arguments[1])
		},
	}
	for name, f := range callbacks {
		if err := e.BindFunction(name, f); nil != err {
			return err
		}
	}
	return nil
}

// moveFunds - between two contract accounts, account names first then
// the account identifier text are accepted
func (s *SmartContract) moveFunds(ctx cron.Context, fromName string, toName string, amount int64) error {
	if amount <= 0 {
		return fault.InvalidAmount
	}
	from, err := s.side(fromName)
	if nil != err {
		return err
	}
	to, err := s.side(toName)
	if nil != err {
		return err
	}
	return ctx.MoveFunds(cron.Movement{
		Item:        s,
		ReceiptType: ledger.TxPaymentReceipt,
		Moves: []cron.Move{
			{
				From:   from,
				To:     to,
				Amount: amount,
			},
		},
		Note: "smart contract",
	})
}

func (s *SmartContract) side(name string) (cron.Side, error) {
	for _, a := range s.Accounts {
		if name != a.Name && name != a.AccountID.String() {
			continue
		}
		p, err := s.Party(a.Party)
		if nil != err {
			return cron.Side{}, err
		}
		return cron.Side{
			NymID:         p.NymID,
			AccountID:     a.AccountID,
			InReferenceTo: p.OpeningNumber,
			ClosingNumber: a.ClosingNumber,
		}, nil
	}
	return cron.Side{}, fault.ContractAccountNotFound
}

type contractState struct {
	XMLName     xml.Name       `xml:"smartContractState"`
	Deactivated bool           `xml:"deactivated,attr"`
	Variables   []variableBody `xml:"variable"`
	Contract    string         `xml:"contract"`
}

// Marshal - signed contract plus current variable values
func (s *SmartContract) Marshal() ([]byte, error) {
	return xml.Marshal(contractState{
		Deactivated: s.deactivated,
		Variables:   s.variableBodies(),
		Contract:    armor.EncodeData(armor.LabelCronItem, s.Contract.RawFile()),
	})
}

// Decoder - cron decoder running clauses in the given engines
func Decoder(engines script.Factory) cron.Decoder {
	return func(data []byte) (cron.Item, error) {
		state := contractState{}
		if err := xml.Unmarshal(data, &state); nil != err {
			return nil, fault.InvalidContents
		}
		raw, err := armor.DecodeData(state.Contract, armor.LabelCronItem)
		if nil != err {
			return nil, err
		}
		s, err := Parse(raw, engines)
		if nil != err {
			return nil, err
		}
		variables, err := parseVariables(state.Variables)
		if nil != err {
			return nil, err
		}
		if len(variables) != len(s.Variables) {
			return nil, fault.InvalidSmartContract
		}
		for i, v := range variables {
			if v.Name != s.Variables[i].Name || v.Type != s.Variables[i].Type {
				return nil, fault.InvalidSmartContract
			}
			s.Variables[i].Value = v.Value
		}
		s.deactivated = state.Deactivated
		return s, nil
	}
}
