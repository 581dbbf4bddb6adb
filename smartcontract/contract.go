// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package smartcontract - scripted agreements between parties
//
// A smart contract names parties, the accounts they bring, typed
// bylaw variables and clauses. Every party signs it. The activating
// party's opening number is the cron number and on each tick the
// clauses hooked to cron_process run in a fresh script engine with
// these callbacks:
//
//   move_funds(from, to, amount)    -> bool
//   deactivate_contract()
//   get_current_time()              -> seconds
//   get_variable(name)              -> value
//   set_variable(name, value)
package smartcontract

import (
	"encoding/xml"
	"time"

	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/script"
)

// ItemKind - cron decoder key for smart contracts
const ItemKind = "smartContract"

// SmartContract - the agreement and its state
type SmartContract struct {
	Contract       *contract.Contract
	NotaryID       identifier.Identifier
	ActivatorParty string
	Parties        []Party
	Accounts       []Account
	Variables      []Variable
	Clauses        []Clause
	Hooks          []Hook
	CreationDate   time.Time
	ValidFrom      time.Time
	ValidTo        time.Time

	engines     script.Factory
	deactivated bool
}

type partyBody struct {
	Name          string `xml:"name,attr"`
	NymID         string `xml:"nymID,attr"`
	OpeningNumber int64  `xml:"openingTransNo,attr"`
}

type accountBody struct {
	Name          string `xml:"name,attr"`
	Party         string `xml:"party,attr"`
	AccountID     string `xml:"acctID,attr"`
	InstrumentID  string `xml:"instrumentDefinitionID,attr"`
	ClosingNumber int64  `xml:"closingTransNo,attr"`
}

type variableBody struct {
	Name   string `xml:"name,attr"`
	Type   string `xml:"type,attr"`
	Access string `xml:"access,attr"`
	Value  string `xml:"value,attr"`
}

type clauseBody struct {
	Name string `xml:"name,attr"`
	Code string `xml:",chardata"`
}

type hookBody struct {
	Name   string `xml:"name,attr"`
	Clause string `xml:"clause,attr"`
}

type contractBody struct {
	XMLName        xml.Name       `xml:"smartContract"`
	Version        int            `xml:"version,attr"`
	NotaryID       string         `xml:"notaryID,attr"`
	ActivatorParty string         `xml:"activatorParty,attr"`
	CreationDate   int64          `xml:"creationDate,attr"`
	ValidFrom      int64          `xml:"validFrom,attr"`
	ValidTo        int64          `xml:"validTo,attr"`
	Parties        []partyBody    `xml:"party"`
	Accounts       []accountBody  `xml:"account"`
	Variables      []variableBody `xml:"variable"`
	Clauses        []clauseBody   `xml:"clause"`
	Hooks          []hookBody     `xml:"hook"`
}

// New - empty contract using the given engines for its clauses
func New(engines script.Factory) *SmartContract {
	if nil == engines {
		engines = script.NullFactory
	}
	return &SmartContract{
		Contract: contract.New(contract.KindCronItem, contract.HashOfContents),
		engines:  engines,
	}
}

// ContractKind - for contract.Contents
func (s *SmartContract) ContractKind() contract.Kind {
	return contract.KindCronItem
}

// UpdateContents - for contract.Contents
//
// variables are written with their current values
func (s *SmartContract) UpdateContents() ([]byte, error) {
	if err := s.Validate(); nil != err {
		return nil, err
	}
	body := contractBody{
		Version:        contract.DocumentVersion,
		NotaryID:       s.NotaryID.String(),
		ActivatorParty: s.ActivatorParty,
		CreationDate:   s.CreationDate.Unix(),
		ValidFrom:      s.ValidFrom.Unix(),
	}
	if !s.ValidTo.IsZero() {
		body.ValidTo = s.ValidTo.Unix()
	}
	for _, p := range s.Parties {
		body.Parties = append(body.Parties, partyBody{
			Name:          p.Name,
			NymID:         p.NymID.String(),
			OpeningNumber: p.OpeningNumber,
		})
	}
	for _, a := range s.Accounts {
		body.Accounts = append(body.Accounts, accountBody{
			Name:          a.Name,
			Party:         a.Party,
			AccountID:     a.AccountID.String(),
			InstrumentID:  a.InstrumentID.String(),
			ClosingNumber: a.ClosingNumber,
		})
	}
	body.Variables = s.variableBodies()
	for _, c := range s.Clauses {
		body.Clauses = append(body.Clauses, clauseBody{
			Name: c.Name,
			Code: c.Code,
		})
	}
	for _, h := range s.Hooks {
		body.Hooks = append(body.Hooks, hookBody{
			Name:   h.Name,
			Clause: h.Clause,
		})
	}
	return contract.MarshalBody(body)
}

func (s *SmartContract) variableBodies() []variableBody {
	result := make([]variableBody, 0, len(s.Variables))
	for _, v := range s.Variables {
		result = append(result, variableBody{
			Name:   v.Name,
			Type:   string(v.Type),
			Access: string(v.Access),
			Value:  formatValue(v.Type, v.Value),
		})
	}
	return result
}

func parseVariables(bodies []variableBody) ([]Variable, error) {
	result := make([]Variable, 0, len(bodies))
	for _, v := range bodies {
		value, err := parseValue(VariableType(v.Type), v.Value)
		if nil != err {
			return nil, err
		}
		result = append(result, Variable{
			Name:   v.Name,
			Type:   VariableType(v.Type),
			Access: Access(v.Access),
			Value:  value,
		})
	}
	return result, nil
}

// ParseContents - for contract.Contents
func (s *SmartContract) ParseContents(unsigned []byte) error {
	body := contractBody{}
	if err := contract.UnmarshalBody(unsigned, &body); nil != err {
		return err
	}
	if err := contract.CheckVersion(body.Version); nil != err {
		return err
	}
	notaryID, err := identifier.FromString(body.NotaryID)
	if nil != err {
		return err
	}
	s.NotaryID = notaryID
	s.ActivatorParty = body.ActivatorParty
	s.CreationDate = time.Unix(body.CreationDate, 0).UTC()
	s.ValidFrom = time.Unix(body.ValidFrom, 0).UTC()
	s.ValidTo = time.Time{}
	if body.ValidTo > 0 {
		s.ValidTo = time.Unix(body.ValidTo, 0).UTC()
	}

	s.Parties = nil
	for _, p := range body.Parties {
		nymID, err := identifier.FromString(p.NymID)
		if nil != err {
			return err
		}
		s.Parties = append(s.Parties, Party{
			Name:          p.Name,
			NymID:         nymID,
			OpeningNumber: p.OpeningNumber,
		})
	}
	s.Accounts = nil
	for _, a := range body.Accounts {
		accountID, err := identifier.FromString(a.AccountID)
		if nil != err {
			return err
		}
		instrumentID, err := identifier.FromString(a.InstrumentID)
		if nil != err {
			return err
		}
		s.Accounts = append(s.Accounts, Account{
			Name:          a.Name,
			Party:         a.Party,
			AccountID:     accountID,
			InstrumentID:  instrumentID,
			ClosingNumber: a.ClosingNumber,
		})
	}
	s.Variables, err = parseVariables(body.Variables)
	if nil != err {
		return err
	}
	s.Clauses = nil
	for _, c := range body.Clauses {
		s.Clauses = append(s.Clauses, Clause{
			Name: c.Name,
			Code: c.Code,
		})
	}
	s.Hooks = nil
	for _, h := range body.Hooks {
		s.Hooks = append(s.Hooks, Hook{
			Name:   h.Name,
			Clause: h.Clause,
		})
	}
	return s.Validate()
}

// Validate - names are unique and every reference resolves
func (s *SmartContract) Validate() error {
	if 0 == len(s.Parties) {
		return fault.InvalidSmartContract
	}
	parties := make(map[string]struct{})
	numbers := make(map[int64]struct{})
	number := func(n int64) bool {
		if n <= 0 {
			return false
		}
		if _, ok := numbers[n]; ok {
			return false
		}
		numbers[n] = struct{}{}
		return true
	}
	for _, p := range s.Parties {
		if _, ok := parties[p.Name]; ok || "" == p.Name || p.NymID.IsZero() || !number(p.OpeningNumber) {
			return fault.InvalidSmartContract
		}
		parties[p.Name] = struct{}{}
	}
	if _, ok := parties[s.ActivatorParty]; !ok {
		return fault.InvalidSmartContract
	}

	names := make(map[string]struct{})
	unique := func(name string) bool {
		if "" == name {
			return false
		}
		if _, ok := names[name]; ok {
			return false
		}
		names[name] = struct{}{}
		return true
	}
	for name := range parties {
		names[name] = struct{}{}
	}
	for _, a := range s.Accounts {
		if _, ok := parties[a.Party]; !ok || !unique(a.Name) || a.AccountID.IsZero() || !number(a.ClosingNumber) {
			return fault.InvalidSmartContract
		}
	}
	for _, v := range s.Variables {
		if !unique(v.Name) {
			return fault.InvalidSmartContract
		}
		switch v.Access {
		case Constant, Persistent, Important:
		default:
			return fault.InvalidSmartContract
		}
		if _, err := conform(v.Type, v.Value); nil != err {
			return err
		}
	}
	clauses := make(map[string]struct{})
	for _, c := range s.Clauses {
		if _, ok := clauses[c.Name]; ok || "" == c.Name {
			return fault.InvalidSmartContract
		}
		clauses[c.Name] = struct{}{}
	}
	for _, h := range s.Hooks {
		if _, ok := clauses[h.Clause]; !ok || "" == h.Name {
			return fault.ClauseNotFound
		}
	}
	return nil
}

// Create - fill the body and sign by the first party
func (s *SmartContract) Create(signer contract.Signer) error {
	return s.Contract.CreateContract(s, signer, "sign smart contract")
}

// SignByParty - countersign by another party
func (s *SmartContract) SignByParty(signer contract.Signer) error {
	return s.Contract.SignContract(signer, "sign smart contract")
}

// VerifyParties - every party signed the contract
//
// lookup returns the verifier for a party's nym
func (s *SmartContract) VerifyParties(lookup func(identifier.Identifier) (contract.Verifier, error)) error {
	for _, p := range s.Parties {
		verifier, err := lookup(p.NymID)
		if nil != err {
			return err
		}
		if err := s.Contract.VerifySignature(verifier, p.NymID); nil != err {
			return err
		}
	}
	return nil
}

// Party - a party by name
func (s *SmartContract) Party(name string) (Party, error) {
	for _, p := range s.Parties {
		if name == p.Name {
			return p, nil
		}
	}
	return Party{}, fault.PartyNotFound
}

// Account - an account by name
func (s *SmartContract) Account(name string) (Account, error) {
	for _, a := range s.Accounts {
		if name == a.Name {
			return a, nil
		}
	}
	return Account{}, fault.ContractAccountNotFound
}

// Variable - current value of a variable
func (s *SmartContract) Variable(name string) (Variable, error) {
	for _, v := range s.Variables {
		if name == v.Name {
			return v, nil
		}
	}
	return Variable{}, fault.VariableNotFound
}

// SetVariable - change a non constant variable
func (s *SmartContract) SetVariable(name string, value script.Value) error {
	for i, v := range s.Variables {
		if name != v.Name {
			continue
		}
		if Constant == v.Access {
			return fault.VariableIsConstant
		}
		converted, err := conform(v.Type, value)
		if nil != err {
			return err
		}
		s.Variables[i].Value = converted
		return nil
	}
	return fault.VariableNotFound
}

// IsDeactivated - a clause ended the contract
func (s *SmartContract) IsDeactivated() bool {
	return s.deactivated
}

// Parse - read a contract, signatures are checked by the notary
func Parse(raw []byte, engines script.Factory) (*SmartContract, error) {
	s := New(engines)
	c, err := contract.Parse(raw, contract.HashOfContents, s)
	if nil != err {
		return nil, err
	}
	s.Contract = c
	return s, nil
}
