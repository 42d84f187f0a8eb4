// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// DefaultAddress is the address the Assessment contract is deployed at.
var DefaultAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

// Method names of the Assessment contract.
const (
	MethodGetBalance       = "getBalance"
	MethodGetAllCandidates = "getAllCandidates"
	MethodGetVotes         = "getVotes"
	MethodAddCandidate     = "addCandidate"
	MethodVote             = "vote"
	MethodDeposit          = "deposit"
	MethodWithdraw         = "withdraw"
)

// Methods lists every method a binding needs.
var Methods = []string{
	MethodGetBalance,
	MethodGetAllCandidates,
	MethodGetVotes,
	MethodAddCandidate,
	MethodVote,
	MethodDeposit,
	MethodWithdraw,
}

// AssessmentABI is the interface description of the Assessment contract.
const AssessmentABI = `[
	{"inputs":[],"name":"getBalance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getAllCandidates","outputs":[{"internalType":"bytes32[]","name":"","type":"bytes32[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"bytes32","name":"candidate","type":"bytes32"}],"name":"getVotes","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"bytes32","name":"candidate","type":"bytes32"}],"name":"addCandidate","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"bytes32","name":"candidate","type":"bytes32"}],"name":"vote","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"deposit","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"_withdrawAmount","type":"uint256"}],"name":"withdraw","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"}],"name":"Deposit","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"}],"name":"Withdraw","type":"event"}
]`

// ParseABI parses the compiled-in interface description.
func ParseABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(AssessmentABI))
	return parsed, errors.Wrap(err, "parsing Assessment ABI")
}

// CheckABI checks that an interface description exposes every method of
// the Assessment contract.
func CheckABI(iface abi.ABI) error {
	for _, name := range Methods {
		if _, ok := iface.Methods[name]; !ok {
			return errors.Errorf("interface description lacks method %s", name)
		}
	}
	return nil
}
