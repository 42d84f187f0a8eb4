// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package assessment

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"perun.network/go-assessment/contract"
	"perun.network/go-assessment/log"
	"perun.network/go-assessment/wallet"
	"perun.network/go-assessment/wire"
)

// compile time check that we implement the contract interfaces
var (
	_ contract.Backend  = (*ContractBackend)(nil)
	_ contract.Contract = (*Assessment)(nil)
	_ contract.Tx       = (*Tx)(nil)
)

// Assessment is a bound Assessment contract signing with one account.
type Assessment struct {
	*ContractBackend
	contract *bind.BoundContract
	wallet   wallet.Provider
	account  common.Address
}

// Bind implements contract.Backend.
func (c *ContractBackend) Bind(address common.Address, iface abi.ABI, w wallet.Provider, account common.Address) (contract.Contract, error) {
	return &Assessment{
		ContractBackend: c,
		contract:        bind.NewBoundContract(address, iface, c, c, c),
		wallet:          w,
		account:         account,
	}, nil
}

func (a *Assessment) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: a.account}
}

func (a *Assessment) callBig(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := a.contract.Call(a.callOpts(ctx), &out, method, params...); err != nil {
		return nil, errors.Wrapf(err, "calling %s", method)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// GetBalance implements contract.Contract.
func (a *Assessment) GetBalance(ctx context.Context) (*big.Int, error) {
	return a.callBig(ctx, contract.MethodGetBalance)
}

// GetAllCandidates implements contract.Contract.
func (a *Assessment) GetAllCandidates(ctx context.Context) ([]wire.Bytes32, error) {
	var out []interface{}
	if err := a.contract.Call(a.callOpts(ctx), &out, contract.MethodGetAllCandidates); err != nil {
		return nil, errors.Wrapf(err, "calling %s", contract.MethodGetAllCandidates)
	}
	return *abi.ConvertType(out[0], new([]wire.Bytes32)).(*[]wire.Bytes32), nil
}

// GetVotes implements contract.Contract.
func (a *Assessment) GetVotes(ctx context.Context, candidate wire.Bytes32) (*big.Int, error) {
	return a.callBig(ctx, contract.MethodGetVotes, candidate)
}

// AddCandidate implements contract.Contract.
func (a *Assessment) AddCandidate(ctx context.Context, candidate wire.Bytes32) (contract.Tx, error) {
	return a.transact(ctx, big.NewInt(0), contract.MethodAddCandidate, candidate)
}

// Vote implements contract.Contract.
func (a *Assessment) Vote(ctx context.Context, candidate wire.Bytes32) (contract.Tx, error) {
	return a.transact(ctx, big.NewInt(0), contract.MethodVote, candidate)
}

// Deposit implements contract.Contract. The amount is sent as value.
func (a *Assessment) Deposit(ctx context.Context, amount *big.Int) (contract.Tx, error) {
	return a.transact(ctx, new(big.Int).Set(amount), contract.MethodDeposit)
}

// Withdraw implements contract.Contract.
func (a *Assessment) Withdraw(ctx context.Context, amount *big.Int) (contract.Tx, error) {
	return a.transact(ctx, big.NewInt(0), contract.MethodWithdraw, new(big.Int).Set(amount))
}

func (a *Assessment) transact(ctx context.Context, value *big.Int, method string, params ...interface{}) (contract.Tx, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	auth, err := a.newTransactor(ctx, a.wallet, a.account, value, GasLimit)
	if err != nil {
		return nil, errors.WithMessagef(err, "creating transactor for %s", method)
	}
	tx, err := a.contract.Transact(auth, method, params...)
	if err != nil {
		return nil, errors.WithMessagef(err, "sending %s", method)
	}
	log.WithField("method", method).Debugf("Sending transaction to the blockchain with txHash: %s", tx.Hash().Hex())
	return &Tx{tx: tx, backend: a.ContractBackend}, nil
}
