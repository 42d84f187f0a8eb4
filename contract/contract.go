// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package contract defines the call boundary of the Assessment contract and
// binds it to a signing account.
package contract // import "perun.network/go-assessment/contract"

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"perun.network/go-assessment/log"
	"perun.network/go-assessment/wallet"
	"perun.network/go-assessment/wire"
)

// Tx is a handle to a submitted transaction.
type Tx interface {
	// Hash identifies the transaction.
	Hash() common.Hash
	// Wait blocks until the transaction is mined. It fails if the
	// transaction reverted or the context is done.
	Wait(ctx context.Context) error
}

// Contract is the public call surface of a deployed Assessment contract.
// Mutating calls only submit; the returned Tx must be awaited separately.
type Contract interface {
	GetBalance(ctx context.Context) (*big.Int, error)
	GetAllCandidates(ctx context.Context) ([]wire.Bytes32, error)
	GetVotes(ctx context.Context, candidate wire.Bytes32) (*big.Int, error)

	AddCandidate(ctx context.Context, candidate wire.Bytes32) (Tx, error)
	Vote(ctx context.Context, candidate wire.Bytes32) (Tx, error)
	Deposit(ctx context.Context, amount *big.Int) (Tx, error)
	Withdraw(ctx context.Context, amount *big.Int) (Tx, error)
}

// Backend constructs contract handles for a specific chain backend.
type Backend interface {
	Bind(address common.Address, iface abi.ABI, w wallet.Provider, account common.Address) (Contract, error)
}

// Binding is a Contract scoped to one signing account. A binding is not
// transferable; a new one must be created when the account changes.
type Binding struct {
	Contract
	address common.Address
	account common.Address
}

// Bind creates a binding to the contract at address, signing with account.
// Construction is synchronous and never retried.
func Bind(b Backend, address common.Address, iface abi.ABI, w wallet.Provider, account common.Address) (*Binding, error) {
	if w == nil {
		return nil, wallet.ErrWalletAbsent
	}
	if account == (common.Address{}) {
		return nil, errors.New("binding without account")
	}
	if err := CheckABI(iface); err != nil {
		return nil, err
	}
	c, err := b.Bind(address, iface, w, account)
	if err != nil {
		return nil, errors.WithMessagef(err, "binding contract %s", address.Hex())
	}
	log.WithFields(log.Fields{"contract": address.Hex(), "account": account.Hex()}).Debug("Contract bound")
	return &Binding{Contract: c, address: address, account: account}, nil
}

// Address returns the contract address.
func (b *Binding) Address() common.Address { return b.address }

// Account returns the signing account the binding is scoped to.
func (b *Binding) Account() common.Address { return b.account }
