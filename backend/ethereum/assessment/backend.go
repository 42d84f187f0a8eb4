// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package assessment binds the Assessment contract on an Ethereum node.
package assessment // import "perun.network/go-assessment/backend/ethereum/assessment"

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"perun.network/go-assessment/log"
	"perun.network/go-assessment/wallet"
)

// GasLimit is the gas limit of every contract transaction.
const GasLimit = 200000

// ContractInterface is the node connection a ContractBackend needs.
type ContractInterface interface {
	bind.ContractBackend
	bind.DeployBackend
}

// ContractBackend creates transactions on a node connection.
type ContractBackend struct {
	ContractInterface
	chainID *big.Int
	// mu serializes nonce allocation and submission.
	mu sync.Mutex
}

// NewContractBackend creates a backend for the chain with the given ID.
func NewContractBackend(ci ContractInterface, chainID *big.Int) *ContractBackend {
	return &ContractBackend{ContractInterface: ci, chainID: new(big.Int).Set(chainID)}
}

// Dial connects to an Ethereum node under the specified url and queries its
// chain ID.
func Dial(ctx context.Context, url string) (*ContractBackend, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "querying chain id")
	}
	log.WithFields(log.Fields{"url": url, "chainID": chainID}).Info("Connected to node")
	return NewContractBackend(client, chainID), nil
}

// ChainID returns the chain ID transactions are signed for.
func (c *ContractBackend) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

func (c *ContractBackend) newTransactor(ctx context.Context, w wallet.Provider, account common.Address, value *big.Int, gasLimit uint64) (*bind.TransactOpts, error) {
	auth, err := w.NewTransactor(ctx, account, c.chainID)
	if err != nil {
		return nil, errors.WithMessage(err, "creating signer")
	}
	nonce, err := c.PendingNonceAt(ctx, account)
	if err != nil {
		return nil, errors.Wrap(err, "querying pending nonce")
	}
	gasPrice, err := c.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying gas price")
	}

	auth.Context = ctx
	auth.Nonce = new(big.Int).SetUint64(nonce)
	auth.Value = value       // in wei
	auth.GasLimit = gasLimit // in units
	auth.GasPrice = gasPrice
	return auth, nil
}

// Tx is a submitted Ethereum transaction.
type Tx struct {
	tx      *types.Transaction
	backend bind.DeployBackend
}

// Hash implements contract.Tx.
func (t *Tx) Hash() common.Hash { return t.tx.Hash() }

// Wait implements contract.Tx. It waits until the transaction is mined and
// fails if the receipt reports a failure.
func (t *Tx) Wait(ctx context.Context) error {
	receipt, err := bind.WaitMined(ctx, t.backend, t.tx)
	if err != nil {
		return errors.WithMessage(err, "waiting for transaction")
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return errors.Errorf("transaction %s failed in block %v", t.tx.Hash().Hex(), receipt.BlockNumber)
	}
	return nil
}

// Close closes the node connection if the backend owns one.
func (c *ContractBackend) Close() {
	if cl, ok := c.ContractInterface.(interface{ Close() }); ok {
		cl.Close()
	}
}
