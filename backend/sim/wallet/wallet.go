// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package wallet is an in-memory wallet provider for tests.
package wallet // import "perun.network/go-assessment/backend/sim/wallet"

import (
	"context"
	"crypto/ecdsa"
	"io"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"perun.network/go-assessment/wallet"
)

// Wallet holds random keys in memory. Accounts must be authorized through
// RequestAccounts before they appear in Accounts.
type Wallet struct {
	mu         sync.Mutex
	keys       map[common.Address]*ecdsa.PrivateKey
	order      []common.Address
	authorized bool
	reject     bool
	requests   int
}

var _ wallet.Provider = (*Wallet)(nil)

// NewRandomWallet creates a wallet with n random accounts.
func NewRandomWallet(rng io.Reader, n int) *Wallet {
	w := &Wallet{keys: make(map[common.Address]*ecdsa.PrivateKey)}
	for i := 0; i < n; i++ {
		key, err := ecdsa.GenerateKey(crypto.S256(), rng)
		if err != nil {
			panic(errors.Wrap(err, "generating key"))
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		w.keys[addr] = key
		w.order = append(w.order, addr)
	}
	return w
}

// SetReject makes the simulated user decline all future requests.
func (w *Wallet) SetReject(reject bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reject = reject
}

// Authorize authorizes all accounts, as if the user connected earlier.
func (w *Wallet) Authorize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.authorized = true
}

// Addresses returns all addresses of the wallet, authorized or not.
func (w *Wallet) Addresses() []common.Address {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]common.Address(nil), w.order...)
}

// Requests returns how often the user was prompted.
func (w *Wallet) Requests() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.requests
}

// Accounts implements wallet.Provider.
func (w *Wallet) Accounts(context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.authorized {
		return nil, nil
	}
	return append([]common.Address(nil), w.order...), nil
}

// RequestAccounts implements wallet.Provider.
func (w *Wallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.requests++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if w.reject {
		return nil, wallet.ErrUserRejected
	}
	w.authorized = true
	return append([]common.Address(nil), w.order...), nil
}

// NewTransactor implements wallet.Provider.
func (w *Wallet) NewTransactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.reject {
		return nil, wallet.ErrUserRejected
	}
	key, ok := w.keys[account]
	if !ok || !w.authorized {
		return nil, errors.Errorf("account %s not authorized", account.Hex())
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "creating transactor")
	}
	opts.Context = ctx
	return opts, nil
}

// Host injects a fixed wallet. A Host with a nil Wallet has none injected.
type Host struct {
	Wallet *Wallet
}

// InjectedWallet implements wallet.Host.
func (h Host) InjectedWallet() wallet.Provider {
	if h.Wallet == nil {
		return nil
	}
	return h.Wallet
}
