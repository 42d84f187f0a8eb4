// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package wallet implements a wallet provider on top of a go-ethereum
// keystore directory. Accounts are authorized by unlocking them with a
// passphrase the user supplies through a Prompter.
package wallet // import "perun.network/go-assessment/backend/ethereum/wallet"

import (
	"context"
	"math/big"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"perun.network/go-assessment/log"
	"perun.network/go-assessment/wallet"
)

// ErrDeclined is returned by a Prompter when the user declines to enter a
// passphrase.
var ErrDeclined = errors.New("passphrase prompt declined")

// Prompter asks the user for the passphrase of an account.
type Prompter interface {
	Passphrase(ctx context.Context, acc accounts.Account) (string, error)
}

// PrompterFunc is a function implementing Prompter.
type PrompterFunc func(ctx context.Context, acc accounts.Account) (string, error)

// Passphrase implements Prompter.
func (f PrompterFunc) Passphrase(ctx context.Context, acc accounts.Account) (string, error) {
	return f(ctx, acc)
}

// StaticPrompter always answers with the same passphrase.
func StaticPrompter(passphrase string) Prompter {
	return PrompterFunc(func(context.Context, accounts.Account) (string, error) {
		return passphrase, nil
	})
}

// Wallet is a keystore-backed wallet provider.
type Wallet struct {
	Ks       *keystore.KeyStore
	prompter Prompter

	mu         sync.Mutex
	authorized []accounts.Account
}

var _ wallet.Provider = (*Wallet)(nil)

// NewWallet creates a wallet on top of a keystore.
func NewWallet(ks *keystore.KeyStore, prompter Prompter) *Wallet {
	return &Wallet{Ks: ks, prompter: prompter}
}

// Accounts implements wallet.Provider. Only accounts that were unlocked
// through RequestAccounts are returned.
func (w *Wallet) Accounts(context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	addrs := make([]common.Address, len(w.authorized))
	for i, acc := range w.authorized {
		addrs[i] = acc.Address
	}
	return addrs, nil
}

// RequestAccounts implements wallet.Provider. It prompts for the passphrase
// of the first keystore account and unlocks it indefinitely.
func (w *Wallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	accs := w.Ks.Accounts()
	if len(accs) == 0 {
		return nil, errors.New("keystore holds no accounts")
	}
	acc := accs[0]

	if w.prompter == nil {
		return nil, errors.WithMessage(wallet.ErrUserRejected, "no prompter configured")
	}
	pass, err := w.prompter.Passphrase(ctx, acc)
	if errors.Is(err, ErrDeclined) {
		return nil, errors.WithMessage(wallet.ErrUserRejected, err.Error())
	} else if err != nil {
		return nil, errors.WithMessage(err, "prompting passphrase")
	}
	if err := w.Ks.Unlock(acc, pass); err != nil {
		return nil, errors.WithMessagef(wallet.ErrUserRejected, "unlocking %s: %v", acc.Address.Hex(), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.contains(acc.Address) {
		w.authorized = append(w.authorized, acc)
	}
	log.WithField("account", acc.Address.Hex()).Info("Account authorized")

	addrs := make([]common.Address, len(w.authorized))
	for i, a := range w.authorized {
		addrs[i] = a.Address
	}
	return addrs, nil
}

func (w *Wallet) contains(addr common.Address) bool {
	for _, a := range w.authorized {
		if a.Address == addr {
			return true
		}
	}
	return false
}

// NewTransactor implements wallet.Provider.
func (w *Wallet) NewTransactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.contains(account) {
		return nil, errors.Errorf("account %s not authorized", account.Hex())
	}
	opts, err := bind.NewKeyStoreTransactorWithChainID(w.Ks, accounts.Account{Address: account}, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "creating keystore transactor")
	}
	opts.Context = ctx
	return opts, nil
}

// Host injects a keystore wallet if the configured directory holds at
// least one key.
type Host struct {
	Dir      string
	Prompter Prompter
	// ScryptN and ScryptP default to the standard keystore parameters.
	ScryptN, ScryptP int

	once sync.Once
	w    *Wallet
}

// InjectedWallet implements wallet.Host.
func (h *Host) InjectedWallet() wallet.Provider {
	if h.Dir == "" {
		return nil
	}
	if info, err := os.Stat(h.Dir); err != nil || !info.IsDir() {
		return nil
	}
	h.once.Do(func() {
		n, p := h.ScryptN, h.ScryptP
		if n == 0 || p == 0 {
			n, p = keystore.StandardScryptN, keystore.StandardScryptP
		}
		h.w = NewWallet(keystore.NewKeyStore(h.Dir, n, p), h.Prompter)
	})
	if len(h.w.Ks.Accounts()) == 0 {
		return nil
	}
	return h.w
}
