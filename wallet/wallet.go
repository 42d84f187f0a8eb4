// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package wallet defines an abstraction to wallet providers.
// A wallet provider is injected by the host environment. It knows which
// accounts the user has authorized, can ask the user to authorize accounts
// and creates signers for authorized accounts.
package wallet // import "perun.network/go-assessment/wallet"

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"perun.network/go-assessment/log"
)

var (
	// ErrWalletAbsent is returned when an operation needs a wallet but the
	// host did not inject one.
	ErrWalletAbsent = errors.New("no wallet injected")
	// ErrUserRejected is returned when the user declines a connection or a
	// transaction.
	ErrUserRejected = errors.New("user rejected the request")
)

// Provider is a wallet capability injected by the host.
type Provider interface {
	// Accounts returns the accounts that are already authorized. It never
	// prompts the user.
	Accounts(ctx context.Context) ([]common.Address, error)

	// RequestAccounts prompts the user for authorization and blocks until
	// the user responds. Returns ErrUserRejected if the user declines.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// NewTransactor returns transaction options signing for the given
	// authorized account.
	NewTransactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error)
}

// Host is the environment a wallet may be injected into.
type Host interface {
	// InjectedWallet returns the injected wallet, or nil if there is none.
	InjectedWallet() Provider
}

// Discover returns the wallet injected into the host, if any.
// It has no side effects beyond the check.
func Discover(h Host) (Provider, bool) {
	if h == nil {
		return nil, false
	}
	w := h.InjectedWallet()
	return w, w != nil
}

// CurrentAccounts returns the accounts the wallet has already authorized,
// without prompting. An absent wallet or a failing query yields no accounts.
func CurrentAccounts(ctx context.Context, w Provider) []common.Address {
	if w == nil {
		return nil
	}
	accs, err := w.Accounts(ctx)
	if err != nil {
		log.WithError(err).Warn("Querying authorized accounts failed")
		return nil
	}
	return accs
}

// RequestConnection asks the user to authorize accounts and returns them.
// A wallet that authorizes no account counts as a rejection.
func RequestConnection(ctx context.Context, w Provider) ([]common.Address, error) {
	if w == nil {
		return nil, ErrWalletAbsent
	}
	accs, err := w.RequestAccounts(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "requesting accounts")
	}
	if len(accs) == 0 {
		return nil, errors.WithMessage(ErrUserRejected, "no account authorized")
	}
	return accs, nil
}

// IsUserRejected tells whether err was caused by the user declining.
func IsUserRejected(err error) bool {
	return errors.Is(err, ErrUserRejected)
}
