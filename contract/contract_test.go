// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package contract_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-assessment/backend/sim"
	simwallet "perun.network/go-assessment/backend/sim/wallet"
	"perun.network/go-assessment/contract"
	"perun.network/go-assessment/wallet"
)

func TestParseABI(t *testing.T) {
	iface, err := contract.ParseABI()
	require.NoError(t, err)
	assert.NoError(t, contract.CheckABI(iface))
	assert.True(t, iface.Methods[contract.MethodDeposit].IsPayable(), "deposit must be payable")
	assert.True(t, iface.Methods[contract.MethodGetBalance].IsConstant())
}

func TestCheckABI_MissingMethod(t *testing.T) {
	partial, err := abi.JSON(strings.NewReader(
		`[{"inputs":[],"name":"getBalance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`))
	require.NoError(t, err)
	assert.Error(t, contract.CheckABI(partial))
}

func TestBind(t *testing.T) {
	rng := rand.New(rand.NewSource(0xB1D))
	iface, err := contract.ParseABI()
	require.NoError(t, err)
	backend := &sim.Backend{Chain: sim.NewChain()}
	w := simwallet.NewRandomWallet(rng, 2)
	accs := w.Addresses()

	_, err = contract.Bind(backend, contract.DefaultAddress, iface, nil, accs[0])
	assert.Equal(t, wallet.ErrWalletAbsent, err)

	_, err = contract.Bind(backend, contract.DefaultAddress, iface, w, common.Address{})
	assert.Error(t, err, "binding without account must fail")

	_, err = contract.Bind(backend, contract.DefaultAddress, abi.ABI{}, w, accs[0])
	assert.Error(t, err, "binding with incomplete interface must fail")

	b, err := contract.Bind(backend, contract.DefaultAddress, iface, w, accs[0])
	require.NoError(t, err)
	assert.Equal(t, contract.DefaultAddress, b.Address())
	assert.Equal(t, accs[0], b.Account())

	b2, err := contract.Bind(backend, contract.DefaultAddress, iface, w, accs[1])
	require.NoError(t, err)
	assert.NotEqual(t, b.Account(), b2.Account(), "bindings are scoped to their account")
}
