// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package client

import (
	"context"
	"math/big"
	"math/rand"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-assessment/backend/sim"
	simwallet "perun.network/go-assessment/backend/sim/wallet"
	"perun.network/go-assessment/contract"
	"perun.network/go-assessment/wallet"
)

const testTimeout = 5 * time.Second

type setup struct {
	chain   *sim.Chain
	wallet  *simwallet.Wallet
	client  *Client
	session *Session
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ReadAttempts = 2
	cfg.ReadBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func newSetup(t *testing.T, seed int64, cfg Config) *setup {
	rng := rand.New(rand.NewSource(seed))
	chain := sim.NewChain()
	w := simwallet.NewRandomWallet(rng, 2)
	c, err := New(simwallet.Host{Wallet: w}, &sim.Backend{Chain: chain}, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return &setup{chain: chain, wallet: w, client: c, session: NewSession()}
}

// connected creates a setup whose session is connected to the first wallet
// account with the given candidates on chain.
func connected(t *testing.T, seed int64, names []string, votes []uint64) *setup {
	s := newSetup(t, seed, testConfig())
	s.chain.SetCandidates(names, votes)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	_, err := s.client.Load(ctx, s.session)
	require.NoError(t, err)
	require.NoError(t, s.client.Connect(ctx, s.session))
	return s
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.Ether))
}

func TestNew_InvalidConfig(t *testing.T) {
	backend := &sim.Backend{Chain: sim.NewChain()}

	_, err := New(nil, nil, DefaultConfig())
	assert.Error(t, err, "nil backend")

	cfg := DefaultConfig()
	cfg.ReadAttempts = 0
	_, err = New(nil, backend, cfg)
	assert.Error(t, err, "zero read attempts")

	cfg = DefaultConfig()
	cfg.ConfirmTimeout = -time.Second
	_, err = New(nil, backend, cfg)
	assert.Error(t, err, "negative timeout")

	c, err := New(nil, backend, DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, c.journal)
	assert.NotNil(t, c.metrics)
}

func TestClient_Load_WalletAbsent(t *testing.T) {
	chain := sim.NewChain()
	chain.SetCandidates([]string{"Alice"}, []uint64{1})
	c, err := New(simwallet.Host{}, &sim.Backend{Chain: chain}, testConfig())
	require.NoError(t, err)
	s := NewSession()
	ctx := context.Background()

	present, err := c.Load(ctx, s)
	require.NoError(t, err)
	assert.False(t, present)
	require.NoError(t, c.EnsureBalance(ctx, s))

	snap := s.Snapshot()
	assert.False(t, snap.WalletPresent)
	assert.Nil(t, snap.Account)
	assert.Nil(t, snap.Balance)
	assert.Empty(t, snap.Candidates)
	for _, m := range contract.Methods {
		assert.Zero(t, chain.Calls(m), "no contract call expected, got %s", m)
	}

	assert.True(t, errors.Is(c.Connect(ctx, s), wallet.ErrWalletAbsent))
}

func TestClient_Load_NoAuthorizedAccount(t *testing.T) {
	s := newSetup(t, 1, testConfig())

	present, err := s.client.Load(context.Background(), s.session)
	require.NoError(t, err)
	assert.True(t, present)
	snap := s.session.Snapshot()
	assert.True(t, snap.WalletPresent)
	assert.Nil(t, snap.Account)
	assert.Zero(t, s.wallet.Requests(), "loading must not prompt")
}

func TestClient_Load_RestoresAccount(t *testing.T) {
	s := newSetup(t, 2, testConfig())
	s.chain.SetCandidates([]string{"Alice"}, []uint64{3})
	s.wallet.Authorize()

	_, err := s.client.Load(context.Background(), s.session)
	require.NoError(t, err)
	snap := s.session.Snapshot()
	require.NotNil(t, snap.Account)
	assert.Equal(t, s.wallet.Addresses()[0], *snap.Account)
	assert.Equal(t, []Candidate{{"Alice", 3}}, snap.Candidates)
	assert.Zero(t, s.wallet.Requests(), "restoring must not prompt")
}

func TestClient_Connect(t *testing.T) {
	s := connected(t, 3, []string{"Alice", "Bob"}, []uint64{2, 5})

	snap := s.session.Snapshot()
	require.NotNil(t, snap.Account)
	assert.Equal(t, s.wallet.Addresses()[0], *snap.Account)
	assert.Equal(t, []Candidate{{"Alice", 2}, {"Bob", 5}}, snap.Candidates)
	assert.Nil(t, snap.Balance, "connecting must not read the balance")
	assert.Equal(t, 1, s.wallet.Requests())
}

func TestClient_Connect_Rejected(t *testing.T) {
	s := newSetup(t, 4, testConfig())
	ctx := context.Background()
	_, err := s.client.Load(ctx, s.session)
	require.NoError(t, err)

	errs, quit := s.client.Err()
	defer close(quit)

	s.wallet.SetReject(true)
	err = s.client.Connect(ctx, s.session)
	assert.True(t, wallet.IsUserRejected(err))
	assert.Nil(t, s.session.Snapshot().Account)

	select {
	case e := <-errs:
		assert.True(t, wallet.IsUserRejected(e))
	case <-time.After(testTimeout):
		t.Fatal("rejection not reported")
	}
}

func TestClient_AccountChange(t *testing.T) {
	s := connected(t, 5, []string{"Alice"}, []uint64{0})
	ctx := context.Background()
	require.NoError(t, s.client.EnsureBalance(ctx, s.session))
	require.NoError(t, s.session.Select("Alice"))
	first := s.session.binder()

	// same account keeps the binding
	require.NoError(t, s.client.useAccount(ctx, s.session, s.wallet, s.wallet.Addresses()[0]))
	assert.Same(t, first, s.session.binder())

	second := s.wallet.Addresses()[1]
	require.NoError(t, s.client.useAccount(ctx, s.session, s.wallet, second))
	b := s.session.binder()
	require.NotNil(t, b)
	assert.NotSame(t, first, b, "binding must be rebuilt")
	assert.Equal(t, second, b.Account())

	snap := s.session.Snapshot()
	assert.Equal(t, second, *snap.Account)
	assert.Nil(t, snap.Balance, "balance of the previous account must be reset")
	assert.Empty(t, snap.Selection)
	assert.Equal(t, []Candidate{{"Alice", 0}}, snap.Candidates)
}

func TestClient_Err_Close(t *testing.T) {
	s := newSetup(t, 6, testConfig())
	errs, _ := s.client.Err()
	require.NoError(t, s.client.Close())
	require.NoError(t, s.client.Close())

	select {
	case _, ok := <-errs:
		assert.False(t, ok, "subscription must be closed")
	case <-time.After(testTimeout):
		t.Fatal("subscription not closed")
	}
}

func TestSession_Select(t *testing.T) {
	s := connected(t, 7, []string{"Alice", "Bob"}, []uint64{0, 0})

	require.NoError(t, s.session.Select("Bob"))
	assert.Equal(t, "Bob", s.session.Snapshot().Selection)

	err := s.session.Select("Mallory")
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Bob", s.session.Snapshot().Selection, "failed select must keep the selection")

	require.NoError(t, s.session.Select(""))
	assert.Empty(t, s.session.Snapshot().Selection)
}

func TestSession_Snapshot_Copies(t *testing.T) {
	s := connected(t, 8, []string{"Alice"}, []uint64{1})
	snap := s.session.Snapshot()
	snap.Candidates[0].Votes = 42
	assert.Equal(t, uint64(1), s.session.Snapshot().Candidates[0].Votes)
}
