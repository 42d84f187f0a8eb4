// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package sim contains an in-memory Assessment contract. It is used to test
// the client workflow without a blockchain.
package sim // import "perun.network/go-assessment/backend/sim"

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"perun.network/go-assessment/contract"
	"perun.network/go-assessment/log"
	"perun.network/go-assessment/wallet"
	"perun.network/go-assessment/wire"
)

// ChainID is the chain ID transactors are created for.
var ChainID = big.NewInt(1337)

// Chain holds the simulated contract state. Transactions take effect when
// they are awaited, mirroring mining. Chain is safe for concurrent use.
type Chain struct {
	mu         sync.Mutex
	balances   map[common.Address]*big.Int
	candidates []wire.Bytes32
	votes      map[wire.Bytes32]*big.Int

	calls      map[string]int
	failSubmit map[string]error
	failWait   map[string]error
	failVotes  map[wire.Bytes32]error
	nonce      uint64
	confirm    chan struct{}
}

// NewChain creates an empty simulated chain.
func NewChain() *Chain {
	return &Chain{
		balances:   make(map[common.Address]*big.Int),
		votes:      make(map[wire.Bytes32]*big.Int),
		calls:      make(map[string]int),
		failSubmit: make(map[string]error),
		failWait:   make(map[string]error),
		failVotes:  make(map[wire.Bytes32]error),
	}
}

// SetCandidates replaces the candidate registry. Panics on names that do
// not fit the fixed-width encoding.
func (c *Chain) SetCandidates(names []string, votes []uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candidates = nil
	c.votes = make(map[wire.Bytes32]*big.Int)
	for i, name := range names {
		id, err := wire.EncodeBytes32(name)
		if err != nil {
			log.Panicf("encoding candidate %q: %v", name, err)
		}
		c.candidates = append(c.candidates, id)
		c.votes[id] = new(big.Int).SetUint64(votes[i])
	}
}

// SetBalance sets the contract balance of an account.
func (c *Chain) SetBalance(acc common.Address, bal *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[acc] = new(big.Int).Set(bal)
}

// Balance returns the contract balance of an account.
func (c *Chain) Balance(acc common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balanceOf(acc)
}

// Votes returns the on-chain vote count of a candidate.
func (c *Chain) Votes(name string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, _ := wire.EncodeBytes32(name)
	if v, ok := c.votes[id]; ok {
		return v.Uint64()
	}
	return 0
}

// Calls returns how often a contract method was invoked.
func (c *Chain) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// FailSubmit makes every following submission of method fail with err.
// A nil err clears the failure.
func (c *Chain) FailSubmit(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	setOrClear(c.failSubmit, method, err)
}

// FailWait makes every following transaction of method revert with err.
// A nil err clears the failure.
func (c *Chain) FailWait(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	setOrClear(c.failWait, method, err)
}

// FailVotes makes vote-count queries for a candidate fail with err.
func (c *Chain) FailVotes(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, _ := wire.EncodeBytes32(name)
	if err == nil {
		delete(c.failVotes, id)
		return
	}
	c.failVotes[id] = err
}

// HoldConfirmations blocks all confirmations until the returned function is
// called.
func (c *Chain) HoldConfirmations() (release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan struct{})
	c.confirm = ch
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func setOrClear(m map[string]error, key string, err error) {
	if err == nil {
		delete(m, key)
		return
	}
	m[key] = err
}

func (c *Chain) balanceOf(acc common.Address) *big.Int {
	if b, ok := c.balances[acc]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (c *Chain) call(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++
	return c.failSubmit[method]
}

func (c *Chain) find(id wire.Bytes32) bool {
	for _, cand := range c.candidates {
		if cand == id {
			return true
		}
	}
	return false
}

// submit registers a transaction whose effect is applied when mined.
func (c *Chain) submit(method string, effect func() error) (contract.Tx, error) {
	if err := c.call(method); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nonce++
	var nonce [8]byte
	new(big.Int).SetUint64(c.nonce).FillBytes(nonce[:])
	return &Tx{
		hash:    crypto.Keccak256Hash([]byte(method), nonce[:]),
		chain:   c,
		revert:  c.failWait[method],
		effect:  effect,
		confirm: c.confirm,
	}, nil
}

// Tx is a simulated transaction.
type Tx struct {
	hash    common.Hash
	chain   *Chain
	revert  error
	effect  func() error
	confirm chan struct{}

	once sync.Once
	err  error
}

var _ contract.Tx = (*Tx)(nil)

// Hash implements contract.Tx.
func (t *Tx) Hash() common.Hash { return t.hash }

// Wait implements contract.Tx. The effect is applied exactly once.
func (t *Tx) Wait(ctx context.Context) error {
	if t.confirm != nil {
		select {
		case <-t.confirm:
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for confirmation")
		}
	}
	t.once.Do(func() {
		if t.revert != nil {
			t.err = errors.WithMessage(t.revert, "transaction reverted")
			return
		}
		t.chain.mu.Lock()
		defer t.chain.mu.Unlock()
		t.err = t.effect()
	})
	return t.err
}

// Backend binds simulated contracts to a Chain.
type Backend struct {
	Chain *Chain
}

var _ contract.Backend = (*Backend)(nil)

// Bind implements contract.Backend.
func (b *Backend) Bind(_ common.Address, _ abi.ABI, w wallet.Provider, account common.Address) (contract.Contract, error) {
	return &Assessment{chain: b.Chain, wallet: w, account: account}, nil
}

// Assessment is a simulated contract handle scoped to one account.
type Assessment struct {
	chain   *Chain
	wallet  wallet.Provider
	account common.Address
}

var _ contract.Contract = (*Assessment)(nil)

// GetBalance implements contract.Contract.
func (a *Assessment) GetBalance(ctx context.Context) (*big.Int, error) {
	if err := a.chain.call(contract.MethodGetBalance); err != nil {
		return nil, err
	}
	return a.chain.Balance(a.account), nil
}

// GetAllCandidates implements contract.Contract.
func (a *Assessment) GetAllCandidates(ctx context.Context) ([]wire.Bytes32, error) {
	if err := a.chain.call(contract.MethodGetAllCandidates); err != nil {
		return nil, err
	}
	a.chain.mu.Lock()
	defer a.chain.mu.Unlock()
	return append([]wire.Bytes32(nil), a.chain.candidates...), nil
}

// GetVotes implements contract.Contract.
func (a *Assessment) GetVotes(ctx context.Context, candidate wire.Bytes32) (*big.Int, error) {
	if err := a.chain.call(contract.MethodGetVotes); err != nil {
		return nil, err
	}
	a.chain.mu.Lock()
	defer a.chain.mu.Unlock()
	if err := a.chain.failVotes[candidate]; err != nil {
		return nil, err
	}
	v, ok := a.chain.votes[candidate]
	if !ok {
		return new(big.Int), nil
	}
	return new(big.Int).Set(v), nil
}

// sign checks that the wallet still signs for the account.
func (a *Assessment) sign(ctx context.Context) error {
	_, err := a.wallet.NewTransactor(ctx, a.account, ChainID)
	return err
}

// AddCandidate implements contract.Contract.
func (a *Assessment) AddCandidate(ctx context.Context, candidate wire.Bytes32) (contract.Tx, error) {
	if err := a.sign(ctx); err != nil {
		return nil, err
	}
	c := a.chain
	return c.submit(contract.MethodAddCandidate, func() error {
		if c.find(candidate) {
			return errors.New("execution reverted: candidate already exists")
		}
		c.candidates = append(c.candidates, candidate)
		c.votes[candidate] = new(big.Int)
		return nil
	})
}

// Vote implements contract.Contract.
func (a *Assessment) Vote(ctx context.Context, candidate wire.Bytes32) (contract.Tx, error) {
	if err := a.sign(ctx); err != nil {
		return nil, err
	}
	c := a.chain
	return c.submit(contract.MethodVote, func() error {
		if !c.find(candidate) {
			return errors.New("execution reverted: candidate does not exist")
		}
		c.votes[candidate].Add(c.votes[candidate], big.NewInt(1))
		return nil
	})
}

// Deposit implements contract.Contract.
func (a *Assessment) Deposit(ctx context.Context, amount *big.Int) (contract.Tx, error) {
	if err := a.sign(ctx); err != nil {
		return nil, err
	}
	c, acc, amount := a.chain, a.account, new(big.Int).Set(amount)
	return c.submit(contract.MethodDeposit, func() error {
		c.balances[acc] = new(big.Int).Add(c.balanceOf(acc), amount)
		return nil
	})
}

// Withdraw implements contract.Contract.
func (a *Assessment) Withdraw(ctx context.Context, amount *big.Int) (contract.Tx, error) {
	if err := a.sign(ctx); err != nil {
		return nil, err
	}
	c, acc, amount := a.chain, a.account, new(big.Int).Set(amount)
	return c.submit(contract.MethodWithdraw, func() error {
		bal := c.balanceOf(acc)
		if bal.Cmp(amount) < 0 {
			return errors.New("execution reverted: insufficient balance")
		}
		c.balances[acc] = bal.Sub(bal, amount)
		return nil
	})
}
