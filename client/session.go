// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package client

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"perun.network/go-assessment/contract"
	"perun.network/go-assessment/wallet"
)

// Candidate mirrors a candidate of the contract's registry.
type Candidate struct {
	Name  string `json:"name"`
	Votes uint64 `json:"votes"`
}

// Session holds the state of one user session. It is created empty and
// passed explicitly into every Client operation. All fields are guarded by
// the session's mutex; outside of this package it is only read through
// Snapshot and changed through SetInput and Select.
type Session struct {
	mu sync.RWMutex

	wallet  wallet.Provider
	account *common.Address
	binding *contract.Binding

	balance          *string
	balanceRequested bool
	candidates       []Candidate

	selection string
	input     string
}

// Snapshot is a consistent copy of a Session.
type Snapshot struct {
	WalletPresent bool            `json:"walletPresent"`
	Account       *common.Address `json:"account,omitempty"`
	Balance       *string         `json:"balance,omitempty"`
	Candidates    []Candidate     `json:"candidates"`
	Selection     string          `json:"selection,omitempty"`
	Input         string          `json:"input,omitempty"`
}

// NewSession creates an empty session.
func NewSession() *Session {
	return new(Session)
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		WalletPresent: s.wallet != nil,
		Candidates:    append([]Candidate{}, s.candidates...),
		Selection:     s.selection,
		Input:         s.input,
	}
	if s.account != nil {
		acc := *s.account
		snap.Account = &acc
	}
	if s.balance != nil {
		bal := *s.balance
		snap.Balance = &bal
	}
	return snap
}

// SetInput sets the candidate-name input.
func (s *Session) SetInput(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = name
}

// Select selects the candidate to vote for. An empty name clears the
// selection. A name that is not in the candidate list is rejected.
func (s *Session) Select(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" && s.indexOf(name) < 0 {
		return &ValidationError{Op: OpVote, Reason: "unknown candidate " + name}
	}
	s.selection = name
	return nil
}

// binder returns the current binding, or nil.
func (s *Session) binder() *contract.Binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.binding
}

func (s *Session) walletProvider() wallet.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet
}

func (s *Session) setWallet(w wallet.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallet = w
}

// setAccount installs a new account and its binding. Everything derived
// from the previous account is reset.
func (s *Session) setAccount(acc common.Address, b *contract.Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = &acc
	s.binding = b
	s.balance = nil
	s.balanceRequested = false
	s.candidates = nil
	s.selection = ""
}

// hasAccount tells whether acc is the current account with a binding.
func (s *Session) hasAccount(acc common.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account != nil && *s.account == acc && s.binding != nil
}

// setBalance stores a balance read through binding b. Reads of a replaced
// binding are dropped.
func (s *Session) setBalance(b *contract.Binding, bal string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != b {
		return false
	}
	s.balance = &bal
	return true
}

// requestBalance marks the lazy balance fetch as done. It returns the
// binding to read from, or nil if no fetch is due.
func (s *Session) requestBalance() *contract.Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding == nil || s.balance != nil || s.balanceRequested {
		return nil
	}
	s.balanceRequested = true
	return s.binding
}

// setCandidates replaces the candidate list wholesale.
func (s *Session) setCandidates(b *contract.Binding, cs []Candidate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != b {
		return false
	}
	s.candidates = cs
	if s.selection != "" && s.indexOf(s.selection) < 0 {
		s.selection = ""
	}
	return true
}

// patch applies f to the session if b is still its binding.
func (s *Session) patch(b *contract.Binding, f func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != b {
		return false
	}
	f(s)
	return true
}

func (s *Session) indexOf(name string) int {
	for i, c := range s.candidates {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (s *Session) inputAndSelection() (input, selection string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.input, s.selection
}
