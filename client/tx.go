// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package client

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Op is a write operation on the contract.
type Op string

// Write operations.
const (
	OpAddCandidate Op = "addCandidate"
	OpVote         Op = "vote"
	OpDeposit      Op = "deposit"
	OpWithdraw     Op = "withdraw"
)

// Policy tells how the session is reconciled after a confirmed write.
type Policy uint8

const (
	// Speculative writes patch the session locally without reading back.
	Speculative Policy = iota
	// Authoritative writes refetch the affected state from the contract.
	Authoritative
)

func (p Policy) String() string {
	switch p {
	case Speculative:
		return "Speculative"
	case Authoritative:
		return "Authoritative"
	}
	return fmt.Sprintf("%d", p)
}

// PolicyOf returns the reconciliation policy of op.
func PolicyOf(op Op) Policy {
	switch op {
	case OpDeposit, OpWithdraw:
		return Authoritative
	default:
		return Speculative
	}
}

// State is the state of a transaction record.
type State uint8

// Transaction states. A record starts Idle and ends Confirmed or Failed.
const (
	Idle State = iota
	Submitted
	Confirmed
	Failed
)

var stateNames = [...]string{"Idle", "Submitted", "Confirmed", "Failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("%d", s)
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return errors.Errorf("unknown transaction state %q", text)
}

// Final tells whether no transition leaves s.
func (s State) Final() bool { return s == Confirmed || s == Failed }

// Tx is the record of one write operation.
type Tx struct {
	ID      uuid.UUID      `json:"id"`
	Op      Op             `json:"op"`
	Arg     string         `json:"arg,omitempty"`
	Account common.Address `json:"account"`
	Hash    common.Hash    `json:"hash"`
	State   State          `json:"state"`
	Err     string         `json:"error,omitempty"`
	Created time.Time      `json:"created"`
	Updated time.Time      `json:"updated"`
}

func newTx(op Op, arg string, account common.Address) *Tx {
	now := time.Now()
	return &Tx{
		ID:      uuid.New(),
		Op:      op,
		Arg:     arg,
		Account: account,
		State:   Idle,
		Created: now,
		Updated: now,
	}
}

// Policy returns the reconciliation policy of the record's operation.
func (t *Tx) Policy() Policy { return PolicyOf(t.Op) }

// transition moves the record to state to. Allowed are Idle to Submitted,
// Idle to Failed, Submitted to Confirmed and Submitted to Failed.
func (t *Tx) transition(to State) error {
	ok := false
	switch t.State {
	case Idle:
		ok = to == Submitted || to == Failed
	case Submitted:
		ok = to == Confirmed || to == Failed
	}
	if !ok {
		return errors.Errorf("invalid transition from %v to %v", t.State, to)
	}
	t.State = to
	t.Updated = time.Now()
	return nil
}

func (t *Tx) submitted(hash common.Hash) error {
	if err := t.transition(Submitted); err != nil {
		return err
	}
	t.Hash = hash
	return nil
}

func (t *Tx) failed(err error) error {
	if terr := t.transition(Failed); terr != nil {
		return terr
	}
	t.Err = err.Error()
	return nil
}
