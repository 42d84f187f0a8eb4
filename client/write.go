// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package client

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"

	"perun.network/go-assessment/contract"
	"perun.network/go-assessment/log"
	"perun.network/go-assessment/wire"
)

// Amount is the fixed amount moved by Deposit and Withdraw, 1 ether.
var Amount = big.NewInt(params.Ether)

// AddCandidate registers the session's candidate-name input as a new
// candidate. After confirmation the candidate is appended locally with
// zero votes and the input is cleared.
func (c *Client) AddCandidate(ctx context.Context, s *Session) (*Tx, error) {
	name, _ := s.inputAndSelection()
	if name == "" {
		return nil, &ValidationError{Op: OpAddCandidate, Reason: "empty candidate name"}
	}
	id, err := wire.EncodeBytes32(name)
	if err != nil {
		return nil, &ValidationError{Op: OpAddCandidate, Reason: err.Error()}
	}
	return c.write(ctx, s, OpAddCandidate, name,
		func(ctx context.Context, b *contract.Binding) (contract.Tx, error) {
			return b.AddCandidate(ctx, id)
		},
		func(s *Session, _ log.Logger) {
			s.candidates = append(s.candidates, Candidate{Name: name, Votes: 0})
			if s.input == name {
				s.input = ""
			}
		})
}

// Vote votes for the selected candidate. After confirmation the local vote
// count of the candidate is incremented by one.
func (c *Client) Vote(ctx context.Context, s *Session) (*Tx, error) {
	_, name := s.inputAndSelection()
	if name == "" {
		return nil, &ValidationError{Op: OpVote, Reason: "no candidate selected"}
	}
	id, err := wire.EncodeBytes32(name)
	if err != nil {
		return nil, &ValidationError{Op: OpVote, Reason: err.Error()}
	}
	return c.write(ctx, s, OpVote, name,
		func(ctx context.Context, b *contract.Binding) (contract.Tx, error) {
			return b.Vote(ctx, id)
		},
		func(s *Session, logger log.Logger) {
			i := s.indexOf(name)
			if i < 0 {
				logger.WithField("candidate", name).Warn("Voted candidate not in local list, not patching")
				return
			}
			s.candidates[i].Votes++
		})
}

// Deposit deposits Amount into the contract. After confirmation the
// balance is read back.
func (c *Client) Deposit(ctx context.Context, s *Session) (*Tx, error) {
	return c.write(ctx, s, OpDeposit, FormatEther(Amount),
		func(ctx context.Context, b *contract.Binding) (contract.Tx, error) {
			return b.Deposit(ctx, Amount)
		}, nil)
}

// Withdraw withdraws Amount from the contract. After confirmation the
// balance is read back.
func (c *Client) Withdraw(ctx context.Context, s *Session) (*Tx, error) {
	return c.write(ctx, s, OpWithdraw, FormatEther(Amount),
		func(ctx context.Context, b *contract.Binding) (contract.Tx, error) {
			return b.Withdraw(ctx, Amount)
		}, nil)
}

type (
	submitFunc func(context.Context, *contract.Binding) (contract.Tx, error)
	// patchFunc updates the session after a confirmed Speculative write. It
	// runs with the session locked.
	patchFunc func(s *Session, logger log.Logger)
)

// write runs the transaction state machine of one write. Writes are
// serialized; a write waits for the previous one to be confirmed or to fail
// before it submits. Failed writes are never retried and leave the session
// untouched. patch is applied to the session of Speculative writes after
// confirmation, Authoritative writes read the balance back instead.
func (c *Client) write(ctx context.Context, s *Session, op Op, arg string, submit submitFunc, patch patchFunc) (*Tx, error) {
	b := s.binder()
	if b == nil {
		return nil, &ValidationError{Op: op, Reason: "no contract binding"}
	}

	if !c.writer.TryLockCtx(ctx) {
		return nil, errors.Wrapf(ctx.Err(), "waiting for pending write before %s", op)
	}
	defer c.writer.Unlock()

	rec := newTx(op, arg, b.Account())
	logger := c.logger.WithFields(log.Fields{"op": op, "id": rec.ID})
	c.store(rec)

	// Idle -> Submitted
	tx, err := submit(ctx, b)
	if err != nil {
		return rec, c.fail(rec, errors.WithMessage(err, "submitting"))
	}
	if err := rec.submitted(tx.Hash()); err != nil {
		log.Panicf("transaction record: %v", err)
	}
	c.store(rec)
	logger.WithField("hash", rec.Hash.Hex()).Info("Transaction submitted")

	// Submitted -> Confirmed | Failed
	waitCtx := ctx
	if c.cfg.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.cfg.ConfirmTimeout)
		defer cancel()
	}
	start := time.Now()
	if err := tx.Wait(waitCtx); err != nil {
		return rec, c.fail(rec, errors.WithMessage(err, "confirming"))
	}
	c.metrics.confirmed(op, time.Since(start).Seconds())
	if err := rec.transition(Confirmed); err != nil {
		log.Panicf("transaction record: %v", err)
	}
	c.store(rec)
	c.metrics.txDone(op, Confirmed)
	logger.Info("Transaction confirmed")

	switch rec.Policy() {
	case Speculative:
		if patch != nil && !s.patch(b, func(s *Session) { patch(s, logger) }) {
			logger.Warn("Account changed during write, not patching")
		}
	case Authoritative:
		if err := c.readBalance(ctx, s, b); err != nil {
			logger.WithError(err).Warn("Refreshing balance after write failed")
		}
	}
	return rec, nil
}

// fail moves rec to Failed and reports err.
func (c *Client) fail(rec *Tx, err error) error {
	if terr := rec.failed(err); terr != nil {
		log.Panicf("transaction record: %v", terr)
	}
	c.store(rec)
	c.metrics.txDone(rec.Op, Failed)
	ferr := &TxFailureError{Tx: rec, Err: err}
	c.errorOccurred(ferr)
	return ferr
}

// store journals a copy of rec. Journal failures are logged only.
func (c *Client) store(rec *Tx) {
	cp := *rec
	if err := c.journal.Put(&cp); err != nil {
		c.logger.WithError(err).Error("Journaling transaction failed")
	}
}
