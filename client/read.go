// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package client

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"

	"perun.network/go-assessment/contract"
	"perun.network/go-assessment/wire"
)

var errNoBinding = errors.New("no contract binding")

// ReadBalance reads the contract balance of the session account and stores
// it as an ether decimal string. On failure the stored balance is left
// untouched.
func (c *Client) ReadBalance(ctx context.Context, s *Session) error {
	b := s.binder()
	if b == nil {
		return newReadError(contract.MethodGetBalance, errNoBinding)
	}
	return c.readBalance(ctx, s, b)
}

// EnsureBalance fetches the balance if the session has an account but no
// balance yet. The fetch happens at most once per account, whether it
// succeeds or not.
func (c *Client) EnsureBalance(ctx context.Context, s *Session) error {
	b := s.requestBalance()
	if b == nil {
		return nil
	}
	return c.readBalance(ctx, s, b)
}

func (c *Client) readBalance(ctx context.Context, s *Session, b *contract.Binding) error {
	var bal *big.Int
	err := c.retry(ctx, contract.MethodGetBalance, func(ctx context.Context) (err error) {
		bal, err = b.GetBalance(ctx)
		return err
	})
	if err != nil {
		rerr := newReadError(contract.MethodGetBalance, err)
		c.errorOccurred(rerr)
		return rerr
	}
	if !s.setBalance(b, FormatEther(bal)) {
		c.logger.Debug("Dropping balance of replaced binding")
	}
	return nil
}

type votesResult struct {
	index int
	votes *big.Int
	err   error
}

// ReadCandidates reads the candidate list, then queries the votes of every
// candidate concurrently. It succeeds only if every query succeeds; then
// the session's candidate list is replaced in list order. On failure the
// session is left untouched.
func (c *Client) ReadCandidates(ctx context.Context, s *Session) error {
	b := s.binder()
	if b == nil {
		return newReadError(contract.MethodGetAllCandidates, errNoBinding)
	}

	var ids []wire.Bytes32
	err := c.retry(ctx, contract.MethodGetAllCandidates, func(ctx context.Context) (err error) {
		ids, err = b.GetAllCandidates(ctx)
		return err
	})
	if err != nil {
		rerr := newReadError(contract.MethodGetAllCandidates, err)
		c.errorOccurred(rerr)
		return rerr
	}

	// Query all vote counts in parallel.
	gather := make(chan votesResult, len(ids))
	for i, id := range ids {
		go func(i int, id wire.Bytes32) {
			res := votesResult{index: i}
			defer func() { gather <- res }()

			res.err = c.retry(ctx, contract.MethodGetVotes, func(ctx context.Context) (err error) {
				res.votes, err = b.GetVotes(ctx, id)
				return err
			})
		}(i, id)
	}

	// Gather results and collect errors.
	votes := make([]*big.Int, len(ids))
	rerr := &ReadError{Method: contract.MethodGetVotes}
	for range ids {
		res := <-gather
		if res.err != nil {
			rerr.errors = append(rerr.errors, queryError{index: res.index, err: res.err})
			continue
		}
		votes[res.index] = res.votes
	}

	cs := make([]Candidate, 0, len(ids))
	if len(rerr.errors) == 0 {
		for i, id := range ids {
			name, err := wire.DecodeBytes32(id)
			if err != nil {
				rerr.errors = append(rerr.errors, queryError{index: i, err: err})
				continue
			}
			if !votes[i].IsUint64() {
				rerr.errors = append(rerr.errors, queryError{index: i, err: errors.Errorf("vote count %v out of range", votes[i])})
				continue
			}
			cs = append(cs, Candidate{Name: name, Votes: votes[i].Uint64()})
		}
	}
	if len(rerr.errors) > 0 {
		c.errorOccurred(rerr)
		return rerr
	}

	if !s.setCandidates(b, cs) {
		c.logger.Debug("Dropping candidates of replaced binding")
	}
	return nil
}

// retry calls f until it succeeds, the attempts are used up or ctx is done.
// The wait between attempts doubles, capped at MaxBackoff.
func (c *Client) retry(ctx context.Context, method string, f func(context.Context) error) error {
	backoff := c.cfg.ReadBackoff
	var err error
	for attempt := 1; ; attempt++ {
		err = f(ctx)
		c.metrics.read(method, err)
		if err == nil || attempt >= c.cfg.ReadAttempts {
			return err
		}
		c.logger.WithError(err).Debugf("Query %s failed, attempt %d of %d", method, attempt, c.cfg.ReadAttempts)

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return errors.WithMessage(err, ctx.Err().Error())
		}
		if backoff *= 2; c.cfg.MaxBackoff > 0 && backoff > c.cfg.MaxBackoff {
			backoff = c.cfg.MaxBackoff
		}
	}
}

var weiPerEther = big.NewInt(params.Ether)

// FormatEther formats an amount of wei as a decimal number of ether with at
// least one fractional digit, e.g. 1.0, 0.5 or 2.25.
func FormatEther(wei *big.Int) string {
	abs := new(big.Int).Abs(wei)
	whole, frac := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))
	digits := strings.TrimRight(leftPad(frac.String(), 18), "0")
	if digits == "" {
		digits = "0"
	}
	sign := ""
	if wei.Sign() < 0 {
		sign = "-"
	}
	return sign + whole.String() + "." + digits
}

func leftPad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}
