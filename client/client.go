// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package client implements the session workflow of the Assessment ATM:
// wallet connection, contract binding, the read path and the write path.
//
// A Client holds the collaborators and policies, a Session holds the state
// of one user. Every operation takes the session explicitly.
package client // import "perun.network/go-assessment/client"

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"perun.network/go-assessment/contract"
	"perun.network/go-assessment/db"
	"perun.network/go-assessment/db/memorydb"
	"perun.network/go-assessment/log"
	pkgsync "perun.network/go-assessment/pkg/sync"
	"perun.network/go-assessment/wallet"
)

// Config holds the retry and timeout policy of a Client.
type Config struct {
	// ReadAttempts is how often a query is tried before it fails.
	ReadAttempts int
	// ReadBackoff is the wait before the first retry. It doubles with
	// every retry, up to MaxBackoff.
	ReadBackoff time.Duration
	MaxBackoff  time.Duration
	// ConfirmTimeout bounds the confirmation wait of a write. Zero waits
	// as long as the context allows.
	ConfirmTimeout time.Duration
	// Journal stores transaction records. Defaults to an in-memory
	// database.
	Journal db.Database
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		ReadAttempts: 1,
		ReadBackoff:  200 * time.Millisecond,
		MaxBackoff:   2 * time.Second,
	}
}

// Client runs the workflow against one contract deployment.
type Client struct {
	host    wallet.Host
	backend contract.Backend
	address common.Address
	iface   abi.ABI
	cfg     Config

	writer  pkgsync.Mutex
	journal *Journal
	metrics *Metrics

	errorSubsLock sync.RWMutex
	errorSubs     map[<-chan struct{}]chan<- error

	logger log.Logger

	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a client for the Assessment contract at its compiled-in
// address. host is where the wallet is discovered; backend binds the
// contract.
func New(host wallet.Host, backend contract.Backend, cfg Config) (*Client, error) {
	if backend == nil {
		return nil, errors.New("nil contract backend")
	}
	if cfg.ReadAttempts < 1 {
		return nil, errors.Errorf("read attempts must be positive, got %d", cfg.ReadAttempts)
	}
	if cfg.ReadBackoff < 0 || cfg.MaxBackoff < 0 || cfg.ConfirmTimeout < 0 {
		return nil, errors.New("negative durations in config")
	}
	iface, err := contract.ParseABI()
	if err != nil {
		return nil, err
	}
	if cfg.Journal == nil {
		cfg.Journal = memorydb.NewDatabase()
	}
	c := &Client{
		host:      host,
		backend:   backend,
		address:   contract.DefaultAddress,
		iface:     iface,
		cfg:       cfg,
		journal:   NewJournal(cfg.Journal),
		metrics:   NewMetrics(),
		errorSubs: make(map[<-chan struct{}]chan<- error),
		logger:    log.WithField("contract", contract.DefaultAddress.Hex()),
		quit:      make(chan struct{}),
	}
	if n, err := c.journal.Recover(); err != nil {
		return nil, errors.WithMessage(err, "recovering journal")
	} else if n > 0 {
		c.logger.Warnf("Recovered %d unfinished transaction(s)", n)
	}
	return c, nil
}

// Metrics returns the client metrics.
func (c *Client) Metrics() *Metrics { return c.metrics }

// Transactions returns all transaction records, oldest first.
func (c *Client) Transactions() ([]*Tx, error) { return c.journal.All() }

// Transaction returns the record with the given ID.
func (c *Client) Transaction(id uuid.UUID) (*Tx, error) { return c.journal.Get(id) }

// Load discovers the injected wallet and, without prompting, restores the
// first already-authorized account. It returns whether a wallet is present.
// An absent wallet is not an error; no account or balance is requested then.
func (c *Client) Load(ctx context.Context, s *Session) (bool, error) {
	w, ok := wallet.Discover(c.host)
	if !ok {
		c.logger.Info("No wallet injected")
		s.setWallet(nil)
		return false, nil
	}
	s.setWallet(w)
	accs := wallet.CurrentAccounts(ctx, w)
	if len(accs) == 0 {
		c.logger.Debug("No authorized account")
		return true, nil
	}
	return true, c.useAccount(ctx, s, w, accs[0])
}

// Connect asks the user to authorize an account and switches the session
// to the first authorized account.
func (c *Client) Connect(ctx context.Context, s *Session) error {
	w := s.walletProvider()
	accs, err := wallet.RequestConnection(ctx, w)
	if err != nil {
		c.errorOccurred(err)
		return err
	}
	return c.useAccount(ctx, s, w, accs[0])
}

// useAccount binds the contract for acc and refreshes the candidates. The
// binding is only rebuilt when the account changed.
func (c *Client) useAccount(ctx context.Context, s *Session, w wallet.Provider, acc common.Address) error {
	if !s.hasAccount(acc) {
		b, err := contract.Bind(c.backend, c.address, c.iface, w, acc)
		if err != nil {
			err = errors.WithMessage(err, "binding contract")
			c.errorOccurred(err)
			return err
		}
		s.setAccount(acc, b)
		c.logger.WithField("account", acc.Hex()).Info("Account connected")
	}
	return c.ReadCandidates(ctx, s)
}

// Err returns a new channel that receives every error the client reports,
// and a channel to close the subscription with.
func (c *Client) Err() (<-chan error, chan<- struct{}) {
	data := make(chan error, 10)
	quit := make(chan struct{})

	c.errorSubsLock.Lock()
	defer c.errorSubsLock.Unlock()
	c.errorSubs[quit] = data

	go func() {
		select {
		case <-quit:
		case <-c.quit:
		}
		c.errorSubsLock.Lock()
		defer c.errorSubsLock.Unlock()
		close(c.errorSubs[quit])
		delete(c.errorSubs, quit)
	}()

	return data, quit
}

// errorOccurred logs err and publishes it to all subscriptions.
func (c *Client) errorOccurred(err error) {
	c.logger.WithError(err).Error("Operation failed")

	c.errorSubsLock.RLock()
	defer c.errorSubsLock.RUnlock()
	c.logger.Tracef("Sending error to %d subscription(s)", len(c.errorSubs))

	for quit, data := range c.errorSubs {
		select {
		case <-quit:
		case data <- err:
		default:
			c.logger.Warn("Error subscription full, dropping error")
		}
	}
}

// Close ends all error subscriptions.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.quit) })
	return nil
}
