// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Command assessment runs the Assessment ATM against an Ethereum node.
//
// All settings are read from ATM_* environment variables, see package
// config.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ethassessment "perun.network/go-assessment/backend/ethereum/assessment"
	ethwallet "perun.network/go-assessment/backend/ethereum/wallet"
	"perun.network/go-assessment/client"
	"perun.network/go-assessment/config"
	"perun.network/go-assessment/db"
	"perun.network/go-assessment/db/leveldb"
	"perun.network/go-assessment/db/memorydb"
	"perun.network/go-assessment/log"
	plogrus "perun.network/go-assessment/log/logrus"
)

var rootCmd = &cobra.Command{
	Use:           "assessment",
	Short:         "Assessment ATM client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env holds what every command sets up from the configuration.
type env struct {
	cfg     config.Config
	backend *ethassessment.ContractBackend
	journal db.Database
	client  *client.Client
	closers []func()
}

func setup(ctx context.Context, prompter ethwallet.Prompter) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lvl, _ := cfg.Level()
	plogrus.Set(lvl, &logrus.TextFormatter{FullTimestamp: true})

	e := &env{cfg: cfg}
	if e.backend, err = ethassessment.Dial(ctx, cfg.NodeURL); err != nil {
		return nil, err
	}
	e.closers = append(e.closers, e.backend.Close)

	if cfg.JournalPath == "" {
		e.journal = memorydb.NewDatabase()
	} else {
		ldb, err := leveldb.LoadDatabase(cfg.JournalPath)
		if err != nil {
			e.close()
			return nil, err
		}
		e.journal = ldb
		e.closers = append(e.closers, func() {
			if err := ldb.Close(); err != nil {
				log.WithError(err).Warn("Closing journal failed")
			}
		})
	}

	if cfg.Passphrase != "" {
		prompter = ethwallet.StaticPrompter(cfg.Passphrase)
	}
	host := &ethwallet.Host{Dir: cfg.KeystoreDir, Prompter: prompter}
	if e.client, err = client.New(host, e.backend, cfg.Client(e.journal)); err != nil {
		e.close()
		return nil, errors.WithMessage(err, "creating client")
	}
	e.closers = append(e.closers, func() { e.client.Close() })
	return e, nil
}

// close releases everything in reverse order of creation.
func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}
