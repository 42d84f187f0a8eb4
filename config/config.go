// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package config loads the runtime configuration from the environment.
// The contract address and interface are compiled in and not configurable.
package config // import "perun.network/go-assessment/config"

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"perun.network/go-assessment/client"
	"perun.network/go-assessment/db"
)

// Prefix is the prefix of all environment variables, e.g. ATM_NODE_URL.
const Prefix = "ATM"

// Config is the runtime configuration.
type Config struct {
	NodeURL     string `envconfig:"NODE_URL" default:"ws://127.0.0.1:8545"`
	KeystoreDir string `envconfig:"KEYSTORE_DIR" default:"keystore"`
	// Passphrase unlocks the keystore account without prompting.
	Passphrase  string `envconfig:"PASSPHRASE"`
	Listen      string `envconfig:"LISTEN" default:"127.0.0.1:8080"`
	// JournalPath is the leveldb directory of the transaction journal.
	// Empty keeps the journal in memory.
	JournalPath string `envconfig:"JOURNAL_PATH"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	ReadAttempts   int           `envconfig:"READ_ATTEMPTS" default:"1"`
	ReadBackoff    time.Duration `envconfig:"READ_BACKOFF" default:"200ms"`
	MaxBackoff     time.Duration `envconfig:"MAX_BACKOFF" default:"2s"`
	ConfirmTimeout time.Duration `envconfig:"CONFIRM_TIMEOUT" default:"0s"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing config")
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.NodeURL == "" {
		return errors.New("node url must be set")
	}
	if c.ReadAttempts < 1 {
		return errors.Errorf("read attempts must be positive, got %d", c.ReadAttempts)
	}
	if c.ReadBackoff < 0 || c.MaxBackoff < 0 || c.ConfirmTimeout < 0 {
		return errors.New("durations must not be negative")
	}
	_, err := c.Level()
	return err
}

// Level returns the parsed log level.
func (c Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	return lvl, errors.Wrap(err, "parsing log level")
}

// Client returns the client configuration, journaling to journal.
func (c Config) Client(journal db.Database) client.Config {
	return client.Config{
		ReadAttempts:   c.ReadAttempts,
		ReadBackoff:    c.ReadBackoff,
		MaxBackoff:     c.MaxBackoff,
		ConfirmTimeout: c.ConfirmTimeout,
		Journal:        journal,
	}
}
