// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"perun.network/go-assessment/client"
	"perun.network/go-assessment/log"
	"perun.network/go-assessment/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ATM dashboard",
	Long: "Serve the ATM dashboard on ATM_LISTEN. The keystore in ATM_KEYSTORE_DIR " +
		"is the wallet; connecting unlocks its first account.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := setup(ctx, terminalPrompter)
		if err != nil {
			return err
		}
		defer e.close()

		errs, quit := e.client.Err()
		defer close(quit)
		go func() {
			for err := range errs {
				log.WithError(err).Debug("Diagnostic")
			}
		}()

		s := client.NewSession()
		if _, err := e.client.Load(ctx, s); err != nil {
			log.WithError(err).Warn("Restoring session failed")
		}

		srv := server.New(e.client, s)
		go func() {
			<-ctx.Done()
			if err := srv.Shutdown(shutdownTimeout); err != nil {
				log.WithError(err).Error("Shutdown failed")
			}
		}()
		return srv.Listen(e.cfg.Listen)
	},
}
