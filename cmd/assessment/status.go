// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	ethwallet "perun.network/go-assessment/backend/ethereum/wallet"
	"perun.network/go-assessment/client"
	"perun.network/go-assessment/view"
)

const statusTimeout = 30 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the text view of the ATM",
	Long: "Print the text view of the ATM. The keystore account is used only if " +
		"ATM_PASSPHRASE unlocks it; the user is never prompted.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
		defer cancel()

		e, err := setup(ctx, ethwallet.PrompterFunc(declinePrompt))
		if err != nil {
			return err
		}
		defer e.close()

		s := client.NewSession()
		if _, err := e.client.Load(ctx, s); err != nil {
			return err
		}
		if e.cfg.Passphrase != "" && s.Snapshot().WalletPresent {
			if err := e.client.Connect(ctx, s); err != nil {
				return err
			}
		}
		if err := e.client.EnsureBalance(ctx, s); err != nil {
			return err
		}
		return view.Render(cmd.OutOrStdout(), view.NewModel(s.Snapshot()))
	},
}
