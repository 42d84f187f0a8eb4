// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts"
	"golang.org/x/crypto/ssh/terminal"

	ethwallet "perun.network/go-assessment/backend/ethereum/wallet"
)

// terminalPrompter reads the passphrase from the terminal without echo.
// An empty answer declines.
var terminalPrompter = ethwallet.PrompterFunc(func(ctx context.Context, acc accounts.Account) (string, error) {
	fd := int(os.Stdin.Fd())
	if !terminal.IsTerminal(fd) {
		return "", ethwallet.ErrDeclined
	}
	fmt.Fprintf(os.Stderr, "Passphrase for %s: ", acc.Address.Hex())
	pass, err := terminal.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if len(pass) == 0 {
		return "", ethwallet.ErrDeclined
	}
	return string(pass), nil
})

// declinePrompt never unlocks an account.
func declinePrompt(context.Context, accounts.Account) (string, error) {
	return "", ethwallet.ErrDeclined
}
