// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package server

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-assessment/backend/sim"
	simwallet "perun.network/go-assessment/backend/sim/wallet"
	"perun.network/go-assessment/client"
	"perun.network/go-assessment/contract"
	"perun.network/go-assessment/view"
)

type setup struct {
	chain   *sim.Chain
	wallet  *simwallet.Wallet
	session *client.Session
	server  *Server
}

func newSetup(t *testing.T, seed int64, host simwallet.Host) *setup {
	chain := sim.NewChain()
	chain.SetCandidates([]string{"Alice", "Bob"}, []uint64{2, 5})
	cfg := client.DefaultConfig()
	cfg.ReadBackoff = time.Millisecond
	c, err := client.New(host, &sim.Backend{Chain: chain}, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	s := client.NewSession()
	_, err = c.Load(context.Background(), s)
	require.NoError(t, err)
	return &setup{chain: chain, wallet: host.Wallet, session: s, server: New(c, s)}
}

func walletHost(seed int64) simwallet.Host {
	rng := rand.New(rand.NewSource(seed))
	return simwallet.Host{Wallet: simwallet.NewRandomWallet(rng, 1)}
}

func (s *setup) do(t *testing.T, req *http.Request) (*http.Response, string) {
	resp, err := s.server.App().Test(req, 5000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (s *setup) post(t *testing.T, path string, form url.Values) *http.Response {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ := s.do(t, req)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
	assert.Equal(t, "/", resp.Header.Get("Location"), path)
	return resp
}

func (s *setup) get(t *testing.T, path string) string {
	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	return body
}

func TestServer_WalletAbsent(t *testing.T) {
	s := newSetup(t, 1, simwallet.Host{})

	body := s.get(t, "/")
	assert.Contains(t, body, view.InstallPrompt)
	assert.NotContains(t, body, "Your Balance")

	s.post(t, "/connect", nil)
	for _, m := range contract.Methods {
		assert.Zero(t, s.chain.Calls(m), "no contract call expected, got %s", m)
	}
}

func TestServer_ConnectAndDashboard(t *testing.T) {
	s := newSetup(t, 2, walletHost(2))
	assert.Contains(t, s.get(t, "/"), view.ConnectPrompt)

	s.post(t, "/connect", nil)
	body := s.get(t, "/")
	assert.Contains(t, body, "<p>Alice: 2 votes</p>")
	assert.Contains(t, body, "<p>Bob: 5 votes</p>")
	assert.Contains(t, body, "Your Balance: 0.0 ETH")

	s.get(t, "/")
	assert.Equal(t, 1, s.chain.Calls(contract.MethodGetBalance), "balance is fetched lazily once")
}

func TestServer_Writes(t *testing.T) {
	s := newSetup(t, 3, walletHost(3))
	s.post(t, "/connect", nil)

	s.post(t, "/candidates", url.Values{"name": {"Carol"}})
	s.post(t, "/select", url.Values{"candidate": {"Carol"}})
	s.post(t, "/vote", nil)
	s.post(t, "/deposit", nil)
	s.post(t, "/deposit", nil)
	s.post(t, "/withdraw", nil)

	var state struct {
		Mode    string          `json:"mode"`
		Session client.Snapshot `json:"session"`
	}
	require.NoError(t, json.Unmarshal([]byte(s.get(t, "/api/state")), &state))
	assert.Equal(t, "Dashboard", state.Mode)
	assert.Equal(t, []client.Candidate{{Name: "Alice", Votes: 2}, {Name: "Bob", Votes: 5}, {Name: "Carol", Votes: 1}}, state.Session.Candidates)
	require.NotNil(t, state.Session.Balance)
	assert.Equal(t, "1.0", *state.Session.Balance)
	assert.Equal(t, "Carol", state.Session.Selection)

	var txs []client.Tx
	require.NoError(t, json.Unmarshal([]byte(s.get(t, "/api/transactions")), &txs))
	require.Len(t, txs, 5)
	for _, tx := range txs {
		assert.Equal(t, client.Confirmed, tx.State, tx.Op)
	}
}

func TestServer_FailedActionRedirects(t *testing.T) {
	s := newSetup(t, 4, walletHost(4))
	s.post(t, "/connect", nil)

	s.post(t, "/vote", nil)
	s.post(t, "/select", url.Values{"candidate": {"Mallory"}})
	s.post(t, "/withdraw", nil)
	assert.Zero(t, s.chain.Calls(contract.MethodVote))

	var txs []client.Tx
	require.NoError(t, json.Unmarshal([]byte(s.get(t, "/api/transactions")), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, client.Failed, txs[0].State)
}

func TestServer_Metrics(t *testing.T) {
	s := newSetup(t, 5, walletHost(5))
	s.post(t, "/connect", nil)

	body := s.get(t, "/metrics")
	assert.Contains(t, body, "assessment_reads_total")
	assert.Contains(t, body, `method="getAllCandidates"`)
}

func TestServer_EmptyTransactions(t *testing.T) {
	s := newSetup(t, 6, walletHost(6))
	assert.Equal(t, "[]", s.get(t, "/api/transactions"))
}
