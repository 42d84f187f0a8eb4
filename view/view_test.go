// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-assessment/client"
)

func dashboard() client.Snapshot {
	acc := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bal := "1.5"
	return client.Snapshot{
		WalletPresent: true,
		Account:       &acc,
		Balance:       &bal,
		Candidates:    []client.Candidate{{Name: "Alice", Votes: 2}, {Name: "Bob", Votes: 5}},
		Selection:     "Bob",
	}
}

func TestModeOf(t *testing.T) {
	acc := common.Address{1}
	tests := []struct {
		snap client.Snapshot
		want Mode
	}{
		{client.Snapshot{}, WalletAbsent},
		{client.Snapshot{Account: &acc}, WalletAbsent},
		{client.Snapshot{WalletPresent: true}, Connect},
		{client.Snapshot{WalletPresent: true, Account: &acc}, Dashboard},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ModeOf(tt.snap))
	}
	assert.Equal(t, "Dashboard", Dashboard.String())
}

func TestNewModel(t *testing.T) {
	m := NewModel(dashboard())
	assert.Equal(t, Dashboard, m.Mode)
	assert.Equal(t, "1.5", m.Balance)
	assert.Equal(t, []string{"Alice: 2 votes", "Bob: 5 votes"}, m.Results())

	snap := dashboard()
	snap.Balance = nil
	assert.Equal(t, UnknownAmount, NewModel(snap).Balance)

	m = NewModel(client.Snapshot{WalletPresent: true})
	assert.Empty(t, m.Account)
	assert.Empty(t, m.Results())
}

func TestRender_WalletAbsent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewModel(client.Snapshot{})))
	assert.Equal(t, Title+"\n"+InstallPrompt+"\n", buf.String())
}

func TestRender_Connect(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewModel(client.Snapshot{WalletPresent: true})))
	assert.Equal(t, Title+"\n"+ConnectPrompt+"\n", buf.String())
}

func TestRender_Dashboard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewModel(dashboard())))
	out := buf.String()
	assert.Contains(t, out, "Your Account: 0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	assert.Contains(t, out, "Your Balance: 1.5 ETH")
	assert.NotContains(t, out, InstallPrompt)
	assert.NotContains(t, out, ConnectPrompt)

	alice := strings.Index(out, "  Alice: 2 votes\n")
	bob := strings.Index(out, "  Bob: 5 votes\n")
	require.True(t, alice >= 0 && bob >= 0, out)
	assert.Less(t, alice, bob, "results must keep list order")
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, NewModel(dashboard())))
	out := buf.String()
	assert.Contains(t, out, "<p>Alice: 2 votes</p>")
	assert.Contains(t, out, "<p>Bob: 5 votes</p>")
	assert.Contains(t, out, `<option value="Bob" selected>Bob</option>`)
	assert.Contains(t, out, `action="/deposit"`)

	buf.Reset()
	require.NoError(t, RenderHTML(&buf, NewModel(client.Snapshot{})))
	assert.Contains(t, buf.String(), InstallPrompt)
	assert.NotContains(t, buf.String(), `action="/connect"`)

	buf.Reset()
	require.NoError(t, RenderHTML(&buf, NewModel(client.Snapshot{WalletPresent: true})))
	assert.Contains(t, buf.String(), `action="/connect"`)
}

func TestRenderHTML_Escapes(t *testing.T) {
	snap := dashboard()
	snap.Candidates = []client.Candidate{{Name: "<script>", Votes: 1}}
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, NewModel(snap)))
	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;: 1 votes")
}
