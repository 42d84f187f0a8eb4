// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package view renders a session snapshot. Rendering is a pure function of
// the snapshot; it never changes the session or calls the contract.
package view // import "perun.network/go-assessment/view"

import (
	"fmt"
	htmltemplate "html/template"
	"io"
	"text/template"

	"github.com/pkg/errors"

	"perun.network/go-assessment/client"
)

// Mode is one of the three mutually exclusive display modes.
type Mode uint8

const (
	// WalletAbsent shows the install prompt only.
	WalletAbsent Mode = iota
	// Connect shows the connect prompt.
	Connect
	// Dashboard shows account, balance, controls and results.
	Dashboard
)

func (m Mode) String() string {
	switch m {
	case WalletAbsent:
		return "WalletAbsent"
	case Connect:
		return "Connect"
	case Dashboard:
		return "Dashboard"
	}
	return fmt.Sprintf("%d", m)
}

// Texts shown by the views.
const (
	Title         = "Welcome to the Metacrafters ATM!"
	InstallPrompt = "Please install a wallet in order to use this ATM."
	ConnectPrompt = "Please connect your wallet"
	UnknownAmount = "unknown"
)

// ModeOf returns the display mode of a snapshot.
func ModeOf(s client.Snapshot) Mode {
	switch {
	case !s.WalletPresent:
		return WalletAbsent
	case s.Account == nil:
		return Connect
	default:
		return Dashboard
	}
}

// Model is what the views display.
type Model struct {
	Title      string
	Mode       Mode
	Account    string
	Balance    string
	Candidates []client.Candidate
	Selection  string
	Input      string
}

// NewModel derives the view model of a snapshot.
func NewModel(s client.Snapshot) Model {
	m := Model{
		Title:     Title,
		Mode:      ModeOf(s),
		Balance:   UnknownAmount,
		Selection: s.Selection,
		Input:     s.Input,
	}
	if m.Mode != Dashboard {
		return m
	}
	m.Account = s.Account.Hex()
	if s.Balance != nil {
		m.Balance = *s.Balance
	}
	m.Candidates = s.Candidates
	return m
}

// Results returns the results listing, one line per candidate in list
// order.
func (m Model) Results() []string {
	lines := make([]string, len(m.Candidates))
	for i, c := range m.Candidates {
		lines[i] = ResultLine(c)
	}
	return lines
}

// ResultLine formats the result of one candidate, e.g. "Alice: 2 votes".
func ResultLine(c client.Candidate) string {
	return fmt.Sprintf("%s: %d votes", c.Name, c.Votes)
}

// Dashboard tells whether m is in dashboard mode, for templates.
func (m Model) Dashboard() bool { return m.Mode == Dashboard }

// Connect tells whether m is in connect mode, for templates.
func (m Model) Connect() bool { return m.Mode == Connect }

var textTmpl = template.Must(template.New("text").Parse(textPage))

// Render writes the text view of m to w.
func Render(w io.Writer, m Model) error {
	return errors.Wrap(textTmpl.Execute(w, m), "rendering text view")
}

var htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlPage))

// RenderHTML writes the HTML view of m to w. Its forms post to the
// dashboard routes of package server.
func RenderHTML(w io.Writer, m Model) error {
	return errors.Wrap(htmlTmpl.Execute(w, m), "rendering HTML view")
}
