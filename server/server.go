// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package server serves the ATM dashboard of one session over HTTP.
package server // import "perun.network/go-assessment/server"

import (
	"bytes"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"perun.network/go-assessment/client"
	"perun.network/go-assessment/log"
	"perun.network/go-assessment/view"
)

// Server is the HTTP surface of a client session.
type Server struct {
	app     *fiber.App
	client  *client.Client
	session *client.Session
}

// New creates a server for session s of client c.
func New(c *client.Client, s *client.Session) *Server {
	srv := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ErrorHandler:          errorHandler,
		}),
		client:  c,
		session: s,
	}
	srv.app.Use(recover.New())
	srv.app.Use(requestLogger)

	srv.app.Get("/", srv.dashboard)
	srv.app.Get("/api/state", srv.state)
	srv.app.Get("/api/transactions", srv.transactions)
	srv.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(c.Metrics().Gatherer(), promhttp.HandlerOpts{})))

	srv.app.Post("/connect", srv.action(func(ctx context.Context, fc *fiber.Ctx) error {
		return c.Connect(ctx, s)
	}))
	srv.app.Post("/deposit", srv.action(func(ctx context.Context, _ *fiber.Ctx) error {
		_, err := c.Deposit(ctx, s)
		return err
	}))
	srv.app.Post("/withdraw", srv.action(func(ctx context.Context, _ *fiber.Ctx) error {
		_, err := c.Withdraw(ctx, s)
		return err
	}))
	srv.app.Post("/candidates", srv.action(func(ctx context.Context, fc *fiber.Ctx) error {
		s.SetInput(fc.FormValue("name"))
		_, err := c.AddCandidate(ctx, s)
		return err
	}))
	srv.app.Post("/select", srv.action(func(_ context.Context, fc *fiber.Ctx) error {
		return s.Select(fc.FormValue("candidate"))
	}))
	srv.app.Post("/vote", srv.action(func(ctx context.Context, _ *fiber.Ctx) error {
		_, err := c.Vote(ctx, s)
		return err
	}))
	return srv
}

// App returns the underlying fiber app.
func (srv *Server) App() *fiber.App { return srv.app }

// Listen serves on addr until Shutdown is called.
func (srv *Server) Listen(addr string) error {
	log.WithField("addr", addr).Info("Serving dashboard")
	return errors.Wrap(srv.app.Listen(addr), "serving dashboard")
}

// Shutdown stops the server, waiting for open requests up to timeout.
func (srv *Server) Shutdown(timeout time.Duration) error {
	return errors.Wrap(srv.app.ShutdownWithTimeout(timeout), "shutting down")
}

// dashboard renders the HTML view. Entering the dashboard with an unset
// balance fetches it once.
func (srv *Server) dashboard(fc *fiber.Ctx) error {
	if view.ModeOf(srv.session.Snapshot()) == view.Dashboard {
		if err := srv.client.EnsureBalance(fc.UserContext(), srv.session); err != nil {
			log.WithError(err).Debug("Lazy balance fetch failed")
		}
	}
	var buf bytes.Buffer
	if err := view.RenderHTML(&buf, view.NewModel(srv.session.Snapshot())); err != nil {
		return err
	}
	fc.Type("html", "utf-8")
	return fc.Send(buf.Bytes())
}

func (srv *Server) state(fc *fiber.Ctx) error {
	snap := srv.session.Snapshot()
	return fc.JSON(fiber.Map{
		"mode":    view.ModeOf(snap).String(),
		"session": snap,
	})
}

func (srv *Server) transactions(fc *fiber.Ctx) error {
	txs, err := srv.client.Transactions()
	if err != nil {
		return err
	}
	if txs == nil {
		txs = []*client.Tx{}
	}
	return fc.JSON(txs)
}

// action runs f and redirects to the dashboard whatever the outcome. The
// client reports failures itself; a failed action leaves the view stale.
func (srv *Server) action(f func(context.Context, *fiber.Ctx) error) fiber.Handler {
	return func(fc *fiber.Ctx) error {
		if err := f(fc.UserContext(), fc); err != nil {
			log.WithError(err).WithField("path", fc.Path()).Debug("Action failed")
		}
		return fc.Redirect("/", fiber.StatusSeeOther)
	}
}

func requestLogger(fc *fiber.Ctx) error {
	start := time.Now()
	err := fc.Next()
	log.WithFields(log.Fields{
		"method":  fc.Method(),
		"path":    fc.Path(),
		"status":  fc.Response().StatusCode(),
		"latency": time.Since(start),
	}).Debug("Request")
	return err
}

func errorHandler(fc *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	} else {
		log.WithError(err).Error("Request failed")
	}
	return fc.Status(code).JSON(fiber.Map{"error": err.Error()})
}
