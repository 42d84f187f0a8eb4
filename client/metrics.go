// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "assessment"

// Metrics collects the client's transaction and read statistics.
type Metrics struct {
	registry *prometheus.Registry

	txs     *prometheus.CounterVec
	reads   *prometheus.CounterVec
	confirm *prometheus.HistogramVec
}

// NewMetrics creates the client metrics in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		txs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transactions_total",
			Help:      "Number of write transactions by operation and final state.",
		}, []string{"op", "state"}),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reads_total",
			Help:      "Number of contract queries by method and result.",
		}, []string{"method", "result"}),
		confirm: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "confirmation_seconds",
			Help:      "Time from submission to confirmation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"op"}),
	}
	m.registry.MustRegister(
		m.txs, m.reads, m.confirm,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Gatherer returns the registry holding the metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

func (m *Metrics) txDone(op Op, s State) {
	m.txs.WithLabelValues(string(op), s.String()).Inc()
}

func (m *Metrics) read(method string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reads.WithLabelValues(method, result).Inc()
}

func (m *Metrics) confirmed(op Op, seconds float64) {
	m.confirm.WithLabelValues(string(op)).Observe(seconds)
}
