// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// metrics holds the graph's hit/miss/parse counters, backing stats() (C6).
// Counts are tracked both as Prometheus counters (so a host process can
// register them on its own registry) and as plain atomics (so Stats() can
// read them back without a live HTTP exporter, which the core's
// no-network-transport constraint rules out).
type metrics struct {
	once sync.Once

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	parses      prometheus.Counter

	hits   int64
	misses int64
	parsed int64
}

func newMetrics() *metrics {
	m := &metrics{}
	m.once.Do(func() {
		m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auzoom_graph_cache_hits_total",
			Help: "Number of get_file calls served from the in-memory map or on-disk cache.",
		})
		m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auzoom_graph_cache_misses_total",
			Help: "Number of get_file calls that required a parse.",
		})
		m.parses = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auzoom_graph_parses_total",
			Help: "Number of files parsed from source.",
		})
	})
	return m
}

func (m *metrics) recordHit() {
	m.cacheHits.Inc()
	atomic.AddInt64(&m.hits, 1)
}

func (m *metrics) recordMiss() {
	m.cacheMisses.Inc()
	atomic.AddInt64(&m.misses, 1)
}

func (m *metrics) recordParse() {
	m.parses.Inc()
	atomic.AddInt64(&m.parsed, 1)
}

func (m *metrics) snapshot() (hits, misses, parses int64) {
	return atomic.LoadInt64(&m.hits), atomic.LoadInt64(&m.misses), atomic.LoadInt64(&m.parsed)
}

// Collect exposes the underlying Prometheus counters for a host process
// that wants to register its own registry; reading them via Write()
// avoids the no-network-transport constraint (§5).
func (m *metrics) Collect() []*dto.Metric {
	var out []*dto.Metric
	for _, c := range []prometheus.Counter{m.cacheHits, m.cacheMisses, m.parses} {
		d := &dto.Metric{}
		_ = c.Write(d)
		out = append(out, d)
	}
	return out
}
