// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics declares the Prometheus collectors shared by the backend
// client, the search controller and the HTTP viewer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequests counts backend query attempts by outcome
	// ("ok", "status", "transport", "decode", "open").
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termgraph_backend_requests_total",
			Help: "Total number of backend query requests by outcome",
		},
		[]string{"outcome"},
	)

	// BackendDuration measures backend round trips, retries included.
	BackendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "termgraph_backend_request_duration_seconds",
			Help:    "Duration of backend query requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Searches counts completed searches by source
	// ("backend", "history", "fallback").
	Searches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termgraph_searches_total",
			Help: "Total number of searches by result source",
		},
		[]string{"source"},
	)

	// StaleResults counts search results discarded because a newer search
	// started before they arrived.
	StaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "termgraph_stale_results_total",
			Help: "Search results discarded because a newer search superseded them",
		},
	)

	// GraphSize tracks the node and edge counts of the displayed graph.
	GraphSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "termgraph_graph_size",
			Help: "Number of nodes and edges in the displayed graph",
		},
		[]string{"kind"},
	)

	// HTTPRequests counts viewer HTTP requests.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termgraph_http_requests_total",
			Help: "Total number of viewer HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration measures viewer response time.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "termgraph_http_request_duration_seconds",
			Help:    "Duration of viewer HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
