// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sambv"

var (
	// QuoteRequests counts quote fetches by outcome: ok, error, cancelled.
	QuoteRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quote",
		Name:      "requests_total",
		Help:      "Swap quote requests sent to the aggregator, by outcome.",
	}, []string{"outcome"})

	// QuoteLatency observes aggregator round trips.
	QuoteLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "quote",
		Name:      "request_duration_seconds",
		Help:      "Latency of swap quote requests.",
		Buckets:   prometheus.DefBuckets,
	})

	// StaleQuotes counts results discarded because newer input superseded them.
	StaleQuotes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quote",
		Name:      "stale_results_total",
		Help:      "Quote results dropped because a newer request was issued.",
	})

	// LogoLookups counts logo cache lookups by result: hit, miss, empty.
	LogoLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "logo",
		Name:      "lookups_total",
		Help:      "Token logo lookups, by cache result.",
	}, []string{"result"})

	// XPAwarded sums XP granted across all sessions.
	XPAwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "progression",
		Name:      "xp_awarded_total",
		Help:      "Experience points awarded.",
	})

	// LevelUps counts levels gained across all sessions.
	LevelUps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "progression",
		Name:      "level_ups_total",
		Help:      "Levels gained across all sessions.",
	})

	// ActiveSessions tracks live sessions.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Number of live sessions.",
	})

	// EventSubscribers tracks connected websocket clients.
	EventSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "subscribers",
		Help:      "Number of connected event stream clients.",
	})

	registerOnce sync.Once
)

// MustRegisterMetrics registers every collector with the default registry. Safe to call twice.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			QuoteRequests,
			QuoteLatency,
			StaleQuotes,
			LogoLookups,
			XPAwarded,
			LevelUps,
			ActiveSessions,
			EventSubscribers,
		)
	})
}
