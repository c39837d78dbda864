// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/votegate/models"
)

// Collector records admission and rate-limit outcomes.
type Collector struct {
	registry    *prometheus.Registry
	admitted    prometheus.Counter
	rejected    *prometheus.CounterVec
	rateLimited prometheus.Counter
	latency     prometheus.Histogram
}

// New creates a Collector registered on its own registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		admitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "votegate_votes_admitted_total",
			Help: "Votes accepted and appended to the ledger.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_votes_rejected_total",
			Help: "Vote attempts not recorded, by reason code.",
		}, []string{"reason"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "votegate_rate_limited_total",
			Help: "Requests rejected by the per-address rate limiter.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "votegate_admission_seconds",
			Help:    "Time to reach an admission decision, including the ledger transaction.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}

	c.registry.MustRegister(c.admitted, c.rejected, c.rateLimited, c.latency)
	return c
}

// ObserveDecision records one admission decision. An empty reason means
// the vote was admitted.
func (c *Collector) ObserveDecision(reason models.ReasonCode, took time.Duration) {
	if reason == "" {
		c.admitted.Inc()
	} else {
		c.rejected.WithLabelValues(string(reason)).Inc()
	}
	c.latency.Observe(took.Seconds())
}

// RateLimited counts one request rejected by the rate limiter
func (c *Collector) RateLimited(string) {
	c.rateLimited.Inc()
	c.rejected.WithLabelValues(string(models.ReasonRateLimited)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
