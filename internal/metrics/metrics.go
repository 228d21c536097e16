// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes Prometheus collectors for the gateway and the
// mock engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the gateway and mock engine report to.
type Recorder interface {
	RecordRequest(method string, status int, mock bool, latency time.Duration)
	RecordRefresh(outcome string)
	RecordQueued()
	RecordMockRoute(route string, status int)
}

// Refresh outcomes.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
)

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
	queued    prometheus.Counter
	mockCalls *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "research_admin_gateway_requests_total",
			Help: "Gateway requests by method, final status and path (mock or live).",
		}, []string{"method", "status", "path"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "research_admin_gateway_request_seconds",
			Help:    "Gateway request latency including refresh waits.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "research_admin_token_refresh_total",
			Help: "Physical token refresh calls by outcome.",
		}, []string{"outcome"}),
		queued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "research_admin_refresh_waiters_total",
			Help: "Requests suspended behind an in-flight token refresh.",
		}),
		mockCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "research_admin_mock_requests_total",
			Help: "Mock engine calls by matched route and status.",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(c.requests, c.latency, c.refreshes, c.queued, c.mockCalls)
	return c
}

func pathLabel(mock bool) string {
	if mock {
		return "mock"
	}
	return "live"
}

// RecordRequest counts one gateway call.
func (c *Collector) RecordRequest(method string, status int, mock bool, latency time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(status), pathLabel(mock)).Inc()
	c.latency.WithLabelValues(pathLabel(mock)).Observe(latency.Seconds())
}

// RecordRefresh counts one physical refresh.
func (c *Collector) RecordRefresh(outcome string) {
	c.refreshes.WithLabelValues(outcome).Inc()
}

// RecordQueued counts one request parked behind a refresh.
func (c *Collector) RecordQueued() {
	c.queued.Inc()
}

// RecordMockRoute counts one mock dispatch.
func (c *Collector) RecordMockRoute(route string, status int) {
	c.mockCalls.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRequest(string, int, bool, time.Duration) {}
func (Nop) RecordRefresh(string)                           {}
func (Nop) RecordQueued()                                  {}
func (Nop) RecordMockRoute(string, int)                    {}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
