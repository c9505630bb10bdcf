// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered on the default registry at package init through
// promauto. Label values are always drawn from small fixed sets (operation
// names, error kinds, route patterns) so cardinality stays bounded.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Graph store metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Graph store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
		},
		[]string{"operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Total number of graph store operation errors by error kind",
		},
		[]string{"operation", "kind"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Domain event metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"topic", "result"}, // ok, error
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_events_consumed_total",
			Help: "Total number of domain events consumed by the event router",
		},
		[]string{"topic"},
	)

	// Business metrics
	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_orders_placed_total",
			Help: "Total number of orders placed",
		},
	)

	OrderItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shop_order_items",
			Help:    "Number of distinct products per placed order",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	RatingsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_ratings_upserted_total",
			Help: "Total number of product ratings written",
		},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_auth_attempts_total",
			Help: "Registration and login attempts by outcome",
		},
		[]string{"action", "result"},
	)
)

// RecordStoreQuery records one graph store call. kind is empty on success.
func RecordStoreQuery(operation string, duration time.Duration, kind string) {
	StoreQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if kind != "" {
		StoreQueryErrors.WithLabelValues(operation, kind).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordOrderPlaced records a committed order with n distinct products.
func RecordOrderPlaced(n int) {
	OrdersPlaced.Inc()
	OrderItems.Observe(float64(n))
}

// RecordEventPublished records a publish attempt on topic.
func RecordEventPublished(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordAuthAttempt records a registration or login outcome.
func RecordAuthAttempt(action string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthAttempts.WithLabelValues(action, result).Inc()
}
