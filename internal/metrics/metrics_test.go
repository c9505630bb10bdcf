// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStoreQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		kind      string
		wantErrs  float64
	}{
		{name: "success", operation: "list_products", kind: "", wantErrs: 0},
		{name: "not found", operation: "get_product", kind: "not_found", wantErrs: 1},
		{name: "unavailable", operation: "place_order", kind: "store_unavailable", wantErrs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(StoreQueryErrors.WithLabelValues(tt.operation, tt.kind))
			RecordStoreQuery(tt.operation, 3*time.Millisecond, tt.kind)
			after := testutil.ToFloat64(StoreQueryErrors.WithLabelValues(tt.operation, tt.kind))

			if tt.kind != "" && after-before != tt.wantErrs {
				t.Errorf("error counter delta = %v, want %v", after-before, tt.wantErrs)
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/products", "200"))
	RecordAPIRequest("GET", "/products", "200", 10*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/products", "200"))

	if after-before != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordOrderPlaced(t *testing.T) {
	before := testutil.ToFloat64(OrdersPlaced)
	RecordOrderPlaced(3)
	if got := testutil.ToFloat64(OrdersPlaced); got != before+1 {
		t.Errorf("orders placed = %v, want %v", got, before+1)
	}
}

func TestRecordEventPublished(t *testing.T) {
	okBefore := testutil.ToFloat64(EventsPublished.WithLabelValues("t", "ok"))
	errBefore := testutil.ToFloat64(EventsPublished.WithLabelValues("t", "error"))

	RecordEventPublished("t", nil)
	RecordEventPublished("t", errors.New("nats down"))

	if got := testutil.ToFloat64(EventsPublished.WithLabelValues("t", "ok")); got != okBefore+1 {
		t.Errorf("ok = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(EventsPublished.WithLabelValues("t", "error")); got != errBefore+1 {
		t.Errorf("error = %v, want %v", got, errBefore+1)
	}
}

func TestRecordAuthAttempt(t *testing.T) {
	before := testutil.ToFloat64(AuthAttempts.WithLabelValues("login", "failure"))
	RecordAuthAttempt("login", false)
	if got := testutil.ToFloat64(AuthAttempts.WithLabelValues("login", "failure")); got != before+1 {
		t.Errorf("login failures = %v, want %v", got, before+1)
	}
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		StoreQueryDuration, StoreQueryErrors, APIRequestsTotal, APIRequestDuration,
		APIActiveRequests, CircuitBreakerState, CircuitBreakerRequests,
		CircuitBreakerTransitions, EventsPublished, EventsConsumed,
		OrdersPlaced, OrderItems, RatingsUpserted, AuthAttempts,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err == nil {
			t.Errorf("collector %v was not registered by promauto", c)
		}
	}
}
