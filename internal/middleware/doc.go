// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

/*
Package middleware provides the HTTP middleware shared by every route.

Key Components:

  - RequestID: accepts or generates X-Request-ID and binds it to the
    request's logger
  - AccessLog: one structured log line per request
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by chi route pattern so path ids do not explode cardinality

All middleware use the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
