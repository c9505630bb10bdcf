// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 only when the graph store answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	storeConnected := false
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.readyTimeout)
		storeConnected = h.store.Ping(ctx) == nil
		cancel()
	}

	data := map[string]interface{}{
		"store_connected": storeConnected,
		"ready_to_serve":  storeConnected,
		"uptime":          time.Since(h.startTime).Seconds(),
	}

	rw := NewResponseWriter(w, r)
	if !storeConnected {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "graph store is not reachable", data)
		return
	}
	rw.Success(data)
}
