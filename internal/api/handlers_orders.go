// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package api

import (
	"net/http"

	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// PlaceOrder handles POST /orders. Products may be given as
// {"products": [{"id": 1}]} or {"productIds": [1]}.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in models.OrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if !h.authorize(w, r, in.UserID) {
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), in.UserID, in.IDs())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(order)
}

// OrderHistory handles GET /orders/history?user={id}.
func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "user")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if !h.authorize(w, r, userID) {
		return
	}

	history, err := h.orders.OrderHistory(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(orEmpty(history), len(history))
}
