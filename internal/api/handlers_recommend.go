// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package api

import (
	"net/http"
)

// maxRankingLimit caps ?limit= on ranking endpoints.
const maxRankingLimit = 100

// MostRated handles GET /products/most-rated.
func (h *Handler) MostRated(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, maxRankingLimit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	products, err := h.ranking.TopRated(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(orEmpty(products), len(products))
}

// AlsoBought handles GET /products/{id}/also-bought.
func (h *Handler) AlsoBought(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	products, err := h.ranking.AlsoBoughtWith(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(orEmpty(products), len(products))
}

// Recommendations handles GET /users/{id}/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if !h.authorize(w, r, userID) {
		return
	}
	products, err := h.ranking.RecommendedFor(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(orEmpty(products), len(products))
}
