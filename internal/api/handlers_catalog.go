// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package api

import (
	"net/http"

	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(orEmpty(categories), len(categories))
}

// CreateCategory handles POST /categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondServiceError(w, r, err)
		return
	}
	category, err := h.catalog.CreateCategory(r.Context(), in.Name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(category)
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(orEmpty(products), len(products))
}

// CreateProduct handles POST /products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondServiceError(w, r, err)
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(product)
}

// GetProduct handles GET /products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(product)
}

// RateProduct handles POST /products/{id}/rate with {userId, value}.
func (h *Handler) RateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	var in models.RateInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if !h.authorize(w, r, in.UserID) {
		return
	}

	ack, err := h.catalog.RateProduct(r.Context(), productID, in.UserID, in.Value)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(ack)
}
