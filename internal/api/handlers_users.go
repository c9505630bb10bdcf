// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package api

import (
	"net/http"

	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// Register handles POST /users/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondServiceError(w, r, err)
		return
	}
	user, err := h.identity.Register(r.Context(), in, r.RemoteAddr)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(user)
}

// Login handles POST /users/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondServiceError(w, r, err)
		return
	}
	session, err := h.identity.Login(r.Context(), in, r.RemoteAddr)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(session)
}
