// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Fadikk367/lego-shop-server/internal/auth"
	"github.com/Fadikk367/lego-shop-server/internal/graph"
	"github.com/Fadikk367/lego-shop-server/internal/logging"
	"github.com/Fadikk367/lego-shop-server/internal/validation"
)

// respondServiceError maps an error returned by a service to a response.
// Store-internal failures get a generic message; the cause is only logged.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidation, apiErr.Message, apiErr.Details)
		return
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, auth.ErrUnauthenticated.Error())
	case errors.Is(err, auth.ErrForbidden):
		rw.Error(http.StatusForbidden, ErrCodeForbidden, auth.ErrForbidden.Error())
	case errors.Is(err, auth.ErrTooManyAttempts):
		rw.Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, "too many login attempts, try again later")
	case errors.Is(err, graph.ErrConstraintViolation):
		rw.ErrorWithDetails(http.StatusUnprocessableEntity, ErrCodeConstraintViolation,
			entityMessage(err, "referenced entity does not exist"), entityDetails(err))
	case errors.Is(err, graph.ErrNotFound):
		rw.ErrorWithDetails(http.StatusNotFound, ErrCodeNotFound, entityMessage(err, "not found"), entityDetails(err))
	case errors.Is(err, graph.ErrConflict):
		rw.Error(http.StatusConflict, ErrCodeConflict, "an account with this email already exists")
	case errors.Is(err, graph.ErrStoreUnavailable):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Graph store unavailable")
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "service temporarily unavailable")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}

// entityMessage names the entity an EntityError refers to, e.g.
// "Product(12) not found".
func entityMessage(err error, fallback string) string {
	var ee *graph.EntityError
	if !errors.As(err, &ee) {
		return fallback
	}
	if errors.Is(ee.Kind, graph.ErrConstraintViolation) {
		return fmt.Sprintf("%s does not exist", ee.Ref)
	}
	return fmt.Sprintf("%s not found", ee.Ref)
}

func entityDetails(err error) interface{} {
	var ee *graph.EntityError
	if !errors.As(err, &ee) {
		return nil
	}
	return map[string]interface{}{"kind": ee.Ref.Kind, "id": ee.Ref.ID}
}
