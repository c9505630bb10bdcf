// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/Fadikk367/lego-shop-server/internal/validation"
)

// maxBodyBytes caps request bodies. Shop payloads are a few hundred bytes.
const maxBodyBytes = 1 << 20

// decodeJSON reads r's body into dst. Malformed or oversized bodies become
// validation errors so they map to 400 like any other bad input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return validation.NewError("body", "required", "request body is required")
		case errors.As(err, &maxErr):
			return validation.NewError("body", "max", fmt.Sprintf("request body must not exceed %d bytes", maxBodyBytes))
		default:
			return validation.NewError("body", "json", "request body must be valid JSON")
		}
	}
	return nil
}

// pathID parses the chi URL parameter name as a positive id.
func pathID(r *http.Request, name string) (int64, error) {
	return parseID(name, chi.URLParam(r, name))
}

// queryID parses the query parameter name as a positive id.
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, validation.NewError(name, "required", name+" is required")
	}
	return parseID(name, raw)
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.NewError(name, "gt", name+" must be a positive integer")
	}
	return id, nil
}

// queryLimit parses an optional positive limit no larger than maxLimit. Zero
// means "use the default".
func queryLimit(r *http.Request, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxLimit {
		return 0, validation.NewError("limit", "max", fmt.Sprintf("limit must be between 1 and %d", maxLimit))
	}
	return n, nil
}
