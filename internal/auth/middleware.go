// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Fadikk367/lego-shop-server/internal/config"
	"github.com/Fadikk367/lego-shop-server/internal/logging"
)

type contextKey string

// ClaimsContextKey holds the validated *Claims of the request.
const ClaimsContextKey contextKey = "claims"

var (
	// ErrUnauthenticated means a token was required and missing or invalid.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the token belongs to a different user than the one
	// the request acts on.
	ErrForbidden = errors.New("not allowed to act on behalf of this user")
)

// ErrorWriter writes an authentication failure. The API layer installs its
// envelope writer; the default writes a small JSON object.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware attaches bearer token claims to requests and enforces them in
// jwt mode.
type Middleware struct {
	jwtManager *JWTManager
	authMode   string
	writeError ErrorWriter
}

// NewMiddleware creates the bearer token middleware.
func NewMiddleware(jwtManager *JWTManager, authMode string) *Middleware {
	return &Middleware{
		jwtManager: jwtManager,
		authMode:   authMode,
		writeError: defaultErrorWriter,
	}
}

// SetErrorWriter replaces the error response writer.
func (m *Middleware) SetErrorWriter(w ErrorWriter) {
	if w != nil {
		m.writeError = w
	}
}

// Enforced reports whether tokens are required.
func (m *Middleware) Enforced() bool {
	return m.authMode == config.AuthModeJWT
}

// Authenticate attaches claims from a valid bearer token when one is sent.
// It never rejects a request; RequireAuth does.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r)
		if !ok || m.jwtManager == nil {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Ignoring invalid bearer token")
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// RequireAuth rejects requests without valid claims in jwt mode. In none mode
// it passes everything through.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enforced() {
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := ClaimsFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractBearerToken(r)
		if !ok {
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}
		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Token validation failed")
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// Authorize checks that the request may act on behalf of userID: always in
// none mode, and in jwt mode only when the token's user id matches.
func (m *Middleware) Authorize(ctx context.Context, userID int64) error {
	if !m.Enforced() {
		return nil
	}
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if claims.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// ContextWithClaims stores claims in ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFromContext returns the claims stored by the middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// extractBearerToken returns the token of an "Authorization: Bearer" header.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func defaultErrorWriter(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "error": message})
}
