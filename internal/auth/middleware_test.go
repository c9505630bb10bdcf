// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Fadikk367/lego-shop-server/internal/config"
	"github.com/Fadikk367/lego-shop-server/internal/models"
)

// echoUser echoes the email of the attached claims in X-User.
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		w.Header().Set("X-User", claims.Email)
	}
	w.WriteHeader(http.StatusOK)
})

func TestRequireAuth(t *testing.T) {
	jwtManager := newTestJWTManager(t, time.Hour)
	token, _, err := jwtManager.GenerateToken(models.User{ID: 7, Email: "seven@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		mode       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"none mode without token", config.AuthModeNone, "", http.StatusOK, ""},
		{"none mode with token", config.AuthModeNone, "Bearer " + token, http.StatusOK, "seven@example.com"},
		{"none mode ignores bad token", config.AuthModeNone, "Bearer nope", http.StatusOK, ""},
		{"jwt mode without token", config.AuthModeJWT, "", http.StatusUnauthorized, ""},
		{"jwt mode bad scheme", config.AuthModeJWT, "Basic abc", http.StatusUnauthorized, ""},
		{"jwt mode bad token", config.AuthModeJWT, "Bearer nope", http.StatusUnauthorized, ""},
		{"jwt mode valid token", config.AuthModeJWT, "Bearer " + token, http.StatusOK, "seven@example.com"},
		{"jwt mode lowercase scheme", config.AuthModeJWT, "bearer " + token, http.StatusOK, "seven@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewMiddleware(jwtManager, tt.mode)
			h := mw.Authenticate(mw.RequireAuth(echoUser))

			req := httptest.NewRequest(http.MethodGet, "/orders/history", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("X-User"); got != tt.wantUser {
				t.Errorf("user = %q, want %q", got, tt.wantUser)
			}
		})
	}
}

func TestRequireAuthCustomErrorWriter(t *testing.T) {
	mw := NewMiddleware(newTestJWTManager(t, time.Hour), config.AuthModeJWT)
	var gotCode string
	mw.SetErrorWriter(func(w http.ResponseWriter, _ *http.Request, status int, code, _ string) {
		gotCode = code
		w.WriteHeader(status)
	})

	rec := httptest.NewRecorder()
	mw.RequireAuth(echoUser).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", nil))

	if rec.Code != http.StatusUnauthorized || gotCode != "UNAUTHORIZED" {
		t.Errorf("got %d %q, want 401 UNAUTHORIZED", rec.Code, gotCode)
	}
}

func TestAuthorize(t *testing.T) {
	withClaims := ContextWithClaims(context.Background(), &Claims{UserID: 7})

	tests := []struct {
		name    string
		mode    string
		ctx     context.Context
		userID  int64
		wantErr error
	}{
		{"none mode allows anyone", config.AuthModeNone, context.Background(), 3, nil},
		{"jwt mode requires claims", config.AuthModeJWT, context.Background(), 7, ErrUnauthenticated},
		{"jwt mode same user", config.AuthModeJWT, withClaims, 7, nil},
		{"jwt mode other user", config.AuthModeJWT, withClaims, 8, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewMiddleware(nil, tt.mode)
			if err := mw.Authorize(tt.ctx, tt.userID); !errors.Is(err, tt.wantErr) {
				t.Errorf("Authorize() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
